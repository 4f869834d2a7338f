package rabbitmq

const (
	// ExchangeReminders обменник напоминаний об оплате.
	ExchangeReminders = "reminders"
	// RoutingKeyDueSoon ключ напоминаний о близкой дате оплаты.
	RoutingKeyDueSoon = "due_soon"
	// QueueDueSoon очередь, из которой читает отправитель писем.
	QueueDueSoon = "reminders.due_soon"
)

type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

func GetReminderQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: QueueDueSoon, RoutingKey: RoutingKeyDueSoon},
	}
}
