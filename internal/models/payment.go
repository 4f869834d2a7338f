package models

// PaymentMethod способ оплаты.
type PaymentMethod string

const (
	MethodCash    PaymentMethod = "Cash"
	MethodEWallet PaymentMethod = "GCash"
)

// Valid сообщает, входит ли значение в закрытый набор способов оплаты.
func (m PaymentMethod) Valid() bool {
	return m == MethodCash || m == MethodEWallet
}

// Payment платёж абонента. UserID может ссылаться на удалённого абонента:
// история платежей переживает удаление.
type Payment struct {
	ID     string        `json:"id"`
	UserID string        `json:"userId"`
	Amount float64       `json:"amount"`
	Date   Date          `json:"date"`
	Method PaymentMethod `json:"method"`
}

// PaymentInput данные для регистрации платежа: id и дату назначает сервер.
type PaymentInput struct {
	UserID string        `json:"userId" validate:"required"`
	Amount float64       `json:"amount" validate:"gt=0"`
	Method PaymentMethod `json:"method" validate:"required,oneof=Cash GCash"`
}

// IDRef тело запроса на удаление и ответ на него.
type IDRef struct {
	ID string `json:"id" validate:"required"`
}
