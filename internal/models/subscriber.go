// Package models содержит доменные структуры дашборда: абонентов, тарифы и платежи,
// а также структуры входящих данных для операций шима.
package models

// Status состояние абонента.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusPending  Status = "pending"
)

// Valid сообщает, входит ли значение в закрытый набор статусов.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusPending:
		return true
	}
	return false
}

// Subscriber абонент провайдера. На проводе называется User.
// PlanID равен nil, если тариф не назначен. Ссылка может указывать на удалённый тариф,
// такая ссылка при чтении трактуется как отсутствие тарифа.
type Subscriber struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Address  string  `json:"address"`
	PlanID   *string `json:"planId"`
	Status   Status  `json:"status"`
	JoinDate Date    `json:"joinDate"`
}

// HasPlan сообщает, ссылается ли абонент на какой-либо тариф.
func (s Subscriber) HasPlan() bool {
	return s.PlanID != nil && *s.PlanID != ""
}

// SubscriberInput данные для создания абонента: без id и даты подключения,
// их назначает сервер.
type SubscriberInput struct {
	Name    string  `json:"name" validate:"required"`
	Email   string  `json:"email" validate:"required,email"`
	Address string  `json:"address"`
	PlanID  *string `json:"planId"`
	Status  Status  `json:"status" validate:"required,oneof=active inactive pending"`
}

// SubscriberUpdate полная запись абонента для замены.
type SubscriberUpdate struct {
	ID      string  `json:"id" validate:"required"`
	Name    string  `json:"name" validate:"required"`
	Email   string  `json:"email" validate:"required,email"`
	Address string  `json:"address"`
	PlanID  *string `json:"planId"`
	Status  Status  `json:"status" validate:"required,oneof=active inactive pending"`
	// JoinDate неизменяема, значение из запроса игнорируется хранилищем.
	JoinDate Date `json:"joinDate"`
}

// Subscriber превращает запрос на замену в доменную запись.
func (u SubscriberUpdate) Subscriber() Subscriber {
	return Subscriber{
		ID:       u.ID,
		Name:     u.Name,
		Email:    u.Email,
		Address:  u.Address,
		PlanID:   normalizePlanID(u.PlanID),
		Status:   u.Status,
		JoinDate: u.JoinDate,
	}
}

func normalizePlanID(id *string) *string {
	if id == nil || *id == "" {
		return nil
	}
	v := *id
	return &v
}

// NormalizePlanID приводит пустую ссылку на тариф к nil.
func NormalizePlanID(id *string) *string {
	return normalizePlanID(id)
}
