package localcache

import "github.com/magabrotheeeer/wifinet-dashboard/internal/models"

// Mutation закрытый набор изменений кеша. Каждая применяется к одной коллекции.
type Mutation interface {
	mutation()
}

// Replace заменяет все три коллекции результатом загрузки.
type Replace struct{ Snapshot models.Snapshot }

// SubscriberAdded дописывает абонента в конец.
type SubscriberAdded struct{ Subscriber models.Subscriber }

// SubscriberUpdated заменяет абонента с тем же id на его месте.
type SubscriberUpdated struct{ Subscriber models.Subscriber }

// SubscriberDeleted убирает абонента.
type SubscriberDeleted struct{ ID string }

// PlanAdded дописывает тариф в конец.
type PlanAdded struct{ Plan models.Plan }

// PlanUpdated заменяет тариф с тем же id на его месте.
type PlanUpdated struct{ Plan models.Plan }

// PlanDeleted убирает тариф. Абоненты со ссылкой на него не меняются.
type PlanDeleted struct{ ID string }

// PaymentAdded ставит платёж первым.
type PaymentAdded struct{ Payment models.Payment }

// PaymentDeleted убирает платёж.
type PaymentDeleted struct{ ID string }

func (Replace) mutation()           {}
func (SubscriberAdded) mutation()   {}
func (SubscriberUpdated) mutation() {}
func (SubscriberDeleted) mutation() {}
func (PlanAdded) mutation()         {}
func (PlanUpdated) mutation()       {}
func (PlanDeleted) mutation()       {}
func (PaymentAdded) mutation()      {}
func (PaymentDeleted) mutation()    {}

// apply возвращает новое состояние, не трогая исходные срезы.
func apply(s models.Snapshot, m Mutation) models.Snapshot {
	switch c := m.(type) {
	case Replace:
		next := c.Snapshot.Clone()
		models.SortPaymentsNewestFirst(next.Payments)
		return next
	case SubscriberAdded:
		s.Subscribers = appendCopy(s.Subscribers, c.Subscriber)
	case SubscriberUpdated:
		s.Subscribers = replaceByID(s.Subscribers, c.Subscriber, func(v models.Subscriber) string { return v.ID })
	case SubscriberDeleted:
		s.Subscribers = removeByID(s.Subscribers, c.ID, func(v models.Subscriber) string { return v.ID })
	case PlanAdded:
		s.Plans = appendCopy(s.Plans, c.Plan)
	case PlanUpdated:
		s.Plans = replaceByID(s.Plans, c.Plan, func(v models.Plan) string { return v.ID })
	case PlanDeleted:
		s.Plans = removeByID(s.Plans, c.ID, func(v models.Plan) string { return v.ID })
	case PaymentAdded:
		s.Payments = append([]models.Payment{c.Payment}, s.Payments...)
	case PaymentDeleted:
		s.Payments = removeByID(s.Payments, c.ID, func(v models.Payment) string { return v.ID })
	}
	return s
}

func appendCopy[T any](rows []T, v T) []T {
	out := make([]T, 0, len(rows)+1)
	out = append(out, rows...)
	return append(out, v)
}

func replaceByID[T any](rows []T, v T, id func(T) string) []T {
	out := make([]T, len(rows))
	for i, row := range rows {
		if id(row) == id(v) {
			out[i] = v
		} else {
			out[i] = row
		}
	}
	return out
}

func removeByID[T any](rows []T, target string, id func(T) string) []T {
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		if id(row) != target {
			out = append(out, row)
		}
	}
	return out
}
