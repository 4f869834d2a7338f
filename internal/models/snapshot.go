package models

import "sort"

// Snapshot полное содержимое трёх таблиц, результат GET_ALL_DATA.
// Имена полей совпадают с проводным форматом клиента.
type Snapshot struct {
	Subscribers []Subscriber `json:"users"`
	Plans       []Plan       `json:"products"`
	Payments    []Payment    `json:"payments"`
}

// Clone возвращает глубокую копию, безопасную для изменения вызывающим.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		Subscribers: make([]Subscriber, len(s.Subscribers)),
		Plans:       append([]Plan(nil), s.Plans...),
		Payments:    append([]Payment(nil), s.Payments...),
	}
	for i, sub := range s.Subscribers {
		sub.PlanID = normalizePlanID(sub.PlanID)
		out.Subscribers[i] = sub
	}
	if out.Plans == nil {
		out.Plans = []Plan{}
	}
	if out.Payments == nil {
		out.Payments = []Payment{}
	}
	return out
}

// SortPaymentsNewestFirst упорядочивает платежи от новых к старым.
// Сортировка стабильная: платежи одного дня сохраняют исходный порядок.
func SortPaymentsNewestFirst(payments []Payment) {
	sort.SliceStable(payments, func(i, j int) bool {
		return payments[i].Date.After(payments[j].Date.Time)
	})
}

// PlanByID ищет тариф по id. Висячая ссылка даёт false.
func (s Snapshot) PlanByID(id string) (Plan, bool) {
	for _, p := range s.Plans {
		if p.ID == id {
			return p, true
		}
	}
	return Plan{}, false
}

// PlanOf возвращает тариф абонента или false, если тарифа нет или он удалён.
func (s Snapshot) PlanOf(sub Subscriber) (Plan, bool) {
	if !sub.HasPlan() {
		return Plan{}, false
	}
	return s.PlanByID(*sub.PlanID)
}

// SubscriberByID ищет абонента по id. Висячая ссылка даёт false.
func (s Snapshot) SubscriberByID(id string) (Subscriber, bool) {
	for _, sub := range s.Subscribers {
		if sub.ID == id {
			return sub, true
		}
	}
	return Subscriber{}, false
}
