// Package billing считает даты оплаты, напоминания и сводку дашборда
// по снимку таблиц. Функции пакета чистые: всё, что им нужно, передаётся аргументами.
package billing

import (
	"iter"
	"slices"
	"sort"
	"time"

	"github.com/magabrotheeeer/wifinet-dashboard/internal/lib/month"
	"github.com/magabrotheeeer/wifinet-dashboard/internal/models"
)

// ReminderWindowDays сколько дней до даты оплаты абонент попадает в напоминания.
const ReminderWindowDays = 3

// NoPlanName имя тарифа для абонента с висячей ссылкой.
const NoPlanName = "N/A"

// Reminder абонент, которому скоро платить.
type Reminder struct {
	Subscriber models.Subscriber `json:"user"`
	PlanName   string            `json:"planName"`
	AmountDue  float64           `json:"amountDue"`
	DueDate    models.Date       `json:"dueDate"`
	DayDiff    int               `json:"dayDiff"`
}

// NextDueDate ближайшая дата оплаты абонента не раньше ref.
// День оплаты равен дню месяца даты подключения.
func NextDueDate(sub models.Subscriber, ref time.Time) models.Date {
	return models.DateOf(month.NextDueDate(sub.JoinDate.Day(), ref))
}

// PaidInMonth сообщает, есть ли у абонента платёж в календарном месяце ref.
func PaidInMonth(payments []models.Payment, subscriberID string, ref time.Time) bool {
	return slices.ContainsFunc(payments, func(p models.Payment) bool {
		return p.UserID == subscriberID && month.SameMonth(p.Date.Time, ref)
	})
}

// DueSoon перечисляет активных абонентов с тарифом, у которых дата оплаты
// наступает в ближайшие ReminderWindowDays дней и которые ещё не платили
// в месяце ref. Порядок по возрастанию DayDiff, при равенстве как в снимке.
// Последовательность вычисляется заново при каждом обходе.
func DueSoon(snap models.Snapshot, ref time.Time) iter.Seq[Reminder] {
	return func(yield func(Reminder) bool) {
		for _, r := range dueSoon(snap, ref) {
			if !yield(r) {
				return
			}
		}
	}
}

// Collect собирает последовательность в срез.
func Collect(seq iter.Seq[Reminder]) []Reminder {
	out := []Reminder{}
	for r := range seq {
		out = append(out, r)
	}
	return out
}

func dueSoon(snap models.Snapshot, ref time.Time) []Reminder {
	today := month.Midnight(ref)

	var out []Reminder
	for _, sub := range snap.Subscribers {
		if sub.Status != models.StatusActive || !sub.HasPlan() || sub.JoinDate.IsZero() {
			continue
		}

		r := Reminder{Subscriber: sub, PlanName: NoPlanName}
		if plan, ok := snap.PlanOf(sub); ok {
			r.PlanName = plan.Name
			r.AmountDue = plan.Price
		}
		r.DueDate = NextDueDate(sub, today)
		r.DayDiff = month.DaysBetween(today, r.DueDate.Time)

		if r.AmountDue <= 0 || r.DayDiff < 0 || r.DayDiff > ReminderWindowDays {
			continue
		}
		if PaidInMonth(snap.Payments, sub.ID, today) {
			continue
		}
		out = append(out, r)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].DayDiff < out[j].DayDiff })
	return out
}
