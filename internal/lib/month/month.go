// Package month содержит календарную арифметику для расчёта дат оплаты.
// Все функции работают с датами в UTC на полночь и не зависят от часового пояса процесса.
package month

import "time"

// DaysIn возвращает количество дней в месяце.
func DaysIn(year int, m time.Month) int {
	// нулевой день следующего месяца = последний день текущего
	return time.Date(year, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Clamped собирает дату year-m-day, прижимая день к последнему дню месяца.
// Для day=31 в июне получится 30 июня, для day=30 в феврале 2024 получится 29 февраля.
func Clamped(year int, m time.Month, day int) time.Time {
	if last := DaysIn(year, m); day > last {
		day = last
	}
	if day < 1 {
		day = 1
	}
	return time.Date(year, m, day, 0, 0, 0, 0, time.UTC)
}

// Midnight отбрасывает время суток, сохраняя календарный день в зоне t.
func Midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NextDueDate считает ближайшую дату оплаты не раньше ref для якорного дня месяца dueDay.
// Кандидат берётся в месяце ref; если он уже прошёл, переносится ровно на один
// календарный месяц с тем же днём (снова прижатым к концу месяца).
func NextDueDate(dueDay int, ref time.Time) time.Time {
	ref = Midnight(ref)
	candidate := Clamped(ref.Year(), ref.Month(), dueDay)
	if candidate.Before(ref) {
		// первое число следующего месяца, декабрь переходит в январь
		next := time.Date(ref.Year(), ref.Month()+1, 1, 0, 0, 0, 0, time.UTC)
		candidate = Clamped(next.Year(), next.Month(), dueDay)
	}
	return candidate
}

// DaysBetween количество календарных дней от from до to (отрицательное, если to раньше).
func DaysBetween(from, to time.Time) int {
	return int(Midnight(to).Sub(Midnight(from)).Hours() / 24)
}

// SameMonth сообщает, попадают ли a и b в один календарный месяц одного года.
func SameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}
