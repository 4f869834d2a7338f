package billing

import (
	"fmt"
	"math"
	"net/url"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Letter письмо-напоминание.
type Letter struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Biller реквизиты отправителя напоминаний.
type Biller struct {
	CompanyName    string
	CurrencySymbol string
}

var printer = message.NewPrinter(language.English)

// FormatAmount печатает сумму с разделителями разрядов: 1,999 или 1,999.5.
func FormatAmount(amount float64) string {
	if amount == math.Trunc(amount) && math.Abs(amount) < 1e15 {
		return printer.Sprintf("%d", int64(amount))
	}
	s := printer.Sprintf("%.2f", amount)
	return strings.TrimRight(strings.TrimRight(s, "0"), ".")
}

// Letter составляет письмо-напоминание для абонента.
func (b Biller) Letter(r Reminder) Letter {
	return Letter{
		To:      r.Subscriber.Email,
		Subject: fmt.Sprintf("Your %s Bill is Due Soon", b.CompanyName),
		Body: fmt.Sprintf("Hello %s,\n\n"+
			"This is a friendly reminder from %s that your monthly payment of %s%s is due on %s.\n\n"+
			"Please make your payment on or before the due date to avoid service interruption.\n\n"+
			"Thank you,\nThe %s Team",
			r.Subscriber.Name, b.CompanyName, b.CurrencySymbol, FormatAmount(r.AmountDue),
			r.DueDate.String(), b.CompanyName),
	}
}

// MailtoURI ссылка mailto с темой и телом письма. Пробелы кодируются как %20.
func (l Letter) MailtoURI() string {
	return "mailto:" + l.To +
		"?subject=" + encodeComponent(l.Subject) +
		"&body=" + encodeComponent(l.Body)
}

func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
