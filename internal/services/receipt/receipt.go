// Package receipt собирает и печатает квитанцию об оплате.
// Квитанция нигде не сохраняется: она строится из снимка таблиц при каждом запросе.
package receipt

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/magabrotheeeer/wifinet-dashboard/internal/models"
	"github.com/magabrotheeeer/wifinet-dashboard/internal/services/billing"
	"github.com/magabrotheeeer/wifinet-dashboard/internal/storage"
)

// DefaultItem описание строки квитанции, если тариф абонента неизвестен.
const DefaultItem = "Service Payment"

//go:embed receipt.html
var files embed.FS

var tmpl = template.Must(template.New("receipt.html").ParseFS(files, "receipt.html"))

// Biller реквизиты продавца в шапке квитанции.
type Biller struct {
	CompanyName    string
	CompanyAddress string
	CurrencySymbol string
}

// Receipt данные квитанции.
type Receipt struct {
	Biller      Biller
	Number      string
	Date        models.Date
	BilledTo    string
	BilledEmail string
	Item        string
	Amount      float64
	Method      models.PaymentMethod
}

// Build находит платёж в снимке и собирает по нему квитанцию.
// Абонент и тариф могут быть удалены: тогда соответствующие поля пустые.
func Build(snap models.Snapshot, paymentID string, biller Biller) (Receipt, error) {
	const op = "receipt.Build"

	var (
		payment models.Payment
		found   bool
	)
	for _, p := range snap.Payments {
		if p.ID == paymentID {
			payment, found = p, true
			break
		}
	}
	if !found {
		return Receipt{}, fmt.Errorf("%s: payment %s: %w", op, paymentID, storage.ErrNotFound)
	}

	r := Receipt{
		Biller: biller,
		Number: payment.ID,
		Date:   payment.Date,
		Item:   DefaultItem,
		Amount: payment.Amount,
		Method: payment.Method,
	}
	if sub, ok := snap.SubscriberByID(payment.UserID); ok {
		r.BilledTo = sub.Name
		r.BilledEmail = sub.Email
		if plan, ok := snap.PlanOf(sub); ok {
			r.Item = fmt.Sprintf("%s (%dMbps)", plan.Name, plan.Speed)
		}
	}
	return r, nil
}

// FormattedAmount сумма с символом валюты.
func (r Receipt) FormattedAmount() string {
	return r.Biller.CurrencySymbol + billing.FormatAmount(r.Amount)
}

// Render печатает квитанцию отдельным HTML-документом, который при загрузке
// открывает диалог печати.
func Render(w io.Writer, r Receipt) error {
	const op = "receipt.Render"
	if err := tmpl.Execute(w, r); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
