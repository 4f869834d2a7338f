// Package export выгружает таблицы в книгу xlsx и читает такую книгу обратно.
// Листы Users, Products и Payments; первая строка каждого листа содержит
// имена полей в проводном формате.
package export

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/magabrotheeeer/wifinet-dashboard/internal/models"
)

// Имена листов книги.
const (
	SheetUsers    = "Users"
	SheetProducts = "Products"
	SheetPayments = "Payments"
)

// ContentType MIME-тип книги.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var (
	usersHeader    = []any{"id", "name", "email", "address", "planId", "status", "joinDate"}
	productsHeader = []any{"id", "name", "speed", "price", "description"}
	paymentsHeader = []any{"id", "userId", "amount", "date", "method"}
)

// ErrBadWorkbook книга не соответствует формату выгрузки.
var ErrBadWorkbook = errors.New("bad workbook")

// FileName имя файла выгрузки за день day.
func FileName(day time.Time) string {
	return "wifi_dashboard_export_" + day.Format(models.DateLayout) + ".xlsx"
}

// Write записывает снимок в w как книгу xlsx.
func Write(w io.Writer, snap models.Snapshot) error {
	const op = "export.Write"

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetUsers); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	for _, name := range []string{SheetProducts, SheetPayments} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	users := make([][]any, 0, len(snap.Subscribers))
	for _, s := range snap.Subscribers {
		planID := ""
		if s.HasPlan() {
			planID = *s.PlanID
		}
		users = append(users, []any{s.ID, s.Name, s.Email, s.Address, planID, string(s.Status), s.JoinDate.String()})
	}
	products := make([][]any, 0, len(snap.Plans))
	for _, p := range snap.Plans {
		products = append(products, []any{p.ID, p.Name, p.Speed, p.Price, p.Description})
	}
	payments := make([][]any, 0, len(snap.Payments))
	for _, p := range snap.Payments {
		payments = append(payments, []any{p.ID, p.UserID, p.Amount, p.Date.String(), string(p.Method)})
	}

	for _, sheet := range []struct {
		name   string
		header []any
		rows   [][]any
	}{
		{SheetUsers, usersHeader, users},
		{SheetProducts, productsHeader, products},
		{SheetPayments, paymentsHeader, payments},
	} {
		if err := writeSheet(f, sheet.name, sheet.header, sheet.rows); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func writeSheet(f *excelize.File, name string, header []any, rows [][]any) error {
	if err := f.SetSheetRow(name, "A1", &header); err != nil {
		return err
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(name, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

// Read читает книгу в формате выгрузки обратно в снимок.
func Read(r io.Reader) (models.Snapshot, error) {
	const op = "export.Read"

	f, err := excelize.OpenReader(r)
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("%s: %w", op, err)
	}
	defer f.Close()

	snap := models.Snapshot{
		Subscribers: []models.Subscriber{},
		Plans:       []models.Plan{},
		Payments:    []models.Payment{},
	}

	err = readSheet(f, SheetUsers, usersHeader, func(c cells) error {
		joinDate, err := c.date(6)
		if err != nil {
			return err
		}
		planID := c.str(4)
		snap.Subscribers = append(snap.Subscribers, models.Subscriber{
			ID:       c.str(0),
			Name:     c.str(1),
			Email:    c.str(2),
			Address:  c.str(3),
			PlanID:   models.NormalizePlanID(&planID),
			Status:   models.Status(c.str(5)),
			JoinDate: joinDate,
		})
		return nil
	})
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("%s: %w", op, err)
	}

	err = readSheet(f, SheetProducts, productsHeader, func(c cells) error {
		speed, err := strconv.Atoi(c.str(2))
		if err != nil {
			return fmt.Errorf("speed: %w", err)
		}
		price, err := c.float(3)
		if err != nil {
			return fmt.Errorf("price: %w", err)
		}
		snap.Plans = append(snap.Plans, models.Plan{
			ID:          c.str(0),
			Name:        c.str(1),
			Speed:       speed,
			Price:       price,
			Description: c.str(4),
		})
		return nil
	})
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("%s: %w", op, err)
	}

	err = readSheet(f, SheetPayments, paymentsHeader, func(c cells) error {
		amount, err := c.float(2)
		if err != nil {
			return fmt.Errorf("amount: %w", err)
		}
		date, err := c.date(3)
		if err != nil {
			return err
		}
		snap.Payments = append(snap.Payments, models.Payment{
			ID:     c.str(0),
			UserID: c.str(1),
			Amount: amount,
			Date:   date,
			Method: models.PaymentMethod(c.str(4)),
		})
		return nil
	})
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("%s: %w", op, err)
	}
	return snap, nil
}

func readSheet(f *excelize.File, name string, header []any, row func(cells) error) error {
	rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return fmt.Errorf("sheet %s: %w", name, err)
	}
	if len(rows) == 0 {
		return fmt.Errorf("sheet %s: %w: missing header", name, ErrBadWorkbook)
	}
	for i, h := range header {
		if got := cells(rows[0]).str(i); got != h {
			return fmt.Errorf("sheet %s: %w: column %d is %q, want %q", name, ErrBadWorkbook, i+1, got, h)
		}
	}
	for i, r := range rows[1:] {
		if len(r) == 0 {
			continue
		}
		if err := row(cells(r)); err != nil {
			return fmt.Errorf("sheet %s row %d: %w", name, i+2, err)
		}
	}
	return nil
}

// cells строка листа. GetRows отрезает пустые ячейки в конце строки.
type cells []string

func (c cells) str(i int) string {
	if i < len(c) {
		return c[i]
	}
	return ""
}

func (c cells) float(i int) (float64, error) {
	if c.str(i) == "" {
		return 0, nil
	}
	return strconv.ParseFloat(c.str(i), 64)
}

func (c cells) date(i int) (models.Date, error) {
	if c.str(i) == "" {
		return models.Date{}, nil
	}
	return models.ParseDate(c.str(i))
}
