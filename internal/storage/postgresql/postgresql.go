// Package postgresql хранит таблицы Users, Products и Payments в PostgreSQL.
// Схема создаётся миграциями из каталога migrations.
package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/magabrotheeeer/wifinet-dashboard/internal/models"
	"github.com/magabrotheeeer/wifinet-dashboard/internal/storage"
)

// Storage хранилище поверх database/sql с драйвером pgx.
type Storage struct {
	Db *sql.DB
}

// New открывает пул соединений и проверяет доступность базы.
func New(ctx context.Context, storageConnectionString string) (*Storage, error) {
	const op = "storage.postgresql.New"

	db, err := sql.Open("pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Storage{Db: db}, nil
}

// Close закрывает пул соединений.
func (s *Storage) Close() error {
	return s.Db.Close()
}

func mapWriteErr(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return fmt.Errorf("%s: %w", op, storage.ErrDuplicate)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func expectOne(op, kind, id string, res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %s %s: %w", op, kind, id, storage.ErrNotFound)
	}
	return nil
}

// ListSubscribers возвращает абонентов в порядке добавления.
func (s *Storage) ListSubscribers(ctx context.Context) ([]models.Subscriber, error) {
	const op = "storage.postgresql.ListSubscribers"

	rows, err := s.Db.QueryContext(ctx, `
		SELECT id, name, email, address, plan_id, status, join_date
		FROM users
		ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	out := []models.Subscriber{}
	for rows.Next() {
		var sub models.Subscriber
		if err := rows.Scan(&sub.ID, &sub.Name, &sub.Email, &sub.Address,
			&sub.PlanID, &sub.Status, &sub.JoinDate); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out = append(out, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

// CreateSubscriber вставляет строку абонента.
func (s *Storage) CreateSubscriber(ctx context.Context, sub models.Subscriber) error {
	const op = "storage.postgresql.CreateSubscriber"

	_, err := s.Db.ExecContext(ctx, `
		INSERT INTO users (id, name, email, address, plan_id, status, join_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		sub.ID, sub.Name, sub.Email, sub.Address,
		models.NormalizePlanID(sub.PlanID), sub.Status, sub.JoinDate)
	if err != nil {
		return mapWriteErr(op, err)
	}
	return nil
}

// UpdateSubscriber заменяет все поля, кроме join_date, и возвращает сохранённую запись.
func (s *Storage) UpdateSubscriber(ctx context.Context, sub models.Subscriber) (models.Subscriber, error) {
	const op = "storage.postgresql.UpdateSubscriber"

	sub.PlanID = models.NormalizePlanID(sub.PlanID)
	err := s.Db.QueryRowContext(ctx, `
		UPDATE users
		SET name = $2, email = $3, address = $4, plan_id = $5, status = $6
		WHERE id = $1
		RETURNING join_date`,
		sub.ID, sub.Name, sub.Email, sub.Address, sub.PlanID, sub.Status,
	).Scan(&sub.JoinDate)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Subscriber{}, fmt.Errorf("%s: subscriber %s: %w", op, sub.ID, storage.ErrNotFound)
	}
	if err != nil {
		return models.Subscriber{}, fmt.Errorf("%s: %w", op, err)
	}
	return sub, nil
}

// DeleteSubscriber удаляет абонента. Платежи остаются.
func (s *Storage) DeleteSubscriber(ctx context.Context, id string) error {
	const op = "storage.postgresql.DeleteSubscriber"

	res, err := s.Db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return expectOne(op, "subscriber", id, res)
}

// ListPlans возвращает тарифы в порядке добавления.
func (s *Storage) ListPlans(ctx context.Context) ([]models.Plan, error) {
	const op = "storage.postgresql.ListPlans"

	rows, err := s.Db.QueryContext(ctx, `
		SELECT id, name, speed, price, description
		FROM products
		ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	out := []models.Plan{}
	for rows.Next() {
		var p models.Plan
		if err := rows.Scan(&p.ID, &p.Name, &p.Speed, &p.Price, &p.Description); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

// CreatePlan вставляет строку тарифа.
func (s *Storage) CreatePlan(ctx context.Context, p models.Plan) error {
	const op = "storage.postgresql.CreatePlan"

	_, err := s.Db.ExecContext(ctx, `
		INSERT INTO products (id, name, speed, price, description)
		VALUES ($1, $2, $3, $4, $5)`,
		p.ID, p.Name, p.Speed, p.Price, p.Description)
	if err != nil {
		return mapWriteErr(op, err)
	}
	return nil
}

// UpdatePlan заменяет строку тарифа целиком.
func (s *Storage) UpdatePlan(ctx context.Context, p models.Plan) (models.Plan, error) {
	const op = "storage.postgresql.UpdatePlan"

	res, err := s.Db.ExecContext(ctx, `
		UPDATE products
		SET name = $2, speed = $3, price = $4, description = $5
		WHERE id = $1`,
		p.ID, p.Name, p.Speed, p.Price, p.Description)
	if err != nil {
		return models.Plan{}, fmt.Errorf("%s: %w", op, err)
	}
	if err := expectOne(op, "plan", p.ID, res); err != nil {
		return models.Plan{}, err
	}
	return p, nil
}

// DeletePlan удаляет тариф. Ссылки абонентов не трогаются.
func (s *Storage) DeletePlan(ctx context.Context, id string) error {
	const op = "storage.postgresql.DeletePlan"

	res, err := s.Db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return expectOne(op, "plan", id, res)
}

// ListPayments возвращает платежи от новых к старым; платежи одного дня идут
// в порядке добавления.
func (s *Storage) ListPayments(ctx context.Context) ([]models.Payment, error) {
	const op = "storage.postgresql.ListPayments"

	rows, err := s.Db.QueryContext(ctx, `
		SELECT id, user_id, amount, date, method
		FROM payments
		ORDER BY date DESC, seq DESC`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	out := []models.Payment{}
	for rows.Next() {
		var p models.Payment
		if err := rows.Scan(&p.ID, &p.UserID, &p.Amount, &p.Date, &p.Method); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

// CreatePayment вставляет строку платежа.
func (s *Storage) CreatePayment(ctx context.Context, p models.Payment) error {
	const op = "storage.postgresql.CreatePayment"

	_, err := s.Db.ExecContext(ctx, `
		INSERT INTO payments (id, user_id, amount, date, method)
		VALUES ($1, $2, $3, $4, $5)`,
		p.ID, p.UserID, p.Amount, p.Date, p.Method)
	if err != nil {
		return mapWriteErr(op, err)
	}
	return nil
}

// DeletePayment удаляет платёж.
func (s *Storage) DeletePayment(ctx context.Context, id string) error {
	const op = "storage.postgresql.DeletePayment"

	res, err := s.Db.ExecContext(ctx, `DELETE FROM payments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return expectOne(op, "payment", id, res)
}
