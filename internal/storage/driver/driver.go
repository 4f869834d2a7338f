// Package driver открывает хранилище таблиц, выбранное в конфиге.
package driver

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/magabrotheeeer/wifinet-dashboard/internal/config"
	"github.com/magabrotheeeer/wifinet-dashboard/internal/migrations"
	"github.com/magabrotheeeer/wifinet-dashboard/internal/models"
	"github.com/magabrotheeeer/wifinet-dashboard/internal/services/export"
	"github.com/magabrotheeeer/wifinet-dashboard/internal/services/shim"
	"github.com/magabrotheeeer/wifinet-dashboard/internal/storage/memory"
	"github.com/magabrotheeeer/wifinet-dashboard/internal/storage/postgresql"
)

// ErrInvalidSeed книга для начальной загрузки содержит строки, которые
// шим не пропустил бы при записи.
var ErrInvalidSeed = errors.New("invalid seed workbook")

// Драйверы хранилища.
const (
	Memory   = "memory"
	Postgres = "postgres"
)

// Store открытое хранилище.
type Store struct {
	shim.Store
	// DB соединение с PostgreSQL, nil для хранилища в памяти.
	DB    *sql.DB
	close func() error
}

// Close освобождает соединение с базой, если оно есть.
func (s *Store) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// Open открывает хранилище. Для postgres применяет миграции, для memory
// при заданном SeedFile заполняет таблицы из выгрузки xlsx.
func Open(ctx context.Context, cfg config.Storage, log *slog.Logger) (*Store, error) {
	const op = "driver.Open"

	switch cfg.Driver {
	case Postgres:
		db, err := postgresql.New(ctx, cfg.StorageConnectionString)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if err := migrations.Run(db.Db, cfg.MigrationsPath); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		log.Info("postgres storage ready", slog.String("migrations", cfg.MigrationsPath))
		return &Store{Store: db, DB: db.Db, close: db.Close}, nil
	case Memory, "":
		if cfg.SeedFile == "" {
			log.Info("memory storage ready")
			return &Store{Store: memory.New()}, nil
		}
		snap, err := readSeed(cfg.SeedFile)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		log.Info("memory storage seeded",
			slog.String("file", cfg.SeedFile),
			slog.Int("subscribers", len(snap.Subscribers)),
			slog.Int("plans", len(snap.Plans)),
			slog.Int("payments", len(snap.Payments)),
		)
		return &Store{Store: memory.NewFromSnapshot(snap)}, nil
	default:
		return nil, fmt.Errorf("%s: unknown storage driver %q", op, cfg.Driver)
	}
}

func readSeed(path string) (models.Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return models.Snapshot{}, err
	}
	defer f.Close()

	snap, err := export.Read(f)
	if err != nil {
		return models.Snapshot{}, err
	}
	if err := validateSeed(snap); err != nil {
		return models.Snapshot{}, fmt.Errorf("%s: %w", path, err)
	}
	return snap, nil
}

// validateSeed отклоняет пустые и повторяющиеся id в пределах листа,
// неизвестные статусы абонентов и способы оплаты.
func validateSeed(snap models.Snapshot) error {
	const op = "driver.validateSeed"

	seen := make(map[string]struct{}, len(snap.Subscribers))
	for i, s := range snap.Subscribers {
		if err := checkID(seen, "Users", i, s.ID); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if !s.Status.Valid() {
			return fmt.Errorf("%s: %w: Users row %d: unknown status %q", op, ErrInvalidSeed, i+2, s.Status)
		}
	}

	seen = make(map[string]struct{}, len(snap.Plans))
	for i, p := range snap.Plans {
		if err := checkID(seen, "Products", i, p.ID); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	seen = make(map[string]struct{}, len(snap.Payments))
	for i, p := range snap.Payments {
		if err := checkID(seen, "Payments", i, p.ID); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if !p.Method.Valid() {
			return fmt.Errorf("%s: %w: Payments row %d: unknown method %q", op, ErrInvalidSeed, i+2, p.Method)
		}
	}
	return nil
}

// checkID номер строки считается как в листе: первая строка занята заголовком.
func checkID(seen map[string]struct{}, sheet string, i int, id string) error {
	if id == "" {
		return fmt.Errorf("%w: %s row %d: empty id", ErrInvalidSeed, sheet, i+2)
	}
	if _, ok := seen[id]; ok {
		return fmt.Errorf("%w: %s row %d: duplicate id %q", ErrInvalidSeed, sheet, i+2, id)
	}
	seen[id] = struct{}{}
	return nil
}
