// Package shim реализует единую точку удалённого доступа к таблицам:
// одна команда на вызов, один обработчик на вид команды.
package shim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator"
	"github.com/google/uuid"

	"github.com/magabrotheeeer/wifinet-dashboard/internal/lib/sl"
	"github.com/magabrotheeeer/wifinet-dashboard/internal/models"
)

var (
	// ErrValidation данные команды не прошли проверку.
	ErrValidation = errors.New("validation failed")
	// ErrUnknownAction действие не входит в набор команд.
	ErrUnknownAction = errors.New("unknown action")
	// ErrMalformedPayload тело команды не разбирается как JSON.
	ErrMalformedPayload = errors.New("malformed payload")
)

const snapshotKey = "wifinet:snapshot"

// Store таблицы, с которыми работает шим.
type Store interface {
	ListSubscribers(ctx context.Context) ([]models.Subscriber, error)
	CreateSubscriber(ctx context.Context, sub models.Subscriber) error
	UpdateSubscriber(ctx context.Context, sub models.Subscriber) (models.Subscriber, error)
	DeleteSubscriber(ctx context.Context, id string) error

	ListPlans(ctx context.Context) ([]models.Plan, error)
	CreatePlan(ctx context.Context, plan models.Plan) error
	UpdatePlan(ctx context.Context, plan models.Plan) (models.Plan, error)
	DeletePlan(ctx context.Context, id string) error

	ListPayments(ctx context.Context) ([]models.Payment, error)
	CreatePayment(ctx context.Context, p models.Payment) error
	DeletePayment(ctx context.Context, id string) error
}

// Cache кеш снимка таблиц.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

// Metrics учёт выполненных команд.
type Metrics interface {
	ObserveAction(action, status string, elapsed time.Duration)
}

// Shim выполняет команды над хранилищем.
type Shim struct {
	store       Store
	cache       Cache
	metrics     Metrics
	log         *slog.Logger
	validate    *validator.Validate
	snapshotTTL time.Duration
	now         func() time.Time
	newID       func() string

	// gen растёт на каждом изменении таблиц. Снимок попадает в кеш, только если
	// за время чтения gen не изменился. cacheMu упорядочивает Set и Invalidate.
	cacheMu sync.Mutex
	gen     uint64
}

// Option настройка Shim.
type Option func(*Shim)

// WithClock подменяет источник текущего времени.
func WithClock(now func() time.Time) Option {
	return func(s *Shim) { s.now = now }
}

// WithIDGenerator подменяет генератор идентификаторов.
func WithIDGenerator(newID func() string) Option {
	return func(s *Shim) { s.newID = newID }
}

// New создаёт шим. Снимок таблиц кешируется на snapshotTTL.
func New(log *slog.Logger, store Store, cache Cache, metrics Metrics, snapshotTTL time.Duration, opts ...Option) *Shim {
	s := &Shim{
		store:       store,
		cache:       cache,
		metrics:     metrics,
		log:         log,
		validate:    newValidator(),
		snapshotTTL: snapshotTTL,
		now:         time.Now,
		newID:       uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// Execute выполняет команду и возвращает созданную или изменённую запись,
// снимок таблиц для FetchAll или models.IDRef для удаления.
func (s *Shim) Execute(ctx context.Context, cmd Command) (any, error) {
	const op = "shim.Execute"
	start := time.Now()

	result, err := s.dispatch(ctx, cmd)

	status := "success"
	if err != nil {
		status = "error"
	}
	s.metrics.ObserveAction(cmd.Action(), status, time.Since(start))

	if err != nil {
		s.log.Warn("action failed", sl.Op(op), slog.String("action", cmd.Action()), sl.Err(err))
		return nil, err
	}
	s.log.Debug("action executed", sl.Op(op), slog.String("action", cmd.Action()))
	return result, nil
}

func (s *Shim) dispatch(ctx context.Context, cmd Command) (any, error) {
	switch c := cmd.(type) {
	case FetchAll:
		return s.fetchAll(ctx)
	case AddSubscriber:
		return s.addSubscriber(ctx, c)
	case UpdateSubscriber:
		return s.updateSubscriber(ctx, c)
	case DeleteSubscriber:
		return s.deleteSubscriber(ctx, c)
	case AddPlan:
		return s.addPlan(ctx, c)
	case UpdatePlan:
		return s.updatePlan(ctx, c)
	case DeletePlan:
		return s.deletePlan(ctx, c)
	case AddPayment:
		return s.addPayment(ctx, c)
	case DeletePayment:
		return s.deletePayment(ctx, c)
	default:
		return nil, fmt.Errorf("shim.dispatch: %w: %T", ErrUnknownAction, cmd)
	}
}

// Snapshot читает все три таблицы, по возможности из кеша.
func (s *Shim) Snapshot(ctx context.Context) (models.Snapshot, error) {
	return s.fetchAll(ctx)
}

func (s *Shim) fetchAll(ctx context.Context) (models.Snapshot, error) {
	const op = "shim.fetchAll"

	var cached models.Snapshot
	found, err := s.cache.Get(ctx, snapshotKey, &cached)
	if err != nil {
		s.log.Warn("failed to read snapshot from cache", sl.Op(op), sl.Err(err))
	}
	if found {
		return cached.Clone(), nil
	}

	s.cacheMu.Lock()
	gen := s.gen
	s.cacheMu.Unlock()

	subs, err := s.store.ListSubscribers(ctx)
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("%s: %w", op, err)
	}
	plans, err := s.store.ListPlans(ctx)
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("%s: %w", op, err)
	}
	payments, err := s.store.ListPayments(ctx)
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("%s: %w", op, err)
	}
	snap := models.Snapshot{Subscribers: subs, Plans: plans, Payments: payments}.Clone()
	models.SortPaymentsNewestFirst(snap.Payments)

	s.storeSnapshot(ctx, gen, snap)
	return snap, nil
}

// storeSnapshot кладёт снимок в кеш, если с момента чтения gen таблицы не менялись.
func (s *Shim) storeSnapshot(ctx context.Context, gen uint64, snap models.Snapshot) {
	const op = "shim.storeSnapshot"

	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	if s.gen != gen {
		s.log.Debug("tables changed during read, snapshot not cached", sl.Op(op))
		return
	}
	if err := s.cache.Set(ctx, snapshotKey, snap, s.snapshotTTL); err != nil {
		s.log.Warn("failed to cache snapshot", sl.Op(op), sl.Err(err))
	}
}

func (s *Shim) invalidate(ctx context.Context) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.gen++
	if err := s.cache.Invalidate(ctx, snapshotKey); err != nil {
		s.log.Warn("failed to invalidate snapshot cache", slog.String("key", snapshotKey), sl.Err(err))
	}
}

func (s *Shim) today() models.Date {
	return models.DateOf(s.now())
}

func (s *Shim) addSubscriber(ctx context.Context, c AddSubscriber) (models.Subscriber, error) {
	const op = "shim.addSubscriber"

	if err := s.check(c.Input); err != nil {
		return models.Subscriber{}, fmt.Errorf("%s: %w", op, err)
	}
	sub := models.Subscriber{
		ID:       s.newID(),
		Name:     c.Input.Name,
		Email:    c.Input.Email,
		Address:  c.Input.Address,
		PlanID:   models.NormalizePlanID(c.Input.PlanID),
		Status:   c.Input.Status,
		JoinDate: s.today(),
	}
	if err := s.store.CreateSubscriber(ctx, sub); err != nil {
		return models.Subscriber{}, fmt.Errorf("%s: %w", op, err)
	}
	s.invalidate(ctx)
	s.log.Info("created subscriber", slog.String("id", sub.ID))
	return sub, nil
}

func (s *Shim) updateSubscriber(ctx context.Context, c UpdateSubscriber) (models.Subscriber, error) {
	const op = "shim.updateSubscriber"

	if err := s.check(c.Update); err != nil {
		return models.Subscriber{}, fmt.Errorf("%s: %w", op, err)
	}
	stored, err := s.store.UpdateSubscriber(ctx, c.Update.Subscriber())
	if err != nil {
		return models.Subscriber{}, fmt.Errorf("%s: %w", op, err)
	}
	s.invalidate(ctx)
	s.log.Info("updated subscriber", slog.String("id", stored.ID))
	return stored, nil
}

func (s *Shim) deleteSubscriber(ctx context.Context, c DeleteSubscriber) (models.IDRef, error) {
	const op = "shim.deleteSubscriber"

	if err := s.checkID(c.ID); err != nil {
		return models.IDRef{}, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.store.DeleteSubscriber(ctx, c.ID); err != nil {
		return models.IDRef{}, fmt.Errorf("%s: %w", op, err)
	}
	s.invalidate(ctx)
	s.log.Info("deleted subscriber", slog.String("id", c.ID))
	return models.IDRef{ID: c.ID}, nil
}

func (s *Shim) addPlan(ctx context.Context, c AddPlan) (models.Plan, error) {
	const op = "shim.addPlan"

	if err := s.check(c.Input); err != nil {
		return models.Plan{}, fmt.Errorf("%s: %w", op, err)
	}
	plan := models.Plan{
		ID:          s.newID(),
		Name:        c.Input.Name,
		Speed:       c.Input.Speed,
		Price:       c.Input.Price,
		Description: c.Input.Description,
	}
	if err := s.store.CreatePlan(ctx, plan); err != nil {
		return models.Plan{}, fmt.Errorf("%s: %w", op, err)
	}
	s.invalidate(ctx)
	s.log.Info("created plan", slog.String("id", plan.ID))
	return plan, nil
}

func (s *Shim) updatePlan(ctx context.Context, c UpdatePlan) (models.Plan, error) {
	const op = "shim.updatePlan"

	if err := s.check(c.Update); err != nil {
		return models.Plan{}, fmt.Errorf("%s: %w", op, err)
	}
	stored, err := s.store.UpdatePlan(ctx, c.Update.Plan())
	if err != nil {
		return models.Plan{}, fmt.Errorf("%s: %w", op, err)
	}
	s.invalidate(ctx)
	s.log.Info("updated plan", slog.String("id", stored.ID))
	return stored, nil
}

func (s *Shim) deletePlan(ctx context.Context, c DeletePlan) (models.IDRef, error) {
	const op = "shim.deletePlan"

	if err := s.checkID(c.ID); err != nil {
		return models.IDRef{}, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.store.DeletePlan(ctx, c.ID); err != nil {
		return models.IDRef{}, fmt.Errorf("%s: %w", op, err)
	}
	s.invalidate(ctx)
	s.log.Info("deleted plan", slog.String("id", c.ID))
	return models.IDRef{ID: c.ID}, nil
}

func (s *Shim) addPayment(ctx context.Context, c AddPayment) (models.Payment, error) {
	const op = "shim.addPayment"

	if err := s.check(c.Input); err != nil {
		return models.Payment{}, fmt.Errorf("%s: %w", op, err)
	}
	p := models.Payment{
		ID:     s.newID(),
		UserID: c.Input.UserID,
		Amount: c.Input.Amount,
		Date:   s.today(),
		Method: c.Input.Method,
	}
	if err := s.store.CreatePayment(ctx, p); err != nil {
		return models.Payment{}, fmt.Errorf("%s: %w", op, err)
	}
	s.invalidate(ctx)
	s.log.Info("recorded payment", slog.String("id", p.ID), slog.String("user_id", p.UserID))
	return p, nil
}

func (s *Shim) deletePayment(ctx context.Context, c DeletePayment) (models.IDRef, error) {
	const op = "shim.deletePayment"

	if err := s.checkID(c.ID); err != nil {
		return models.IDRef{}, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.store.DeletePayment(ctx, c.ID); err != nil {
		return models.IDRef{}, fmt.Errorf("%s: %w", op, err)
	}
	s.invalidate(ctx)
	s.log.Info("deleted payment", slog.String("id", c.ID))
	return models.IDRef{ID: c.ID}, nil
}
