// Package localcache держит на клиенте копию трёх таблиц и меняет её только
// после того, как сервер подтвердил изменение.
package localcache

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/magabrotheeeer/wifinet-dashboard/internal/lib/sl"
	"github.com/magabrotheeeer/wifinet-dashboard/internal/models"
)

// Status состояние загрузки.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusError   Status = "error"
)

// Remote сервер с таблицами. *client.Client подходит под этот интерфейс.
type Remote interface {
	FetchAll(ctx context.Context) (models.Snapshot, error)
	AddSubscriber(ctx context.Context, in models.SubscriberInput) (models.Subscriber, error)
	UpdateSubscriber(ctx context.Context, upd models.SubscriberUpdate) (models.Subscriber, error)
	DeleteSubscriber(ctx context.Context, id string) error
	AddPlan(ctx context.Context, in models.PlanInput) (models.Plan, error)
	UpdatePlan(ctx context.Context, upd models.PlanUpdate) (models.Plan, error)
	DeletePlan(ctx context.Context, id string) error
	AddPayment(ctx context.Context, in models.PaymentInput) (models.Payment, error)
	DeletePayment(ctx context.Context, id string) error
}

// Cache клиентский кеш таблиц.
type Cache struct {
	remote Remote
	log    *slog.Logger

	mu     sync.RWMutex
	snap   models.Snapshot
	status Status
	errMsg string
}

// New создаёт пустой кеш в состоянии idle.
func New(remote Remote, log *slog.Logger) *Cache {
	return &Cache{
		remote: remote,
		log:    log,
		snap:   models.Snapshot{}.Clone(),
		status: StatusIdle,
	}
}

// Load читает все таблицы. При ошибке прежние данные остаются на месте,
// статус становится error.
func (c *Cache) Load(ctx context.Context) error {
	const op = "localcache.Load"

	c.mu.Lock()
	c.status = StatusLoading
	c.mu.Unlock()

	snap, err := c.remote.FetchAll(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.status = StatusError
		c.errMsg = err.Error()
		c.log.Error("failed to load tables", sl.Op(op), sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	c.snap = apply(c.snap, Replace{Snapshot: snap})
	c.status = StatusReady
	c.errMsg = ""
	c.log.Debug("tables loaded", sl.Op(op),
		slog.Int("subscribers", len(c.snap.Subscribers)),
		slog.Int("plans", len(c.snap.Plans)),
		slog.Int("payments", len(c.snap.Payments)),
	)
	return nil
}

// Retry повторяет Load. Вызывается пользователем после ошибки.
func (c *Cache) Retry(ctx context.Context) error {
	return c.Load(ctx)
}

// Apply применяет изменение к кешу.
func (c *Cache) Apply(m Mutation) {
	c.mu.Lock()
	c.snap = apply(c.snap, m)
	if _, ok := m.(Replace); ok {
		c.status = StatusReady
		c.errMsg = ""
	}
	c.mu.Unlock()
}

// Status текущее состояние загрузки.
func (c *Cache) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status
}

// Err текст последней ошибки загрузки, пустой если её не было.
func (c *Cache) Err() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.errMsg
}

// Snapshot глубокая копия таблиц.
func (c *Cache) Snapshot() models.Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap.Clone()
}

// PlanOf тариф абонента. Висячая ссылка и отсутствие тарифа дают false.
func (c *Cache) PlanOf(sub models.Subscriber) (models.Plan, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap.PlanOf(sub)
}

// SubscriberByID ищет абонента. Висячая ссылка платежа даёт false.
func (c *Cache) SubscriberByID(id string) (models.Subscriber, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap.SubscriberByID(id)
}

// AddSubscriber создаёт абонента на сервере и дописывает его в кеш.
func (c *Cache) AddSubscriber(ctx context.Context, in models.SubscriberInput) (models.Subscriber, error) {
	sub, err := c.remote.AddSubscriber(ctx, in)
	if err != nil {
		return models.Subscriber{}, fmt.Errorf("localcache.AddSubscriber: %w", err)
	}
	c.Apply(SubscriberAdded{Subscriber: sub})
	return sub, nil
}

// UpdateSubscriber заменяет абонента на сервере и в кеше.
func (c *Cache) UpdateSubscriber(ctx context.Context, upd models.SubscriberUpdate) (models.Subscriber, error) {
	sub, err := c.remote.UpdateSubscriber(ctx, upd)
	if err != nil {
		return models.Subscriber{}, fmt.Errorf("localcache.UpdateSubscriber: %w", err)
	}
	c.Apply(SubscriberUpdated{Subscriber: sub})
	return sub, nil
}

// DeleteSubscriber удаляет абонента. Его платежи остаются.
func (c *Cache) DeleteSubscriber(ctx context.Context, id string) error {
	if err := c.remote.DeleteSubscriber(ctx, id); err != nil {
		return fmt.Errorf("localcache.DeleteSubscriber: %w", err)
	}
	c.Apply(SubscriberDeleted{ID: id})
	return nil
}

func (c *Cache) AddPlan(ctx context.Context, in models.PlanInput) (models.Plan, error) {
	plan, err := c.remote.AddPlan(ctx, in)
	if err != nil {
		return models.Plan{}, fmt.Errorf("localcache.AddPlan: %w", err)
	}
	c.Apply(PlanAdded{Plan: plan})
	return plan, nil
}

func (c *Cache) UpdatePlan(ctx context.Context, upd models.PlanUpdate) (models.Plan, error) {
	plan, err := c.remote.UpdatePlan(ctx, upd)
	if err != nil {
		return models.Plan{}, fmt.Errorf("localcache.UpdatePlan: %w", err)
	}
	c.Apply(PlanUpdated{Plan: plan})
	return plan, nil
}

func (c *Cache) DeletePlan(ctx context.Context, id string) error {
	if err := c.remote.DeletePlan(ctx, id); err != nil {
		return fmt.Errorf("localcache.DeletePlan: %w", err)
	}
	c.Apply(PlanDeleted{ID: id})
	return nil
}

// AddPayment регистрирует платёж и ставит его первым в списке.
func (c *Cache) AddPayment(ctx context.Context, in models.PaymentInput) (models.Payment, error) {
	p, err := c.remote.AddPayment(ctx, in)
	if err != nil {
		return models.Payment{}, fmt.Errorf("localcache.AddPayment: %w", err)
	}
	c.Apply(PaymentAdded{Payment: p})
	return p, nil
}

func (c *Cache) DeletePayment(ctx context.Context, id string) error {
	if err := c.remote.DeletePayment(ctx, id); err != nil {
		return fmt.Errorf("localcache.DeletePayment: %w", err)
	}
	c.Apply(PaymentDeleted{ID: id})
	return nil
}
