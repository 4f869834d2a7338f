// Package memory реализует табличное хранилище в памяти процесса.
//
// Store повторяет модель электронной таблицы: три листа, строки которых
// хранятся в порядке добавления. Любое чтение по id, замена и удаление
// выполняются полным просмотром листа, то есть стоят O(строк) на операцию.
// Для десятков и сотен абонентов этого достаточно.
//
// Store создаётся при старте процесса и передаётся шиму явно;
// сбрасывается только перезапуском.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/magabrotheeeer/wifinet-dashboard/internal/models"
	"github.com/magabrotheeeer/wifinet-dashboard/internal/storage"
)

// Store три листа таблицы: Users, Products, Payments.
type Store struct {
	mu          sync.Mutex
	subscribers []models.Subscriber
	plans       []models.Plan
	payments    []models.Payment
}

// New создаёт пустое хранилище.
func New() *Store {
	return &Store{}
}

// NewFromSnapshot создаёт хранилище, заполненное копией снимка.
// Платежи снимка идут от новых к старым, лист хранит их в порядке записи.
func NewFromSnapshot(snap models.Snapshot) *Store {
	c := snap.Clone()
	slices.Reverse(c.Payments)
	return &Store{
		subscribers: c.Subscribers,
		plans:       c.Plans,
		payments:    c.Payments,
	}
}

// indexOf ищет строку по id полным просмотром листа.
func indexOf[T any](rows []T, id string, key func(T) string) int {
	for i := range rows {
		if key(rows[i]) == id {
			return i
		}
	}
	return -1
}

func removeAt[T any](rows []T, i int) []T {
	return append(rows[:i], rows[i+1:]...)
}

func subscriberID(s models.Subscriber) string { return s.ID }
func planID(p models.Plan) string             { return p.ID }
func paymentID(p models.Payment) string       { return p.ID }

func checkCtx(ctx context.Context, op string) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
		return nil
	}
}

// ListSubscribers возвращает копию листа абонентов в порядке добавления.
func (s *Store) ListSubscribers(ctx context.Context) ([]models.Subscriber, error) {
	const op = "storage.memory.ListSubscribers"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.Snapshot{Subscribers: s.subscribers}.Clone().Subscribers, nil
}

// CreateSubscriber дописывает строку в конец листа.
func (s *Store) CreateSubscriber(ctx context.Context, sub models.Subscriber) error {
	const op = "storage.memory.CreateSubscriber"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if indexOf(s.subscribers, sub.ID, subscriberID) >= 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrDuplicate)
	}
	sub.PlanID = models.NormalizePlanID(sub.PlanID)
	s.subscribers = append(s.subscribers, sub)
	return nil
}

// UpdateSubscriber заменяет строку целиком, кроме даты подключения,
// и возвращает запись в том виде, в каком она сохранена.
func (s *Store) UpdateSubscriber(ctx context.Context, sub models.Subscriber) (models.Subscriber, error) {
	const op = "storage.memory.UpdateSubscriber"
	if err := checkCtx(ctx, op); err != nil {
		return models.Subscriber{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.subscribers, sub.ID, subscriberID)
	if i < 0 {
		return models.Subscriber{}, fmt.Errorf("%s: subscriber %s: %w", op, sub.ID, storage.ErrNotFound)
	}
	sub.JoinDate = s.subscribers[i].JoinDate
	sub.PlanID = models.NormalizePlanID(sub.PlanID)
	s.subscribers[i] = sub
	return sub, nil
}

// DeleteSubscriber удаляет строку. Платежи абонента не трогаются.
func (s *Store) DeleteSubscriber(ctx context.Context, id string) error {
	const op = "storage.memory.DeleteSubscriber"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.subscribers, id, subscriberID)
	if i < 0 {
		return fmt.Errorf("%s: subscriber %s: %w", op, id, storage.ErrNotFound)
	}
	s.subscribers = removeAt(s.subscribers, i)
	return nil
}

// ListPlans возвращает копию листа тарифов в порядке добавления.
func (s *Store) ListPlans(ctx context.Context) ([]models.Plan, error) {
	const op = "storage.memory.ListPlans"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Plan{}, s.plans...), nil
}

// CreatePlan дописывает строку в конец листа.
func (s *Store) CreatePlan(ctx context.Context, plan models.Plan) error {
	const op = "storage.memory.CreatePlan"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if indexOf(s.plans, plan.ID, planID) >= 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrDuplicate)
	}
	s.plans = append(s.plans, plan)
	return nil
}

// UpdatePlan заменяет строку целиком.
func (s *Store) UpdatePlan(ctx context.Context, plan models.Plan) (models.Plan, error) {
	const op = "storage.memory.UpdatePlan"
	if err := checkCtx(ctx, op); err != nil {
		return models.Plan{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.plans, plan.ID, planID)
	if i < 0 {
		return models.Plan{}, fmt.Errorf("%s: plan %s: %w", op, plan.ID, storage.ErrNotFound)
	}
	s.plans[i] = plan
	return plan, nil
}

// DeletePlan удаляет строку. Ссылки абонентов на тариф остаются висячими.
func (s *Store) DeletePlan(ctx context.Context, id string) error {
	const op = "storage.memory.DeletePlan"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.plans, id, planID)
	if i < 0 {
		return fmt.Errorf("%s: plan %s: %w", op, id, storage.ErrNotFound)
	}
	s.plans = removeAt(s.plans, i)
	return nil
}

// ListPayments возвращает копию листа платежей, отсортированную от новых к старым.
// Из платежей одного дня первым идёт записанный позже.
func (s *Store) ListPayments(ctx context.Context) ([]models.Payment, error) {
	const op = "storage.memory.ListPayments"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Payment, 0, len(s.payments))
	for i := len(s.payments) - 1; i >= 0; i-- {
		out = append(out, s.payments[i])
	}
	models.SortPaymentsNewestFirst(out)
	return out, nil
}

// CreatePayment дописывает строку в конец листа.
func (s *Store) CreatePayment(ctx context.Context, p models.Payment) error {
	const op = "storage.memory.CreatePayment"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if indexOf(s.payments, p.ID, paymentID) >= 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrDuplicate)
	}
	s.payments = append(s.payments, p)
	return nil
}

// DeletePayment удаляет строку.
func (s *Store) DeletePayment(ctx context.Context, id string) error {
	const op = "storage.memory.DeletePayment"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.payments, id, paymentID)
	if i < 0 {
		return fmt.Errorf("%s: payment %s: %w", op, id, storage.ErrNotFound)
	}
	s.payments = removeAt(s.payments, i)
	return nil
}
