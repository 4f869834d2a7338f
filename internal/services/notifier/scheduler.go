// Package notifier рассылает напоминания об оплате: планировщик публикует их
// в RabbitMQ, отправитель читает очередь и отправляет письма по SMTP.
package notifier

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/wifinet-dashboard/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/wifinet-dashboard/internal/lib/sl"
	"github.com/magabrotheeeer/wifinet-dashboard/internal/models"
	"github.com/magabrotheeeer/wifinet-dashboard/internal/services/billing"
)

// Source снимок таблиц.
type Source interface {
	Snapshot(ctx context.Context) (models.Snapshot, error)
}

// Deduper помнит, какие напоминания уже отправлены.
type Deduper interface {
	MarkOnce(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Invalidate(ctx context.Context, key string) error
}

// SchedulerService ищет абонентов с близкой датой оплаты и публикует напоминания.
type SchedulerService struct {
	source   Source
	dedup    Deduper
	log      *slog.Logger
	dedupTTL time.Duration
	now      func() time.Time
}

// NewSchedulerService создает новый экземпляр SchedulerService.
// Одно напоминание на абонента и дату оплаты держится в Redis dedupTTL.
func NewSchedulerService(source Source, dedup Deduper, log *slog.Logger, dedupTTL time.Duration, now func() time.Time) *SchedulerService {
	return &SchedulerService{
		source:   source,
		dedup:    dedup,
		log:      log,
		dedupTTL: dedupTTL,
		now:      now,
	}
}

// DedupKey ключ напоминания абоненту о конкретной дате оплаты.
func DedupKey(r billing.Reminder) string {
	return "wifinet:reminder:" + r.Subscriber.ID + ":" + r.DueDate.String()
}

// Run публикует напоминания сразу и затем каждые interval до отмены ctx.
func (s *SchedulerService) Run(ctx context.Context, channel rabbitmq.Channel, interval time.Duration) {
	s.runOnceLogged(ctx, channel)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runOnceLogged(ctx, channel)
		}
	}
}

func (s *SchedulerService) runOnceLogged(ctx context.Context, channel rabbitmq.Channel) {
	if _, err := s.RunOnce(ctx, channel); err != nil {
		s.log.Error("reminder run failed", sl.Err(err))
	}
}

// RunOnce публикует ещё не отправленные напоминания и возвращает их число.
// Ошибка публикации одного напоминания не останавливает остальные.
func (s *SchedulerService) RunOnce(ctx context.Context, channel rabbitmq.Channel) (int, error) {
	const op = "notifier.RunOnce"
	log := s.log.With(sl.Op(op))

	log.Info("starting search for subscribers with due dates soon")
	snap, err := s.source.Snapshot(ctx)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	found, published := 0, 0
	for r := range billing.DueSoon(snap, s.now()) {
		found++
		key := DedupKey(r)
		fresh, err := s.dedup.MarkOnce(ctx, key, s.dedupTTL)
		if err != nil {
			log.Error("failed to check reminder dedup", slog.String("key", key), sl.Err(err))
			continue
		}
		if !fresh {
			log.Debug("reminder already sent", slog.String("key", key))
			continue
		}
		if err := rabbitmq.PublishMessage(channel, rabbitmq.ExchangeReminders, rabbitmq.RoutingKeyDueSoon, r, rabbitmq.WithMessageID(key)); err != nil {
			log.Error("failed to publish message", slog.String("subscriber", r.Subscriber.ID), sl.Err(err))
			if err := s.dedup.Invalidate(ctx, key); err != nil {
				log.Error("failed to release reminder dedup", slog.String("key", key), sl.Err(err))
			}
			continue
		}
		published++
	}

	if found == 0 {
		log.Info("no subscribers with due dates soon")
		return 0, nil
	}
	log.Info("reminders published", slog.Int("found", found), slog.Int("published", published))
	return published, nil
}
