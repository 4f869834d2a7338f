// Package notifier собирает процесс рассылки напоминаний: планировщик и отправителя писем.
package notifier

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/wifinet-dashboard/internal/cache"
	"github.com/magabrotheeeer/wifinet-dashboard/internal/config"
	"github.com/magabrotheeeer/wifinet-dashboard/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/wifinet-dashboard/internal/lib/sl"
	"github.com/magabrotheeeer/wifinet-dashboard/internal/lib/smtp"
	"github.com/magabrotheeeer/wifinet-dashboard/internal/metrics"
	"github.com/magabrotheeeer/wifinet-dashboard/internal/services/billing"
	notifierservice "github.com/magabrotheeeer/wifinet-dashboard/internal/services/notifier"
	"github.com/magabrotheeeer/wifinet-dashboard/internal/services/shim"
	"github.com/magabrotheeeer/wifinet-dashboard/internal/storage/driver"
)

// Deduper хранилище отметок об отправленных напоминаниях.
type Deduper interface {
	notifierservice.Deduper
	Close() error
}

// App представляет приложение рассылки.
type App struct {
	scheduler *notifierservice.SchedulerService
	sender    *notifierservice.SenderService
	store     *driver.Store
	dedup     Deduper
	conn      *amqp.Connection
	ch        *amqp.Channel
	interval  time.Duration
	logger    *slog.Logger
}

type noopDeduper struct{ cache.Noop }

func (noopDeduper) Close() error { return nil }

// New создает новый экземпляр приложения рассылки.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	store, err := driver.Open(ctx, cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	var dedup Deduper = noopDeduper{}
	if cfg.AddressRedis != "" {
		redisCache, err := cache.InitServer(ctx, cfg.RedisConnection)
		if err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("cache not initialized: %w", err)
		}
		dedup = redisCache
	} else {
		logger.Warn("redis address is empty, reminders are not deduplicated between runs")
	}

	conn, err := rabbitmq.Connect(cfg.RabbitMQ.URL, cfg.RabbitMQ.Retries, cfg.RabbitMQ.RetryDelay)
	if err != nil {
		_ = dedup.Close()
		_ = store.Close()
		return nil, fmt.Errorf("failed to connect RabbitMQ: %w", err)
	}

	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.ExchangeReminders, rabbitmq.GetReminderQueues())
	if err != nil {
		closeResources(nil, conn, logger)
		_ = dedup.Close()
		_ = store.Close()
		return nil, fmt.Errorf("failed to setup RabbitMQ channel: %w", err)
	}

	// Снимок читается напрямую из хранилища, кеш дашборда здесь не нужен.
	source := shim.New(logger, store, cache.Noop{}, metrics.Nop{}, 0)
	biller := billing.Biller{CompanyName: cfg.CompanyName, CurrencySymbol: cfg.CurrencySymbol}

	return &App{
		scheduler: notifierservice.NewSchedulerService(source, dedup, logger, cfg.Scheduler.DedupTTL, time.Now),
		sender:    notifierservice.NewSenderService(smtp.NewTransport(cfg.SMTP, logger), biller, logger),
		store:     store,
		dedup:     dedup,
		conn:      conn,
		ch:        ch,
		interval:  cfg.Scheduler.Interval,
		logger:    logger,
	}, nil
}

func closeResources(ch *amqp.Channel, conn *amqp.Connection, logger *slog.Logger) {
	if ch != nil {
		if err := ch.Close(); err != nil {
			logger.Error("failed to close channel", sl.Err(err))
		}
	}
	if conn != nil {
		if err := conn.Close(); err != nil {
			logger.Error("failed to close connection", sl.Err(err))
		}
	}
}

// Run запускает отправителя и планировщик до отмены ctx.
func (a *App) Run(ctx context.Context) error {
	err := rabbitmq.ConsumerMessage(ctx, a.ch, rabbitmq.QueueDueSoon, a.sender.SendReminder, a.logger)
	if err != nil {
		a.logger.Error("failed to start reminders consumer", sl.Err(err))
		return err
	}

	go a.scheduler.Run(ctx, a.ch, a.interval)

	<-ctx.Done()
	a.logger.Info("shutting down notifier")

	closeResources(a.ch, a.conn, a.logger)
	if err := a.dedup.Close(); err != nil {
		a.logger.Error("failed to close cache", sl.Err(err))
	}
	if err := a.store.Close(); err != nil {
		a.logger.Error("failed to close storage", sl.Err(err))
	}
	return nil
}
