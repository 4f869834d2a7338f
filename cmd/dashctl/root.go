package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/magabrotheeeer/wifinet-dashboard/internal/client"
	"github.com/magabrotheeeer/wifinet-dashboard/internal/localcache"
	"github.com/magabrotheeeer/wifinet-dashboard/internal/services/billing"
)

type options struct {
	server   string
	user     string
	password string
	timeout  time.Duration
	verbose  bool

	company  string
	currency string

	now func() time.Time
}

type session struct {
	client *client.Client
	cache  *localcache.Cache
}

func newRootCmd(out io.Writer, now func() time.Time) *cobra.Command {
	opts := &options{now: now}

	root := &cobra.Command{
		Use:           "dashctl",
		Short:         "Command line client for the WiFiNet dashboard",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)

	flags := root.PersistentFlags()
	flags.StringVar(&opts.server, "server", "http://localhost:8080", "dashboard base URL")
	flags.StringVarP(&opts.user, "user", "u", "admin", "username")
	flags.StringVarP(&opts.password, "password", "p", "admin", "password")
	flags.DurationVar(&opts.timeout, "timeout", 30*time.Second, "request timeout")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "print debug logs to stderr")
	flags.StringVar(&opts.company, "company", "WiFiNet", "company name used in reminders")
	flags.StringVar(&opts.currency, "currency", "₱", "currency symbol")

	root.AddCommand(
		newStatsCmd(opts),
		newDueCmd(opts),
		newExportCmd(opts),
		newPayCmd(opts),
		newHashPasswordCmd(),
	)
	return root
}

// connect входит на сервер и загружает таблицы в кеш.
func (o *options) connect(cmd *cobra.Command) (context.Context, context.CancelFunc, *session, error) {
	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	ctx, cancel := context.WithTimeout(cmd.Context(), o.timeout)

	cl := client.New(o.server, o.timeout)
	if _, err := cl.Login(ctx, o.user, o.password); err != nil {
		cancel()
		return nil, nil, nil, fmt.Errorf("login: %w", err)
	}
	cache := localcache.New(cl, log)
	if err := cache.Load(ctx); err != nil {
		cancel()
		return nil, nil, nil, err
	}
	return ctx, cancel, &session{client: cl, cache: cache}, nil
}

func (o *options) biller() billing.Biller {
	return billing.Biller{CompanyName: o.company, CurrencySymbol: o.currency}
}
