package main

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/magabrotheeeer/wifinet-dashboard/internal/lib/password"
	"github.com/magabrotheeeer/wifinet-dashboard/internal/models"
	"github.com/magabrotheeeer/wifinet-dashboard/internal/services/billing"
	"github.com/magabrotheeeer/wifinet-dashboard/internal/services/export"
)

func newStatsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print revenue, active subscribers and plan usage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, cancel, s, err := opts.connect(cmd)
			if err != nil {
				return err
			}
			defer cancel()

			sum := billing.Stats(s.cache.Snapshot())
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Total revenue:      %s%s\n", opts.currency, billing.FormatAmount(sum.TotalRevenue))
			fmt.Fprintf(out, "Active subscribers: %d\n", sum.ActiveSubscribers)
			fmt.Fprintf(out, "Plans:              %d\n", sum.PlanCount)

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "PLAN\tACTIVE")
			for _, u := range sum.PerPlan {
				fmt.Fprintf(tw, "%s\t%d\n", u.PlanName, u.ActiveSubscribers)
			}
			return tw.Flush()
		},
	}
}

func newDueCmd(opts *options) *cobra.Command {
	var withLinks bool

	cmd := &cobra.Command{
		Use:   "due",
		Short: "List subscribers whose payment is due within three days",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, cancel, s, err := opts.connect(cmd)
			if err != nil {
				return err
			}
			defer cancel()

			out := cmd.OutOrStdout()
			biller := opts.biller()
			reminders := billing.Collect(billing.DueSoon(s.cache.Snapshot(), opts.now()))
			if len(reminders) == 0 {
				fmt.Fprintln(out, "No upcoming payments.")
				return nil
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tEMAIL\tPLAN\tAMOUNT\tDUE\tIN DAYS")
			for _, r := range reminders {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s%s\t%s\t%d\n",
					r.Subscriber.Name, r.Subscriber.Email, r.PlanName,
					opts.currency, billing.FormatAmount(r.AmountDue), r.DueDate, r.DayDiff)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			if withLinks {
				fmt.Fprintln(out)
				for _, r := range reminders {
					fmt.Fprintln(out, biller.Letter(r).MailtoURI())
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&withLinks, "mailto", false, "also print mailto links for each reminder")
	return cmd
}

func newExportCmd(opts *options) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Save all tables to an xlsx workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, cancel, s, err := opts.connect(cmd)
			if err != nil {
				return err
			}
			defer cancel()

			path := filepath.Join(dir, export.FileName(opts.now()))
			f, err := os.Create(path)
			if err != nil {
				return err
			}
			if err := export.Write(f, s.cache.Snapshot()); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "directory to write the workbook into")
	return cmd
}

func newPayCmd(opts *options) *cobra.Command {
	var method string

	cmd := &cobra.Command{
		Use:   "pay <subscriber-id> <amount>",
		Short: "Record a payment for a subscriber",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := strconv.ParseFloat(args[1], 64)
			if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
				return fmt.Errorf("amount must be a positive number, got %q", args[1])
			}
			m := models.PaymentMethod(method)
			if !m.Valid() {
				return fmt.Errorf("unknown payment method %q", method)
			}

			ctx, cancel, s, err := opts.connect(cmd)
			if err != nil {
				return err
			}
			defer cancel()

			sub, ok := s.cache.SubscriberByID(args[0])
			if !ok {
				return fmt.Errorf("subscriber %s not found", args[0])
			}
			p, err := s.cache.AddPayment(ctx, models.PaymentInput{
				UserID: sub.ID,
				Amount: amount,
				Method: m,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Recorded payment %s: %s%s from %s on %s\n",
				p.ID, opts.currency, billing.FormatAmount(p.Amount), sub.Name, p.Date)
			return nil
		},
	}
	cmd.Flags().StringVarP(&method, "method", "m", string(models.MethodCash), "payment method: Cash or GCash")
	return cmd
}

func newHashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password <password>",
		Short: "Print a bcrypt hash to put into the auth section of the config",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := password.GetHash(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}
