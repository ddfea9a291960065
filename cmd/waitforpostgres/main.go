package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logrus.WithError(err).Error("wait for postgres")
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		dsn      string
		timeout  time.Duration
		interval time.Duration
	)

	cmd := &cobra.Command{
		Use:           "waitforpostgres",
		Short:         "Block until the session database accepts connections",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if dsn == "" {
				dsn = firstEnv("DATABASE_URL", "TEST_POSTGRES_DSN")
			}
			if dsn == "" {
				return fmt.Errorf("DATABASE_URL or TEST_POSTGRES_DSN is required")
			}
			if timeout <= 0 || interval <= 0 {
				return fmt.Errorf("timeout and interval must be > 0")
			}

			db, err := sql.Open("postgres", dsn)
			if err != nil {
				return fmt.Errorf("open postgres: %w", err)
			}
			defer db.Close()

			return waitReady(cmd.Context(), db, timeout, interval)
		},
	}
	cmd.Flags().StringVar(&dsn, "dsn", "", "postgres DSN (defaults to DATABASE_URL, then TEST_POSTGRES_DSN)")
	cmd.Flags().DurationVar(&timeout, "timeout", 60*time.Second, "how long to wait before giving up")
	cmd.Flags().DurationVar(&interval, "interval", 2*time.Second, "delay between attempts")
	return cmd
}

type pinger interface {
	PingContext(ctx context.Context) error
}

func waitReady(ctx context.Context, db pinger, timeout, interval time.Duration) error {
	if ctx == nil {
		ctx = context.Background()
	}
	deadline := time.Now().Add(timeout)
	for attempt := 1; ; attempt++ {
		pingCtx, cancel := context.WithTimeout(ctx, interval)
		err := db.PingContext(pingCtx)
		cancel()
		if err == nil {
			logrus.WithField("attempt", attempt).Info("postgres ready")
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("postgres not ready within %s: %w", timeout, err)
		}
		logrus.WithError(err).WithField("attempt", attempt).Debug("postgres not ready yet")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}
