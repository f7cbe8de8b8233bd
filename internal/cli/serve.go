package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/juju/clock"
	"github.com/spf13/cobra"

	"flashwash/internal/config"
	"flashwash/internal/events"
	"flashwash/internal/lock"
	"flashwash/internal/server"
)

func newServeCmd() *cobra.Command {
	var (
		migrateUp bool
		addr      string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.HTTPAddr = addr
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			db, err := openDB(cfg, migrateUp)
			if err != nil {
				return err
			}
			defer closeDB(db)

			locker, err := admissionLocker(cfg)
			if err != nil {
				return err
			}

			publisher := eventPublisher(cfg)
			if c, ok := publisher.(io.Closer); ok {
				defer func() { _ = c.Close() }()
			}

			srv := server.New(server.Deps{
				Config:    cfg,
				DB:        db,
				Clock:     clock.WallClock,
				Locker:    locker,
				Publisher: publisher,
			})
			return srv.Run(ctx, cfg.HTTPAddr)
		},
	}

	cmd.Flags().BoolVar(&migrateUp, "migrate", true, "run database migrations on startup")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides HTTP_ADDR)")
	return cmd
}

func admissionLocker(cfg *config.Config) (lock.Locker, error) {
	client, err := config.NewRedisClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("admission lock: %w", err)
	}
	if client == nil {
		logger.Infof("admission lock: in-process")
		return lock.NewLocal(), nil
	}
	logger.Infof("admission lock: redis %s ttl=%s", cfg.RedisAddr, cfg.AdmissionLockTTL)
	l, err := lock.NewRedis(client, cfg.AdmissionLockTTL)
	if err != nil {
		return nil, err
	}
	return l, nil
}

func eventPublisher(cfg *config.Config) events.Publisher {
	if cfg.AMQPURL == "" {
		return events.Noop{}
	}
	logger.Infof("publishing reservation events to queue %q", cfg.AMQPQueue)
	return events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPQueue)
}
