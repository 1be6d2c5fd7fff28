package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"moneylog/internal/amqp"
	"moneylog/internal/backend"
	"moneylog/internal/cli"
	"moneylog/internal/config"
	apphttp "moneylog/internal/http"
	applog "moneylog/internal/log"
)

func main() {
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		cli.SetupLogger("info").Error("Configuration validation failed", applog.FieldError, err.Error())
		os.Exit(1)
	}
	logger := cli.SetupLogger(cfg.LogLevel)

	if err := run(cfg, logger); err != nil {
		logger.Error("Application error", applog.FieldError, err.Error())
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}

func run(cfg *config.Config, logger *applog.Logger) error {
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	ctx, cancel := cli.ShutdownContext(context.Background(), logger)
	defer cancel()

	sess, err := cli.InitSession(cfg, loc, time.Now, logger)
	if err != nil {
		return err
	}

	backendCfg, err := backend.FromAppConfig(cfg, loc)
	if err != nil {
		return err
	}
	reports, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg, sess.Ledger())
	if err != nil {
		return err
	}
	if reports.Cleanup != nil {
		defer func() {
			if err := reports.Cleanup(); err != nil {
				logger.Warn("Backend cleanup failed", applog.FieldError, err.Error())
			}
		}()
	}

	g, gctx := errgroup.WithContext(ctx)

	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(ctx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			return err
		}
		defer client.Close()

		publisher := amqp.NewPublisher(client, logger)
		detach := publisher.Attach(sess)
		defer detach()
		g.Go(func() error { return publisher.Run(gctx) })
		logger.Info("Event publishing enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	}

	srv := apphttp.NewServer(":"+cfg.Port, sess, reports.Reports, logger)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	g.Go(func() error {
		logger.Info("Starting moneylog server",
			"port", cfg.Port,
			applog.FieldVariant, cfg.Variant,
			"backend", cfg.DataBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer shutdownCancel()
		logger.Info("Shutting down server", applog.FieldOperation, applog.OpShutdown)
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
