package main

import (
	"context"
	"os"
	"time"

	cli "github.com/urfave/cli/v3"

	"github.com/dukex/flowlint/pkg/cache"
	"github.com/dukex/flowlint/pkg/cmd"
	"github.com/dukex/flowlint/pkg/eventbus"
	"github.com/dukex/flowlint/pkg/log"
	"github.com/dukex/flowlint/pkg/otelhelper"
	"github.com/dukex/flowlint/pkg/scheduler"
	"github.com/dukex/flowlint/pkg/services"
)

const defaultPort = 9091

func main() {
	command := &cli.Command{
		Name:                  "flowlint-api",
		Usage:                 "Store, validate, and report on n8n workflow graphs",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Database connection URL for persistence",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus provider (kafka, gochannel)",
				Value:   "gochannel",
				Sources: cli.EnvVars("EVENT_BUS"),
			},
			&cli.StringFlag{
				Name:    "redis-url",
				Usage:   "Redis URL for the report cache, empty disables caching",
				Sources: cli.EnvVars("REDIS_URL"),
			},
			&cli.StringFlag{
				Name:    "schemas-path",
				Usage:   "Directory with additional node type schemas",
				Sources: cli.EnvVars("SCHEMAS_PATH"),
			},
			&cli.StringSliceFlag{
				Name:    "deploy-gate-brokers",
				Usage:   "Kafka brokers for deploy-gate verdicts, empty disables publishing",
				Sources: cli.EnvVars("DEPLOY_GATE_BROKERS"),
			},
			&cli.StringFlag{
				Name:    "revalidate-cron",
				Usage:   "Cron expression for corpus revalidation sweeps, empty disables",
				Sources: cli.EnvVars("REVALIDATE_CRON"),
			},
			&cli.BoolFlag{
				Name:    "tracing",
				Usage:   "Enable OpenTelemetry tracing",
				Sources: cli.EnvVars("TRACING_ENABLED"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: run,
	}

	err := command.Run(context.Background(), os.Args)
	if err != nil {
		panic(err)
	}
}

func run(ctx context.Context, command *cli.Command) error {
	log.Setup(command.String("log-level"))

	logger := log.WithModule("api")
	logger.InfoContext(ctx, "Initializing Flowlint API")

	registry := cmd.NewRegistry(logger, command.String("schemas-path"))

	persistence, err := cmd.NewPersistence(ctx, logger, command.String("database-url"))
	if err != nil {
		return err
	}

	defer func() {
		if err := persistence.Close(ctx); err != nil {
			logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
		}
	}()

	eventBus := cmd.NewEventBus(command.String("event-bus"), logger)
	defer func() {
		if err := eventBus.Close(); err != nil {
			logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
		}
	}()

	api := NewAPI(logger, persistence, registry, eventBus)

	if redisURL := command.String("redis-url"); redisURL != "" {
		reportCache, err := cache.NewReportCache(ctx, logger, redisURL, time.Hour)
		if err != nil {
			return err
		}

		defer func() {
			if err := reportCache.Close(); err != nil {
				logger.ErrorContext(ctx, "Failed to close report cache", "error", err)
			}
		}()

		api.WithCache(reportCache)
	}

	if brokers := command.StringSlice("deploy-gate-brokers"); len(brokers) > 0 {
		deployGate, err := eventbus.NewDeployGatePublisher(logger, brokers)
		if err != nil {
			return err
		}

		defer func() {
			if err := deployGate.Close(); err != nil {
				logger.ErrorContext(ctx, "Failed to close deploy-gate publisher", "error", err)
			}
		}()

		api.WithDeployGate(deployGate)
	}

	if command.Bool("tracing") {
		tracer, err := otelhelper.NewTracer(ctx, "flowlint-api")
		if err != nil {
			return err
		}

		api.WithTracer(tracer)
	}

	if cronExpr := command.String("revalidate-cron"); cronExpr != "" {
		workflowService := services.NewWorkflow(logger, persistence, eventBus)
		validationService := api.ValidationService()

		revalidator, err := scheduler.NewRevalidator(logger, workflowService, validationService, cronExpr)
		if err != nil {
			return err
		}

		if err := revalidator.Start(ctx); err != nil {
			return err
		}

		defer func() {
			if err := revalidator.Stop(ctx); err != nil {
				logger.ErrorContext(ctx, "Failed to stop revalidator", "error", err)
			}
		}()
	}

	if err := api.Start(command.Int("port")); err != nil {
		logger.ErrorContext(ctx, "API server stopped", "error", err)
	}

	return nil
}
