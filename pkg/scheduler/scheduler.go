// Package scheduler periodically revalidates the stored workflow corpus,
// catching workflows that went stale after schema updates.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/dukex/flowlint/pkg/services"
)

// Revalidator runs the validator over every stored workflow on a cron
// schedule.
type Revalidator struct {
	logger     *slog.Logger
	workflows  *services.Workflow
	validation *services.Validation
	cronExpr   string
	cron       *cron.Cron
}

// NewRevalidator creates a revalidator. The cron expression uses the
// standard five-field format.
func NewRevalidator(
	logger *slog.Logger,
	workflows *services.Workflow,
	validation *services.Validation,
	cronExpr string,
) (*Revalidator, error) {
	if _, err := cron.ParseStandard(cronExpr); err != nil {
		return nil, fmt.Errorf("invalid cron expression '%s': %w", cronExpr, err)
	}

	return &Revalidator{
		logger:     logger.With("module", "revalidator"),
		workflows:  workflows,
		validation: validation,
		cronExpr:   cronExpr,
	}, nil
}

// Start registers the revalidation job and starts the scheduler.
func (r *Revalidator) Start(ctx context.Context) error {
	r.cron = cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cron.DefaultLogger),
		cron.Recover(cron.DefaultLogger),
	))

	if _, err := r.cron.AddFunc(r.cronExpr, func() {
		r.RunOnce(ctx)
	}); err != nil {
		return fmt.Errorf("failed to add revalidation job: %w", err)
	}

	r.cron.Start()
	r.logger.InfoContext(ctx, "Revalidation scheduler started", "cron", r.cronExpr)

	return nil
}

// RunOnce validates every stored workflow. Failures on one workflow do not
// stop the sweep.
func (r *Revalidator) RunOnce(ctx context.Context) {
	workflows, err := r.workflows.List(ctx)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to list workflows for revalidation", "error", err)

		return
	}

	r.logger.InfoContext(ctx, "Starting revalidation sweep", "workflows", len(workflows))

	var failed int

	for _, workflow := range workflows {
		if _, err := r.validation.ValidateWorkflow(ctx, workflow.ID); err != nil {
			failed++

			r.logger.ErrorContext(ctx, "Revalidation failed",
				"workflow_id", workflow.ID,
				"workflow_name", workflow.Name,
				"error", err,
			)
		}
	}

	r.logger.InfoContext(ctx, "Revalidation sweep finished", "workflows", len(workflows), "failed", failed)
}

// Stop stops the scheduler and waits for any running job to finish.
func (r *Revalidator) Stop(ctx context.Context) error {
	if r.cron == nil {
		return nil
	}

	stopCtx := r.cron.Stop()

	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
		return ctx.Err()
	}

	r.logger.InfoContext(ctx, "Revalidation scheduler stopped")

	return nil
}
