package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/dukex/flowlint/pkg/cache"
	"github.com/dukex/flowlint/pkg/eventbus"
	"github.com/dukex/flowlint/pkg/events"
	"github.com/dukex/flowlint/pkg/models"
	"github.com/dukex/flowlint/pkg/n8n"
	"github.com/dukex/flowlint/pkg/otelhelper"
	"github.com/dukex/flowlint/pkg/persistence"
	"github.com/dukex/flowlint/pkg/registry"
	"github.com/dukex/flowlint/pkg/validation"
)

// ErrReportNotFound is returned when no report has been generated for a
// workflow yet.
var ErrReportNotFound = persistence.ErrReportNotFound

// Validation runs the graph validator against stored or ad-hoc workflows
// and manages the resulting reports.
type Validation struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	registry    *registry.Registry
	reportCache *cache.ReportCache
	eventBus    eventbus.EventBus
	deployGate  *eventbus.DeployGatePublisher
	credentials []*models.Credential
	tracer      trace.Tracer
}

// NewValidation creates the validation service. The cache, event bus,
// deploy gate, and credential list are all optional.
func NewValidation(
	logger *slog.Logger,
	persistence persistence.Persistence,
	reg *registry.Registry,
) *Validation {
	return &Validation{
		logger:      logger,
		persistence: persistence,
		registry:    reg,
	}
}

// WithCache attaches a report cache.
func (v *Validation) WithCache(reportCache *cache.ReportCache) *Validation {
	v.reportCache = reportCache

	return v
}

// WithEventBus attaches an event bus for lifecycle notifications.
func (v *Validation) WithEventBus(eventBus eventbus.EventBus) *Validation {
	v.eventBus = eventBus

	return v
}

// WithDeployGate attaches a deploy-gate verdict publisher.
func (v *Validation) WithDeployGate(deployGate *eventbus.DeployGatePublisher) *Validation {
	v.deployGate = deployGate

	return v
}

// WithCredentials attaches the known credential list. A nil list means the
// credential store is unavailable and existence checks are skipped.
func (v *Validation) WithCredentials(credentials []*models.Credential) *Validation {
	v.credentials = credentials

	return v
}

// WithTracer attaches a tracer for validation run spans.
func (v *Validation) WithTracer(tracer trace.Tracer) *Validation {
	v.tracer = tracer

	return v
}

// ValidateWorkflow validates a stored workflow and persists the resulting
// report. Overrides downgrade matching errors to warnings.
func (v *Validation) ValidateWorkflow(ctx context.Context, workflowID string, overrides ...string) (*models.Report, error) {
	if err := checkOverrides(overrides); err != nil {
		return nil, err
	}

	if v.tracer != nil {
		var span trace.Span

		ctx, span = otelhelper.StartSpan(ctx, v.tracer, "validation.run",
			attribute.String(otelhelper.WorkflowIDKey, workflowID),
		)
		defer span.End()
	}

	workflow, err := v.persistence.WorkflowRepository().GetByID(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	hash, err := cache.WorkflowHash(workflow)
	if err != nil {
		return nil, fmt.Errorf("failed to hash workflow: %w", err)
	}

	if report, ok := v.cachedReport(ctx, workflow, hash, overrides); ok {
		return report, nil
	}

	started := time.Now()

	v.publishStarted(ctx, workflow, hash, overrides)

	report := v.run(workflow, overrides)

	if err := v.persistence.ReportRepository().Save(ctx, report); err != nil {
		v.publishFailed(ctx, workflow, err)

		return nil, fmt.Errorf("failed to save report: %w", err)
	}

	v.cacheReport(ctx, hash, overrides, report)
	v.publishFinished(ctx, workflow, hash, report, false, time.Since(started))
	v.publishVerdict(ctx, report)

	return report, nil
}

// ValidateDocument validates an n8n export document without storing
// anything. Used for ad-hoc validation of workflows not in the corpus.
func (v *Validation) ValidateDocument(ctx context.Context, data []byte, overrides ...string) (*models.Report, error) {
	if err := checkOverrides(overrides); err != nil {
		return nil, err
	}

	workflow, err := n8n.Parse(data)
	if err != nil {
		return nil, NewValidationError("ValidateDocument", "MALFORMED_DOCUMENT", err.Error(), ErrMalformedDocument)
	}

	started := time.Now()

	report := v.run(workflow, overrides)

	v.logger.InfoContext(ctx, "Validated ad-hoc workflow",
		"workflow_name", workflow.Name,
		"errors", report.Errors,
		"warnings", report.Warnings,
		"duration_ms", time.Since(started).Milliseconds(),
	)

	return report, nil
}

// GetReport returns the most recently persisted report for a workflow.
func (v *Validation) GetReport(ctx context.Context, workflowID string) (*models.Report, error) {
	report, err := v.persistence.ReportRepository().GetByWorkflowID(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	return report, nil
}

func (v *Validation) run(workflow *models.Workflow, overrides []string) *models.Report {
	report := validation.Validate(workflow, v.registry, v.credentials)

	if len(overrides) > 0 {
		patterns := make([]validation.OverridePattern, 0, len(overrides))
		for _, name := range overrides {
			patterns = append(patterns, validation.OverridePattern(name))
		}

		validation.ApplyOverrides(report, patterns...)
	}

	return report
}

// cachedReport returns a cached report when the workflow content and the
// override set both match a previous run. Overrides change the report, so
// they are folded into the cache key.
func (v *Validation) cachedReport(ctx context.Context, workflow *models.Workflow, hash string, overrides []string) (*models.Report, bool) {
	if v.reportCache == nil {
		return nil, false
	}

	report, err := v.reportCache.Get(ctx, cacheKey(hash, overrides))
	if errors.Is(err, cache.ErrMiss) {
		return nil, false
	}

	if err != nil {
		v.logger.WarnContext(ctx, "Report cache read failed", "error", err)

		return nil, false
	}

	v.publishFinished(ctx, workflow, hash, report, true, 0)

	return report, true
}

func (v *Validation) cacheReport(ctx context.Context, hash string, overrides []string, report *models.Report) {
	if v.reportCache == nil {
		return
	}

	if err := v.reportCache.Set(ctx, cacheKey(hash, overrides), report); err != nil {
		v.logger.WarnContext(ctx, "Report cache write failed", "error", err)
	}
}

func cacheKey(hash string, overrides []string) string {
	key := hash
	for _, override := range overrides {
		key += ":" + override
	}

	return key
}

func checkOverrides(overrides []string) error {
	for _, name := range overrides {
		if !validation.KnownPattern(name) {
			return NewValidationError(
				"checkOverrides",
				"UNKNOWN_OVERRIDE",
				fmt.Sprintf("unknown override pattern '%s'", name),
				ErrUnknownOverride,
			)
		}
	}

	return nil
}

func (v *Validation) publishStarted(ctx context.Context, workflow *models.Workflow, hash string, overrides []string) {
	if v.eventBus == nil {
		return
	}

	event := events.ValidationStarted{
		BaseEvent:    events.NewBaseEvent(events.ValidationStartedEvent, workflow.ID),
		WorkflowName: workflow.Name,
		WorkflowHash: hash,
		Overrides:    overrides,
		Initiator:    "api",
	}

	if err := v.eventBus.Publish(ctx, workflow.ID, event); err != nil {
		v.logger.WarnContext(ctx, "Failed to publish validation started event", "error", err)
	}
}

func (v *Validation) publishFinished(
	ctx context.Context,
	workflow *models.Workflow,
	hash string,
	report *models.Report,
	cached bool,
	duration time.Duration,
) {
	if v.eventBus == nil {
		return
	}

	event := events.ValidationFinished{
		BaseEvent:    events.NewBaseEvent(events.ValidationFinishedEvent, workflow.ID),
		WorkflowName: workflow.Name,
		WorkflowHash: hash,
		Valid:        report.Valid(),
		Errors:       report.Errors,
		Warnings:     report.Warnings,
		Cached:       cached,
		DurationMs:   duration.Milliseconds(),
	}

	if err := v.eventBus.Publish(ctx, workflow.ID, event); err != nil {
		v.logger.WarnContext(ctx, "Failed to publish validation finished event", "error", err)
	}
}

func (v *Validation) publishFailed(ctx context.Context, workflow *models.Workflow, cause error) {
	if v.eventBus == nil {
		return
	}

	event := events.ValidationFailed{
		BaseEvent:    events.NewBaseEvent(events.ValidationFailedEvent, workflow.ID),
		WorkflowName: workflow.Name,
		Error:        cause.Error(),
	}

	if err := v.eventBus.Publish(ctx, workflow.ID, event); err != nil {
		v.logger.WarnContext(ctx, "Failed to publish validation failed event", "error", err)
	}
}

func (v *Validation) publishVerdict(ctx context.Context, report *models.Report) {
	if v.deployGate == nil {
		return
	}

	if err := v.deployGate.PublishVerdict(ctx, report); err != nil {
		v.logger.WarnContext(ctx, "Failed to publish deploy-gate verdict", "error", err)
	}
}
