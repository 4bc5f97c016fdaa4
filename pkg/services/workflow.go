package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/dukex/flowlint/pkg/eventbus"
	"github.com/dukex/flowlint/pkg/events"
	"github.com/dukex/flowlint/pkg/models"
	"github.com/dukex/flowlint/pkg/persistence"
)

var (
	// ErrWorkflowNotFound is returned when a workflow is not found.
	ErrWorkflowNotFound = persistence.ErrWorkflowNotFound
)

// Workflow manages the stored workflow corpus.
type Workflow struct {
	persistence persistence.Persistence
	eventBus    eventbus.EventBus
	logger      *slog.Logger
	validate    *validator.Validate
}

// NewWorkflow creates a new workflow service.
func NewWorkflow(logger *slog.Logger, persistence persistence.Persistence, eventBus eventbus.EventBus) *Workflow {
	return &Workflow{
		persistence: persistence,
		eventBus:    eventBus,
		logger:      logger,
		validate:    validator.New(),
	}
}

// HealthCheck checks the health of the persistence layer.
func (w *Workflow) HealthCheck(ctx context.Context) (string, bool) {
	if w.persistence == nil {
		return "Persistence layer not initialized", false
	}

	err := w.persistence.HealthCheck(ctx)
	if err != nil {
		return "Persistence layer is unhealthy: " + err.Error(), false
	}

	return "Persistence layer is healthy", true
}

// List retrieves all stored workflows.
func (w *Workflow) List(ctx context.Context) ([]*models.Workflow, error) {
	workflows, err := w.persistence.WorkflowRepository().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list workflows: %w", err)
	}

	return workflows, nil
}

// FetchByID retrieves a workflow by its ID.
func (w *Workflow) FetchByID(ctx context.Context, id string) (*models.Workflow, error) {
	workflow, err := w.persistence.WorkflowRepository().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if workflow == nil {
		return nil, ErrWorkflowNotFound
	}

	return workflow, nil
}

// Create adds a new workflow to the repository.
func (w *Workflow) Create(ctx context.Context, workflow *models.Workflow) (*models.Workflow, error) {
	if workflow == nil {
		return nil, ErrWorkflowNil
	}

	if err := w.checkStructure(workflow); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	workflow.ID = uuid.New().String()
	workflow.CreatedAt = now
	workflow.UpdatedAt = now

	if err := w.persistence.WorkflowRepository().Save(ctx, workflow); err != nil {
		return nil, fmt.Errorf("failed to create workflow: %w", err)
	}

	w.publishSaved(ctx, workflow)

	return workflow, nil
}

// Update modifies an existing workflow by its ID.
func (w *Workflow) Update(
	ctx context.Context,
	workflowID string,
	workflow *models.Workflow,
) (*models.Workflow, error) {
	if workflow == nil {
		return nil, ErrWorkflowNil
	}

	if err := w.checkStructure(workflow); err != nil {
		return nil, err
	}

	existing, err := w.persistence.WorkflowRepository().GetByID(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	if existing == nil {
		return nil, ErrWorkflowNotFound
	}

	workflow.ID = workflowID
	workflow.CreatedAt = existing.CreatedAt
	workflow.UpdatedAt = time.Now().UTC()

	if err := w.persistence.WorkflowRepository().Save(ctx, workflow); err != nil {
		return nil, fmt.Errorf("failed to update workflow: %w", err)
	}

	w.publishSaved(ctx, workflow)

	return workflow, nil
}

// Delete removes a workflow and its stored report by ID.
func (w *Workflow) Delete(ctx context.Context, workflowID string) error {
	existing, err := w.persistence.WorkflowRepository().GetByID(ctx, workflowID)
	if err != nil {
		return err
	}

	if existing == nil {
		return ErrWorkflowNotFound
	}

	if err := w.persistence.ReportRepository().DeleteByWorkflowID(ctx, workflowID); err != nil {
		return fmt.Errorf("failed to delete report for workflow: %w", err)
	}

	if err := w.persistence.WorkflowRepository().Delete(ctx, workflowID); err != nil {
		return fmt.Errorf("failed to delete workflow: %w", err)
	}

	if w.eventBus != nil {
		event := events.WorkflowDeleted{
			BaseEvent: events.NewBaseEvent(events.WorkflowDeletedEvent, workflowID),
		}
		if err := w.eventBus.Publish(ctx, workflowID, event); err != nil {
			w.logger.WarnContext(ctx, "Failed to publish workflow deleted event", "error", err)
		}
	}

	return nil
}

// checkStructure rejects workflows that are not even structurally valid,
// before graph validation gets involved.
func (w *Workflow) checkStructure(workflow *models.Workflow) error {
	if workflow.Name == "" {
		return ErrWorkflowNameRequired
	}

	if len(workflow.Nodes) == 0 {
		return ErrNodesRequired
	}

	if err := w.validate.Struct(workflow); err != nil {
		return NewValidationError("checkStructure", "INVALID_WORKFLOW", err.Error(), ErrInvalidRequest)
	}

	return nil
}

func (w *Workflow) publishSaved(ctx context.Context, workflow *models.Workflow) {
	if w.eventBus == nil {
		return
	}

	event := events.WorkflowSaved{
		BaseEvent:    events.NewBaseEvent(events.WorkflowSavedEvent, workflow.ID),
		WorkflowName: workflow.Name,
		NodeCount:    len(workflow.Nodes),
	}

	if err := w.eventBus.Publish(ctx, workflow.ID, event); err != nil {
		w.logger.WarnContext(ctx, "Failed to publish workflow saved event", "error", err)
	}
}
