// Package persistence provides the data storage abstraction for workflows
// and validation reports.
package persistence

import (
	"context"

	"github.com/dukex/flowlint/pkg/models"
)

// WorkflowRepository stores workflow documents.
type WorkflowRepository interface {
	GetAll(ctx context.Context) ([]*models.Workflow, error)
	GetByID(ctx context.Context, id string) (*models.Workflow, error)
	Save(ctx context.Context, workflow *models.Workflow) error
	Delete(ctx context.Context, id string) error
}

// ReportRepository stores the latest validation report per workflow.
type ReportRepository interface {
	GetByWorkflowID(ctx context.Context, workflowID string) (*models.Report, error)
	Save(ctx context.Context, report *models.Report) error
	DeleteByWorkflowID(ctx context.Context, workflowID string) error
}

// Persistence is the storage layer facade.
type Persistence interface {
	WorkflowRepository() WorkflowRepository
	ReportRepository() ReportRepository
	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}
