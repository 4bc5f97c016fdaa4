package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dukex/flowlint/pkg/models"
	"github.com/dukex/flowlint/pkg/persistence"
)

// ReportRepository stores the latest validation report per workflow.
type ReportRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewReportRepository creates a new report repository.
func NewReportRepository(db *sql.DB, logger *slog.Logger) *ReportRepository {
	return &ReportRepository{
		db:     db,
		logger: logger,
	}
}

// GetByWorkflowID loads the stored report for a workflow.
func (r *ReportRepository) GetByWorkflowID(ctx context.Context, workflowID string) (*models.Report, error) {
	var document []byte

	err := r.db.QueryRowContext(ctx, "SELECT report FROM reports WHERE workflow_id = $1", workflowID).Scan(&document)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, persistence.ErrReportNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to query report for workflow %s: %w", workflowID, err)
	}

	var report models.Report
	if err := json.Unmarshal(document, &report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report for workflow %s: %w", workflowID, err)
	}

	return &report, nil
}

// Save writes the report, replacing any previous report for the workflow.
func (r *ReportRepository) Save(ctx context.Context, report *models.Report) error {
	document, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report for workflow %s: %w", report.WorkflowID, err)
	}

	upsertSQL := `
		INSERT INTO reports (workflow_id, report, generated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (workflow_id) DO UPDATE SET report = $2, generated_at = NOW()
	`

	if _, err := r.db.ExecContext(ctx, upsertSQL, report.WorkflowID, document); err != nil {
		return fmt.Errorf("failed to save report for workflow %s: %w", report.WorkflowID, err)
	}

	return nil
}

// DeleteByWorkflowID removes the stored report, if any.
func (r *ReportRepository) DeleteByWorkflowID(ctx context.Context, workflowID string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM reports WHERE workflow_id = $1", workflowID); err != nil {
		return fmt.Errorf("failed to delete report for workflow %s: %w", workflowID, err)
	}

	return nil
}
