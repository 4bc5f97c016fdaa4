package file

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/dukex/flowlint/pkg/models"
	"github.com/dukex/flowlint/pkg/persistence"
)

// ReportRepository stores the latest validation report per workflow.
type ReportRepository struct {
	root string
}

// NewReportRepository creates a new report repository.
func NewReportRepository(root string) *ReportRepository {
	return &ReportRepository{root: root}
}

func (r *ReportRepository) path(workflowID string) string {
	return filepath.Join(r.root, "reports", workflowID+".json")
}

// GetByWorkflowID loads the stored report for a workflow.
func (r *ReportRepository) GetByWorkflowID(_ context.Context, workflowID string) (*models.Report, error) {
	data, err := os.ReadFile(r.path(workflowID))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, persistence.ErrReportNotFound
		}

		return nil, err
	}

	var report models.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, err
	}

	return &report, nil
}

// Save writes the report, replacing any previous report for the workflow.
func (r *ReportRepository) Save(_ context.Context, report *models.Report) error {
	if err := os.MkdirAll(filepath.Join(r.root, "reports"), 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(r.path(report.WorkflowID), data, 0o644)
}

// DeleteByWorkflowID removes the stored report, if any.
func (r *ReportRepository) DeleteByWorkflowID(_ context.Context, workflowID string) error {
	err := os.Remove(r.path(workflowID))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}

	return err
}
