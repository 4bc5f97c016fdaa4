// Package file provides file-based persistence for workflows and
// validation reports, intended for development and tests.
package file

import (
	"context"
	"os"
	"strings"

	"github.com/dukex/flowlint/pkg/persistence"
)

// Persistence implements persistence.Persistence on the file system:
// one JSON file per workflow under workflows/, one report per workflow
// under reports/.
type Persistence struct {
	root         string
	workflowRepo *WorkflowRepository
	reportRepo   *ReportRepository
}

// NewPersistence creates a file persistence rooted at the given directory.
// A "file://" prefix is accepted and stripped.
func NewPersistence(root string) *Persistence {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	return &Persistence{
		root:         cleanRoot,
		workflowRepo: NewWorkflowRepository(cleanRoot),
		reportRepo:   NewReportRepository(cleanRoot),
	}
}

// WorkflowRepository returns the workflow repository.
func (p *Persistence) WorkflowRepository() persistence.WorkflowRepository {
	return p.workflowRepo
}

// ReportRepository returns the report repository.
func (p *Persistence) ReportRepository() persistence.ReportRepository {
	return p.reportRepo
}

// HealthCheck verifies the root directory exists.
func (p *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(p.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

// Close performs any necessary cleanup. For file-based persistence there
// is nothing to clean up.
func (p *Persistence) Close(_ context.Context) error {
	return nil
}
