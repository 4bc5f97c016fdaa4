package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/dukex/flowlint/pkg/models"
	"github.com/dukex/flowlint/pkg/persistence"
)

// WorkflowRepository handles workflow file operations.
type WorkflowRepository struct {
	root string
}

// NewWorkflowRepository creates a new workflow repository.
func NewWorkflowRepository(root string) *WorkflowRepository {
	return &WorkflowRepository{root: root}
}

func (r *WorkflowRepository) dir() string {
	return filepath.Join(r.root, "workflows")
}

func (r *WorkflowRepository) path(id string) string {
	return filepath.Join(r.dir(), id+".json")
}

// GetAll returns every stored workflow, sorted by ID.
func (r *WorkflowRepository) GetAll(ctx context.Context) ([]*models.Workflow, error) {
	entries, err := fs.Glob(os.DirFS(r.dir()), "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list workflow files: %w", err)
	}

	sort.Strings(entries)

	workflows := make([]*models.Workflow, 0, len(entries))

	for _, entry := range entries {
		id := entry[:len(entry)-len(".json")]

		workflow, err := r.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to load workflow %s: %w", id, err)
		}

		workflows = append(workflows, workflow)
	}

	return workflows, nil
}

// GetByID loads one workflow by its ID.
func (r *WorkflowRepository) GetByID(_ context.Context, id string) (*models.Workflow, error) {
	data, err := os.ReadFile(r.path(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, persistence.NewWorkflowError("GetByID", id, persistence.ErrWorkflowNotFound)
		}

		return nil, persistence.NewWorkflowError("GetByID", id, err)
	}

	var workflow models.Workflow
	if err := json.Unmarshal(data, &workflow); err != nil {
		return nil, persistence.NewWorkflowError("GetByID", id, err)
	}

	return &workflow, nil
}

// Save writes the workflow to disk, creating the directory on first use.
func (r *WorkflowRepository) Save(_ context.Context, workflow *models.Workflow) error {
	if err := os.MkdirAll(r.dir(), 0o755); err != nil {
		return persistence.NewWorkflowError("Save", workflow.ID, err)
	}

	data, err := json.MarshalIndent(workflow, "", "  ")
	if err != nil {
		return persistence.NewWorkflowError("Save", workflow.ID, err)
	}

	if err := os.WriteFile(r.path(workflow.ID), data, 0o644); err != nil {
		return persistence.NewWorkflowError("Save", workflow.ID, err)
	}

	return nil
}

// Delete removes the workflow file.
func (r *WorkflowRepository) Delete(_ context.Context, id string) error {
	err := os.Remove(r.path(id))
	if errors.Is(err, os.ErrNotExist) {
		return persistence.NewWorkflowError("Delete", id, persistence.ErrWorkflowNotFound)
	}

	if err != nil {
		return persistence.NewWorkflowError("Delete", id, err)
	}

	return nil
}
