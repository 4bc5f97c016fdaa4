// Package web provides HTTP handlers and REST API endpoints for the
// workflow validation service.
package web

import "github.com/dukex/flowlint/pkg/models"

// CreateWorkflowRequest represents the request body for creating a new workflow.
type CreateWorkflowRequest struct {
	Name        string                 `json:"name"        validate:"required,min=1"`
	Active      bool                   `json:"active"`
	Nodes       []*models.WorkflowNode `json:"nodes"       validate:"required,min=1,dive"`
	Connections []*models.Connection   `json:"connections"`
	Settings    map[string]any         `json:"settings,omitempty"`
	Tags        []string               `json:"tags,omitempty"`
}

// UpdateWorkflowRequest represents the request body for updating an existing
// workflow. Name, nodes, and connections are replaced wholesale; the graph
// is too interconnected for partial node updates to be meaningful.
type UpdateWorkflowRequest struct {
	Name        string                 `json:"name"        validate:"required,min=1"`
	Active      *bool                  `json:"active,omitempty"`
	Nodes       []*models.WorkflowNode `json:"nodes"       validate:"required,min=1,dive"`
	Connections []*models.Connection   `json:"connections"`
	Settings    map[string]any         `json:"settings,omitempty"`
	Tags        []string               `json:"tags,omitempty"`
}

// ValidateRequest carries options for a validation run.
type ValidateRequest struct {
	Overrides []string `json:"overrides,omitempty"`
}

func (r CreateWorkflowRequest) toModel() *models.Workflow {
	return &models.Workflow{
		Name:        r.Name,
		Active:      r.Active,
		Nodes:       r.Nodes,
		Connections: r.Connections,
		Settings:    r.Settings,
		Tags:        r.Tags,
	}
}

func (r UpdateWorkflowRequest) toModel() *models.Workflow {
	workflow := &models.Workflow{
		Name:        r.Name,
		Nodes:       r.Nodes,
		Connections: r.Connections,
		Settings:    r.Settings,
		Tags:        r.Tags,
	}

	if r.Active != nil {
		workflow.Active = *r.Active
	}

	return workflow
}
