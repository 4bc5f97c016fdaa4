// Package models defines the core domain models for workflow graph validation.
package models

import "time"

// Workflow represents a node-based workflow graph as exported by the n8n
// platform: a set of named nodes plus typed, directed connections between
// node ports.
type Workflow struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"        validate:"required,min=1"`
	Active      bool            `json:"active"`
	Nodes       []*WorkflowNode `json:"nodes"       validate:"required,min=1,dive"`
	Connections []*Connection   `json:"connections" validate:"dive"`
	Settings    map[string]any  `json:"settings,omitempty"`
	Tags        []string        `json:"tags,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// NodeByName returns the first node with the given name, or nil.
// Node names are the connection endpoints, so duplicates are a validation
// error; lookups resolve to the first occurrence.
func (w *Workflow) NodeByName(name string) *WorkflowNode {
	for _, node := range w.Nodes {
		if node.Name == name {
			return node
		}
	}

	return nil
}

// NodeNames returns the set of node names present in the workflow.
func (w *Workflow) NodeNames() map[string]bool {
	names := make(map[string]bool, len(w.Nodes))
	for _, node := range w.Nodes {
		names[node.Name] = true
	}

	return names
}
