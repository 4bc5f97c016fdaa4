// Package models defines core node models for workflow graph validation.
package models

import "strings"

// Node type naming prefixes used by the n8n node registry.
const (
	NodeTypePrefixBase      = "n8n-nodes-base."
	NodeTypePrefixLangChain = "@n8n/n8n-nodes-langchain."
)

// WorkflowNode represents a node instance in a workflow.
type WorkflowNode struct {
	ID          string                    `json:"id"`
	Name        string                    `json:"name"         validate:"required,min=1"`
	Type        string                    `json:"type"         validate:"required"`
	TypeVersion float64                   `json:"type_version"`
	Parameters  map[string]any            `json:"parameters"`
	Credentials map[string]*CredentialRef `json:"credentials,omitempty"`
	Disabled    bool                      `json:"disabled"`
	PositionX   int                       `json:"position_x"`
	PositionY   int                       `json:"position_y"`
}

// CredentialRef is a reference from a node to a stored credential. The map
// key on WorkflowNode.Credentials is the credential type the node expects
// (e.g. "slackApi"); the ref points at a concrete stored credential.
type CredentialRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Credential is a stored credential as known to the platform. Only the
// identity and declared type are modeled; secret material never enters the
// validator.
type Credential struct {
	ID   string `json:"id"   validate:"required"`
	Name string `json:"name"`
	Type string `json:"type" validate:"required"`
}

// HasStandardTypePrefix reports whether the node's type string follows one
// of the platform naming patterns. Community packages use their own
// prefixes and fail this check without being invalid.
func (n *WorkflowNode) HasStandardTypePrefix() bool {
	return strings.HasPrefix(n.Type, NodeTypePrefixBase) ||
		strings.HasPrefix(n.Type, NodeTypePrefixLangChain)
}

// ShortType returns the type string with the registry prefix removed.
func (n *WorkflowNode) ShortType() string {
	if after, ok := strings.CutPrefix(n.Type, NodeTypePrefixBase); ok {
		return after
	}

	if after, ok := strings.CutPrefix(n.Type, NodeTypePrefixLangChain); ok {
		return after
	}

	return n.Type
}
