// Package schema defines node type schemas: the properties a node type
// accepts, which of them are required for a given configuration, and the
// credentials and ports the type declares. Schemas are owned by the node
// registry; this package only models and resolves them.
package schema

import (
	"github.com/dukex/flowlint/pkg/models"
)

// PropertyType is the declared type of a node property value.
type PropertyType string

const (
	PropertyTypeString       PropertyType = "string"
	PropertyTypeNumber       PropertyType = "number"
	PropertyTypeBoolean      PropertyType = "boolean"
	PropertyTypeOptions      PropertyType = "options"
	PropertyTypeMultiOptions PropertyType = "multiOptions"
	PropertyTypeJSON         PropertyType = "json"
	PropertyTypeCollection   PropertyType = "collection"
)

// DisplayOptions gate a property's visibility on sibling property values,
// mirroring the platform's display conditions: the property is shown only
// when every Show condition matches the current configuration and no Hide
// condition matches.
type DisplayOptions struct {
	Show map[string][]any `json:"show,omitempty"`
	Hide map[string][]any `json:"hide,omitempty"`
}

// Property describes one configuration property of a node type.
type Property struct {
	Name           string          `json:"name"`
	DisplayName    string          `json:"display_name,omitempty"`
	Type           PropertyType    `json:"type"`
	Required       bool            `json:"required"`
	Default        any             `json:"default,omitempty"`
	Options        []any           `json:"options,omitempty"` // Valid values for options/multiOptions
	Description    string          `json:"description,omitempty"`
	Deprecated     bool            `json:"deprecated,omitempty"`
	DisplayOptions *DisplayOptions `json:"display_options,omitempty"`
}

// CredentialSpec declares a credential type the node expects.
type CredentialSpec struct {
	Type     string `json:"type"`
	Required bool   `json:"required"`
}

// PortSpec declares an input or output port of a node type.
type PortSpec struct {
	Name string                `json:"name"`
	Type models.ConnectionType `json:"type"`
}

// NodeType is the schema of one node type, keyed by its full type string
// (e.g. "n8n-nodes-base.slack").
type NodeType struct {
	Name        string            `json:"name"`
	DisplayName string            `json:"display_name,omitempty"`
	Description string            `json:"description,omitempty"`
	Version     float64           `json:"version,omitempty"`
	Trigger     bool              `json:"trigger,omitempty"`
	Properties  []*Property       `json:"properties,omitempty"`
	Credentials []*CredentialSpec `json:"credentials,omitempty"`
	Inputs      []*PortSpec       `json:"inputs,omitempty"`
	Outputs     []*PortSpec       `json:"outputs,omitempty"`
}

// Property returns the property declaration with the given name, or nil.
func (t *NodeType) Property(name string) *Property {
	for _, prop := range t.Properties {
		if prop.Name == name {
			return prop
		}
	}

	return nil
}

// Input returns the declared input port with the given name. When the type
// declares no inputs explicitly, non-trigger types get a single implicit
// "main" input.
func (t *NodeType) Input(name string) (*PortSpec, bool) {
	if len(t.Inputs) == 0 {
		if !t.Trigger && name == string(models.ConnectionTypeMain) {
			return &PortSpec{Name: name, Type: models.ConnectionTypeMain}, true
		}

		return nil, false
	}

	for _, port := range t.Inputs {
		if port.Name == name {
			return port, true
		}
	}

	return nil, false
}

// Output returns the declared output port with the given name. Types
// without explicit outputs get a single implicit "main" output.
func (t *NodeType) Output(name string) (*PortSpec, bool) {
	if len(t.Outputs) == 0 {
		if name == string(models.ConnectionTypeMain) {
			return &PortSpec{Name: name, Type: models.ConnectionTypeMain}, true
		}

		return nil, false
	}

	for _, port := range t.Outputs {
		if port.Name == name {
			return port, true
		}
	}

	return nil, false
}

// ExpectsCredential returns the credential spec for the given credential
// type, if the node type declares it.
func (t *NodeType) ExpectsCredential(credentialType string) (*CredentialSpec, bool) {
	for _, cred := range t.Credentials {
		if cred.Type == credentialType {
			return cred, true
		}
	}

	return nil, false
}
