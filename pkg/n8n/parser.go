// Package n8n converts between the n8n workflow export JSON format and
// the validator's normalized workflow model. The export keeps connections
// in a nested map keyed by source node name and connection type, with
// positional output/input indexes; the model flattens them into typed
// port-to-port edges named "{node}:{port}".
package n8n

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/dukex/flowlint/pkg/models"
)

// Document is the n8n workflow export format.
type Document struct {
	ID          string                           `json:"id,omitempty"`
	Name        string                           `json:"name"`
	Active      bool                             `json:"active"`
	Nodes       []DocumentNode                   `json:"nodes"`
	Connections map[string]map[string][][]Target `json:"connections"`
	Settings    map[string]any                   `json:"settings,omitempty"`
	Tags        []string                         `json:"tags,omitempty"`
}

// DocumentNode is a node as exported by n8n.
type DocumentNode struct {
	ID          string                    `json:"id,omitempty"`
	Name        string                    `json:"name"`
	Type        string                    `json:"type"`
	TypeVersion float64                   `json:"typeVersion,omitempty"`
	Disabled    bool                      `json:"disabled,omitempty"`
	Position    []float64                 `json:"position,omitempty"`
	Parameters  map[string]any            `json:"parameters,omitempty"`
	Credentials map[string]CredentialStub `json:"credentials,omitempty"`
}

// CredentialStub is a credential reference inside a node export.
type CredentialStub struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// Target is one endpoint of an exported connection.
type Target struct {
	Node  string `json:"node"`
	Type  string `json:"type"`
	Index int    `json:"index"`
}

// Parse decodes an n8n export document and converts it to the model.
func Parse(data []byte) (*models.Workflow, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse workflow document: %w", err)
	}

	return doc.ToModel(), nil
}

// Render encodes a workflow back into the n8n export format.
func Render(workflow *models.Workflow) ([]byte, error) {
	doc := FromModel(workflow)

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to render workflow document: %w", err)
	}

	return data, nil
}

// ToModel converts the export document into the normalized workflow.
func (d *Document) ToModel() *models.Workflow {
	workflow := &models.Workflow{
		ID:          d.ID,
		Name:        d.Name,
		Active:      d.Active,
		Nodes:       make([]*models.WorkflowNode, 0, len(d.Nodes)),
		Connections: make([]*models.Connection, 0),
		Settings:    d.Settings,
		Tags:        d.Tags,
	}

	for _, docNode := range d.Nodes {
		node := &models.WorkflowNode{
			ID:          docNode.ID,
			Name:        docNode.Name,
			Type:        docNode.Type,
			TypeVersion: docNode.TypeVersion,
			Parameters:  docNode.Parameters,
			Disabled:    docNode.Disabled,
		}

		if len(docNode.Position) == 2 {
			node.PositionX = int(docNode.Position[0])
			node.PositionY = int(docNode.Position[1])
		}

		if len(docNode.Credentials) > 0 {
			node.Credentials = make(map[string]*models.CredentialRef, len(docNode.Credentials))
			for credType, stub := range docNode.Credentials {
				node.Credentials[credType] = &models.CredentialRef{ID: stub.ID, Name: stub.Name}
			}
		}

		workflow.Nodes = append(workflow.Nodes, node)
	}

	for _, source := range sortedDocKeys(d.Connections) {
		byType := d.Connections[source]

		connTypes := make([]string, 0, len(byType))
		for connType := range byType {
			connTypes = append(connTypes, connType)
		}

		sort.Strings(connTypes)

		for _, connType := range connTypes {
			for outputIndex, group := range byType[connType] {
				for _, target := range group {
					workflow.Connections = append(workflow.Connections, &models.Connection{
						SourcePort: models.MakePortID(source, portName(connType, outputIndex)),
						TargetPort: models.MakePortID(target.Node, portName(connType, target.Index)),
						Type:       models.ConnectionType(connType),
					})
				}
			}
		}
	}

	return workflow
}

// FromModel converts a normalized workflow back into the export shape.
func FromModel(workflow *models.Workflow) *Document {
	doc := &Document{
		ID:          workflow.ID,
		Name:        workflow.Name,
		Active:      workflow.Active,
		Nodes:       make([]DocumentNode, 0, len(workflow.Nodes)),
		Connections: make(map[string]map[string][][]Target),
		Settings:    workflow.Settings,
		Tags:        workflow.Tags,
	}

	for _, node := range workflow.Nodes {
		docNode := DocumentNode{
			ID:          node.ID,
			Name:        node.Name,
			Type:        node.Type,
			TypeVersion: node.TypeVersion,
			Disabled:    node.Disabled,
			Position:    []float64{float64(node.PositionX), float64(node.PositionY)},
			Parameters:  node.Parameters,
		}

		if len(node.Credentials) > 0 {
			docNode.Credentials = make(map[string]CredentialStub, len(node.Credentials))
			for credType, ref := range node.Credentials {
				docNode.Credentials[credType] = CredentialStub{ID: ref.ID, Name: ref.Name}
			}
		}

		doc.Nodes = append(doc.Nodes, docNode)
	}

	for _, conn := range workflow.Connections {
		source, sourcePort, ok := models.ParsePortID(conn.SourcePort)
		if !ok {
			continue
		}

		targetNode, targetPort, ok := models.ParsePortID(conn.TargetPort)
		if !ok {
			continue
		}

		connType := string(conn.Type)
		if connType == "" {
			connType = string(models.ConnectionTypeMain)
		}

		outputIndex := portIndex(connType, sourcePort)
		inputIndex := portIndex(connType, targetPort)

		if doc.Connections[source] == nil {
			doc.Connections[source] = make(map[string][][]Target)
		}

		groups := doc.Connections[source][connType]
		for len(groups) <= outputIndex {
			groups = append(groups, []Target{})
		}

		groups[outputIndex] = append(groups[outputIndex], Target{
			Node:  targetNode,
			Type:  connType,
			Index: inputIndex,
		})
		doc.Connections[source][connType] = groups
	}

	return doc
}

// portName maps a connection type plus positional index to a port name:
// index 0 keeps the bare type name ("main"), higher indexes append the
// index ("main1").
func portName(connType string, index int) string {
	if index == 0 {
		return connType
	}

	return connType + strconv.Itoa(index)
}

// portIndex is the inverse of portName.
func portIndex(connType, port string) int {
	if port == connType {
		return 0
	}

	suffix := strings.TrimPrefix(port, connType)

	index, err := strconv.Atoi(suffix)
	if err != nil || index < 0 {
		return 0
	}

	return index
}

func sortedDocKeys(m map[string]map[string][][]Target) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}
