// Package models defines port-based connection models for workflow graphs.
package models

// ConnectionType is the type of a directed edge between two node ports.
// "main" carries regular item data; the ai_* types wire LangChain-style
// agent components (model, tool, memory, parser) into an AI-capable node.
type ConnectionType string

const (
	ConnectionTypeMain            ConnectionType = "main"
	ConnectionTypeAIAgent         ConnectionType = "ai_agent"
	ConnectionTypeAILanguageModel ConnectionType = "ai_languageModel"
	ConnectionTypeAITool          ConnectionType = "ai_tool"
	ConnectionTypeAIMemory        ConnectionType = "ai_memory"
	ConnectionTypeAIOutputParser  ConnectionType = "ai_outputParser"
)

// ConnectionTypes lists every valid connection type.
var ConnectionTypes = []ConnectionType{
	ConnectionTypeMain,
	ConnectionTypeAIAgent,
	ConnectionTypeAILanguageModel,
	ConnectionTypeAITool,
	ConnectionTypeAIMemory,
	ConnectionTypeAIOutputParser,
}

// IsAI reports whether the connection type is one of the AI port types.
func (t ConnectionType) IsAI() bool {
	switch t {
	case ConnectionTypeAIAgent, ConnectionTypeAILanguageModel,
		ConnectionTypeAITool, ConnectionTypeAIMemory, ConnectionTypeAIOutputParser:
		return true
	case ConnectionTypeMain:
		return false
	}

	return false
}

// Valid reports whether the connection type is known.
func (t ConnectionType) Valid() bool {
	for _, known := range ConnectionTypes {
		if t == known {
			return true
		}
	}

	return false
}

// Connection connects two ports directly (fully normalized).
type Connection struct {
	ID         string         `json:"id"`
	SourcePort string         `json:"source_port" validate:"required"` // "{node_name}:{port_name}"
	TargetPort string         `json:"target_port" validate:"required"` // "{node_name}:{port_name}"
	Type       ConnectionType `json:"type"        validate:"required"`
}

// SourceNode returns the node name component of the source port.
func (c *Connection) SourceNode() string {
	node, _, _ := ParsePortID(c.SourcePort)

	return node
}

// TargetNode returns the node name component of the target port.
func (c *Connection) TargetNode() string {
	node, _, _ := ParsePortID(c.TargetPort)

	return node
}

// ParsePortID parses a port ID in format "{node_name}:{port_name}" into
// components. Node names may not contain a colon.
func ParsePortID(portID string) (string, string, bool) {
	for i := range len(portID) {
		if portID[i] == ':' {
			return portID[:i], portID[i+1:], true
		}
	}

	return "", "", false
}

// MakePortID creates a port ID from node name and port name.
func MakePortID(nodeName, portName string) string {
	return nodeName + ":" + portName
}
