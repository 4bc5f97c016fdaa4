package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePortID(t *testing.T) {
	node, port, ok := ParsePortID("Send Slack:main")
	assert.True(t, ok)
	assert.Equal(t, "Send Slack", node)
	assert.Equal(t, "main", port)
}

func TestParsePortID_Malformed(t *testing.T) {
	_, _, ok := ParsePortID("no-separator")
	assert.False(t, ok)
}

func TestParsePortID_EmptyPort(t *testing.T) {
	node, port, ok := ParsePortID("Webhook:")
	assert.True(t, ok)
	assert.Equal(t, "Webhook", node)
	assert.Empty(t, port)
}

func TestMakePortID(t *testing.T) {
	assert.Equal(t, "AI Agent:ai_tool", MakePortID("AI Agent", "ai_tool"))
}

func TestConnectionEndpoints(t *testing.T) {
	conn := &Connection{
		SourcePort: "Webhook:main",
		TargetPort: "Send Slack:main",
		Type:       ConnectionTypeMain,
	}

	assert.Equal(t, "Webhook", conn.SourceNode())
	assert.Equal(t, "Send Slack", conn.TargetNode())
}

func TestConnectionTypeIsAI(t *testing.T) {
	assert.False(t, ConnectionTypeMain.IsAI())
	assert.True(t, ConnectionTypeAIAgent.IsAI())
	assert.True(t, ConnectionTypeAILanguageModel.IsAI())
	assert.True(t, ConnectionTypeAITool.IsAI())
	assert.True(t, ConnectionTypeAIMemory.IsAI())
	assert.True(t, ConnectionTypeAIOutputParser.IsAI())
}

func TestConnectionTypeValid(t *testing.T) {
	for _, connType := range ConnectionTypes {
		assert.True(t, connType.Valid(), string(connType))
	}

	assert.False(t, ConnectionType("ai_embedding").Valid())
	assert.False(t, ConnectionType("").Valid())
}
