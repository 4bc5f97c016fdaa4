package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// slackLike mirrors the dependency chain the resolver exists for:
// channelId is required only once operation=post and select=channel.
func slackLike() *NodeType {
	return &NodeType{
		Name: "n8n-nodes-base.slack",
		Properties: []*Property{
			{
				Name: "resource", Type: PropertyTypeOptions, Default: "message",
				Options: []any{"channel", "message", "user"},
			},
			{
				Name: "operation", Type: PropertyTypeOptions, Default: "post",
				Options:        []any{"delete", "post", "update"},
				DisplayOptions: &DisplayOptions{Show: map[string][]any{"resource": {"message"}}},
			},
			{
				Name: "select", Type: PropertyTypeOptions, Default: "channel",
				Options: []any{"channel", "user"},
				DisplayOptions: &DisplayOptions{
					Show: map[string][]any{"resource": {"message"}, "operation": {"post"}},
				},
			},
			{
				Name: "channelId", Type: PropertyTypeString, Required: true,
				DisplayOptions: &DisplayOptions{
					Show: map[string][]any{"operation": {"post"}, "select": {"channel"}},
				},
			},
			{
				Name: "user", Type: PropertyTypeString, Required: true,
				DisplayOptions: &DisplayOptions{
					Show: map[string][]any{"operation": {"post"}, "select": {"user"}},
				},
			},
		},
	}
}

func TestResolve_DefaultsMakeChannelIdRequired(t *testing.T) {
	resolved := slackLike().Resolve(map[string]any{})

	assert.Equal(t, []string{"channelId"}, resolved.Required)
	assert.Contains(t, resolved.Visible, "operation")
	assert.NotContains(t, resolved.Visible, "user")
}

func TestResolve_SelectUserSwapsRequirement(t *testing.T) {
	resolved := slackLike().Resolve(map[string]any{"select": "user"})

	assert.Equal(t, []string{"user"}, resolved.Required)
	assert.NotContains(t, resolved.Visible, "channelId")
}

func TestResolve_OtherOperationHidesChain(t *testing.T) {
	resolved := slackLike().Resolve(map[string]any{"operation": "delete"})

	assert.Empty(t, resolved.Required)
	assert.NotContains(t, resolved.Visible, "channelId")
	assert.NotContains(t, resolved.Visible, "select")
}

func TestResolve_HideCondition(t *testing.T) {
	nodeType := &NodeType{
		Properties: []*Property{
			{Name: "mode", Type: PropertyTypeOptions, Default: "simple"},
			{
				Name: "advanced", Type: PropertyTypeString,
				DisplayOptions: &DisplayOptions{Hide: map[string][]any{"mode": {"simple"}}},
			},
		},
	}

	resolved := nodeType.Resolve(map[string]any{})
	assert.NotContains(t, resolved.Visible, "advanced")

	resolved = nodeType.Resolve(map[string]any{"mode": "expert"})
	assert.Contains(t, resolved.Visible, "advanced")
}

func TestResolve_NumericConditionSurvivesJSONRoundTrip(t *testing.T) {
	nodeType := &NodeType{
		Properties: []*Property{
			{Name: "version", Type: PropertyTypeNumber, Default: 2},
			{
				Name: "newField", Type: PropertyTypeString,
				DisplayOptions: &DisplayOptions{Show: map[string][]any{"version": {2}}},
			},
		},
	}

	// Parameters decoded from JSON carry float64 numbers.
	resolved := nodeType.Resolve(map[string]any{"version": float64(2)})
	assert.Contains(t, resolved.Visible, "newField")
}

func TestIsExpression(t *testing.T) {
	assert.True(t, IsExpression("={{ $json.count }}"))
	assert.True(t, IsExpression("mixed {{ $json.a }} text"))
	assert.False(t, IsExpression("plain"))
	assert.False(t, IsExpression(42))
	assert.False(t, IsExpression(nil))
}

func TestCheckValue(t *testing.T) {
	number := &Property{Name: "timeout", Type: PropertyTypeNumber}

	ok, _ := number.CheckValue(float64(10))
	assert.True(t, ok)

	ok, detail := number.CheckValue("ten")
	assert.False(t, ok)
	assert.NotEmpty(t, detail)

	// Expressions carry no static type and always pass.
	ok, _ = number.CheckValue("={{ $json.count }}")
	assert.True(t, ok)
}

func TestCheckValue_Options(t *testing.T) {
	options := &Property{
		Name: "method", Type: PropertyTypeOptions,
		Options: []any{"GET", "POST"},
	}

	ok, _ := options.CheckValue("GET")
	assert.True(t, ok)

	ok, detail := options.CheckValue("YEET")
	require.False(t, ok)
	assert.NotEmpty(t, detail)
}

func TestCheckJSONText(t *testing.T) {
	assert.True(t, CheckJSONText(`{"a": 1}`))
	assert.True(t, CheckJSONText(map[string]any{"a": 1}))
	assert.True(t, CheckJSONText("={{ $json.body }}"))
	assert.True(t, CheckJSONText(""))
	assert.False(t, CheckJSONText(`{"a": `))
}
