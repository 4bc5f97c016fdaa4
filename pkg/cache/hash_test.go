package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukex/flowlint/pkg/models"
)

func TestWorkflowHash_Stable(t *testing.T) {
	workflow := &models.Workflow{
		ID:   "wf-1",
		Name: "Hash Me",
		Nodes: []*models.WorkflowNode{
			{Name: "Start", Type: models.NodeTypePrefixBase + "manualTrigger"},
		},
	}

	first, err := WorkflowHash(workflow)
	require.NoError(t, err)
	assert.Len(t, first, 64)

	second, err := WorkflowHash(workflow)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestWorkflowHash_ChangesWithContent(t *testing.T) {
	workflow := &models.Workflow{ID: "wf-1", Name: "Original"}

	before, err := WorkflowHash(workflow)
	require.NoError(t, err)

	workflow.Name = "Renamed"

	after, err := WorkflowHash(workflow)
	require.NoError(t, err)
	assert.NotEqual(t, before, after)
}
