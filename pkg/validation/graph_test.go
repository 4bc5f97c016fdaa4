package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dukex/flowlint/pkg/models"
)

func graphWorkflow(conns ...*models.Connection) *models.Workflow {
	return &models.Workflow{Name: "graph", Connections: conns}
}

func TestFindCycle_None(t *testing.T) {
	workflow := graphWorkflow(
		mainConn("A", "B"),
		mainConn("B", "C"),
		mainConn("A", "C"),
	)

	assert.Nil(t, findCycle(workflow))
}

func TestFindCycle_SelfLoop(t *testing.T) {
	workflow := graphWorkflow(mainConn("A", "A"))

	assert.Equal(t, []string{"A", "A"}, findCycle(workflow))
}

func TestFindCycle_DeterministicPath(t *testing.T) {
	workflow := graphWorkflow(
		mainConn("C", "B"),
		mainConn("B", "C"),
		mainConn("A", "B"),
	)

	// Traversal starts at the lexicographically smallest node, so the
	// reported path always begins at B.
	assert.Equal(t, []string{"B", "C", "B"}, findCycle(workflow))
}

func TestFindCycle_IgnoresAIEdges(t *testing.T) {
	workflow := graphWorkflow(
		&models.Connection{
			SourcePort: models.MakePortID("Agent", "ai_tool"),
			TargetPort: models.MakePortID("Tool", "ai_tool"),
			Type:       models.ConnectionTypeAITool,
		},
		&models.Connection{
			SourcePort: models.MakePortID("Tool", "ai_tool"),
			TargetPort: models.MakePortID("Agent", "ai_tool"),
			Type:       models.ConnectionTypeAITool,
		},
	)

	assert.Nil(t, findCycle(workflow))
}

func TestFindCycle_EmptyTypeCountsAsMain(t *testing.T) {
	workflow := graphWorkflow(
		&models.Connection{SourcePort: "A:main", TargetPort: "B:main"},
		&models.Connection{SourcePort: "B:main", TargetPort: "A:main"},
	)

	assert.Equal(t, []string{"A", "B", "A"}, findCycle(workflow))
}
