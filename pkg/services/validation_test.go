package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukex/flowlint/pkg/models"
	"github.com/dukex/flowlint/pkg/persistence"
	"github.com/dukex/flowlint/pkg/persistence/file"
	"github.com/dukex/flowlint/pkg/registry"
)

func testRegistry() *registry.Registry {
	reg := registry.NewRegistry(testLogger())
	reg.RegisterBuiltins()

	return reg
}

func testValidationService(t *testing.T) (*Validation, persistence.Persistence) {
	t.Helper()

	p := file.NewPersistence(t.TempDir())

	return NewValidation(testLogger(), p, testRegistry()), p
}

// brokenWorkflow has a slack node missing its required channelId and
// credential, wired to a trigger so connection checks stay quiet.
func brokenWorkflow(id string) *models.Workflow {
	return &models.Workflow{
		ID:   id,
		Name: "Broken",
		Nodes: []*models.WorkflowNode{
			{Name: "Start", Type: models.NodeTypePrefixBase + "manualTrigger"},
			{Name: "Notify", Type: models.NodeTypePrefixBase + "slack"},
		},
		Connections: []*models.Connection{
			{
				SourcePort: models.MakePortID("Start", "main"),
				TargetPort: models.MakePortID("Notify", "main"),
				Type:       models.ConnectionTypeMain,
			},
		},
	}
}

func TestValidateWorkflow_PersistsReport(t *testing.T) {
	service, p := testValidationService(t)

	workflow := brokenWorkflow("wf-1")
	require.NoError(t, p.WorkflowRepository().Save(t.Context(), workflow))

	report, err := service.ValidateWorkflow(t.Context(), "wf-1")
	require.NoError(t, err)
	assert.Equal(t, "wf-1", report.WorkflowID)
	assert.False(t, report.Valid())
	assert.Equal(t, 2, report.Errors)

	stored, err := service.GetReport(t.Context(), "wf-1")
	require.NoError(t, err)
	assert.Equal(t, report.Errors, stored.Errors)
	assert.Len(t, stored.Issues, len(report.Issues))
}

func TestValidateWorkflow_OverridesDowngrade(t *testing.T) {
	service, p := testValidationService(t)

	require.NoError(t, p.WorkflowRepository().Save(t.Context(), brokenWorkflow("wf-1")))

	report, err := service.ValidateWorkflow(t.Context(), "wf-1",
		"optional-defaults", "dev-credentials")
	require.NoError(t, err)
	assert.True(t, report.Valid())
	assert.Equal(t, 0, report.Errors)
	assert.Equal(t, 2, report.Warnings)

	for _, issue := range report.Issues {
		assert.NotEmpty(t, issue.OverriddenBy)
	}
}

func TestValidateWorkflow_UnknownOverride(t *testing.T) {
	service, _ := testValidationService(t)

	_, err := service.ValidateWorkflow(t.Context(), "wf-1", "yolo")
	require.ErrorIs(t, err, ErrUnknownOverride)
	assert.True(t, IsValidationError(err))
}

func TestValidateWorkflow_MissingWorkflow(t *testing.T) {
	service, _ := testValidationService(t)

	_, err := service.ValidateWorkflow(t.Context(), "missing")
	assert.True(t, persistence.IsWorkflowNotFound(err))
}

func TestGetReport_NotFound(t *testing.T) {
	service, _ := testValidationService(t)

	_, err := service.GetReport(t.Context(), "missing")
	assert.True(t, persistence.IsReportNotFound(err))
}

func TestValidateDocument(t *testing.T) {
	service, p := testValidationService(t)

	doc := `{
		"name": "Ad Hoc",
		"nodes": [
			{"name": "Start", "type": "n8n-nodes-base.manualTrigger"},
			{"name": "Orphan", "type": "n8n-nodes-base.set"}
		],
		"connections": {}
	}`

	report, err := service.ValidateDocument(t.Context(), []byte(doc))
	require.NoError(t, err)
	require.Len(t, report.Issues, 1)
	assert.Equal(t, models.RuleMissingConnection, report.Issues[0].Rule)

	// Ad-hoc validation stores nothing.
	workflows, err := p.WorkflowRepository().GetAll(t.Context())
	require.NoError(t, err)
	assert.Empty(t, workflows)
}

func TestValidateDocument_Malformed(t *testing.T) {
	service, _ := testValidationService(t)

	_, err := service.ValidateDocument(t.Context(), []byte(`{"name": `))
	require.ErrorIs(t, err, ErrMalformedDocument)
	assert.True(t, IsValidationError(err))
}
