package file

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukex/flowlint/pkg/models"
	"github.com/dukex/flowlint/pkg/persistence"
)

func sampleWorkflow(id, name string) *models.Workflow {
	return &models.Workflow{
		ID:   id,
		Name: name,
		Nodes: []*models.WorkflowNode{
			{Name: "Start", Type: models.NodeTypePrefixBase + "manualTrigger"},
		},
	}
}

func TestWorkflowRepository_SaveAndGet(t *testing.T) {
	p := NewPersistence(t.TempDir())
	repo := p.WorkflowRepository()

	workflow := sampleWorkflow("wf-1", "First")
	require.NoError(t, repo.Save(t.Context(), workflow))

	loaded, err := repo.GetByID(t.Context(), "wf-1")
	require.NoError(t, err)
	assert.Equal(t, "First", loaded.Name)
	require.Len(t, loaded.Nodes, 1)
	assert.Equal(t, "Start", loaded.Nodes[0].Name)
}

func TestWorkflowRepository_GetAllSorted(t *testing.T) {
	p := NewPersistence(t.TempDir())
	repo := p.WorkflowRepository()

	require.NoError(t, repo.Save(t.Context(), sampleWorkflow("wf-b", "B")))
	require.NoError(t, repo.Save(t.Context(), sampleWorkflow("wf-a", "A")))
	require.NoError(t, repo.Save(t.Context(), sampleWorkflow("wf-c", "C")))

	workflows, err := repo.GetAll(t.Context())
	require.NoError(t, err)
	require.Len(t, workflows, 3)
	assert.Equal(t, "wf-a", workflows[0].ID)
	assert.Equal(t, "wf-b", workflows[1].ID)
	assert.Equal(t, "wf-c", workflows[2].ID)
}

func TestWorkflowRepository_GetAllEmptyRoot(t *testing.T) {
	repo := NewPersistence(t.TempDir()).WorkflowRepository()

	workflows, err := repo.GetAll(t.Context())
	require.NoError(t, err)
	assert.Empty(t, workflows)
}

func TestWorkflowRepository_NotFound(t *testing.T) {
	repo := NewPersistence(t.TempDir()).WorkflowRepository()

	_, err := repo.GetByID(t.Context(), "missing")
	assert.True(t, persistence.IsWorkflowNotFound(err))

	err = repo.Delete(t.Context(), "missing")
	assert.True(t, persistence.IsWorkflowNotFound(err))
}

func TestWorkflowRepository_Delete(t *testing.T) {
	repo := NewPersistence(t.TempDir()).WorkflowRepository()

	require.NoError(t, repo.Save(t.Context(), sampleWorkflow("wf-1", "First")))
	require.NoError(t, repo.Delete(t.Context(), "wf-1"))

	_, err := repo.GetByID(t.Context(), "wf-1")
	assert.True(t, persistence.IsWorkflowNotFound(err))
}

func TestWorkflowRepository_SaveOverwrites(t *testing.T) {
	repo := NewPersistence(t.TempDir()).WorkflowRepository()

	require.NoError(t, repo.Save(t.Context(), sampleWorkflow("wf-1", "Old")))
	require.NoError(t, repo.Save(t.Context(), sampleWorkflow("wf-1", "New")))

	loaded, err := repo.GetByID(t.Context(), "wf-1")
	require.NoError(t, err)
	assert.Equal(t, "New", loaded.Name)
}

func TestReportRepository_RoundTrip(t *testing.T) {
	repo := NewPersistence(t.TempDir()).ReportRepository()

	report := models.NewReport(&models.Workflow{ID: "wf-1", Name: "First"})
	report.Append(models.Issue{
		Rule:     models.RuleMissingConnection,
		Severity: models.SeverityError,
		NodeName: "Orphan",
	})

	require.NoError(t, repo.Save(t.Context(), report))

	loaded, err := repo.GetByWorkflowID(t.Context(), "wf-1")
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.Errors)
	require.Len(t, loaded.Issues, 1)
	assert.Equal(t, models.RuleMissingConnection, loaded.Issues[0].Rule)
}

func TestReportRepository_NotFound(t *testing.T) {
	repo := NewPersistence(t.TempDir()).ReportRepository()

	_, err := repo.GetByWorkflowID(t.Context(), "missing")
	assert.True(t, persistence.IsReportNotFound(err))
}

func TestReportRepository_DeleteTolerant(t *testing.T) {
	repo := NewPersistence(t.TempDir()).ReportRepository()

	// Deleting a report that was never written is not an error.
	assert.NoError(t, repo.DeleteByWorkflowID(t.Context(), "missing"))

	report := models.NewReport(&models.Workflow{ID: "wf-1", Name: "First"})
	require.NoError(t, repo.Save(t.Context(), report))
	require.NoError(t, repo.DeleteByWorkflowID(t.Context(), "wf-1"))

	_, err := repo.GetByWorkflowID(t.Context(), "wf-1")
	assert.True(t, persistence.IsReportNotFound(err))
}

func TestHealthCheck(t *testing.T) {
	dir := t.TempDir()

	assert.NoError(t, NewPersistence(dir).HealthCheck(t.Context()))
	assert.Error(t, NewPersistence(dir+"/nope").HealthCheck(t.Context()))
}

func TestFileURLPrefixStripped(t *testing.T) {
	dir := t.TempDir()
	p := NewPersistence("file://" + dir)

	assert.NoError(t, p.HealthCheck(t.Context()))
}
