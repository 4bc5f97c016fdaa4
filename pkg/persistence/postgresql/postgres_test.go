package postgresql_test

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/dukex/flowlint/pkg/models"
	"github.com/dukex/flowlint/pkg/persistence"
	"github.com/dukex/flowlint/pkg/persistence/postgresql"
)

var postgresContainer *postgres.PostgresContainer

func dropDb(ctx context.Context, t *testing.T, databaseURL string) {
	t.Helper()

	db, err := sql.Open("postgres", databaseURL)
	require.NoError(t, err)

	// Children first so foreign keys don't get in the way.
	for _, table := range []string{"reports", "workflows", "schema_migrations"} {
		_, err = db.ExecContext(ctx, "DROP TABLE IF EXISTS "+table+" CASCADE")
		require.NoError(t, err)
	}

	err = db.Close()
	require.NoError(t, err)
}

func setupTestDB(t *testing.T) (*postgresql.Persistence, context.Context, string) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)

	if postgresContainer == nil || !postgresContainer.IsRunning() {
		var err error

		postgresContainer, err = postgres.Run(ctx,
			"postgres:16-alpine",
			postgres.WithDatabase("flowlint_test"),
			postgres.WithUsername("flowlint"),
			postgres.WithPassword("flowlint"),
			postgres.BasicWaitStrategies(),
		)
		require.NoError(t, err)
	}

	databaseURL, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	dropDb(ctx, t, databaseURL)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	p, err := postgresql.NewPersistence(ctx, logger, databaseURL)
	require.NoError(t, err)

	t.Cleanup(func() {
		dropDb(ctx, t, databaseURL)

		err = p.Close(ctx)
		require.NoError(t, err)

		cancel()
	})

	return p, ctx, databaseURL
}

func testWorkflow(id, name string) *models.Workflow {
	return &models.Workflow{
		ID:   id,
		Name: name,
		Nodes: []*models.WorkflowNode{
			{Name: "Start", Type: models.NodeTypePrefixBase + "manualTrigger"},
			{
				Name:        "Notify",
				Type:        models.NodeTypePrefixBase + "slack",
				Parameters:  map[string]any{"channelId": "C123"},
				Credentials: map[string]*models.CredentialRef{"slackApi": {ID: "cred-1"}},
			},
		},
		Connections: []*models.Connection{
			{
				SourcePort: "Start:main",
				TargetPort: "Notify:main",
				Type:       models.ConnectionTypeMain,
			},
		},
	}
}

func TestNewPersistence_Migrations(t *testing.T) {
	_, ctx, databaseURL := setupTestDB(t)

	db, err := sql.Open("postgres", databaseURL)
	require.NoError(t, err)

	defer func() {
		err := db.Close()
		require.NoError(t, err)
	}()

	var exists bool

	err = db.QueryRowContext(ctx, `SELECT EXISTS (SELECT FROM
information_schema.tables WHERE table_name = 'workflows')`).Scan(&exists)
	require.NoError(t, err)
	assert.True(t, exists, "workflows table should exist")

	err = db.QueryRowContext(ctx, `SELECT EXISTS (SELECT FROM
information_schema.tables WHERE table_name = 'reports')`).Scan(&exists)
	require.NoError(t, err)
	assert.True(t, exists, "reports table should exist")

	var version int

	err = db.QueryRowContext(ctx, "SELECT version FROM schema_migrations WHERE version = 1").Scan(&version)
	require.NoError(t, err)
	assert.Equal(t, 1, version)
}

func TestNewPersistence_HealthCheck(t *testing.T) {
	p, ctx, _ := setupTestDB(t)

	assert.NoError(t, p.HealthCheck(ctx))
}

func TestNewPersistence_SaveAndRetrieveWorkflow(t *testing.T) {
	p, ctx, _ := setupTestDB(t)

	workflow := testWorkflow("wf-1", "Lead Router")

	err := p.WorkflowRepository().Save(ctx, workflow)
	require.NoError(t, err)

	retrieved, err := p.WorkflowRepository().GetByID(ctx, "wf-1")
	require.NoError(t, err)
	assert.Equal(t, "Lead Router", retrieved.Name)
	assert.Len(t, retrieved.Nodes, 2)
	assert.Len(t, retrieved.Connections, 1)

	notify := retrieved.NodeByName("Notify")
	require.NotNil(t, notify)
	assert.Equal(t, "C123", notify.Parameters["channelId"])
	assert.Equal(t, "cred-1", notify.Credentials["slackApi"].ID)

	_, err = p.WorkflowRepository().GetByID(ctx, "missing")
	assert.True(t, persistence.IsWorkflowNotFound(err))
}

func TestNewPersistence_UpdateWorkflow(t *testing.T) {
	p, ctx, _ := setupTestDB(t)

	workflow := testWorkflow("wf-1", "Before")
	require.NoError(t, p.WorkflowRepository().Save(ctx, workflow))

	workflow.Name = "After"
	require.NoError(t, p.WorkflowRepository().Save(ctx, workflow))

	retrieved, err := p.WorkflowRepository().GetByID(ctx, "wf-1")
	require.NoError(t, err)
	assert.Equal(t, "After", retrieved.Name)

	all, err := p.WorkflowRepository().GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestNewPersistence_ListWorkflows(t *testing.T) {
	p, ctx, _ := setupTestDB(t)

	require.NoError(t, p.WorkflowRepository().Save(ctx, testWorkflow("wf-b", "B")))
	require.NoError(t, p.WorkflowRepository().Save(ctx, testWorkflow("wf-a", "A")))

	all, err := p.WorkflowRepository().GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "wf-a", all[0].ID)
	assert.Equal(t, "wf-b", all[1].ID)
}

func TestNewPersistence_DeleteWorkflow(t *testing.T) {
	p, ctx, _ := setupTestDB(t)

	require.NoError(t, p.WorkflowRepository().Save(ctx, testWorkflow("wf-1", "Doomed")))
	require.NoError(t, p.WorkflowRepository().Delete(ctx, "wf-1"))

	_, err := p.WorkflowRepository().GetByID(ctx, "wf-1")
	assert.True(t, persistence.IsWorkflowNotFound(err))

	err = p.WorkflowRepository().Delete(ctx, "wf-1")
	assert.True(t, persistence.IsWorkflowNotFound(err))
}

func TestNewPersistence_Reports(t *testing.T) {
	p, ctx, _ := setupTestDB(t)

	workflow := testWorkflow("wf-1", "Lead Router")
	require.NoError(t, p.WorkflowRepository().Save(ctx, workflow))

	report := models.NewReport(workflow)
	report.Append(models.Issue{
		Rule:     models.RuleCredentialMismatch,
		Severity: models.SeverityError,
		NodeName: "Notify",
	})

	require.NoError(t, p.ReportRepository().Save(ctx, report))

	retrieved, err := p.ReportRepository().GetByWorkflowID(ctx, "wf-1")
	require.NoError(t, err)
	assert.Equal(t, 1, retrieved.Errors)
	require.Len(t, retrieved.Issues, 1)
	assert.Equal(t, models.RuleCredentialMismatch, retrieved.Issues[0].Rule)

	// Saving again replaces the previous report.
	report.Issues = nil
	report.Recount()
	require.NoError(t, p.ReportRepository().Save(ctx, report))

	retrieved, err = p.ReportRepository().GetByWorkflowID(ctx, "wf-1")
	require.NoError(t, err)
	assert.Equal(t, 0, retrieved.Errors)

	// Deleting the workflow cascades to its report.
	require.NoError(t, p.WorkflowRepository().Delete(ctx, "wf-1"))

	_, err = p.ReportRepository().GetByWorkflowID(ctx, "wf-1")
	assert.True(t, persistence.IsReportNotFound(err))
}

func TestNewPersistence_ReportNotFound(t *testing.T) {
	p, ctx, _ := setupTestDB(t)

	_, err := p.ReportRepository().GetByWorkflowID(ctx, "missing")
	assert.True(t, persistence.IsReportNotFound(err))
}
