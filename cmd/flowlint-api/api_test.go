package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukex/flowlint/pkg/models"
	"github.com/dukex/flowlint/pkg/persistence/file"
	"github.com/dukex/flowlint/pkg/registry"
)

func setupTestApp(tempDir string) *fiber.App {
	persistence := file.NewPersistence(tempDir)

	reg := registry.NewRegistry(slog.Default())
	reg.RegisterBuiltins()

	api := NewAPI(slog.Default(), persistence, reg, nil)

	return api.App()
}

func closeBody(t *testing.T, resp *http.Response) {
	t.Helper()

	if err := resp.Body.Close(); err != nil {
		t.Logf("Failed to close response body: %v", err)
	}
}

func decodeJSON(t *testing.T, resp *http.Response, target any) {
	t.Helper()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(body, target))
}

const createBody = `{
	"name": "Lead Router",
	"nodes": [
		{"name": "Start", "type": "n8n-nodes-base.manualTrigger"},
		{"name": "Notify", "type": "n8n-nodes-base.slack",
		 "parameters": {"channelId": "C123"},
		 "credentials": {"slackApi": {"id": "cred-1"}}}
	],
	"connections": [
		{"source_port": "Start:main", "target_port": "Notify:main", "type": "main"}
	]
}`

func createTestWorkflow(t *testing.T, app *fiber.App) *models.Workflow {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/workflows", strings.NewReader(createBody))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	defer closeBody(t, resp)

	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created models.Workflow
	decodeJSON(t, resp, &created)
	require.NotEmpty(t, created.ID)

	return &created
}

func TestAPI_RootEndpoint(t *testing.T) {
	app := setupTestApp(t.TempDir())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	defer closeBody(t, resp)

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "Flowlint API", string(body))
}

func TestAPI_Liveness(t *testing.T) {
	app := setupTestApp(t.TempDir())

	req := httptest.NewRequest(http.MethodGet, "/livez", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	defer closeBody(t, resp)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAPI_GetWorkflows_Empty(t *testing.T) {
	app := setupTestApp(t.TempDir())

	req := httptest.NewRequest(http.MethodGet, "/workflows", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	defer closeBody(t, resp)

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var payload struct {
		Workflows  []*models.Workflow `json:"workflows"`
		TotalCount int                `json:"total_count"`
	}
	decodeJSON(t, resp, &payload)
	assert.Empty(t, payload.Workflows)
	assert.Equal(t, 0, payload.TotalCount)
}

func TestAPI_CreateAndGetWorkflow(t *testing.T) {
	app := setupTestApp(t.TempDir())

	created := createTestWorkflow(t, app)

	req := httptest.NewRequest(http.MethodGet, "/workflows/"+created.ID, nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	defer closeBody(t, resp)

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var fetched models.Workflow
	decodeJSON(t, resp, &fetched)
	assert.Equal(t, "Lead Router", fetched.Name)
	assert.Len(t, fetched.Nodes, 2)
}

func TestAPI_CreateWorkflow_InvalidBody(t *testing.T) {
	app := setupTestApp(t.TempDir())

	req := httptest.NewRequest(http.MethodPost, "/workflows", strings.NewReader(`{"name": ""}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	defer closeBody(t, resp)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_GetWorkflow_NotFound(t *testing.T) {
	app := setupTestApp(t.TempDir())

	req := httptest.NewRequest(http.MethodGet, "/workflows/missing", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	defer closeBody(t, resp)

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPI_DeleteWorkflow(t *testing.T) {
	app := setupTestApp(t.TempDir())

	created := createTestWorkflow(t, app)

	req := httptest.NewRequest(http.MethodDelete, "/workflows/"+created.ID, nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	closeBody(t, resp)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	req = httptest.NewRequest(http.MethodGet, "/workflows/"+created.ID, nil)
	resp, err = app.Test(req)
	require.NoError(t, err)

	defer closeBody(t, resp)

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPI_ValidateWorkflow(t *testing.T) {
	app := setupTestApp(t.TempDir())

	created := createTestWorkflow(t, app)

	req := httptest.NewRequest(http.MethodPost, "/workflows/"+created.ID+"/validate", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	defer closeBody(t, resp)

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var report models.Report
	decodeJSON(t, resp, &report)
	assert.Equal(t, created.ID, report.WorkflowID)
	assert.Equal(t, 0, report.Errors)
}

func TestAPI_ValidateWorkflow_UnknownOverride(t *testing.T) {
	app := setupTestApp(t.TempDir())

	created := createTestWorkflow(t, app)

	body := `{"overrides": ["yolo"]}`
	req := httptest.NewRequest(http.MethodPost, "/workflows/"+created.ID+"/validate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	defer closeBody(t, resp)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_GetReport(t *testing.T) {
	app := setupTestApp(t.TempDir())

	created := createTestWorkflow(t, app)

	req := httptest.NewRequest(http.MethodGet, "/workflows/"+created.ID+"/report", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	closeBody(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	req = httptest.NewRequest(http.MethodPost, "/workflows/"+created.ID+"/validate", nil)
	resp, err = app.Test(req)
	require.NoError(t, err)
	closeBody(t, resp)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	req = httptest.NewRequest(http.MethodGet, "/workflows/"+created.ID+"/report", nil)
	resp, err = app.Test(req)
	require.NoError(t, err)

	defer closeBody(t, resp)

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var report models.Report
	decodeJSON(t, resp, &report)
	assert.Equal(t, created.ID, report.WorkflowID)
}

func TestAPI_ValidateDocument(t *testing.T) {
	app := setupTestApp(t.TempDir())

	doc := `{
		"name": "Ad Hoc",
		"nodes": [
			{"name": "Start", "type": "n8n-nodes-base.manualTrigger"},
			{"name": "Notify", "type": "n8n-nodes-base.slack", "parameters": {}}
		],
		"connections": {
			"Start": {"main": [[{"node": "Notify", "type": "main", "index": 0}]]}
		}
	}`

	req := httptest.NewRequest(http.MethodPost, "/validate", strings.NewReader(doc))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	defer closeBody(t, resp)

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var report models.Report
	decodeJSON(t, resp, &report)
	assert.Equal(t, 2, report.Errors)
}

func TestAPI_ValidateDocument_WithOverrides(t *testing.T) {
	app := setupTestApp(t.TempDir())

	doc := `{
		"name": "Ad Hoc",
		"nodes": [
			{"name": "Start", "type": "n8n-nodes-base.manualTrigger"},
			{"name": "Notify", "type": "n8n-nodes-base.slack", "parameters": {}}
		],
		"connections": {
			"Start": {"main": [[{"node": "Notify", "type": "main", "index": 0}]]}
		}
	}`

	target := "/validate?overrides=optional-defaults,dev-credentials"
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(doc))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	defer closeBody(t, resp)

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var report models.Report
	decodeJSON(t, resp, &report)
	assert.Equal(t, 0, report.Errors)
	assert.Equal(t, 2, report.Warnings)
}

func TestAPI_ValidateDocument_EmptyBody(t *testing.T) {
	app := setupTestApp(t.TempDir())

	req := httptest.NewRequest(http.MethodPost, "/validate", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	defer closeBody(t, resp)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_GetNodeTypes(t *testing.T) {
	app := setupTestApp(t.TempDir())

	req := httptest.NewRequest(http.MethodGet, "/node-types", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	defer closeBody(t, resp)

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var payload struct {
		NodeTypes  []string `json:"node_types"`
		TotalCount int      `json:"total_count"`
	}
	decodeJSON(t, resp, &payload)
	assert.Positive(t, payload.TotalCount)
	assert.Contains(t, payload.NodeTypes, models.NodeTypePrefixBase+"slack")
}

func TestAPI_HealthEndpoint(t *testing.T) {
	app := setupTestApp(t.TempDir())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	defer closeBody(t, resp)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
