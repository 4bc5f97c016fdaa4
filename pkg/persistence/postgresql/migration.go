package postgresql

// migrations returns the ordered schema migrations for the PostgreSQL
// persistence layer. Workflows and reports are stored as jsonb documents
// keyed by workflow ID.
func migrations() map[int]string {
	return map[int]string{
		1: `
			CREATE TABLE IF NOT EXISTS workflows (
				id TEXT PRIMARY KEY,
				document JSONB NOT NULL,
				created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
				updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
			);

			CREATE TABLE IF NOT EXISTS reports (
				workflow_id TEXT PRIMARY KEY REFERENCES workflows(id) ON DELETE CASCADE,
				report JSONB NOT NULL,
				generated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
			);
		`,
		2: `
			CREATE INDEX IF NOT EXISTS idx_workflows_active
				ON workflows ((document->>'active'));
		`,
	}
}
