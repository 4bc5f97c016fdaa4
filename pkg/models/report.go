// Package models defines validation report models.
package models

import "time"

// Severity classifies a validation issue. Errors block deployment;
// warnings may be knowingly overridden.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// RuleCode identifies the validation rule that produced an issue.
type RuleCode string

const (
	RuleDuplicateNodeName       RuleCode = "duplicate-node-name"
	RuleUnknownNodeType         RuleCode = "unknown-node-type"
	RuleMissingRequiredProperty RuleCode = "missing-required-property"
	RuleTypeMismatch            RuleCode = "type-mismatch"
	RuleUnknownProperty         RuleCode = "unknown-property"
	RuleMalformedExpression     RuleCode = "malformed-expression"
	RuleMissingConnection       RuleCode = "missing-connection"
	RuleCircularDependency      RuleCode = "circular-dependency"
	RuleCredentialMismatch      RuleCode = "credential-mismatch"
	RuleInvalidAIConnection     RuleCode = "invalid-ai-connection"
	RuleDanglingConnection      RuleCode = "dangling-connection"
)

// Issue is a single validation finding.
type Issue struct {
	Rule         RuleCode `json:"rule"`
	Severity     Severity `json:"severity"`
	Message      string   `json:"message"`
	NodeName     string   `json:"node_name,omitempty"`
	Property     string   `json:"property,omitempty"`
	SourcePort   string   `json:"source_port,omitempty"`
	TargetPort   string   `json:"target_port,omitempty"`
	Fix          string   `json:"fix,omitempty"`
	OverriddenBy string   `json:"overridden_by,omitempty"` // Override pattern that downgraded this issue
}

// Report is the result of validating one workflow.
type Report struct {
	WorkflowID   string    `json:"workflow_id"`
	WorkflowName string    `json:"workflow_name"`
	Issues       []Issue   `json:"issues"`
	Errors       int       `json:"errors"`
	Warnings     int       `json:"warnings"`
	GeneratedAt  time.Time `json:"generated_at"`
}

// NewReport creates an empty report for the given workflow.
func NewReport(workflow *Workflow) *Report {
	return &Report{
		WorkflowID:   workflow.ID,
		WorkflowName: workflow.Name,
		Issues:       make([]Issue, 0),
		GeneratedAt:  time.Now(),
	}
}

// Append adds issues to the report and updates the severity counters.
func (r *Report) Append(issues ...Issue) {
	r.Issues = append(r.Issues, issues...)
	r.Recount()
}

// Recount recomputes the error and warning counters from the issue list.
func (r *Report) Recount() {
	r.Errors = 0
	r.Warnings = 0

	for _, issue := range r.Issues {
		switch issue.Severity {
		case SeverityError:
			r.Errors++
		case SeverityWarning:
			r.Warnings++
		}
	}
}

// Valid reports whether the workflow may be deployed: no error-severity
// issues remain.
func (r *Report) Valid() bool {
	return r.Errors == 0
}
