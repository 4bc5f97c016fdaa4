package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukex/flowlint/pkg/models"
)

func TestApplyOverrides_DowngradesCoveredErrors(t *testing.T) {
	report := models.NewReport(&models.Workflow{ID: "wf-1", Name: "Test"})
	report.Append(
		models.Issue{Rule: models.RuleCredentialMismatch, Severity: models.SeverityError},
		models.Issue{Rule: models.RuleMissingRequiredProperty, Severity: models.SeverityError},
	)

	ApplyOverrides(report, OverrideDevCredentials)

	assert.Equal(t, models.SeverityWarning, report.Issues[0].Severity)
	assert.Equal(t, string(OverrideDevCredentials), report.Issues[0].OverriddenBy)

	// Uncovered rule keeps its severity.
	assert.Equal(t, models.SeverityError, report.Issues[1].Severity)
	assert.Empty(t, report.Issues[1].OverriddenBy)

	assert.Equal(t, 1, report.Errors)
	assert.Equal(t, 1, report.Warnings)
	assert.False(t, report.Valid())
}

func TestApplyOverrides_StructuralRulesNeverDowngraded(t *testing.T) {
	report := models.NewReport(&models.Workflow{ID: "wf-1", Name: "Test"})
	report.Append(
		models.Issue{Rule: models.RuleDuplicateNodeName, Severity: models.SeverityError},
		models.Issue{Rule: models.RuleCircularDependency, Severity: models.SeverityError},
		models.Issue{Rule: models.RuleMissingConnection, Severity: models.SeverityError},
		models.Issue{Rule: models.RuleDanglingConnection, Severity: models.SeverityError},
	)

	ApplyOverrides(report, Patterns()...)

	for _, issue := range report.Issues {
		assert.Equal(t, models.SeverityError, issue.Severity, string(issue.Rule))
		assert.Empty(t, issue.OverriddenBy)
	}

	assert.Equal(t, 4, report.Errors)
}

func TestApplyOverrides_WarningsUntouched(t *testing.T) {
	report := models.NewReport(&models.Workflow{ID: "wf-1", Name: "Test"})
	report.Append(models.Issue{Rule: models.RuleUnknownProperty, Severity: models.SeverityWarning})

	ApplyOverrides(report, OverrideCommunitySchemaGaps)

	assert.Empty(t, report.Issues[0].OverriddenBy)
	assert.Equal(t, 1, report.Warnings)
}

func TestApplyOverrides_MakesReportValid(t *testing.T) {
	report := models.NewReport(&models.Workflow{ID: "wf-1", Name: "Test"})
	report.Append(models.Issue{Rule: models.RuleMalformedExpression, Severity: models.SeverityError})

	require.False(t, report.Valid())

	ApplyOverrides(report, OverrideRuntimeExpressions)

	assert.True(t, report.Valid())
	assert.Equal(t, 0, report.Errors)
	assert.Equal(t, 1, report.Warnings)
}

func TestKnownPattern(t *testing.T) {
	for _, pattern := range Patterns() {
		assert.True(t, KnownPattern(string(pattern)))
	}

	assert.False(t, KnownPattern("yolo"))
	assert.False(t, KnownPattern(""))
}
