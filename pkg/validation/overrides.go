package validation

import "github.com/dukex/flowlint/pkg/models"

// OverridePattern names a documented false-positive class. Applying a
// pattern downgrades the matching error issues to warnings so a
// deployment can proceed knowingly. Structural findings (duplicates,
// cycles, dangling or missing connections) are never overridable.
type OverridePattern string

const (
	// OverrideOptionalDefaults covers required properties the node fills
	// from defaults at runtime.
	OverrideOptionalDefaults OverridePattern = "optional-defaults"

	// OverrideDevCredentials covers credential findings in non-production
	// environments where the store is partially populated.
	OverrideDevCredentials OverridePattern = "dev-credentials"

	// OverrideRuntimeExpressions covers expression references that only
	// resolve at runtime (dynamic node names, runtime-created data).
	OverrideRuntimeExpressions OverridePattern = "runtime-expressions"

	// OverrideCommunitySchemaGaps covers property findings against
	// community node packages with incomplete schemas.
	OverrideCommunitySchemaGaps OverridePattern = "community-schema-gaps"

	// OverrideDeprecatedProperties covers notices for properties the node
	// still accepts but no longer documents.
	OverrideDeprecatedProperties OverridePattern = "deprecated-properties"

	// OverrideAIToolFlexibility covers AI connection findings for tool
	// nodes that accept multiple wiring styles.
	OverrideAIToolFlexibility OverridePattern = "ai-tool-flexibility"
)

var overridableRules = map[OverridePattern][]models.RuleCode{
	OverrideOptionalDefaults:     {models.RuleMissingRequiredProperty},
	OverrideDevCredentials:       {models.RuleCredentialMismatch},
	OverrideRuntimeExpressions:   {models.RuleMalformedExpression},
	OverrideCommunitySchemaGaps:  {models.RuleUnknownProperty, models.RuleTypeMismatch},
	OverrideDeprecatedProperties: {models.RuleUnknownProperty},
	OverrideAIToolFlexibility:    {models.RuleInvalidAIConnection},
}

// Patterns returns every known override pattern.
func Patterns() []OverridePattern {
	return []OverridePattern{
		OverrideOptionalDefaults,
		OverrideDevCredentials,
		OverrideRuntimeExpressions,
		OverrideCommunitySchemaGaps,
		OverrideDeprecatedProperties,
		OverrideAIToolFlexibility,
	}
}

// KnownPattern reports whether the name is a valid override pattern.
func KnownPattern(name string) bool {
	for _, pattern := range Patterns() {
		if string(pattern) == name {
			return true
		}
	}

	return false
}

// ApplyOverrides downgrades error issues covered by the given patterns to
// warnings, recording which pattern overrode them. The report is mutated
// and returned.
func ApplyOverrides(report *models.Report, patterns ...OverridePattern) *models.Report {
	if len(patterns) == 0 {
		return report
	}

	covered := make(map[models.RuleCode]OverridePattern)

	for _, pattern := range patterns {
		for _, rule := range overridableRules[pattern] {
			if _, ok := covered[rule]; !ok {
				covered[rule] = pattern
			}
		}
	}

	for i := range report.Issues {
		issue := &report.Issues[i]

		if issue.Severity != models.SeverityError {
			continue
		}

		pattern, ok := covered[issue.Rule]
		if !ok {
			continue
		}

		issue.Severity = models.SeverityWarning
		issue.OverriddenBy = string(pattern)
	}

	report.Recount()

	return report
}
