package validation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dukex/flowlint/pkg/expression"
	"github.com/dukex/flowlint/pkg/models"
	"github.com/dukex/flowlint/pkg/schema"
)

// duplicateNodeNameRule flags node names used by more than one node. Names
// are the connection endpoints, so duplicates make the graph ambiguous.
type duplicateNodeNameRule struct{}

func (duplicateNodeNameRule) Name() models.RuleCode { return models.RuleDuplicateNodeName }

func (duplicateNodeNameRule) Apply(ctx *Context) []models.Issue {
	counts := make(map[string]int)
	for _, node := range ctx.Workflow.Nodes {
		counts[node.Name]++
	}

	names := make([]string, 0, len(counts))
	for name, count := range counts {
		if count > 1 {
			names = append(names, name)
		}
	}

	sort.Strings(names)

	issues := make([]models.Issue, 0, len(names))
	for _, name := range names {
		issues = append(issues, models.Issue{
			Rule:     models.RuleDuplicateNodeName,
			Severity: models.SeverityError,
			NodeName: name,
			Message:  fmt.Sprintf("%d nodes share the name %q", counts[name], name),
			Fix:      "rename the nodes so every name is unique",
		})
	}

	return issues
}

// unknownNodeTypeRule reports node types absent from the registry. This is
// a warning, not an error: community packages routinely ship types the
// registry snapshot has no schema for.
type unknownNodeTypeRule struct{}

func (unknownNodeTypeRule) Name() models.RuleCode { return models.RuleUnknownNodeType }

func (unknownNodeTypeRule) Apply(ctx *Context) []models.Issue {
	var issues []models.Issue

	for _, node := range ctx.sortedNodes() {
		if _, ok := ctx.nodeType(node); ok {
			continue
		}

		issues = append(issues, models.Issue{
			Rule:     models.RuleUnknownNodeType,
			Severity: models.SeverityWarning,
			NodeName: node.Name,
			Message:  fmt.Sprintf("node type %q is not registered; property checks skipped", node.Type),
			Fix:      "load the package's schema files into the registry",
		})
	}

	return issues
}

// missingRequiredPropertyRule checks that every property required for the
// resolved resource+operation combination is configured.
type missingRequiredPropertyRule struct{}

func (missingRequiredPropertyRule) Name() models.RuleCode { return models.RuleMissingRequiredProperty }

func (missingRequiredPropertyRule) Apply(ctx *Context) []models.Issue {
	var issues []models.Issue

	for _, node := range ctx.sortedNodes() {
		if node.Disabled {
			continue
		}

		nodeType, ok := ctx.nodeType(node)
		if !ok {
			continue
		}

		resolved := nodeType.Resolve(node.Parameters)

		for _, name := range resolved.Required {
			if configured(node.Parameters, name) {
				continue
			}

			prop := resolved.Visible[name]

			fix := fmt.Sprintf("set %q", name)
			if prop.Default != nil {
				fix = fmt.Sprintf("set %q (defaults to %v)", name, prop.Default)
			}

			issues = append(issues, models.Issue{
				Rule:     models.RuleMissingRequiredProperty,
				Severity: models.SeverityError,
				NodeName: node.Name,
				Property: name,
				Message:  fmt.Sprintf("required property %q is not set", name),
				Fix:      fix,
			})
		}
	}

	return issues
}

func configured(parameters map[string]any, name string) bool {
	value, ok := parameters[name]
	if !ok || value == nil {
		return false
	}

	if text, isString := value.(string); isString {
		return text != ""
	}

	return true
}

// typeMismatchRule checks configured values against their declared
// property types. Expression values carry no static type and pass.
type typeMismatchRule struct{}

func (typeMismatchRule) Name() models.RuleCode { return models.RuleTypeMismatch }

func (typeMismatchRule) Apply(ctx *Context) []models.Issue {
	var issues []models.Issue

	for _, node := range ctx.sortedNodes() {
		nodeType, ok := ctx.nodeType(node)
		if !ok {
			continue
		}

		for _, name := range sortedKeys(node.Parameters) {
			prop := nodeType.Property(name)
			if prop == nil {
				continue
			}

			value := node.Parameters[name]

			if prop.Type == schema.PropertyTypeJSON {
				if !schema.CheckJSONText(value) {
					issues = append(issues, models.Issue{
						Rule:     models.RuleTypeMismatch,
						Severity: models.SeverityError,
						NodeName: node.Name,
						Property: name,
						Message:  fmt.Sprintf("property %q must hold valid JSON", name),
					})
				}

				continue
			}

			if ok, detail := prop.CheckValue(value); !ok {
				issues = append(issues, models.Issue{
					Rule:     models.RuleTypeMismatch,
					Severity: models.SeverityError,
					NodeName: node.Name,
					Property: name,
					Message:  fmt.Sprintf("property %q: %s", name, detail),
				})
			}
		}
	}

	return issues
}

// unknownPropertyRule flags configured properties the node type schema
// does not declare, and declared-but-deprecated properties still in use.
type unknownPropertyRule struct{}

func (unknownPropertyRule) Name() models.RuleCode { return models.RuleUnknownProperty }

func (unknownPropertyRule) Apply(ctx *Context) []models.Issue {
	var issues []models.Issue

	for _, node := range ctx.sortedNodes() {
		nodeType, ok := ctx.nodeType(node)
		if !ok {
			continue
		}

		for _, name := range sortedKeys(node.Parameters) {
			prop := nodeType.Property(name)

			if prop == nil {
				issues = append(issues, models.Issue{
					Rule:     models.RuleUnknownProperty,
					Severity: models.SeverityError,
					NodeName: node.Name,
					Property: name,
					Message:  fmt.Sprintf("property %q is not defined by %s", name, node.Type),
					Fix:      "remove the property or fix its name",
				})

				continue
			}

			if prop.Deprecated {
				issues = append(issues, models.Issue{
					Rule:     models.RuleUnknownProperty,
					Severity: models.SeverityWarning,
					NodeName: node.Name,
					Property: name,
					Message:  fmt.Sprintf("property %q is deprecated", name),
				})
			}
		}
	}

	return issues
}

// malformedExpressionRule scans every string parameter value for
// expression problems: unbalanced delimiters, undefined node references
// without optional chaining, reserved identifiers outside expressions.
type malformedExpressionRule struct{}

func (malformedExpressionRule) Name() models.RuleCode { return models.RuleMalformedExpression }

func (malformedExpressionRule) Apply(ctx *Context) []models.Issue {
	var issues []models.Issue

	for _, node := range ctx.sortedNodes() {
		walkStrings("", node.Parameters, func(path, text string) {
			for _, problem := range expression.Check(text, ctx.names) {
				issues = append(issues, models.Issue{
					Rule:     models.RuleMalformedExpression,
					Severity: models.SeverityError,
					NodeName: node.Name,
					Property: path,
					Message:  fmt.Sprintf("expression at offset %d: %s", problem.Offset, problem.Reason),
				})
			}
		})
	}

	return issues
}

// walkStrings visits every string leaf in a parameter tree, depth first
// with sorted map keys so findings are deterministic.
func walkStrings(path string, value any, visit func(path, text string)) {
	switch v := value.(type) {
	case string:
		visit(path, v)
	case map[string]any:
		for _, key := range sortedKeys(v) {
			child := key
			if path != "" {
				child = path + "." + key
			}

			walkStrings(child, v[key], visit)
		}
	case []any:
		for i, item := range v {
			walkStrings(fmt.Sprintf("%s[%d]", path, i), item, visit)
		}
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}

// missingConnectionRule flags enabled non-trigger nodes with no incoming
// edges. Nodes whose only role is feeding an AI port (models, tools,
// memories, parsers) have no inbound edges and are exempt.
type missingConnectionRule struct{}

func (missingConnectionRule) Name() models.RuleCode { return models.RuleMissingConnection }

func (missingConnectionRule) Apply(ctx *Context) []models.Issue {
	var issues []models.Issue

	for _, node := range ctx.sortedNodes() {
		if node.Disabled || ctx.isTrigger(node) {
			continue
		}

		if len(ctx.incoming[node.Name]) > 0 {
			continue
		}

		if feedsAIPort(ctx, node) {
			continue
		}

		issues = append(issues, models.Issue{
			Rule:     models.RuleMissingConnection,
			Severity: models.SeverityError,
			NodeName: node.Name,
			Message:  fmt.Sprintf("node %q has no incoming connection", node.Name),
			Fix:      "connect the node to the graph or disable it",
		})
	}

	return issues
}

func feedsAIPort(ctx *Context, node *models.WorkflowNode) bool {
	for _, conn := range ctx.outgoing[node.Name] {
		if connType(conn).IsAI() {
			return true
		}
	}

	return false
}

// circularDependencyRule reports a directed cycle among main-type edges.
type circularDependencyRule struct{}

func (circularDependencyRule) Name() models.RuleCode { return models.RuleCircularDependency }

func (circularDependencyRule) Apply(ctx *Context) []models.Issue {
	cycle := findCycle(ctx.Workflow)
	if cycle == nil {
		return nil
	}

	return []models.Issue{{
		Rule:     models.RuleCircularDependency,
		Severity: models.SeverityError,
		NodeName: cycle[0],
		Message:  "circular dependency: " + strings.Join(cycle, " -> "),
		Fix:      "break the cycle; loops must go through an explicit loop node",
	}}
}

// credentialMismatchRule checks node credential references: the node type
// must accept the credential type, required credentials must be
// configured, and when the credential store is available the referenced
// ID must exist with a matching declared type.
type credentialMismatchRule struct{}

func (credentialMismatchRule) Name() models.RuleCode { return models.RuleCredentialMismatch }

func (credentialMismatchRule) Apply(ctx *Context) []models.Issue {
	var issues []models.Issue

	for _, node := range ctx.sortedNodes() {
		if node.Disabled {
			continue
		}

		nodeType, known := ctx.nodeType(node)

		if known {
			for _, spec := range nodeType.Credentials {
				if !spec.Required {
					continue
				}

				if _, ok := node.Credentials[spec.Type]; !ok {
					issues = append(issues, models.Issue{
						Rule:     models.RuleCredentialMismatch,
						Severity: models.SeverityError,
						NodeName: node.Name,
						Message:  fmt.Sprintf("no credential of type %q configured", spec.Type),
						Fix:      fmt.Sprintf("attach a %q credential to the node", spec.Type),
					})
				}
			}
		}

		for _, credType := range sortedCredentialTypes(node) {
			ref := node.Credentials[credType]

			if known {
				if _, ok := nodeType.ExpectsCredential(credType); !ok {
					issues = append(issues, models.Issue{
						Rule:     models.RuleCredentialMismatch,
						Severity: models.SeverityError,
						NodeName: node.Name,
						Message:  fmt.Sprintf("node type %s does not accept credential type %q", node.Type, credType),
					})

					continue
				}
			}

			if ctx.Credentials == nil {
				continue
			}

			stored, ok := ctx.Credentials[ref.ID]
			if !ok {
				issues = append(issues, models.Issue{
					Rule:     models.RuleCredentialMismatch,
					Severity: models.SeverityError,
					NodeName: node.Name,
					Message:  fmt.Sprintf("referenced credential %q not found", ref.ID),
					Fix:      "create the credential or update the reference",
				})

				continue
			}

			if stored.Type != credType {
				issues = append(issues, models.Issue{
					Rule:     models.RuleCredentialMismatch,
					Severity: models.SeverityError,
					NodeName: node.Name,
					Message: fmt.Sprintf("credential %q has type %q, node expects %q",
						ref.ID, stored.Type, credType),
				})
			}
		}
	}

	return issues
}

func sortedCredentialTypes(node *models.WorkflowNode) []string {
	types := make([]string, 0, len(node.Credentials))
	for credType := range node.Credentials {
		types = append(types, credType)
	}

	sort.Strings(types)

	return types
}

// invalidAIConnectionRule flags edges into an AI-capable node's non-main
// port that carry type "main" instead of the specific AI port type, plus
// edges with a connection type outside the known enum.
type invalidAIConnectionRule struct{}

func (invalidAIConnectionRule) Name() models.RuleCode { return models.RuleInvalidAIConnection }

func (invalidAIConnectionRule) Apply(ctx *Context) []models.Issue {
	var issues []models.Issue

	for _, conn := range ctx.sortedConnections() {
		if !connType(conn).Valid() {
			issues = append(issues, models.Issue{
				Rule:       models.RuleInvalidAIConnection,
				Severity:   models.SeverityError,
				SourcePort: conn.SourcePort,
				TargetPort: conn.TargetPort,
				Message:    fmt.Sprintf("unknown connection type %q", conn.Type),
			})

			continue
		}

		targetName, portName, ok := models.ParsePortID(conn.TargetPort)
		if !ok {
			continue
		}

		target := ctx.Workflow.NodeByName(targetName)
		if target == nil {
			continue
		}

		nodeType, known := ctx.nodeType(target)
		if !known {
			continue
		}

		port, exists := nodeType.Input(portName)
		if !exists || !port.Type.IsAI() {
			continue
		}

		if connType(conn) == models.ConnectionTypeMain {
			issues = append(issues, models.Issue{
				Rule:       models.RuleInvalidAIConnection,
				Severity:   models.SeverityError,
				NodeName:   targetName,
				SourcePort: conn.SourcePort,
				TargetPort: conn.TargetPort,
				Message: fmt.Sprintf("connection into %s must use type %q, not \"main\"",
					conn.TargetPort, port.Type),
				Fix: fmt.Sprintf("set the connection type to %q", port.Type),
			})
		}
	}

	return issues
}

// danglingConnectionRule flags connections referencing nodes or ports
// that do not exist.
type danglingConnectionRule struct{}

func (danglingConnectionRule) Name() models.RuleCode { return models.RuleDanglingConnection }

func (danglingConnectionRule) Apply(ctx *Context) []models.Issue {
	var issues []models.Issue

	for _, conn := range ctx.sortedConnections() {
		issues = append(issues, checkEndpoint(ctx, conn, conn.SourcePort, false)...)
		issues = append(issues, checkEndpoint(ctx, conn, conn.TargetPort, true)...)
	}

	return issues
}

func checkEndpoint(ctx *Context, conn *models.Connection, portID string, isTarget bool) []models.Issue {
	nodeName, portName, ok := models.ParsePortID(portID)
	if !ok {
		return []models.Issue{{
			Rule:       models.RuleDanglingConnection,
			Severity:   models.SeverityError,
			SourcePort: conn.SourcePort,
			TargetPort: conn.TargetPort,
			Message:    fmt.Sprintf("malformed port id %q, want \"node:port\"", portID),
		}}
	}

	if !ctx.names[nodeName] {
		return []models.Issue{{
			Rule:       models.RuleDanglingConnection,
			Severity:   models.SeverityError,
			SourcePort: conn.SourcePort,
			TargetPort: conn.TargetPort,
			Message:    fmt.Sprintf("connection references unknown node %q", nodeName),
		}}
	}

	node := ctx.Workflow.NodeByName(nodeName)

	nodeType, known := ctx.nodeType(node)
	if !known {
		return nil
	}

	exists := false
	if isTarget {
		_, exists = nodeType.Input(portName)
	} else {
		_, exists = nodeType.Output(portName)
	}

	if exists {
		return nil
	}

	direction := "output"
	if isTarget {
		direction = "input"
	}

	return []models.Issue{{
		Rule:       models.RuleDanglingConnection,
		Severity:   models.SeverityError,
		NodeName:   nodeName,
		SourcePort: conn.SourcePort,
		TargetPort: conn.TargetPort,
		Message:    fmt.Sprintf("node %q has no %s port %q", nodeName, direction, portName),
	}}
}
