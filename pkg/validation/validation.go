// Package validation implements the workflow graph validator: a pure,
// synchronous set of checks over an in-memory workflow producing a
// structured report of errors and warnings. Errors block deployment;
// warnings may be knowingly overridden (see overrides.go).
package validation

import (
	"sort"
	"strings"

	"github.com/dukex/flowlint/pkg/models"
	"github.com/dukex/flowlint/pkg/registry"
	"github.com/dukex/flowlint/pkg/schema"
)

// Rule is a single validation check applied to the whole workflow.
type Rule interface {
	Name() models.RuleCode
	Apply(ctx *Context) []models.Issue
}

// Rules returns the built-in rules in their fixed reporting order.
func Rules() []Rule {
	return []Rule{
		duplicateNodeNameRule{},
		unknownNodeTypeRule{},
		missingRequiredPropertyRule{},
		typeMismatchRule{},
		unknownPropertyRule{},
		malformedExpressionRule{},
		missingConnectionRule{},
		circularDependencyRule{},
		credentialMismatchRule{},
		invalidAIConnectionRule{},
		danglingConnectionRule{},
	}
}

// Validate runs every rule against the workflow and returns the report.
// credentials is the set of stored credentials known to the platform; a
// nil slice means the credential store is unavailable, which skips
// existence checks but keeps type checks.
func Validate(workflow *models.Workflow, reg *registry.Registry, credentials []*models.Credential) *models.Report {
	ctx := newContext(workflow, reg, credentials)
	report := models.NewReport(workflow)

	for _, rule := range Rules() {
		report.Append(rule.Apply(ctx)...)
	}

	return report
}

// Context carries the workflow under validation plus indexes shared by
// the rules.
type Context struct {
	Workflow    *models.Workflow
	Registry    *registry.Registry
	Credentials map[string]*models.Credential // nil when the store is unavailable

	names    map[string]bool
	incoming map[string][]*models.Connection
	outgoing map[string][]*models.Connection
}

func newContext(workflow *models.Workflow, reg *registry.Registry, credentials []*models.Credential) *Context {
	ctx := &Context{
		Workflow: workflow,
		Registry: reg,
		names:    workflow.NodeNames(),
		incoming: make(map[string][]*models.Connection),
		outgoing: make(map[string][]*models.Connection),
	}

	if credentials != nil {
		ctx.Credentials = make(map[string]*models.Credential, len(credentials))
		for _, credential := range credentials {
			ctx.Credentials[credential.ID] = credential
		}
	}

	for _, conn := range workflow.Connections {
		ctx.outgoing[conn.SourceNode()] = append(ctx.outgoing[conn.SourceNode()], conn)
		ctx.incoming[conn.TargetNode()] = append(ctx.incoming[conn.TargetNode()], conn)
	}

	return ctx
}

// sortedNodes returns the workflow nodes ordered by name so reports are
// stable across runs.
func (c *Context) sortedNodes() []*models.WorkflowNode {
	nodes := make([]*models.WorkflowNode, len(c.Workflow.Nodes))
	copy(nodes, c.Workflow.Nodes)
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].Name < nodes[j].Name })

	return nodes
}

// sortedConnections returns connections ordered by source then target port.
func (c *Context) sortedConnections() []*models.Connection {
	conns := make([]*models.Connection, len(c.Workflow.Connections))
	copy(conns, c.Workflow.Connections)
	sort.Slice(conns, func(i, j int) bool {
		if conns[i].SourcePort != conns[j].SourcePort {
			return conns[i].SourcePort < conns[j].SourcePort
		}

		return conns[i].TargetPort < conns[j].TargetPort
	})

	return conns
}

func (c *Context) nodeType(node *models.WorkflowNode) (*schema.NodeType, bool) {
	return c.Registry.Lookup(node.Type)
}

// isTrigger reports whether a node starts the workflow rather than being
// fed by it. The schema flag is authoritative; unregistered types fall
// back to the type name convention.
func (c *Context) isTrigger(node *models.WorkflowNode) bool {
	if nodeType, ok := c.nodeType(node); ok {
		return nodeType.Trigger
	}

	short := strings.ToLower(node.ShortType())

	return strings.Contains(short, "trigger") || short == "webhook" || short == "cron"
}

// connType returns the effective connection type; imports may leave the
// field empty, which means "main".
func connType(conn *models.Connection) models.ConnectionType {
	if conn.Type == "" {
		return models.ConnectionTypeMain
	}

	return conn.Type
}
