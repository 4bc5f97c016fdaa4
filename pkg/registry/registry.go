// Package registry provides node type schema registration and lookup.
package registry

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sort"

	"github.com/dukex/flowlint/pkg/schema"
)

// Registry holds the node type schemas the validator knows about. The
// authoritative schemas live in the external node registry service; this
// registry carries a built-in snapshot plus whatever schema files are
// loaded from disk.
type Registry struct {
	logger *slog.Logger
	types  map[string]*schema.NodeType
}

func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		logger: logger,
		types:  make(map[string]*schema.NodeType),
	}
}

// Register adds or replaces a node type schema.
func (r *Registry) Register(nodeType *schema.NodeType) {
	r.types[nodeType.Name] = nodeType
}

// Lookup returns the schema for a node type string.
func (r *Registry) Lookup(typeName string) (*schema.NodeType, bool) {
	nodeType, ok := r.types[typeName]

	return nodeType, ok
}

// Types returns all registered type names, sorted.
func (r *Registry) Types() []string {
	names := make([]string, 0, len(r.types))
	for name := range r.types {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// Len returns the number of registered node types.
func (r *Registry) Len() int {
	return len(r.types)
}

// LoadSchemaDir loads node type schema JSON files ("*.json") from a
// directory. Community node packages ship their schemas this way.
func (r *Registry) LoadSchemaDir(path string) error {
	root := os.DirFS(path)

	files, err := fs.Glob(root, "*.json")
	if err != nil {
		return fmt.Errorf("failed to list schema files in %s: %w", path, err)
	}

	l := r.logger.With(slog.String("path", path))
	l.Info("Loading node type schemas")

	for _, file := range files {
		data, err := fs.ReadFile(root, file)
		if err != nil {
			return fmt.Errorf("failed to read schema file %s: %w", file, err)
		}

		var nodeType schema.NodeType
		if err := json.Unmarshal(data, &nodeType); err != nil {
			return fmt.Errorf("failed to parse schema file %s: %w", file, err)
		}

		if nodeType.Name == "" {
			return fmt.Errorf("schema file %s declares no type name", file)
		}

		r.Register(&nodeType)
		l.Info("Loaded node type schema", slog.String("type", nodeType.Name))
	}

	return nil
}

// HealthCheck reports whether the registry is usable.
func (r *Registry) HealthCheck() (string, bool) {
	if len(r.types) == 0 {
		return "No node types registered", false
	}

	return fmt.Sprintf("%d node types registered", len(r.types)), true
}
