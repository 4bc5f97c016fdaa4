// Package cmd provides common initialization functions for command-line applications.
package cmd

import (
	"log/slog"

	"github.com/dukex/flowlint/pkg/registry"
)

// NewRegistry builds the node type registry: built-in types first, then
// any community schemas found under schemasPath. An empty path skips the
// directory load.
func NewRegistry(log *slog.Logger, schemasPath string) *registry.Registry {
	reg := registry.NewRegistry(log)

	reg.RegisterBuiltins()

	if schemasPath != "" {
		if err := reg.LoadSchemaDir(schemasPath); err != nil {
			panic(err)
		}
	}

	return reg
}
