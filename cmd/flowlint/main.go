package main

import (
	"context"
	"fmt"
	"os"

	cli "github.com/urfave/cli/v3"
)

func main() {
	command := &cli.Command{
		Name:                  "flowlint",
		Usage:                 "Static validation for n8n workflow graphs",
		EnableShellCompletion: true,
		Commands: []*cli.Command{
			NewValidateCommand(),
			NewNodesCommand(),
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
