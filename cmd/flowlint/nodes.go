package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	cli "github.com/urfave/cli/v3"

	"github.com/dukex/flowlint/pkg/cmd"
	"github.com/dukex/flowlint/pkg/log"
)

func NewNodesCommand() *cli.Command {
	return &cli.Command{
		Name:    "nodes",
		Aliases: []string{"n"},
		Usage:   "List node types known to the validator",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "schemas",
				Usage:   "Directory with additional node type schemas",
				Sources: cli.EnvVars("SCHEMAS_PATH"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			logger := log.WithModule("flowlint")

			reg := cmd.NewRegistry(logger, command.String("schemas"))

			writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)

			_, _ = fmt.Fprintln(writer, "TYPE\tDISPLAY NAME\tTRIGGER\tPROPERTIES")

			for _, name := range reg.Types() {
				nodeType, ok := reg.Lookup(name)
				if !ok {
					continue
				}

				_, _ = fmt.Fprintf(writer, "%s\t%s\t%v\t%d\n",
					nodeType.Name,
					nodeType.DisplayName,
					nodeType.Trigger,
					len(nodeType.Properties),
				)
			}

			return writer.Flush()
		},
	}
}
