package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/dukex/flowlint/pkg/cmd"
	"github.com/dukex/flowlint/pkg/log"
	"github.com/dukex/flowlint/pkg/models"
	"github.com/dukex/flowlint/pkg/n8n"
	"github.com/dukex/flowlint/pkg/validation"
)

// Static error variables for linter compliance.
var (
	ErrValidationFailed = errors.New("workflow failed validation")
	ErrUnknownOverride  = errors.New("unknown override pattern")
	ErrUnknownFormat    = errors.New("unknown output format")
)

func NewValidateCommand() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Aliases:   []string{"v"},
		Usage:     "Validate an n8n workflow export, reading from a file or stdin",
		ArgsUsage: "[workflow.json]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "schemas",
				Usage:   "Directory with additional node type schemas",
				Sources: cli.EnvVars("SCHEMAS_PATH"),
			},
			&cli.StringFlag{
				Name:  "credentials",
				Usage: "JSON file listing known credentials, enables existence checks",
			},
			&cli.StringSliceFlag{
				Name:    "override",
				Aliases: []string{"o"},
				Usage:   "Override pattern to downgrade matching errors to warnings (repeatable)",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format (text, json)",
				Value:   "text",
			},
			&cli.BoolFlag{
				Name:  "strict",
				Usage: "Exit non-zero on warnings too",
			},
		},
		Action: runValidate,
	}
}

func runValidate(ctx context.Context, command *cli.Command) error {
	logger := log.WithModule("flowlint")

	data, err := readWorkflow(command.Args().First())
	if err != nil {
		return err
	}

	workflow, err := n8n.Parse(data)
	if err != nil {
		return fmt.Errorf("failed to parse workflow: %w", err)
	}

	credentials, err := readCredentials(command.String("credentials"))
	if err != nil {
		return err
	}

	overrides := command.StringSlice("override")
	for _, name := range overrides {
		if !validation.KnownPattern(name) {
			return fmt.Errorf("%w: %s (known: %v)", ErrUnknownOverride, name, validation.Patterns())
		}
	}

	reg := cmd.NewRegistry(logger, command.String("schemas"))

	report := validation.Validate(workflow, reg, credentials)

	if len(overrides) > 0 {
		patterns := make([]validation.OverridePattern, 0, len(overrides))
		for _, name := range overrides {
			patterns = append(patterns, validation.OverridePattern(name))
		}

		validation.ApplyOverrides(report, patterns...)
	}

	if err := printReport(report, command.String("format")); err != nil {
		return err
	}

	if report.Errors > 0 || (command.Bool("strict") && report.Warnings > 0) {
		return fmt.Errorf("%w: %d errors, %d warnings", ErrValidationFailed, report.Errors, report.Warnings)
	}

	return nil
}

func readWorkflow(path string) ([]byte, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read workflow from stdin: %w", err)
		}

		return data, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read workflow file: %w", err)
	}

	return data, nil
}

func readCredentials(path string) ([]*models.Credential, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}

	var credentials []*models.Credential
	if err := json.Unmarshal(data, &credentials); err != nil {
		return nil, fmt.Errorf("failed to parse credentials file: %w", err)
	}

	return credentials, nil
}

func printReport(report *models.Report, format string) error {
	switch format {
	case "json":
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")

		return encoder.Encode(report)
	case "text":
		printTextReport(report)

		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
}

func printTextReport(report *models.Report) {
	if report.WorkflowName != "" {
		_, _ = fmt.Fprintf(os.Stdout, "Workflow: %s\n", report.WorkflowName)
	}

	for _, issue := range report.Issues {
		location := issue.NodeName
		if issue.Property != "" {
			location += "." + issue.Property
		}

		if location == "" {
			location = "(workflow)"
		}

		_, _ = fmt.Fprintf(os.Stdout, "%s [%s] %s: %s\n", issue.Severity, issue.Rule, location, issue.Message)

		if issue.Fix != "" {
			_, _ = fmt.Fprintf(os.Stdout, "    fix: %s\n", issue.Fix)
		}

		if issue.OverriddenBy != "" {
			_, _ = fmt.Fprintf(os.Stdout, "    overridden by: %s\n", issue.OverriddenBy)
		}
	}

	_, _ = fmt.Fprintf(os.Stdout, "\n%d errors, %d warnings\n", report.Errors, report.Warnings)
}
