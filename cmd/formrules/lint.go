package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	formrules "github.com/goliatone/go-formrules"
)

type fileIssue struct {
	File string `json:"file"`
	formrules.Issue
}

func newLintCommand(a *app) *cobra.Command {
	var (
		format string
		strict bool
	)
	cmd := &cobra.Command{
		Use:   "lint FORM.html...",
		Short: "Report authoring mistakes in form rule attributes",
		Long: `lint checks condition syntax and operators, trigger fields, skip rules and
routing keys without attaching the engine. Errors make the command fail;
with --strict, warnings do too.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validFormat(format); err != nil {
				return err
			}
			return a.lint(cmd.OutOrStdout(), args, format, strict)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format: text or json")
	cmd.Flags().BoolVar(&strict, "strict", false, "fail on warnings as well as errors")
	return cmd
}

func (a *app) lint(w io.Writer, paths []string, format string, strict bool) error {
	var issues []fileIssue
	failed := false
	for _, path := range paths {
		found, err := formrules.LintFile(path, a.cfg)
		if err != nil {
			return err
		}
		if formrules.HasErrors(found) || (strict && len(found) > 0) {
			failed = true
		}
		for _, issue := range found {
			issues = append(issues, fileIssue{File: path, Issue: issue})
		}
	}

	if format == "json" {
		if issues == nil {
			issues = []fileIssue{}
		}
		if err := writeJSON(w, issues); err != nil {
			return err
		}
	} else {
		for _, issue := range issues {
			fmt.Fprintf(w, "%s: %s\n", issue.File, issue.Issue)
		}
	}
	if failed {
		return errReported
	}
	return nil
}
