package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	formrules "github.com/goliatone/go-formrules"
	"github.com/goliatone/go-formrules/pkg/report"
)

type checkOptions struct {
	scenarios []string
	form      string
	format    string
}

func newCheckCommand(a *app) *cobra.Command {
	opts := &checkOptions{}
	cmd := &cobra.Command{
		Use:   "check FORM.html",
		Short: "Validate a form, or play scenarios against it",
		Long: `Without --scenario, check attaches every form of the document, validates
them as a whole and prints the result. With --scenario, each scripted
scenario runs on a fresh copy of the document and its failed expectations
are listed. The command exits non-zero when anything fails.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validFormat(opts.format); err != nil {
				return err
			}
			if len(opts.scenarios) == 0 {
				return a.checkForms(cmd.OutOrStdout(), args[0], opts)
			}
			return a.checkScenarios(cmd.OutOrStdout(), args[0], opts)
		},
	}
	cmd.Flags().StringSliceVarP(&opts.scenarios, "scenario", "s", nil, "scenario YAML file (repeatable)")
	cmd.Flags().StringVar(&opts.form, "form", "", "form id or name to check (default: every form)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "output format: text or json")
	return cmd
}

func (a *app) checkForms(w io.Writer, path string, opts *checkOptions) error {
	session, err := a.open(path)
	if err != nil {
		return err
	}
	defer session.Close()

	forms := session.Forms
	if opts.form != "" {
		form, err := session.Form(opts.form)
		if err != nil {
			return err
		}
		forms = []*formrules.Form{form}
	}

	results := make([]report.Result, 0, len(forms))
	valid := true
	for _, form := range forms {
		res := form.ValidateForm()
		valid = valid && res.Valid
		results = append(results, report.FromResult(form.Label(), res))
	}

	if opts.format == "json" {
		if err := writeJSON(w, results); err != nil {
			return err
		}
	} else {
		eng, err := report.New()
		if err != nil {
			return err
		}
		for _, res := range results {
			if _, err := eng.Render("result", res, w); err != nil {
				return err
			}
		}
	}
	if !valid {
		return errReported
	}
	return nil
}

type scenarioOutput struct {
	Name     string   `json:"name"`
	Source   string   `json:"source"`
	Passed   bool     `json:"passed"`
	Failures []string `json:"failures,omitempty"`
	Error    string   `json:"error,omitempty"`
}

func (a *app) checkScenarios(w io.Writer, path string, opts *checkOptions) error {
	var outputs []scenarioOutput
	failed := false
	for _, file := range opts.scenarios {
		scenarios, err := formrules.LoadScenarioFile(file)
		if err != nil {
			return err
		}
		for _, sc := range scenarios {
			if sc.Form == "" {
				sc.Form = opts.form
			}
			out := a.playScenario(path, sc)
			out.Source = file
			failed = failed || !out.Passed
			outputs = append(outputs, out)
		}
	}

	if opts.format == "json" {
		if err := writeJSON(w, outputs); err != nil {
			return err
		}
	} else {
		for _, out := range outputs {
			status := "PASS"
			if !out.Passed {
				status = "FAIL"
			}
			fmt.Fprintf(w, "%s %s\n", status, out.Name)
			if out.Error != "" {
				fmt.Fprintf(w, "  error: %s\n", out.Error)
			}
			for _, failure := range out.Failures {
				fmt.Fprintf(w, "  %s\n", failure)
			}
		}
	}
	if failed {
		return errReported
	}
	return nil
}

// playScenario runs sc on its own session so scenarios never observe each
// other's state.
func (a *app) playScenario(path string, sc formrules.Scenario) scenarioOutput {
	out := scenarioOutput{Name: sc.Name}
	session, err := a.open(path)
	if err != nil {
		out.Error = err.Error()
		return out
	}
	defer session.Close()

	res, err := sc.Run(session)
	out.Failures = res.Failures
	if err != nil {
		out.Error = err.Error()
		return out
	}
	out.Passed = res.Passed()
	return out
}

func validFormat(format string) error {
	switch format {
	case "text", "json":
		return nil
	default:
		return fmt.Errorf("formrules: unsupported format %q (use text or json)", format)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
