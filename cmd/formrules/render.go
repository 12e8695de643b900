package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	formrules "github.com/goliatone/go-formrules"
	"github.com/goliatone/go-formrules/pkg/report"
)

type renderOptions struct {
	form    string
	set     []string
	actions []string
	output  string
	report  bool
}

func newRenderCommand(a *app) *cobra.Command {
	opts := &renderOptions{}
	cmd := &cobra.Command{
		Use:   "render FORM.html",
		Short: "Apply values and navigation, then print the resulting document",
		Example: `  formrules render signup.html --set state=California --do next
  formrules render signup.html --set kind=business --report`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.render(cmd.OutOrStdout(), args[0], opts)
		},
	}
	cmd.Flags().StringVar(&opts.form, "form", "", "form id or name the values apply to (default: first form)")
	cmd.Flags().StringArrayVar(&opts.set, "set", nil, "field=value assignment, applied in order (repeatable)")
	cmd.Flags().StringArrayVar(&opts.actions, "do", nil, "navigation to perform after the assignments: next, back or submit (repeatable)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write to this file instead of stdout")
	cmd.Flags().BoolVar(&opts.report, "report", false, "print the state report instead of the HTML")
	return cmd
}

func (a *app) render(w io.Writer, path string, opts *renderOptions) error {
	session, err := a.open(path)
	if err != nil {
		return err
	}
	defer session.Close()

	form, err := session.Form(opts.form)
	if err != nil {
		return err
	}
	for _, raw := range opts.set {
		field, value, ok := strings.Cut(raw, "=")
		if !ok {
			return fmt.Errorf("formrules: --set %q: expected field=value", raw)
		}
		if err := form.SetValue(strings.TrimSpace(field), value); err != nil {
			return err
		}
	}
	for _, action := range opts.actions {
		if err := navigate(form, action); err != nil {
			return err
		}
	}

	if opts.output != "" {
		f, err := os.Create(opts.output)
		if err != nil {
			return fmt.Errorf("formrules: create output: %w", err)
		}
		defer f.Close()
		w = f
	}

	if opts.report {
		eng, err := report.New()
		if err != nil {
			return err
		}
		return report.Write(w, eng, form)
	}
	return session.Render(w)
}

func navigate(form *formrules.Form, action string) error {
	switch strings.ToLower(strings.TrimSpace(action)) {
	case "next":
		form.Next()
	case "back":
		form.Back()
	case "submit":
		form.Submit()
	default:
		return fmt.Errorf("formrules: unknown navigation %q (use next, back or submit)", action)
	}
	return nil
}
