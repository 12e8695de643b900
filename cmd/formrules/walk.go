package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formrules/pkg/report"
	"github.com/goliatone/go-formrules/pkg/walker"
)

func newWalkCommand(a *app) *cobra.Command {
	var (
		formKey   string
		maxRounds int
		output    string
	)
	cmd := &cobra.Command{
		Use:   "walk FORM.html",
		Short: "Fill a form interactively, step by step",
		Long: `walk prompts for every control the current step displays, honouring
conditions and branches, then asks where to go next. It ends once a
submission passes validation and prints the submitted values.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := a.open(args[0])
			if err != nil {
				return err
			}
			defer session.Close()

			form, err := session.Form(formKey)
			if err != nil {
				return err
			}
			w, err := walker.New(form,
				walker.WithPromptDriver(walker.NewSurveyDriver(cmd.ErrOrStderr())),
				walker.WithLogger(a.logger),
				walker.WithMaxRounds(maxRounds),
			)
			if err != nil {
				return err
			}

			if _, err := w.Run(cmd.Context()); err != nil {
				if errors.Is(err, walker.ErrAborted) {
					fmt.Fprintln(cmd.ErrOrStderr(), "walk aborted")
					return errReported
				}
				return err
			}

			eng, err := report.New()
			if err != nil {
				return err
			}
			if err := report.Write(cmd.OutOrStdout(), eng, form); err != nil {
				return err
			}
			if output == "" {
				return nil
			}
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("formrules: create output: %w", err)
			}
			defer f.Close()
			return session.Render(f)
		},
	}
	cmd.Flags().StringVar(&formKey, "form", "", "form id or name to walk (default: first form)")
	cmd.Flags().IntVar(&maxRounds, "max-rounds", 100, "give up after this many navigation attempts")
	cmd.Flags().StringVarP(&output, "output", "o", "", "also write the final document to this file")
	return cmd
}
