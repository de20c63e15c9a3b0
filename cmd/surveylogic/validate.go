package main

import (
	"context"
	"fmt"
	"io"

	"github.com/aretw0/surveylogic/internal/validator"
	"github.com/aretw0/surveylogic/pkg/ports"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var strictValidate bool

var validateCmd = &cobra.Command{
	Use:   "validate [survey-id...]",
	Short: "Check survey rules for consistency",
	Long: `Reports broken references and malformed rules. Without arguments every survey
in the directory is checked. Warnings only fail the run with --strict.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := newEngine()
		if err != nil {
			return err
		}
		failed, err := runValidate(cmd.Context(), cmd.OutOrStdout(), engine.Loader(), args)
		if err != nil {
			return err
		}
		if failed > 0 {
			return fmt.Errorf("validation failed for %d survey(s)", failed)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().BoolVar(&strictValidate, "strict", false, "Treat warnings as errors")
}

// runValidate prints the issues of each survey and returns how many surveys failed.
func runValidate(ctx context.Context, w io.Writer, loader ports.SurveyLoader, ids []string) (int, error) {
	if len(ids) == 0 {
		var err error
		if ids, err = loader.List(ctx); err != nil {
			return 0, err
		}
	}

	bold := color.New(color.Bold)
	failed := 0
	for _, id := range ids {
		survey, err := loader.Load(ctx, id)
		if err != nil {
			fmt.Fprintf(w, "%s %s: %v\n", color.RedString("✗"), bold.Sprint(id), err)
			failed++
			continue
		}

		issues := validator.Validate(survey.Questions)
		bad := validator.Err(issues) != nil || (strictValidate && len(issues) > 0)
		if bad {
			failed++
			fmt.Fprintf(w, "%s %s\n", color.RedString("✗"), bold.Sprint(id))
		} else {
			fmt.Fprintf(w, "%s %s\n", color.GreenString("✓"), bold.Sprint(id))
		}
		for _, issue := range issues {
			line := "  " + issue.String()
			if issue.Severity == validator.SeverityError {
				fmt.Fprintln(w, color.RedString(line))
			} else {
				fmt.Fprintln(w, color.YellowString(line))
			}
		}
	}
	return failed, nil
}
