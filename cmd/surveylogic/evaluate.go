package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/aretw0/surveylogic/pkg/domain"
	"github.com/aretw0/surveylogic/pkg/runner"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	evalFlags answerFlags
	evalJSON  bool
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate <survey-id>",
	Short: "Evaluate a survey's logic for an answer set",
	Long: `Prints which questions are visible or hidden for the given answers, where
navigation goes from --current and whether the survey ends.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := newEngine()
		if err != nil {
			return err
		}
		req, err := evalFlags.request(cmd.InOrStdin())
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		resp, err := engine.Evaluate(ctx, args[0], req)
		if err != nil {
			return err
		}
		if evalJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(resp)
		}

		program, err := engine.Program(ctx, args[0])
		if err != nil {
			return err
		}
		printEvaluation(cmd.OutOrStdout(), program.Questions(), req, resp)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(evaluateCmd)
	evalFlags.register(evaluateCmd)
	evaluateCmd.Flags().BoolVar(&evalJSON, "json", false, "Print the raw evaluation response")
}

func printEvaluation(w io.Writer, questions []domain.Question, req domain.EvaluateRequest, resp domain.EvaluateResponse) {
	answers := req.AnswerMap()
	visible := make(map[string]bool, len(resp.VisibleQuestionIDs))
	for _, id := range resp.VisibleQuestionIDs {
		visible[id] = true
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.AppendHeader(table.Row{"#", "Question", "Type", "Status", "Answer"})
	for _, q := range questions {
		status := "hidden"
		if visible[q.ID] {
			status = "visible"
		}
		if q.ID == req.CurrentQuestionID {
			status += " (current)"
		}
		tw.AppendRow(table.Row{q.Order, q.ID, q.Type, status, runner.FormatAnswer(answers.Get(q.ID))})
	}
	tw.Render()

	next := "-"
	if resp.NextQuestionID != nil {
		next = *resp.NextQuestionID
	}
	fmt.Fprintf(w, "next: %s\nend survey: %t\n", next, resp.ShouldEndSurvey)
}
