package main

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/surveylogic/internal/presentation/graph"
	"github.com/spf13/cobra"
)

var (
	graphFlags answerFlags
	graphJSON  bool
)

var graphCmd = &cobra.Command{
	Use:   "graph <survey-id>",
	Short: "Export the survey's logic map",
	Long: `Outputs a Mermaid diagram (graph TD) of the survey's rules. With --answers the
diagram highlights the questions visible and hidden for that answer set.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := newEngine()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		m, err := engine.LogicMap(ctx, args[0])
		if err != nil {
			return err
		}
		if graphJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(m)
		}

		var overlay *graph.GraphOverlay
		if graphFlags.inline != "" || graphFlags.file != "" || graphFlags.current != "" {
			req, err := graphFlags.request(cmd.InOrStdin())
			if err != nil {
				return err
			}
			resp, err := engine.Evaluate(ctx, args[0], req)
			if err != nil {
				return err
			}
			overlay = &graph.GraphOverlay{
				Visible: resp.VisibleQuestionIDs,
				Hidden:  resp.HiddenQuestionIDs,
				Current: req.CurrentQuestionID,
			}
		}

		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(m, overlay))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphFlags.register(graphCmd)
	graphCmd.Flags().BoolVar(&graphJSON, "json", false, "Print the logic map as JSON instead of Mermaid")
}
