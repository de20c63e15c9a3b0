package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/surveylogic/internal/presentation/tui"
	"github.com/aretw0/surveylogic/pkg/runner"
	"github.com/aretw0/surveylogic/pkg/schema"
	"github.com/aretw0/surveylogic/pkg/session"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	runSessionID string
	runPlain     bool
)

var runCmd = &cobra.Command{
	Use:   "run <survey-id>",
	Short: "Answer a survey interactively in the terminal",
	Long: `Asks the survey's visible questions one at a time, applying its logic as answers
change. Progress is auto-saved to the configured store; pass --session to resume.
Type :back to return to the previous question, :submit to finish and :quit to stop.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		surveyID := args[0]
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		engine, err := newEngine()
		if err != nil {
			return err
		}
		sessions, closeStore, err := openSessions(cfg)
		if err != nil {
			return err
		}
		defer func() { _ = closeStore() }()

		sessionID := runSessionID
		if sessionID == "" {
			sessionID = session.NewSessionID()
		}
		progress, err := sessions.LoadOrStart(ctx, sessionID, surveyID)
		if err != nil {
			return err
		}

		d, err := engine.NewDriver(ctx, surveyID, sessionID,
			session.WithResume(progress),
			session.WithValidator(schema.NewValidator()),
			session.WithAutoSave(sessions.Store(), cfg.AutosaveDelay),
		)
		if err != nil {
			return err
		}
		defer d.Close()

		out := cmd.OutOrStdout()
		opts := []runner.Option{
			runner.WithInput(cmd.InOrStdin()),
			runner.WithOutput(out),
			runner.WithLogger(logger),
		}
		if !runPlain && term.IsTerminal(int(os.Stdout.Fd())) {
			tui.PrintBanner(out)
			opts = append(opts, runner.WithRenderer(tui.NewRenderer()))
		}

		result, runErr := runner.NewRunner(opts...).Run(ctx, d)

		// The run context may already be cancelled; the final save must still happen.
		if err := d.Flush(context.WithoutCancel(ctx)); err != nil {
			logger.Error("failed to save progress", "session_id", sessionID, "err", err)
		}
		if runErr != nil && ctx.Err() == nil {
			return runErr
		}
		if !result.Completed {
			fmt.Fprintf(out, "\nProgress saved. Resume with: surveylogic run %s --session %s\n", surveyID, sessionID)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVar(&runSessionID, "session", "", "Resume (or start) the session with this id")
	runCmd.Flags().BoolVar(&runPlain, "plain", false, "Disable markdown rendering and the banner")
	runCmd.Flags().Duration("autosave-delay", time.Second, "Debounce before answers are auto-saved")
	_ = v.BindPFlag("autosave-delay", runCmd.Flags().Lookup("autosave-delay"))
}
