package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/aretw0/surveylogic/internal/logging"
	"github.com/aretw0/surveylogic/internal/presentation/tui"
	"github.com/aretw0/surveylogic/pkg/domain"
	"github.com/aretw0/surveylogic/pkg/schema"
	"github.com/aretw0/surveylogic/pkg/session"
)

// Commands understood at any prompt.
const (
	CommandBack   = ":back"
	CommandQuit   = ":quit"
	CommandSubmit = ":submit"
)

// ContentRenderer is a function that transforms the content before outputting it.
// This allows for TUI rendering (markdown to ANSI) without coupling the core package.
type ContentRenderer func(string) (string, error)

// Result reports how a run ended.
type Result struct {
	Completed bool
	// Quit is set when the respondent stopped early or input ended.
	Quit     bool
	Progress *domain.Progress
}

// Runner drives a session.Driver from line based input.
type Runner struct {
	input    io.Reader
	output   io.Writer
	renderer ContentRenderer
	logger   *slog.Logger
	maxInput int
}

// NewRunner creates a Runner reading stdin and writing stdout.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		input:    os.Stdin,
		output:   os.Stdout,
		logger:   logging.NewNop(),
		maxInput: maxInputSize(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run asks questions until the session completes, the respondent quits or
// input ends. Validation failures are printed and the question is asked again.
func (r *Runner) Run(ctx context.Context, d *session.Driver) (Result, error) {
	in := newLineReader(r.input)
	shown := ""

	for {
		view := d.View()
		if view.Status == domain.StatusCompleted {
			fmt.Fprintln(r.output, "Survey complete. Thank you!")
			return Result{Completed: true, Progress: d.Progress()}, nil
		}
		if view.CurrentQuestion == nil {
			return Result{Progress: d.Progress()}, domain.ErrNoQuestion
		}

		q := *view.CurrentQuestion
		if q.ID != shown {
			r.render(tui.QuestionMarkdown(q, view.CurrentIndex+1, len(view.VisibleQuestionIDs)))
			shown = q.ID
		}
		if current := view.Answers.Get(q.ID); !current.IsEmpty() {
			fmt.Fprintf(r.output, "[%s] > ", FormatAnswer(current))
		} else {
			fmt.Fprint(r.output, "> ")
		}

		line, err := in.ReadLine(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return Result{Quit: true, Progress: d.Progress()}, nil
			}
			return Result{Progress: d.Progress()}, err
		}
		line, err = Sanitize(line, r.maxInput)
		if err != nil {
			fmt.Fprintf(r.output, "✗ %v\n", err)
			continue
		}
		line = strings.TrimSpace(line)

		switch line {
		case CommandQuit:
			r.logger.Info("respondent quit", "session_id", view.SessionID, "at", q.ID)
			return Result{Quit: true, Progress: d.Progress()}, nil
		case CommandBack:
			moved, err := d.Previous(ctx)
			if err != nil {
				return Result{Progress: d.Progress()}, err
			}
			if !moved {
				fmt.Fprintln(r.output, "Already at the first question.")
			}
			continue
		case CommandSubmit:
			if err := r.submit(ctx, d); err != nil {
				return Result{Progress: d.Progress()}, err
			}
			continue
		}

		if line != "" {
			if _, err := d.SetAnswer(ctx, q.ID, ParseAnswer(q, line)); err != nil {
				return Result{Progress: d.Progress()}, err
			}
		}

		step, err := d.Next(ctx)
		if err != nil {
			if r.reported(err) {
				continue
			}
			return Result{Progress: d.Progress()}, err
		}
		if step.End && step.Reason == domain.StepEndOfList {
			if err := r.submit(ctx, d); err != nil {
				return Result{Progress: d.Progress()}, err
			}
		}
	}
}

func (r *Runner) submit(ctx context.Context, d *session.Driver) error {
	if err := d.Submit(ctx); err != nil && !r.reported(err) {
		return err
	}
	return nil
}

// reported prints validation failures and reports whether err was one.
func (r *Runner) reported(err error) bool {
	issues := schema.ValidationErrors(err)
	if issues == nil {
		return false
	}
	for _, issue := range issues {
		fmt.Fprintf(r.output, "✗ %v\n", issue)
	}
	return true
}

func (r *Runner) render(markdown string) {
	out := markdown
	if r.renderer != nil {
		if rendered, err := r.renderer(markdown); err == nil {
			out = rendered
		} else {
			r.logger.Debug("render failed, printing raw markdown", "err", err)
		}
	}
	fmt.Fprintln(r.output, strings.TrimSpace(out))
}
