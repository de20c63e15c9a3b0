/*
Package runner drives a survey session from a terminal.

The Runner prints the current question, reads one line per answer and moves the
session forward with the driver's navigation, so skip, jump and end rules apply
exactly as they do over HTTP. A few commands are understood at any prompt:

	:back    return to the previous question
	:submit  validate every visible answer and finish
	:quit    stop, keeping saved progress for later

An empty line keeps the current answer and moves on.

# Usage

	d, _ := engine.NewDriver(ctx, "onboarding", session.NewSessionID())
	res, err := runner.NewRunner(runner.WithRenderer(tui.NewRenderer())).Run(ctx, d)
*/
package runner
