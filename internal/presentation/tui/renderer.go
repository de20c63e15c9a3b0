package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/surveylogic/pkg/domain"
	"github.com/aretw0/surveylogic/pkg/schema"
	"github.com/charmbracelet/glamour"
)

// NewRenderer returns a function that renders markdown using glamour.
// Without a usable renderer the markdown is returned unchanged.
func NewRenderer() func(string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
	)
	if err != nil {
		return func(markdown string) (string, error) { return markdown, nil }
	}
	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

// QuestionMarkdown formats a question prompt. position is 1-based; total is the
// number of visible questions.
func QuestionMarkdown(q domain.Question, position, total int) string {
	var sb strings.Builder
	title := q.Text
	if title == "" {
		title = q.ID
	}
	fmt.Fprintf(&sb, "### %s", title)
	if q.Required {
		sb.WriteString(" *")
	}
	fmt.Fprintf(&sb, "\n\n_Question %d of %d_\n", position, total)

	switch q.Type {
	case domain.TypeSingleChoice, domain.TypeMultipleChoice:
		sb.WriteString("\n")
		for _, opt := range q.Options {
			fmt.Fprintf(&sb, "- %s\n", opt)
		}
		if q.Type == domain.TypeMultipleChoice {
			sb.WriteString("\nSeparate choices with commas.\n")
		}
	case domain.TypeRating:
		fmt.Fprintf(&sb, "\nRate from 1 to %d.\n", schema.DefaultRatingScale)
	case domain.TypeMatrix:
		sb.WriteString("\nAnswer each row as `row=column`, separated by commas.\n\n")
		for _, row := range q.Rows {
			fmt.Fprintf(&sb, "- %s\n", row)
		}
		if len(q.Options) > 0 {
			fmt.Fprintf(&sb, "\nColumns: %s\n", strings.Join(q.Options, ", "))
		}
	case domain.TypeFile:
		sb.WriteString("\nEnter file names separated by commas.\n")
	}
	return sb.String()
}
