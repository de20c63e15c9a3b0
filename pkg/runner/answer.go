package runner

import (
	"strconv"
	"strings"

	"github.com/aretw0/surveylogic/pkg/domain"
)

// ParseAnswer turns a typed line into an answer shaped for the question type.
// Input that does not fit the type is kept as text so the validator can report it.
func ParseAnswer(q domain.Question, input string) domain.Answer {
	input = strings.TrimSpace(input)
	if input == "" {
		return domain.Empty()
	}

	switch q.Type {
	case domain.TypeNumber, domain.TypeRating:
		if d, err := domain.ParseNumber(input); err == nil {
			return domain.Number(d)
		}
	case domain.TypeSingleChoice:
		return domain.Text(option(q.Options, input))
	case domain.TypeMultipleChoice:
		parts := splitList(input)
		for i, p := range parts {
			parts[i] = option(q.Options, p)
		}
		return domain.Choices(parts...)
	case domain.TypeMatrix:
		rows := make(map[string]string)
		for _, pair := range splitList(input) {
			row, col, ok := strings.Cut(pair, "=")
			if !ok {
				continue
			}
			rows[strings.TrimSpace(row)] = option(q.Options, strings.TrimSpace(col))
		}
		return domain.Matrix(rows)
	case domain.TypeFile:
		names := splitList(input)
		refs := make([]domain.FileRef, len(names))
		for i, n := range names {
			refs[i] = domain.FileRef{Name: n}
		}
		return domain.Files(refs...)
	}
	return domain.Text(input)
}

// option resolves a 1-based option number to its label.
func option(options []string, s string) string {
	if n, err := strconv.Atoi(s); err == nil && n >= 1 && n <= len(options) {
		return options[n-1]
	}
	return s
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// FormatAnswer renders an answer the way ParseAnswer reads it back.
func FormatAnswer(a domain.Answer) string {
	switch a.Kind {
	case domain.KindText:
		return a.Text
	case domain.KindNumber:
		return a.Number.String()
	case domain.KindChoices:
		return strings.Join(a.Choices, ", ")
	case domain.KindMatrix:
		rows := a.MatrixRows()
		for i, row := range rows {
			rows[i] = row + "=" + a.Matrix[row]
		}
		return strings.Join(rows, ", ")
	case domain.KindFiles:
		names := make([]string, len(a.Files))
		for i, f := range a.Files {
			names[i] = f.Name
		}
		return strings.Join(names, ", ")
	}
	return ""
}
