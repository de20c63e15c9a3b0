package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/aretw0/surveylogic/pkg/domain"
	"github.com/spf13/cobra"
)

// answerFlags are shared by the commands that evaluate an answer set.
type answerFlags struct {
	inline  string
	file    string
	current string
}

func (f *answerFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.inline, "answers", "a", "", `Answers as a JSON object, e.g. {"q1":"yes","q2":5}`)
	cmd.Flags().StringVarP(&f.file, "answers-file", "f", "", "Read the answers JSON object from a file (- for stdin)")
	cmd.Flags().StringVar(&f.current, "current", "", "Question the respondent is on")
}

// request builds an evaluation request. Entries are sorted by question id so output is stable.
func (f *answerFlags) request(stdin io.Reader) (domain.EvaluateRequest, error) {
	req := domain.EvaluateRequest{CurrentQuestionID: f.current, Answers: []domain.AnswerEntry{}}

	raw := f.inline
	switch {
	case f.inline != "" && f.file != "":
		return req, fmt.Errorf("--answers and --answers-file are mutually exclusive")
	case f.file == "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return req, err
		}
		raw = string(data)
	case f.file != "":
		data, err := os.ReadFile(f.file)
		if err != nil {
			return req, fmt.Errorf("failed to read answers: %w", err)
		}
		raw = string(data)
	}
	if strings.TrimSpace(raw) == "" {
		return req, nil
	}

	var answers map[string]domain.Answer
	if err := json.Unmarshal([]byte(raw), &answers); err != nil {
		return req, fmt.Errorf("invalid answers: %w", err)
	}
	ids := make([]string, 0, len(answers))
	for id := range answers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		req.Answers = append(req.Answers, domain.AnswerEntry{QuestionID: id, Value: answers[id]})
	}
	return req, nil
}
