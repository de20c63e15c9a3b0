package surveylogic_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/surveylogic"
	"github.com/aretw0/surveylogic/pkg/domain"
	"github.com/aretw0/surveylogic/pkg/dsl"
)

func petsSurvey() *dsl.Builder {
	b := dsl.New("pets")
	b.Add("has_pet").Question("Do you have a pet?").Choice("yes", "no")
	b.Add("pet_name").Question("What is its name?").ShowIf("has_pet", domain.OpEquals, "yes")
	b.Add("done").Question("Anything else?")
	return b
}

// ExampleEvaluate evaluates an answer set without an engine or loader.
func ExampleEvaluate() {
	questions := petsSurvey().Survey().Questions

	resp := surveylogic.Evaluate(questions, domain.EvaluateRequest{
		CurrentQuestionID: "has_pet",
		Answers:           []domain.AnswerEntry{{QuestionID: "has_pet", Value: domain.Text("no")}},
	})

	fmt.Println(resp.VisibleQuestionIDs, resp.HiddenQuestionIDs, *resp.NextQuestionID, resp.ShouldEndSurvey)
	// Output: [has_pet done] [pet_name] done false
}

// ExampleNew_library drives a respondent session over an in-memory survey.
func ExampleNew_library() {
	loader, err := petsSurvey().Build()
	if err != nil {
		log.Fatal(err)
	}

	eng, err := surveylogic.New("", surveylogic.WithLoader(loader))
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	d, err := eng.NewDriver(ctx, "pets", "session-mem")
	if err != nil {
		log.Fatal(err)
	}
	defer d.Close()

	view, _ := d.SetAnswer(ctx, "has_pet", domain.Text("yes"))
	fmt.Println(view.VisibleQuestionIDs)

	step, err := d.Next(ctx)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(step.QuestionID, step.Reason)
	// Output:
	// [has_pet pet_name done]
	// pet_name sequential
}
