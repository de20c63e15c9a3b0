/*
Package surveylogic evaluates the conditional logic of surveys.

Questions carry ordered rules of the form "if the answer to Q1 equals X, then
show, hide, skip, jump or end". Given any partial set of answers the engine
decides which questions are visible, where navigation goes next and whether the
survey should end early. The same code serves instant client feedback and the
authoritative server check, so both always agree.

# Stateless use

	questions := survey.Questions
	visible := surveylogic.VisibleQuestions(questions, domain.Answers{
		"q1": domain.Text("yes"),
	})

# Engine

An Engine loads surveys through a ports.SurveyLoader, caches their compiled
programs and mirrors the evaluate endpoint:

	eng, err := surveylogic.New("./surveys")
	if err != nil {
		log.Fatal(err)
	}
	resp, err := eng.Evaluate(ctx, "onboarding", domain.EvaluateRequest{
		CurrentQuestionID: "q1",
		Answers:           []domain.AnswerEntry{{QuestionID: "q1", Value: domain.Text("yes")}},
	})

# Sessions

For an interactive respondent, Engine.NewDriver returns a session.Driver that owns
the answers and cursor, re-evaluates on every change and auto-saves progress.
*/
package surveylogic
