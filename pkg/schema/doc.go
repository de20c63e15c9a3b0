// Package schema checks answers against the shape their question type expects.
//
// The default Validator implements ports.AnswerValidator and is what session
// drivers use before leaving a question:
//
//	v := schema.NewValidator()
//	if err := v.Validate(question, answer); err != nil {
//	    for _, e := range schema.ValidationErrors(err) {
//	        fmt.Println(e)
//	    }
//	}
//
// Checks for new question types can be registered with Validator.Register.
// Condition evaluation never consults this package: a malformed answer simply
// fails to satisfy numeric comparisons.
package schema
