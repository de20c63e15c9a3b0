/*
Package dsl provides a fluent Go builder for surveys and their logic rules.

It is an alternative to YAML or JSON documents, useful for generated surveys,
unit tests and IDE type checking.

Example usage:

	b := dsl.New("onboarding").Title("Onboarding")

	b.Add("role").
		Question("What is your role?").
		Choice("developer", "manager").
		Required()

	b.Add("language").
		Question("Which language do you use most?").
		ShowIf("role", domain.OpEquals, "developer")

	b.Add("team_size").
		Question("How many people report to you?").
		Type(domain.TypeNumber).
		HideIf("role", domain.OpNotEquals, "manager").
		EndIf("team_size", domain.OpGreaterThan, "500")

	loader, err := b.Build()
	// ... pass loader to surveylogic.New("", surveylogic.WithLoader(loader))
*/
package dsl
