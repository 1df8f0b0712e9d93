/*
Package dsl provides a fluent builder for form definitions in Go code, as an
alternative to YAML authoring. Built forms pass through the same structural
validation as loaded ones.

	form, err := dsl.New("wellbeing").
		Step("s1", "Today").
		Radio("mood", "Mood today",
			dsl.Opt("good", "Good"), dsl.Opt("bad", "Bad")).
		LongText("why_bad", "What went wrong?").When("mood", domain.OpEquals, "bad").
		Build()
*/
package dsl
