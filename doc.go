// Package espalier is a reconciliation engine for conditionally visible form
// questions.
//
// A form step declares three kinds of questions: standard ones that always
// render, conditional ones gated by rules over other answers, and
// option-specific ones that exist only while a particular checkbox option is
// checked. The engine keeps the rendered view tree consistent with the
// current answers as they change:
//
//	engine := espalier.New()
//	session, _ := engine.OpenSession(step)
//	_ = session.Begin(ctx)
//	_ = session.Answer(ctx, "has_pets", "yes")   // conditional questions appear
//	_ = session.ToggleOption(ctx, "pets", "dog", true) // option-specific ones too
//
// Visibility evaluation, question rendering, answer storage and timekeeping
// are all injected capabilities (see pkg/ports); the defaults in
// pkg/conditions, pkg/factory and pkg/adapters/memory make New() usable with
// no configuration.
//
// Change signals from free-text controls are debounced on the trailing edge;
// structured controls reconcile immediately in arrival order. Removal of
// option-specific questions is deferred by a short cosmetic delay while the
// question is already logically absent, and re-checking the option within the
// window reuses the still-attached node.
package espalier
