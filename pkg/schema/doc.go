// Package schema loads and validates declarative form definitions.
//
// A form is authored in YAML (see examples/), parsed into domain types, and
// structurally validated before a session opens over it: unknown question
// types, duplicate IDs, dangling condition references and broken
// option-specific linkages are all reported up front, aggregated into a
// single error.
//
// Per-type settings (Likert scale size, slider bounds, matrix axes) travel as
// a free-form map on the question and are decoded into typed structs here.
package schema
