/*
Package domain contains the core domain models for the Espalier engine.

It defines the fundamental entities of a dynamic form — Questions, Steps,
condition Rules and the signals that drive reconciliation. This package is
kept pure and free of external dependencies like I/O or persistence,
following Hexagonal Architecture principles.

# Key Entities

  - Question: a single form field, optionally condition-gated or bound to a
    checkbox option of another question.
  - Step: an ordered page of questions; order defines baseline render position.
  - ConditionSet / Rule: visibility rules read by the condition oracle.
  - OptionToggle / ResponseChange: the two signals consumed by the
    reconciliation engine.
*/
package domain
