/*
Package reconcile is the conditional-visibility core of Espalier.

It discovers which questions depend on which other questions' answers
(DependencyGraph), normalizes change notifications with a per-kind debounce
policy (Coordinator), and incrementally synchronizes the rendered view tree
with the desired visible state (Reconciler for condition-bearing questions,
OptionManager for checkbox-option sub-questions).

Two ordering algorithms coexist by design: conditional questions are
index-anchored against step declaration order, while option-specific siblings
are appended to their trigger's group in the chronological order they were
shown. They must stay separate code paths.

Everything here runs on a single logical event-processing thread: the owning
session serializes public entry points and timer callbacks, so no component
in this package locks.
*/
package reconcile
