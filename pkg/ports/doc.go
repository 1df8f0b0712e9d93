/*
Package ports defines the driven ports (interfaces) for the Espalier engine.

These interfaces decouple the reconciliation core from external
implementations, allowing the engine to work with various view trees,
response stores and rendering strategies.

# Key Interfaces

  - ViewTree: the mutable rendered hierarchy the engine inserts into and
    removes from.
  - ResponseStore: keyed per-question answer state (memory, Redis).
  - ConditionOracle: decides whether a condition set is satisfied.
  - QuestionFactory: renders a question into a view node.
  - Clock: cooperative timers for the debounce and cosmetic-removal windows.
*/
package ports
