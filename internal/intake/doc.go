package intake

// Package intake drives multi-step conversational data collection: meal
// definitions, progress entries, settings, single-field edits and
// copy-to-days.
//
// The machine is pure: states consume one text input at a time and emit
// Effects (prompt + optional keyboard, or a terminal Outcome). All
// persistence happens in the caller, and malformed input always
// re-prompts the same state. The cancel token aborts from any state
// with zero side effects.
