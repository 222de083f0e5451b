package storage

// Package storage is the schedule store: recurring meal rules, append-only
// progress history and per-user settings, all in a local SQLite database.
//
// Rows are independent; the dispatcher's scan-then-act pattern needs no
// cross-row transactions. The only multi-row write is AddMeals, which
// persists one rule per selected day atomically.
