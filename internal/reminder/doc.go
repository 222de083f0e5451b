package reminder

// Package reminder decides when scheduled messages fire.
//
// It has two halves: a pure window matcher (anchor instant + half-open
// tolerance window, day-gated) and a cron-driven dispatch service that
// scans the store each tick and hands matches to the notifier.
//
// At-most-once delivery relies on the tolerance window equaling the poll
// interval; there is no durable delivered-marker.
