// Package tgui provides small Telegram UI helpers:
//   - Inline keyboard builders
//   - Callback data helpers (action:payload)
//
// Callback data stays within Telegram's 64-byte limit; helpers report
// an error rather than silently truncating.
package tgui
