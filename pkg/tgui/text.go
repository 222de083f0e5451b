package tgui

import "unicode/utf8"

// TruncRunes returns s truncated to at most n runes, appending "…"
// when anything was cut. Meal names on delete buttons go through this
// so a long label cannot push the button past Telegram's limits.
func TruncRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	// cut is the byte offset just past the n-th rune; finding an
	// (n+1)-th rune means the string is too long.
	count := 0
	cut := 0
	for i, r := range s {
		count++
		if count == n {
			cut = i + utf8.RuneLen(r)
			continue
		}
		if count > n {
			if cut <= 0 {
				cut = i
			}
			return s[:cut] + "…"
		}
	}
	return s
}
