package reminder

import (
	"time"

	"dietbot/internal/storage"
)

// The matcher is the pure half of the dispatcher: given an instant and a
// rule it decides whether the rule's window contains the instant. It does
// no I/O, so it is tested against literal (now, rule) pairs.

// InWindow reports whether now falls inside the half-open window
// [anchor, anchor+tolerance). The left edge is inclusive, the right edge
// exclusive, so adjacent windows never overlap.
func InWindow(now, anchor time.Time, tolerance time.Duration) bool {
	if tolerance <= 0 {
		return false
	}
	return !now.Before(anchor) && now.Sub(anchor) < tolerance
}

// MealAnchor computes the window start for a meal rule on now's date:
// the meal time minus the lead time, or the fixed morning time when the
// lead is the same-day-morning sentinel. The second return is false when
// the rule's stored time does not parse.
func MealAnchor(rule storage.MealRule, now time.Time, morning storage.TimeOfDay) (time.Time, bool) {
	if rule.LeadMinutes == storage.LeadSameDayMorning {
		return morning.At(now), true
	}
	mealAt, err := storage.ParseTimeOfDay(rule.Time)
	if err != nil {
		return time.Time{}, false
	}
	return mealAt.At(now).Add(-time.Duration(rule.LeadMinutes) * time.Minute), true
}

// ShouldFireMeal applies the day gate and the window check for one meal rule.
func ShouldFireMeal(now time.Time, rule storage.MealRule, morning storage.TimeOfDay, tolerance time.Duration) bool {
	if storage.FromTime(now.Weekday()) != rule.Day {
		return false
	}
	anchor, ok := MealAnchor(rule, now, morning)
	if !ok {
		return false
	}
	return InWindow(now, anchor, tolerance)
}

// ShouldFireFixed matches a rule that fires at a fixed time of day
// (weekly check-in, daily grocery reminder). Day gating, if any, is the
// caller's concern: check-ins pass only settings whose day already
// matched, grocery rules are daily.
func ShouldFireFixed(now time.Time, at storage.TimeOfDay, tolerance time.Duration) bool {
	return InWindow(now, at.At(now), tolerance)
}
