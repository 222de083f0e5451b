package reminder

import (
	"testing"
	"time"

	"dietbot/internal/storage"
)

var morning = storage.TimeOfDay{Hour: 8}

// 2024-05-06 is a Monday.
func monday(hour, min, sec int) time.Time {
	return time.Date(2024, 5, 6, hour, min, sec, 0, time.UTC)
}

func TestInWindowEdges(t *testing.T) {
	t.Parallel()
	anchor := monday(11, 0, 0)
	tol := time.Minute

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"left edge inclusive", anchor, true},
		{"inside", anchor.Add(30 * time.Second), true},
		{"just before", anchor.Add(-time.Second), false},
		{"right edge exclusive", anchor.Add(tol), false},
		{"after window", anchor.Add(2 * tol), false},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if got := InWindow(tt.now, anchor, tol); got != tt.want {
				t.Fatalf("InWindow(%v) = %v, want %v", tt.now, got, tt.want)
			}
		})
	}

	if InWindow(anchor, anchor, 0) {
		t.Fatal("zero tolerance must never match")
	}
}

func TestMealRuleScenario(t *testing.T) {
	t.Parallel()
	// Meal rule {day=Monday, time=13:00, lead=120min} with 60s tolerance.
	rule := storage.MealRule{Day: storage.Monday, Time: "13:00", LeadMinutes: 120}
	tol := time.Minute

	if !ShouldFireMeal(monday(11, 0, 0), rule, morning, tol) {
		t.Fatal("Monday 11:00:00 should fire")
	}
	if ShouldFireMeal(monday(10, 59, 59), rule, morning, tol) {
		t.Fatal("Monday 10:59:59 should not fire")
	}
	if ShouldFireMeal(monday(11, 1, 0), rule, morning, tol) {
		t.Fatal("Monday 11:01:00 should not fire (window passed)")
	}

	tuesday := monday(11, 0, 0).AddDate(0, 0, 1)
	if ShouldFireMeal(tuesday, rule, morning, tol) {
		t.Fatal("Tuesday 11:00:00 should not fire (day gate)")
	}
}

func TestSameDayMorningSentinel(t *testing.T) {
	t.Parallel()
	// The sentinel fires in the fixed morning window regardless of meal time.
	rule := storage.MealRule{Day: storage.Monday, Time: "20:30", LeadMinutes: storage.LeadSameDayMorning}
	tol := time.Minute

	if !ShouldFireMeal(monday(8, 0, 0), rule, morning, tol) {
		t.Fatal("sentinel rule should fire at the morning time")
	}
	if ShouldFireMeal(monday(18, 30, 0), rule, morning, tol) {
		t.Fatal("sentinel rule must ignore the meal's own time")
	}
	if ShouldFireMeal(monday(7, 59, 59), rule, morning, tol) {
		t.Fatal("sentinel rule must not fire before the morning window")
	}
}

func TestMalformedMealTimeNeverFires(t *testing.T) {
	t.Parallel()
	rule := storage.MealRule{Day: storage.Monday, Time: "25:99", LeadMinutes: 60}
	if ShouldFireMeal(monday(11, 0, 0), rule, morning, time.Minute) {
		t.Fatal("malformed rule time must never match")
	}
	if _, ok := MealAnchor(rule, monday(0, 0, 0), morning); ok {
		t.Fatal("MealAnchor must report malformed time")
	}
}

func TestFixedRuleWindow(t *testing.T) {
	t.Parallel()
	at := storage.TimeOfDay{Hour: 9}
	if !ShouldFireFixed(monday(9, 0, 30), at, time.Minute) {
		t.Fatal("fixed rule should fire inside the window")
	}
	if ShouldFireFixed(monday(9, 1, 0), at, time.Minute) {
		t.Fatal("fixed rule should not fire past the window")
	}
}

func TestToleranceCouplingToCadence(t *testing.T) {
	t.Parallel()
	// The documented coupling: with a tolerance wider than the tick
	// cadence, two consecutive passes both match the same occurrence.
	rule := storage.MealRule{Day: storage.Monday, Time: "13:00", LeadMinutes: 120}
	wide := 2 * time.Minute

	first := monday(11, 0, 0)
	second := first.Add(time.Minute) // next tick at 60s cadence
	if !ShouldFireMeal(first, rule, morning, wide) || !ShouldFireMeal(second, rule, morning, wide) {
		t.Fatal("expected duplicate match when tolerance exceeds cadence")
	}

	// And with a tolerance narrower than the cadence, an occurrence
	// between ticks is missed entirely.
	narrow := 30 * time.Second
	tickA := monday(10, 59, 45)
	tickB := monday(11, 0, 45)
	if ShouldFireMeal(tickA, rule, morning, narrow) || ShouldFireMeal(tickB, rule, morning, narrow) {
		t.Fatal("expected both ticks to miss when tolerance is narrower than cadence")
	}
}
