package router

import (
	"strings"
	"testing"

	"dietbot/internal/storage"
)

func TestWeeklyPlanGroupsByDay(t *testing.T) {
	got := weeklyPlan([]storage.MealRule{
		{Day: storage.Wednesday, Name: "Dinner", Time: "19:00"},
		{Day: storage.Monday, Name: "Lunch", Time: "13:00"},
		{Day: storage.Monday, Name: "Breakfast", Time: "08:00"},
	})
	mon := strings.Index(got, "Monday")
	wed := strings.Index(got, "Wednesday")
	if mon < 0 || wed < 0 || mon > wed {
		t.Fatalf("days out of order:\n%s", got)
	}
	if strings.Contains(got, "Tuesday") {
		t.Fatalf("empty day rendered:\n%s", got)
	}
}

func TestHistoryTableNullCells(t *testing.T) {
	w := 82.4
	got := historyTable([]storage.ProgressEntry{
		{Date: "2024-05-06", Weight: &w},
	})
	if !strings.Contains(got, "82.4") || !strings.Contains(got, "-") {
		t.Fatalf("table:\n%s", got)
	}
	if !strings.Contains(got, "```") {
		t.Fatal("table must be a monospace block")
	}
}

func TestWeightDelta(t *testing.T) {
	f := func(v float64) *float64 { return &v }
	tests := []struct {
		prev, cur *float64
		want      string
	}{
		{f(83.0), f(82.6), "📉 -0.4 kg"},
		{f(82.0), f(82.5), "📈 +0.5 kg"},
		{f(82.0), f(82.0), "➡️ +0.0 kg"},
		{nil, f(82.0), ""},
		{f(82.0), nil, ""},
	}
	for _, tt := range tests {
		got := weightDelta(tt.prev, tt.cur)
		if tt.want == "" {
			if got != "" {
				t.Fatalf("expected empty, got %q", got)
			}
			continue
		}
		if !strings.Contains(got, tt.want) {
			t.Fatalf("delta = %q, want substring %q", got, tt.want)
		}
	}
}
