package intake

import "testing"

// Every flow, interrupted at every step, must end with an eviction and
// no outcome.
func TestCancelFromAnyState(t *testing.T) {
	flows := []struct {
		name   string
		start  func(r *Registry)
		inputs []string
	}{
		{"meal", func(r *Registry) { r.StartMeal(9) },
			[]string{"Monday", "Lunch", "13:00", "rice", "Custom"}},
		{"progress", func(r *Registry) { r.StartProgress(9) },
			[]string{"80", "70", "100"}},
		{"settings", func(r *Registry) { r.StartSettings(9) },
			[]string{"Sunday"}},
		{"edit", func(r *Registry) { r.StartEdit(9, sampleMeals()) },
			[]string{"1", "Time"}},
		{"copy", func(r *Registry) { r.StartCopy(9, sampleMeals()) },
			[]string{"1", "Tuesday"}},
	}

	for _, f := range flows {
		// Cancel after 0..n of the flow's inputs.
		for steps := 0; steps <= len(f.inputs); steps++ {
			r := NewRegistry()
			f.start(r)
			if steps > 0 {
				feed(t, r, 9, f.inputs[:steps]...)
			}
			eff, ok := r.Input(9, "/cancel")
			if !ok || !eff.Cancelled || !eff.Done {
				t.Fatalf("%s step %d: cancel not honoured: %+v", f.name, steps, eff)
			}
			if eff.Outcome != nil {
				t.Fatalf("%s step %d: cancel leaked an outcome: %+v", f.name, steps, eff.Outcome)
			}
			if r.Active(9) {
				t.Fatalf("%s step %d: session survived cancel", f.name, steps)
			}
		}
	}
}

func TestCancelWithoutSession(t *testing.T) {
	r := NewRegistry()
	if _, ok := r.Cancel(9); ok {
		t.Fatal("cancel with no session must report false")
	}
	if _, ok := r.Input(9, "hello"); ok {
		t.Fatal("input with no session must report false")
	}
}

func TestStartingNewFlowAbandonsOldSession(t *testing.T) {
	r := NewRegistry()
	r.StartMeal(9)
	feed(t, r, 9, "Monday", "Lunch")

	// A new flow replaces the half-finished one outright.
	r.StartProgress(9)
	eff := feed(t, r, 9, "skip", "skip", "skip", "skip")
	if eff.Outcome == nil || eff.Outcome.Progress == nil || len(eff.Outcome.Meals) != 0 {
		t.Fatalf("expected a pure progress outcome, got %+v", eff.Outcome)
	}
}

func TestSessionsAreIsolatedPerUser(t *testing.T) {
	r := NewRegistry()
	r.StartMeal(1)
	r.StartProgress(2)

	feed(t, r, 1, "Monday", "Lunch", "13:00", "rice")
	eff := feed(t, r, 2, "80", "skip", "skip", "skip")
	if eff.Outcome == nil || eff.Outcome.Progress == nil || eff.Outcome.Progress.Owner != 2 {
		t.Fatalf("user 2 outcome: %+v", eff.Outcome)
	}

	eff = feed(t, r, 1, "1 hour before")
	if eff.Outcome == nil || len(eff.Outcome.Meals) != 1 || eff.Outcome.Meals[0].Owner != 1 {
		t.Fatalf("user 1 outcome: %+v", eff.Outcome)
	}
}
