package intake

import "testing"

func TestProgressFlowAllSkipped(t *testing.T) {
	r := NewRegistry()
	r.StartProgress(7)

	eff := feed(t, r, 7, "skip", "skip", "skip", "skip")
	if !eff.Done || eff.Outcome == nil || eff.Outcome.Progress == nil {
		t.Fatalf("expected a progress outcome, got %+v", eff)
	}
	p := eff.Outcome.Progress
	if p.Weight != nil || p.Waist != nil || p.Hips != nil || p.Chest != nil {
		t.Fatalf("all fields must stay null: %+v", p)
	}
	if p.Owner != 7 {
		t.Fatalf("owner = %d, want 7", p.Owner)
	}
}

func TestProgressFlowValuesAndCommaDecimal(t *testing.T) {
	r := NewRegistry()
	r.StartProgress(1)

	eff := feed(t, r, 1, "82,4", "skip", "101", "98.5")
	p := eff.Outcome.Progress
	if p == nil {
		t.Fatalf("no progress outcome: %+v", eff)
	}
	if p.Weight == nil || *p.Weight != 82.4 {
		t.Fatalf("weight = %v", p.Weight)
	}
	if p.Waist != nil {
		t.Fatalf("waist must be null, got %v", *p.Waist)
	}
	if p.Hips == nil || *p.Hips != 101 || p.Chest == nil || *p.Chest != 98.5 {
		t.Fatalf("hips/chest = %v/%v", p.Hips, p.Chest)
	}
}

func TestProgressFlowInvalidNumberReprompts(t *testing.T) {
	r := NewRegistry()
	r.StartProgress(1)

	// ParseFloat also parses "nan"/"inf" literals; none of these may
	// advance the state or end up in a stored measurement.
	for _, bad := range []string{"heavy", "", "-3", "0", "nan", "NaN", "inf", "+Inf", "-inf"} {
		eff := feed(t, r, 1, bad)
		if eff.Done {
			t.Fatalf("weight %q must re-prompt: %+v", bad, eff)
		}
	}
	eff := feed(t, r, 1, "80", "skip", "skip", "skip")
	if eff.Outcome == nil || eff.Outcome.Progress == nil || *eff.Outcome.Progress.Weight != 80 {
		t.Fatalf("expected recovery, got %+v", eff)
	}
}
