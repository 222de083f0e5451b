package intake

import "dietbot/internal/storage"

// The progress flow asks for four measurements in a fixed order. Each
// state accepts a decimal (comma or period separator) or the skip token,
// which stores nil for that field.

type progressWeightState struct{}

func (progressWeightState) advance(in string) (state, Effect) {
	v, eff, ok := measurement(in, "⚖️ Enter a valid number (e.g. 75.5), or \"skip\"")
	if !ok {
		return progressWeightState{}, eff
	}
	return progressWaistState{weight: v}, prompt("📏 Waist circumference? (cm, or \"skip\")")
}

type progressWaistState struct {
	weight *float64
}

func (s progressWaistState) advance(in string) (state, Effect) {
	v, eff, ok := measurement(in, "📏 Enter a valid number (e.g. 85), or \"skip\"")
	if !ok {
		return s, eff
	}
	return progressHipsState{weight: s.weight, waist: v}, prompt("📏 Hip circumference? (cm, or \"skip\")")
}

type progressHipsState struct {
	weight *float64
	waist  *float64
}

func (s progressHipsState) advance(in string) (state, Effect) {
	v, eff, ok := measurement(in, "📏 Enter a valid number (e.g. 95), or \"skip\"")
	if !ok {
		return s, eff
	}
	return progressChestState{weight: s.weight, waist: s.waist, hips: v},
		prompt("📏 Chest circumference? (cm, or \"skip\")")
}

type progressChestState struct {
	weight *float64
	waist  *float64
	hips   *float64
}

func (s progressChestState) advance(in string) (state, Effect) {
	v, eff, ok := measurement(in, "📏 Enter a valid number (e.g. 100), or \"skip\"")
	if !ok {
		return s, eff
	}
	entry := &storage.ProgressEntry{Weight: s.weight, Waist: s.waist, Hips: s.hips, Chest: v}
	return nil, Effect{
		Prompt:  "✅ *Progress logged!*",
		Done:    true,
		Outcome: &Outcome{Progress: entry},
	}
}

// measurement parses one progress input. ok=false means re-prompt with
// the given error text; a skipped field returns (nil, _, true).
func measurement(in, invalidPrompt string) (*float64, Effect, bool) {
	if isSkip(in) {
		return nil, Effect{}, true
	}
	v, err := parseDecimal(in)
	if err != nil || v <= 0 {
		return nil, prompt("❌ " + invalidPrompt), false
	}
	return &v, Effect{}, true
}
