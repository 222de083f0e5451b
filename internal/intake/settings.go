package intake

import (
	"fmt"

	"dietbot/internal/storage"
)

// The settings flow is the degenerate two-step case of the machine:
// pick a check-in day, then optionally a grocery reminder time.

type settingsDayState struct{}

func (settingsDayState) advance(in string) (state, Effect) {
	day, ok := parseWeekday(in)
	if !ok {
		return settingsDayState{}, prompt("Please pick a day from the list.", singleDayKeyboard...)
	}
	return settingsGroceryState{day: day},
		prompt("🛒 Do you want a daily grocery reminder with tomorrow's meals?\nSend a time as HH:MM (e.g. 18:00), or \"skip\" to disable it.")
}

type settingsGroceryState struct {
	day storage.Weekday
}

func (s settingsGroceryState) advance(in string) (state, Effect) {
	st := &storage.UserSettings{CheckinDay: s.day}
	summary := fmt.Sprintf("✅ Weekly check-in set for every *%s*!", s.day)

	if !isSkip(in) {
		t, err := storage.ParseTimeOfDay(in)
		if err != nil {
			return s, prompt("❌ Invalid format. Send the time as HH:MM (e.g. 18:00), or \"skip\".")
		}
		g := t.String()
		st.GroceryTime = &g
		summary += fmt.Sprintf("\n🛒 Grocery reminder every day at %s.", g)
	} else {
		summary += "\n🛒 Grocery reminder disabled."
	}

	return nil, Effect{Prompt: summary, Done: true, Outcome: &Outcome{Settings: st}}
}
