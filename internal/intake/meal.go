package intake

import (
	"fmt"
	"strings"

	"dietbot/internal/storage"
)

var mealNameKeyboard = [][]string{
	{"Breakfast", "Morning snack"},
	{"Lunch", "Afternoon snack"},
	{"Dinner"},
}

// mealDaysState: waiting for a weekday name or a group shortcut.
type mealDaysState struct{}

func (mealDaysState) advance(in string) (state, Effect) {
	days, ok := parseDaySelection(in)
	if !ok {
		return mealDaysState{}, prompt("Please pick a day from the list.", dayKeyboard...)
	}
	return mealNameState{days: days},
		prompt("🍽 Which meal is it?\n(You can also type a custom name)", mealNameKeyboard...)
}

type mealNameState struct {
	days []storage.Weekday
}

func (s mealNameState) advance(in string) (state, Effect) {
	name := strings.TrimSpace(in)
	if name == "" {
		return s, prompt("Please send the meal name.", mealNameKeyboard...)
	}
	return mealTimeState{days: s.days, name: name},
		prompt("⏰ At what time do you eat?\n(HH:MM, e.g. 13:00)")
}

type mealTimeState struct {
	days []storage.Weekday
	name string
}

func (s mealTimeState) advance(in string) (state, Effect) {
	t, err := storage.ParseTimeOfDay(in)
	if err != nil {
		return s, prompt("❌ Invalid format. Send the time as HH:MM (e.g. 13:00)")
	}
	return mealRecipeState{days: s.days, name: s.name, time: t.String()},
		prompt("🥘 What do you need to prepare?\nDescribe the dish and/or a short recipe.")
}

type mealRecipeState struct {
	days []storage.Weekday
	name string
	time string
}

func (s mealRecipeState) advance(in string) (state, Effect) {
	recipe := strings.TrimSpace(in)
	if recipe == "" {
		return s, prompt("Please describe the dish.")
	}
	return mealLeadState{days: s.days, name: s.name, time: s.time, recipe: recipe},
		prompt("🔔 How early do you want the reminder?", leadKeyboard()...)
}

type mealLeadState struct {
	days   []storage.Weekday
	name   string
	time   string
	recipe string
}

func (s mealLeadState) advance(in string) (state, Effect) {
	minutes, custom, ok := parseLeadChoice(in)
	if !ok {
		return s, prompt("Please pick an option from the list.", leadKeyboard()...)
	}
	if custom {
		return mealCustomLeadState(s),
			prompt(fmt.Sprintf("⌨️ How many minutes before the meal? (%d-%d)",
				storage.LeadMinMinutes, storage.LeadMaxMinutes))
	}
	return nil, s.complete(minutes)
}

// mealCustomLeadState has the same accumulated record as mealLeadState
// but only accepts an explicit minute count.
type mealCustomLeadState mealLeadState

func (s mealCustomLeadState) advance(in string) (state, Effect) {
	minutes, err := parseCustomLead(in)
	if err != nil {
		return s, prompt(fmt.Sprintf("❌ %v. Try again.", err))
	}
	return nil, mealLeadState(s).complete(minutes)
}

func (s mealLeadState) complete(leadMinutes int) Effect {
	rules := make([]storage.MealRule, 0, len(s.days))
	for _, d := range s.days {
		rules = append(rules, storage.MealRule{
			Day:         d,
			Name:        s.name,
			Time:        s.time,
			Recipe:      s.recipe,
			LeadMinutes: leadMinutes,
		})
	}

	var b strings.Builder
	b.WriteString("✅ *Meal added!*\n\n📅 ")
	for i, d := range s.days {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(d.String())
	}
	fmt.Fprintf(&b, "\n🍽 %s at %s\n🥘 %s\n🔔 Reminder: %s", s.name, s.time, s.recipe, leadLabel(leadMinutes))

	return Effect{Prompt: b.String(), Done: true, Outcome: &Outcome{Meals: rules}}
}

// mealChoiceList renders a 1-based selection list shared by the edit and
// copy flows.
func mealChoiceList(meals []storage.MealRule) string {
	var b strings.Builder
	for i, m := range meals {
		fmt.Fprintf(&b, "%d. %s %s — %s\n", i+1, m.Day, m.Time, m.Name)
	}
	return b.String()
}
