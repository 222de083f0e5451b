package intake

import (
	"fmt"
	"strings"

	"dietbot/internal/storage"
)

// Copy flow: pick a source meal, toggle target days in and out of a
// pending set across any number of messages, then confirm once with
// "done". Confirming an empty set persists nothing.

type copySelectState struct {
	meals []storage.MealRule
}

func (s copySelectState) advance(in string) (state, Effect) {
	m, ok := chooseMeal(s.meals, in)
	if !ok {
		return s, prompt("Reply with one of the listed numbers.\n\n" + mealChoiceList(s.meals))
	}
	st := copyDaysState{source: m, selected: map[storage.Weekday]bool{}}
	return st, st.render(fmt.Sprintf("📋 Copying %s %s — %s.\nToggle the target days, then send \"done\".", m.Day, m.Time, m.Name))
}

type copyDaysState struct {
	source   storage.MealRule
	selected map[storage.Weekday]bool
}

var copyDaysKeyboard = [][]string{
	{"Monday", "Tuesday"},
	{"Wednesday", "Thursday"},
	{"Friday", "Saturday"},
	{"Sunday"},
	{"Done"},
}

func (s copyDaysState) advance(in string) (state, Effect) {
	if isDone(in) {
		return nil, s.confirm()
	}
	day, ok := parseWeekday(in)
	if !ok {
		return s, s.render("Toggle a day from the list, or send \"done\".")
	}
	if s.selected[day] {
		delete(s.selected, day)
	} else {
		s.selected[day] = true
	}
	return s, s.render("")
}

func (s copyDaysState) render(lead string) Effect {
	var b strings.Builder
	if lead != "" {
		b.WriteString(lead)
		b.WriteString("\n\n")
	}
	b.WriteString("Selected: ")
	b.WriteString(s.selectionLabel())
	return prompt(b.String(), copyDaysKeyboard...)
}

func (s copyDaysState) selectionLabel() string {
	var days []string
	for d := storage.Monday; d <= storage.Sunday; d++ {
		if s.selected[d] {
			days = append(days, d.String())
		}
	}
	if len(days) == 0 {
		return "none"
	}
	return strings.Join(days, ", ")
}

func (s copyDaysState) confirm() Effect {
	if len(s.selected) == 0 {
		return Effect{
			Prompt:  "Nothing selected — no meals copied.",
			Done:    true,
			Outcome: &Outcome{NothingSelected: true},
		}
	}

	var rules []storage.MealRule
	for d := storage.Monday; d <= storage.Sunday; d++ {
		if !s.selected[d] {
			continue
		}
		rules = append(rules, storage.MealRule{
			Day:         d,
			Name:        s.source.Name,
			Time:        s.source.Time,
			Recipe:      s.source.Recipe,
			LeadMinutes: s.source.LeadMinutes,
		})
	}
	return Effect{
		Prompt:  fmt.Sprintf("✅ Copied to %s!", s.selectionLabel()),
		Done:    true,
		Outcome: &Outcome{Meals: rules},
	}
}
