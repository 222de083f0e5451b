package intake

import (
	"fmt"
	"strconv"
	"strings"

	"dietbot/internal/storage"
)

// Edit flow: pick one of your own meals, pick a field, send the new
// value. Selection indexes into the snapshot taken when the flow
// started, so the resulting update can only ever name an owned record.

type editSelectState struct {
	meals []storage.MealRule
}

func (s editSelectState) advance(in string) (state, Effect) {
	m, ok := chooseMeal(s.meals, in)
	if !ok {
		return s, prompt("Reply with one of the listed numbers.\n\n" + mealChoiceList(s.meals))
	}
	return editFieldState{meal: m},
		prompt(fmt.Sprintf("✏️ Editing %s %s — %s.\nWhich field?", m.Day, m.Time, m.Name), editFieldKeyboard...)
}

var editFieldKeyboard = [][]string{
	{"Name", "Time"},
	{"Recipe", "Reminder"},
}

type editField int

const (
	fieldName editField = iota
	fieldTime
	fieldRecipe
	fieldLead
)

type editFieldState struct {
	meal storage.MealRule
}

func (s editFieldState) advance(in string) (state, Effect) {
	var (
		f   editField
		ask string
	)
	switch norm(in) {
	case "name":
		f, ask = fieldName, "Send the new meal name."
	case "time":
		f, ask = fieldTime, "Send the new time as HH:MM (e.g. 13:00)."
	case "recipe":
		f, ask = fieldRecipe, "Send the new recipe text."
	case "reminder":
		f, ask = fieldLead, fmt.Sprintf("Send the new lead time in minutes (%d-%d).",
			storage.LeadMinMinutes, storage.LeadMaxMinutes)
	default:
		return s, prompt("Please pick a field from the list.", editFieldKeyboard...)
	}
	return editValueState{mealID: s.meal.ID, field: f}, prompt(ask)
}

// editValueState carries only the record id and the chosen field; the
// validation applied to the input depends on the field.
type editValueState struct {
	mealID int64
	field  editField
}

func (s editValueState) advance(in string) (state, Effect) {
	var upd storage.MealUpdate
	switch s.field {
	case fieldName:
		v := strings.TrimSpace(in)
		if v == "" {
			return s, prompt("Please send a non-empty name.")
		}
		upd.Name = &v
	case fieldTime:
		t, err := storage.ParseTimeOfDay(in)
		if err != nil {
			return s, prompt("❌ Invalid format. Send the time as HH:MM (e.g. 13:00).")
		}
		v := t.String()
		upd.Time = &v
	case fieldRecipe:
		v := strings.TrimSpace(in)
		if v == "" {
			return s, prompt("Please send a non-empty recipe.")
		}
		upd.Recipe = &v
	case fieldLead:
		v, err := parseCustomLead(in)
		if err != nil {
			return s, prompt(fmt.Sprintf("❌ %v. Try again.", err))
		}
		upd.LeadMinutes = &v
	}

	return nil, Effect{
		Prompt:  "✅ Meal updated!",
		Done:    true,
		Outcome: &Outcome{Edit: &EditOutcome{MealID: s.mealID, Update: upd}},
	}
}

// chooseMeal resolves a 1-based list reply against the flow's snapshot.
func chooseMeal(meals []storage.MealRule, in string) (storage.MealRule, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(in))
	if err != nil || n < 1 || n > len(meals) {
		return storage.MealRule{}, false
	}
	return meals[n-1], true
}
