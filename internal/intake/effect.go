package intake

import "dietbot/internal/storage"

// Effect is what a transition asks the caller to do: show a prompt
// (optionally with a reply keyboard) and, on a terminal transition,
// apply the outcome. The machine itself never touches the store.
type Effect struct {
	Prompt   string
	Keyboard [][]string // reply keyboard rows; nil means remove any keyboard

	Done      bool
	Cancelled bool
	Outcome   *Outcome // set when Done && !Cancelled
}

// Outcome is the validated result of a completed flow. Exactly one
// field group is populated, depending on which flow finished.
type Outcome struct {
	// Meals holds one rule per selected day (meal and copy flows).
	Meals []storage.MealRule

	// Progress holds the measurements collected by the progress flow.
	// Date and Owner are filled in by the caller.
	Progress *storage.ProgressEntry

	// Settings holds the check-in/grocery preferences (settings flow).
	Settings *storage.UserSettings

	// Edit is a single-field patch for an owned meal (edit flow).
	Edit *EditOutcome

	// NothingSelected marks a copy flow confirmed with an empty day set.
	NothingSelected bool
}

type EditOutcome struct {
	MealID int64
	Update storage.MealUpdate
}

func prompt(text string, kb ...[]string) Effect {
	return Effect{Prompt: text, Keyboard: kb}
}

var dayKeyboard = [][]string{
	{"Monday", "Tuesday"},
	{"Wednesday", "Thursday"},
	{"Friday", "Saturday"},
	{"Sunday"},
	{"Weekdays", "Every day"},
}

var singleDayKeyboard = [][]string{
	{"Monday", "Tuesday"},
	{"Wednesday", "Thursday"},
	{"Friday", "Saturday"},
	{"Sunday"},
}

func leadKeyboard() [][]string {
	rows := [][]string{}
	for i := 0; i < len(leadPresets); i += 2 {
		row := []string{leadPresets[i].Label}
		if i+1 < len(leadPresets) {
			row = append(row, leadPresets[i+1].Label)
		}
		rows = append(rows, row)
	}
	rows = append(rows, []string{leadMorningLabel, leadCustomLabel})
	return rows
}
