package intake

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"dietbot/internal/storage"
)

// Tokens are matched case-insensitively after trimming. The cancel token
// is also exposed as the /cancel command by the router.
const (
	skipToken   = "skip"
	cancelToken = "cancel"
	doneToken   = "done"
)

func norm(s string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "/")))
}

func isSkip(s string) bool   { return norm(s) == skipToken }
func isCancel(s string) bool { return norm(s) == cancelToken }
func isDone(s string) bool   { return norm(s) == doneToken }

// Weekday group shortcuts offered on the day keyboard.
const (
	groupWeekdays = "weekdays"
	groupEveryDay = "every day"
)

func parseWeekday(s string) (storage.Weekday, bool) {
	switch norm(s) {
	case "monday":
		return storage.Monday, true
	case "tuesday":
		return storage.Tuesday, true
	case "wednesday":
		return storage.Wednesday, true
	case "thursday":
		return storage.Thursday, true
	case "friday":
		return storage.Friday, true
	case "saturday":
		return storage.Saturday, true
	case "sunday":
		return storage.Sunday, true
	}
	return 0, false
}

// parseDaySelection accepts a single weekday name or a group shortcut and
// returns the set of target days in week order.
func parseDaySelection(s string) ([]storage.Weekday, bool) {
	if d, ok := parseWeekday(s); ok {
		return []storage.Weekday{d}, true
	}
	switch norm(s) {
	case groupWeekdays:
		return []storage.Weekday{storage.Monday, storage.Tuesday, storage.Wednesday, storage.Thursday, storage.Friday}, true
	case groupEveryDay:
		return []storage.Weekday{storage.Monday, storage.Tuesday, storage.Wednesday, storage.Thursday, storage.Friday, storage.Saturday, storage.Sunday}, true
	}
	return nil, false
}

// parseDecimal parses a measurement value, tolerating both comma and
// period as the decimal separator. Only finite values pass; ParseFloat
// also accepts "nan" and "inf" literals, which are no measurement.
func parseDecimal(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	return v, nil
}

// Lead-time preset menu. Keys are the button labels shown to the user.
const leadMorningLabel = "Morning of"
const leadCustomLabel = "Custom"

var leadPresets = []struct {
	Label   string
	Minutes int
}{
	{"15 min before", 15},
	{"30 min before", 30},
	{"1 hour before", 60},
	{"2 hours before", 120},
	{"3 hours before", 180},
}

// parseLeadChoice maps a preset menu reply to a lead-minutes value.
// custom=true means the user asked for a custom value.
func parseLeadChoice(s string) (minutes int, custom bool, ok bool) {
	n := norm(s)
	for _, p := range leadPresets {
		if n == strings.ToLower(p.Label) {
			return p.Minutes, false, true
		}
	}
	switch n {
	case strings.ToLower(leadMorningLabel):
		return storage.LeadSameDayMorning, false, true
	case strings.ToLower(leadCustomLabel):
		return 0, true, true
	}
	return 0, false, false
}

// parseCustomLead accepts an integer minute count within the allowed range.
func parseCustomLead(s string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid minute count %q", s)
	}
	if v < storage.LeadMinMinutes || v > storage.LeadMaxMinutes {
		return 0, fmt.Errorf("minutes must be between %d and %d", storage.LeadMinMinutes, storage.LeadMaxMinutes)
	}
	return v, nil
}

func leadLabel(minutes int) string {
	if minutes == storage.LeadSameDayMorning {
		return "the morning of"
	}
	if minutes%60 == 0 {
		h := minutes / 60
		if h == 1 {
			return "1 hour before"
		}
		return fmt.Sprintf("%d hours before", h)
	}
	return fmt.Sprintf("%d min before", minutes)
}
