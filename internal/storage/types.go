package storage

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when a row does not exist or is not owned by
	// the requesting user. Callers surface it as a "nothing to do" outcome.
	ErrNotFound = errors.New("not found")
)

// Weekday is a day of week with Monday = 0, matching the stored
// day_of_week column. Go's time.Weekday starts on Sunday; convert in
// exactly one place (FromTime).
type Weekday int

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var weekdayNames = [7]string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

func (d Weekday) Valid() bool { return d >= Monday && d <= Sunday }

func (d Weekday) String() string {
	if !d.Valid() {
		return "?"
	}
	return weekdayNames[d]
}

// Next returns the following day, wrapping Sunday to Monday.
func (d Weekday) Next() Weekday { return (d + 1) % 7 }

// FromTime converts Go's Sunday-based weekday to the Monday-based one.
func FromTime(wd time.Weekday) Weekday {
	return Weekday((int(wd) + 6) % 7)
}

// TimeOfDay is a parsed "HH:MM" column value.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses a strict 24-hour "HH:MM" literal, the only time
// format accepted in stored rules and user input.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, ":")
	if len(parts) != 2 || len(parts[0]) != 2 || len(parts[1]) != 2 {
		return TimeOfDay{}, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return TimeOfDay{}, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return TimeOfDay{}, fmt.Errorf("invalid minute in %q", s)
	}
	return TimeOfDay{Hour: h, Minute: m}, nil
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// At pins the time of day onto the given date, in that date's location.
func (t TimeOfDay) At(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour, t.Minute, 0, 0, date.Location())
}

// LeadSameDayMorning is the sentinel lead time meaning "remind at the fixed
// morning time, regardless of the meal's own time".
const LeadSameDayMorning = -1

// Lead time bounds for explicit minute counts.
const (
	LeadMinMinutes = 1
	LeadMaxMinutes = 1440
)

// MealRule is one recurring meal on one day of the week. A meal that recurs
// on several days is stored as one row per day.
type MealRule struct {
	ID          int64
	Owner       int64
	Day         Weekday
	Name        string
	Time        string // "HH:MM", 24-hour
	Recipe      string
	LeadMinutes int // minutes before Time, or LeadSameDayMorning
}

// MealUpdate is a single-field patch applied to an owned MealRule.
// Exactly one pointer should be non-nil.
type MealUpdate struct {
	Name        *string
	Time        *string
	Recipe      *string
	LeadMinutes *int
}

// ProgressEntry is one body-measurement record. All measurements are
// optional; nil means the field was skipped.
type ProgressEntry struct {
	ID     int64
	Owner  int64
	Date   string // "YYYY-MM-DD"
	Weight *float64
	Waist  *float64
	Hips   *float64
	Chest  *float64
}

// UserSettings holds per-user reminder preferences. At most one row per
// owner. A nil GroceryTime disables the daily grocery reminder.
type UserSettings struct {
	Owner       int64
	CheckinDay  Weekday
	GroceryTime *string // "HH:MM"
}

// Store is the persistence API used by the intake flows, the command
// router and the reminder dispatcher. Every query is scoped to a single
// owner except the dispatcher scans, which cut across users by design.
type Store interface {
	AddMeals(ctx context.Context, rules []MealRule) error
	ListMeals(ctx context.Context, owner int64) ([]MealRule, error)
	GetMeal(ctx context.Context, owner, id int64) (MealRule, error)
	UpdateMeal(ctx context.Context, owner, id int64, upd MealUpdate) error
	DeleteMeal(ctx context.Context, owner, id int64) error
	MealsForDay(ctx context.Context, day Weekday) ([]MealRule, error)
	MealsForOwnerDay(ctx context.Context, owner int64, day Weekday) ([]MealRule, error)

	AddProgress(ctx context.Context, e ProgressEntry) (int64, error)
	LatestProgress(ctx context.Context, owner int64) (ProgressEntry, error)
	RecentProgress(ctx context.Context, owner int64, limit int) ([]ProgressEntry, error)

	UpsertSettings(ctx context.Context, s UserSettings) error
	GetSettings(ctx context.Context, owner int64) (UserSettings, error)
	SettingsForCheckinDay(ctx context.Context, day Weekday) ([]UserSettings, error)
	SettingsWithGrocery(ctx context.Context) ([]UserSettings, error)

	Close() error
}

// Config configures the SQLite store.
type Config struct {
	Path        string
	BusyTimeout time.Duration // 0 means default
}
