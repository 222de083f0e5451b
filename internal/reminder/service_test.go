package reminder

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"dietbot/internal/storage"
	kit "dietbot/internal/transport"
	logx "dietbot/pkg/logx"
)

type fakeStore struct {
	storage.Store // panic on anything the dispatcher should not call

	meals    map[storage.Weekday][]storage.MealRule
	checkins map[storage.Weekday][]storage.UserSettings
	grocery  []storage.UserSettings

	failMeals   bool
	failGrocery bool
}

func (f *fakeStore) MealsForDay(_ context.Context, day storage.Weekday) ([]storage.MealRule, error) {
	if f.failMeals {
		return nil, errors.New("store down")
	}
	return f.meals[day], nil
}

func (f *fakeStore) MealsForOwnerDay(_ context.Context, owner int64, day storage.Weekday) ([]storage.MealRule, error) {
	var out []storage.MealRule
	for _, m := range f.meals[day] {
		if m.Owner == owner {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeStore) SettingsForCheckinDay(_ context.Context, day storage.Weekday) ([]storage.UserSettings, error) {
	return f.checkins[day], nil
}

func (f *fakeStore) SettingsWithGrocery(_ context.Context) ([]storage.UserSettings, error) {
	if f.failGrocery {
		return nil, errors.New("store down")
	}
	return f.grocery, nil
}

type fakeNotifier struct {
	sent    []kit.Notification
	failFor int64 // enqueue error for this chat id
}

func (f *fakeNotifier) Enqueue(n kit.Notification) error {
	if f.failFor != 0 && n.Target.ChatID == f.failFor {
		return errors.New("recipient rejected")
	}
	f.sent = append(f.sent, n)
	return nil
}

func newTestService(st *fakeStore, n *fakeNotifier) *Service {
	return New(Config{
		Enabled:      true,
		PollInterval: time.Minute,
		MorningTime:  storage.TimeOfDay{Hour: 8},
		CheckinTime:  storage.TimeOfDay{Hour: 9},
	}, st, n, logx.Nop())
}

func TestTickFiresMatchingMeal(t *testing.T) {
	st := &fakeStore{meals: map[storage.Weekday][]storage.MealRule{
		storage.Monday: {
			{ID: 1, Owner: 10, Day: storage.Monday, Name: "Lunch", Time: "13:00", Recipe: "rice", LeadMinutes: 120},
			{ID: 2, Owner: 11, Day: storage.Monday, Name: "Dinner", Time: "20:00", Recipe: "fish", LeadMinutes: 60},
		},
	}}
	n := &fakeNotifier{}
	s := newTestService(st, n)

	if err := s.tick(context.Background(), monday(11, 0, 0)); err != nil {
		t.Fatalf("tick: %v", err)
	}
	if len(n.sent) != 1 {
		t.Fatalf("sent = %d, want 1", len(n.sent))
	}
	if n.sent[0].Target.ChatID != 10 || n.sent[0].Kind != "meal" {
		t.Fatalf("unexpected notification: %+v", n.sent[0])
	}
	if !strings.Contains(n.sent[0].Text, "Lunch") || !strings.Contains(n.sent[0].Text, "rice") {
		t.Fatalf("reminder text missing meal details: %q", n.sent[0].Text)
	}
}

func TestTickUsesSingleNowSnapshotPerRuleSet(t *testing.T) {
	// Two users with the same rule: both evaluated against the same instant,
	// one recipient's failure must not block the other.
	st := &fakeStore{meals: map[storage.Weekday][]storage.MealRule{
		storage.Monday: {
			{ID: 1, Owner: 10, Day: storage.Monday, Name: "Lunch", Time: "13:00", LeadMinutes: 120},
			{ID: 2, Owner: 11, Day: storage.Monday, Name: "Lunch", Time: "13:00", LeadMinutes: 120},
		},
	}}
	n := &fakeNotifier{failFor: 10}
	s := newTestService(st, n)

	if err := s.tick(context.Background(), monday(11, 0, 0)); err != nil {
		t.Fatalf("tick must not fail on delivery errors: %v", err)
	}
	if len(n.sent) != 1 || n.sent[0].Target.ChatID != 11 {
		t.Fatalf("expected delivery to continue past failing recipient, sent=%+v", n.sent)
	}
}

func TestTickStoreFailureAborts(t *testing.T) {
	st := &fakeStore{failMeals: true}
	n := &fakeNotifier{}
	s := newTestService(st, n)

	if err := s.tick(context.Background(), monday(11, 0, 0)); err == nil {
		t.Fatal("expected store failure to abort the tick")
	}
	if len(n.sent) != 0 {
		t.Fatalf("no notifications expected on aborted tick, got %d", len(n.sent))
	}
}

func TestTickWeeklyCheckin(t *testing.T) {
	st := &fakeStore{checkins: map[storage.Weekday][]storage.UserSettings{
		storage.Monday: {{Owner: 20, CheckinDay: storage.Monday}},
	}}
	n := &fakeNotifier{}
	s := newTestService(st, n)

	if err := s.tick(context.Background(), monday(9, 0, 0)); err != nil {
		t.Fatalf("tick: %v", err)
	}
	if len(n.sent) != 1 || n.sent[0].Kind != "checkin" {
		t.Fatalf("expected one check-in, sent=%+v", n.sent)
	}

	// Outside the check-in window: nothing.
	n.sent = nil
	if err := s.tick(context.Background(), monday(9, 1, 0)); err != nil {
		t.Fatalf("tick: %v", err)
	}
	if len(n.sent) != 0 {
		t.Fatalf("expected no check-in outside window, sent=%+v", n.sent)
	}
}

func TestTickGroceryListsTomorrow(t *testing.T) {
	gt := "18:00"
	st := &fakeStore{
		grocery: []storage.UserSettings{{Owner: 30, CheckinDay: storage.Monday, GroceryTime: &gt}},
		meals: map[storage.Weekday][]storage.MealRule{
			storage.Monday:  {{Owner: 30, Day: storage.Monday, Name: "Lunch", Time: "13:00", Recipe: "today food", LeadMinutes: 60}},
			storage.Tuesday: {{Owner: 30, Day: storage.Tuesday, Name: "Dinner", Time: "20:00", Recipe: "tomorrow food", LeadMinutes: 60}},
		},
	}
	n := &fakeNotifier{}
	s := newTestService(st, n)

	if err := s.tick(context.Background(), monday(18, 0, 0)); err != nil {
		t.Fatalf("tick: %v", err)
	}
	if len(n.sent) != 1 || n.sent[0].Kind != "grocery" {
		t.Fatalf("expected one grocery reminder, sent=%+v", n.sent)
	}
	if !strings.Contains(n.sent[0].Text, "tomorrow food") || strings.Contains(n.sent[0].Text, "today food") {
		t.Fatalf("grocery text must list tomorrow's meals only: %q", n.sent[0].Text)
	}
}

func TestTickSkipsMalformedGroceryTime(t *testing.T) {
	bad := "soon"
	st := &fakeStore{grocery: []storage.UserSettings{{Owner: 30, GroceryTime: &bad}}}
	n := &fakeNotifier{}
	s := newTestService(st, n)

	if err := s.tick(context.Background(), monday(18, 0, 0)); err != nil {
		t.Fatalf("malformed per-user data must not abort the tick: %v", err)
	}
	if len(n.sent) != 0 {
		t.Fatalf("expected no sends, got %+v", n.sent)
	}
}
