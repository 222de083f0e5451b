package intake

import (
	"sync"

	"dietbot/internal/storage"
)

// state is one node of a flow. advance consumes one user input and
// returns the next state plus the effect to apply. Terminal transitions
// return a nil state and an Effect with Done set.
//
// Each concrete state struct carries only the data that is legal at that
// point in the flow, so a half-filled record cannot outlive its flow.
type state interface {
	advance(input string) (state, Effect)
}

type session struct {
	owner int64
	st    state
}

// Registry maps user identity to the single active intake session.
// Starting a new flow implicitly abandons any prior incomplete session;
// sessions are evicted on completion and cancellation.
//
// Inputs for one user arrive strictly sequentially (the router consumes
// one update at a time), so the mutex only guards the map itself.
type Registry struct {
	mu       sync.Mutex
	sessions map[int64]*session
}

func NewRegistry() *Registry {
	return &Registry{sessions: map[int64]*session{}}
}

func (r *Registry) put(owner int64, st state) {
	r.mu.Lock()
	r.sessions[owner] = &session{owner: owner, st: st}
	r.mu.Unlock()
}

func (r *Registry) evict(owner int64) {
	r.mu.Lock()
	delete(r.sessions, owner)
	r.mu.Unlock()
}

// Active reports whether the user has an in-progress session.
func (r *Registry) Active(owner int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.sessions[owner]
	return ok
}

// StartMeal begins the meal-definition flow.
func (r *Registry) StartMeal(owner int64) Effect {
	r.put(owner, mealDaysState{})
	return prompt("📅 Which day of the week?", dayKeyboard...)
}

// StartProgress begins the progress-logging flow.
func (r *Registry) StartProgress(owner int64) Effect {
	r.put(owner, progressWeightState{})
	return prompt("📊 Let's log your progress!\n\n⚖️ What's your weight today? (kg, e.g. 75.5)\n\nSend \"skip\" to skip a measurement, /cancel to abort.")
}

// StartSettings begins the settings flow.
func (r *Registry) StartSettings(owner int64) Effect {
	r.put(owner, settingsDayState{})
	return prompt("⚙️ Weekly check-in settings\n\nOn which day should I ask for your weight and measurements?", singleDayKeyboard...)
}

// StartEdit begins the edit flow over the user's own meals.
// The caller passes the owner's current rules; selection is validated
// against that snapshot, so a guessed id can never reach the store.
func (r *Registry) StartEdit(owner int64, meals []storage.MealRule) Effect {
	if len(meals) == 0 {
		return Effect{Prompt: "You have no meals to edit.", Done: true}
	}
	r.put(owner, editSelectState{meals: meals})
	return prompt("✏️ Which meal do you want to edit?\n\n"+mealChoiceList(meals)+"\nReply with a number.")
}

// StartCopy begins the copy-to-days flow.
func (r *Registry) StartCopy(owner int64, meals []storage.MealRule) Effect {
	if len(meals) == 0 {
		return Effect{Prompt: "You have no meals to copy.", Done: true}
	}
	r.put(owner, copySelectState{meals: meals})
	return prompt("📋 Which meal do you want to copy to other days?\n\n"+mealChoiceList(meals)+"\nReply with a number.")
}

// Cancel aborts any active session, persisting nothing.
func (r *Registry) Cancel(owner int64) (Effect, bool) {
	r.mu.Lock()
	_, ok := r.sessions[owner]
	delete(r.sessions, owner)
	r.mu.Unlock()
	if !ok {
		return Effect{}, false
	}
	return cancelledEffect(), true
}

func cancelledEffect() Effect {
	return Effect{Prompt: "❌ Cancelled.", Done: true, Cancelled: true}
}

// Input feeds one user message to the active session. The bool is false
// when the user has no session. The cancel token short-circuits from any
// state; a terminal effect evicts the session and carries the outcome
// stamped with the session's owner.
func (r *Registry) Input(owner int64, text string) (Effect, bool) {
	r.mu.Lock()
	s := r.sessions[owner]
	r.mu.Unlock()
	if s == nil {
		return Effect{}, false
	}

	if isCancel(text) {
		r.evict(owner)
		return cancelledEffect(), true
	}

	next, eff := s.st.advance(text)
	if eff.Done {
		r.evict(owner)
		stampOwner(eff.Outcome, owner)
	} else {
		s.st = next
	}
	return eff, true
}

func stampOwner(o *Outcome, owner int64) {
	if o == nil {
		return
	}
	for i := range o.Meals {
		o.Meals[i].Owner = owner
	}
	if o.Progress != nil {
		o.Progress.Owner = owner
	}
	if o.Settings != nil {
		o.Settings.Owner = owner
	}
}
