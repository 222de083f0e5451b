package router

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"dietbot/internal/intake"
	"dietbot/internal/storage"
	kit "dietbot/internal/transport"
	"dietbot/pkg/logx"
	"dietbot/pkg/tgui"
)

// Clock supplies "now" for /today and progress dates. Tests inject a
// fixed clock.
type Clock func() time.Time

// Router turns incoming updates into store operations and replies.
// Commands are dispatched directly; non-command text is fed to the
// sender's active intake session.
type Router struct {
	log     logx.Logger
	store   storage.Store
	adapter kit.Adapter
	reg     *intake.Registry
	clock   Clock
}

func New(log logx.Logger, store storage.Store, adapter kit.Adapter, reg *intake.Registry) *Router {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Router{
		log:     log,
		store:   store,
		adapter: adapter,
		reg:     reg,
		clock:   time.Now,
	}
}

// SetClock overrides the time source. Call before serving updates.
func (r *Router) SetClock(c Clock) {
	if c != nil {
		r.clock = c
	}
}

// Commands lists the bot command menu in display order.
func (r *Router) Commands() []kit.BotCommand {
	return []kit.BotCommand{
		{Command: "addmeal", Description: "add a meal to the weekly plan"},
		{Command: "meals", Description: "show the weekly meal plan"},
		{Command: "today", Description: "show today's meals"},
		{Command: "editmeal", Description: "edit a meal"},
		{Command: "copymeal", Description: "copy a meal to other days"},
		{Command: "delmeal", Description: "delete a meal"},
		{Command: "progress", Description: "log weight and measurements"},
		{Command: "history", Description: "show recent progress entries"},
		{Command: "settings", Description: "check-in and grocery settings"},
		{Command: "cancel", Description: "abort the current dialog"},
		{Command: "help", Description: "show help"},
	}
}

// HandleUpdate processes one incoming update. Errors are handled
// internally (logged, user notified); the method never propagates them
// so one bad update cannot stall the pump.
func (r *Router) HandleUpdate(ctx context.Context, up kit.Update) {
	switch up.Kind {
	case kit.UpdateMessage:
		if up.Message != nil {
			r.handleMessage(ctx, up.Message)
		}
	case kit.UpdateCallback:
		if up.Callback != nil {
			r.handleCallback(ctx, up.Callback)
		}
	}
}

func (r *Router) handleMessage(ctx context.Context, m *kit.Message) {
	text := strings.TrimSpace(m.Text)
	if strings.HasPrefix(text, "/") {
		cmd, _, _ := strings.Cut(text[1:], " ")
		// Group chats append the bot mention: "/meals@dietbot".
		cmd, _, _ = strings.Cut(cmd, "@")
		r.handleCommand(ctx, m, strings.ToLower(cmd))
		return
	}

	eff, ok := r.reg.Input(m.FromID, text)
	if !ok {
		r.reply(ctx, m.ChatID, "I didn't get that. Try /help to see what I can do.", nil)
		return
	}
	r.applyEffect(ctx, m.ChatID, m.FromID, eff)
}

func (r *Router) handleCommand(ctx context.Context, m *kit.Message, cmd string) {
	chat, owner := m.ChatID, m.FromID

	switch cmd {
	case "start":
		r.reply(ctx, chat, welcomeText(), &kit.SendOptions{ParseMode: "Markdown", RemoveKeyboard: true})
	case "help":
		r.reply(ctx, chat, helpText(), &kit.SendOptions{ParseMode: "Markdown", RemoveKeyboard: true})
	case "addmeal":
		r.applyEffect(ctx, chat, owner, r.reg.StartMeal(owner))
	case "progress":
		r.applyEffect(ctx, chat, owner, r.reg.StartProgress(owner))
	case "settings":
		r.applyEffect(ctx, chat, owner, r.reg.StartSettings(owner))
	case "editmeal":
		meals, err := r.store.ListMeals(ctx, owner)
		if err != nil {
			r.storeFailure(ctx, chat, "list meals", err)
			return
		}
		r.applyEffect(ctx, chat, owner, r.reg.StartEdit(owner, meals))
	case "copymeal":
		meals, err := r.store.ListMeals(ctx, owner)
		if err != nil {
			r.storeFailure(ctx, chat, "list meals", err)
			return
		}
		r.applyEffect(ctx, chat, owner, r.reg.StartCopy(owner, meals))
	case "meals":
		meals, err := r.store.ListMeals(ctx, owner)
		if err != nil {
			r.storeFailure(ctx, chat, "list meals", err)
			return
		}
		r.reply(ctx, chat, weeklyPlan(meals), &kit.SendOptions{ParseMode: "Markdown", RemoveKeyboard: true})
	case "today":
		day := storage.FromTime(r.clock().Weekday())
		meals, err := r.store.MealsForOwnerDay(ctx, owner, day)
		if err != nil {
			r.storeFailure(ctx, chat, "list today", err)
			return
		}
		r.reply(ctx, chat, todayList(day, meals), &kit.SendOptions{ParseMode: "Markdown", RemoveKeyboard: true})
	case "delmeal":
		r.sendDeleteKeyboard(ctx, chat, owner)
	case "history":
		entries, err := r.store.RecentProgress(ctx, owner, historyLimit)
		if err != nil {
			r.storeFailure(ctx, chat, "list history", err)
			return
		}
		r.reply(ctx, chat, historyTable(entries), &kit.SendOptions{ParseMode: "Markdown", RemoveKeyboard: true})
	case "cancel":
		eff, ok := r.reg.Cancel(owner)
		if !ok {
			r.reply(ctx, chat, "Nothing to cancel.", &kit.SendOptions{RemoveKeyboard: true})
			return
		}
		r.applyEffect(ctx, chat, owner, eff)
	default:
		r.reply(ctx, chat, "Unknown command. Try /help.", nil)
	}
}

// sendDeleteKeyboard offers every owned meal as an inline button whose
// callback payload is the record id.
func (r *Router) sendDeleteKeyboard(ctx context.Context, chat, owner int64) {
	meals, err := r.store.ListMeals(ctx, owner)
	if err != nil {
		r.storeFailure(ctx, chat, "list meals", err)
		return
	}
	if len(meals) == 0 {
		r.reply(ctx, chat, "You have no meals to delete.", nil)
		return
	}

	kb := tgui.NewInline()
	for _, m := range meals {
		data, err := tgui.Data(actionDelete, strconv.FormatInt(m.ID, 10))
		if err != nil {
			r.log.Warn("callback data skipped", logx.Int64("meal_id", m.ID), logx.Err(err))
			continue
		}
		label := tgui.TruncRunes(m.Day.String()+" "+m.Time+" "+m.Name, 40)
		kb.Row(tgui.Btn("🗑 "+label, data))
	}
	r.reply(ctx, chat, "Which meal do you want to delete?", &kit.SendOptions{ReplyMarkup: kb.Markup()})
}

const actionDelete = "del"

func (r *Router) handleCallback(ctx context.Context, cb *kit.Callback) {
	action, payload := tgui.Split(cb.Data)
	if action != actionDelete {
		r.answer(ctx, cb.ID, "")
		return
	}
	id, err := strconv.ParseInt(payload, 10, 64)
	if err != nil {
		r.answer(ctx, cb.ID, "Broken button.")
		return
	}

	// The delete is owner-scoped; pressing a button from someone else's
	// keyboard (or a stale one) just reports nothing to delete.
	err = r.store.DeleteMeal(ctx, cb.FromID, id)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		r.answer(ctx, cb.ID, "That meal is already gone.")
	case err != nil:
		r.log.Error("delete meal", logx.Int64("owner", cb.FromID), logx.Int64("meal_id", id), logx.Err(err))
		r.answer(ctx, cb.ID, "Something went wrong.")
	default:
		r.answer(ctx, cb.ID, "Deleted.")
		ref := kit.MessageRef{ChatID: cb.ChatID, MessageID: cb.MessageID}
		if err := r.adapter.EditText(ctx, ref, "🗑 Meal deleted.", nil); err != nil {
			r.log.Warn("edit after delete", logx.Err(err))
		}
	}
}

// applyEffect sends the effect's prompt and persists its outcome.
func (r *Router) applyEffect(ctx context.Context, chat, owner int64, eff intake.Effect) {
	text := eff.Prompt
	if eff.Outcome != nil {
		extra, err := r.applyOutcome(ctx, owner, eff.Outcome)
		if err != nil {
			r.storeFailure(ctx, chat, "apply outcome", err)
			return
		}
		text += extra
	}
	if text == "" {
		return
	}

	opt := &kit.SendOptions{ParseMode: "Markdown"}
	if len(eff.Keyboard) > 0 {
		opt.ReplyMarkup = tgui.Reply(eff.Keyboard)
	} else {
		opt.RemoveKeyboard = true
	}
	r.reply(ctx, chat, text, opt)
}

// applyOutcome persists a completed flow's result and returns extra
// text to append to the confirmation (e.g. the weight delta).
func (r *Router) applyOutcome(ctx context.Context, owner int64, o *intake.Outcome) (string, error) {
	switch {
	case len(o.Meals) > 0:
		return "", r.store.AddMeals(ctx, o.Meals)

	case o.Progress != nil:
		// Read the previous entry before inserting so the delta compares
		// against the last completed check-in.
		prev, err := r.store.LatestProgress(ctx, owner)
		hadPrev := err == nil
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			return "", err
		}

		entry := *o.Progress
		entry.Date = r.clock().Format("2006-01-02")
		if _, err := r.store.AddProgress(ctx, entry); err != nil {
			return "", err
		}
		if hadPrev {
			return weightDelta(prev.Weight, entry.Weight), nil
		}
		return "", nil

	case o.Settings != nil:
		return "", r.store.UpsertSettings(ctx, *o.Settings)

	case o.Edit != nil:
		err := r.store.UpdateMeal(ctx, owner, o.Edit.MealID, o.Edit.Update)
		if errors.Is(err, storage.ErrNotFound) {
			return "\n\nActually, that meal no longer exists.", nil
		}
		return "", err
	}
	return "", nil
}

func (r *Router) reply(ctx context.Context, chat int64, text string, opt *kit.SendOptions) {
	if _, err := r.adapter.SendText(ctx, kit.ChatTarget{ChatID: chat}, text, opt); err != nil {
		r.log.Warn("send reply", logx.Int64("chat", chat), logx.Err(err))
	}
}

func (r *Router) answer(ctx context.Context, callbackID, text string) {
	if err := r.adapter.AnswerCallback(ctx, callbackID, text); err != nil {
		r.log.Warn("answer callback", logx.Err(err))
	}
}

func (r *Router) storeFailure(ctx context.Context, chat int64, op string, err error) {
	r.log.Error(op, logx.Err(err))
	r.reply(ctx, chat, "⚠️ Something went wrong. Please try again.", nil)
}
