package router

import (
	"fmt"
	"strings"

	"dietbot/internal/storage"
)

// historyLimit caps the /history table at the most recent entries.
const historyLimit = 12

func welcomeText() string {
	return "👋 Hi! I'm your diet assistant.\n\n" +
		"I remind you about your planned meals, collect your weekly " +
		"measurements and can tell you what to buy for tomorrow.\n\n" +
		"Start with /addmeal to plan your first meal, or /help for the full list."
}

func helpText() string {
	return strings.Join([]string{
		"*Meal plan*",
		"/addmeal — add a meal to the weekly plan",
		"/meals — show the weekly plan",
		"/today — show today's meals",
		"/editmeal — edit a meal",
		"/copymeal — copy a meal to other days",
		"/delmeal — delete a meal",
		"",
		"*Progress*",
		"/progress — log weight and measurements",
		"/history — recent entries",
		"",
		"*Other*",
		"/settings — check-in day and grocery reminder",
		"/cancel — abort the current dialog",
	}, "\n")
}

// weeklyPlan renders all meals grouped by day in week order.
func weeklyPlan(meals []storage.MealRule) string {
	if len(meals) == 0 {
		return "Your meal plan is empty. Add a meal with /addmeal."
	}

	byDay := map[storage.Weekday][]storage.MealRule{}
	for _, m := range meals {
		byDay[m.Day] = append(byDay[m.Day], m)
	}

	var b strings.Builder
	b.WriteString("🗓 *Your weekly meal plan*\n")
	for d := storage.Monday; d <= storage.Sunday; d++ {
		day := byDay[d]
		if len(day) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n*%s*\n", d)
		for _, m := range day {
			fmt.Fprintf(&b, "  %s — %s\n", m.Time, m.Name)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func todayList(day storage.Weekday, meals []storage.MealRule) string {
	if len(meals) == 0 {
		return fmt.Sprintf("No meals planned for %s. Add one with /addmeal.", day)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "🍽 *Today (%s)*\n\n", day)
	for _, m := range meals {
		fmt.Fprintf(&b, "*%s* — %s\n%s\n\n", m.Time, m.Name, m.Recipe)
	}
	return strings.TrimRight(b.String(), "\n")
}

// historyTable renders recent progress entries as an aligned monospace
// block, newest first.
func historyTable(entries []storage.ProgressEntry) string {
	if len(entries) == 0 {
		return "No progress logged yet. Start with /progress."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "📊 *Last %d entries*\n```\n", len(entries))
	fmt.Fprintf(&b, "%-10s %6s %6s %6s %6s\n", "Date", "Wt", "Waist", "Hips", "Chest")
	for _, e := range entries {
		fmt.Fprintf(&b, "%-10s %6s %6s %6s %6s\n",
			e.Date, cell(e.Weight), cell(e.Waist), cell(e.Hips), cell(e.Chest))
	}
	b.WriteString("```")
	return b.String()
}

func cell(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f", *v)
}

// weightDelta renders the change against the previous entry. Either
// weight missing means no comparison is possible.
func weightDelta(prev, cur *float64) string {
	if prev == nil || cur == nil {
		return ""
	}
	diff := *cur - *prev
	marker := "➡️"
	switch {
	case diff < 0:
		marker = "📉"
	case diff > 0:
		marker = "📈"
	}
	return fmt.Sprintf("\n\n%s %+.1f kg since last time", marker, diff)
}
