package reminder

import (
	"fmt"
	"strings"

	"dietbot/internal/storage"
)

func mealReminderText(r storage.MealRule) string {
	return fmt.Sprintf(
		"🔔 *Reminder: %s at %s!*\n\n🥘 To prepare:\n%s\n\n💪 Stick to the plan!",
		r.Name, r.Time, r.Recipe,
	)
}

func checkinText() string {
	return "📊 *It's weekly check-in day!*\n\n" +
		"How is it going? 💪\n" +
		"Use /progress to log today's weight and measurements!"
}

func groceryText(tomorrow []storage.MealRule) string {
	var b strings.Builder
	b.WriteString("🛒 *Grocery reminder!*\n\nTomorrow's meals:\n")
	if len(tomorrow) == 0 {
		b.WriteString("_nothing planned yet_")
		return b.String()
	}
	for _, m := range tomorrow {
		fmt.Fprintf(&b, "• %s *%s* — %s\n", m.Time, m.Name, m.Recipe)
	}
	b.WriteString("\nMake sure everything is in the fridge!")
	return b.String()
}
