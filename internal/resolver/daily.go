package resolver

import (
	"github.com/kaidence/cc-statusline/internal/core/model"
)

// ResolveToday picks the daily total matching today's calendar date.
// Missing data reads as zero spend.
func ResolveToday(doc model.DailyDocument, today string) model.DailyTotal {
	for _, day := range doc.Daily {
		if day.Date == today {
			return day
		}
	}
	return model.DailyTotal{Date: today}
}
