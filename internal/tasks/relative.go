package tasks

import (
	"fmt"
	"time"

	"github.com/nhle/tareas/internal/model"
)

// RelativeTime describes how long ago created was, as seen at now.
// Anything older than a day is shown as a date.
func RelativeTime(created, now time.Time) string {
	if created.IsZero() {
		return "-"
	}

	mins := int(now.Sub(created) / time.Minute)
	if mins < 60 {
		if mins <= 1 {
			return "1 min ago"
		}
		return fmt.Sprintf("%d min ago", mins)
	}

	hrs := mins / 60
	if hrs < 24 {
		if hrs <= 1 {
			return "1 hr ago"
		}
		return fmt.Sprintf("%d hrs ago", hrs)
	}

	return created.Format(model.DateLayout)
}
