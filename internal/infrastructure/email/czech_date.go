package email

import (
	"fmt"
	"time"
)

// genitive month forms used after a day number
var czechMonthGenitive = []string{
	"ledna", "února", "března", "dubna", "května", "června",
	"července", "srpna", "září", "října", "listopadu", "prosince",
}

// FormatCzechDate renders a date as "10. března 2026".
func FormatCzechDate(value time.Time) string {
	idx := int(value.Month()) - 1
	if idx < 0 || idx >= len(czechMonthGenitive) {
		return value.Format("2.1.2006")
	}
	return fmt.Sprintf("%d. %s %d", value.Day(), czechMonthGenitive[idx], value.Year())
}
