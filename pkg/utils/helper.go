package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseInt converts string to int with default value
func ParseInt(value string, defaultValue int) int {
	if value == "" {
		return defaultValue
	}

	result, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	if result < 1 {
		return defaultValue
	}

	return result
}

// FormatCurrency renders an amount as "JOD 1,234.50".
func FormatCurrency(amount float64) string {
	negative := amount < 0
	if negative {
		amount = -amount
	}
	raw := strconv.FormatFloat(amount, 'f', 2, 64)
	whole, frac, _ := strings.Cut(raw, ".")

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}

	sign := ""
	if negative {
		sign = "-"
	}
	return fmt.Sprintf("JOD %s%s.%s", sign, b.String(), frac)
}

// FormatEstimatedTime renders fractional hours, e.g. 1.5 -> "Est. Time: 1 hr 30 mins".
func FormatEstimatedTime(hours float64) string {
	totalMinutes := int(hours * 60)
	wholeHours := totalMinutes / 60
	remaining := totalMinutes % 60

	var s string
	switch {
	case wholeHours > 0:
		s = fmt.Sprintf("%d hr", wholeHours)
		if wholeHours > 1 {
			s += "s"
		}
		if remaining > 0 {
			s += fmt.Sprintf(" %d mins", remaining)
		}
	case remaining > 0:
		s = fmt.Sprintf("%d mins", remaining)
	default:
		s = "less than 1 hr"
	}
	return "Est. Time: " + s
}

// FormatRelativeTime renders t relative to now for chat and notification lists.
func FormatRelativeTime(t, now time.Time) string {
	diff := now.Sub(t)
	switch {
	case diff < time.Minute:
		return "Just now"
	case diff < time.Hour:
		return fmt.Sprintf("%d mins ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return t.Format("3:04 PM")
	case diff < 48*time.Hour:
		return "Yesterday"
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%d days ago", int(diff.Hours()/24))
	default:
		return t.Format("Jan 2, 2006")
	}
}
