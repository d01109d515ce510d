package util

import (
	"fmt"
)

// FormatNumber formats a token count with a K/M/B suffix.
func FormatNumber(n int) string {
	switch {
	case n >= 1_000_000_000:
		return fmt.Sprintf("%.1fB", float64(n)/1_000_000_000)
	case n >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(n)/1_000_000)
	case n >= 1_000:
		return fmt.Sprintf("%.1fK", float64(n)/1_000)
	default:
		return fmt.Sprintf("%d", n)
	}
}

// FormatCurrency formats a dollar amount with two decimal places.
func FormatCurrency(amount float64) string {
	return fmt.Sprintf("$%.2f", amount)
}

// FormatBurnRate formats a tokens-per-minute rate. Rates of a million or
// more keep one decimal ("1.2M/min"), thousands round to whole K
// ("42K/min"), anything below is printed raw ("999/min").
func FormatBurnRate(tokensPerMinute int) string {
	switch {
	case tokensPerMinute >= 1_000_000:
		return fmt.Sprintf("%.1fM/min", float64(tokensPerMinute)/1_000_000)
	case tokensPerMinute >= 1_000:
		return fmt.Sprintf("%.0fK/min", float64(tokensPerMinute)/1_000)
	default:
		return fmt.Sprintf("%d/min", tokensPerMinute)
	}
}

// FormatRemaining formats remaining minutes as "2h 15m", or "45m" when
// under an hour.
func FormatRemaining(minutes int) string {
	if minutes > 60 {
		return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
	}
	return fmt.Sprintf("%dm", minutes)
}

// FormatTimeLeft formats the compact time-left estimate ("~2h15m", "~45m").
// Without a projection the estimate defaults to half an hour.
func FormatTimeLeft(minutes int) string {
	if minutes <= 0 {
		return "~30m"
	}
	if minutes > 60 {
		return fmt.Sprintf("~%dh%dm", minutes/60, minutes%60)
	}
	return fmt.Sprintf("~%dm", minutes)
}
