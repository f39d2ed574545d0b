package tui

import (
	"fmt"
	"strconv"
	"time"
)

// truncateEnd shortens s to at most limit characters, appending an ellipsis
// if truncation occurs. Handles negative or tiny limits gracefully.
func truncateEnd(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	if limit <= 1 {
		return "…"
	}
	return string(r[:limit-1]) + "…"
}

// truncateMiddle keeps both ends of s, which is where URLs carry meaning.
func truncateMiddle(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	r := []rune(s)
	n := len(r)
	if n <= limit {
		return s
	}
	if limit <= 1 {
		return "…"
	}
	keep := limit - 1
	left := keep / 2
	right := keep - left
	if left <= 0 {
		return "…" + string(r[n-right:])
	}
	return string(r[:left]) + "…" + string(r[n-right:])
}

// formatCount groups digits in thousands: 1234567 -> 1,234,567.
func formatCount(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := n < 0
	if neg {
		s = s[1:]
	}
	out := make([]byte, 0, len(s)+len(s)/3)
	for i := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, s[i])
	}
	if neg {
		return "-" + string(out)
	}
	return string(out)
}

// formatRuntime renders a duration the way a film listing does: 1h 34m.
func formatRuntime(d time.Duration) string {
	if d <= 0 {
		return ""
	}
	h := int(d / time.Hour)
	m := int((d % time.Hour) / time.Minute)
	switch {
	case h == 0 && m == 0:
		return fmt.Sprintf("%ds", int(d/time.Second))
	case h == 0:
		return fmt.Sprintf("%dm", m)
	case m == 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dh %dm", h, m)
	}
}
