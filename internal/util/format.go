package util

import (
	"fmt"
	"math"
	"time"
)

// FormatNumber formats an int64 with K/M suffix for readability.
// Examples: 500 -> "500", 1500 -> "1.5K", 1500000 -> "1.5M"
func FormatNumber(n int64) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	if n < 1000000 {
		return fmt.Sprintf("%.1fK", float64(n)/1000)
	}
	return fmt.Sprintf("%.1fM", float64(n)/1000000)
}

// FormatPercent renders a proportion as a percentage with two decimals.
// Examples: 0.0255 -> "2.55%", -0.1 -> "-10.00%"
func FormatPercent(p float64) string {
	return fmt.Sprintf("%.2f%%", p*100)
}

// FormatPValue keeps tiny p-values readable: anything below 1e-4 is shown in
// scientific notation.
func FormatPValue(p float64) string {
	if p != 0 && math.Abs(p) < 1e-4 {
		return fmt.Sprintf("%.2e", p)
	}
	return fmt.Sprintf("%.4f", p)
}

// FormatSigned prints a float with an explicit sign.
func FormatSigned(f float64, decimals int) string {
	return fmt.Sprintf("%+.*f", decimals, f)
}

// FormatDateTime formats a time in the local zone as 2006-01-02 15:04.
func FormatDateTime(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04")
}
