package outwriter

import (
	"fmt"
	"strconv"

	"github.com/huangsam/idescope/core/timeparse"
)

// FormatDuration renders microseconds as "[Nd ][HH:]MM:SS.ffff". Hours appear
// only when the value reaches an hour and days only when it reaches a day.
func FormatDuration(micros int64) string {
	sign := ""
	if micros < 0 {
		sign, micros = "-", -micros
	}
	days := micros / timeparse.Day
	hours := micros % timeparse.Day / timeparse.Hour
	minutes := micros % timeparse.Hour / timeparse.Minute
	seconds := micros % timeparse.Minute / timeparse.Second
	frac := micros % timeparse.Second / 100 // Tenths of a millisecond

	s := fmt.Sprintf("%02d:%02d.%04d", minutes, seconds, frac)
	if hours > 0 || days > 0 {
		s = fmt.Sprintf("%02d:%s", hours, s)
		if days > 0 {
			s = fmt.Sprintf("%dd %s", days, s)
		}
	}
	return sign + s
}

// FormatTimestamp renders microseconds with their unit.
func FormatTimestamp(micros int64) string {
	return fmt.Sprintf("%d µs", micros)
}

// FormatRate renders a sample rate in Hz.
func FormatRate(hz float64) string {
	return fmt.Sprintf("%.2f Hz", hz)
}

// formatTime renders an optional window time as a duration, or as raw
// microseconds when timestamps are requested. Missing values render as "-".
func formatTime(micros *int64, timestamps bool) string {
	switch {
	case micros == nil:
		return "-"
	case timestamps:
		return FormatTimestamp(*micros)
	default:
		return FormatDuration(*micros)
	}
}

// optionalInt renders an optional integer for CSV, empty when missing.
func optionalInt(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}

// optionalFloat renders an optional float for CSV, empty when missing.
func optionalFloat(v *float64, fmtFloat func(float64) string) string {
	if v == nil {
		return ""
	}
	return fmtFloat(*v)
}
