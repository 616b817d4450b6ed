// Package timeparse converts user time expressions into integer microseconds.
package timeparse

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Errors returned by Parse.
var (
	ErrTimeFormat = errors.New("bad time string")
	ErrTimeType   = errors.New("unsupported time type")
)

// Microsecond multipliers.
const (
	Second = int64(1_000_000)
	Minute = 60 * Second
	Hour   = 60 * Minute
	Day    = 24 * Hour
)

// clockPattern matches "[Nd ][[H:]M:]S[.frac]"; minutes and hours may be empty, as in ":01".
var clockPattern = regexp.MustCompile(`^(?:(\d+)\s*d\s*)?(?:(?:(\d*):)?(\d*):)?(\d+(?:\.\d*)?|\.\d+)$`)

// daysPattern matches a bare day count such as "2d".
var daysPattern = regexp.MustCompile(`^(\d+)\s*d$`)

// Bound is a resolved time in microseconds. An invalid Bound means unbounded.
type Bound struct {
	Micros int64
	Valid  bool
}

// Unbounded is the zero Bound.
var Unbounded = Bound{}

// At returns a valid Bound.
func At(micros int64) Bound {
	return Bound{Micros: micros, Valid: true}
}

// Ptr returns the bound as a pointer, nil when unbounded.
func (b Bound) Ptr() *int64 {
	if !b.Valid {
		return nil
	}
	v := b.Micros
	return &v
}

// String returns the microsecond value or "none".
func (b Bound) String() string {
	if !b.Valid {
		return "none"
	}
	return strconv.FormatInt(b.Micros, 10)
}

// Parse converts v to microseconds. Time points are taken relative to
// midnight UTC of their own day.
func Parse(v any) (Bound, error) {
	return ParseRelative(v, time.Time{})
}

// ParseRelative converts v to microseconds. Accepted inputs:
//
//   - nil or "": unbounded
//   - integers and floats: already microseconds, returned as-is; values
//     outside the int64 range are a format error
//   - time.Duration: its length
//   - duration strings: "90s", "1h30m", "22:11", "3:22:11", "1d 3:22:11", "11"
//   - time.Time or an RFC 3339 string: offset from ref, or from midnight UTC
//     of the same day when ref is zero
func ParseRelative(v any, ref time.Time) (Bound, error) {
	switch t := v.(type) {
	case nil:
		return Unbounded, nil
	case int:
		return At(int64(t)), nil
	case int8:
		return At(int64(t)), nil
	case int16:
		return At(int64(t)), nil
	case int32:
		return At(int64(t)), nil
	case int64:
		return At(t), nil
	case uint:
		return fromUint(uint64(t))
	case uint8:
		return At(int64(t)), nil
	case uint16:
		return At(int64(t)), nil
	case uint32:
		return At(int64(t)), nil
	case uint64:
		return fromUint(t)
	case float32:
		return fromFloat(float64(t))
	case float64:
		return fromFloat(t)
	case time.Duration:
		return At(durationMicros(t)), nil
	case *time.Duration:
		if t == nil {
			return Unbounded, nil
		}
		return At(durationMicros(*t)), nil
	case time.Time:
		return At(offset(t, ref)), nil
	case *time.Time:
		if t == nil {
			return Unbounded, nil
		}
		return At(offset(*t, ref)), nil
	case string:
		return parseString(t, ref)
	case *string:
		if t == nil {
			return Unbounded, nil
		}
		return parseString(*t, ref)
	default:
		return Unbounded, fmt.Errorf("%w: %T (%v)", ErrTimeType, v, v)
	}
}

// ParseDuration converts a duration string to microseconds.
// Unlike ParseRelative, an empty string is an error.
func ParseDuration(s string) (int64, error) {
	b, err := parseString(s, time.Time{})
	if err != nil {
		return 0, err
	}
	if !b.Valid {
		return 0, fmt.Errorf("%w: empty duration", ErrTimeFormat)
	}
	return b.Micros, nil
}

func parseString(s string, ref time.Time) (Bound, error) {
	orig := s
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return Unbounded, nil
	}

	if d, err := time.ParseDuration(s); err == nil {
		return At(durationMicros(d)), nil
	}

	if m := daysPattern.FindStringSubmatch(s); m != nil {
		days, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			return Unbounded, fmt.Errorf("%w: %q", ErrTimeFormat, orig)
		}
		if days > math.MaxInt64/Day {
			return Unbounded, fmt.Errorf("%w: %q out of range", ErrTimeFormat, orig)
		}
		return At(days * Day), nil
	}

	if m := clockPattern.FindStringSubmatch(s); m != nil {
		return parseClock(m, orig)
	}

	if ts, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(orig)); err == nil {
		return At(offset(ts, ref)), nil
	}

	return Unbounded, fmt.Errorf("%w: %q", ErrTimeFormat, orig)
}

// parseClock sums the day, hour, minute and second groups of clockPattern.
func parseClock(m []string, orig string) (Bound, error) {
	var total int64
	var ok bool
	mults := []int64{Day, Hour, Minute}
	for i, group := range m[1:4] {
		if group == "" {
			continue
		}
		n, err := strconv.ParseInt(group, 10, 64)
		if err != nil || n > math.MaxInt64/mults[i] {
			return Unbounded, fmt.Errorf("%w: %q out of range", ErrTimeFormat, orig)
		}
		if total, ok = addMicros(total, n*mults[i]); !ok {
			return Unbounded, fmt.Errorf("%w: %q out of range", ErrTimeFormat, orig)
		}
	}
	secs, err := strconv.ParseFloat(m[4], 64)
	if err != nil {
		return Unbounded, fmt.Errorf("%w: %q", ErrTimeFormat, orig)
	}
	micros, err := fromFloat(secs * float64(Second))
	if err != nil {
		return Unbounded, fmt.Errorf("%w: %q out of range", ErrTimeFormat, orig)
	}
	if total, ok = addMicros(total, micros.Micros); !ok {
		return Unbounded, fmt.Errorf("%w: %q out of range", ErrTimeFormat, orig)
	}
	return At(total), nil
}

// addMicros adds two non-negative microsecond counts, reporting overflow.
func addMicros(a, b int64) (int64, bool) {
	if a > math.MaxInt64-b {
		return 0, false
	}
	return a + b, true
}

// fromFloat rounds f to whole microseconds. Values outside the int64 range
// are rejected rather than wrapped.
func fromFloat(f float64) (Bound, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Unbounded, fmt.Errorf("%w: %v", ErrTimeFormat, f)
	}
	r := math.Round(f)
	// float64(math.MaxInt64) rounds up to 2^63, which is already out of range
	if r >= float64(math.MaxInt64) || r < float64(math.MinInt64) {
		return Unbounded, fmt.Errorf("%w: %v out of range", ErrTimeFormat, f)
	}
	return At(int64(r)), nil
}

func fromUint(u uint64) (Bound, error) {
	if u > math.MaxInt64 {
		return Unbounded, fmt.Errorf("%w: %d out of range", ErrTimeFormat, u)
	}
	return At(int64(u)), nil
}

func durationMicros(d time.Duration) int64 {
	return int64(math.Round(float64(d) / float64(time.Microsecond)))
}

func offset(t, ref time.Time) int64 {
	if ref.IsZero() {
		u := t.UTC()
		ref = time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
	}
	return durationMicros(t.Sub(ref))
}
