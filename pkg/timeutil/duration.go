package timeutil

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DefaultTimer is used when a timer is created without a duration.
const DefaultTimer = "5m"

var (
	segmentPattern = regexp.MustCompile(`^\s*(\d+)\s*([a-z]*)`)
	clockPattern   = regexp.MustCompile(`^(?:(\d+):)?(\d{1,2}):(\d{2})$`)
	unitMap        = map[string]time.Duration{
		"":        time.Second,
		"s":       time.Second,
		"sec":     time.Second,
		"secs":    time.Second,
		"second":  time.Second,
		"seconds": time.Second,
		"m":       time.Minute,
		"min":     time.Minute,
		"mins":    time.Minute,
		"minute":  time.Minute,
		"minutes": time.Minute,
		"h":       time.Hour,
		"hr":      time.Hour,
		"hrs":     time.Hour,
		"hour":    time.Hour,
		"hours":   time.Hour,
	}
)

// ParseDuration reads a timer length such as "90", "5m", "1h30m" or "12:30"
// and returns it with a compact label. A bare number is seconds; empty input
// means DefaultTimer.
func ParseDuration(input string) (time.Duration, string, error) {
	trimmed := strings.ToLower(strings.TrimSpace(input))
	if trimmed == "" {
		trimmed = DefaultTimer
	}

	if m := clockPattern.FindStringSubmatch(trimmed); m != nil {
		h, _ := strconv.Atoi("0" + m[1])
		mins, _ := strconv.Atoi(m[2])
		sec, _ := strconv.Atoi(m[3])
		if sec > 59 || (m[1] != "" && mins > 59) {
			return 0, "", fmt.Errorf("invalid clock duration %q", input)
		}
		total := time.Duration(h)*time.Hour + time.Duration(mins)*time.Minute + time.Duration(sec)*time.Second
		if total <= 0 {
			return 0, "", fmt.Errorf("duration must be greater than zero")
		}
		return total, FormatDuration(total), nil
	}

	remaining := trimmed
	total := time.Duration(0)
	for len(remaining) > 0 {
		matches := segmentPattern.FindStringSubmatch(remaining)
		if len(matches) != 3 || matches[0] == "" {
			return 0, "", fmt.Errorf("invalid duration segment %q", strings.TrimSpace(remaining))
		}
		value, err := strconv.ParseInt(matches[1], 10, 64)
		if err != nil {
			return 0, "", fmt.Errorf("invalid duration value %q: %w", matches[1], err)
		}
		base, ok := unitMap[matches[2]]
		if !ok {
			return 0, "", fmt.Errorf("unsupported duration unit %q", matches[2])
		}
		total += time.Duration(value) * base
		remaining = remaining[len(matches[0]):]
	}

	if total <= 0 {
		return 0, "", fmt.Errorf("duration must be greater than zero")
	}
	return total, FormatDuration(total), nil
}

// Seconds is ParseDuration truncated to whole seconds.
func Seconds(input string) (int, error) {
	d, _, err := ParseDuration(input)
	if err != nil {
		return 0, err
	}
	return int(d / time.Second), nil
}

// FormatDuration renders d with hour, minute and second tokens, e.g. "1h5m".
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return "0s"
	}
	var b strings.Builder
	for _, u := range []struct {
		label string
		value time.Duration
	}{{"h", time.Hour}, {"m", time.Minute}, {"s", time.Second}} {
		if d < u.value {
			continue
		}
		count := d / u.value
		d -= count * u.value
		fmt.Fprintf(&b, "%d%s", count, u.label)
	}
	return b.String()
}

// Clock renders seconds as m:ss, or h:mm:ss from an hour up.
func Clock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h, m, s := seconds/3600, seconds/60%60, seconds%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
