package utils

import "time"

const DateLayout = "2006-01-02"

// DateOnly truncates t to midnight UTC of its calendar day.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ParseDate(value string) (time.Time, error) {
	return time.Parse(DateLayout, value)
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// IsExpired reports whether an end-of-day expiry date lies strictly before
// the calendar day of now.
func IsExpired(expiry time.Time, now time.Time) bool {
	return DateOnly(expiry).Before(DateOnly(now))
}

// ParseTimestamp accepts an RFC 3339 timestamp or a bare date.
func ParseTimestamp(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return ParseDate(value)
}
