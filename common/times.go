package common

import (
	"regexp"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

var epochMillisRegexp = regexp.MustCompile(`^\d+$`)

// FormatTimestamp formats a timestamp the way outbound notification messages expect it:
// the number of milliseconds since the epoch, as a string.
func FormatTimestamp(timestamp time.Time) string {
	return strconv.FormatInt(timestamp.UnixNano()/int64(time.Millisecond), 10)
}

// FixTimestamp normalizes a timestamp that may arrive either as epoch milliseconds or in
// RFC 3339 format, returning epoch milliseconds. Empty timestamps pass through unchanged.
func FixTimestamp(timestamp string) (string, error) {
	if timestamp == "" {
		return "", nil
	}
	if epochMillisRegexp.MatchString(timestamp) {
		return timestamp, nil
	}
	parsed, err := time.Parse(time.RFC3339Nano, timestamp)
	if err != nil {
		return "", errors.Wrapf(err, "unable to parse timestamp `%s`", timestamp)
	}
	return FormatTimestamp(parsed), nil
}

// ParseTimestamp parses a timestamp that may arrive either as epoch milliseconds or in
// RFC 3339 format.
func ParseTimestamp(timestamp string) (time.Time, error) {
	if epochMillisRegexp.MatchString(timestamp) {
		millis, err := strconv.ParseInt(timestamp, 10, 64)
		if err != nil {
			return time.Time{}, errors.Wrapf(err, "unable to parse timestamp `%s`", timestamp)
		}
		return time.Unix(millis/1000, (millis%1000)*int64(time.Millisecond)), nil
	}
	parsed, err := time.Parse(time.RFC3339Nano, timestamp)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "unable to parse timestamp `%s`", timestamp)
	}
	return parsed, nil
}
