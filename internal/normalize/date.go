// Package normalize converts the assorted textual timestamp formats
// delivered by the remote source into one canonical representation:
// ISO-8601, UTC, second precision, trailing "Z".
package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	isoPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}Z$`)
	mdyPattern = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})\s+(\d{1,2}):(\d{2}):(\d{2})\s+(AM|PM)$`)
	ymdPattern = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})\s+(\d{1,2}):(\d{2}):(\d{2})\s+(AM|PM)$`)
)

// Date normalizes a timestamp string to canonical form. A nil or empty
// input maps to nil. Unrecognized formats degrade to a best-effort
// pass-through; normalization never fails.
func Date(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	out := DateString(*s)
	return &out
}

// DateString is the string form of Date. Patterns are checked in order,
// first match wins.
func DateString(s string) string {
	if isoPattern.MatchString(s) {
		return s
	}

	if m := mdyPattern.FindStringSubmatch(s); m != nil {
		return canonical(m[3], m[1], m[2], to24Hour(m[4], m[7]), m[5], m[6])
	}

	if m := ymdPattern.FindStringSubmatch(s); m != nil {
		return canonical(m[1], m[2], m[3], to24Hour(m[4], m[7]), m[5], m[6])
	}

	// Best-effort fallback: space-separated timestamps become "T"-separated
	// and gain a "Z" suffix. The result is not validated.
	if strings.Contains(s, " ") && !strings.Contains(s, "T") {
		s = strings.ReplaceAll(s, " ", "T")
	}
	if !strings.HasSuffix(s, "Z") {
		s += "Z"
	}
	return s
}

func canonical(year, month, day string, hour int, minute, second string) string {
	mo, _ := strconv.Atoi(month)
	d, _ := strconv.Atoi(day)
	return fmt.Sprintf("%s-%02d-%02dT%02d:%s:%sZ", year, mo, d, hour, minute, second)
}

// to24Hour converts a 12-hour clock value: 12 AM maps to 0, 12 PM stays
// 12, any other PM hour gains 12.
func to24Hour(hour, meridiem string) int {
	h, _ := strconv.Atoi(hour)
	switch {
	case meridiem == "PM" && h < 12:
		h += 12
	case meridiem == "AM" && h == 12:
		h = 0
	}
	return h
}
