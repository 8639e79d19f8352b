package youtube

import (
	"strconv"
	"strings"
)

// ParseDuration converts an ISO 8601 duration token as returned by the Data
// API (eg. "PT1H2M3S") into a count of seconds. Each of the H, M and S
// segments is optional; missing or unparseable segments count as zero.
//
// This is one-directional on purpose: nothing needs to render durations back
// into tokens.
func ParseDuration(token string) int64 {
	s := strings.TrimPrefix(token, "PT")
	s = strings.TrimPrefix(s, "P")

	var hours, minutes, seconds int64

	if part, rest, found := strings.Cut(s, "H"); found {
		hours = parseSegment(part)
		s = rest
	}
	if part, rest, found := strings.Cut(s, "M"); found {
		minutes = parseSegment(part)
		s = rest
	}
	if part, _, found := strings.Cut(s, "S"); found {
		seconds = parseSegment(part)
	}

	return hours*3600 + minutes*60 + seconds
}

func parseSegment(s string) int64 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
