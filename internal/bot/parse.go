package bot

import (
	"strconv"
	"strings"
)

// splitAddJobArgs parses "<schedule>;<message>[;<start date>]".
//
// The semicolon count decides the shape: one separator means schedule and
// message, two means schedule, message and start date. Anything else is
// malformed. The message is kept verbatim (it is delivered as-is); the
// schedule and start date are trimmed.
func splitAddJobArgs(args string) (expr, payload, startRaw string, ok bool) {
	switch strings.Count(args, ";") {
	case 1:
		parts := strings.SplitN(args, ";", 2)
		return strings.TrimSpace(parts[0]), parts[1], "", true
	case 2:
		parts := strings.SplitN(args, ";", 3)
		return strings.TrimSpace(parts[0]), parts[1], strings.TrimSpace(parts[2]), true
	default:
		return "", "", "", false
	}
}

// parseJobID parses the single integer argument of pause/resume/delete.
func parseJobID(args string) (int64, bool) {
	args = strings.TrimSpace(args)
	if args == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(args, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
