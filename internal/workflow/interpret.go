package workflow

import (
	"regexp"
	"strings"
)

// buildtools does not report results in a structured way, so the status
// line is scraped from its verbose log.
var statusPatterns = []*regexp.Regexp{
	regexp.MustCompile(`Generated symbol file`),
	regexp.MustCompile(`Crashlytics symbol file uploaded successfully`),
}

// Interpret returns the first line of output that reports a generated or
// uploaded symbol file, or "" when there is none. The line is returned
// as printed, less its line terminator. Both patterns are checked in
// either mode.
func Interpret(output string, _ Mode) string {
	if output == "" {
		return ""
	}
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		for _, p := range statusPatterns {
			if p.MatchString(line) {
				return line
			}
		}
	}
	return ""
}
