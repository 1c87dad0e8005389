package ocr

import (
	"regexp"
	"strings"
)

var (
	reCRLF        = regexp.MustCompile(`\r\n?`)
	reTabs        = regexp.MustCompile(`\t+`)
	reMultiSpace  = regexp.MustCompile(` {2,}`)
	reMultiBlank  = regexp.MustCompile(`\n{3,}`)
	reBoxNoise    = regexp.MustCompile(`(?m)^\s*[_\-|]{3,}\s*$`)
	reO0Artifacts = regexp.MustCompile(`\b0([A-Z]{2,})`) // "0RDER" -> "ORDER"
)

// Normalize collapses noisy whitespace and fixes common OCR artifacts while
// keeping line breaks.
func Normalize(s string) string {
	if s == "" {
		return s
	}
	s = reCRLF.ReplaceAllString(s, "\n")
	s = reBoxNoise.ReplaceAllString(s, "")
	s = reTabs.ReplaceAllString(s, " ")
	s = reMultiSpace.ReplaceAllString(s, " ")
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " ")
	}
	s = strings.Join(lines, "\n")
	s = reMultiBlank.ReplaceAllString(s, "\n\n")
	s = reO0Artifacts.ReplaceAllString(s, "O$1")
	return strings.TrimSpace(s)
}
