// Package normalize produces the canonical text view every extractor reads.
package normalize

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// DefaultLowValueThreshold is the residual rune count under which a body is
// considered boilerplate.
const DefaultLowValueThreshold = 20

// Origin names the input a View was built from.
type Origin string

const (
	OriginPlain Origin = "plain"
	OriginHTML  Origin = "html"
	OriginOCR   Origin = "ocr"
	OriginNone  Origin = "none"
)

// Input is the raw material for Normalize.
type Input struct {
	Plain string
	HTML  string
	OCR   string
}

// View is the canonical text plus the untouched HTML kept for logo scans.
type View struct {
	Text    string
	RawHTML string
	Origin  Origin
}

var (
	reCRLF       = regexp.MustCompile(`\r\n?`)
	reTabs       = regexp.MustCompile(`[\t\f\v\x{00A0}]+`)
	reMultiSpace = regexp.MustCompile(` {2,}`)
	reMultiBlank = regexp.MustCompile(`\n{3,}`)
	reZeroWidth  = regexp.MustCompile(`[\x{200B}\x{200C}\x{200D}\x{FEFF}]`)
	reQuoteMark  = regexp.MustCompile(`(?m)^[ \t]*(?:>[ \t]?)+`)
	reSigSep     = regexp.MustCompile(`(?m)^--\s*$`)
	reBoxNoise   = regexp.MustCompile(`(?m)^\s*[_\-=]{3,}\s*$`)
	reAllSpace   = regexp.MustCompile(`\s+`)
)

// boilerplate phrases left behind by mail clients on forwards and replies.
var reBoilerplate = regexp.MustCompile(`(?i)` + strings.Join([]string{
	`sent from my (?:iphone|ipad|android(?: device)?|phone|mobile(?: device)?|samsung[^\n]*|galaxy[^\n]*|blackberry[^\n]*)`,
	`sent from (?:yahoo mail|mail for windows(?: 10)?|outlook)[^\n]*`,
	`get outlook for (?:ios|android)`,
	`sent via [^\n]*`,
	`-+ ?forwarded message ?-+`,
	`begin forwarded message:?`,
	`-+ ?original message ?-+`,
	`on [^\n]{0,80} wrote:`,
	`\b(?:from|to|date|subject|cc):[^\n]*`,
}, "|"))

// Normalize picks plain text, then stripped HTML, then OCR text, skipping any
// input that is low-value under threshold (<= 0 uses the default).
func Normalize(in Input, threshold int) View {
	if threshold <= 0 {
		threshold = DefaultLowValueThreshold
	}
	view := View{RawHTML: in.HTML, Origin: OriginNone}

	if !IsLowValue(in.Plain, threshold) {
		view.Text = Clean(in.Plain)
		view.Origin = OriginPlain
		return view
	}
	if strings.TrimSpace(in.HTML) != "" {
		stripped := StripHTML(in.HTML)
		if !IsLowValue(stripped, threshold) {
			view.Text = Clean(stripped)
			view.Origin = OriginHTML
			return view
		}
	}
	if !IsLowValue(in.OCR, threshold) {
		view.Text = Clean(in.OCR)
		view.Origin = OriginOCR
		return view
	}
	return view
}

// IsLowValue reports whether s carries fewer than threshold runes once quote
// markers, client boilerplate and whitespace are removed.
func IsLowValue(s string, threshold int) bool {
	if threshold <= 0 {
		threshold = DefaultLowValueThreshold
	}
	if strings.TrimSpace(s) == "" {
		return true
	}
	s = reCRLF.ReplaceAllString(s, "\n")
	s = reQuoteMark.ReplaceAllString(s, "")
	s = reBoilerplate.ReplaceAllString(s, "")
	s = reSigSep.ReplaceAllString(s, "")
	s = reBoxNoise.ReplaceAllString(s, "")
	s = reAllSpace.ReplaceAllString(s, "")
	return utf8.RuneCountInString(s) < threshold
}

// Clean unifies line endings and collapses noisy whitespace.
// Conservative: keeps line breaks; collapses >2 newlines into a single blank line.
func Clean(s string) string {
	if s == "" {
		return s
	}
	s = reCRLF.ReplaceAllString(s, "\n")
	s = reZeroWidth.ReplaceAllString(s, "")
	s = reTabs.ReplaceAllString(s, " ")
	s = reMultiSpace.ReplaceAllString(s, " ")
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	s = strings.Join(lines, "\n")
	s = reMultiBlank.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
