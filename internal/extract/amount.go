package extract

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/receipts-inbox/internal/entity"
)

var (
	// figureRe matches one amount with optional sign, parentheses and currency.
	figureRe      = regexp.MustCompile(`(\()?[ \t]*(-)?[ \t]*([$€£])?[ \t]*(-)?((?:\d{1,3}(?:,\d{3})+|\d+)(?:\.\d{1,2})?)[ \t]*(\))?`)
	totalTenderRe = regexp.MustCompile(`(?i)\btotal[ \t]+tender\b`)
	totalWordRe   = regexp.MustCompile(`(?i)\btotal\b`)
	subtotalRe    = regexp.MustCompile(`(?i)\bsub[ \t\-]?total`)
	// lastFigureRe is the currency-formatted fallback, last match wins.
	lastFigureRe = regexp.MustCompile(`(-)?[ \t]*[$€£][ \t]?(-)?((?:\d{1,3}(?:,\d{3})+|\d+)\.\d{2})`)
	refundRe     = regexp.MustCompile(`(?i)\brefund(?:s|ed|ing)?\b`)
)

// excludedTotals mark a "total" label that is not the grand total.
var excludedTotals = map[string]struct{}{
	"tax": {}, "taxes": {}, "discount": {}, "discounts": {}, "savings": {}, "saved": {},
	"items": {}, "item": {}, "qty": {}, "quantity": {}, "before": {},
}

// HasRefundContext reports whether the text mentions a refund, the only case
// in which a negative total is kept.
func HasRefundContext(text string) bool {
	return refundRe.MatchString(text)
}

// ParseAmount parses a currency figure such as "$1,234.5", "(12.00)" or
// "-€3". Currency symbols, spaces and thousands separators are dropped and the
// result is rounded to cents.
func ParseAmount(s string) (entity.Money, bool) {
	s = strings.TrimSpace(s)
	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = s[1 : len(s)-1]
	}
	s = strings.TrimSpace(strings.TrimPrefix(strings.ToUpper(s), "USD"))
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '$', '€', '£', ',', ' ', '\t':
			return -1
		}
		return r
	}, s)
	if strings.HasPrefix(cleaned, "-") {
		neg = !neg
		cleaned = cleaned[1:]
	}
	if cleaned == "" || strings.ContainsAny(cleaned, "+-") {
		return entity.Money{}, false
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return entity.Money{}, false
	}
	if neg {
		d = d.Neg()
	}
	return entity.NewMoney(d), true
}

// TotalAmount prefers a "Total Tender" line, then the last grand-total line,
// then the last currency figure in the document.
func TotalAmount(text string) entity.Result[entity.Money] {
	refund := HasRefundContext(text)
	accept := func(m entity.Money) bool { return !m.IsNegative() || refund }
	lines := strings.Split(text, "\n")

	for i, line := range lines {
		loc := totalTenderRe.FindStringIndex(line)
		if loc == nil {
			continue
		}
		if m, ok := figureAfter(lines, i, loc[1]); ok && accept(m) {
			return entity.Found(m, entity.SourceRegex)
		}
	}

	var generic *entity.Money
	for i, line := range lines {
		if subtotalRe.MatchString(line) {
			continue
		}
		for _, loc := range totalWordRe.FindAllStringIndex(line, -1) {
			if excludedTotal(line, loc[1]) {
				continue
			}
			if m, ok := figureAfter(lines, i, loc[1]); ok && accept(m) {
				generic = &m
				break
			}
		}
	}
	if generic != nil {
		return entity.Found(*generic, entity.SourceRegex)
	}

	matches := lastFigureRe.FindAllStringSubmatch(text, -1)
	for i := len(matches) - 1; i >= 0; i-- {
		m := matches[i]
		raw := m[3]
		if m[1] != "" || m[2] != "" {
			raw = "-" + raw
		}
		if v, ok := ParseAmount(raw); ok && accept(v) {
			return entity.Found(v, entity.SourceContextual)
		}
	}
	return entity.Absent[entity.Money]()
}

// excludedTotal reports whether any label word before the figure, on either
// side of "total", marks a partial total ("Total Sales Tax", "Tax Total").
func excludedTotal(line string, totalEnd int) bool {
	label := line[:totalEnd]
	rest := line[totalEnd:]
	if i := strings.IndexAny(rest, "0123456789$€£"); i >= 0 {
		rest = rest[:i]
	}
	for _, w := range strings.Fields(strings.ToLower(label + " " + rest)) {
		if _, ok := excludedTotals[strings.Trim(w, ":.()-")]; ok {
			return true
		}
	}
	return false
}

// figureAfter reads the first figure after col on line i, or on the next
// non-empty line when the label stands alone.
func figureAfter(lines []string, i, col int) (entity.Money, bool) {
	if m, ok := bestFigure(lines[i][col:]); ok {
		return m, true
	}
	if strings.TrimSpace(strings.Trim(lines[i][col:], ":")) != "" {
		return entity.Money{}, false
	}
	for j := i + 1; j < len(lines); j++ {
		if strings.TrimSpace(lines[j]) == "" {
			continue
		}
		return bestFigure(lines[j])
	}
	return entity.Money{}, false
}

// bestFigure returns the first figure carrying a currency symbol or cents,
// else the first bare number.
func bestFigure(s string) (entity.Money, bool) {
	var bare []string
	for _, m := range figureRe.FindAllStringSubmatch(s, -1) {
		raw := m[5]
		strong := m[3] != "" || strings.Contains(raw, ".")
		neg := m[2] != "" || m[4] != "" || (m[1] != "" && m[6] != "")
		if neg {
			raw = "-" + raw
		}
		if strong {
			return ParseAmount(raw)
		}
		bare = append(bare, raw)
	}
	if len(bare) > 0 {
		return ParseAmount(bare[0])
	}
	return entity.Money{}, false
}
