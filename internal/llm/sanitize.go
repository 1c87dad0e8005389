package llm

import (
	"bytes"
	"encoding/json"
	"maps"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/joseph-ayodele/receipts-inbox/constants"
	"github.com/joseph-ayodele/receipts-inbox/internal/entity"
)

var (
	reLast4     = regexp.MustCompile(`^\d{4}$`)
	reNonDigits = regexp.MustCompile(`[^\d]`)
	reFence     = regexp.MustCompile("(?s)^```[a-zA-Z]*\\s*(.*?)\\s*```$")
)

// fieldSynonyms maps keys models tend to invent onto ours.
var fieldSynonyms = map[string]string{
	"merchant":       entity.FieldVendor,
	"merchant_name":  entity.FieldVendor,
	"vendor_name":    entity.FieldVendor,
	"total":          entity.FieldTotalAmount,
	"amount":         entity.FieldTotalAmount,
	"date":           entity.FieldOrderDate,
	"tx_date":        entity.FieldOrderDate,
	"payment_method": entity.FieldFormOfPayment,
	"card_brand":     entity.FieldCardType,
	"card_network":   entity.FieldCardType,
	"payment_last4":  entity.FieldCardLast4,
	"last4":          entity.FieldCardLast4,
	"order_number":   entity.FieldTrackingNumber,
	"invoice_number": entity.FieldTrackingNumber,
	"tracking":       entity.FieldTrackingNumber,
}

// dateLayouts are accepted for order_date besides ISO.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"January 2, 2006",
	"Jan 2, 2006",
	"01/02/2006",
	"1/2/2006",
	"2006/01/02",
	"2 January 2006",
	"2 Jan 2006",
}

// CleanJSON strips Markdown code fences and cuts the reply down to the first
// complete JSON object; prose after it is ignored even when it has braces.
func CleanJSON(s string) string {
	s = strings.TrimSpace(s)
	if m := reFence.FindStringSubmatch(s); m != nil {
		s = m[1]
	}
	start := strings.Index(s, "{")
	if start < 0 {
		return s
	}
	var obj json.RawMessage
	if err := json.NewDecoder(strings.NewReader(s[start:])).Decode(&obj); err == nil {
		return string(obj)
	}
	if end := strings.LastIndex(s, "}"); end > start {
		return s[start : end+1]
	}
	return s
}

// SanitizeFields coerces a decoded model reply into the strict shape the
// schema expects:
//   - synonym keys are renamed, unknown keys dropped
//   - numbers become two-digit decimal strings
//   - last-4 values that are not four digits are dropped
//   - brands and payment forms are canonicalized or dropped
//   - non-ISO dates are re-parsed or dropped
//   - missing fields are set to null
//
// It returns the rewritten document and the list of adjustments made.
func SanitizeFields(raw []byte, logger *zap.Logger) ([]byte, []string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, nil, eris.Wrap(err, "sanitize: decode")
	}
	if m == nil {
		return nil, nil, eris.New("sanitize: reply is not an object")
	}

	adjusted := make([]string, 0, 8)
	for _, from := range slices.Sorted(maps.Keys(fieldSynonyms)) {
		to := fieldSynonyms[from]
		v, ok := m[from]
		if !ok {
			continue
		}
		if cur, exists := m[to]; !exists || cur == nil {
			m[to] = v
		}
		delete(m, from)
		adjusted = append(adjusted, from+"->"+to)
	}

	out := make(map[string]any, len(entity.ExtractedFields))
	for k := range m {
		if !slices.Contains(entity.ExtractedFields, k) {
			adjusted = append(adjusted, k+"(unknown)")
		}
	}

	for _, k := range entity.ExtractedFields {
		v, note := sanitizeValue(k, m[k])
		out[k] = v
		if note != "" {
			adjusted = append(adjusted, k+"("+note+")")
		}
	}

	b, err := json.Marshal(out)
	if err != nil {
		return nil, adjusted, eris.Wrap(err, "sanitize: encode")
	}
	if len(adjusted) > 0 {
		slices.Sort(adjusted)
		if logger != nil {
			logger.Debug("llm.extract.sanitize", zap.Strings("adjusted", adjusted))
		}
	}
	return b, adjusted, nil
}

// sanitizeValue returns the value to keep (nil for null) and a short note when
// the input was changed or dropped.
func sanitizeValue(field string, v any) (any, string) {
	var s string
	switch t := v.(type) {
	case nil:
		return nil, ""
	case string:
		s = strings.TrimSpace(t)
	case json.Number:
		s = t.String()
	case float64:
		s = decimal.NewFromFloat(t).String()
	case bool:
		return nil, "type"
	default:
		return nil, "type"
	}
	if s == "" || strings.EqualFold(s, "null") || strings.EqualFold(s, "n/a") {
		return nil, "empty"
	}

	switch field {
	case entity.FieldTotalAmount:
		return sanitizeAmount(s)
	case entity.FieldOrderDate:
		return sanitizeDate(s)
	case entity.FieldCardLast4:
		digits := reNonDigits.ReplaceAllString(s, "")
		if !reLast4.MatchString(digits) {
			return nil, "invalid"
		}
		return digits, noteIfChanged(s, digits)
	case entity.FieldCardType:
		n, ok := constants.CanonicalNetwork(s)
		if !ok {
			return nil, "invalid"
		}
		return string(n), noteIfChanged(s, string(n))
	case entity.FieldFormOfPayment:
		f, ok := constants.CanonicalFormOfPayment(s)
		if !ok {
			return nil, "invalid"
		}
		return string(f), noteIfChanged(s, string(f))
	}
	return s, ""
}

func sanitizeAmount(s string) (any, string) {
	neg := strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")")
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '$', '€', '£', ',', ' ', '(', ')':
			return -1
		}
		return r
	}, strings.TrimPrefix(strings.ToUpper(s), "USD"))
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return nil, "invalid"
	}
	if neg {
		d = d.Neg()
	}
	out := d.StringFixed(2)
	return out, noteIfChanged(s, out)
}

func sanitizeDate(s string) (any, string) {
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		d, ok := entity.NewDate(t.Year(), t.Month(), t.Day())
		if !ok {
			return nil, "invalid"
		}
		return d.String(), noteIfChanged(s, d.String())
	}
	return nil, "invalid"
}

func noteIfChanged(before, after string) string {
	if before == after {
		return ""
	}
	return "normalized"
}
