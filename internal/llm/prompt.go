package llm

import (
	"strings"
	"unicode/utf8"

	"github.com/joseph-ayodele/receipts-inbox/constants"
	"github.com/joseph-ayodele/receipts-inbox/internal/entity"
)

// DefaultMaxInputChars caps the message text embedded in the prompt.
const DefaultMaxInputChars = 6000

// BuildPrompt composes the single completion prompt: extraction rules, the
// allowed categories, then the message itself with its text truncated to
// maxChars runes.
func BuildPrompt(req Request, maxChars int) string {
	if maxChars <= 0 {
		maxChars = DefaultMaxInputChars
	}
	parts := []string{
		"You are a receipts parser. Read the email below and return ONLY a JSON object with exactly these keys: " +
			strings.Join(entity.ExtractedFields, ", ") + ".",
		"Use null for any value that is not clearly present. Do not guess.",
		"vendor: the merchant that was paid, never a greeting or a generic word such as 'Receipt' or 'Order'.",
		"total_amount: the final amount charged as a decimal string with two fraction digits (e.g. \"45.00\"), no currency symbol. Negative only for refunds.",
		"order_date: the purchase date as YYYY-MM-DD.",
		"form_of_payment: \"Card\" or \"Cash\".",
		"card_type: one of Visa, MasterCard, AMEX, Discover, Diners, JCB, UnionPay.",
		"card_last4: exactly four digits.",
		"category: exactly one of " + strings.Join(constants.AsStringSlice(), ", ") + ". If uncertain, use Other.",
		"tracking_number: the order or invoice number.",
	}

	var b strings.Builder
	b.WriteString(strings.Join(parts, "\n"))
	b.WriteString("\n\nSender: ")
	b.WriteString(strings.TrimSpace(req.Sender))
	b.WriteString("\nSubject: ")
	b.WriteString(strings.TrimSpace(req.Subject))
	b.WriteString("\n\nEmail text:\n")
	b.WriteString(TruncateRunes(strings.TrimSpace(req.Text), maxChars))
	return b.String()
}

// TruncateRunes keeps at most n runes of s.
func TruncateRunes(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
