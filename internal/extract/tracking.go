package extract

import (
	"regexp"
	"strings"

	"github.com/joseph-ayodele/receipts-inbox/internal/entity"
)

var trackingRe = regexp.MustCompile(`(?i)\b(?:order|invoice)(?:[ \t]+(?:number|num|no\.?|id)|[ \t]*#)?[ \t]*[:#]?[ \t]*#?[ \t]*([A-Z0-9][A-Z0-9\-]{3,})`)

// TrackingNumber finds an order or invoice identifier containing at least one
// digit, in the body first and then the subject.
func TrackingNumber(text, subject string) entity.Result[string] {
	for _, s := range []string{text, subject} {
		for _, m := range trackingRe.FindAllStringSubmatch(s, -1) {
			token := strings.TrimRight(m[1], "-")
			if len(token) >= 4 && strings.ContainsAny(token, "0123456789") {
				return entity.Found(token, entity.SourceRegex)
			}
		}
	}
	return entity.Absent[string]()
}
