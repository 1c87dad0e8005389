package extract

import (
	"regexp"
	"strings"

	"github.com/joseph-ayodele/receipts-inbox/constants"
	"github.com/joseph-ayodele/receipts-inbox/internal/category"
	"github.com/joseph-ayodele/receipts-inbox/internal/entity"
)

var categoryLabelRe = regexp.MustCompile(`(?im)^[ \t]*category[ \t]*:[ \t]*([^\n]+?)[ \t]*$`)

// CategoryLabel returns the raw text of an explicit "Category:" line.
func CategoryLabel(text string) entity.Result[string] {
	if m := categoryLabelRe.FindStringSubmatch(text); m != nil {
		if v := strings.TrimSpace(m[1]); v != "" {
			return entity.Found(v, entity.SourceRegex)
		}
	}
	return entity.Absent[string]()
}

// Category maps an explicit label into the taxonomy, else scans vendor,
// subject and body against the keyword sets, else reports Other.
func Category(text, subject, vendor string, tax *category.Taxonomy) entity.Result[string] {
	if label, ok := CategoryLabel(text).Get(); ok {
		if cat, ok := tax.MapLabel(label); ok {
			return entity.Found(string(cat), entity.SourceRegex)
		}
	}
	if cat, ok := tax.Match(vendor, subject, text); ok {
		return entity.Found(string(cat), entity.SourceInferred)
	}
	return entity.Found(string(constants.Other), entity.SourceNone)
}
