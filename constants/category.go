package constants

import (
	"strings"
)

type Category string

const (
	Groceries      Category = "Groceries"
	Dining         Category = "Dining"
	Transportation Category = "Transportation"
	Travel         Category = "Travel"
	Subscriptions  Category = "Subscriptions"
	Utilities      Category = "Utilities"
	Healthcare     Category = "Healthcare"
	Entertainment  Category = "Entertainment"
	Shopping       Category = "Shopping"
	Other          Category = "Other"
)

var allCategories = []Category{
	Groceries,
	Dining,
	Transportation,
	Travel,
	Subscriptions,
	Utilities,
	Healthcare,
	Entertainment,
	Shopping,
	Other,
}

func AsStringSlice() []string {
	result := make([]string, len(allCategories))
	for i, cat := range allCategories {
		result[i] = string(cat)
	}
	return result
}

// synonyms maps loose labels (typically model phrasing) onto the taxonomy.
var synonyms = map[string]Category{
	"grocery":         Groceries,
	"groceries":       Groceries,
	"supermarket":     Groceries,
	"food & drink":    Dining,
	"food and drink":  Dining,
	"restaurant":      Dining,
	"restaurants":     Dining,
	"meals":           Dining,
	"food delivery":   Dining,
	"rideshare":       Transportation,
	"ride share":      Transportation,
	"taxi":            Transportation,
	"fuel":            Transportation,
	"gas":             Transportation,
	"airline":         Travel,
	"airfare":         Travel,
	"hotel":           Travel,
	"lodging":         Travel,
	"travel expenses": Travel,
	"subscription":    Subscriptions,
	"saas":            Subscriptions,
	"streaming":       Subscriptions,
	"software":        Subscriptions,
	"utility":         Utilities,
	"internet":        Utilities,
	"phone":           Utilities,
	"cell phone":      Utilities,
	"pharmacy":        Healthcare,
	"medical":         Healthcare,
	"health":          Healthcare,
	"movies":          Entertainment,
	"tickets":         Entertainment,
	"events":          Entertainment,
	"retail":          Shopping,
	"online shopping": Shopping,
	"electronics":     Shopping,
	"clothing":        Shopping,
	"misc":            Other,
	"miscellaneous":   Other,
	"uncategorized":   Other,
}

// Canonicalize maps a free-text label onto the taxonomy. The boolean is false
// when the label is empty or unknown, in which case Other is returned.
func Canonicalize(input string) (Category, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		return Other, false
	}

	if cat, ok := synonyms[normalized]; ok {
		return cat, true
	}

	for _, cat := range allCategories {
		if normalized == strings.ToLower(string(cat)) {
			return cat, true
		}
	}

	return Other, false
}
