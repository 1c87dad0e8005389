// Package category maps free text onto the fixed receipt taxonomy.
package category

import (
	"os"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/joseph-ayodele/receipts-inbox/constants"
)

// Rule binds one category to its keyword set.
type Rule struct {
	Category constants.Category `yaml:"category"`
	Keywords []string           `yaml:"keywords"`
}

// DefaultRules is ordered: the first category with a matching keyword wins,
// so more specific sets ("uber eats") precede broader ones ("uber").
var DefaultRules = []Rule{
	{Category: constants.Groceries, Keywords: []string{
		"whole foods", "trader joe", "safeway", "kroger", "publix", "aldi", "wegmans",
		"instacart", "grocery", "groceries", "supermarket", "h-e-b", "sprouts", "food lion",
	}},
	{Category: constants.Dining, Keywords: []string{
		"uber eats", "doordash", "grubhub", "postmates", "seamless", "starbucks", "chipotle",
		"mcdonald's", "mcdonalds", "restaurant", "cafe", "coffee", "pizza", "bistro", "diner",
		"sweetgreen", "panera", "dunkin",
	}},
	{Category: constants.Transportation, Keywords: []string{
		"uber", "lyft", "taxi", "parking fee", "parking garage", "spothero", "parkwhiz",
		"toll road", "tolls", "e-zpass", "ez pass", "fastrak", "fuel purchase", "gas station",
		"shell", "chevron", "exxon", "amtrak", "metro card", "transit fare",
	}},
	{Category: constants.Travel, Keywords: []string{
		"airbnb", "expedia", "booking.com", "hotel", "marriott", "hilton", "hyatt", "airline",
		"airlines", "flight", "boarding pass", "delta", "united airlines", "southwest", "jetblue",
	}},
	{Category: constants.Subscriptions, Keywords: []string{
		"netflix", "spotify", "hulu", "disney+", "youtube premium", "apple music", "icloud",
		"subscription", "membership renewal", "patreon",
	}},
	{Category: constants.Utilities, Keywords: []string{
		"verizon", "comcast", "xfinity", "at&t", "t-mobile", "spectrum", "electric", "utility",
		"water bill", "internet service",
	}},
	{Category: constants.Healthcare, Keywords: []string{
		"cvs", "walgreens", "rite aid", "pharmacy", "prescription", "clinic", "dental", "medical",
	}},
	{Category: constants.Entertainment, Keywords: []string{
		"ticketmaster", "stubhub", "eventbrite", "cinema", "movie", "theater", "theatre",
		"concert", "steam", "playstation", "xbox",
	}},
	{Category: constants.Shopping, Keywords: []string{
		"amazon", "target", "walmart", "ebay", "etsy", "best buy", "costco", "ikea", "apple store",
		"home depot", "lowe's", "nordstrom", "macy's", "shein",
	}},
}

type compiledRule struct {
	category constants.Category
	re       *regexp.Regexp
}

// Taxonomy is an immutable, ordered keyword matcher. Safe for concurrent use.
type Taxonomy struct {
	rules []compiledRule
}

// Default returns the built-in taxonomy.
func Default() *Taxonomy {
	t, err := New(DefaultRules)
	if err != nil {
		panic(err)
	}
	return t
}

// New compiles rules, rejecting categories outside the fixed set.
func New(rules []Rule) (*Taxonomy, error) {
	t := &Taxonomy{}
	for _, r := range rules {
		cat, ok := constants.Canonicalize(string(r.Category))
		if !ok {
			return nil, eris.Errorf("category: unknown category %q", r.Category)
		}
		var alts []string
		for _, kw := range r.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw != "" {
				alts = append(alts, regexp.QuoteMeta(kw))
			}
		}
		if len(alts) == 0 {
			continue
		}
		re, err := regexp.Compile(`(?:^|[^a-z0-9])(?:` + strings.Join(alts, "|") + `)(?:[^a-z0-9]|$)`)
		if err != nil {
			return nil, eris.Wrapf(err, "category: compile keywords for %s", cat)
		}
		t.rules = append(t.rules, compiledRule{category: cat, re: re})
	}
	return t, nil
}

// LoadFile reads an ordered rule list from YAML:
//
//	- category: Groceries
//	  keywords: [whole foods, trader joe]
func LoadFile(path string) (*Taxonomy, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "category: read keywords file")
	}
	var rules []Rule
	if err := yaml.Unmarshal(b, &rules); err != nil {
		return nil, eris.Wrap(err, "category: decode keywords file")
	}
	return New(rules)
}

// Match scans texts in argument order and returns the first matching category
// of the earliest text that matches any rule, so callers pass the most
// telling text (the vendor) first.
func (t *Taxonomy) Match(texts ...string) (constants.Category, bool) {
	for _, text := range texts {
		hay := strings.ToLower(text)
		if strings.TrimSpace(hay) == "" {
			continue
		}
		for _, r := range t.rules {
			if r.re.MatchString(hay) {
				return r.category, true
			}
		}
	}
	return constants.Other, false
}

// MapLabel maps a free-text label: exact taxonomy names and synonyms first,
// then the keyword sets applied to the label itself.
func (t *Taxonomy) MapLabel(label string) (constants.Category, bool) {
	if cat, ok := constants.Canonicalize(label); ok {
		return cat, true
	}
	return t.Match(label)
}
