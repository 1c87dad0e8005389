package extract

import (
	"net/mail"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/net/html"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/joseph-ayodele/receipts-inbox/internal/entity"
)

// vendorName is up to four capitalised words, the first starting upper-case.
const vendorName = `([A-Z][A-Za-z0-9&'\-]*(?:\.[A-Za-z]{2,})?(?: (?:[A-Z0-9][A-Za-z0-9&'\-]*(?:\.[A-Za-z]{2,})?|&|of|and|de)){0,3})`

var vendorPhrases = []*regexp.Regexp{
	regexp.MustCompile(`(?i:thank you for shopping (?:at|with))\s+` + vendorName),
	regexp.MustCompile(`(?i:\bsold by)\s+` + vendorName),
	regexp.MustCompile(`(?i:\bpurchase from)\s+` + vendorName),
	regexp.MustCompile(`(?i:\bfrom)\s+` + vendorName),
}

var (
	vendorLabelRe = regexp.MustCompile(`(?im)^[ \t]*(?:vendor|merchant)[ \t]*:[ \t]*([^\n]+?)[ \t]*$`)
	logoWordRe    = regexp.MustCompile(`(?i)\blogo\b`)
)

// vendorStopWords end a captured name: "from Target Your order" keeps "Target".
var vendorStopWords = map[string]struct{}{
	"Your": {}, "Order": {}, "Receipt": {}, "Total": {}, "Thank": {}, "Thanks": {},
	"Date": {}, "Invoice": {}, "Payment": {}, "On": {}, "Has": {}, "Is": {}, "Was": {},
}

// genericVendorPhrases never name a merchant.
var genericVendorPhrases = map[string]struct{}{
	"thank you": {}, "thanks": {}, "receipt": {}, "your receipt": {}, "order": {},
	"your order": {}, "invoice": {}, "payment": {}, "customer": {}, "purchase": {},
	"order confirmation": {}, "vendor": {}, "merchant": {}, "store": {}, "unknown": {},
	"n/a": {}, "none": {}, "null": {},
}

var webmailDomains = map[string]struct{}{
	"gmail": {}, "googlemail": {}, "yahoo": {}, "ymail": {}, "hotmail": {}, "outlook": {},
	"live": {}, "msn": {}, "aol": {}, "icloud": {}, "me": {}, "mac": {}, "proton": {},
	"protonmail": {}, "pm": {}, "gmx": {}, "mail": {}, "zoho": {}, "yandex": {}, "fastmail": {},
}

// secondLevelSuffixes are public suffixes with two labels ("co.uk").
var secondLevelSuffixes = map[string]struct{}{
	"co.uk": {}, "org.uk": {}, "ac.uk": {}, "com.au": {}, "net.au": {}, "co.nz": {},
	"co.jp": {}, "com.br": {}, "co.in": {}, "com.mx": {}, "co.za": {},
}

// PlausibleVendor rejects names with fewer than two letters and generic
// phrases such as "Thank you" or "Your order".
func PlausibleVendor(name string) bool {
	name = strings.TrimSpace(name)
	letters := 0
	for _, r := range name {
		if unicode.IsLetter(r) {
			letters++
		}
	}
	if letters < 2 {
		return false
	}
	key := strings.ToLower(strings.Trim(name, " .,:;!-"))
	if _, ok := genericVendorPhrases[key]; ok {
		return false
	}
	return !strings.HasPrefix(key, "thank you")
}

// Vendor tries phrases, the label line, a logo image and the sender domain.
func Vendor(text, htmlDoc, sender string) entity.Result[string] {
	if v, ok := vendorFromPhrases(text); ok {
		return entity.Found(v, entity.SourceRegex)
	}
	for _, m := range vendorLabelRe.FindAllStringSubmatch(text, -1) {
		if v := strings.TrimSpace(m[1]); PlausibleVendor(v) {
			return entity.Found(v, entity.SourceRegex)
		}
	}
	if v, ok := vendorFromLogo(htmlDoc); ok {
		return entity.Found(v, entity.SourceHTMLLogo)
	}
	if v, ok := VendorFromSender(sender); ok {
		return entity.Found(v, entity.SourceContextual)
	}
	return entity.Absent[string]()
}

func vendorFromPhrases(text string) (string, bool) {
	for _, re := range vendorPhrases {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			if v := trimVendor(m[1]); PlausibleVendor(v) {
				return v, true
			}
		}
	}
	return "", false
}

func trimVendor(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		if i == 0 {
			continue
		}
		if _, stop := vendorStopWords[w]; stop {
			words = words[:i]
			break
		}
	}
	for len(words) > 1 {
		last := strings.ToLower(words[len(words)-1])
		if last != "&" && last != "of" && last != "and" && last != "de" {
			break
		}
		words = words[:len(words)-1]
	}
	return strings.TrimRight(strings.Join(words, " "), ".,'-")
}

func vendorFromLogo(htmlDoc string) (string, bool) {
	var found string
	walk(parseHTML(htmlDoc), func(n *html.Node) bool {
		if found != "" {
			return false
		}
		if !isElement(n, "img") {
			return true
		}
		alt := attr(n, "alt")
		hint := strings.ToLower(attr(n, "src") + " " + alt + " " + attr(n, "class") + " " + attr(n, "id"))
		if !strings.Contains(hint, "logo") {
			return true
		}
		v := strings.Join(strings.Fields(logoWordRe.ReplaceAllString(alt, " ")), " ")
		v = strings.Trim(v, " -|:")
		if PlausibleVendor(v) {
			found = v
		}
		return true
	})
	return found, found != ""
}

// VendorFromSender title-cases the sender's registrable domain label,
// ignoring public webmail providers.
func VendorFromSender(sender string) (string, bool) {
	addr := strings.TrimSpace(sender)
	if parsed, err := mail.ParseAddress(addr); err == nil {
		addr = parsed.Address
	}
	at := strings.LastIndex(addr, "@")
	if at < 0 {
		return "", false
	}
	domain := strings.ToLower(strings.Trim(addr[at+1:], " >."))
	labels := strings.Split(domain, ".")
	if len(labels) < 2 {
		return "", false
	}
	idx := len(labels) - 2
	if len(labels) >= 3 {
		if _, ok := secondLevelSuffixes[strings.Join(labels[len(labels)-2:], ".")]; ok {
			idx = len(labels) - 3
		}
	}
	label := labels[idx]
	if _, ok := webmailDomains[label]; ok {
		return "", false
	}
	v := cases.Title(language.English).String(strings.ReplaceAll(label, "-", " "))
	if !PlausibleVendor(v) {
		return "", false
	}
	return v, true
}
