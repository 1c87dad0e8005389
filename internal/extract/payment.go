package extract

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/joseph-ayodele/receipts-inbox/constants"
	"github.com/joseph-ayodele/receipts-inbox/internal/entity"
)

// maxBrandGap is how far (in bytes, same line) a brand may sit from its mask.
const maxBrandGap = 24

var (
	brandRe = regexp.MustCompile(`(?i)\b(visa|master[ \-]?card|amex|american[ \t]+express|discover|diners(?:[ \t]+club)?|jcb|union[ \t]?pay)\b`)
	// maskRe captures exactly four digits behind a mask run or "ending in".
	maskRe = regexp.MustCompile(`(?i)(?:(?:[x*•●·]{2,}[ \-]?)+(\d{4})|ending(?:[ \t]+in)?[ \t]*:?[ \t]*(\d{4}))\b`)
	// accountRe is an "Account: ****1234" line.
	accountRe     = regexp.MustCompile(`(?im)^[ \t]*account(?:[ \t]+(?:number|no\.?))?[ \t]*:[ \t]*[x*•●·\- \t]{2,}(\d{4})\b`)
	contactlessRe = regexp.MustCompile(`(?i)\bcontactless\b`)
	cashRe        = regexp.MustCompile(`(?i)\bcash\b`)
	// imgBrandRe matches file names like cc_visa.png, so no word boundaries.
	imgBrandRe  = regexp.MustCompile(`(?i)(visa|master[ \-_]?card|amex|american[ \-_]?express|discover|diners|jcb|union[ \-_]?pay)`)
	fourDigitRe = regexp.MustCompile(`(?:^|[^\d])(\d{4})(?:[^\d]|$)`)
)

// Payment is the combined payment-instrument result.
type Payment struct {
	Form    entity.Result[constants.FormOfPayment]
	Network entity.Result[constants.CardNetwork]
	Last4   entity.Result[string]
}

// PaymentFrom scans text for a brand next to masked digits, then an account
// line plus a brand anywhere, then card rows in the HTML, and finally the
// contactless and cash hints.
func PaymentFrom(text, htmlDoc string) Payment {
	if p, ok := paymentFromLines(text); ok {
		return p
	}
	if p, ok := paymentFromAccount(text); ok {
		return p
	}
	if p, ok := paymentFromHTML(htmlDoc); ok {
		return p
	}
	if contactlessRe.MatchString(text) {
		return Payment{
			Form:    entity.Found(constants.PaymentCard, entity.SourceInferred),
			Network: entity.Absent[constants.CardNetwork](),
			Last4:   entity.Absent[string](),
		}
	}
	if cashRe.MatchString(text) && !brandRe.MatchString(text) && !maskRe.MatchString(text) {
		return Payment{
			Form:    entity.Found(constants.PaymentCash, entity.SourceInferred),
			Network: entity.Absent[constants.CardNetwork](),
			Last4:   entity.Absent[string](),
		}
	}
	return Payment{}
}

func cardPayment(network constants.CardNetwork, last4 string, src entity.Source) Payment {
	return Payment{
		Form:    entity.Found(constants.PaymentCard, src),
		Network: entity.Found(network, src),
		Last4:   entity.Found(last4, src),
	}
}

func paymentFromLines(text string) (Payment, bool) {
	for _, line := range strings.Split(text, "\n") {
		brands := brandRe.FindAllStringSubmatchIndex(line, -1)
		if len(brands) == 0 {
			continue
		}
		masks := maskRe.FindAllStringSubmatchIndex(line, -1)
		for _, b := range brands {
			network, ok := constants.CanonicalNetwork(line[b[2]:b[3]])
			if !ok {
				continue
			}
			for _, m := range masks {
				if gap(b, m) > maxBrandGap {
					continue
				}
				return cardPayment(network, maskDigits(line, m), entity.SourceRegex), true
			}
		}
	}
	return Payment{}, false
}

func paymentFromAccount(text string) (Payment, bool) {
	acct := accountRe.FindStringSubmatch(text)
	if acct == nil {
		return Payment{}, false
	}
	for _, b := range brandRe.FindAllStringSubmatch(text, -1) {
		if network, ok := constants.CanonicalNetwork(b[1]); ok {
			return cardPayment(network, acct[1], entity.SourceRegex), true
		}
	}
	return Payment{}, false
}

// paymentFromHTML looks for a table row holding a card-network image and a
// four-digit token.
func paymentFromHTML(htmlDoc string) (Payment, bool) {
	var (
		out   Payment
		found bool
	)
	walk(parseHTML(htmlDoc), func(n *html.Node) bool {
		if found {
			return false
		}
		if !isElement(n, "tr") {
			return true
		}
		var network constants.CardNetwork
		walk(n, func(c *html.Node) bool {
			if network != "" || !isElement(c, "img") {
				return network == ""
			}
			if m := imgBrandRe.FindStringSubmatch(attr(c, "src") + " " + attr(c, "alt")); m != nil {
				name := strings.NewReplacer("_", " ", "-", " ").Replace(m[1])
				if nw, ok := constants.CanonicalNetwork(name); ok {
					network = nw
				}
			}
			return true
		})
		if network == "" {
			return true
		}
		row := textContent(n)
		last4 := ""
		if m := maskRe.FindStringSubmatch(row); m != nil {
			last4 = m[1] + m[2]
		} else if m := fourDigitRe.FindStringSubmatch(row); m != nil {
			last4 = m[1]
		}
		if last4 == "" {
			return true
		}
		out, found = cardPayment(network, last4, entity.SourceHTMLLogo), true
		return false
	})
	return out, found
}

// gap is the byte distance between two match spans on one line.
func gap(a, b []int) int {
	switch {
	case a[1] <= b[0]:
		return b[0] - a[1]
	case b[1] <= a[0]:
		return a[0] - b[1]
	default:
		return 0
	}
}

func maskDigits(line string, m []int) string {
	if m[2] >= 0 {
		return line[m[2]:m[3]]
	}
	return line[m[4]:m[5]]
}
