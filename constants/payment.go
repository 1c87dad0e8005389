package constants

import "strings"

// FormOfPayment is the coarse payment instrument stored on a receipt.
type FormOfPayment string

const (
	PaymentCard FormOfPayment = "Card"
	PaymentCash FormOfPayment = "Cash"
)

// CardNetwork is the canonical short name of a card brand.
type CardNetwork string

const (
	Visa       CardNetwork = "Visa"
	MasterCard CardNetwork = "MasterCard"
	AMEX       CardNetwork = "AMEX"
	Discover   CardNetwork = "Discover"
	Diners     CardNetwork = "Diners"
	JCB        CardNetwork = "JCB"
	UnionPay   CardNetwork = "UnionPay"
)

var networkAliases = map[string]CardNetwork{
	"visa":             Visa,
	"mastercard":       MasterCard,
	"master card":      MasterCard,
	"master-card":      MasterCard,
	"mc":               MasterCard,
	"amex":             AMEX,
	"american express": AMEX,
	"americanexpress":  AMEX,
	"american-express": AMEX,
	"discover":         Discover,
	"diners":           Diners,
	"diners club":      Diners,
	"jcb":              JCB,
	"unionpay":         UnionPay,
	"union pay":        UnionPay,
	"china unionpay":   UnionPay,
}

// CanonicalNetwork folds brand spellings ("American Express", "Mastercard")
// onto the fixed short set.
func CanonicalNetwork(s string) (CardNetwork, bool) {
	k := strings.Join(strings.Fields(strings.ToLower(s)), " ")
	n, ok := networkAliases[k]
	return n, ok
}

// CanonicalFormOfPayment accepts "card", "credit card", "debit", "cash".
func CanonicalFormOfPayment(s string) (FormOfPayment, bool) {
	k := strings.ToLower(strings.TrimSpace(s))
	switch {
	case k == "":
		return "", false
	case k == "cash":
		return PaymentCash, true
	case strings.Contains(k, "card"), strings.Contains(k, "credit"), strings.Contains(k, "debit"):
		return PaymentCard, true
	}
	if _, ok := CanonicalNetwork(k); ok {
		return PaymentCard, true
	}
	return "", false
}
