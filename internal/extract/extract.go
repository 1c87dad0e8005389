// Package extract holds the deterministic field extractors. Every extractor is
// an ordered list of strategies; the first strategy that yields a plausible
// value wins and a miss is reported as an absent result, never an error.
package extract

import (
	"github.com/joseph-ayodele/receipts-inbox/constants"
	"github.com/joseph-ayodele/receipts-inbox/internal/category"
	"github.com/joseph-ayodele/receipts-inbox/internal/entity"
)

// Input is the view of one message every extractor works from.
type Input struct {
	Text    string // normalized text
	HTML    string // raw HTML body, may be empty
	Subject string
	Sender  string
}

// Fields is the full deterministic result set for one message.
type Fields struct {
	Vendor         entity.Result[string]
	TotalAmount    entity.Result[entity.Money]
	OrderDate      entity.Result[entity.Date]
	FormOfPayment  entity.Result[constants.FormOfPayment]
	CardType       entity.Result[constants.CardNetwork]
	CardLast4      entity.Result[string]
	Category       entity.Result[string]
	CategoryLabel  entity.Result[string]
	TrackingNumber entity.Result[string]
}

// Extractor runs every deterministic extractor. It holds only the immutable
// keyword taxonomy and is safe for concurrent use.
type Extractor struct {
	tax *category.Taxonomy
}

func New(tax *category.Taxonomy) *Extractor {
	if tax == nil {
		tax = category.Default()
	}
	return &Extractor{tax: tax}
}

// Extract runs all extractors against in.
func (e *Extractor) Extract(in Input) Fields {
	vendor := Vendor(in.Text, in.HTML, in.Sender)
	pay := PaymentFrom(in.Text, in.HTML)
	return Fields{
		Vendor:         vendor,
		TotalAmount:    TotalAmount(in.Text),
		OrderDate:      OrderDate(in.Text),
		FormOfPayment:  pay.Form,
		CardType:       pay.Network,
		CardLast4:      pay.Last4,
		Category:       Category(in.Text, in.Subject, vendor.Value(), e.tax),
		CategoryLabel:  CategoryLabel(in.Text),
		TrackingNumber: TrackingNumber(in.Text, in.Subject),
	}
}
