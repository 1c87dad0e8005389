package entity

import (
	"time"

	"github.com/joseph-ayodele/receipts-inbox/constants"
)

// ReceiptRecord is the canonical output of one pipeline run. Nil pointers are
// serialized as explicit nulls; no field is ever omitted.
type ReceiptRecord struct {
	Vendor         *string                  `json:"vendor"`
	VendorName     *string                  `json:"vendor_name"` // legacy alias of vendor
	TotalAmount    *Money                   `json:"total_amount"`
	Amount         *Money                   `json:"amount"` // legacy alias of total_amount
	OrderDate      *Date                    `json:"order_date"`
	FormOfPayment  *constants.FormOfPayment `json:"form_of_payment"`
	CardType       *constants.CardNetwork   `json:"card_type"`
	CardLast4      *string                  `json:"card_last4"`
	Category       string                   `json:"category"`
	TrackingNumber *string                  `json:"tracking_number"`
	EmailSender    string                   `json:"email_sender"`
	Subject        string                   `json:"subject"`
	BodyText       string                   `json:"body_text"`
	BodyHTML       string                   `json:"body_html"`
	MessageID      *string                  `json:"message_id"`
	ReceivedAt     time.Time                `json:"received_at"`
}

// ReceiptColumns is the column order sinks persist a record in.
var ReceiptColumns = []string{
	"vendor",
	"vendor_name",
	"total_amount",
	"amount",
	"order_date",
	"form_of_payment",
	"card_type",
	"card_last4",
	"category",
	"tracking_number",
	"email_sender",
	"subject",
	"body_text",
	"body_html",
	"message_id",
	"received_at",
}

// Row flattens the record in ReceiptColumns order. Nulls are nil; amounts and
// dates are rendered as strings so every driver stores them without loss.
func (r *ReceiptRecord) Row() []any {
	return []any{
		strOrNil(r.Vendor),
		strOrNil(r.VendorName),
		stringerOrNil(r.TotalAmount),
		stringerOrNil(r.Amount),
		stringerOrNil(r.OrderDate),
		strOrNil(r.FormOfPayment),
		strOrNil(r.CardType),
		strOrNil(r.CardLast4),
		r.Category,
		strOrNil(r.TrackingNumber),
		r.EmailSender,
		r.Subject,
		r.BodyText,
		r.BodyHTML,
		strOrNil(r.MessageID),
		r.ReceivedAt,
	}
}

func strOrNil[T ~string](p *T) any {
	if p == nil {
		return nil
	}
	return string(*p)
}

func stringerOrNil[T any, P interface {
	*T
	String() string
}](p P) any {
	if p == nil {
		return nil
	}
	return p.String()
}
