// Package record assembles the final ReceiptRecord.
package record

import (
	"encoding/json"

	"github.com/rotisserie/eris"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/receipts-inbox/constants"
	"github.com/joseph-ayodele/receipts-inbox/internal/entity"
	"github.com/joseph-ayodele/receipts-inbox/internal/reconcile"
)

// Build assembles a record from reconciled fields and the message's
// pass-through metadata. The legacy vendor_name and amount columns mirror
// vendor and total_amount.
func Build(f reconcile.Fields, msg entity.RawMessage) *entity.ReceiptRecord {
	category := f.Category.Value()
	if category == "" {
		category = string(constants.Other)
	}
	var messageID *string
	if msg.MessageID != nil {
		id := *msg.MessageID
		messageID = &id
	}
	return &entity.ReceiptRecord{
		Vendor:         f.Vendor.Ptr(),
		VendorName:     f.Vendor.Ptr(),
		TotalAmount:    f.TotalAmount.Ptr(),
		Amount:         f.TotalAmount.Ptr(),
		OrderDate:      f.OrderDate.Ptr(),
		FormOfPayment:  f.FormOfPayment.Ptr(),
		CardType:       f.CardType.Ptr(),
		CardLast4:      f.CardLast4.Ptr(),
		Category:       category,
		TrackingNumber: f.TrackingNumber.Ptr(),
		EmailSender:    msg.From,
		Subject:        msg.Subject,
		BodyText:       msg.TextBody,
		BodyHTML:       msg.HTMLBody,
		MessageID:      messageID,
		ReceivedAt:     msg.ReceivedAt.UTC(),
	}
}

// ToStruct renders the record's JSON form as a protobuf Struct.
func ToStruct(rec *entity.ReceiptRecord) (*structpb.Struct, error) {
	b, err := json.Marshal(rec)
	if err != nil {
		return nil, eris.Wrap(err, "record: marshal")
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, eris.Wrap(err, "record: unmarshal")
	}
	s, err := structpb.NewStruct(m)
	if err != nil {
		return nil, eris.Wrap(err, "record: to struct")
	}
	return s, nil
}
