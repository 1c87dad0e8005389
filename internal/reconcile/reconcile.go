// Package reconcile merges model proposals with deterministic extraction,
// field by field, recording which source won.
package reconcile

import (
	"github.com/joseph-ayodele/receipts-inbox/constants"
	"github.com/joseph-ayodele/receipts-inbox/internal/entity"
	"github.com/joseph-ayodele/receipts-inbox/internal/extract"
	"github.com/joseph-ayodele/receipts-inbox/internal/llm"
)

// Fields is the reconciled value of every extracted field.
type Fields struct {
	Vendor         entity.Result[string]
	TotalAmount    entity.Result[entity.Money]
	OrderDate      entity.Result[entity.Date]
	FormOfPayment  entity.Result[constants.FormOfPayment]
	CardType       entity.Result[constants.CardNetwork]
	CardLast4      entity.Result[string]
	Category       entity.Result[string]
	TrackingNumber entity.Result[string]
}

// Provenance reports the winning source of each field.
func (f Fields) Provenance() entity.Provenance {
	return entity.Provenance{
		entity.FieldVendor:         f.Vendor.Source(),
		entity.FieldTotalAmount:    f.TotalAmount.Source(),
		entity.FieldOrderDate:      f.OrderDate.Source(),
		entity.FieldFormOfPayment:  f.FormOfPayment.Source(),
		entity.FieldCardType:       f.CardType.Source(),
		entity.FieldCardLast4:      f.CardLast4.Source(),
		entity.FieldCategory:       f.Category.Source(),
		entity.FieldTrackingNumber: f.TrackingNumber.Source(),
	}
}

// Reconcile prefers the model's value for each field unless it is missing or
// fails that field's acceptance check, in which case the deterministic value
// is used. text is the normalized message, consulted for refund context.
func Reconcile(model llm.ModelFields, det extract.Fields, text string) Fields {
	refund := extract.HasRefundContext(text)

	out := Fields{
		Vendor: pick(model.Vendor, det.Vendor, extract.PlausibleVendor),
		TotalAmount: pick(model.TotalAmount, det.TotalAmount, func(m entity.Money) bool {
			return !m.IsNegative() || refund
		}),
		OrderDate:      pick(model.OrderDate, det.OrderDate, nil),
		FormOfPayment:  pick(model.FormOfPayment, det.FormOfPayment, nil),
		CardType:       pick(model.CardType, det.CardType, nil),
		CardLast4:      pick(model.CardLast4, det.CardLast4, nil),
		Category:       pick(model.Category, det.Category, nil),
		TrackingNumber: pick(model.TrackingNumber, det.TrackingNumber, nil),
	}

	if !out.FormOfPayment.OK() && (out.CardType.OK() || out.CardLast4.OK()) {
		out.FormOfPayment = entity.Found(constants.PaymentCard, entity.SourceInferred)
	}
	return out
}

// pick returns model when present and accepted, else det (which may itself be
// absent).
func pick[T any](model, det entity.Result[T], accept func(T) bool) entity.Result[T] {
	if v, ok := model.Get(); ok && (accept == nil || accept(v)) {
		return model
	}
	if det.OK() {
		return det
	}
	return entity.Absent[T]()
}
