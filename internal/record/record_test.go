package record

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/receipts-inbox/constants"
	"github.com/joseph-ayodele/receipts-inbox/internal/entity"
	"github.com/joseph-ayodele/receipts-inbox/internal/reconcile"
)

func sampleMessage() entity.RawMessage {
	id := "<abc@mail.example.com>"
	return entity.RawMessage{
		From:       "Acme <orders@acme.com>",
		Subject:    "Your receipt",
		TextBody:   "Total $45.00",
		HTMLBody:   "<p>Total $45.00</p>",
		MessageID:  &id,
		ReceivedAt: time.Date(2025, 6, 3, 10, 0, 0, 0, time.UTC),
	}
}

func TestBuild_EmptyFieldsAreNull(t *testing.T) {
	rec := Build(reconcile.Fields{}, entity.RawMessage{})

	b, err := json.Marshal(rec)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	for _, col := range entity.ReceiptColumns {
		assert.Contains(t, m, col)
	}
	assert.Len(t, m, len(entity.ReceiptColumns))
	for _, col := range []string{"vendor", "vendor_name", "total_amount", "amount", "order_date",
		"form_of_payment", "card_type", "card_last4", "tracking_number", "message_id"} {
		assert.Nil(t, m[col], col)
	}
	assert.Equal(t, "Other", m["category"])
}

func TestBuild_Aliases(t *testing.T) {
	date, _ := entity.NewDate(2025, time.June, 3)
	f := reconcile.Fields{
		Vendor:        entity.Found("Acme", entity.SourceRegex),
		TotalAmount:   entity.Found(entity.NewMoney(decimal.RequireFromString("45")), entity.SourceRegex),
		OrderDate:     entity.Found(date, entity.SourceRegex),
		FormOfPayment: entity.Found(constants.PaymentCard, entity.SourceRegex),
		CardType:      entity.Found(constants.Visa, entity.SourceRegex),
		CardLast4:     entity.Found("1234", entity.SourceRegex),
		Category:      entity.Found("Shopping", entity.SourceInferred),
	}

	rec := Build(f, sampleMessage())

	require.NotNil(t, rec.Vendor)
	assert.Equal(t, *rec.Vendor, *rec.VendorName)
	assert.NotSame(t, rec.Vendor, rec.VendorName)
	assert.Equal(t, "45.00", rec.TotalAmount.String())
	assert.True(t, rec.TotalAmount.Equal(*rec.Amount))
	assert.Equal(t, "Acme <orders@acme.com>", rec.EmailSender)
	assert.Equal(t, "<abc@mail.example.com>", *rec.MessageID)

	b, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"vendor": "Acme", "vendor_name": "Acme",
		"total_amount": "45.00", "amount": "45.00",
		"order_date": "2025-06-03",
		"form_of_payment": "Card", "card_type": "Visa", "card_last4": "1234",
		"category": "Shopping", "tracking_number": null,
		"email_sender": "Acme <orders@acme.com>", "subject": "Your receipt",
		"body_text": "Total $45.00", "body_html": "<p>Total $45.00</p>",
		"message_id": "<abc@mail.example.com>",
		"received_at": "2025-06-03T10:00:00Z"
	}`, string(b))
}

func TestBuild_Idempotent(t *testing.T) {
	f := reconcile.Fields{Vendor: entity.Found("Acme", entity.SourceModel)}
	a, err := json.Marshal(Build(f, sampleMessage()))
	require.NoError(t, err)
	b, err := json.Marshal(Build(f, sampleMessage()))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestRow(t *testing.T) {
	f := reconcile.Fields{
		Vendor:      entity.Found("Acme", entity.SourceRegex),
		TotalAmount: entity.Found(entity.NewMoney(decimal.RequireFromString("9.5")), entity.SourceRegex),
	}
	row := Build(f, sampleMessage()).Row()

	require.Len(t, row, len(entity.ReceiptColumns))
	assert.Equal(t, "Acme", row[0])
	assert.Equal(t, "Acme", row[1])
	assert.Equal(t, "9.50", row[2])
	assert.Equal(t, "9.50", row[3])
	assert.Nil(t, row[4])
	assert.Nil(t, row[5])
	assert.Equal(t, "Other", row[8])
	assert.Equal(t, "<abc@mail.example.com>", row[14])
	assert.Equal(t, time.Date(2025, 6, 3, 10, 0, 0, 0, time.UTC), row[15])
}

func TestToStruct(t *testing.T) {
	s, err := ToStruct(Build(reconcile.Fields{Vendor: entity.Found("Acme", entity.SourceModel)}, sampleMessage()))
	require.NoError(t, err)

	assert.Equal(t, "Acme", s.Fields["vendor"].GetStringValue())
	_, isNull := s.Fields["total_amount"].GetKind().(*structpb.Value_NullValue)
	assert.True(t, isNull)
	assert.Len(t, s.Fields, len(entity.ReceiptColumns))
}
