package pipeline

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/receipts-inbox/constants"
	"github.com/joseph-ayodele/receipts-inbox/internal/common"
	"github.com/joseph-ayodele/receipts-inbox/internal/entity"
	"github.com/joseph-ayodele/receipts-inbox/internal/llm"
	"github.com/joseph-ayodele/receipts-inbox/internal/normalize"
)

func modelReplying(t *testing.T, reply string) ModelExtractor {
	t.Helper()
	ex, err := llm.NewModelExtractor(llm.CompleterFunc(func(context.Context, string) (string, error) {
		return reply, nil
	}), 0, nil)
	require.NoError(t, err)
	return ex
}

type panickingModel struct{}

func (panickingModel) Extract(context.Context, llm.Request) (llm.ModelFields, error) {
	panic("boom")
}

func message(text string) entity.RawMessage {
	id := "<m1@example.com>"
	return entity.RawMessage{
		From:       "Receipts <no-reply@example-shop.com>",
		Subject:    "Your receipt",
		TextBody:   text,
		MessageID:  &id,
		ReceivedAt: time.Date(2025, 6, 3, 10, 0, 0, 0, time.UTC),
	}
}

func TestProcess_ModelTimeoutFallsBackToDeterministic(t *testing.T) {
	blocking, err := llm.NewModelExtractor(llm.CompleterFunc(func(ctx context.Context, _ string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}), 0, nil)
	require.NoError(t, err)

	p := New(Config{ModelTimeout: 50 * time.Millisecond}, blocking, nil, nil)
	res, err := p.Process(context.Background(), message("Thank you for your purchase from Blue Bottle Coffee.\nTotal $6.50"))
	require.NoError(t, err)

	require.NotNil(t, res.Record.Vendor)
	assert.Equal(t, "Blue Bottle Coffee", *res.Record.Vendor)
	assert.Equal(t, entity.SourceRegex, res.Provenance[entity.FieldVendor])
	assert.Equal(t, "6.50", res.Record.TotalAmount.String())
}

func TestProcess_DiscardsImplausibleModelVendor(t *testing.T) {
	model := modelReplying(t, `{"vendor":"Thank you","total_amount":"6.50"}`)
	p := New(Config{}, model, nil, nil)

	res, err := p.Process(context.Background(), message("Thank you for shopping at Corner Deli\nTotal $6.50"))
	require.NoError(t, err)

	assert.Equal(t, "Corner Deli", *res.Record.Vendor)
	assert.Equal(t, entity.SourceRegex, res.Provenance[entity.FieldVendor])
	assert.Equal(t, entity.SourceModel, res.Provenance[entity.FieldTotalAmount])
}

func TestProcess_KeywordOverridesModelCategory(t *testing.T) {
	model := modelReplying(t, `{"vendor":"Whole Foods Market","total_amount":"23.10","category":"Shopping"}`)
	p := New(Config{}, model, nil, nil)

	res, err := p.Process(context.Background(), message("Thanks for your order.\nTotal $23.10"))
	require.NoError(t, err)

	assert.Equal(t, "Groceries", res.Record.Category)
	assert.Equal(t, entity.SourceInferred, res.Provenance[entity.FieldCategory])
}

func TestProcess_VendorCategoryBeatsFooterKeywords(t *testing.T) {
	p := New(Config{}, nil, nil, nil)
	text := "Thank you for shopping at Best Buy\n" +
		"Total $45.00\n" +
		"Questions? Call us toll-free at 1-888-237-8289"

	res, err := p.Process(context.Background(), message(text))
	require.NoError(t, err)

	assert.Equal(t, "Best Buy", *res.Record.Vendor)
	assert.Equal(t, "Shopping", res.Record.Category)
}

func TestProcess_DeterministicOnly(t *testing.T) {
	p := New(Config{}, nil, nil, nil)
	text := "Thank you for shopping at Whole Foods Market.\n" +
		"June 3, 2025\n" +
		"Total Tax $3.00\nTotal Tender $45.00\n" +
		"Visa xxxxxxxxxx1234"

	res, err := p.Process(context.Background(), message(text))
	require.NoError(t, err)

	rec := res.Record
	assert.Equal(t, normalize.OriginPlain, res.Origin)
	assert.Equal(t, "Whole Foods Market", *rec.Vendor)
	assert.Equal(t, "Whole Foods Market", *rec.VendorName)
	assert.Equal(t, "45.00", rec.TotalAmount.String())
	assert.Equal(t, "45.00", rec.Amount.String())
	assert.Equal(t, "2025-06-03", rec.OrderDate.String())
	assert.Equal(t, constants.PaymentCard, *rec.FormOfPayment)
	assert.Equal(t, constants.Visa, *rec.CardType)
	assert.Equal(t, "1234", *rec.CardLast4)
	assert.Equal(t, "Groceries", rec.Category)
	assert.Len(t, res.Provenance, len(entity.ExtractedFields))
}

func TestProcess_EveryFieldPresent(t *testing.T) {
	p := New(Config{}, nil, nil, nil)
	res, err := p.Process(context.Background(), entity.RawMessage{})
	require.NoError(t, err)
	assert.Equal(t, normalize.OriginNone, res.Origin)

	b, err := json.Marshal(res.Record)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	for _, col := range entity.ReceiptColumns {
		assert.Contains(t, m, col)
	}
	assert.Equal(t, "Other", m["category"])
}

func TestProcess_HTMLFallback(t *testing.T) {
	msg := message("Sent from my iPhone")
	msg.HTMLBody = `<html><body><img src="/logo.png" alt="Lakeside Books logo">` +
		`<p>Thanks for visiting us today</p>` +
		`<table><tr><td>Order Total</td><td>$18.75</td></tr></table></body></html>`
	p := New(Config{}, nil, nil, nil)

	res, err := p.Process(context.Background(), msg)
	require.NoError(t, err)

	assert.Equal(t, normalize.OriginHTML, res.Origin)
	assert.Equal(t, "Lakeside Books", *res.Record.Vendor)
	assert.Equal(t, entity.SourceHTMLLogo, res.Provenance[entity.FieldVendor])
	assert.Equal(t, "18.75", res.Record.TotalAmount.String())
}

func TestProcess_Idempotent(t *testing.T) {
	model := modelReplying(t, `{"vendor":"Acme","total_amount":"12.00","order_date":"2025-06-01","category":"Shopping"}`)
	p := New(Config{}, model, nil, nil)
	msg := message("Thank you for your purchase from Acme.\nTotal $12.00")

	first, err := p.Process(context.Background(), msg)
	require.NoError(t, err)
	second, err := p.Process(context.Background(), msg)
	require.NoError(t, err)

	a, err := json.Marshal(first.Record)
	require.NoError(t, err)
	b, err := json.Marshal(second.Record)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
	assert.Equal(t, first.Provenance, second.Provenance)
}

func TestProcess_RecoversPanic(t *testing.T) {
	p := New(Config{}, panickingModel{}, nil, nil)

	res, err := p.Process(context.Background(), message("Total $1.00"))
	assert.Nil(t, res)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrProcessing)
}
