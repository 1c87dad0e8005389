package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/joseph-ayodele/receipts-inbox/constants"
	"github.com/joseph-ayodele/receipts-inbox/internal/entity"
)

func TestExtractor_Extract(t *testing.T) {
	in := Input{
		Text: "Thank you for shopping at Whole Foods Market.\n" +
			"Order #WF-20250603-77\n" +
			"June 3, 2025\n" +
			"Subtotal $42.00\nTotal Tax $3.00\nTotal Tender $45.00\n" +
			"Visa xxxxxxxxxx1234",
		Subject: "Your Whole Foods Market receipt",
		Sender:  "receipts@wholefoodsmarket.com",
	}

	got := New(nil).Extract(in)

	assert.Equal(t, "Whole Foods Market", got.Vendor.Value())
	assert.Equal(t, "45.00", got.TotalAmount.Value().String())
	assert.Equal(t, "2025-06-03", got.OrderDate.Value().String())
	assert.Equal(t, constants.PaymentCard, got.FormOfPayment.Value())
	assert.Equal(t, constants.Visa, got.CardType.Value())
	assert.Equal(t, "1234", got.CardLast4.Value())
	assert.Equal(t, "Groceries", got.Category.Value())
	assert.Equal(t, entity.SourceInferred, got.Category.Source())
	assert.False(t, got.CategoryLabel.OK())
	assert.Equal(t, "WF-20250603-77", got.TrackingNumber.Value())
}
