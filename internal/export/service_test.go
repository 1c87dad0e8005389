package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/receipts-inbox/constants"
	"github.com/joseph-ayodele/receipts-inbox/internal/entity"
)

func ptr[T any](v T) *T { return &v }

func TestReceiptsXLSX(t *testing.T) {
	total, err := entity.ParseMoney("45.00")
	require.NoError(t, err)
	date, ok := entity.NewDate(2025, time.June, 3)
	require.True(t, ok)

	recs := []*entity.ReceiptRecord{
		{
			Vendor:         ptr("Whole Foods Market"),
			TotalAmount:    &total,
			OrderDate:      &date,
			FormOfPayment:  ptr(constants.PaymentCard),
			CardType:       ptr(constants.Visa),
			CardLast4:      ptr("1234"),
			Category:       "Groceries",
			TrackingNumber: ptr("A1234"),
			EmailSender:    "receipts@wholefoods.com",
			Subject:        "Your receipt",
		},
		{Category: "Other", EmailSender: "x@y.com", Subject: strings.Repeat("s", 200)},
	}

	buf, err := NewService(nil).ReceiptsXLSX(recs)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(buf))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, headers, rows[0])

	assert.Equal(t, "2025-06-03", rows[1][0])
	assert.Equal(t, "Groceries", rows[1][1])
	assert.Equal(t, "Whole Foods Market", rows[1][2])
	assert.Equal(t, "Card", rows[1][4])
	assert.Equal(t, "Visa •••• 1234", rows[1][5])
	assert.Equal(t, "A1234", rows[1][6])

	amount, err := f.GetCellValue(sheet, "D2", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "45", amount)

	subject, err := f.GetCellValue(sheet, "I3")
	require.NoError(t, err)
	assert.Equal(t, 140, len([]rune(subject)))
	assert.True(t, strings.HasSuffix(subject, "…"))
}

func TestCardLabel(t *testing.T) {
	assert.Equal(t, "", cardLabel(&entity.ReceiptRecord{}))
	assert.Equal(t, "AMEX", cardLabel(&entity.ReceiptRecord{CardType: ptr(constants.AMEX)}))
	assert.Equal(t, "•••• 0005", cardLabel(&entity.ReceiptRecord{CardLast4: ptr("0005")}))
}
