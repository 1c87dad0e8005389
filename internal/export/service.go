package export

import (
	"time"

	"github.com/rotisserie/eris"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/joseph-ayodele/receipts-inbox/internal/common"
	"github.com/joseph-ayodele/receipts-inbox/internal/entity"
)

const sheet = "Receipts"

var headers = []string{
	"Order Date",
	"Expense Category",
	"Vendor",
	"Amount",
	"Form of Payment",
	"Card",
	"Tracking Number",
	"Sender",
	"Subject",
}

// Service renders processed receipts as an XLSX expense sheet.
type Service struct {
	logger *zap.Logger
}

func NewService(logger *zap.Logger) *Service {
	return &Service{logger: common.OrNop(logger)}
}

// ReceiptsXLSX returns the workbook bytes with one row per record, in order.
// Amounts are numeric cells so the sheet can total them.
func (s *Service) ReceiptsXLSX(recs []*entity.ReceiptRecord) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, eris.Wrap(err, "xlsx: rename sheet")
	}

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i, r := range recs {
		row := i + 2
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		if r.OrderDate != nil {
			write(1, r.OrderDate.String())
		}
		write(2, r.Category)
		if r.Vendor != nil {
			write(3, *r.Vendor)
		}
		if r.TotalAmount != nil {
			write(4, r.TotalAmount.Decimal().InexactFloat64())
		}
		if r.FormOfPayment != nil {
			write(5, string(*r.FormOfPayment))
		}
		write(6, cardLabel(r))
		if r.TrackingNumber != nil {
			write(7, *r.TrackingNumber)
		}
		write(8, r.EmailSender)
		write(9, truncate(r.Subject, 140))
	}

	_ = f.SetColWidth(sheet, "A", "A", 12) // date
	_ = f.SetColWidth(sheet, "B", "C", 24) // category, vendor
	_ = f.SetColWidth(sheet, "D", "D", 12) // amount
	_ = f.SetColWidth(sheet, "E", "G", 18)
	_ = f.SetColWidth(sheet, "H", "I", 40)

	if style, err := f.NewStyle(&excelize.Style{NumFmt: 4}); err == nil { // #,##0.00
		_ = f.SetColStyle(sheet, "D", style)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, eris.Wrap(err, "xlsx: write")
	}

	s.logger.Info("export.xlsx.ok",
		zap.Int("rows", len(recs)),
		zap.Int64("elapsed_ms", time.Since(start).Milliseconds()),
	)
	return buf.Bytes(), nil
}

// cardLabel renders "Visa •••• 1234", "Visa" or "•••• 1234".
func cardLabel(r *entity.ReceiptRecord) string {
	switch {
	case r.CardType != nil && r.CardLast4 != nil:
		return string(*r.CardType) + " •••• " + *r.CardLast4
	case r.CardType != nil:
		return string(*r.CardType)
	case r.CardLast4 != nil:
		return "•••• " + *r.CardLast4
	}
	return ""
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
