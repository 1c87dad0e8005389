// Package repository persists receipt records.
package repository

import (
	"context"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/receipts-inbox/constants"
	"github.com/joseph-ayodele/receipts-inbox/internal/entity"
)

const receiptsTable = "receipts"

// ReceiptSink stores one record and reports whether it was new.
type ReceiptSink interface {
	Save(ctx context.Context, rec *entity.ReceiptRecord) (constants.SaveStatus, error)
}

// insertReceipt renders the dialect-specific insert for rec. A record whose
// message id is already stored is skipped by the database.
func insertReceipt(d string, rec *entity.ReceiptRecord) (string, []any) {
	cols := append([]string{"id"}, entity.ReceiptColumns...)
	vals := append([]any{uuid.NewString()}, rec.Row()...)
	return entsql.Dialect(d).
		Insert(receiptsTable).
		Columns(cols...).
		Values(vals...).
		OnConflict(entsql.ConflictColumns("message_id"), entsql.DoNothing()).
		Query()
}

func statusFor(rows int64) constants.SaveStatus {
	if rows == 0 {
		return constants.SaveStatusDuplicate
	}
	return constants.SaveStatusSaved
}

func outcome(st constants.SaveStatus) string {
	if st == constants.SaveStatusDuplicate {
		return "duplicate"
	}
	return "saved"
}

var (
	_ ReceiptSink = (*PostgresSink)(nil)
	_ ReceiptSink = (*SQLiteSink)(nil)
	_ ReceiptSink = (*Deduper)(nil)
)
