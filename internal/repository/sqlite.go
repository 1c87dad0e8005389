package repository

import (
	"context"
	"database/sql"

	"entgo.io/ent/dialect"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/joseph-ayodele/receipts-inbox/constants"
	"github.com/joseph-ayodele/receipts-inbox/internal/common"
	"github.com/joseph-ayodele/receipts-inbox/internal/entity"
	"github.com/joseph-ayodele/receipts-inbox/internal/metrics"
)

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS receipts (
	id              TEXT PRIMARY KEY,
	vendor          TEXT,
	vendor_name     TEXT,
	total_amount    TEXT,
	amount          TEXT,
	order_date      TEXT,
	form_of_payment TEXT,
	card_type       TEXT,
	card_last4      TEXT,
	category        TEXT NOT NULL,
	tracking_number TEXT,
	email_sender    TEXT NOT NULL,
	subject         TEXT NOT NULL,
	body_text       TEXT NOT NULL,
	body_html       TEXT NOT NULL,
	message_id      TEXT UNIQUE,
	received_at     DATETIME NOT NULL,
	created_at      DATETIME NOT NULL DEFAULT (datetime('now'))
);
CREATE INDEX IF NOT EXISTS idx_receipts_order_date ON receipts(order_date);
`

// SQLiteSink writes records to a local SQLite file via modernc.org/sqlite.
type SQLiteSink struct {
	db  *sql.DB
	log *zap.Logger
}

// NewSQLiteSink opens dsn in WAL mode and creates the schema.
func NewSQLiteSink(ctx context.Context, dsn string, logger *zap.Logger) (*SQLiteSink, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, stmt := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		sqliteMigration,
	} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, eris.Wrap(err, "sqlite: init")
		}
	}
	return &SQLiteSink{db: db, log: common.OrNop(logger)}, nil
}

func (s *SQLiteSink) Save(ctx context.Context, rec *entity.ReceiptRecord) (constants.SaveStatus, error) {
	query, args := insertReceipt(dialect.SQLite, rec)
	res, err := s.db.ExecContext(ctx, query, args...)
	if err == nil {
		var n int64
		if n, err = res.RowsAffected(); err == nil {
			st := statusFor(n)
			metrics.RecordSinkSave("sqlite", outcome(st))
			return st, nil
		}
	}

	metrics.RecordSinkSave("sqlite", "error")
	s.log.Error("sink.sqlite.save_failed", zap.Stringp("message_id", rec.MessageID), zap.Error(err))
	return "", common.NewAppError("PERSISTENCE_ERROR", "sqlite: insert receipt",
		eris.Wrap(common.ErrPersistence, err.Error()))
}

func (s *SQLiteSink) Close() error {
	return s.db.Close()
}
