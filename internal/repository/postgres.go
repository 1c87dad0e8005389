package repository

import (
	"context"

	"entgo.io/ent/dialect"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/joseph-ayodele/receipts-inbox/constants"
	"github.com/joseph-ayodele/receipts-inbox/internal/common"
	"github.com/joseph-ayodele/receipts-inbox/internal/entity"
	"github.com/joseph-ayodele/receipts-inbox/internal/metrics"
)

// Pool is the subset of pgxpool.Pool the sink uses; pgxmock satisfies it.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Ping(ctx context.Context) error
	Close()
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS receipts (
	id              UUID PRIMARY KEY,
	vendor          TEXT,
	vendor_name     TEXT,
	total_amount    NUMERIC(12,2),
	amount          NUMERIC(12,2),
	order_date      DATE,
	form_of_payment TEXT,
	card_type       TEXT,
	card_last4      CHAR(4),
	category        TEXT NOT NULL,
	tracking_number TEXT,
	email_sender    TEXT NOT NULL,
	subject         TEXT NOT NULL,
	body_text       TEXT NOT NULL,
	body_html       TEXT NOT NULL,
	message_id      TEXT UNIQUE,
	received_at     TIMESTAMPTZ NOT NULL,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_receipts_order_date ON receipts(order_date);
`

// PostgresSink writes records through a pgx pool.
type PostgresSink struct {
	pool Pool
	log  *zap.Logger
}

func NewPostgresSink(pool Pool, logger *zap.Logger) *PostgresSink {
	return &PostgresSink{pool: pool, log: common.OrNop(logger)}
}

// Migrate creates the receipts table when missing.
func (s *PostgresSink) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresSink) Save(ctx context.Context, rec *entity.ReceiptRecord) (constants.SaveStatus, error) {
	query, args := insertReceipt(dialect.Postgres, rec)
	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		metrics.RecordSinkSave("postgres", "error")
		s.log.Error("sink.postgres.save_failed",
			zap.String("request_id", common.RequestIDFromContext(ctx)),
			zap.Stringp("message_id", rec.MessageID),
			zap.Error(err))
		return "", common.NewAppError("PERSISTENCE_ERROR", "postgres: insert receipt",
			eris.Wrap(common.ErrPersistence, err.Error()))
	}

	st := statusFor(tag.RowsAffected())
	metrics.RecordSinkSave("postgres", outcome(st))
	s.log.Debug("sink.postgres.saved", zap.Stringp("message_id", rec.MessageID), zap.String("status", string(st)))
	return st, nil
}

func (s *PostgresSink) Close() {
	s.pool.Close()
}
