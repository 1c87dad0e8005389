package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/receipts-inbox/constants"
	"github.com/joseph-ayodele/receipts-inbox/internal/common"
	"github.com/joseph-ayodele/receipts-inbox/internal/entity"
)

const insertPattern = `INSERT INTO "receipts" .+ ON CONFLICT .*"message_id".* DO NOTHING`

func newMockPostgresSink(t *testing.T) (*PostgresSink, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })
	return NewPostgresSink(mock, nil), mock
}

func sampleRecord(id string) *entity.ReceiptRecord {
	vendor := "Corner Deli"
	total, _ := entity.ParseMoney("8.40")
	rec := &entity.ReceiptRecord{
		Vendor:      &vendor,
		VendorName:  &vendor,
		TotalAmount: &total,
		Amount:      &total,
		Category:    string(constants.Dining),
		EmailSender: "receipts@cornerdeli.com",
		Subject:     "Your receipt",
		BodyText:    "Total $8.40",
		ReceivedAt:  time.Date(2025, 6, 3, 10, 0, 0, 0, time.UTC),
	}
	if id != "" {
		rec.MessageID = &id
	}
	return rec
}

func expectedArgs(rec *entity.ReceiptRecord) []any {
	return append([]any{pgxmock.AnyArg()}, rec.Row()...)
}

func TestPostgresSink_SaveNew(t *testing.T) {
	s, mock := newMockPostgresSink(t)
	rec := sampleRecord("m-1")

	mock.ExpectExec(insertPattern).
		WithArgs(expectedArgs(rec)...).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	st, err := s.Save(context.Background(), rec)
	require.NoError(t, err)
	assert.Equal(t, constants.SaveStatusSaved, st)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSink_SaveDuplicate(t *testing.T) {
	s, mock := newMockPostgresSink(t)
	rec := sampleRecord("m-1")

	mock.ExpectExec(insertPattern).
		WithArgs(expectedArgs(rec)...).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	st, err := s.Save(context.Background(), rec)
	require.NoError(t, err)
	assert.Equal(t, constants.SaveStatusDuplicate, st)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSink_SaveFailure(t *testing.T) {
	s, mock := newMockPostgresSink(t)
	rec := sampleRecord("m-1")

	mock.ExpectExec(insertPattern).
		WithArgs(expectedArgs(rec)...).
		WillReturnError(errors.New("connection reset"))

	st, err := s.Save(context.Background(), rec)
	require.Error(t, err)
	assert.Empty(t, st)
	assert.ErrorIs(t, err, common.ErrPersistence)
	assert.Contains(t, err.Error(), "connection reset")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSink_Migrate(t *testing.T) {
	s, mock := newMockPostgresSink(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS receipts`).
		WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))

	require.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHealthCheck(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectPing()
	require.NoError(t, HealthCheck(context.Background(), mock, time.Second, nil))

	mock.ExpectPing().WillReturnError(errors.New("refused"))
	err = HealthCheck(context.Background(), mock, 0, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "refused")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConfigFrom(t *testing.T) {
	cfg := ConfigFrom(common.StoreConfig{DSN: "postgres://x", MaxConns: 5, DialTimeout: time.Second})
	assert.Equal(t, "postgres://x", cfg.DSN)
	assert.Equal(t, int32(5), cfg.MaxConns)
	assert.Equal(t, time.Second, cfg.DialTimeout)
}
