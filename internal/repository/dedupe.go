package repository

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/joseph-ayodele/receipts-inbox/constants"
	"github.com/joseph-ayodele/receipts-inbox/internal/common"
	"github.com/joseph-ayodele/receipts-inbox/internal/entity"
	"github.com/joseph-ayodele/receipts-inbox/internal/metrics"
)

// RedisClient is the subset of *redis.Client the Deduper uses.
type RedisClient interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// NewRedisClient builds a client from the redis config section.
func NewRedisClient(cfg common.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// Deduper claims each message id in Redis before handing the record to the
// wrapped sink, so redeliveries never reach the database.
type Deduper struct {
	next ReceiptSink
	rdb  RedisClient
	ttl  time.Duration
	log  *zap.Logger
}

func NewDeduper(next ReceiptSink, rdb RedisClient, ttl time.Duration, logger *zap.Logger) *Deduper {
	return &Deduper{next: next, rdb: rdb, ttl: ttl, log: common.OrNop(logger)}
}

func dedupKey(messageID string) string {
	return "dedup:receipt:" + messageID
}

func (d *Deduper) Save(ctx context.Context, rec *entity.ReceiptRecord) (constants.SaveStatus, error) {
	if rec.MessageID == nil || *rec.MessageID == "" {
		return d.next.Save(ctx, rec)
	}
	key := dedupKey(*rec.MessageID)

	ok, err := d.rdb.SetNX(ctx, key, 1, d.ttl).Result()
	if err != nil {
		// redis down: the table's unique message_id still catches duplicates
		d.log.Warn("sink.dedup.check_failed", zap.String("key", key), zap.Error(err))
		return d.next.Save(ctx, rec)
	}
	if !ok {
		metrics.RecordSinkSave("redis", "duplicate")
		d.log.Info("sink.dedup.skipped", zap.String("message_id", *rec.MessageID))
		return constants.SaveStatusDuplicate, nil
	}

	st, err := d.next.Save(ctx, rec)
	if err != nil {
		// release the claim so a redelivery can retry
		if delErr := d.rdb.Del(ctx, key).Err(); delErr != nil {
			d.log.Warn("sink.dedup.release_failed", zap.String("key", key), zap.Error(delErr))
		}
		return "", err
	}
	return st, nil
}
