// Package pipeline runs one message through normalization, deterministic and
// model extraction, reconciliation and category normalization.
package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/joseph-ayodele/receipts-inbox/internal/category"
	"github.com/joseph-ayodele/receipts-inbox/internal/common"
	"github.com/joseph-ayodele/receipts-inbox/internal/entity"
	"github.com/joseph-ayodele/receipts-inbox/internal/extract"
	"github.com/joseph-ayodele/receipts-inbox/internal/llm"
	"github.com/joseph-ayodele/receipts-inbox/internal/metrics"
	"github.com/joseph-ayodele/receipts-inbox/internal/normalize"
	"github.com/joseph-ayodele/receipts-inbox/internal/reconcile"
	"github.com/joseph-ayodele/receipts-inbox/internal/record"
)

// Config holds the pipeline's tuning knobs.
type Config struct {
	LowValueThreshold int           // default normalize.DefaultLowValueThreshold
	ModelTimeout      time.Duration // 0 means only the caller's deadline applies
}

// ModelExtractor is the model-backed collaborator; *llm.ModelExtractor
// satisfies it.
type ModelExtractor interface {
	Extract(ctx context.Context, req llm.Request) (llm.ModelFields, error)
}

// Result is one processed message.
type Result struct {
	Record     *entity.ReceiptRecord
	Provenance entity.Provenance
	Origin     normalize.Origin
}

// Pipeline holds only immutable configuration and collaborators, so a single
// instance serves concurrent messages.
type Pipeline struct {
	cfg        Config
	extractor  *extract.Extractor
	model      ModelExtractor
	categories *category.Normalizer
	log        *zap.Logger
}

// New builds a pipeline. model may be nil, in which case only deterministic
// extraction runs; tax may be nil for the built-in keyword taxonomy.
func New(cfg Config, model ModelExtractor, tax *category.Taxonomy, logger *zap.Logger) *Pipeline {
	if cfg.LowValueThreshold <= 0 {
		cfg.LowValueThreshold = normalize.DefaultLowValueThreshold
	}
	if tax == nil {
		tax = category.Default()
	}
	return &Pipeline{
		cfg:        cfg,
		extractor:  extract.New(tax),
		model:      model,
		categories: category.NewNormalizer(tax),
		log:        common.OrNop(logger),
	}
}

// Process extracts a ReceiptRecord from msg. Extraction misses and model
// failures never fail the call; the only error is common.ErrProcessing for an
// unexpected failure, including a recovered panic.
func (p *Pipeline) Process(ctx context.Context, msg entity.RawMessage) (res *Result, err error) {
	start := time.Now()
	if common.RequestIDFromContext(ctx) == "" {
		ctx = common.WithRequestID(ctx, uuid.New().String())
	}
	ctx = common.WithMessageID(ctx, msg.ID())
	log := p.log.With(
		zap.String("request_id", common.RequestIDFromContext(ctx)),
		zap.String("message_id", msg.ID()),
	)

	defer func() {
		if r := recover(); r != nil {
			log.Error("pipeline.panic", zap.Any("panic", r), zap.Stack("stack"))
			res = nil
			err = common.NewAppError("PROCESSING_ERROR", "unexpected failure",
				eris.Wrapf(common.ErrProcessing, "recovered panic: %v", r))
		}
		status := "success"
		if err != nil {
			status = "failed"
		}
		metrics.RecordMessage(status, time.Since(start))
	}()

	view := normalize.Normalize(normalize.Input{
		Plain: msg.TextBody,
		HTML:  msg.HTMLBody,
		OCR:   msg.OCRText,
	}, p.cfg.LowValueThreshold)

	det := p.extractor.Extract(extract.Input{
		Text:    view.Text,
		HTML:    view.RawHTML,
		Subject: msg.Subject,
		Sender:  msg.From,
	})

	model := p.runModel(ctx, log, llm.Request{
		Sender:  msg.From,
		Subject: msg.Subject,
		Text:    view.Text,
	})

	fields := reconcile.Reconcile(model, det, view.Text)
	fields.Category = p.categories.Normalize(category.Input{
		Label:   det.CategoryLabel,
		Current: fields.Category,
		Vendor:  fields.Vendor.Value(),
		Subject: msg.Subject,
		Body:    view.Text,
	})

	rec := record.Build(fields, msg)
	prov := fields.Provenance()
	metrics.RecordProvenance(prov)

	log.Info("pipeline.processed",
		zap.String("origin", string(view.Origin)),
		zap.Int("model_fields", model.Count()),
		zap.Any("provenance", prov),
		zap.Int64("elapsed_ms", time.Since(start).Milliseconds()),
	)
	return &Result{Record: rec, Provenance: prov, Origin: view.Origin}, nil
}

// runModel makes the single model attempt, bounded by ModelTimeout. Any
// failure is logged and yields empty fields.
func (p *Pipeline) runModel(ctx context.Context, log *zap.Logger, req llm.Request) llm.ModelFields {
	if p.model == nil {
		metrics.RecordModelCall("disabled")
		return llm.ModelFields{}
	}
	if p.cfg.ModelTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.ModelTimeout)
		defer cancel()
	}

	fields, err := p.model.Extract(ctx, req)
	if err != nil {
		outcome := "error"
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			outcome = "timeout"
		}
		metrics.RecordModelCall(outcome)
		log.Warn("pipeline.model.failed", zap.String("outcome", outcome), zap.Error(err))
		return llm.ModelFields{}
	}
	metrics.RecordModelCall("ok")
	return fields
}
