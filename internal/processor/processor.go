// Package processor chains intake, extraction and persistence for one email.
package processor

import (
	"context"
	"encoding/json"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/joseph-ayodele/receipts-inbox/constants"
	"github.com/joseph-ayodele/receipts-inbox/internal/common"
	"github.com/joseph-ayodele/receipts-inbox/internal/entity"
	"github.com/joseph-ayodele/receipts-inbox/internal/intake"
	"github.com/joseph-ayodele/receipts-inbox/internal/pipeline"
	"github.com/joseph-ayodele/receipts-inbox/internal/repository"
)

// Extractor is satisfied by *pipeline.Pipeline.
type Extractor interface {
	Process(ctx context.Context, msg entity.RawMessage) (*pipeline.Result, error)
}

// Outcome is a processed email and, when a sink is configured, how it was
// stored.
type Outcome struct {
	*pipeline.Result
	Status constants.SaveStatus `json:"-"`
}

type Processor struct {
	intake    *intake.Intake
	extractor Extractor
	sink      repository.ReceiptSink
	log       *zap.Logger
}

// New returns a Processor. in and sink may be nil.
func New(in *intake.Intake, extractor Extractor, sink repository.ReceiptSink, logger *zap.Logger) *Processor {
	if in == nil {
		in = intake.New(nil, 0, logger)
	}
	return &Processor{intake: in, extractor: extractor, sink: sink, log: common.OrNop(logger)}
}

// Process runs env through intake and the pipeline, then saves the record.
func (p *Processor) Process(ctx context.Context, env intake.Envelope) (*Outcome, error) {
	msg := p.intake.Prepare(ctx, env)

	res, err := p.extractor.Process(ctx, msg)
	if err != nil {
		p.log.Error("processor.extract.failed", zap.String("message_id", msg.ID()), zap.Error(err))
		return nil, err
	}
	out := &Outcome{Result: res}
	if p.sink == nil {
		return out, nil
	}

	out.Status, err = p.sink.Save(ctx, res.Record)
	if err != nil {
		p.log.Error("processor.save.failed", zap.String("message_id", msg.ID()), zap.Error(err))
		return nil, err
	}
	p.log.Info("processor.save.ok",
		zap.String("message_id", msg.ID()),
		zap.String("status", string(out.Status)))
	return out, nil
}

// Decode parses an envelope. Malformed payloads are ErrInvalidInput.
func Decode(body []byte) (intake.Envelope, error) {
	var env intake.Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return intake.Envelope{}, common.NewAppError("INVALID_MESSAGE", "decode email envelope",
			eris.Wrap(common.ErrInvalidInput, err.Error()))
	}
	return env, nil
}

// HandleJSON is the queue handler: decode then Process.
func (p *Processor) HandleJSON(ctx context.Context, body []byte) error {
	env, err := Decode(body)
	if err != nil {
		return err
	}
	_, err = p.Process(ctx, env)
	return err
}
