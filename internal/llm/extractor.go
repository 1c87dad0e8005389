package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"go.uber.org/zap"

	"github.com/joseph-ayodele/receipts-inbox/constants"
	"github.com/joseph-ayodele/receipts-inbox/internal/common"
	"github.com/joseph-ayodele/receipts-inbox/internal/entity"
)

// ModelExtractor turns one completion into ModelFields. It makes a single
// attempt per message and never retries.
type ModelExtractor struct {
	completer     Completer
	schema        *jsonschema.Schema
	maxInputChars int
	log           *zap.Logger
}

// NewModelExtractor compiles the reply schema up front.
func NewModelExtractor(c Completer, maxInputChars int, logger *zap.Logger) (*ModelExtractor, error) {
	if c == nil {
		return nil, eris.New("llm: completer is required")
	}
	schema, err := CompileSchema(BuildFieldsJSONSchema())
	if err != nil {
		return nil, err
	}
	if maxInputChars <= 0 {
		maxInputChars = DefaultMaxInputChars
	}
	return &ModelExtractor{
		completer:     c,
		schema:        schema,
		maxInputChars: maxInputChars,
		log:           common.OrNop(logger),
	}, nil
}

// Extract asks the model for every field. On any failure it returns empty
// ModelFields together with an error wrapping common.ErrModel; callers treat
// that as "no model fields", not as a failed message.
func (e *ModelExtractor) Extract(ctx context.Context, req Request) (ModelFields, error) {
	start := time.Now()
	prompt := BuildPrompt(req, e.maxInputChars)

	e.log.Debug("llm.extract.start",
		zap.Int("prompt_len", len(prompt)),
		zap.String("message_id", common.MessageIDFromContext(ctx)),
	)

	text, err := e.completer.Complete(ctx, prompt)
	if err != nil {
		return ModelFields{}, modelErr(err, "complete")
	}

	cleaned, adjusted, err := SanitizeFields([]byte(CleanJSON(text)), e.log)
	if err != nil {
		return ModelFields{}, modelErr(err, "sanitize")
	}
	if err := ValidateJSON(e.schema, cleaned); err != nil {
		return ModelFields{}, modelErr(err, "validate")
	}

	var r reply
	if err := json.Unmarshal(cleaned, &r); err != nil {
		return ModelFields{}, modelErr(err, "decode")
	}
	out := r.toFields()

	e.log.Debug("llm.extract.ok",
		zap.Int("fields", out.Count()),
		zap.Int("adjusted", len(adjusted)),
		zap.Int64("elapsed_ms", time.Since(start).Milliseconds()),
	)
	return out, nil
}

func modelErr(err error, step string) error {
	return common.NewAppError("MODEL_ERROR", "model extraction failed", errors.Join(common.ErrModel, fmt.Errorf("%s: %w", step, err)))
}

func (r reply) toFields() ModelFields {
	var f ModelFields
	if r.Vendor != nil {
		f.Vendor = entity.Found(*r.Vendor, entity.SourceModel)
	}
	if r.TotalAmount != nil {
		if m, err := entity.ParseMoney(*r.TotalAmount); err == nil {
			f.TotalAmount = entity.Found(m, entity.SourceModel)
		}
	}
	if r.OrderDate != nil {
		if d, err := entity.ParseDate(*r.OrderDate); err == nil {
			f.OrderDate = entity.Found(d, entity.SourceModel)
		}
	}
	if r.FormOfPayment != nil {
		f.FormOfPayment = entity.Found(constants.FormOfPayment(*r.FormOfPayment), entity.SourceModel)
	}
	if r.CardType != nil {
		f.CardType = entity.Found(constants.CardNetwork(*r.CardType), entity.SourceModel)
	}
	if r.CardLast4 != nil {
		f.CardLast4 = entity.Found(*r.CardLast4, entity.SourceModel)
	}
	if r.Category != nil {
		f.Category = entity.Found(*r.Category, entity.SourceModel)
	}
	if r.TrackingNumber != nil {
		f.TrackingNumber = entity.Found(*r.TrackingNumber, entity.SourceModel)
	}
	return f
}
