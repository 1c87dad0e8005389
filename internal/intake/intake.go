// Package intake prepares inbound emails for the extraction pipeline.
package intake

import (
	"context"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/joseph-ayodele/receipts-inbox/constants"
	"github.com/joseph-ayodele/receipts-inbox/internal/common"
	"github.com/joseph-ayodele/receipts-inbox/internal/entity"
	"github.com/joseph-ayodele/receipts-inbox/internal/normalize"
)

// OCRService returns the text found in one attachment.
type OCRService interface {
	ExtractText(ctx context.Context, att entity.Attachment) (string, error)
}

// Envelope is an inbound email as the transports deliver it: the message
// plus its attachments.
type Envelope struct {
	entity.RawMessage
	Attachments []entity.Attachment `json:"attachments,omitempty"`
}

type Intake struct {
	ocr       OCRService
	threshold int
	log       *zap.Logger
}

// New returns an Intake. A nil ocr disables the attachment fallback.
func New(ocr OCRService, threshold int, logger *zap.Logger) *Intake {
	return &Intake{ocr: ocr, threshold: threshold, log: common.OrNop(logger)}
}

// Prepare returns the message to feed the pipeline. When neither body carries
// usable text, OCR-eligible attachments are tried in order and the first
// non-empty text becomes the message's OCR text. OCR failures are logged and
// skipped.
func (in *Intake) Prepare(ctx context.Context, env Envelope) entity.RawMessage {
	msg := env.RawMessage
	if in.ocr == nil || msg.OCRText != "" || len(env.Attachments) == 0 {
		return msg
	}
	if !in.bodiesLowValue(msg) {
		return msg
	}

	for _, att := range env.Attachments {
		if !constants.IsOCRExt(filepath.Ext(att.Filename)) {
			continue
		}
		if err := ctx.Err(); err != nil {
			in.log.Warn("intake.ocr.canceled", zap.Error(err))
			return msg
		}
		text, err := in.ocr.ExtractText(ctx, att)
		if err != nil {
			in.log.Warn("intake.ocr.failed",
				zap.String("message_id", msg.ID()),
				zap.String("filename", att.Filename),
				zap.Error(err))
			continue
		}
		if normalize.IsLowValue(text, in.threshold) {
			continue
		}
		in.log.Info("intake.ocr.used",
			zap.String("message_id", msg.ID()),
			zap.String("filename", att.Filename))
		msg.OCRText = text
		return msg
	}
	return msg
}

func (in *Intake) bodiesLowValue(msg entity.RawMessage) bool {
	return normalize.IsLowValue(msg.TextBody, in.threshold) &&
		normalize.IsLowValue(normalize.StripHTML(msg.HTMLBody), in.threshold)
}
