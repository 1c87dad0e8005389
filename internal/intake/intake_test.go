package intake

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/receipts-inbox/internal/entity"
)

const scanned = "Corner Deli\nTotal $8.40\nVisa ending in 4242"

type stubOCR struct {
	texts map[string]string
	errs  map[string]error
	seen  []string
}

func (s *stubOCR) ExtractText(_ context.Context, att entity.Attachment) (string, error) {
	s.seen = append(s.seen, att.Filename)
	if err := s.errs[att.Filename]; err != nil {
		return "", err
	}
	return s.texts[att.Filename], nil
}

func TestPrepare_UsesFirstUsefulAttachment(t *testing.T) {
	ocr := &stubOCR{
		texts: map[string]string{"blank.png": "  ", "receipt.pdf": scanned, "later.jpg": "Other Store total 1.00 here"},
		errs:  map[string]error{"broken.jpg": errors.New("tesseract failed")},
	}
	in := New(ocr, 0, nil)

	msg := in.Prepare(context.Background(), Envelope{
		RawMessage: entity.RawMessage{TextBody: "Sent from my iPhone"},
		Attachments: []entity.Attachment{
			{Filename: "notes.txt"},
			{Filename: "broken.jpg"},
			{Filename: "blank.png"},
			{Filename: "receipt.pdf"},
			{Filename: "later.jpg"},
		},
	})

	assert.Equal(t, scanned, msg.OCRText)
	assert.Equal(t, []string{"broken.jpg", "blank.png", "receipt.pdf"}, ocr.seen)
}

func TestPrepare_SkipsWhenBodyIsUseful(t *testing.T) {
	ocr := &stubOCR{texts: map[string]string{"receipt.pdf": scanned}}
	in := New(ocr, 0, nil)

	msg := in.Prepare(context.Background(), Envelope{
		RawMessage:  entity.RawMessage{HTMLBody: "<p>Thank you for shopping at Corner Deli today</p>"},
		Attachments: []entity.Attachment{{Filename: "receipt.pdf"}},
	})

	assert.Empty(t, msg.OCRText)
	assert.Empty(t, ocr.seen)
}

func TestPrepare_KeepsExistingOCRText(t *testing.T) {
	ocr := &stubOCR{texts: map[string]string{"receipt.pdf": scanned}}
	in := New(ocr, 0, nil)

	msg := in.Prepare(context.Background(), Envelope{
		RawMessage:  entity.RawMessage{OCRText: "already here"},
		Attachments: []entity.Attachment{{Filename: "receipt.pdf"}},
	})

	assert.Equal(t, "already here", msg.OCRText)
	assert.Empty(t, ocr.seen)
}

func TestPrepare_NilOCR(t *testing.T) {
	in := New(nil, 0, nil)
	msg := in.Prepare(context.Background(), Envelope{
		Attachments: []entity.Attachment{{Filename: "receipt.pdf"}},
	})
	assert.Empty(t, msg.OCRText)
}

func TestPrepare_CanceledContext(t *testing.T) {
	ocr := &stubOCR{texts: map[string]string{"receipt.pdf": scanned}}
	in := New(ocr, 0, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	msg := in.Prepare(ctx, Envelope{Attachments: []entity.Attachment{{Filename: "receipt.pdf"}}})
	assert.Empty(t, msg.OCRText)
	assert.Empty(t, ocr.seen)
}

func TestEnvelope_JSONFlattensMessage(t *testing.T) {
	raw := `{"from":"a@b.com","subject":"Receipt","text_body":"hi","html_body":"",
		"message_id":"m-1","received_at":"2025-06-03T10:00:00Z",
		"attachments":[{"filename":"r.pdf","content_type":"application/pdf","content":"JVBERg=="}]}`

	var env Envelope
	require.NoError(t, json.Unmarshal([]byte(raw), &env))
	assert.Equal(t, "a@b.com", env.From)
	assert.Equal(t, "m-1", env.ID())
	require.Len(t, env.Attachments, 1)
	assert.Equal(t, []byte("%PDF"), env.Attachments[0].Content)
}
