// Package ocr turns receipt attachments into text with poppler and tesseract.
package ocr

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/joseph-ayodele/receipts-inbox/constants"
	"github.com/joseph-ayodele/receipts-inbox/internal/common"
	"github.com/joseph-ayodele/receipts-inbox/internal/entity"
)

type Config struct {
	Pdftotext     string // binary name or absolute path; if empty -> "pdftotext"
	Tesseract     string // binary name or absolute path; if empty -> "tesseract"
	TesseractLang string // default "eng"
	TessdataDir   string
	HeicConverter string // heif-convert | magick | sips
	TempDir       string // "" uses os.TempDir
}

// Service implements the intake OCR collaborator on top of external binaries.
type Service struct {
	cfg    Config
	runner Runner
	log    *zap.Logger
}

func NewService(cfg Config, logger *zap.Logger) *Service {
	logger = common.OrNop(logger)
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "eng"
	}
	return &Service{cfg: cfg, runner: execRunner{log: logger}, log: logger}
}

// ExtractText writes the attachment to a scratch file and picks a strategy
// from its extension.
func (s *Service) ExtractText(ctx context.Context, att entity.Attachment) (string, error) {
	start := time.Now()
	ext := constants.NormalizeExt(filepath.Ext(att.Filename))
	if !constants.IsOCRExt(ext) {
		return "", eris.Errorf("ocr: unsupported extension %q", ext)
	}

	dir, err := os.MkdirTemp(s.cfg.TempDir, "rt-ocr-*")
	if err != nil {
		return "", eris.Wrap(err, "ocr: temp dir")
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			s.log.Warn("ocr.cleanup.failed", zap.String("dir", dir), zap.Error(err))
		}
	}()

	path := filepath.Join(dir, "attachment."+ext)
	if err := os.WriteFile(path, att.Content, 0o600); err != nil {
		return "", eris.Wrap(err, "ocr: write attachment")
	}

	var text, method string
	switch {
	case ext == "pdf":
		method = "pdf-text"
		text, err = s.pdfToText(ctx, path)
	case isHEIC(ext):
		method = "heic-ocr"
		var png string
		if png, err = convertHEICtoPNG(ctx, s.runner, s.cfg.HeicConverter, path); err == nil {
			text, err = s.tesseractOCR(ctx, png)
		}
	default:
		method = "image-ocr"
		text, err = s.tesseractOCR(ctx, path)
	}
	if err != nil {
		s.log.Warn("ocr.extract.failed",
			zap.String("filename", att.Filename),
			zap.String("method", method),
			zap.Error(err))
		return "", err
	}

	text = Normalize(text)
	s.log.Debug("ocr.extract.done",
		zap.String("filename", att.Filename),
		zap.String("method", method),
		zap.Int("chars", len(text)),
		zap.Duration("duration", time.Since(start)))
	return text, nil
}

func isHEIC(ext string) bool {
	return ext == "heic" || ext == "heif"
}

func (s *Service) pdfToText(ctx context.Context, path string) (string, error) {
	// pdftotext -layout -enc UTF-8 -eol unix <path> -
	out, errb, err := s.runner.Run(ctx, s.cfg.Pdftotext, "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		return "", eris.Wrapf(err, "pdftotext: %s", strings.TrimSpace(string(errb)))
	}
	// form feeds separate pages
	return strings.ReplaceAll(string(out), "\f", "\n"), nil
}

func (s *Service) tesseractOCR(ctx context.Context, path string) (string, error) {
	args := []string{path, "stdout", "-l", s.cfg.TesseractLang}
	if s.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", s.cfg.TessdataDir)
	}
	out, errb, err := s.runner.Run(ctx, s.cfg.Tesseract, args...)
	if err != nil {
		return "", eris.Wrapf(err, "tesseract: %s", strings.TrimSpace(string(errb)))
	}
	return string(out), nil
}
