package ocr

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
)

// convertHEICtoPNG writes a PNG next to in using the configured converter.
func convertHEICtoPNG(ctx context.Context, r Runner, converter, in string) (string, error) {
	out := filepath.Join(filepath.Dir(in), "page.png")

	var args []string
	switch converter {
	case "heif-convert", "magick":
		args = []string{in, out}
	case "sips":
		args = []string{"-s", "format", "png", in, "--out", out}
	default:
		return "", eris.New("HEIC not supported: set ocr converter to one of: heif-convert | magick | sips")
	}
	if _, errb, err := r.Run(ctx, converter, args...); err != nil {
		return "", eris.Wrapf(err, "%s failed: %s", converter, string(errb))
	}
	if _, err := os.Stat(out); err != nil {
		return "", eris.Wrap(err, "HEIC conversion produced no output")
	}
	return out, nil
}
