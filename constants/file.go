package constants

import "strings"

// OCRExtensions holds the attachment extensions the OCR collaborator accepts.
var OCRExtensions = map[string]struct{}{
	"pdf":  {},
	"jpg":  {},
	"jpeg": {},
	"png":  {},
	"heic": {},
	"heif": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// IsOCRExt reports whether an attachment with this extension can be sent to OCR.
func IsOCRExt(ext string) bool {
	_, ok := OCRExtensions[NormalizeExt(ext)]
	return ok
}
