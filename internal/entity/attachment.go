package entity

// Attachment is a file carried by an inbound message. Only the intake layer
// looks at attachments; the extraction core sees OCR text at most.
type Attachment struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Content     []byte `json:"content"`
}
