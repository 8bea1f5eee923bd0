package core

import "strings"

// embeddingFields feed EmbeddingText, most descriptive first.
var embeddingFields = []string{
	FieldSummary,
	FieldLogLevel,
	FieldLogType,
	FieldState,
	FieldTagName,
	FieldTagSeverity,
	FieldTagStatus,
	FieldModel,
	FieldWard,
	FieldDeviceID,
}

// EmbeddingText renders the document as "Path: value" lines for embedding.
// Absent fields are skipped. A document with none of the fields renders
// its raw JSON so that it still receives a vector.
func (d *Document) EmbeddingText() string {
	var sb strings.Builder
	for _, f := range embeddingFields {
		v := d.Text(f)
		if v == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(f)
		sb.WriteString(": ")
		sb.WriteString(v)
	}
	if sb.Len() == 0 {
		return string(d.Raw)
	}
	return sb.String()
}
