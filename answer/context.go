package answer

import (
	"strconv"
	"strings"

	"github.com/poiesic/logscope/core"
)

// contextFields are rendered for every log, in this order, with these labels.
var contextFields = []struct {
	label string
	path  string
}{
	{"DeviceId", core.FieldDeviceID},
	{"Summary", core.FieldSummary},
	{"State", core.FieldState},
	{"Model", core.FieldModel},
	{"Ward", core.FieldWard},
	{"Timestamp", core.FieldTimestamp},
}

// BuildContext renders results as numbered "Log n:" blocks separated by a
// blank line. Missing fields render as empty values. No results yield "".
func BuildContext(results []*core.SearchResult) string {
	var sb strings.Builder
	n := 0
	for _, r := range results {
		if r == nil || r.Document == nil {
			continue
		}
		n++
		if n > 1 {
			sb.WriteString("\n\n")
		}
		sb.WriteString("Log ")
		sb.WriteString(strconv.Itoa(n))
		sb.WriteString(":")
		for _, f := range contextFields {
			sb.WriteString("\n")
			sb.WriteString(f.label)
			sb.WriteString(": ")
			sb.WriteString(r.Document.Text(f.path))
		}
	}
	return sb.String()
}
