package engine

import (
	"fmt"

	"github.com/poiesic/logscope/core"
	"github.com/poiesic/logscope/present"
	"github.com/poiesic/logscope/query"
	"github.com/poiesic/logscope/search"
)

// Kind identifies the shape of a Response.
type Kind int

const (
	KindRows Kind = iota + 1
	KindUnique
	KindDump
	KindAnswer
	KindGuidance
	KindEmpty
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindRows:
		return "rows"
	case KindUnique:
		return "unique"
	case KindDump:
		return "dump"
	case KindAnswer:
		return "answer"
	case KindGuidance:
		return "guidance"
	case KindEmpty:
		return "empty"
	case KindError:
		return "error"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// User-facing messages.
const (
	MessageNoResults     = "No matching logs found."
	MessageNoFields      = `Please name the fields to list, for example "list deviceid, model where ward=north".`
	MessageEmptyQuery    = `Ask a question, or try "show logs for deviceid=<id>" or "list unique ward".`
	MessageUnexpected    = "Something went wrong while handling that request. Please try again."
	messageSubsystemDown = "The %s is unavailable right now. Please try again later."
)

// Response is the outcome of one turn. Only the members relevant to Kind
// are set.
type Response struct {
	Kind   Kind
	TurnID string
	Intent *query.Intent

	// Fields and Documents are set for KindRows; Documents for KindDump.
	Fields    []string
	Documents []*core.Document

	Unique *search.UniqueValues

	// Answer is the generated text; Sources the logs it was built from.
	Answer  string
	Sources []*core.SearchResult

	// Message is the text shown for guidance, empty and error responses.
	Message string

	// Subsystem and Err describe a KindError response.
	Subsystem string
	Err       error
}

func subsystemMessage(subsystem string) string {
	return fmt.Sprintf(messageSubsystemDown, subsystem)
}

// Render writes the response through p.
func (r *Response) Render(p *present.Presenter) error {
	switch r.Kind {
	case KindRows:
		return p.Rows(r.Fields, r.Documents)
	case KindUnique:
		return p.Unique(r.Unique.Field, r.Unique.Values, r.Unique.Truncated)
	case KindDump:
		return p.Dump(r.Documents)
	case KindAnswer:
		return p.Text(r.Answer)
	default:
		return p.Text(r.Message)
	}
}
