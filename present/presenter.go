package present

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/poiesic/logscope/core"
)

// Presenter writes results to an output stream.
type Presenter struct {
	out   io.Writer
	table TableRenderer
}

// Option configures a Presenter.
type Option func(*Presenter)

// WithTableRenderer sets the renderer used for structured rows.
// A nil renderer selects the pipe-delimited fallback.
func WithTableRenderer(r TableRenderer) Option {
	return func(p *Presenter) {
		p.table = r
	}
}

// New creates a Presenter writing to out.
func New(out io.Writer, opts ...Option) *Presenter {
	p := &Presenter{out: out}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Rows renders one row per document with one column per field.
// Absent paths render as empty cells.
func (p *Presenter) Rows(fields []string, docs []*core.Document) error {
	rows := make([][]string, 0, len(docs))
	for _, d := range docs {
		row := make([]string, len(fields))
		for i, f := range fields {
			row[i] = d.Text(f)
		}
		rows = append(rows, row)
	}
	if p.table == nil {
		return writePipeTable(p.out, fields, rows)
	}
	return p.table.RenderTable(p.out, fields, rows)
}

// Unique renders values as a bulleted list headed by the field name.
// When truncated is set a trailing note says the list was capped.
func (p *Presenter) Unique(field string, values []string, truncated bool) error {
	if _, err := fmt.Fprintf(p.out, "Unique values for %s:\n", field); err != nil {
		return err
	}
	for _, v := range values {
		if _, err := fmt.Fprintf(p.out, "  - %s\n", v); err != nil {
			return err
		}
	}
	if truncated {
		_, err := fmt.Fprintf(p.out, "(showing the first %d values)\n", len(values))
		return err
	}
	return nil
}

// Dump renders each document as an indented JSON block.
func (p *Presenter) Dump(docs []*core.Document) error {
	for i, d := range docs {
		if i > 0 {
			if _, err := fmt.Fprintln(p.out); err != nil {
				return err
			}
		}
		var buf bytes.Buffer
		if err := json.Indent(&buf, d.Raw, "", "  "); err != nil {
			return fmt.Errorf("render document %d: %w", d.Id, err)
		}
		buf.WriteByte('\n')
		if _, err := p.out.Write(buf.Bytes()); err != nil {
			return err
		}
	}
	return nil
}

// Text writes s followed by a newline.
func (p *Presenter) Text(s string) error {
	_, err := fmt.Fprintln(p.out, s)
	return err
}
