package present

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// TableRenderer draws a table with one column per header.
type TableRenderer interface {
	RenderTable(w io.Writer, headers []string, rows [][]string) error
}

// TabRenderer aligns columns with text/tabwriter.
type TabRenderer struct {
	// MinWidth and Padding are passed to tabwriter.NewWriter.
	MinWidth int
	Padding  int
}

// NewTabRenderer returns a TabRenderer with two spaces between columns.
func NewTabRenderer() *TabRenderer {
	return &TabRenderer{MinWidth: 4, Padding: 2}
}

// RenderTable writes headers, a rule, and rows as aligned columns.
func (r *TabRenderer) RenderTable(w io.Writer, headers []string, rows [][]string) error {
	tw := tabwriter.NewWriter(w, r.MinWidth, 0, r.Padding, ' ', 0)

	rules := make([]string, len(headers))
	for i, h := range headers {
		rules[i] = strings.Repeat("-", len(h))
	}
	writeCells(tw, headers)
	writeCells(tw, rules)
	for _, row := range rows {
		writeCells(tw, row)
	}
	return tw.Flush()
}

func writeCells(w io.Writer, cells []string) {
	fmt.Fprintln(w, strings.Join(cleanCells(cells), "\t"))
}

// cleanCells keeps a cell on one line so it cannot break the layout.
func cleanCells(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = strings.NewReplacer("\t", " ", "\r", " ", "\n", " ").Replace(c)
	}
	return out
}

// writePipeTable is used when no TableRenderer is configured.
func writePipeTable(w io.Writer, headers []string, rows [][]string) error {
	if _, err := fmt.Fprintln(w, strings.Join(cleanCells(headers), " | ")); err != nil {
		return err
	}
	for _, row := range rows {
		if _, err := fmt.Fprintln(w, strings.Join(cleanCells(row), " | ")); err != nil {
			return err
		}
	}
	return nil
}
