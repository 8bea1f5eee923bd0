package reembed

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
)

// Progress reports how many documents have been reembedded. Output is a
// single line rewritten in place with a carriage return.
type Progress struct {
	mu       sync.Mutex
	w        io.Writer
	total    int
	done     int
	every    int
	reported int
	started  time.Time
	now      func() time.Time
}

// NewProgress creates a reporter for total documents that prints at least
// every `every` documents. A nil writer discards output.
func NewProgress(w io.Writer, total, every int) *Progress {
	if w == nil {
		w = io.Discard
	}
	if every <= 0 {
		every = 1
	}
	p := &Progress{w: w, total: total, every: every, now: time.Now}
	p.started = p.now()
	return p
}

// Add records n more finished documents.
func (p *Progress) Add(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.done = min(p.done+n, p.total)
	if p.done-p.reported >= p.every {
		p.print()
		p.reported = p.done
	}
}

// Done prints the final line and ends it.
func (p *Progress) Done() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.print()
	fmt.Fprintln(p.w)
}

// Processed returns the number of documents recorded so far.
func (p *Progress) Processed() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}

// Elapsed returns the time since the reporter was created.
func (p *Progress) Elapsed() time.Duration {
	return p.now().Sub(p.started)
}

func (p *Progress) print() {
	pct := 100.0
	if p.total > 0 {
		pct = float64(p.done) / float64(p.total) * 100
	}
	var rate float64
	if secs := p.Elapsed().Seconds(); secs > 0 {
		rate = float64(p.done) / secs
	}
	fmt.Fprintf(p.w, "\rProgress: %s/%s (%.1f%%) - %.1f docs/s",
		humanize.Comma(int64(p.done)), humanize.Comma(int64(p.total)), pct, rate)
}
