package reembed

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestProgress_ReportsAtInterval(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(&buf, 25, 10)

	p.Add(5)
	assert.Empty(t, buf.String(), "below the interval nothing is printed")

	p.Add(5)
	assert.Contains(t, buf.String(), "Progress: 10/25 (40.0%)")

	p.Add(100)
	assert.Equal(t, 25, p.Processed(), "progress is capped at the total")

	p.Done()
	assert.Contains(t, buf.String(), "25/25 (100.0%)")
	assert.True(t, bytes.HasSuffix(buf.Bytes(), []byte("\n")))
}

func TestProgress_GroupsThousands(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(&buf, 2500, 1000)
	p.Add(1200)
	assert.Contains(t, buf.String(), "1,200/2,500")
}

func TestProgress_Elapsed(t *testing.T) {
	p := NewProgress(nil, 1, 1)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	p.started = base
	p.now = func() time.Time { return base.Add(3 * time.Second) }
	assert.Equal(t, 3*time.Second, p.Elapsed())
}
