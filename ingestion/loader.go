package ingestion

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/poiesic/logscope/core"
)

// LoadStats summarizes a load.
type LoadStats struct {
	Files   int
	Read    int
	Stored  int
	Skipped int
	Queued  int
}

func (s *LoadStats) add(r IngestResult) {
	s.Stored += r.Stored
	s.Skipped += r.Skipped
	s.Queued += r.Queued
}

// LoadFile reads one dump and ingests it in batches. Malformed records are
// logged and counted as skipped.
func (p *Pipeline) LoadFile(ctx context.Context, path string) (LoadStats, error) {
	stats := LoadStats{Files: 1}
	batch := make([]*core.Document, 0, p.batchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		res, err := p.Ingest(ctx, batch...)
		stats.add(res)
		batch = batch[:0:0]
		return err
	}

	err := ReadFile(path, func(doc *core.Document) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		stats.Read++
		batch = append(batch, doc)
		if len(batch) >= p.batchSize {
			return flush()
		}
		return nil
	}, func(line int, err error) {
		stats.Skipped++
		p.logger.Warn("skipping malformed record", "file", path, "record", line, "err", err)
	})
	if err != nil {
		return stats, err
	}
	if err := flush(); err != nil {
		return stats, err
	}
	p.logger.Info("loaded dump", "file", path, "read", stats.Read, "stored", stats.Stored, "queued", stats.Queued)
	return stats, nil
}

// LoadPaths loads every dump named by paths. Directories are walked and
// files without a supported extension inside them are ignored. Loading
// continues past a failing file; all failures are joined in the error.
func (p *Pipeline) LoadPaths(ctx context.Context, paths ...string) (LoadStats, error) {
	files, err := expandPaths(paths)
	if err != nil {
		return LoadStats{}, err
	}

	var total LoadStats
	var errs []error
	for _, file := range files {
		stats, err := p.LoadFile(ctx, file)
		total.Files += stats.Files
		total.Read += stats.Read
		total.Stored += stats.Stored
		total.Skipped += stats.Skipped
		total.Queued += stats.Queued
		if err != nil {
			if ctx.Err() != nil {
				return total, err
			}
			errs = append(errs, err)
		}
	}
	return total, errors.Join(errs...)
}

func expandPaths(paths []string) ([]string, error) {
	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			if !IsDumpFile(path) {
				return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
			}
			files = append(files, path)
			continue
		}
		err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && IsDumpFile(p) {
				files = append(files, p)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	sort.Strings(files)
	return files, nil
}
