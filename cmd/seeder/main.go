// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command seeder fills a store, or writes a dump file, with synthetic
// device logs for local demos.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"math/rand/v2"
	"os"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/valyala/fastjson"

	"github.com/poiesic/logscope"
	"github.com/poiesic/logscope/config"
	"github.com/poiesic/logscope/core"
	"github.com/poiesic/logscope/ingestion"
)

var (
	configPath = flag.String("config", "", "path to a YAML config file")
	dbPath     = flag.String("db", "", "path to the BadgerDB directory (overrides config)")
	count      = flag.Int("n", 200, "number of logs to generate")
	seed       = flag.Uint64("seed", 1, "random seed")
	outPath    = flag.String("out", "", "write a .jsonl dump (optionally .gz or .zst) instead of loading")
	batchSize  = flag.Int("batch", 50, "logs per ingestion batch")
)

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
}

type deviceKind struct {
	prefix string
	models []string
	states []string
	events []event
}

type event struct {
	level    string
	logType  string
	summary  string
	tag      string
	severity string
}

var fleet = []deviceKind{
	{
		prefix: "PUMP",
		models: []string{"Alaris 8015", "Sigma Spectrum", "Baxter Novum"},
		states: []string{"Infusing", "Paused", "Idle", "Alarming"},
		events: []event{
			{"Info", "Status", "Infusion started at %d mL/h", "", ""},
			{"Info", "Status", "Infusion completed, %d mL delivered", "", ""},
			{"Error", "Alert", "Downstream occlusion detected at %d mmHg", "OCCLUSION", "High"},
			{"Warning", "Alert", "Air in line detected, %d uL", "AIR_IN_LINE", "Medium"},
			{"Warning", "Alert", "Battery low, %d%% remaining", "LOW_BATTERY", "Low"},
		},
	},
	{
		prefix: "MON",
		models: []string{"IntelliVue MX450", "Carescape B650"},
		states: []string{"Monitoring", "Standby", "Alarming"},
		events: []event{
			{"Info", "Status", "Patient admitted, %d leads connected", "", ""},
			{"Error", "Alert", "SpO2 below threshold at %d%%", "SPO2_LOW", "High"},
			{"Warning", "Alert", "ECG lead off on lead %d", "LEAD_OFF", "Medium"},
			{"Info", "Maintenance", "Self test passed in %d ms", "", ""},
		},
	},
	{
		prefix: "VENT",
		models: []string{"Hamilton C6", "Puritan Bennett 980"},
		states: []string{"Ventilating", "Standby", "Alarming"},
		events: []event{
			{"Error", "Alert", "High airway pressure %d cmH2O", "HIGH_PRESSURE", "High"},
			{"Warning", "Alert", "Circuit leak %d%%", "CIRCUIT_LEAK", "Medium"},
			{"Info", "Status", "Mode changed, PEEP set to %d", "", ""},
		},
	},
}

var wards = []string{"ICU", "NICU", "ER", "Oncology", "Cardiology", "Med-Surg"}

// generate yields n synthetic logs. The same seed yields the same logs.
func generate(n int, seed uint64, start time.Time) iter.Seq[*core.Document] {
	return func(yield func(*core.Document) bool) {
		rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
		var arena fastjson.Arena
		for i := 0; i < n; i++ {
			kind := fleet[rng.IntN(len(fleet))]
			ev := kind.events[rng.IntN(len(kind.events))]
			ts := start.Add(time.Duration(i) * 90 * time.Second)

			arena.Reset()
			obj := arena.NewObject()
			obj.Set("DeviceId", arena.NewString(fmt.Sprintf("%s-%d", kind.prefix, 1+rng.IntN(12))))
			obj.Set("OrganizationId", arena.NewString("ORG-1"))
			obj.Set("Timestamp", arena.NewString(ts.UTC().Format(time.RFC3339)))
			obj.Set("LogLevel", arena.NewString(ev.level))
			obj.Set("LogType", arena.NewString(ev.logType))
			obj.Set("Summary", arena.NewString(fmt.Sprintf(ev.summary, 1+rng.IntN(120))))

			data := arena.NewObject()
			data.Set("State", arena.NewString(kind.states[rng.IntN(len(kind.states))]))
			data.Set("Model", arena.NewString(kind.models[rng.IntN(len(kind.models))]))
			data.Set("Ward", arena.NewString(wards[rng.IntN(len(wards))]))
			data.Set("Room", arena.NewString(fmt.Sprintf("%d%02d", 1+rng.IntN(4), 1+rng.IntN(30))))
			data.Set("Battery", arena.NewNumberInt(rng.IntN(101)))
			data.Set("Firmware", arena.NewString(fmt.Sprintf("%d.%d.%d", 2+rng.IntN(2), rng.IntN(10), rng.IntN(20))))
			if ev.tag != "" {
				tag := arena.NewObject()
				tag.Set("TagId", arena.NewString(fmt.Sprintf("TAG-%05d", i)))
				tag.Set("Name", arena.NewString(ev.tag))
				tag.Set("Severity", arena.NewString(ev.severity))
				tag.Set("Status", arena.NewString([]string{"Active", "Acknowledged", "Cleared"}[rng.IntN(3)]))
				data.Set("AlertTag", tag)
			}
			obj.Set("LogData", data)

			doc, err := core.ParseDocument(obj.MarshalTo(nil))
			if err != nil {
				slog.Error("generated an invalid log", "err", err)
				continue
			}
			if !yield(doc) {
				return
			}
		}
	}
}

// writeDump writes logs as JSON lines, compressed by file extension.
func writeDump(path string, docs iter.Seq[*core.Document]) (int, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	var w io.WriteCloser = nopCloser{f}
	switch {
	case strings.HasSuffix(path, ".gz"):
		w = gzip.NewWriter(f)
	case strings.HasSuffix(path, ".zst"):
		if w, err = zstd.NewWriter(f); err != nil {
			return 0, err
		}
	}

	buf := bufio.NewWriter(w)
	n := 0
	for doc := range docs {
		buf.Write(doc.Raw)
		buf.WriteByte('\n')
		n++
	}
	if err := buf.Flush(); err != nil {
		return n, err
	}
	if err := w.Close(); err != nil {
		return n, err
	}
	return n, f.Close()
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// ingestBatched stores logs in batches and waits for their embeddings.
func ingestBatched(ctx context.Context, pipeline *ingestion.Pipeline, docs iter.Seq[*core.Document], size int) (ingestion.LoadStats, error) {
	var stats ingestion.LoadStats
	batch := make([]*core.Document, 0, size)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		res, err := pipeline.Ingest(ctx, batch...)
		stats.Stored += res.Stored
		stats.Skipped += res.Skipped
		stats.Queued += res.Queued
		batch = make([]*core.Document, 0, size)
		return err
	}

	for doc := range docs {
		stats.Read++
		batch = append(batch, doc)
		if len(batch) == size {
			if err := flush(); err != nil {
				return stats, err
			}
		}
	}
	if err := flush(); err != nil {
		return stats, err
	}
	pipeline.Wait()
	return stats, nil
}

func main() {
	flag.Parse()

	start := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	docs := generate(*count, *seed, start)

	if *outPath != "" {
		n, err := writeDump(*outPath, docs)
		if err != nil {
			panic(err)
		}
		slog.Info("wrote dump", "path", *outPath, "logs", n)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(err)
	}
	if *dbPath != "" {
		cfg.Storage.Path = *dbPath
	}

	ctx := context.Background()
	db, err := logscope.Open(ctx, cfg)
	if err != nil {
		panic(err)
	}
	defer db.Close()

	pipeline, err := db.NewIngestionPipeline()
	if err != nil {
		panic(err)
	}
	defer pipeline.Release()

	stats, err := ingestBatched(ctx, pipeline, docs, *batchSize)
	if err != nil {
		panic(err)
	}
	slog.Info("seeded logs", "read", stats.Read, "stored", stats.Stored, "embedding_failures", pipeline.Failed())
}
