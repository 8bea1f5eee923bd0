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

// Command searcher runs one semantic search and prints each stage, for
// checking embeddings and ranking without involving the language model.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/poiesic/logscope"
	"github.com/poiesic/logscope/config"
	"github.com/poiesic/logscope/core"
	"github.com/poiesic/logscope/search"
)

var (
	configPath = flag.String("config", "", "path to a YAML config file")
	dbPath     = flag.String("db", "", "path to the BadgerDB directory (overrides config)")
)

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
}

// printMonitor reports each stage of a search as it happens.
type printMonitor struct {
	start time.Time
	mark  time.Time
}

func (m *printMonitor) lap() time.Duration {
	now := time.Now()
	d := now.Sub(m.mark)
	m.mark = now
	return d
}

func (m *printMonitor) Start(question string, filter core.Filter) {
	m.start = time.Now()
	m.mark = m.start
	fmt.Printf("Question: %q\nFilter:   %s\n", question, filter)
}

func (m *printMonitor) AfterEmbedding(vector []float32) {
	fmt.Printf("Embedded: %d dims in %v\n", len(vector), m.lap())
}

func (m *printMonitor) AfterVectorSearch(results []*core.SearchResult) {
	fmt.Printf("Searched: %d hits in %v\n", len(results), m.lap())
}

func (m *printMonitor) Finish(_ []*core.SearchResult, err error) {
	if err != nil {
		fmt.Printf("Failed:   %v\n", err)
	}
	fmt.Printf("Total:    %v\n", time.Since(m.start))
}

func main() {
	flag.Parse()

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

	searcher, err := db.NewSearcher()
	if err != nil {
		panic(err)
	}

	question := "infusion pump occlusion alarm"
	if flag.NArg() > 0 {
		question = strings.Join(flag.Args(), " ")
	}

	var monitor search.SearchMonitor = &printMonitor{}
	results, err := searcher.FindSimilarWithMonitor(ctx, question, nil, monitor)
	if err != nil {
		db.Close()
		os.Exit(1)
	}

	fmt.Printf("Found %d hits\n", len(results))
	for i, hit := range results {
		doc := hit.Document
		fmt.Printf("%d: %s '%s' (%d)[%0.3f]\n", i, doc.Text(core.FieldDeviceID), doc.Text(core.FieldSummary), doc.Id, hit.Score)
	}
}
