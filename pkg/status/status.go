// Copyright 2025 Ivan Blazhko
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

// Package status tracks per-file outcomes of a batch and renders progress
// and the final summary on the console.
package status

import (
	"sync"

	"github.com/rs/zerolog"
)

// 📊 Outcome is the result of processing one file.
type Outcome int

const (
	OutcomeUnknown Outcome = iota
	OutcomeRenamed
	OutcomeExported
	OutcomeLinked
	OutcomeRemoved
	OutcomeSkipped
	OutcomeFailed
)

// String returns a string representation of an Outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeRenamed:
		return "renamed"
	case OutcomeExported:
		return "exported"
	case OutcomeLinked:
		return "linked"
	case OutcomeRemoved:
		return "removed"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// 📄 FileResult is one file's record in the batch.
type FileResult struct {
	Path    string  // path as reported to the user
	Outcome Outcome // what happened
	Detail  string  // e.g. new name, link target
	Err     error   // set for OutcomeFailed and warning-level skips
}

// 📈 Summary is the aggregate of a finished batch.
type Summary struct {
	Total    int
	Renamed  int
	Exported int
	Linked   int
	Removed  int
	Skipped  int
	Failed   int
}

// OK reports whether the batch finished without failures.
func (s Summary) OK() bool { return s.Failed == 0 }

// 🔧 Tracker records file results. Safe for use from parallel workers.
type Tracker struct {
	logger   *zerolog.Logger
	reporter Reporter

	mu      sync.Mutex
	results []FileResult
}

// 🏭 NewTracker creates a tracker that reports each result through the
// given reporter (nil for silent tracking).
func NewTracker(logger *zerolog.Logger, reporter Reporter) *Tracker {
	return &Tracker{logger: logger, reporter: reporter}
}

// 📝 Record adds one file result and reports it.
func (t *Tracker) Record(result FileResult) {
	t.mu.Lock()
	t.results = append(t.results, result)
	t.mu.Unlock()

	event := t.logger.Info()
	if result.Outcome == OutcomeFailed {
		event = t.logger.Error().Err(result.Err)
	} else if result.Err != nil {
		event = t.logger.Warn().Err(result.Err)
	}
	event.Str("file", result.Path).Str("outcome", result.Outcome.String()).Str("detail", result.Detail).Msg("file processed")

	if t.reporter != nil {
		t.reporter.Report(result)
	}
}

// 📋 Results returns a copy of all recorded results in record order.
func (t *Tracker) Results() []FileResult {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]FileResult, len(t.results))
	copy(out, t.results)
	return out
}

// 🎯 Summarize aggregates the recorded results.
func (t *Tracker) Summarize() Summary {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := Summary{Total: len(t.results)}
	for _, r := range t.results {
		switch r.Outcome {
		case OutcomeRenamed:
			s.Renamed++
		case OutcomeExported:
			s.Exported++
		case OutcomeLinked:
			s.Linked++
		case OutcomeRemoved:
			s.Removed++
		case OutcomeSkipped:
			s.Skipped++
		case OutcomeFailed:
			s.Failed++
		}
	}
	return s
}
