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

// Package operation implements the photoflow batch operations: renaming raw
// files, exporting edited images and cleaning up the library. An operation
// returns an error only for fatal problems; per-file outcomes go to the
// status tracker and the batch continues.
package operation

import (
	"context"
	"runtime"
	"time"

	"github.com/iblazhko/photoflow/pkg/status"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 🎯 Operation is one batch pass over the library.
type Operation interface {
	// Name identifies the operation in logs
	Name() string
	// Execute runs the operation to completion
	Execute(ctx context.Context) error
}

// 🔧 Options contains configuration shared by all operations.
type Options struct {
	// Tracker records per-file outcomes
	Tracker *status.Tracker
	// DryRun prints actions without touching any file
	DryRun bool
	// Async processes independent files in parallel
	Async bool
	// Workers bounds the parallel group; 0 means NumCPU
	Workers int
}

// 🏗️ BaseOperation carries the shared options.
type BaseOperation struct {
	Options
}

// NewBaseOperation creates a base operation.
func NewBaseOperation(opts Options) BaseOperation {
	return BaseOperation{Options: opts}
}

// workers returns the parallel group size: 1 unless async.
func (b *BaseOperation) workers() int {
	if !b.Async {
		return 1
	}
	if b.Workers > 0 {
		return b.Workers
	}
	return runtime.NumCPU()
}

// 🏃 Runner executes operations in sequence, stopping at the first fatal
// error.
type Runner struct {
	logger *zerolog.Logger
}

// 🏭 NewRunner creates a new runner.
func NewRunner(logger *zerolog.Logger) *Runner {
	return &Runner{logger: logger}
}

// 🏃 Run executes the operations in order.
func (r *Runner) Run(ctx context.Context, ops ...Operation) error {
	for _, op := range ops {
		start := time.Now()
		r.logger.Debug().Str("operation", op.Name()).Msg("starting operation")

		if err := op.Execute(ctx); err != nil {
			return errors.Errorf("running %s: %w", op.Name(), err)
		}

		r.logger.Debug().
			Str("operation", op.Name()).
			Dur("elapsed", time.Since(start)).
			Msg("operation finished")
	}
	return nil
}
