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

// Package commands implements the photoflow subcommands.
package commands

import (
	"context"
	"path/filepath"

	"github.com/iblazhko/photoflow/pkg/operation"
	"github.com/iblazhko/photoflow/pkg/status"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"
)

// 🔧 RootOptions holds the persistent flags shared by all subcommands.
type RootOptions struct {
	Debug   bool
	DryRun  bool
	Async   bool
	Workers int
}

// operationOptions maps the flags to operation options.
func (o *RootOptions) operationOptions(tracker *status.Tracker) operation.Options {
	return operation.Options{
		Tracker: tracker,
		DryRun:  o.DryRun,
		Async:   o.Async,
		Workers: o.Workers,
	}
}

// targetPath resolves the positional path argument, defaulting to the
// current directory.
func targetPath(args []string) (string, error) {
	path := "."
	if len(args) > 0 {
		path = args[0]
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", errors.Errorf("resolving path %s: %w", path, err)
	}
	return abs, nil
}

// runBatch executes one operation and renders the summary. A batch with
// per-file failures returns an error so the process exits nonzero.
func runBatch(ctx context.Context, name string, opts *RootOptions, build func(operation.Options) operation.Operation) error {
	logger := zerolog.Ctx(ctx).With().Str("command", name).Logger()
	ctx = logger.WithContext(ctx)

	tracker := status.NewTracker(&logger, status.NewConsoleReporter())
	runner := operation.NewRunner(&logger)

	if err := runner.Run(ctx, build(opts.operationOptions(tracker))); err != nil {
		return err
	}

	summary := tracker.Summarize()
	pterm.Println(status.FormatSummary(summary))
	if !summary.OK() {
		return errors.Errorf("%d of %d files failed", summary.Failed, summary.Total)
	}
	return nil
}

// logError reports a fatal error on the console and to the logger.
func logError(cmd *cobra.Command, err error) error {
	pterm.Error.Println(err)
	zerolog.Ctx(cmd.Context()).Error().Err(err).Msg("command failed")
	return err
}
