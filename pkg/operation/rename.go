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

package operation

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/iblazhko/photoflow/pkg/exifio"
	"github.com/iblazhko/photoflow/pkg/project"
	"github.com/iblazhko/photoflow/pkg/status"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

// frameDigits is the length of the camera-assigned frame counter kept from
// the original file name.
const frameDigits = 4

// 📷 renameOperation renames raw files to YYYYMMDD_hhmm_NNNN.ext: capture
// timestamp with seconds truncated, plus the camera frame counter.
type renameOperation struct {
	BaseOperation
	projectDir    string
	mtimeFallback bool
	captureTime   timeSource // swapped out in tests

	mu       sync.Mutex
	reserved map[string]bool // target names claimed in this run
}

// ⏱️ timeSource extracts a file's capture timestamp.
type timeSource func(path string) (time.Time, error)

// 🏭 NewRenameOperation creates the rename operation for one project.
func NewRenameOperation(projectDir string, mtimeFallback bool, opts Options) Operation {
	return &renameOperation{
		BaseOperation: NewBaseOperation(opts),
		projectDir:    projectDir,
		mtimeFallback: mtimeFallback,
		captureTime:   exifio.CaptureTime,
		reserved:      map[string]bool{},
	}
}

func (op *renameOperation) Name() string { return "rename" }

// Execute renames every file in 0_RAW.
func (op *renameOperation) Execute(ctx context.Context) error {
	logger := zerolog.Ctx(ctx)

	rawDir, err := project.LocateRaw(op.projectDir)
	if err != nil {
		return err
	}
	logger.Info().Str("raw", rawDir).Bool("dry_run", op.DryRun).Msg("renaming raw files")

	entries, err := os.ReadDir(rawDir)
	if err != nil {
		return errors.Errorf("reading %s: %w", rawDir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		names = append(names, e.Name())
	}
	if len(names) == 0 {
		return errors.Errorf("no files found in %s", rawDir)
	}
	sort.Strings(names)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(op.workers())
	for _, name := range names {
		name := name
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			op.renameFile(ctx, rawDir, name)
			return nil
		})
	}
	return g.Wait()
}

// reserve claims a target name; a second claim for the same name fails.
func (op *renameOperation) reserve(name string) bool {
	op.mu.Lock()
	defer op.mu.Unlock()
	if op.reserved[name] {
		return false
	}
	op.reserved[name] = true
	return true
}

// renameFile renames one raw file. All failures are per-file: recorded on
// the tracker, never fatal to the batch.
func (op *renameOperation) renameFile(ctx context.Context, rawDir, name string) {
	path := filepath.Join(rawDir, name)
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	if len(stem) < frameDigits {
		op.Tracker.Record(status.FileResult{
			Path:    name,
			Outcome: status.OutcomeFailed,
			Err:     errors.Errorf("could not extract camera frame number from %q", name),
		})
		return
	}
	frame := stem[len(stem)-frameDigits:]

	ts, err := op.fileTimestamp(ctx, path)
	if err != nil {
		// Unreadable timestamp: skip the file, keep the batch going.
		op.Tracker.Record(status.FileResult{Path: name, Outcome: status.OutcomeSkipped, Err: err})
		return
	}

	newName := ts.Format("20060102_1504") + "_" + frame + strings.ToLower(ext)
	if newName == name {
		op.Tracker.Record(status.FileResult{Path: name, Outcome: status.OutcomeSkipped, Detail: "already renamed"})
		return
	}

	if !op.reserve(newName) {
		op.Tracker.Record(status.FileResult{
			Path:    name,
			Outcome: status.OutcomeFailed,
			Err:     errors.Errorf("target name %s already claimed by another file", newName),
		})
		return
	}

	newPath := filepath.Join(rawDir, newName)
	if _, err := os.Stat(newPath); err == nil {
		op.Tracker.Record(status.FileResult{
			Path:    name,
			Outcome: status.OutcomeFailed,
			Err:     errors.Errorf("target %s already exists", newName),
		})
		return
	}

	if !op.DryRun {
		if err := os.Rename(path, newPath); err != nil {
			op.Tracker.Record(status.FileResult{Path: name, Outcome: status.OutcomeFailed, Err: errors.Errorf("renaming: %w", err)})
			return
		}
	}
	op.Tracker.Record(status.FileResult{Path: name, Outcome: status.OutcomeRenamed, Detail: newName})
}

// fileTimestamp reads the EXIF capture timestamp, optionally falling back
// to the file time.
func (op *renameOperation) fileTimestamp(ctx context.Context, path string) (time.Time, error) {
	ts, err := op.captureTime(path)
	if err == nil {
		return ts, nil
	}
	if op.mtimeFallback {
		zerolog.Ctx(ctx).Warn().Str("file", path).Err(err).Msg("no EXIF timestamp, using file time")
		return exifio.FileTime(path)
	}
	return time.Time{}, err
}
