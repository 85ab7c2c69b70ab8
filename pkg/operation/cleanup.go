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
	"crypto/md5"
	"encoding/hex"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/iblazhko/photoflow/pkg/project"
	"github.com/iblazhko/photoflow/pkg/status"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// dotFilePattern matches AppleDouble companion files anywhere in a project.
const dotFilePattern = "**/._*"

// 🧹 cleanupOperation reclaims disk space across the whole library: drops
// AppleDouble files, purges 1_EDIT (edits can be re-exported) and replaces
// raw selects with hard links into 0_RAW.
type cleanupOperation struct {
	BaseOperation
	libraryPath     string
	removeDotfiles  bool
	removeEdits     bool
	hardlinkSelects bool
}

// 🏭 NewCleanupOperation creates the cleanup operation for a library tree.
func NewCleanupOperation(libraryPath string, removeDotfiles, removeEdits, hardlinkSelects bool, opts Options) Operation {
	return &cleanupOperation{
		BaseOperation:   NewBaseOperation(opts),
		libraryPath:     libraryPath,
		removeDotfiles:  removeDotfiles,
		removeEdits:     removeEdits,
		hardlinkSelects: hardlinkSelects,
	}
}

func (op *cleanupOperation) Name() string { return "cleanup" }

// Execute cleans every project under the library path. Projects are
// processed one at a time; cleanup rewrites shared directories and is not
// parallelized.
func (op *cleanupOperation) Execute(ctx context.Context) error {
	logger := zerolog.Ctx(ctx)

	hardlinks := op.hardlinkSelects
	if hardlinks && !project.HardlinksSupported(op.libraryPath) {
		logger.Warn().Str("library", op.libraryPath).Msg("filesystem does not support hard links, selects left as copies")
		hardlinks = false
	}

	logger.Info().
		Str("library", op.libraryPath).
		Bool("remove_dotfiles", op.removeDotfiles).
		Bool("remove_edits", op.removeEdits).
		Bool("hardlink_selects", hardlinks).
		Bool("dry_run", op.DryRun).
		Msg("cleaning photo library")

	projects, err := project.Find(op.libraryPath)
	if err != nil {
		return err
	}

	for _, dir := range projects {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := op.cleanProject(ctx, dir, hardlinks); err != nil {
			return errors.Errorf("cleaning %s: %w", dir, err)
		}
	}
	return nil
}

// cleanProject runs the enabled cleanup steps on one project.
func (op *cleanupOperation) cleanProject(ctx context.Context, dir string, hardlinks bool) error {
	zerolog.Ctx(ctx).Info().Str("project", dir).Msg("cleaning project")

	if op.removeDotfiles {
		if err := op.removeDotFiles(dir); err != nil {
			return err
		}
	}
	if op.removeEdits {
		if err := op.removeEditFiles(dir); err != nil {
			return err
		}
	}
	if hardlinks {
		if err := op.hardlinkSelectFiles(dir); err != nil {
			return err
		}
	}
	return nil
}

// removeDotFiles deletes AppleDouble ._* files anywhere under the project.
func (op *cleanupOperation) removeDotFiles(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return errors.Errorf("relativizing %s: %w", path, err)
		}
		matched, err := doublestar.Match(dotFilePattern, filepath.ToSlash(rel))
		if err != nil {
			return errors.Errorf("matching %s: %w", rel, err)
		}
		if !matched {
			return nil
		}
		if !op.DryRun {
			if err := os.Remove(path); err != nil {
				op.Tracker.Record(status.FileResult{Path: path, Outcome: status.OutcomeFailed, Err: errors.Errorf("removing: %w", err)})
				return nil
			}
		}
		op.Tracker.Record(status.FileResult{Path: path, Outcome: status.OutcomeRemoved})
		return nil
	})
}

// removeEditFiles empties 1_EDIT; edits can always be re-exported from the
// editing application.
func (op *cleanupOperation) removeEditFiles(dir string) error {
	editDir := filepath.Join(dir, project.EditSubdir)
	entries, err := os.ReadDir(editDir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return errors.Errorf("reading %s: %w", editDir, err)
	}

	for _, e := range entries {
		path := filepath.Join(editDir, e.Name())
		if !op.DryRun {
			if err := os.RemoveAll(path); err != nil {
				op.Tracker.Record(status.FileResult{Path: path, Outcome: status.OutcomeFailed, Err: errors.Errorf("removing: %w", err)})
				continue
			}
		}
		op.Tracker.Record(status.FileResult{Path: path, Outcome: status.OutcomeRemoved})
	}
	return nil
}

// hardlinkSelectFiles replaces each select in the project root with a hard
// link to the identically-named file in 0_RAW, after verifying the contents
// match.
func (op *cleanupOperation) hardlinkSelectFiles(dir string) error {
	rawDir := filepath.Join(dir, project.RawSubdir)
	if info, err := os.Stat(rawDir); err != nil || !info.IsDir() {
		return nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return errors.Errorf("reading %s: %w", dir, err)
	}

	for _, e := range entries {
		if e.IsDir() || e.Type()&fs.ModeSymlink != 0 {
			continue
		}
		name := e.Name()
		if name[0] == '.' {
			continue
		}

		selectPath := filepath.Join(dir, name)
		rawPath := filepath.Join(rawDir, name)
		if _, err := os.Stat(rawPath); err != nil {
			continue // no counterpart in 0_RAW
		}

		same, err := project.SameFile(selectPath, rawPath)
		if err != nil {
			return err
		}
		if same {
			continue // already linked
		}

		selectSum, err := fileMD5(selectPath)
		if err != nil {
			return err
		}
		rawSum, err := fileMD5(rawPath)
		if err != nil {
			return err
		}
		if selectSum != rawSum {
			op.Tracker.Record(status.FileResult{
				Path:    selectPath,
				Outcome: status.OutcomeSkipped,
				Err:     errors.Errorf("content differs from %s/%s (MD5 %s vs %s)", project.RawSubdir, name, selectSum, rawSum),
			})
			continue
		}

		if !op.DryRun {
			if err := os.Remove(selectPath); err != nil {
				op.Tracker.Record(status.FileResult{Path: selectPath, Outcome: status.OutcomeFailed, Err: errors.Errorf("removing select: %w", err)})
				continue
			}
			if err := os.Link(rawPath, selectPath); err != nil {
				// The select is gone; this must surface loudly.
				op.Tracker.Record(status.FileResult{Path: selectPath, Outcome: status.OutcomeFailed, Err: errors.Errorf("linking to %s: %w", rawPath, err)})
				continue
			}
		}
		op.Tracker.Record(status.FileResult{Path: selectPath, Outcome: status.OutcomeLinked, Detail: project.RawSubdir + "/" + name})
	}
	return nil
}

// fileMD5 hashes a file's content for the link-safety comparison.
func fileMD5(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", errors.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	h := md5.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", errors.Errorf("hashing %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
