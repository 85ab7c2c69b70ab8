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

	"github.com/iblazhko/photoflow/pkg/config"
	"github.com/iblazhko/photoflow/pkg/exifio"
	"github.com/iblazhko/photoflow/pkg/imgproc"
	"github.com/iblazhko/photoflow/pkg/project"
	"github.com/iblazhko/photoflow/pkg/rules"
	"github.com/iblazhko/photoflow/pkg/status"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

// 📤 File formats of the export pipeline.
const (
	oocFormat    = "jpg" // out-of-camera JPEG, preferred metadata source
	editFormat   = "tif" // full-size edits from the editing app
	exportFormat = "jpg"
)

// Stem suffixes added by editing tools. "-Enhanced-NR" is dropped from the
// exported name; both are dropped when locating the metadata source.
const (
	enhancedSuffix = "-Enhanced-NR"
	bwSuffix       = "-BW"
)

// 💾 metadataStore is the metadata read/write collaborator; satisfied by
// exifio.Store.
type metadataStore interface {
	Read(path string) (map[string]string, error)
	Strip(path string) error
	Write(path string, muts []rules.Tag) error
	Close() error
}

// 📤 exportOperation converts edited TIFFs into shareable JPEGs and carries
// the curated EXIF tag set over from the raw source, with override rules
// applied.
type exportOperation struct {
	BaseOperation
	projectDir string
	cfg        *config.Export
	ruleSet    rules.RuleSet
	newStore   func() (metadataStore, error)

	// One exiftool session shared across workers; image conversion runs in
	// parallel, metadata access is serialized on this mutex.
	metaMu sync.Mutex
	store  metadataStore
}

// 🏭 NewExportOperation creates the export operation for one project. The
// rule set has been loaded and validated by the caller.
func NewExportOperation(projectDir string, cfg *config.Export, ruleSet rules.RuleSet, opts Options) Operation {
	return &exportOperation{
		BaseOperation: NewBaseOperation(opts),
		projectDir:    projectDir,
		cfg:           cfg,
		ruleSet:       ruleSet,
		newStore: func() (metadataStore, error) {
			return exifio.NewStore()
		},
	}
}

func (op *exportOperation) Name() string { return "export" }

// Execute converts every edited TIFF in 1_EDIT.
func (op *exportOperation) Execute(ctx context.Context) error {
	logger := zerolog.Ctx(ctx)

	loc, err := project.Locate(op.projectDir)
	if err != nil {
		return err
	}

	stems, err := editedStems(loc.EditDir)
	if err != nil {
		return err
	}

	logger.Info().
		Str("project", loc.Dir).
		Str("options", op.cfg.String()).
		Int("files", len(stems)).
		Bool("dry_run", op.DryRun).
		Msg("exporting edited images")

	if !op.DryRun {
		store, err := op.newStore()
		if err != nil {
			return err
		}
		defer store.Close()
		op.store = store
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(op.workers())
	for _, stem := range stems {
		stem := stem
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			op.exportFile(ctx, loc, stem)
			return nil
		})
	}
	return g.Wait()
}

// editedStems lists the stems of edited TIFFs, sorted.
func editedStems(editDir string) ([]string, error) {
	pattern := filepath.Join(editDir, "*."+editFormat)
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, errors.Errorf("globbing %s: %w", pattern, err)
	}
	if len(matches) == 0 {
		return nil, errors.Errorf("no %q files found", pattern)
	}

	stems := make([]string, 0, len(matches))
	for _, m := range matches {
		base := filepath.Base(m)
		stems = append(stems, strings.TrimSuffix(base, filepath.Ext(base)))
	}
	sort.Strings(stems)
	return stems, nil
}

// exportFile converts one edited TIFF and writes its metadata. Conversion
// failure is a per-file failure; metadata-read trouble degrades to an
// export without metadata, with a warning.
func (op *exportOperation) exportFile(ctx context.Context, loc *project.Locations, stem string) {
	srcName := stem + "." + editFormat
	targetName := strings.TrimSuffix(stem, enhancedSuffix) + "." + exportFormat

	src := filepath.Join(loc.EditDir, srcName)
	dst := filepath.Join(loc.ExportDir, targetName)

	if op.DryRun {
		op.Tracker.Record(status.FileResult{Path: srcName, Outcome: status.OutcomeExported, Detail: targetName})
		return
	}

	if err := imgproc.Convert(src, dst, op.cfg.Resize); err != nil {
		op.Tracker.Record(status.FileResult{Path: srcName, Outcome: status.OutcomeFailed, Err: err})
		return
	}

	if err := op.writeMetadata(ctx, loc, stem, dst); err != nil {
		var readErr *exifio.ReadError
		if errors.As(err, &readErr) {
			// The JPEG is exported either way; only the tags are missing.
			op.Tracker.Record(status.FileResult{Path: srcName, Outcome: status.OutcomeExported, Detail: targetName + ", no metadata", Err: err})
			return
		}
		op.Tracker.Record(status.FileResult{Path: srcName, Outcome: status.OutcomeFailed, Err: err})
		return
	}

	op.Tracker.Record(status.FileResult{Path: srcName, Outcome: status.OutcomeExported, Detail: targetName})
}

// writeMetadata copies the curated tag set from the raw source into the
// exported JPEG and applies the override rules.
func (op *exportOperation) writeMetadata(ctx context.Context, loc *project.Locations, stem, dst string) error {
	source, err := metadataSource(loc, stem)
	if err != nil {
		return err
	}

	op.metaMu.Lock()
	defer op.metaMu.Unlock()

	metadata, err := op.store.Read(source)
	if err != nil {
		return err
	}

	// Curated tags from the source first, then rule output; applying in
	// order makes rule mutations win over copied values.
	var muts []rules.Tag
	for _, name := range exifio.CopiedTags {
		if value, ok := metadata[name]; ok {
			muts = append(muts, rules.Tag{Name: name, Value: value, Type: rules.DefaultValueType})
		}
	}
	muts = append(muts, rules.Evaluate(metadata, op.ruleSet)...)

	zerolog.Ctx(ctx).Debug().Str("source", source).Str("target", dst).Int("tags", len(muts)).Msg("writing metadata")

	if err := op.store.Strip(dst); err != nil {
		return err
	}
	return op.store.Write(dst, muts)
}

// metadataSource finds the file to copy metadata from: the out-of-camera
// JPEG in 0_RAW, else any file in 0_RAW sharing the normalized stem, else
// the same in the project root (raw selects).
func metadataSource(loc *project.Locations, stem string) (string, error) {
	sourceStem := strings.TrimSuffix(strings.TrimSuffix(stem, bwSuffix), enhancedSuffix)

	ooc := filepath.Join(loc.RawDir, sourceStem+"."+oocFormat)
	if _, err := os.Stat(ooc); err == nil {
		return ooc, nil
	}

	pattern := sourceStem + "*.*"
	for _, dir := range []string{loc.RawDir, loc.Dir} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return "", errors.Errorf("globbing %s: %w", pattern, err)
		}
		sort.Strings(matches)
		for _, m := range matches {
			if info, err := os.Stat(m); err == nil && !info.IsDir() {
				return m, nil
			}
		}
	}
	return "", &exifio.ReadError{Path: stem, Err: errors.Errorf("no %q files found to copy metadata from", pattern)}
}
