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

// Package project models the photo library layout. A project is a directory
// holding one shoot:
//
//	YYYY-MM-DD Description/
//	    0_RAW/     raw files and out-of-camera JPEGs
//	    1_EDIT/    full-size edited TIFFs
//	    2_EXPORT/  exported JPEGs
//	    *.raw      raw selects, hard-linked to 0_RAW
package project

import (
	"os"
	"path/filepath"

	"gitlab.com/tozd/go/errors"
)

// 📁 Project subdirectory names.
const (
	RawSubdir    = "0_RAW"
	EditSubdir   = "1_EDIT"
	ExportSubdir = "2_EXPORT"
)

// 📦 Locations holds the resolved directories of one project.
type Locations struct {
	Dir       string // project root
	RawDir    string // 0_RAW
	EditDir   string // 1_EDIT
	ExportDir string // 2_EXPORT
}

// 🎯 Locate resolves the standard directories of a project. RawDir and
// EditDir must exist; ExportDir is created when missing.
func Locate(dir string) (*Locations, error) {
	loc := &Locations{
		Dir:       dir,
		RawDir:    filepath.Join(dir, RawSubdir),
		EditDir:   filepath.Join(dir, EditSubdir),
		ExportDir: filepath.Join(dir, ExportSubdir),
	}

	if err := requireDir(loc.RawDir, "raw images"); err != nil {
		return nil, err
	}
	if err := requireDir(loc.EditDir, "edited images"); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(loc.ExportDir, 0755); err != nil {
		return nil, errors.Errorf("creating export directory %s: %w", loc.ExportDir, err)
	}

	return loc, nil
}

// 🎯 LocateRaw resolves just the raw directory; used by rename, which never
// touches 1_EDIT or 2_EXPORT.
func LocateRaw(dir string) (string, error) {
	rawDir := filepath.Join(dir, RawSubdir)
	if err := requireDir(rawDir, "raw images"); err != nil {
		return "", err
	}
	return rawDir, nil
}

func requireDir(path, what string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return errors.Errorf("%s directory not found: %s", what, path)
	}
	if err != nil {
		return errors.Errorf("checking %s directory %s: %w", what, path, err)
	}
	if !info.IsDir() {
		return errors.Errorf("%s path is not a directory: %s", what, path)
	}
	return nil
}

// IsProject reports whether dir contains any of the standard subdirectories.
func IsProject(dir string) (bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false, errors.Errorf("reading directory %s: %w", dir, err)
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		switch e.Name() {
		case RawSubdir, EditSubdir, ExportSubdir:
			return true, nil
		}
	}
	return false, nil
}

// 🔍 Find walks the library tree and returns every project directory.
// Recursion stops at a project: a project's subdirectories are never
// themselves projects.
func Find(libraryPath string) ([]string, error) {
	isProj, err := IsProject(libraryPath)
	if err != nil {
		return nil, err
	}
	if isProj {
		return []string{libraryPath}, nil
	}

	entries, err := os.ReadDir(libraryPath)
	if err != nil {
		return nil, errors.Errorf("reading directory %s: %w", libraryPath, err)
	}

	var projects []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		sub, err := Find(filepath.Join(libraryPath, e.Name()))
		if err != nil {
			return nil, err
		}
		projects = append(projects, sub...)
	}
	return projects, nil
}

// 🔗 HardlinksSupported probes whether the filesystem under path supports
// hard links by linking and removing a scratch file.
func HardlinksSupported(path string) bool {
	probe := filepath.Join(path, ".photoflow-probe.dat")
	link := probe + ".link"
	defer os.Remove(link)
	defer os.Remove(probe)

	if err := os.WriteFile(probe, []byte("TEST"), 0644); err != nil {
		return false
	}
	if err := os.Link(probe, link); err != nil {
		return false
	}
	return true
}

// SameFile reports whether two paths refer to the same inode.
func SameFile(a, b string) (bool, error) {
	ai, err := os.Stat(a)
	if err != nil {
		return false, errors.Errorf("stat %s: %w", a, err)
	}
	bi, err := os.Stat(b)
	if err != nil {
		return false, errors.Errorf("stat %s: %w", b, err)
	}
	return os.SameFile(ai, bi), nil
}
