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

package project_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/iblazhko/photoflow/pkg/project"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mkdirs(t *testing.T, base string, dirs ...string) {
	t.Helper()
	for _, d := range dirs {
		require.NoError(t, os.MkdirAll(filepath.Join(base, d), 0755))
	}
}

func TestLocate(t *testing.T) {
	t.Run("full_project", func(t *testing.T) {
		dir := t.TempDir()
		mkdirs(t, dir, project.RawSubdir, project.EditSubdir)

		loc, err := project.Locate(dir)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "0_RAW"), loc.RawDir)
		assert.Equal(t, filepath.Join(dir, "1_EDIT"), loc.EditDir)
		assert.DirExists(t, loc.ExportDir, "2_EXPORT should be created when missing")
	})

	t.Run("missing_raw", func(t *testing.T) {
		dir := t.TempDir()
		mkdirs(t, dir, project.EditSubdir)

		_, err := project.Locate(dir)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "raw images directory not found")
	})

	t.Run("missing_edit", func(t *testing.T) {
		dir := t.TempDir()
		mkdirs(t, dir, project.RawSubdir)

		_, err := project.Locate(dir)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "edited images directory not found")
	})
}

func TestFind(t *testing.T) {
	lib := t.TempDir()

	// Two projects at different depths, one plain directory, one project
	// with a nested directory that must not be descended into.
	mkdirs(t, lib,
		"2025-06-01 Alps/0_RAW",
		"2025-06-01 Alps/1_EDIT",
		"2025-06-01 Alps/extra/0_RAW", // inside a project, must not be found
		"archive/2024/2024-12-24 Home/0_RAW",
		"notes",
	)

	projects, err := project.Find(lib)
	require.NoError(t, err)

	require.Len(t, projects, 2)
	assert.Contains(t, projects, filepath.Join(lib, "2025-06-01 Alps"))
	assert.Contains(t, projects, filepath.Join(lib, "archive/2024/2024-12-24 Home"))
}

func TestFind_LibraryIsProject(t *testing.T) {
	lib := t.TempDir()
	mkdirs(t, lib, project.RawSubdir)

	projects, err := project.Find(lib)
	require.NoError(t, err)
	assert.Equal(t, []string{lib}, projects)
}

func TestHardlinksSupported(t *testing.T) {
	dir := t.TempDir()
	// tmpfs and every filesystem the tests run on support hard links; the
	// interesting assertion is that the probe cleans up after itself.
	assert.True(t, project.HardlinksSupported(dir))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "probe files should be removed")
}

func TestSameFile(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.dat")
	b := filepath.Join(dir, "b.dat")
	c := filepath.Join(dir, "c.dat")
	require.NoError(t, os.WriteFile(a, []byte("x"), 0644))
	require.NoError(t, os.Link(a, b))
	require.NoError(t, os.WriteFile(c, []byte("x"), 0644))

	same, err := project.SameFile(a, b)
	require.NoError(t, err)
	assert.True(t, same)

	same, err = project.SameFile(a, c)
	require.NoError(t, err)
	assert.False(t, same, "equal content in different inodes is not the same file")
}
