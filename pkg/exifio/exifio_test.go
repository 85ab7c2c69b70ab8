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

package exifio

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"
)

func TestFieldName(t *testing.T) {
	tests := []struct {
		tag  string
		want string
	}{
		{"Exif.Photo.LensModel", "LensModel"},
		{"Exif.Photo.ISOSpeedRatings", "ISO"},
		{"Exif.Image.DateTime", "ModifyDate"},
		{"Exif.Photo.DateTimeDigitized", "CreateDate"},
		{"Exif.Photo.FocalLengthIn35mmFilm", "FocalLengthIn35mmFormat"},
		// unknown tags pass through their last segment
		{"Exif.Photo.SubjectDistance", "SubjectDistance"},
		{"Xmp.dc.creator", "creator"},
		{"Orientation", "Orientation"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FieldName(tt.tag), "FieldName(%q)", tt.tag)
	}
}

func TestTagName_RoundTrip(t *testing.T) {
	for tag := range tagNames {
		assert.Equal(t, tag, TagName(FieldName(tag)), "known tags should round-trip")
	}
	assert.Equal(t, "SomethingElse", TagName("SomethingElse"), "unknown fields keep their exiftool name")
}

func TestCopiedTags_AllMapped(t *testing.T) {
	for _, tag := range CopiedTags {
		_, ok := tagNames[tag]
		assert.True(t, ok, "copied tag %s should have an exiftool field mapping", tag)
	}
}

func TestReadError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	err := error(&ReadError{Path: "a.jpg", Err: cause})

	var readErr *ReadError
	require.ErrorAs(t, err, &readErr)
	assert.Equal(t, "a.jpg", readErr.Path)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "a.jpg")
}

func TestWriteError_Unwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := error(&WriteError{Path: "b.jpg", Err: cause})

	var writeErr *WriteError
	require.ErrorAs(t, err, &writeErr)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "writing metadata")
}

func TestCaptureTime_NotAnImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "not-an-image.jpg")
	require.NoError(t, os.WriteFile(path, []byte("plain text"), 0644))

	_, err := CaptureTime(path)
	require.Error(t, err)
	var readErr *ReadError
	assert.ErrorAs(t, err, &readErr, "unreadable metadata should be a ReadError")
}

func TestCaptureTime_MissingFile(t *testing.T) {
	_, err := CaptureTime(filepath.Join(t.TempDir(), "nope.jpg"))
	require.Error(t, err)
	var readErr *ReadError
	assert.ErrorAs(t, err, &readErr)
}

func TestFileTime(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file.dat")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	ts, err := FileTime(path)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), ts, time.Minute)
}
