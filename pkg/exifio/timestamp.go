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
	"time"

	"github.com/djherbis/times"
	"github.com/rwcarlsen/goexif/exif"
)

// 🕐 CaptureTime extracts the capture timestamp (DateTimeOriginal, falling
// back to DateTime) without spawning a subprocess. Works for JPEG and
// TIFF-container raw formats (NEF, DNG, ...).
func CaptureTime(path string) (time.Time, error) {
	f, err := os.Open(path)
	if err != nil {
		return time.Time{}, &ReadError{Path: path, Err: err}
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return time.Time{}, &ReadError{Path: path, Err: err}
	}

	ts, err := x.DateTime()
	if err != nil {
		return time.Time{}, &ReadError{Path: path, Err: err}
	}
	return ts, nil
}

// 🕐 FileTime returns the file's creation time where the filesystem records
// one, otherwise its modification time. Fallback for files without a
// readable EXIF timestamp.
func FileTime(path string) (time.Time, error) {
	ts, err := times.Stat(path)
	if err != nil {
		return time.Time{}, &ReadError{Path: path, Err: err}
	}
	if ts.HasBirthTime() {
		return ts.BirthTime(), nil
	}
	return ts.ModTime(), nil
}
