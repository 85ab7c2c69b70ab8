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

// Package exifio reads and writes EXIF metadata. Bulk read/write goes through
// an exiftool session; tag names use the Exiv2 namespaced convention
// ("Exif.Photo.LensModel") so override rule files are portable between tools.
package exifio

import (
	"fmt"

	exiftool "github.com/barasher/go-exiftool"
	"github.com/iblazhko/photoflow/pkg/rules"
	"gitlab.com/tozd/go/errors"
)

// ❌ ReadError means one photo's metadata could not be read. The batch
// skips the file and continues.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("reading metadata from %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// ❌ WriteError means tags could not be written back to one photo. The batch
// records the failure and continues.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("writing metadata to %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// 🏷️ tagNames maps namespaced tag names to exiftool field names for the tag
// set photoflow copies between files.
var tagNames = map[string]string{
	"Exif.Image.Artist":                "Artist",
	"Exif.Image.Copyright":             "Copyright",
	"Exif.Image.DateTime":              "ModifyDate",
	"Exif.Image.Make":                  "Make",
	"Exif.Image.Model":                 "Model",
	"Exif.Image.Software":              "Software",
	"Exif.Photo.ApertureValue":         "ApertureValue",
	"Exif.Photo.BrightnessValue":       "BrightnessValue",
	"Exif.Photo.DateTimeDigitized":     "CreateDate",
	"Exif.Photo.DateTimeOriginal":      "DateTimeOriginal",
	"Exif.Photo.ExifVersion":           "ExifVersion",
	"Exif.Photo.ExposureBiasValue":     "ExposureCompensation",
	"Exif.Photo.ExposureProgram":       "ExposureProgram",
	"Exif.Photo.ExposureTime":          "ExposureTime",
	"Exif.Photo.Flash":                 "Flash",
	"Exif.Photo.FNumber":               "FNumber",
	"Exif.Photo.FocalLength":           "FocalLength",
	"Exif.Photo.FocalLengthIn35mmFilm": "FocalLengthIn35mmFormat",
	"Exif.Photo.ISOSpeedRatings":       "ISO",
	"Exif.Photo.LensMake":              "LensMake",
	"Exif.Photo.LensModel":             "LensModel",
	"Exif.Photo.LensSpecification":     "LensInfo",
	"Exif.Photo.LightSource":           "LightSource",
	"Exif.Photo.MaxApertureValue":      "MaxApertureValue",
	"Exif.Photo.MeteringMode":          "MeteringMode",
	"Exif.Photo.SensitivityType":       "SensitivityType",
	"Exif.Photo.ShutterSpeedValue":     "ShutterSpeedValue",
}

// fieldNames is the reverse of tagNames.
var fieldNames = map[string]string{}

func init() {
	for tag, field := range tagNames {
		fieldNames[field] = tag
	}
}

// 📋 CopiedTags is the tag set copied from the raw source into exported
// JPEGs, in write order.
var CopiedTags = []string{
	"Exif.Image.Artist",
	"Exif.Image.Copyright",
	"Exif.Image.DateTime",
	"Exif.Image.Make",
	"Exif.Image.Model",
	"Exif.Image.Software",
	"Exif.Photo.ApertureValue",
	"Exif.Photo.BrightnessValue",
	"Exif.Photo.DateTimeDigitized",
	"Exif.Photo.DateTimeOriginal",
	"Exif.Photo.ExifVersion",
	"Exif.Photo.ExposureBiasValue",
	"Exif.Photo.ExposureProgram",
	"Exif.Photo.ExposureTime",
	"Exif.Photo.Flash",
	"Exif.Photo.FNumber",
	"Exif.Photo.FocalLength",
	"Exif.Photo.FocalLengthIn35mmFilm",
	"Exif.Photo.ISOSpeedRatings",
	"Exif.Photo.LensMake",
	"Exif.Photo.LensModel",
	"Exif.Photo.LensSpecification",
	"Exif.Photo.LightSource",
	"Exif.Photo.MaxApertureValue",
	"Exif.Photo.MeteringMode",
	"Exif.Photo.SensitivityType",
	"Exif.Photo.ShutterSpeedValue",
}

// FieldName translates a namespaced tag name to the exiftool field name.
// Unknown names pass through their last segment, which is how exiftool
// spells most EXIF tags.
func FieldName(tag string) string {
	if field, ok := tagNames[tag]; ok {
		return field
	}
	for i := len(tag) - 1; i >= 0; i-- {
		if tag[i] == '.' {
			return tag[i+1:]
		}
	}
	return tag
}

// TagName translates an exiftool field name back to the namespaced form.
// Fields outside the known set keep their exiftool name.
func TagName(field string) string {
	if tag, ok := fieldNames[field]; ok {
		return tag
	}
	return field
}

// 💾 Store is a metadata read/write session backed by one exiftool process.
// Not safe for concurrent use; each worker opens its own Store.
type Store struct {
	et *exiftool.Exiftool
}

// 🏭 NewStore starts an exiftool session.
func NewStore() (*Store, error) {
	et, err := exiftool.NewExiftool()
	if err != nil {
		return nil, errors.Errorf("starting exiftool: %w", err)
	}
	return &Store{et: et}, nil
}

// Close terminates the exiftool session.
func (s *Store) Close() error {
	if err := s.et.Close(); err != nil {
		return errors.Errorf("closing exiftool: %w", err)
	}
	return nil
}

// 📖 Read returns the photo's metadata as a tag-name→value map. All present
// fields are returned; known EXIF fields get namespaced names.
func (s *Store) Read(path string) (map[string]string, error) {
	fms := s.et.ExtractMetadata(path)
	if len(fms) != 1 {
		return nil, &ReadError{Path: path, Err: errors.New("no metadata returned")}
	}
	fm := fms[0]
	if fm.Err != nil {
		return nil, &ReadError{Path: path, Err: fm.Err}
	}

	metadata := make(map[string]string, len(fm.Fields))
	for field, value := range fm.Fields {
		if value == nil {
			continue
		}
		metadata[TagName(field)] = fmt.Sprint(value)
	}
	return metadata, nil
}

// 🧹 Strip removes all metadata from the photo. Used on freshly exported
// JPEGs before the curated tag set is written.
func (s *Store) Strip(path string) error {
	fm := exiftool.EmptyFileMetadata()
	fm.File = path
	fm.Fields["All"] = ""
	fms := []exiftool.FileMetadata{fm}
	s.et.WriteMetadata(fms)
	if fms[0].Err != nil {
		return &WriteError{Path: path, Err: fms[0].Err}
	}
	return nil
}

// ✍️ Write merges the mutation sequence into the photo's tag set. Mutations
// are applied in order, so a later mutation for the same tag name wins;
// tags not named are left untouched.
func (s *Store) Write(path string, muts []rules.Tag) error {
	if len(muts) == 0 {
		return nil
	}
	fm := exiftool.EmptyFileMetadata()
	fm.File = path
	for _, tag := range muts {
		fm.SetString(FieldName(tag.Name), tag.Value)
	}
	fms := []exiftool.FileMetadata{fm}
	s.et.WriteMetadata(fms)
	if fms[0].Err != nil {
		return &WriteError{Path: path, Err: fms[0].Err}
	}
	return nil
}
