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

// Package config holds the option structs shared by the photoflow commands.
package config

import (
	"fmt"

	"gitlab.com/tozd/go/errors"
)

// 📐 Border colors, linear gray. The mat is near-white with a thin
// light/dark/light separator between the image and the mat.
const (
	BorderGray         = 0.96
	SeparatorLightGray = 0.8
	SeparatorDarkGray  = 0.6
)

// 🖼️ Separator is one strip of the border separator, innermost first.
type Separator struct {
	Gray float64 // linear gray level, 0 black .. 1 white
	Size int     // strip width in pixels
}

// 🖼️ Border describes the mat around an exported image.
type Border struct {
	Gray          float64     // mat gray level
	Size          int         // mat width in pixels
	BottomPadding int         // extra pixels below the mat
	Separators    []Separator // strips between image and mat, innermost first
}

// 📏 Resize describes how an export preset scales and encodes an image.
type Resize struct {
	Width   int     // fit-box width; images are never upscaled
	Height  int     // fit-box height
	Border  *Border // nil when --no-border
	Quality int     // JPEG quality
}

// 📦 Export is the full configuration of one export run.
type Export struct {
	Size      string // large, medium or small
	AddBorder bool
	RulesFile string // optional EXIF override rules file
	Resize    Resize
}

// Sizes are the supported export presets.
var Sizes = []string{"large", "medium", "small"}

// separators returns the standard light/dark/light separator strips.
func separators(darkSize int) []Separator {
	return []Separator{
		{Gray: SeparatorLightGray, Size: 1},
		{Gray: SeparatorDarkGray, Size: darkSize},
		{Gray: SeparatorLightGray, Size: 1},
	}
}

// 🎯 ResizeFor returns the resize settings for a preset name.
func ResizeFor(size string, addBorder bool) (Resize, error) {
	var r Resize
	switch size {
	case "large":
		r = Resize{Width: 4000, Height: 3500, Quality: 99}
		if addBorder {
			r.Border = &Border{Gray: BorderGray, Size: 100, BottomPadding: 20, Separators: separators(2)}
		}
	case "medium":
		r = Resize{Width: 2000, Height: 1500, Quality: 97}
		if addBorder {
			r.Border = &Border{Gray: BorderGray, Size: 40, BottomPadding: 10, Separators: separators(1)}
		}
	case "small":
		r = Resize{Width: 900, Height: 800, Quality: 95}
		if addBorder {
			r.Border = &Border{Gray: BorderGray, Size: 20, BottomPadding: 5, Separators: separators(1)}
		}
	default:
		return Resize{}, errors.Errorf("size %q is not supported (want large, medium or small)", size)
	}
	return r, nil
}

// 🏭 NewExport builds and validates an export configuration.
func NewExport(size string, addBorder bool, rulesFile string) (*Export, error) {
	resize, err := ResizeFor(size, addBorder)
	if err != nil {
		return nil, err
	}
	return &Export{
		Size:      size,
		AddBorder: addBorder,
		RulesFile: rulesFile,
		Resize:    resize,
	}, nil
}

// 📝 String returns a one-line description for the run banner.
func (e *Export) String() string {
	overrides := "none"
	if e.RulesFile != "" {
		overrides = e.RulesFile
	}
	return fmt.Sprintf("%dx%d border=%v overrides=%s", e.Resize.Width, e.Resize.Height, e.AddBorder, overrides)
}
