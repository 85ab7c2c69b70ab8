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

// Package imgproc converts edited TIFFs into shareable JPEGs: Lanczos
// resize to a fit box, optional layered border, quality-controlled encode.
package imgproc

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/iblazhko/photoflow/pkg/config"
	"gitlab.com/tozd/go/errors"
)

// grayColor converts a linear gray level to a color.
func grayColor(gray float64) color.Color {
	y := uint8(gray*255 + 0.5)
	return color.NRGBA{R: y, G: y, B: y, A: 255}
}

// frame surrounds img with a uniform strip of the given color.
func frame(img image.Image, size int, c color.Color) *image.NRGBA {
	b := img.Bounds()
	canvas := imaging.New(b.Dx()+2*size, b.Dy()+2*size, c)
	return imaging.Paste(canvas, img, image.Pt(size, size))
}

// 🖼️ AddBorder composes the separator strips (innermost first), the mat and
// the bottom padding around an image.
func AddBorder(img image.Image, border *config.Border) *image.NRGBA {
	out := imaging.Clone(img)
	for _, sep := range border.Separators {
		out = frame(out, sep.Size, grayColor(sep.Gray))
	}

	// Mat, with extra padding below.
	matColor := grayColor(border.Gray)
	b := out.Bounds()
	canvas := imaging.New(b.Dx()+2*border.Size, b.Dy()+2*border.Size+border.BottomPadding, matColor)
	return imaging.Paste(canvas, out, image.Pt(border.Size, border.Size))
}

// 🎯 Convert reads the source image, scales it down to fit the preset box
// (small images are left at their size), applies the border and writes a
// JPEG at the preset quality.
func Convert(srcPath, dstPath string, opts config.Resize) error {
	img, err := imaging.Open(srcPath)
	if err != nil {
		return errors.Errorf("opening %s: %w", srcPath, err)
	}

	resized := imaging.Fit(img, opts.Width, opts.Height, imaging.Lanczos)

	var out image.Image = resized
	if opts.Border != nil {
		out = AddBorder(resized, opts.Border)
	}

	if err := imaging.Save(out, dstPath, imaging.JPEGQuality(opts.Quality)); err != nil {
		return errors.Errorf("saving %s: %w", dstPath, err)
	}
	return nil
}
