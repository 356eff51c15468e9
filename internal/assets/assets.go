// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: internal/assets/assets.go
// Summary: Loads raster images and PDF pages and scales them to cell resolution.

package assets

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// PDFDPI is the resolution PDF pages are rasterised at before scaling.
const PDFDPI = 96

// ErrEmptyTarget is returned when the requested size has no pixels.
var ErrEmptyTarget = errors.New("assets: target size must be positive")

// Decode opens path as an image. PDF files are rendered through MuPDF;
// page selects the zero-based page and is ignored for raster images.
func Decode(path string, page int) (image.Image, error) {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return renderPDFPage(path, page)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

func renderPDFPage(path string, page int) (image.Image, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	if page < 0 || page >= doc.NumPage() {
		return nil, fmt.Errorf("%s: page %d out of range (%d pages)", path, page, doc.NumPage())
	}
	return doc.ImageDPI(page, PDFDPI)
}

// Scale resamples src to exactly w by h pixels.
func Scale(src image.Image, w, h int) (*image.RGBA, error) {
	if w <= 0 || h <= 0 {
		return nil, ErrEmptyTarget
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
	return dst, nil
}

// Load decodes path and scales it to w cells by h cell rows, using two
// vertical pixels per cell.
func Load(path string, page, w, h int) (*image.RGBA, error) {
	img, err := Decode(path, page)
	if err != nil {
		return nil, err
	}
	return Scale(img, w, h*2)
}
