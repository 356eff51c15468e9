// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: engine/image.go
// Summary: Raster images and PDF pages drawn with upper half blocks.

package engine

import (
	"fmt"
	"image"
	"path/filepath"

	"github.com/framegrace/texelshow/internal/assets"
	"github.com/framegrace/texelshow/protocol"
)

// alphaCutoff is the alpha below which a pixel counts as transparent.
const alphaCutoff = 0x80

// Image draws a picture scaled to Width by Height cells. Each cell shows two
// vertical pixels as '▀' with the upper pixel in the foreground and the
// lower one in the background. Pixels are loaded by LoadPixels before
// compiling; an image without pixels draws nothing.
type Image struct {
	Path     string     `json:"path"`
	Page     int        `json:"page,omitempty"`
	Position Position   `json:"position"`
	Width    Coordinate `json:"width"`
	Height   Coordinate `json:"height"`
	Frames   FrameRange `json:"frames"`
	ZOrder   int32      `json:"z_order"`

	pixels *image.RGBA
}

func (im *Image) Kind() Kind              { return KindImage }
func (im *Image) frameRange() *FrameRange { return &im.Frames }
func (im *Image) coordinates() []*Coordinate {
	return []*Coordinate{&im.Position.X, &im.Position.Y, &im.Width, &im.Height}
}

// LoadPixels decodes the image relative to baseDir at the size it has on
// frame Frames.Start.
func (im *Image) LoadPixels(baseDir string) error {
	path := im.Path
	if !filepath.IsAbs(path) {
		path = filepath.Join(baseDir, path)
	}
	w := int(im.Width.Evaluate(im.Frames.Start))
	h := int(im.Height.Evaluate(im.Frames.Start))
	if w == 0 || h == 0 {
		im.pixels = nil
		return nil
	}
	px, err := assets.Load(path, im.Page, w, h)
	if err != nil {
		return fmt.Errorf("image %s: %w", im.Path, err)
	}
	im.pixels = px
	return nil
}

// SetPixels installs already scaled pixels, two rows per cell.
func (im *Image) SetPixels(px *image.RGBA) {
	im.pixels = px
}

func pixelColor(px *image.RGBA, x, y int) (protocol.Color, bool) {
	c := px.RGBAAt(x, y)
	if c.A < alphaCutoff {
		return protocol.Color{}, false
	}
	return protocol.RGB(c.R, c.G, c.B), true
}

func (im *Image) Resolve(frame int, ops []protocol.DrawOp) []protocol.DrawOp {
	if !im.Frames.Contains(frame) || im.pixels == nil {
		return ops
	}
	bx, by := im.Position.At(frame)
	b := im.pixels.Bounds()
	w := min(int(im.Width.Evaluate(frame)), b.Dx())
	h := min(int(im.Height.Evaluate(frame)), b.Dy()/2)
	for row := range h {
		for col := range w {
			top, topOK := pixelColor(im.pixels, b.Min.X+col, b.Min.Y+row*2)
			bottom, bottomOK := pixelColor(im.pixels, b.Min.X+col, b.Min.Y+row*2+1)
			if !topOK && !bottomOK {
				continue
			}
			ops = pushOp(ops, bx+col, by+row, '▀', protocol.Style{Fg: top, Bg: bottom}, im.ZOrder)
		}
	}
	return ops
}
