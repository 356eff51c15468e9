// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: internal/assets/assets_test.go
// Summary: Image decoding and cell-resolution scaling.
// Usage: Executed during `go test` to guard against regressions.

package assets

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func writePNG(t *testing.T, w, h int, c color.RGBA) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.SetRGBA(x, y, c)
		}
	}
	path := filepath.Join(t.TempDir(), "solid.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return path
}

func TestLoadScalesToTwoPixelsPerRow(t *testing.T) {
	red := color.RGBA{R: 255, A: 255}
	path := writePNG(t, 40, 40, red)
	img, err := Load(path, 0, 4, 3)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 4 || b.Dy() != 6 {
		t.Fatalf("bounds %v", b)
	}
	if got := img.RGBAAt(2, 3); got != red {
		t.Fatalf("pixel %v", got)
	}
}

func TestScaleRejectsEmptyTarget(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2, 2))
	if _, err := Scale(src, 0, 4); !errors.Is(err, ErrEmptyTarget) {
		t.Fatalf("expected ErrEmptyTarget, got %v", err)
	}
}

func TestDecodeErrors(t *testing.T) {
	if _, err := Decode(filepath.Join(t.TempDir(), "missing.png"), 0); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist, got %v", err)
	}
	path := filepath.Join(t.TempDir(), "junk.png")
	if err := os.WriteFile(path, []byte("not an image"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Decode(path, 0); err == nil {
		t.Fatalf("decoding junk succeeded")
	}
}
