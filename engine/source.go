// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: engine/source.go
// Summary: The authored presentation document: parsing, saving and validation.
// Usage: LoadSource reads .json, .yaml and .yml files; images are decoded
// relative to the source directory.

package engine

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/framegrace/texelshow/protocol"
)

// SourcePresentation is the authored document. Object order is paint order
// for equal z.
type SourcePresentation struct {
	Width      uint16
	Height     uint16
	FrameCount int
	Objects    []Object
	Markers    []protocol.Marker
}

// Blank returns an empty presentation of the given size.
func Blank(width, height uint16, frames int) *SourcePresentation {
	return &SourcePresentation{Width: width, Height: height, FrameCount: frames}
}

// Contract returns the terminal contract the presentation compiles for.
func (s *SourcePresentation) Contract() protocol.TerminalContract {
	return protocol.TerminalContract{Width: s.Width, Height: s.Height}
}

type sourceJSON struct {
	Width      uint16            `json:"width"`
	Height     uint16            `json:"height"`
	FrameCount int               `json:"frame_count"`
	Objects    []json.RawMessage `json:"objects"`
	Markers    []protocol.Marker `json:"markers,omitempty"`
}

func (s *SourcePresentation) MarshalJSON() ([]byte, error) {
	out := sourceJSON{
		Width:      s.Width,
		Height:     s.Height,
		FrameCount: s.FrameCount,
		Objects:    make([]json.RawMessage, 0, len(s.Objects)),
		Markers:    s.Markers,
	}
	for i, obj := range s.Objects {
		raw, err := EncodeObject(obj)
		if err != nil {
			return nil, fmt.Errorf("object %d: %w", i, err)
		}
		out.Objects = append(out.Objects, raw)
	}
	return json.Marshal(out)
}

func (s *SourcePresentation) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	for _, name := range []string{"width", "height", "frame_count", "objects"} {
		if _, ok := fields[name]; !ok {
			return fmt.Errorf("missing field %q", name)
		}
	}
	var in sourceJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	if in.FrameCount < 0 {
		return errors.New("frame_count must not be negative")
	}
	objects := make([]Object, 0, len(in.Objects))
	for i, raw := range in.Objects {
		obj, err := DecodeObject(raw)
		if err != nil {
			return fmt.Errorf("objects[%d]: %w", i, err)
		}
		objects = append(objects, obj)
	}
	*s = SourcePresentation{
		Width:      in.Width,
		Height:     in.Height,
		FrameCount: in.FrameCount,
		Objects:    objects,
		Markers:    in.Markers,
	}
	return nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// ParseSource decodes a JSON document.
func ParseSource(data []byte) (*SourcePresentation, error) {
	var src SourcePresentation
	if err := json.Unmarshal(data, &src); err != nil {
		return nil, err
	}
	return &src, nil
}

// ParseSourceYAML decodes a YAML document with the same schema as the JSON form.
func ParseSourceYAML(data []byte) (*SourcePresentation, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	converted, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	return ParseSource(converted)
}

// ReadSource parses a source file without touching referenced assets.
func ReadSource(path string) (*SourcePresentation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var src *SourcePresentation
	if isYAML(path) {
		src, err = ParseSourceYAML(data)
	} else {
		src, err = ParseSource(data)
	}
	if err != nil {
		return nil, fmt.Errorf("parse source %s: %w", path, err)
	}
	return src, nil
}

// LoadSource parses a source file, validates it and decodes image assets
// relative to the file's directory.
func LoadSource(path string) (*SourcePresentation, error) {
	src, err := ReadSource(path)
	if err != nil {
		return nil, err
	}
	if err := src.Validate(); err != nil {
		return nil, fmt.Errorf("validate source %s: %w", path, err)
	}
	if err := src.LoadAssets(filepath.Dir(path)); err != nil {
		return nil, err
	}
	return src, nil
}

// LoadAssets decodes the pixels of every image object.
func (s *SourcePresentation) LoadAssets(baseDir string) error {
	for _, obj := range s.Objects {
		if im, ok := obj.(*Image); ok {
			if err := im.LoadPixels(baseDir); err != nil {
				return err
			}
		}
	}
	return nil
}

// ImagePaths lists the files referenced by image objects, resolved against baseDir.
func (s *SourcePresentation) ImagePaths(baseDir string) []string {
	var paths []string
	for _, obj := range s.Objects {
		if im, ok := obj.(*Image); ok {
			p := im.Path
			if !filepath.IsAbs(p) {
				p = filepath.Join(baseDir, p)
			}
			paths = append(paths, p)
		}
	}
	return paths
}

// Encode writes the document as indented JSON, or YAML when yamlOut is set.
func (s *SourcePresentation) Encode(yamlOut bool) ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, err
	}
	if !yamlOut {
		return append(data, '\n'), nil
	}
	var doc any
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	return yaml.Marshal(doc)
}

// Save writes the document, choosing YAML for .yaml/.yml paths.
func (s *SourcePresentation) Save(path string) error {
	data, err := s.Encode(isYAML(path))
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// ValidationError reports a structural problem with one object.
type ValidationError struct {
	Index  int
	Kind   Kind
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("%s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("objects[%d] (%s) %s: %s", e.Index, e.Kind, e.Field, e.Reason)
}

// Validate checks the invariants decoding cannot: frame ranges, animation
// frames, QR levels, image paths and marker frames. All problems are
// returned joined. Problems rendering tolerates are reported by Warnings.
func (s *SourcePresentation) Validate() error {
	var errs []error
	add := func(idx int, kind Kind, field, reason string) {
		errs = append(errs, &ValidationError{Index: idx, Kind: kind, Field: field, Reason: reason})
	}
	if s.FrameCount < 0 {
		add(-1, "", "frame_count", "must not be negative")
	}
	for i, obj := range s.Objects {
		kind := obj.Kind()
		fr := Frames(obj)
		if fr.Start < 0 || fr.End < 0 {
			add(i, kind, "frames", "must not be negative")
		}
		for _, c := range obj.coordinates() {
			if c.Kind == CoordAnimated && (c.Anim.StartFrame < 0 || c.Anim.EndFrame < 0) {
				add(i, kind, "coordinate", "animation frames must not be negative")
			}
		}
		switch o := obj.(type) {
		case *Table:
			if o.Rows < 0 {
				add(i, kind, "rows", "must not be negative")
			}
		case *QRCode:
			if _, err := o.Bitmap(); err != nil {
				add(i, kind, "content", err.Error())
			}
		case *Image:
			if o.Path == "" {
				add(i, kind, "path", "must not be empty")
			}
		}
	}
	for _, m := range s.Markers {
		if m.FrameIndex < 0 || m.FrameIndex >= s.FrameCount {
			add(-1, "", "markers", fmt.Sprintf("frame %d out of range for %q", m.FrameIndex, m.Label))
		}
	}
	return errors.Join(errs...)
}

// Warnings lists problems that compile and edit tolerate: group members
// that are out of range or refer to the group itself, and negative table
// column fractions. Group geometry skips such members and table layout
// clamps negative widths to zero.
func (s *SourcePresentation) Warnings() []*ValidationError {
	var out []*ValidationError
	add := func(idx int, kind Kind, field, reason string) {
		out = append(out, &ValidationError{Index: idx, Kind: kind, Field: field, Reason: reason})
	}
	for i, obj := range s.Objects {
		switch o := obj.(type) {
		case *Group:
			for _, m := range o.Members {
				if m < 0 || m >= len(s.Objects) {
					add(i, KindGroup, "members", fmt.Sprintf("index %d out of range", m))
				} else if m == i {
					add(i, KindGroup, "members", "group contains itself")
				}
			}
		case *Table:
			for c, frac := range o.ColWidths {
				if frac < 0 {
					add(i, KindTable, "col_widths", fmt.Sprintf("column %d has a negative fraction", c))
				}
			}
		}
	}
	return out
}
