// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: protocol/file.go
// Summary: Reading and writing presentations as JSON or binary files.

package protocol

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// BinaryExt selects the binary container when saving.
const BinaryExt = ".tsp"

// WriteJSON encodes a presentation as indented JSON.
func WriteJSON(w io.Writer, p *PlayablePresentation) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(p)
}

// ReadJSON decodes a JSON presentation.
func ReadJSON(r io.Reader) (*PlayablePresentation, error) {
	var p PlayablePresentation
	if err := json.NewDecoder(r).Decode(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Decode sniffs the container magic and decodes either format.
func Decode(r io.Reader) (*PlayablePresentation, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(4)
	if err == nil && binary.LittleEndian.Uint32(head) == magic {
		return ReadBinary(br)
	}
	return ReadJSON(br)
}

// LoadFile reads a presentation from disk in either format.
func LoadFile(path string) (*PlayablePresentation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	p, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("parse presentation %s: %w", path, err)
	}
	return p, nil
}

// Encode writes the presentation in the format implied by the file name.
func Encode(w io.Writer, p *PlayablePresentation, name string) error {
	if strings.EqualFold(filepath.Ext(name), BinaryExt) {
		return WriteBinary(w, p)
	}
	return WriteJSON(w, p)
}

// SaveFile writes a presentation; a ".tsp" extension selects the binary container.
func SaveFile(path string, p *PlayablePresentation) error {
	var buf bytes.Buffer
	if err := Encode(&buf, p, path); err != nil {
		return fmt.Errorf("encode presentation: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}
