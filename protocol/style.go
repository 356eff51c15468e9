// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: protocol/style.go
// Summary: Colour and style primitives shared by the compiler, renderer and player.
// Notes: Colours reuse the wire ColorModel so a Style maps 1:1 onto a StyleEntry.

package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// NamedColor is one of the eight basic terminal colours.
type NamedColor uint8

const (
	Black NamedColor = iota
	Red
	Green
	Yellow
	Blue
	Magenta
	Cyan
	White
)

var namedColorNames = [...]string{"black", "red", "green", "yellow", "blue", "magenta", "cyan", "white"}

func (n NamedColor) String() string {
	if int(n) < len(namedColorNames) {
		return namedColorNames[n]
	}
	return "color(" + strconv.Itoa(int(n)) + ")"
}

// ParseNamedColor maps a snake_case colour name to its NamedColor.
func ParseNamedColor(name string) (NamedColor, bool) {
	for i, candidate := range namedColorNames {
		if candidate == name {
			return NamedColor(i), true
		}
	}
	return 0, false
}

// Color is either unset (ColorModelDefault), one of the eight named colours
// (ColorModelANSI16, Value 0-7) or a 24-bit colour (ColorModelRGB, Value 0xRRGGBB).
type Color struct {
	Model ColorModel
	Value uint32
}

var errInvalidColor = errors.New("protocol: invalid colour")

// Named returns the colour for a basic terminal colour name.
func Named(n NamedColor) Color {
	return Color{Model: ColorModelANSI16, Value: uint32(n)}
}

// RGB returns an explicit 24-bit colour.
func RGB(r, g, b uint8) Color {
	return Color{Model: ColorModelRGB, Value: uint32(r)<<16 | uint32(g)<<8 | uint32(b)}
}

// IsSet reports whether the colour carries a value.
func (c Color) IsSet() bool {
	return c.Model != ColorModelDefault
}

// Components returns the red, green and blue channels of an RGB colour.
func (c Color) Components() (r, g, b uint8) {
	return uint8(c.Value >> 16), uint8(c.Value >> 8), uint8(c.Value)
}

func (c Color) String() string {
	switch c.Model {
	case ColorModelANSI16:
		return NamedColor(c.Value).String()
	case ColorModelRGB:
		r, g, b := c.Components()
		return fmt.Sprintf("#%02x%02x%02x", r, g, b)
	default:
		return "none"
	}
}

// ParseColor accepts a colour name ("red"), a hex triple ("#ff8800") or
// "none" for an unset colour.
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" || s == "none" {
		return Color{}, nil
	}
	if n, ok := ParseNamedColor(s); ok {
		return Named(n), nil
	}
	if strings.HasPrefix(s, "#") && len(s) == 7 {
		v, err := strconv.ParseUint(s[1:], 16, 32)
		if err != nil {
			return Color{}, fmt.Errorf("%w %q: %v", errInvalidColor, s, err)
		}
		return Color{Model: ColorModelRGB, Value: uint32(v)}, nil
	}
	return Color{}, fmt.Errorf("%w %q", errInvalidColor, s)
}

type rgbJSON struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// MarshalJSON writes named colours as a bare string and RGB colours as {r,g,b}.
func (c Color) MarshalJSON() ([]byte, error) {
	switch c.Model {
	case ColorModelANSI16:
		return json.Marshal(NamedColor(c.Value).String())
	case ColorModelRGB:
		r, g, b := c.Components()
		return json.Marshal(rgbJSON{R: r, G: g, B: b})
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts either representation written by MarshalJSON.
func (c *Color) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*c = Color{}
		return nil
	}
	if strings.HasPrefix(trimmed, "\"") {
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return err
		}
		n, ok := ParseNamedColor(name)
		if !ok {
			return fmt.Errorf("%w %q", errInvalidColor, name)
		}
		*c = Named(n)
		return nil
	}
	var v rgbJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("%w: %v", errInvalidColor, err)
	}
	*c = RGB(v.R, v.G, v.B)
	return nil
}

// Style is a foreground/background pair plus bold and dim flags. The zero
// value is the default style.
type Style struct {
	Fg   Color
	Bg   Color
	Bold bool
	Dim  bool
}

// IsDefault reports whether the style is equivalent to omission.
func (s Style) IsDefault() bool {
	return s == Style{}
}

type styleJSON struct {
	Fg   *Color `json:"fg,omitempty"`
	Bg   *Color `json:"bg,omitempty"`
	Bold bool   `json:"bold,omitempty"`
	Dim  bool   `json:"dim,omitempty"`
}

// MarshalJSON omits every field that is at its default.
func (s Style) MarshalJSON() ([]byte, error) {
	var out styleJSON
	if s.Fg.IsSet() {
		fg := s.Fg
		out.Fg = &fg
	}
	if s.Bg.IsSet() {
		bg := s.Bg
		out.Bg = &bg
	}
	out.Bold = s.Bold
	out.Dim = s.Dim
	return json.Marshal(out)
}

func (s *Style) UnmarshalJSON(data []byte) error {
	var in styleJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*s = Style{Bold: in.Bold, Dim: in.Dim}
	if in.Fg != nil {
		s.Fg = *in.Fg
	}
	if in.Bg != nil {
		s.Bg = *in.Bg
	}
	return nil
}

// Entry converts the style to its wire representation.
func (s Style) Entry() StyleEntry {
	var attrs uint16
	if s.Bold {
		attrs |= AttrBold
	}
	if s.Dim {
		attrs |= AttrDim
	}
	return StyleEntry{
		AttrFlags: attrs,
		FgModel:   s.Fg.Model,
		FgValue:   s.Fg.Value,
		BgModel:   s.Bg.Model,
		BgValue:   s.Bg.Value,
	}
}

// Style converts a wire entry back into a Style. Attributes other than bold
// and dim are dropped.
func (e StyleEntry) Style() Style {
	return Style{
		Fg:   Color{Model: e.FgModel, Value: e.FgValue},
		Bg:   Color{Model: e.BgModel, Value: e.BgValue},
		Bold: e.AttrFlags&AttrBold != 0,
		Dim:  e.AttrFlags&AttrDim != 0,
	}
}
