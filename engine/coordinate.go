// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: engine/coordinate.go
// Summary: Fixed and animated coordinates, frame ranges and positions.

package engine

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// CoordKind tags a Coordinate.
type CoordKind uint8

const (
	CoordFixed CoordKind = iota
	CoordAnimated
)

// Animation linearly moves a coordinate from From to To between two frames.
type Animation struct {
	From       uint16 `json:"from"`
	To         uint16 `json:"to"`
	StartFrame int    `json:"start_frame"`
	EndFrame   int    `json:"end_frame"`
}

// Coordinate is either a fixed value (kept fractional so group scaling does
// not accumulate rounding error) or an animation.
type Coordinate struct {
	Kind  CoordKind
	Value float64
	Anim  Animation
}

// Fixed returns a fixed coordinate.
func Fixed(v float64) Coordinate {
	return Coordinate{Kind: CoordFixed, Value: v}
}

// Animated returns an animated coordinate.
func Animated(from, to uint16, startFrame, endFrame int) Coordinate {
	return Coordinate{Kind: CoordAnimated, Anim: Animation{From: from, To: to, StartFrame: startFrame, EndFrame: endFrame}}
}

func clampCell(v float64) uint16 {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	if v >= math.MaxUint16 {
		return math.MaxUint16
	}
	return uint16(v)
}

// Evaluate returns the cell value at frame. Fixed values are floored.
// Animations hold From up to StartFrame and To from EndFrame on; in between
// the value is interpolated and rounded half away from zero. A span with
// EndFrame <= StartFrame jumps straight to To after StartFrame.
func (c Coordinate) Evaluate(frame int) uint16 {
	if c.Kind == CoordFixed {
		return clampCell(math.Floor(c.Value))
	}
	a := c.Anim
	if frame <= a.StartFrame {
		return a.From
	}
	if frame >= a.EndFrame {
		return a.To
	}
	progress := float64(frame-a.StartFrame) / float64(a.EndFrame-a.StartFrame)
	return clampCell(math.Round(float64(a.From) + (float64(a.To)-float64(a.From))*progress))
}

// Base is the raw value used by editing geometry: the fixed value, or From.
func (c Coordinate) Base() float64 {
	if c.Kind == CoordAnimated {
		return float64(c.Anim.From)
	}
	return c.Value
}

// IsFixed reports whether the coordinate is a fixed value.
func (c Coordinate) IsFixed() bool {
	return c.Kind == CoordFixed
}

// Set replaces a fixed value, clamped at zero. Animated coordinates are left alone.
func (c *Coordinate) Set(v float64) {
	if c.Kind == CoordFixed {
		c.Value = math.Max(v, 0)
	}
}

// Shift moves a fixed value by delta, clamped at zero.
func (c *Coordinate) Shift(delta float64) {
	if c.Kind == CoordFixed {
		c.Value = math.Max(c.Value+delta, 0)
	}
}

func (c Coordinate) String() string {
	if c.Kind == CoordAnimated {
		return fmt.Sprintf("%d→%d@%d..%d", c.Anim.From, c.Anim.To, c.Anim.StartFrame, c.Anim.EndFrame)
	}
	return fmt.Sprintf("%g", c.Value)
}

var errCoordinate = errors.New("engine: invalid coordinate")

// MarshalJSON writes the tagged form: {"fixed": v} or {"animated": {...}}.
func (c Coordinate) MarshalJSON() ([]byte, error) {
	if c.Kind == CoordAnimated {
		return json.Marshal(struct {
			Animated Animation `json:"animated"`
		}{c.Anim})
	}
	return json.Marshal(struct {
		Fixed float64 `json:"fixed"`
	}{c.Value})
}

// UnmarshalJSON accepts a bare number (negative values clamp to zero) or
// either tagged form.
func (c *Coordinate) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return errCoordinate
	}
	if data[0] != '{' {
		var v float64
		if err := json.Unmarshal(data, &v); err != nil {
			return fmt.Errorf("%w: expected a number or a coordinate object: %v", errCoordinate, err)
		}
		*c = Fixed(math.Max(v, 0))
		return nil
	}
	var tagged struct {
		Fixed    *float64   `json:"fixed"`
		Animated *Animation `json:"animated"`
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&tagged); err != nil {
		return fmt.Errorf("%w: %v", errCoordinate, err)
	}
	switch {
	case tagged.Fixed != nil && tagged.Animated == nil:
		*c = Fixed(*tagged.Fixed)
	case tagged.Animated != nil && tagged.Fixed == nil:
		if tagged.Animated.StartFrame < 0 || tagged.Animated.EndFrame < 0 {
			return fmt.Errorf("%w: negative animation frame", errCoordinate)
		}
		*c = Coordinate{Kind: CoordAnimated, Anim: *tagged.Animated}
	default:
		return fmt.Errorf("%w: expected exactly one of fixed or animated", errCoordinate)
	}
	return nil
}

// FrameRange is the half-open visibility interval [Start, End).
type FrameRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Contains reports whether frame lies inside the range.
func (r FrameRange) Contains(frame int) bool {
	return frame >= r.Start && frame < r.End
}

// Position is an (x, y) coordinate pair.
type Position struct {
	X Coordinate `json:"x"`
	Y Coordinate `json:"y"`
}

// At evaluates both axes.
func (p Position) At(frame int) (int, int) {
	return int(p.X.Evaluate(frame)), int(p.Y.Evaluate(frame))
}
