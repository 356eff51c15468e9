// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: engine/edit.go
// Summary: Structural edits on a source presentation: objects, frames and groups.
// Usage: Driven by the edit command; every operation keeps group member
// indices and frame ranges consistent.

package engine

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/framegrace/texelshow/protocol"
)

var (
	// ErrObjectIndex is returned for an object index outside the arena.
	ErrObjectIndex = errors.New("engine: object index out of range")
	// ErrFrameIndex is returned for a frame index outside [0, FrameCount).
	ErrFrameIndex = errors.New("engine: frame index out of range")
	// ErrLastFrame is returned when removing the only remaining frame.
	ErrLastFrame = errors.New("engine: cannot remove the last frame")
	// ErrNotGroup is returned when a group operation targets another kind.
	ErrNotGroup = errors.New("engine: object is not a group")
	// ErrNotTable is returned when a table operation targets another kind.
	ErrNotTable = errors.New("engine: object is not a table")
)

// Object returns the object at idx.
func (s *SourcePresentation) Object(idx int) (Object, error) {
	if idx < 0 || idx >= len(s.Objects) {
		return nil, fmt.Errorf("%w: %d", ErrObjectIndex, idx)
	}
	return s.Objects[idx], nil
}

// Group returns the group at idx.
func (s *SourcePresentation) Group(idx int) (*Group, error) {
	obj, err := s.Object(idx)
	if err != nil {
		return nil, err
	}
	g, ok := obj.(*Group)
	if !ok {
		return nil, fmt.Errorf("%w: %d is a %s", ErrNotGroup, idx, obj.Kind())
	}
	return g, nil
}

// Table returns the table at idx.
func (s *SourcePresentation) Table(idx int) (*Table, error) {
	obj, err := s.Object(idx)
	if err != nil {
		return nil, err
	}
	t, ok := obj.(*Table)
	if !ok {
		return nil, fmt.Errorf("%w: %d is a %s", ErrNotTable, idx, obj.Kind())
	}
	return t, nil
}

// AddObject appends obj and returns its index.
func (s *SourcePresentation) AddObject(obj Object) int {
	s.Objects = append(s.Objects, obj)
	return len(s.Objects) - 1
}

// ObjectsOnFrame lists the indices of objects visible at frame.
func (s *SourcePresentation) ObjectsOnFrame(frame int) []int {
	var out []int
	for i, obj := range s.Objects {
		if Visible(obj, frame) {
			out = append(out, i)
		}
	}
	return out
}

// RemoveObject deletes the object at idx and renumbers group members.
func (s *SourcePresentation) RemoveObject(idx int) error {
	if _, err := s.Object(idx); err != nil {
		return err
	}
	s.Objects = slices.Delete(s.Objects, idx, idx+1)
	s.renumberGroups(func(m int) (int, bool) {
		switch {
		case m == idx:
			return 0, false
		case m > idx:
			return m - 1, true
		}
		return m, true
	})
	return nil
}

// renumberGroups rewrites every group's members through remap, dropping
// members for which remap reports false.
func (s *SourcePresentation) renumberGroups(remap func(int) (int, bool)) {
	for _, obj := range s.Objects {
		g, ok := obj.(*Group)
		if !ok {
			continue
		}
		members := g.Members[:0]
		for _, m := range g.Members {
			if nm, keep := remap(m); keep {
				members = append(members, nm)
			}
		}
		g.Members = members
	}
}

// InsertFrameAfter adds a frame after frame k. Objects and animations that
// extend past k stretch or shift by one frame.
func (s *SourcePresentation) InsertFrameAfter(k int) error {
	if k < 0 || k >= s.FrameCount {
		return fmt.Errorf("%w: %d", ErrFrameIndex, k)
	}
	s.FrameCount++
	for _, obj := range s.Objects {
		fr := obj.frameRange()
		if fr.End > k {
			fr.End++
		}
		if fr.Start > k {
			fr.Start++
		}
		for _, c := range obj.coordinates() {
			if c.Kind != CoordAnimated {
				continue
			}
			if c.Anim.StartFrame > k {
				c.Anim.StartFrame++
			}
			if c.Anim.EndFrame > k {
				c.Anim.EndFrame++
			}
		}
	}
	for i := range s.Markers {
		if s.Markers[i].FrameIndex > k {
			s.Markers[i].FrameIndex++
		}
	}
	return nil
}

// RemoveFrame deletes frame k. Ranges past k shift back by one; objects left
// with an empty range are removed and group members renumbered.
func (s *SourcePresentation) RemoveFrame(k int) error {
	if k < 0 || k >= s.FrameCount {
		return fmt.Errorf("%w: %d", ErrFrameIndex, k)
	}
	if s.FrameCount == 1 {
		return ErrLastFrame
	}
	s.FrameCount--
	for _, obj := range s.Objects {
		fr := obj.frameRange()
		if fr.Start > k {
			fr.Start--
		}
		if fr.End > k {
			fr.End--
		}
		for _, c := range obj.coordinates() {
			if c.Kind != CoordAnimated {
				continue
			}
			if c.Anim.StartFrame > k {
				c.Anim.StartFrame--
			}
			if c.Anim.EndFrame > k {
				c.Anim.EndFrame--
			}
		}
	}

	newIndex := make([]int, len(s.Objects))
	kept := s.Objects[:0]
	for i, obj := range s.Objects {
		if fr := obj.frameRange(); fr.Start >= fr.End {
			newIndex[i] = -1
			continue
		}
		newIndex[i] = len(kept)
		kept = append(kept, obj)
	}
	clear(s.Objects[len(kept):])
	s.Objects = kept
	s.renumberGroups(func(m int) (int, bool) {
		if m < 0 || m >= len(newIndex) || newIndex[m] < 0 {
			return 0, false
		}
		return newIndex[m], true
	})

	markers := s.Markers[:0]
	for _, m := range s.Markers {
		if m.FrameIndex == k {
			continue
		}
		if m.FrameIndex > k {
			m.FrameIndex--
		}
		markers = append(markers, m)
	}
	s.Markers = markers
	return nil
}

// Bounds is a fractional bounding box.
type Bounds struct {
	X, Y, W, H float64
}

func (s *SourcePresentation) boundsOf(members []int) Bounds {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	found := false
	for _, m := range members {
		if m < 0 || m >= len(s.Objects) {
			continue
		}
		found = true
		ox, oy := Origin(s.Objects[m])
		w, h := Extent(s.Objects[m])
		minX, minY = math.Min(minX, ox), math.Min(minY, oy)
		maxX, maxY = math.Max(maxX, ox+w), math.Max(maxY, oy+h)
	}
	if !found {
		return Bounds{}
	}
	return Bounds{X: minX, Y: minY, W: math.Max(maxX-minX, 0), H: math.Max(maxY-minY, 0)}
}

// GroupBounds returns the bounding box of the group's in-range members, or
// the zero box when it has none.
func (s *SourcePresentation) GroupBounds(idx int) (Bounds, error) {
	g, err := s.Group(idx)
	if err != nil {
		return Bounds{}, err
	}
	return s.boundsOf(g.Members), nil
}

// MoveGroup translates every member of the group.
func (s *SourcePresentation) MoveGroup(idx, dx, dy int) error {
	g, err := s.Group(idx)
	if err != nil {
		return err
	}
	for _, m := range g.Members {
		if m >= 0 && m < len(s.Objects) {
			MoveObject(s.Objects[m], dx, dy)
		}
	}
	return nil
}

// ResizeGroup scales members so the group's box changes by (dw, dh), never
// below one cell. anchorLeft keeps the left edge fixed (otherwise the right
// edge), anchorTop the top edge (otherwise the bottom). Member origins and
// extents scale about the anchor.
func (s *SourcePresentation) ResizeGroup(idx, dw, dh int, anchorLeft, anchorTop bool) error {
	g, err := s.Group(idx)
	if err != nil {
		return err
	}
	if len(g.Members) == 0 {
		return nil
	}
	b := s.boundsOf(g.Members)
	newW := math.Max(b.W+float64(dw), 1)
	newH := math.Max(b.H+float64(dh), 1)
	scaleX, scaleY := 1.0, 1.0
	if b.W > 0 {
		scaleX = newW / b.W
	}
	if b.H > 0 {
		scaleY = newH / b.H
	}
	ax, ay := b.X, b.Y
	if !anchorLeft {
		ax = b.X + b.W
	}
	if !anchorTop {
		ay = b.Y + b.H
	}

	type update struct{ x, y, w, h float64 }
	updates := make([]update, len(g.Members))
	for i, m := range g.Members {
		if m < 0 || m >= len(s.Objects) {
			continue
		}
		ox, oy := Origin(s.Objects[m])
		w, h := Extent(s.Objects[m])
		updates[i] = update{ax + (ox-ax)*scaleX, ay + (oy-ay)*scaleY, w * scaleX, h * scaleY}
	}
	for i, m := range g.Members {
		if m < 0 || m >= len(s.Objects) {
			continue
		}
		u, obj := updates[i], s.Objects[m]
		setOriginX(obj, u.x)
		setOriginY(obj, u.y)
		if u.w > 0 {
			setExtentX(obj, u.w)
		}
		if u.h > 0 {
			setExtentY(obj, u.h)
		}
	}
	return nil
}

// AddMarker labels frame.
func (s *SourcePresentation) AddMarker(frame int, label string) error {
	if frame < 0 || frame >= s.FrameCount {
		return fmt.Errorf("%w: %d", ErrFrameIndex, frame)
	}
	s.Markers = append(s.Markers, protocol.Marker{FrameIndex: frame, Label: label})
	slices.SortStableFunc(s.Markers, func(a, b protocol.Marker) int { return a.FrameIndex - b.FrameIndex })
	return nil
}
