// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: engine/geometry.go
// Summary: Per-object origin and extent accessors used by group editing.
// Notes: Values are read from Base(), so animated coordinates report their
// starting value and are never rewritten.

package engine

import "math"

// Origin returns the top-left corner of obj in fractional cells.
func Origin(obj Object) (x, y float64) {
	switch o := obj.(type) {
	case *Label:
		return o.Position.X.Base(), o.Position.Y.Base()
	case *HLine:
		return o.XStart.Base(), o.Y.Base()
	case *Rect:
		return o.Position.X.Base(), o.Position.Y.Base()
	case *Header:
		return o.Position.X.Base(), o.Position.Y.Base()
	case *Arrow:
		return math.Min(o.X1.Base(), o.X2.Base()), math.Min(o.Y1.Base(), o.Y2.Base())
	case *Table:
		return o.Position.X.Base(), o.Position.Y.Base()
	case *Code:
		return o.Position.X.Base(), o.Position.Y.Base()
	case *QRCode:
		return o.Position.X.Base(), o.Position.Y.Base()
	case *Image:
		return o.Position.X.Base(), o.Position.Y.Base()
	}
	return 0, 0
}

// Extent returns the width and height obj contributes to a bounding box.
// Objects without an authored width report 0; one-row objects report a
// height of 1.
func Extent(obj Object) (w, h float64) {
	switch o := obj.(type) {
	case *Label:
		return o.Width.Base(), o.Height.Base()
	case *HLine:
		return math.Max(o.XEnd.Base()-o.XStart.Base(), 0), 1
	case *Rect:
		return o.Width.Base(), o.Height.Base()
	case *Header:
		return 0, 1
	case *Arrow:
		return math.Abs(o.X2.Base() - o.X1.Base()), math.Max(math.Abs(o.Y2.Base()-o.Y1.Base()), 1)
	case *Table:
		return o.Width.Base(), math.Max(o.Height.Base(), 1)
	case *Code:
		return o.Width.Base(), o.Height.Base()
	case *QRCode:
		w, h, err := o.Size()
		if err != nil {
			return 0, 1
		}
		return float64(w), math.Max(float64(h), 1)
	case *Image:
		return o.Width.Base(), o.Height.Base()
	}
	return 0, 0
}

func setOriginX(obj Object, v float64) {
	switch o := obj.(type) {
	case *Label:
		o.Position.X.Set(v)
	case *HLine:
		w := math.Max(o.XEnd.Base()-o.XStart.Base(), 0)
		o.XStart.Set(v)
		o.XEnd.Set(v + w)
	case *Rect:
		o.Position.X.Set(v)
	case *Header:
		o.Position.X.Set(v)
	case *Arrow:
		dx := o.X2.Base() - o.X1.Base()
		o.X1.Set(v)
		o.X2.Set(v + dx)
	case *Table:
		o.Position.X.Set(v)
	case *Code:
		o.Position.X.Set(v)
	case *QRCode:
		o.Position.X.Set(v)
	case *Image:
		o.Position.X.Set(v)
	}
}

func setOriginY(obj Object, v float64) {
	switch o := obj.(type) {
	case *Label:
		o.Position.Y.Set(v)
	case *HLine:
		o.Y.Set(v)
	case *Rect:
		o.Position.Y.Set(v)
	case *Header:
		o.Position.Y.Set(v)
	case *Arrow:
		dy := o.Y2.Base() - o.Y1.Base()
		o.Y1.Set(v)
		o.Y2.Set(v + dy)
	case *Table:
		o.Position.Y.Set(v)
	case *Code:
		o.Position.Y.Set(v)
	case *QRCode:
		o.Position.Y.Set(v)
	case *Image:
		o.Position.Y.Set(v)
	}
}

func setExtentX(obj Object, v float64) {
	switch o := obj.(type) {
	case *Label:
		o.Width.Set(v)
	case *HLine:
		o.XEnd.Set(o.XStart.Base() + math.Max(v, 0))
	case *Rect:
		o.Width.Set(v)
	case *Arrow:
		x1 := o.X1.Base()
		dir := 1.0
		if o.X2.Base() < x1 {
			dir = -1
		}
		o.X2.Set(x1 + dir*math.Max(v, 0))
	case *Table:
		o.Width.Set(v)
	case *Code:
		o.Width.Set(v)
	case *Image:
		o.Width.Set(v)
	}
}

func setExtentY(obj Object, v float64) {
	switch o := obj.(type) {
	case *Label:
		o.Height.Set(v)
	case *Rect:
		o.Height.Set(v)
	case *Arrow:
		y1 := o.Y1.Base()
		dir := 1.0
		if o.Y2.Base() < y1 {
			dir = -1
		}
		o.Y2.Set(y1 + dir*math.Max(v, 0))
	case *Table:
		o.Height.Set(v)
	case *Code:
		o.Height.Set(v)
	case *Image:
		o.Height.Set(v)
	}
}

// positional returns the coordinates that translate when obj moves.
func positional(obj Object) (xs, ys []*Coordinate) {
	switch o := obj.(type) {
	case *HLine:
		return []*Coordinate{&o.XStart, &o.XEnd}, []*Coordinate{&o.Y}
	case *Arrow:
		return []*Coordinate{&o.X1, &o.X2}, []*Coordinate{&o.Y1, &o.Y2}
	case *Group:
		return nil, nil
	}
	c := obj.coordinates()
	return []*Coordinate{c[0]}, []*Coordinate{c[1]}
}

// MoveObject translates obj by (dx, dy) cells. Only fixed coordinates move;
// results are clamped at zero.
func MoveObject(obj Object, dx, dy int) {
	xs, ys := positional(obj)
	for _, c := range xs {
		c.Shift(float64(dx))
	}
	for _, c := range ys {
		c.Shift(float64(dy))
	}
}

// boxed returns the position and size coordinates of objects with an
// authored box.
func boxed(obj Object) (x, y, w, h *Coordinate, ok bool) {
	switch o := obj.(type) {
	case *Label:
		return &o.Position.X, &o.Position.Y, &o.Width, &o.Height, true
	case *Rect:
		return &o.Position.X, &o.Position.Y, &o.Width, &o.Height, true
	case *Table:
		return &o.Position.X, &o.Position.Y, &o.Width, &o.Height, true
	case *Code:
		return &o.Position.X, &o.Position.Y, &o.Width, &o.Height, true
	case *Image:
		return &o.Position.X, &o.Position.Y, &o.Width, &o.Height, true
	}
	return nil, nil, nil, nil, false
}

// ResizeObject grows obj by pushing an edge outward. A positive dw moves the
// right edge right; a negative dw moves the left edge left by |dw|. The same
// holds for dh on the bottom and top edges. Arrows move their end point.
func ResizeObject(obj Object, dw, dh int) {
	switch o := obj.(type) {
	case *HLine:
		if dw > 0 {
			o.XEnd.Shift(float64(dw))
		} else if dw < 0 {
			o.XStart.Shift(float64(dw))
		}
		return
	case *Arrow:
		o.X2.Shift(float64(dw))
		o.Y2.Shift(float64(dh))
		return
	}
	x, y, w, h, ok := boxed(obj)
	if !ok {
		return
	}
	growEdge(x, w, dw)
	growEdge(y, h, dh)
}

func growEdge(pos, size *Coordinate, d int) {
	switch {
	case d > 0:
		size.Shift(float64(d))
	case d < 0:
		size.Shift(float64(-d))
		pos.Shift(float64(d))
	}
}

// minExtent is the smallest width and height ShrinkObject leaves behind.
func minExtent(obj Object) (float64, float64) {
	switch obj.(type) {
	case *Rect:
		return 1, 1
	case *Table:
		return 3, 0
	}
	return 0, 0
}

// ShrinkObject pulls an edge inward: a positive dw moves the right edge
// left, a negative dw moves the left edge right. Sizes never drop below the
// kind's minimum and an edge at the minimum does not move.
func ShrinkObject(obj Object, dw, dh int) {
	switch o := obj.(type) {
	case *HLine:
		xs, xe := o.XStart.Base(), o.XEnd.Base()
		if dw > 0 && xe > xs {
			if o.XEnd.IsFixed() {
				o.XEnd.Set(math.Max(xe-float64(dw), math.Floor(xs)+1))
			}
		} else if dw < 0 && math.Floor(xs)-float64(dw) < math.Floor(xe) {
			o.XStart.Shift(float64(-dw))
		}
		return
	case *Arrow:
		o.X2.Shift(float64(-dw))
		o.Y2.Shift(float64(-dh))
		return
	}
	x, y, w, h, ok := boxed(obj)
	if !ok {
		return
	}
	minW, minH := minExtent(obj)
	shrinkEdge(x, w, dw, minW)
	shrinkEdge(y, h, dh, minH)
}

func shrinkEdge(pos, size *Coordinate, d int, floor float64) {
	if !size.IsFixed() {
		return
	}
	switch {
	case d > 0:
		size.Set(math.Max(size.Value-float64(d), floor))
	case d < 0:
		if math.Floor(size.Value) > floor {
			size.Set(math.Max(size.Value+float64(d), floor))
			pos.Shift(float64(-d))
		}
	}
}
