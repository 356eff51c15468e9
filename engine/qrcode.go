// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: engine/qrcode.go
// Summary: QR codes drawn with half-block characters, two modules per cell row.

package engine

import (
	"fmt"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/framegrace/texelshow/protocol"
)

// QRCode encodes Content and draws it at Position. Dark modules are painted
// in the style's foreground; light modules are left unpainted unless the
// style has a background.
type QRCode struct {
	Content   string         `json:"content"`
	Position  Position       `json:"position"`
	Level     string         `json:"level"`
	QuietZone bool           `json:"quiet_zone"`
	Style     protocol.Style `json:"style"`
	Frames    FrameRange     `json:"frames"`
	ZOrder    int32          `json:"z_order"`
}

func (q *QRCode) Kind() Kind              { return KindQRCode }
func (q *QRCode) frameRange() *FrameRange { return &q.Frames }
func (q *QRCode) coordinates() []*Coordinate {
	return []*Coordinate{&q.Position.X, &q.Position.Y}
}

func parseQRLevel(level string) (qrcode.RecoveryLevel, error) {
	switch level {
	case "", "medium":
		return qrcode.Medium, nil
	case "low":
		return qrcode.Low, nil
	case "high":
		return qrcode.High, nil
	case "highest":
		return qrcode.Highest, nil
	}
	return 0, fmt.Errorf("unknown recovery level %q", level)
}

// Bitmap returns the module matrix, true for dark.
func (q *QRCode) Bitmap() ([][]bool, error) {
	level, err := parseQRLevel(q.Level)
	if err != nil {
		return nil, err
	}
	code, err := qrcode.New(q.Content, level)
	if err != nil {
		return nil, err
	}
	code.DisableBorder = !q.QuietZone
	return code.Bitmap(), nil
}

// Size returns the drawn size in cells.
func (q *QRCode) Size() (int, int, error) {
	bm, err := q.Bitmap()
	if err != nil {
		return 0, 0, err
	}
	if len(bm) == 0 {
		return 0, 0, nil
	}
	return len(bm[0]), (len(bm) + 1) / 2, nil
}

func (q *QRCode) Resolve(frame int, ops []protocol.DrawOp) []protocol.DrawOp {
	if !q.Frames.Contains(frame) {
		return ops
	}
	bm, err := q.Bitmap()
	if err != nil {
		return ops
	}
	return q.resolveBitmap(frame, bm, ops)
}

func (q *QRCode) resolveBitmap(frame int, bm [][]bool, ops []protocol.DrawOp) []protocol.DrawOp {
	bx, by := q.Position.At(frame)
	hasBg := q.Style.Bg.IsSet()
	for y := 0; y < len(bm); y += 2 {
		for x, top := range bm[y] {
			bottom := y+1 < len(bm) && bm[y+1][x]
			var ch rune
			switch {
			case top && bottom:
				ch = '█'
			case top:
				ch = '▀'
			case bottom:
				ch = '▄'
			case hasBg:
				ch = ' '
			default:
				continue
			}
			ops = pushOp(ops, bx+x, by+y/2, ch, q.Style, q.ZOrder)
		}
	}
	return ops
}

type preparedQR struct {
	*QRCode
	bitmap [][]bool
}

func (p *preparedQR) Resolve(frame int, ops []protocol.DrawOp) []protocol.DrawOp {
	if !p.Frames.Contains(frame) || p.bitmap == nil {
		return ops
	}
	return p.resolveBitmap(frame, p.bitmap, ops)
}

func (q *QRCode) prepare(Options) Object {
	bm, _ := q.Bitmap()
	return &preparedQR{QRCode: q, bitmap: bm}
}
