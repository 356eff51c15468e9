// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: renderer/diff.go
// Summary: Cell-level diffs between consecutive rasterized grids.
// Notes: Row digests only decide which rows need a full scan; rows whose
// digests match are still compared before being skipped.

package renderer

import (
	"encoding/binary"
	"hash/fnv"
	"slices"

	"github.com/framegrace/texelshow/protocol"
)

// RowDigests returns one 64-bit digest per grid row.
func RowDigests(g *protocol.Grid) []uint64 {
	out := make([]uint64, g.Height)
	hasher := fnv.New64a()
	var scratch [4]byte
	writeUint32 := func(v uint32) {
		binary.LittleEndian.PutUint32(scratch[:], v)
		hasher.Write(scratch[:])
	}
	for y := range g.Height {
		hasher.Reset()
		for _, c := range g.Row(y) {
			writeUint32(uint32(c.Ch))
			e := c.Style.Entry()
			writeUint32(uint32(e.AttrFlags))
			writeUint32(uint32(e.FgModel)<<24 | e.FgValue)
			writeUint32(uint32(e.BgModel)<<24 | e.BgValue)
		}
		out[y] = hasher.Sum64()
	}
	return out
}

// Diff lists every cell of next that differs from prev, in row-major order.
// Both grids must have the same size.
func Diff(prev, next *protocol.Grid) []protocol.CellChange {
	return diff(prev, next, nil, nil)
}

// DiffWithDigests is Diff with precomputed row digests for both grids.
func DiffWithDigests(prev, next *protocol.Grid, prevDigests, nextDigests []uint64) []protocol.CellChange {
	return diff(prev, next, prevDigests, nextDigests)
}

func diff(prev, next *protocol.Grid, prevDigests, nextDigests []uint64) []protocol.CellChange {
	useDigests := len(prevDigests) == next.Height && len(nextDigests) == next.Height
	var changes []protocol.CellChange
	for y := range next.Height {
		before, after := prev.Row(y), next.Row(y)
		if useDigests && prevDigests[y] == nextDigests[y] && slices.Equal(before, after) {
			continue
		}
		for x, c := range after {
			if x < len(before) && before[x] == c {
				continue
			}
			changes = append(changes, protocol.CellChange{X: uint16(x), Y: uint16(y), Cell: c})
		}
	}
	return changes
}
