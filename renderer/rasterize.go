// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: renderer/rasterize.go
// Summary: Paints a resolved scene onto a fixed grid in z order.

package renderer

import (
	"cmp"
	"slices"

	"github.com/framegrace/texelshow/protocol"
)

// Rasterize paints scene onto a contract-sized grid. Ops are applied in
// ascending z; ops with equal z keep their emission order, so the later op
// wins. Ops outside the grid are dropped. scene.Ops is not modified.
func Rasterize(scene protocol.ResolvedScene, contract protocol.TerminalContract) *protocol.Grid {
	grid := protocol.NewGrid(int(contract.Width), int(contract.Height))
	paint(grid, scene.Ops)
	return grid
}

func paint(grid *protocol.Grid, ops []protocol.DrawOp) {
	sorted := slices.Clone(ops)
	slices.SortStableFunc(sorted, func(a, b protocol.DrawOp) int {
		return cmp.Compare(a.Z, b.Z)
	})
	for _, op := range sorted {
		grid.Set(int(op.X), int(op.Y), protocol.Cell{Ch: op.Ch, Style: op.Style})
	}
}
