// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: cmd/texelshow/edit.go
// Summary: edit command: scripted structural edits on a source file.
// Notes: A missing source is created as a blank 80x24 single-frame
// document. The edited document must validate before it is written.

package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/framegrace/texelshow/engine"
)

type editOp struct {
	args  string
	nargs int

	// variadic ops accept more than nargs arguments.
	variadic bool

	// readOnly ops never rewrite the file.
	readOnly bool

	run func(src *engine.SourcePresentation, args []string, out io.Writer) error
}

var editOps = map[string]editOp{
	"list":          {args: "[frame]", run: editList, variadic: true, readOnly: true},
	"show":          {args: "<idx>", nargs: 1, run: editShow, readOnly: true},
	"validate":      {run: editValidate, readOnly: true},
	"add":           {args: "<kind> [frame]", nargs: 1, variadic: true, run: editAdd},
	"add-json":      {args: "<object-json>", nargs: 1, run: editAddJSON},
	"remove":        {args: "<idx>", nargs: 1, run: editRemove},
	"move":          {args: "<idx> <dx> <dy>", nargs: 3, run: objectDelta(engine.MoveObject)},
	"resize":        {args: "<idx> <dw> <dh>", nargs: 3, run: objectDelta(engine.ResizeObject)},
	"shrink":        {args: "<idx> <dw> <dh>", nargs: 3, run: objectDelta(engine.ShrinkObject)},
	"frames":        {args: "<idx> <start> <end>", nargs: 3, run: editFrames},
	"group-add":     {args: "<group> <member>...", nargs: 2, variadic: true, run: editGroupAdd},
	"group-move":    {args: "<group> <dx> <dy>", nargs: 3, run: editGroupMove},
	"group-resize":  {args: "<group> <dw> <dh> [tl|tr|bl|br]", nargs: 3, variadic: true, run: editGroupResize},
	"insert-frame":  {args: "<after>", nargs: 1, run: editInsertFrame},
	"remove-frame":  {args: "<frame>", nargs: 1, run: editRemoveFrame},
	"add-column":    {args: "<table> <col>", nargs: 2, run: editAddColumn},
	"remove-column": {args: "<table> <col>", nargs: 2, run: editRemoveColumn},
	"add-row":       {args: "<table>", nargs: 1, run: editAddRow},
	"remove-row":    {args: "<table> <row>", nargs: 2, run: editRemoveRow},
	"set-cell":      {args: "<table> <row> <col> <text>", nargs: 4, run: editSetCell},
	"marker":        {args: "<frame> <label>", nargs: 2, run: editMarker},
}

func editUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: texelshow edit <source> <op> [args]\n\nOperations:")
	names := make([]string, 0, len(editOps))
	for name := range editOps {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %-14s %s\n", name, editOps[name].args)
	}
}

func runEdit(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("edit", flag.ContinueOnError)
	fs.SetOutput(stderr)
	verbose := fs.Bool("verbose", false, "Log progress to stderr")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	setupLogging(*verbose, stderr)

	rest := fs.Args()
	if len(rest) >= 2 && rest[1] == "help" {
		editUsage(stdout)
		return nil
	}
	if len(rest) < 2 {
		editUsage(stderr)
		return fmt.Errorf("%w: edit <source> <op> [args]", errUsage)
	}
	path, name, opArgs := rest[0], rest[1], rest[2:]
	op, ok := editOps[name]
	if !ok {
		editUsage(stderr)
		return fmt.Errorf("%w: unknown edit operation %q", errUsage, name)
	}
	if len(opArgs) < op.nargs || (!op.variadic && len(opArgs) > op.nargs) {
		return fmt.Errorf("%w: %s %s", errUsage, name, op.args)
	}

	src, err := engine.ReadSource(path)
	if errors.Is(err, os.ErrNotExist) && !op.readOnly {
		src = engine.Blank(80, 24, 1)
	} else if err != nil {
		return err
	}

	before := problems(src)
	if err := op.run(src, opArgs, stdout); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if op.readOnly {
		return nil
	}
	var introduced []error
	for _, p := range problemList(src) {
		if !before[p.Error()] {
			introduced = append(introduced, p)
		}
	}
	if len(introduced) > 0 {
		return fmt.Errorf("%s left the document invalid: %w", name, errors.Join(introduced...))
	}
	return src.Save(path)
}

// problemList returns validation errors and warnings as individual errors.
// Problems already present in a document never block an edit; only those an
// operation introduces do.
func problemList(src *engine.SourcePresentation) []error {
	var out []error
	if err := src.Validate(); err != nil {
		if joined, ok := err.(interface{ Unwrap() []error }); ok {
			out = append(out, joined.Unwrap()...)
		} else {
			out = append(out, err)
		}
	}
	for _, w := range src.Warnings() {
		out = append(out, w)
	}
	return out
}

func problems(src *engine.SourcePresentation) map[string]bool {
	seen := make(map[string]bool)
	for _, p := range problemList(src) {
		seen[p.Error()] = true
	}
	return seen
}

func atoi(what, s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not a number", what, s)
	}
	return n, nil
}

func ints(names []string, args []string) ([]int, error) {
	out := make([]int, len(names))
	for i, name := range names {
		n, err := atoi(name, args[i])
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}

func editList(src *engine.SourcePresentation, args []string, out io.Writer) error {
	fmt.Fprintf(out, "%dx%d, %d frames\n", src.Width, src.Height, src.FrameCount)
	indices := make([]int, len(src.Objects))
	for i := range indices {
		indices[i] = i
	}
	if len(args) > 0 {
		frame, err := atoi("frame", args[0])
		if err != nil {
			return err
		}
		indices = src.ObjectsOnFrame(frame)
	}
	for _, i := range indices {
		obj := src.Objects[i]
		fr := engine.Frames(obj)
		fmt.Fprintf(out, "%3d  [%d,%d)  %s\n", i, fr.Start, fr.End, engine.Summary(obj))
	}
	for _, m := range src.Markers {
		fmt.Fprintf(out, "marker %d %q\n", m.FrameIndex, m.Label)
	}
	return nil
}

// editValidate prints warnings and fails on errors.
func editValidate(src *engine.SourcePresentation, _ []string, out io.Writer) error {
	for _, w := range src.Warnings() {
		fmt.Fprintf(out, "warning: %v\n", w)
	}
	return src.Validate()
}

func editShow(src *engine.SourcePresentation, args []string, out io.Writer) error {
	idx, err := atoi("idx", args[0])
	if err != nil {
		return err
	}
	obj, err := src.Object(idx)
	if err != nil {
		return err
	}
	data, err := engine.EncodeObject(obj)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s\n", data)
	return nil
}

func editAdd(src *engine.SourcePresentation, args []string, out io.Writer) error {
	frame := 0
	if len(args) > 1 {
		var err error
		if frame, err = atoi("frame", args[1]); err != nil {
			return err
		}
	}
	obj, err := engine.NewObject(engine.Kind(args[0]), frame, src.FrameCount)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%d\n", src.AddObject(obj))
	return nil
}

func editAddJSON(src *engine.SourcePresentation, args []string, out io.Writer) error {
	obj, err := engine.DecodeObject([]byte(args[0]))
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%d\n", src.AddObject(obj))
	return nil
}

func editRemove(src *engine.SourcePresentation, args []string, _ io.Writer) error {
	idx, err := atoi("idx", args[0])
	if err != nil {
		return err
	}
	return src.RemoveObject(idx)
}

func objectDelta(apply func(engine.Object, int, int)) func(*engine.SourcePresentation, []string, io.Writer) error {
	return func(src *engine.SourcePresentation, args []string, _ io.Writer) error {
		n, err := ints([]string{"idx", "dx", "dy"}, args)
		if err != nil {
			return err
		}
		obj, err := src.Object(n[0])
		if err != nil {
			return err
		}
		apply(obj, n[1], n[2])
		return nil
	}
}

func editFrames(src *engine.SourcePresentation, args []string, _ io.Writer) error {
	n, err := ints([]string{"idx", "start", "end"}, args)
	if err != nil {
		return err
	}
	obj, err := src.Object(n[0])
	if err != nil {
		return err
	}
	engine.SetFrames(obj, engine.FrameRange{Start: n[1], End: n[2]})
	return nil
}

func editGroupAdd(src *engine.SourcePresentation, args []string, _ io.Writer) error {
	idx, err := atoi("group", args[0])
	if err != nil {
		return err
	}
	g, err := src.Group(idx)
	if err != nil {
		return err
	}
	for _, a := range args[1:] {
		m, err := atoi("member", a)
		if err != nil {
			return err
		}
		if m == idx {
			return fmt.Errorf("group %d cannot contain itself", idx)
		}
		if _, err := src.Object(m); err != nil {
			return err
		}
		if !slices.Contains(g.Members, m) {
			g.Members = append(g.Members, m)
		}
	}
	return nil
}

func editGroupMove(src *engine.SourcePresentation, args []string, _ io.Writer) error {
	n, err := ints([]string{"group", "dx", "dy"}, args)
	if err != nil {
		return err
	}
	return src.MoveGroup(n[0], n[1], n[2])
}

func editGroupResize(src *engine.SourcePresentation, args []string, _ io.Writer) error {
	n, err := ints([]string{"group", "dw", "dh"}, args)
	if err != nil {
		return err
	}
	anchor := "tl"
	if len(args) > 3 {
		anchor = strings.ToLower(args[3])
	}
	var left, top bool
	switch anchor {
	case "tl":
		left, top = true, true
	case "tr":
		left, top = false, true
	case "bl":
		left, top = true, false
	case "br":
		left, top = false, false
	default:
		return fmt.Errorf("anchor %q must be one of tl, tr, bl, br", anchor)
	}
	return src.ResizeGroup(n[0], n[1], n[2], left, top)
}

func editInsertFrame(src *engine.SourcePresentation, args []string, _ io.Writer) error {
	k, err := atoi("after", args[0])
	if err != nil {
		return err
	}
	return src.InsertFrameAfter(k)
}

func editRemoveFrame(src *engine.SourcePresentation, args []string, _ io.Writer) error {
	k, err := atoi("frame", args[0])
	if err != nil {
		return err
	}
	return src.RemoveFrame(k)
}

func tableArg(src *engine.SourcePresentation, s string) (*engine.Table, error) {
	idx, err := atoi("table", s)
	if err != nil {
		return nil, err
	}
	return src.Table(idx)
}

func editAddColumn(src *engine.SourcePresentation, args []string, _ io.Writer) error {
	t, err := tableArg(src, args[0])
	if err != nil {
		return err
	}
	col, err := atoi("col", args[1])
	if err != nil {
		return err
	}
	t.AddColumn(col)
	return nil
}

func editRemoveColumn(src *engine.SourcePresentation, args []string, _ io.Writer) error {
	t, err := tableArg(src, args[0])
	if err != nil {
		return err
	}
	col, err := atoi("col", args[1])
	if err != nil {
		return err
	}
	if t.Columns() <= 1 {
		return errors.New("a table keeps at least one column")
	}
	t.RemoveColumn(col)
	return nil
}

func editAddRow(src *engine.SourcePresentation, args []string, _ io.Writer) error {
	t, err := tableArg(src, args[0])
	if err != nil {
		return err
	}
	t.AddRow()
	return nil
}

func editRemoveRow(src *engine.SourcePresentation, args []string, _ io.Writer) error {
	t, err := tableArg(src, args[0])
	if err != nil {
		return err
	}
	row, err := atoi("row", args[1])
	if err != nil {
		return err
	}
	if t.Rows <= 1 {
		return errors.New("a table keeps at least one row")
	}
	t.RemoveRow(row)
	return nil
}

func editSetCell(src *engine.SourcePresentation, args []string, _ io.Writer) error {
	t, err := tableArg(src, args[0])
	if err != nil {
		return err
	}
	n, err := ints([]string{"row", "col"}, args[1:3])
	if err != nil {
		return err
	}
	if !t.SetCell(n[0], n[1], args[3]) {
		return fmt.Errorf("cell (%d,%d) is outside the %dx%d table", n[0], n[1], t.Rows, t.Columns())
	}
	return nil
}

func editMarker(src *engine.SourcePresentation, args []string, _ io.Writer) error {
	frame, err := atoi("frame", args[0])
	if err != nil {
		return err
	}
	return src.AddMarker(frame, args[1])
}
