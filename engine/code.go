// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: engine/code.go
// Summary: Syntax-highlighted code blocks.
// Notes: Highlighting is computed once per compile by prepare(); Resolve on an
// unprepared block tokenises on demand.

package engine

import (
	"strconv"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/go-enry/go-enry/v2"
	"github.com/mattn/go-runewidth"

	"github.com/framegrace/texelshow/protocol"
)

// DefaultCodeTheme is used when neither the block nor the compile options name a theme.
const DefaultCodeTheme = "monokai"

const tabWidth = 4

// Code renders Text with syntax colours. Language may be empty, in which
// case it is detected from the content. A positive Width clips lines and,
// with a background, fills the box; a positive Height clips rows.
type Code struct {
	Text        string         `json:"text"`
	Position    Position       `json:"position"`
	Language    string         `json:"language,omitempty"`
	Theme       string         `json:"theme,omitempty"`
	Width       Coordinate     `json:"width"`
	Height      Coordinate     `json:"height"`
	LineNumbers bool           `json:"line_numbers,omitempty"`
	Style       protocol.Style `json:"style"`
	Frames      FrameRange     `json:"frames"`
	ZOrder      int32          `json:"z_order"`
}

func (c *Code) Kind() Kind              { return KindCode }
func (c *Code) frameRange() *FrameRange { return &c.Frames }
func (c *Code) coordinates() []*Coordinate {
	return []*Coordinate{&c.Position.X, &c.Position.Y, &c.Width, &c.Height}
}

type styledRune struct {
	ch    rune
	style protocol.Style
}

// DetectLanguage returns the chroma lexer name for text, preferring an
// explicit language and falling back to content classification.
func DetectLanguage(language, text string) string {
	if language != "" {
		if l := lexers.Get(language); l != nil {
			return l.Config().Name
		}
	}
	if name := enry.GetLanguage("", []byte(text)); name != "" {
		if l := lexers.Get(strings.ToLower(name)); l != nil {
			return l.Config().Name
		}
	}
	if l := lexers.Analyse(text); l != nil {
		return l.Config().Name
	}
	return lexers.Fallback.Config().Name
}

// highlight tokenises the block into styled lines.
func (c *Code) highlight(defaultTheme string) [][]styledRune {
	theme := c.Theme
	if theme == "" {
		theme = defaultTheme
	}
	if theme == "" {
		theme = DefaultCodeTheme
	}
	chromaStyle := styles.Get(theme)
	lexer := lexers.Get(DetectLanguage(c.Language, c.Text))
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	lines := [][]styledRune{nil}
	appendRune := func(r rune, st protocol.Style) {
		last := len(lines) - 1
		lines[last] = append(lines[last], styledRune{ch: r, style: st})
	}

	tokens, err := chroma.Tokenise(lexer, nil, c.Text)
	if err != nil {
		for _, r := range c.Text {
			if r == '\n' {
				lines = append(lines, nil)
				continue
			}
			appendRune(r, c.Style)
		}
		return lines
	}
	for _, tok := range tokens {
		if tok.Type == chroma.EOFType {
			break
		}
		st := c.Style
		entry := chromaStyle.Get(tok.Type)
		if entry.Colour.IsSet() {
			st.Fg = protocol.RGB(entry.Colour.Red(), entry.Colour.Green(), entry.Colour.Blue())
		}
		if entry.Bold == chroma.Yes {
			st.Bold = true
		}
		for _, r := range tok.Value {
			if r == '\n' {
				lines = append(lines, nil)
				continue
			}
			appendRune(r, st)
		}
	}
	// A final newline does not start another line.
	if len(lines) > 1 && len(lines[len(lines)-1]) == 0 {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func (c *Code) Resolve(frame int, ops []protocol.DrawOp) []protocol.DrawOp {
	if !c.Frames.Contains(frame) {
		return ops
	}
	return c.resolveLines(frame, c.highlight(""), ops)
}

func (c *Code) resolveLines(frame int, lines [][]styledRune, ops []protocol.DrawOp) []protocol.DrawOp {
	bx, by := c.Position.At(frame)
	w := int(c.Width.Evaluate(frame))
	h := int(c.Height.Evaluate(frame))
	hasBg := c.Style.Bg.IsSet()

	if h > 0 && len(lines) > h {
		lines = lines[:h]
	}
	if hasBg && w > 0 {
		rows := len(lines)
		if h > 0 {
			rows = h
		}
		fill := protocol.Style{Bg: c.Style.Bg}
		for y := range rows {
			for x := range w {
				ops = pushOp(ops, bx+x, by+y, ' ', fill, c.ZOrder)
			}
		}
	}

	gutter := 0
	if c.LineNumbers {
		gutter = len(strconv.Itoa(len(lines))) + 1
	}
	numStyle := protocol.Style{Fg: c.Style.Fg, Bg: c.Style.Bg, Dim: true}

	for row, line := range lines {
		if c.LineNumbers {
			num := strconv.Itoa(row + 1)
			pad := gutter - 1 - len(num)
			for i, ch := range num {
				ops = pushOp(ops, bx+pad+i, by+row, ch, numStyle, c.ZOrder)
			}
		}
		col := gutter
		for _, sr := range line {
			if sr.ch == '\t' {
				col += tabWidth - (col-gutter)%tabWidth
				continue
			}
			cw := runewidth.RuneWidth(sr.ch)
			if cw == 0 {
				continue
			}
			if w > 0 && col+cw > w {
				break
			}
			if sr.ch != ' ' || sr.style.Bg.IsSet() {
				ops = pushOp(ops, bx+col, by+row, sr.ch, sr.style, c.ZOrder)
			}
			col += cw
		}
	}
	return ops
}

// preparedCode carries the highlighted lines for one compile.
type preparedCode struct {
	*Code
	lines [][]styledRune
}

func (p *preparedCode) Resolve(frame int, ops []protocol.DrawOp) []protocol.DrawOp {
	if !p.Frames.Contains(frame) {
		return ops
	}
	return p.resolveLines(frame, p.lines, ops)
}

func (c *Code) prepare(opts Options) Object {
	return &preparedCode{Code: c, lines: c.highlight(opts.CodeTheme)}
}
