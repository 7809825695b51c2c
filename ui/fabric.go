// Package ui implements the interactive terminal application: the terminal
// driver, the component runtime, the pty program hand-off, and the
// components themselves.
package ui

import (
	runewidth "github.com/mattn/go-runewidth"
)

// Size is a terminal extent in character cells.
type Size struct {
	Rows    int
	Columns int
}

// Color is a semantic text or background color. The concrete palette is the
// renderer's business.
type Color uint8

// Semantic colors.
const (
	ColorDefault Color = iota
	// ColorInvertedText is the foreground used on inverted rows.
	ColorInvertedText
	// ColorInvertedBackground is the background of the directory header.
	ColorInvertedBackground
	// ColorHighlight is the background of the selected row.
	ColorHighlight
	// ColorFocus is the background of a focused input.
	ColorFocus
	// ColorUnfocused is the background of an unfocused input.
	ColorUnfocused
	// ColorGrayedText mutes de-emphasized text.
	ColorGrayedText
	// ColorLightGrayedText mutes hidden entries.
	ColorLightGrayedText
	// ColorInvertedGrayedText mutes de-emphasized text on inverted rows.
	ColorInvertedGrayedText
)

// focusOrUnfocused returns the input background for the given focus state.
func focusOrUnfocused(focused bool) Color {
	if focused {
		return ColorFocus
	}
	return ColorUnfocused
}

// Yarn is one row of styled text.
type Yarn struct {
	runes       []rune
	colors      []Color
	backgrounds []Color
}

// NewYarn returns a yarn holding the runes of s.
func NewYarn(s string) Yarn {
	runes := []rune(s)
	return Yarn{
		runes:       runes,
		colors:      make([]Color, len(runes)),
		backgrounds: make([]Color, len(runes)),
	}
}

// BlankYarn returns a yarn of n spaces.
func BlankYarn(n int) Yarn {
	runes := make([]rune, n)
	for i := range runes {
		runes[i] = ' '
	}
	return Yarn{
		runes:       runes,
		colors:      make([]Color, n),
		backgrounds: make([]Color, n),
	}
}

// CenterYarn centers s in a yarn of n cells. A string wider than n is
// truncated with trailing dots; when n is 3 or less the row is all dots.
func CenterYarn(s string, n int) Yarn {
	width := runewidth.StringWidth(s)
	if width > n {
		if n <= 3 {
			dots := ""
			for i := 0; i < n; i++ {
				dots += "."
			}
			return NewYarn(dots)
		}
		return NewYarn(runewidth.Truncate(s, n, "..."))
	}

	left := (n - width) / 2
	yarn := BlankYarn(left)
	yarn = yarn.Concat(NewYarn(s))
	yarn.Resize(n)
	return yarn
}

// Len returns the number of cells.
func (y *Yarn) Len() int {
	return len(y.runes)
}

// String returns the text of the yarn.
func (y *Yarn) String() string {
	return string(y.runes)
}

// Concat appends other to the yarn.
func (y Yarn) Concat(other Yarn) Yarn {
	y.runes = append(y.runes, other.runes...)
	y.colors = append(y.colors, other.colors...)
	y.backgrounds = append(y.backgrounds, other.backgrounds...)
	return y
}

// Resize pads with spaces or truncates to n cells. Padding keeps the yarn's
// last background so highlighted rows extend to the edge.
func (y *Yarn) Resize(n int) {
	if len(y.runes) > n {
		y.runes = y.runes[:n]
		y.colors = y.colors[:n]
		y.backgrounds = y.backgrounds[:n]
		return
	}
	bg := ColorDefault
	if len(y.backgrounds) > 0 {
		bg = y.backgrounds[len(y.backgrounds)-1]
	}
	for len(y.runes) < n {
		y.runes = append(y.runes, ' ')
		y.colors = append(y.colors, ColorDefault)
		y.backgrounds = append(y.backgrounds, bg)
	}
}

// SetColor sets the foreground of every cell.
func (y *Yarn) SetColor(color Color) {
	for i := range y.colors {
		y.colors[i] = color
	}
}

// SetColorBefore sets the foreground of the cells before position.
func (y *Yarn) SetColorBefore(color Color, position int) {
	for i := 0; i < position && i < len(y.colors); i++ {
		y.colors[i] = color
	}
}

// SetColorAfter sets the foreground of the cells at and after position.
func (y *Yarn) SetColorAfter(color Color, position int) {
	for i := position; i < len(y.colors); i++ {
		y.colors[i] = color
	}
}

// SetBackground sets the background of every cell.
func (y *Yarn) SetBackground(color Color) {
	for i := range y.backgrounds {
		y.backgrounds[i] = color
	}
}

// Fabric is a rectangle of styled text: what a component renders.
type Fabric struct {
	size Size
	rows []Yarn
}

// NewFabric returns a blank fabric of the given size.
func NewFabric(size Size) Fabric {
	rows := make([]Yarn, size.Rows)
	for i := range rows {
		rows[i] = BlankYarn(size.Columns)
	}
	return Fabric{size: size, rows: rows}
}

// CenterFabric returns a fabric with s centered vertically and horizontally.
func CenterFabric(s string, size Size) Fabric {
	if size.Rows == 0 || size.Columns == 0 {
		return NewFabric(size)
	}

	rows := make([]Yarn, 0, size.Rows)
	before := (size.Rows - 1) / 2
	for i := 0; i < before; i++ {
		rows = append(rows, BlankYarn(size.Columns))
	}
	rows = append(rows, CenterYarn(s, size.Columns))
	for len(rows) < size.Rows {
		rows = append(rows, BlankYarn(size.Columns))
	}
	return Fabric{size: size, rows: rows}
}

// FabricFromYarns stacks yarns into a fabric, padding every row to the width
// of the widest.
func FabricFromYarns(yarns []Yarn) Fabric {
	columns := 0
	for i := range yarns {
		if yarns[i].Len() > columns {
			columns = yarns[i].Len()
		}
	}
	for i := range yarns {
		yarns[i].Resize(columns)
	}
	return Fabric{size: Size{Rows: len(yarns), Columns: columns}, rows: yarns}
}

// Size returns the fabric's extent.
func (f *Fabric) Size() Size {
	return f.size
}

// Rows returns the fabric's rows.
func (f *Fabric) Rows() []Yarn {
	return f.rows
}

// PadBottom grows the fabric to rows by appending blank rows. Shrinking is
// not supported.
func (f *Fabric) PadBottom(rows int) {
	for len(f.rows) < rows {
		f.rows = append(f.rows, BlankYarn(f.size.Columns))
	}
	if rows > f.size.Rows {
		f.size.Rows = rows
	}
}

// QuiltBottom stacks other below the fabric.
func (f Fabric) QuiltBottom(other Fabric) Fabric {
	f.rows = append(f.rows, other.rows...)
	f.size.Rows += other.size.Rows
	if other.size.Columns > f.size.Columns {
		f.size.Columns = other.size.Columns
	}
	return f
}
