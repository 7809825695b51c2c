package ui

import (
	"bufio"
	"os"
)

// ANSI SGR codes for the semantic palette.
var (
	fgCodes = map[Color]string{
		ColorInvertedText:       "30",
		ColorGrayedText:         "90",
		ColorLightGrayedText:    "90",
		ColorInvertedGrayedText: "37",
	}
	bgCodes = map[Color]string{
		ColorInvertedBackground: "47",
		ColorHighlight:          "46",
		ColorFocus:              "43",
		ColorUnfocused:          "47",
	}
)

// renderer paints fabrics onto the terminal with buffered writes: cursor
// home, then every row with SGR runs.
type renderer struct {
	out *bufio.Writer
}

func newRenderer() *renderer {
	return &renderer{out: bufio.NewWriterSize(os.Stdout, 1<<16)}
}

// render paints the fabric over the whole screen.
func (r *renderer) render(fabric Fabric) {
	_, _ = r.out.WriteString(cursorHome)

	currentFg := ColorDefault
	currentBg := ColorDefault
	for i, row := range fabric.Rows() {
		if i > 0 {
			_, _ = r.out.WriteString("\r\n")
		}
		for cell := 0; cell < row.Len(); cell++ {
			fg := row.colors[cell]
			bg := row.backgrounds[cell]
			if fg != currentFg || bg != currentBg {
				r.writeStyle(fg, bg)
				currentFg = fg
				currentBg = bg
			}
			_, _ = r.out.WriteRune(row.runes[cell])
		}
	}
	if currentFg != ColorDefault || currentBg != ColorDefault {
		_, _ = r.out.WriteString("\x1b[0m")
	}
	_ = r.out.Flush()
}

// writeStyle emits a reset followed by the codes for fg and bg.
func (r *renderer) writeStyle(fg, bg Color) {
	_, _ = r.out.WriteString("\x1b[0")
	if code, ok := fgCodes[fg]; ok {
		_, _ = r.out.WriteString(";")
		_, _ = r.out.WriteString(code)
	}
	if code, ok := bgCodes[bg]; ok {
		_, _ = r.out.WriteString(";")
		_, _ = r.out.WriteString(code)
	}
	_, _ = r.out.WriteString("m")
}
