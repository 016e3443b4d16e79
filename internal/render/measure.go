package render

import (
	"strings"

	"github.com/rivo/uniseg"
)

// Measurer estimates the rendered height of a block.
type Measurer interface {
	Height(text string, columns int) int
}

// TextMeasurer approximates layout by wrapping text to the panel width in
// terminal cells. East Asian wide characters count as two cells.
type TextMeasurer struct {
	LineHeight int // pixels per wrapped line
	Chrome     int // label row plus padding
}

// DefaultMeasurer matches the stylesheet's line height and block padding.
func DefaultMeasurer() TextMeasurer {
	return TextMeasurer{LineHeight: 24, Chrome: 56}
}

func (m TextMeasurer) Height(text string, columns int) int {
	return len(Wrap(text, columns))*m.LineHeight + m.Chrome
}

// Wrap breaks text into lines no wider than width cells, preferring line
// break opportunities and splitting inside a word only when it cannot fit.
// Hard newlines are kept; an empty text yields one empty line.
func Wrap(text string, width int) []string {
	if width < 1 {
		width = 1
	}
	var lines []string
	for _, hard := range strings.Split(text, "\n") {
		lines = append(lines, wrapLine(hard, width)...)
	}
	return lines
}

func wrapLine(s string, width int) []string {
	var (
		lines []string
		cur   strings.Builder
		curW  int
		state = -1
	)
	flush := func() {
		lines = append(lines, strings.TrimRight(cur.String(), " "))
		cur.Reset()
		curW = 0
	}

	for len(s) > 0 {
		var seg string
		seg, s, _, state = uniseg.FirstLineSegmentInString(s, state)
		segW := uniseg.StringWidth(seg)
		visibleW := uniseg.StringWidth(strings.TrimRight(seg, " "))

		if curW > 0 && curW+visibleW > width {
			flush()
		}
		if visibleW > width {
			for _, piece := range splitGraphemes(seg, width) {
				if curW > 0 {
					flush()
				}
				cur.WriteString(piece)
				curW = uniseg.StringWidth(piece)
			}
			continue
		}
		cur.WriteString(seg)
		curW += segW
	}
	if cur.Len() > 0 || len(lines) == 0 {
		flush()
	}
	return lines
}

// splitGraphemes cuts s into pieces of at most width cells without breaking
// grapheme clusters.
func splitGraphemes(s string, width int) []string {
	var (
		pieces []string
		cur    strings.Builder
		curW   int
	)
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		w := g.Width()
		if curW > 0 && curW+w > width {
			pieces = append(pieces, cur.String())
			cur.Reset()
			curW = 0
		}
		cur.WriteString(g.Str())
		curW += w
	}
	if cur.Len() > 0 {
		pieces = append(pieces, cur.String())
	}
	return pieces
}
