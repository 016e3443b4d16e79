package render

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/rivo/uniseg"
)

const columnGap = " │ "

// SideBySide writes both panels as two columns, pairing items by key.
// Translated items with no original counterpart are listed after the pairs.
func (v *View) SideBySide(w io.Writer, width int) error {
	if width < 20 {
		width = 20
	}
	col := (width - uniseg.StringWidth(columnGap)) / 2
	left := v.Items(Original)
	right := v.Items(Translated)

	byKey := make(map[string]Item, len(right))
	for _, it := range right {
		byKey[it.Key] = it
	}
	seen := make(map[string]bool, len(left))

	bw := bufio.NewWriter(w)
	writeRow(bw, col, Original.Label(), Translated.Label())
	fmt.Fprintf(bw, "%s─┼─%s\n", strings.Repeat("─", col), strings.Repeat("─", col))
	for _, l := range left {
		r, ok := byKey[l.Key]
		if ok {
			seen[l.Key] = true
		}
		writePair(bw, col, l, r, ok)
	}
	for _, r := range right {
		if !seen[r.Key] {
			writePair(bw, col, Item{Key: r.Key}, r, true)
		}
	}
	return bw.Flush()
}

func writePair(w io.Writer, col int, l, r Item, paired bool) {
	prefix := "[" + l.Key + "] "
	leftLines := Wrap(prefix+l.Text, col)
	var rightLines []string
	if paired {
		rightLines = Wrap(r.Text, col)
	}
	n := max(len(leftLines), len(rightLines))
	for i := 0; i < n; i++ {
		var a, b string
		if i < len(leftLines) {
			a = leftLines[i]
		}
		if i < len(rightLines) {
			b = rightLines[i]
		}
		writeRow(w, col, a, b)
	}
	writeRow(w, col, "", "")
}

func writeRow(w io.Writer, col int, a, b string) {
	fmt.Fprintf(w, "%s%s%s\n", pad(a, col), columnGap, strings.TrimRight(b, " "))
}

func pad(s string, width int) string {
	if gap := width - uniseg.StringWidth(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}
