package theory

import (
	"strconv"
	"strings"
)

// Is16th reports whether a sequence of length n reads as sixteenth notes for
// tablature layout. Common time uses a threshold of 8 steps, everything else 6.
func Is16th(n, beatsPerBar int) bool {
	threshold := 6
	if beatsPerBar == 4 {
		threshold = 8
	}
	return n > 8 && n > threshold
}

// Tablature renders seq as ASCII tab, one block of G/D/A/E lines per bar.
// Bars hold 16 steps for sixteenth-note sequences and 8 otherwise, and are
// separated by a blank line.
func Tablature(seq Sequence, beatsPerBar int) string {
	if len(seq) == 0 {
		return ""
	}
	perBar := 8
	if Is16th(len(seq), beatsPerBar) {
		perBar = 16
	}
	var bars []string
	for start := 0; start < len(seq); start += perBar {
		end := start + perBar
		if end > len(seq) {
			end = len(seq)
		}
		bars = append(bars, renderBar(seq[start:end]))
	}
	return strings.Join(bars, "\n\n")
}

func renderBar(bar Sequence) string {
	var rows [StringCount]strings.Builder
	for s := range rows {
		rows[s].WriteString(StringNames[s])
		rows[s].WriteByte('|')
	}
	for _, n := range bar {
		var cells [StringCount]string
		width := 1
		if n != nil && n.String >= 0 && n.String < StringCount {
			cells[n.String] = strconv.Itoa(n.Fret)
			width = max(width, len(cells[n.String]))
		}
		for s := range rows {
			cell := cells[s]
			if cell == "" {
				cell = "-"
			}
			rows[s].WriteString(cell)
			rows[s].WriteString(strings.Repeat("-", width-len(cell)))
		}
	}
	lines := make([]string, StringCount)
	for s := range rows {
		rows[s].WriteByte('|')
		lines[s] = rows[s].String()
	}
	return strings.Join(lines, "\n")
}
