package ui

import "strings"

// renderProgressBar draws the elapsed/total ratio as a knob on a
// fixed-width track.
func renderProgressBar(elapsed, total float64, width int) string {
	if width < 10 {
		width = 10
	}
	track := width - 2

	ratio := 0.0
	if total > 0 {
		ratio = elapsed / total
	}
	if ratio < 0 {
		ratio = 0
	} else if ratio > 1 {
		ratio = 1
	}

	knob := int(ratio * float64(track-1))
	var sb strings.Builder
	sb.Grow(track)
	for i := 0; i < track; i++ {
		switch {
		case i < knob:
			sb.WriteRune('━')
		case i == knob:
			sb.WriteRune('╸')
		default:
			sb.WriteRune('─')
		}
	}
	return sb.String()
}
