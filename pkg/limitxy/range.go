package limitxy

import "gcode-postprocess/pkg/gcode"

// Range is the half-open span of block indices [Start, End) being edited.
type Range struct {
	Start int `json:"start_index"`
	End   int `json:"end_index"`
}

// Spread is the number of blocks in the range.
func (r Range) Spread() int {
	return r.End - r.Start
}

// ResolveRange maps 1-based layer numbers to block indices.
//
// The start block is the one holding the marker of layer startLayer-1; it
// defaults to the first layer block. When endLayer is positive the end block
// is the one holding the marker of layer endLayer (0-based), which makes the
// user-facing end layer inclusive; it defaults to the last layer block.
func ResolveRange(doc *gcode.Document, startLayer, endLayer int) (r Range, startFound, endFound bool) {
	last := doc.Len() - 2
	r.Start, startFound = doc.FindLayer(startLayer-1, gcode.PreambleBlocks, last)
	if !startFound {
		r.Start = gcode.PreambleBlocks
	}
	r.End = last
	if endLayer > 0 {
		if i, ok := doc.FindLayer(endLayer, gcode.PreambleBlocks+1, last); ok {
			r.End, endFound = i, true
		}
	}
	return r, startFound, endFound
}
