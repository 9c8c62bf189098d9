package gcode

import "strings"

// ProcessedMark is written as the first line of the header block by
// post-processing hosts once any script has run.
const ProcessedMark = ";POSTPROCESSED"

// IsProcessed reports whether the header block carries ProcessedMark.
func (d *Document) IsProcessed() bool {
	if len(d.Blocks) == 0 {
		return false
	}
	first, _, _ := strings.Cut(d.Blocks[0], "\n")
	return trimEOL(first) == ProcessedMark
}

// MarkProcessed prepends ProcessedMark to the header block if absent.
func (d *Document) MarkProcessed() {
	if len(d.Blocks) == 0 || d.IsProcessed() {
		return
	}
	d.Blocks[0] = ProcessedMark + "\n" + d.Blocks[0]
}
