package gcode

import (
	"strconv"
	"strings"
)

// LayerMarkerPrefix starts the first line of every layer block.
const LayerMarkerPrefix = ";LAYER:"

// LayerMarker returns the marker line (without newline) for 0-based layer n.
func LayerMarker(n int) string {
	return LayerMarkerPrefix + strconv.Itoa(n)
}

// ParseLayerMarker reports the layer number if line is a layer marker.
// Trailing CR/LF is ignored. Raft layers carry negative numbers.
func ParseLayerMarker(line string) (int, bool) {
	rest, ok := strings.CutPrefix(trimEOL(line), LayerMarkerPrefix)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil {
		return 0, false
	}
	return n, true
}

// HasLayerMarker reports whether the block contains the whole-line marker
// for layer n. ";LAYER:1" does not match ";LAYER:10".
func HasLayerMarker(block string, n int) bool {
	want := LayerMarker(n)
	for _, line := range strings.Split(block, "\n") {
		if trimEOL(line) == want {
			return true
		}
	}
	return false
}

// FindLayer scans blocks lo..hi inclusive and returns the first index whose
// content holds the marker for layer n.
func (d *Document) FindLayer(n, lo, hi int) (int, bool) {
	if lo < 0 {
		lo = 0
	}
	if hi >= len(d.Blocks) {
		hi = len(d.Blocks) - 1
	}
	for i := lo; i <= hi; i++ {
		if HasLayerMarker(d.Blocks[i], n) {
			return i, true
		}
	}
	return 0, false
}

// BlockLayer returns the layer number of the first marker in block i.
func (d *Document) BlockLayer(i int) (int, bool) {
	if i < 0 || i >= len(d.Blocks) {
		return 0, false
	}
	for _, line := range strings.Split(d.Blocks[i], "\n") {
		if n, ok := ParseLayerMarker(line); ok {
			return n, true
		}
	}
	return 0, false
}

func trimEOL(line string) string {
	return strings.TrimRight(line, "\r\n")
}
