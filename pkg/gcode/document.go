// Package gcode models a slicer G-code file as an ordered sequence of text
// blocks, one per printed layer, and provides the line-oriented edits used
// by post-processors.
//
// Block layout:
//
//	0        slicer header comments (;FLAVOR, ;Generated with ...)
//	1        start G-code up to the first layer marker
//	2..n-2   one block per ;LAYER:<n> marker
//	n-1      trailer (end G-code after the last layer)
//
// Copyright (C) 2026  Go Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.
package gcode

import (
	"strings"

	"gcode-postprocess/pkg/errors"
)

const (
	// PreambleBlocks is the number of reserved blocks before the first layer
	PreambleBlocks = 2

	// MinBlocks is the smallest block count a host may hand over
	MinBlocks = 3

	// TimeElapsedPrefix closes every layer block in Cura output
	TimeElapsedPrefix = ";TIME_ELAPSED:"
)

// Document is an ordered sequence of text blocks.
type Document struct {
	Blocks []string
}

// NewDocument wraps blocks already segmented by a host application.
func NewDocument(blocks []string) (*Document, error) {
	if len(blocks) < MinBlocks {
		return nil, errors.DocumentError("need at least a two-block preamble and a trailer")
	}
	return &Document{Blocks: blocks}, nil
}

// Split segments raw G-code text into blocks. The text must contain at
// least one layer marker. Joining the result with String reproduces text.
func Split(text string) (*Document, error) {
	lines := strings.SplitAfter(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	var markers []int
	for i, line := range lines {
		if _, ok := ParseLayerMarker(line); ok {
			markers = append(markers, i)
		}
	}
	if len(markers) == 0 {
		return nil, errors.DocumentError("no " + LayerMarkerPrefix + " markers found")
	}

	first := markers[0]
	header := 0
	for header < first && strings.HasPrefix(lines[header], ";") {
		header++
	}

	blocks := make([]string, 0, len(markers)+3)
	blocks = append(blocks, concat(lines[:header]), concat(lines[header:first]))

	trailer := len(lines)
	for i, start := range markers {
		end := len(lines)
		if i+1 < len(markers) {
			end = markers[i+1]
		} else {
			for j := end - 1; j > start; j-- {
				if strings.HasPrefix(lines[j], TimeElapsedPrefix) {
					end = j + 1
					break
				}
			}
			trailer = end
		}
		blocks = append(blocks, concat(lines[start:end]))
	}
	blocks = append(blocks, concat(lines[trailer:]))

	return &Document{Blocks: blocks}, nil
}

func concat(lines []string) string {
	return strings.Join(lines, "")
}

// String joins the blocks back into G-code text.
func (d *Document) String() string {
	return concat(d.Blocks)
}

// Len returns the number of blocks.
func (d *Document) Len() int {
	return len(d.Blocks)
}

// TrailerIndex returns the index of the final block.
func (d *Document) TrailerIndex() int {
	return len(d.Blocks) - 1
}

// LayerCount returns the number of blocks carrying a layer marker.
func (d *Document) LayerCount() int {
	n := 0
	for i := PreambleBlocks; i < d.TrailerIndex(); i++ {
		if _, ok := d.BlockLayer(i); ok {
			n++
		}
	}
	return n
}

// EditBlock replaces block i with the result of fn applied to its lines.
// Lines added to a block that had no line break of its own take the line
// ending of the document.
func (d *Document) EditBlock(i int, fn func(Lines) Lines) error {
	if i < 0 || i >= len(d.Blocks) {
		return errors.BlockIndexError(i, len(d.Blocks))
	}
	block := d.Blocks[i]
	out := fn(SplitLines(block)).Join()
	if !strings.Contains(block, "\n") && d.LineEnding() == "\r\n" {
		out = strings.ReplaceAll(out, "\n", "\r\n")
	}
	d.Blocks[i] = out
	return nil
}

// LineEnding returns "\r\n" when the first line break of the document is
// CRLF, "\n" otherwise.
func (d *Document) LineEnding() string {
	for _, block := range d.Blocks {
		if i := strings.IndexByte(block, '\n'); i >= 0 {
			if i > 0 && block[i-1] == '\r' {
				return "\r\n"
			}
			return "\n"
		}
	}
	return "\n"
}

// TerminateBlock ends block i with a line break when it is non-empty and
// lacks one, so text added to the next block starts on its own line.
func (d *Document) TerminateBlock(i int) error {
	if i < 0 || i >= len(d.Blocks) {
		return errors.BlockIndexError(i, len(d.Blocks))
	}
	if b := d.Blocks[i]; b != "" && !strings.HasSuffix(b, "\n") {
		d.Blocks[i] = b + d.LineEnding()
	}
	return nil
}
