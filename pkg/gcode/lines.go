// Line-oriented edits on a single block.
//
// Copyright (C) 2026  Go Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package gcode

import (
	"slices"
	"strings"
)

// Lines is a block split on "\n". A block ending in a newline yields a final
// empty element, so Join restores the exact text. CRLF lines keep their
// trailing "\r" and inserted lines copy it from a neighbouring line.
type Lines []string

// SplitLines splits a block into lines.
func SplitLines(block string) Lines {
	return strings.Split(block, "\n")
}

// Join reassembles the lines into block text.
func (l Lines) Join() string {
	return strings.Join(l, "\n")
}

// IndexPrefix returns the index of the first line starting with prefix, or -1.
func (l Lines) IndexPrefix(prefix string) int {
	for i, line := range l {
		if strings.HasPrefix(line, prefix) {
			return i
		}
	}
	return -1
}

// InsertAfterMarker inserts lines directly after the first layer marker.
// It reports false, leaving l unchanged, when the block has no marker.
func (l Lines) InsertAfterMarker(insert ...string) (Lines, bool) {
	i := l.IndexPrefix(LayerMarkerPrefix)
	if i < 0 {
		return l, false
	}
	return slices.Insert(l, i+1, withCR(insert, l.cr(i))...), true
}

// InsertBeforeTail inserts lines so that exactly n existing lines follow
// them. When the block is shorter than n the lines go first.
func (l Lines) InsertBeforeTail(n int, insert ...string) Lines {
	at := len(l) - n
	if at < 0 {
		at = 0
	}
	cr := l.cr(at - 1)
	if at == 0 {
		cr = l.cr(0)
	}
	return slices.Insert(l, at, withCR(insert, cr)...)
}

// Prepend inserts lines at the start of the block.
func (l Lines) Prepend(insert ...string) Lines {
	return slices.Insert(l, 0, withCR(insert, l.cr(0))...)
}

// ReplaceCommands passes every line whose command is token through rewrite
// and returns the number of lines whose text changed.
func (l Lines) ReplaceCommands(token string, rewrite func(string) string) (Lines, int) {
	changed := 0
	for i, line := range l {
		if !IsCommand(line, token) {
			continue
		}
		if out := rewrite(line); out != line {
			l[i] = out
			changed++
		}
	}
	return l, changed
}

// cr returns "\r" when line i is terminated with CRLF.
func (l Lines) cr(i int) string {
	if i >= 0 && i < len(l)-1 && strings.HasSuffix(l[i], "\r") {
		return "\r"
	}
	return ""
}

func withCR(insert []string, cr string) []string {
	if cr == "" {
		return insert
	}
	out := make([]string, len(insert))
	for i, line := range insert {
		out[i] = line + cr
	}
	return out
}
