package gcode

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Firmware commands touched by the post-processor. The spelling is what
// Marlin-style firmware parses and must not change.
const (
	// AccelLimitCommand sets the per-axis maximum acceleration
	AccelLimitCommand = "M201"
	// AccelCommand sets the print/travel acceleration the slicer emits per feature
	AccelCommand = "M204"
	// JerkCommand sets the per-axis jerk
	JerkCommand = "M205"
)

// IsCommand reports whether line issues exactly token: the token must be
// followed by end of line, whitespace or a comment, so "M2050" is not "M205".
func IsCommand(line, token string) bool {
	rest, ok := strings.CutPrefix(line, token)
	if !ok {
		return false
	}
	if rest == "" {
		return true
	}
	switch rest[0] {
	case ' ', '\t', ';', '\r':
		return true
	}
	return false
}

// FormatAxes renders "<cmd> X<x> Y<y>".
func FormatAxes(cmd string, x, y int) string {
	return fmt.Sprintf("%s X%d Y%d", cmd, x, y)
}

// FormatNumber renders v without a trailing ".0" for integral values.
func FormatNumber(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Word is one letter-value pair of a command line, e.g. X8.5.
type Word struct {
	Letter byte
	Value  float64
}

// Command is a parsed command line: its name and numeric parameters.
type Command struct {
	Name  string
	Words []Word
}

// Arg returns the value of the first word with the given letter.
func (c Command) Arg(letter byte) (float64, bool) {
	for _, w := range c.Words {
		if w.Letter == letter {
			return w.Value, true
		}
	}
	return 0, false
}

// ParseCommand parses a line of the form "NAME L<num> L<num> ... ;comment".
// Parameters that are not a letter followed by a number are skipped.
func ParseCommand(line string) (Command, bool) {
	if i := strings.IndexByte(line, ';'); i >= 0 {
		line = line[:i]
	}
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{}, false
	}
	cmd := Command{Name: strings.ToUpper(fields[0])}
	for _, f := range fields[1:] {
		if len(f) < 2 {
			continue
		}
		v, err := strconv.ParseFloat(f[1:], 64)
		if err != nil {
			continue
		}
		letter := f[0]
		if letter >= 'a' && letter <= 'z' {
			letter -= 'a' - 'A'
		}
		cmd.Words = append(cmd.Words, Word{Letter: letter, Value: v})
	}
	return cmd, true
}
