package limitxy

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"gcode-postprocess/pkg/gcode"
)

// Axis names a motion axis by its G-code letter.
type Axis byte

const (
	AxisX Axis = 'X'
	AxisY Axis = 'Y'
)

var axisWord = map[Axis]*regexp.Regexp{
	AxisX: regexp.MustCompile(`(^|\s)X[-+]?[0-9]*\.?[0-9]*`),
	AxisY: regexp.MustCompile(`(^|\s)Y[-+]?[0-9]*\.?[0-9]*`),
}

// JerkEditPolicy decides how jerk lines are rewritten. Jerk has no firmware
// ceiling, so every M205 in range is rewritten in place.
type JerkEditPolicy interface {
	// OverrideLine is the M205 inserted at the start of the range
	OverrideLine() string
	// Rewrite returns the M205 line with the policy's values substituted
	Rewrite(line string) string
}

// BothAxes sets X and Y jerk.
type BothAxes struct {
	X, Y int
}

// OverrideLine implements JerkEditPolicy.
func (p BothAxes) OverrideLine() string {
	return gcode.FormatAxes(gcode.JerkCommand, p.X, p.Y)
}

// Rewrite implements JerkEditPolicy.
func (p BothAxes) Rewrite(line string) string {
	line = substituteAxis(line, AxisX, p.X)
	return substituteAxis(line, AxisY, p.Y)
}

// SingleAxis sets the jerk of one axis and leaves the other as sliced.
type SingleAxis struct {
	Axis  Axis
	Value int
}

// OverrideLine implements JerkEditPolicy.
func (p SingleAxis) OverrideLine() string {
	return fmt.Sprintf("%s %c%d", gcode.JerkCommand, p.Axis, p.Value)
}

// Rewrite implements JerkEditPolicy.
func (p SingleAxis) Rewrite(line string) string {
	return substituteAxis(line, p.Axis, p.Value)
}

// NewJerkEditPolicy builds the policy for the requested jerk pair, where 0
// means "keep the sliced value". It returns nil when both axes are 0.
func NewJerkEditPolicy(x, y int) JerkEditPolicy {
	switch {
	case x > 0 && y > 0:
		return BothAxes{X: x, Y: y}
	case x > 0:
		return SingleAxis{Axis: AxisX, Value: x}
	case y > 0:
		return SingleAxis{Axis: AxisY, Value: y}
	default:
		return nil
	}
}

// substituteAxis replaces the value of every axis word in the code part of
// the line. Comments are left alone and a missing word is not added.
func substituteAxis(line string, axis Axis, value int) string {
	code, comment, hasComment := strings.Cut(line, ";")
	code = axisWord[axis].ReplaceAllString(code, "${1}"+string(rune(axis))+strconv.Itoa(value))
	if hasComment {
		return code + ";" + comment
	}
	return code
}
