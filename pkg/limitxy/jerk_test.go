package limitxy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewJerkEditPolicy(t *testing.T) {
	assert.Equal(t, BothAxes{X: 5, Y: 6}, NewJerkEditPolicy(5, 6))
	assert.Equal(t, SingleAxis{Axis: AxisX, Value: 5}, NewJerkEditPolicy(5, 0))
	assert.Equal(t, SingleAxis{Axis: AxisY, Value: 7}, NewJerkEditPolicy(0, 7))
	assert.Nil(t, NewJerkEditPolicy(0, 0))
}

func TestJerkOverrideLine(t *testing.T) {
	assert.Equal(t, "M205 X5 Y6", BothAxes{X: 5, Y: 6}.OverrideLine())
	assert.Equal(t, "M205 X5", SingleAxis{Axis: AxisX, Value: 5}.OverrideLine())
	assert.Equal(t, "M205 Y8", SingleAxis{Axis: AxisY, Value: 8}.OverrideLine())
}

func TestJerkRewrite(t *testing.T) {
	tests := []struct {
		name   string
		policy JerkEditPolicy
		in     string
		want   string
	}{
		{"both", BothAxes{X: 5, Y: 6}, "M205 X10 Y10", "M205 X5 Y6"},
		{"both keeps other words", BothAxes{X: 5, Y: 6}, "M205 X8.00 Y8.00 Z0.40 E5.00 ;Setup Jerk", "M205 X5 Y6 Z0.40 E5.00 ;Setup Jerk"},
		{"both does not add words", BothAxes{X: 5, Y: 6}, "M205 Y3", "M205 Y6"},
		{"single x", SingleAxis{Axis: AxisX, Value: 5}, "M205 X10 Y10", "M205 X5 Y10"},
		{"single y decimals", SingleAxis{Axis: AxisY, Value: 7}, "M205 X10.5 Y10.25", "M205 X10.5 Y7"},
		{"comment untouched", SingleAxis{Axis: AxisY, Value: 7}, "M205 X10 Y10 ; was Y12", "M205 X10 Y7 ; was Y12"},
		{"signed value", SingleAxis{Axis: AxisX, Value: 4}, "M205 X+9", "M205 X4"},
		{"missing axis", SingleAxis{Axis: AxisX, Value: 4}, "M205 Y9", "M205 Y9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.policy.Rewrite(tt.in))
		})
	}
}
