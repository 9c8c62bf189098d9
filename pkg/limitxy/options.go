// Package limitxy limits the X/Y acceleration, and optionally rewrites the
// jerk, of a slicer G-code document over a range of layers.
//
// Two modes are supported. Constant mode inserts an M201 limit at the
// first layer of the range and restores the slicer's values after the last
// one. Gradient mode tapers the M201 limit from the slicer's value down to
// the requested one across the range and leaves the final value in force.
//
// Copyright (C) 2026  Go Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.
package limitxy

import (
	"math"

	"github.com/go-playground/validator/v10"

	"gcode-postprocess/pkg/errors"
	"gcode-postprocess/pkg/log"
)

const (
	// MinAccelLimit is the smallest acceleration limit accepted per axis
	MinAccelLimit = 50

	// AccelGranularity is the step gradient values are rounded to
	AccelGranularity = 50

	// ToEnd as an end layer means "through the last layer"
	ToEnd = -1
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Mode selects how the acceleration override is applied.
type Mode int

const (
	// ModeConstant applies one override across the range and restores after it
	ModeConstant Mode = iota
	// ModeGradient tapers the override across the range and keeps the last value
	ModeGradient
)

func (m Mode) String() string {
	if m == ModeGradient {
		return "gradient"
	}
	return "constant"
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// AxisPair holds one value per axis.
type AxisPair struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Options are the user-tunable settings. Layer numbers are 1-based as shown
// in the slicer preview.
type Options struct {
	XAccelLimit int `validate:"min=50"`
	YAccelLimit int `validate:"min=50"`

	JerkEnable bool
	// XJerk and YJerk of 0 leave that axis untouched
	XJerk int `validate:"min=0"`
	YJerk int `validate:"min=0"`

	StartLayer int `validate:"min=1"`
	EndLayer   int `validate:"min=-1"`

	GradientChange     bool
	GradientStartLayer int `validate:"min=1"`
	GradientEndLayer   int `validate:"min=-1"`
}

// DefaultOptions returns the settings defaults.
func DefaultOptions() Options {
	return Options{
		XAccelLimit:        500,
		YAccelLimit:        500,
		XJerk:              8,
		YJerk:              8,
		StartLayer:         1,
		EndLayer:           ToEnd,
		GradientStartLayer: 1,
		GradientEndLayer:   ToEnd,
	}
}

// Validate checks every option against its allowed range.
func (o Options) Validate() error {
	if err := validate.Struct(o); err != nil {
		return errors.OptionsError(err)
	}
	return nil
}

// Mode returns the mode selected by GradientChange.
func (o Options) Mode() Mode {
	if o.GradientChange {
		return ModeGradient
	}
	return ModeConstant
}

// LayerSpan returns the 1-based start layer and the end layer of the
// active mode.
func (o Options) LayerSpan() (start, end int) {
	if o.GradientChange {
		return o.GradientStartLayer, o.GradientEndLayer
	}
	return o.StartLayer, o.EndLayer
}

// Limit returns the requested acceleration limit pair.
func (o Options) Limit() AxisPair {
	return AxisPair{X: o.XAccelLimit, Y: o.YAccelLimit}
}

// sanitize clamps values the settings layer should already have rejected.
func (o Options) sanitize(logger *log.Logger) Options {
	clamp := func(name string, v *int, floor int) {
		if *v < floor {
			logger.WithFields(log.Fields{"option": name, "value": *v, "used": floor}).Warn("option below minimum")
			*v = floor
		}
	}
	clamp("X_accel_limit", &o.XAccelLimit, MinAccelLimit)
	clamp("Y_accel_limit", &o.YAccelLimit, MinAccelLimit)
	clamp("X_jerk", &o.XJerk, 0)
	clamp("Y_jerk", &o.YJerk, 0)
	clamp("start_layer", &o.StartLayer, 1)
	clamp("end_layer", &o.EndLayer, ToEnd)
	clamp("gradient_start_layer", &o.GradientStartLayer, 1)
	clamp("gradient_end_layer", &o.GradientEndLayer, ToEnd)
	return o
}

// Baseline carries the slicer's own acceleration and jerk settings, the
// values restored at the end of a constant range.
type Baseline struct {
	AccelPrint  float64 `validate:"gt=0"`
	AccelTravel float64 `validate:"gte=0"`
	JerkPrint   float64 `validate:"gte=0"`
	JerkTravel  float64 `validate:"gte=0"`

	AccelEnabled       bool
	AccelTravelEnabled bool
	JerkEnabled        bool
	JerkTravelEnabled  bool
}

// Validate checks the baseline values.
func (b Baseline) Validate() error {
	if err := validate.Struct(b); err != nil {
		return errors.OptionsError(err)
	}
	return nil
}

// OldAccel is the larger of the print and travel acceleration.
func (b Baseline) OldAccel() float64 {
	return math.Max(b.AccelPrint, b.AccelTravel)
}

// OldJerk is the larger of the print and travel jerk.
func (b Baseline) OldJerk() float64 {
	return math.Max(b.JerkPrint, b.JerkTravel)
}
