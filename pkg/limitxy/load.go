package limitxy

import (
	"gcode-postprocess/pkg/config"
	"gcode-postprocess/pkg/errors"
	"gcode-postprocess/pkg/gcode"
)

const (
	// OptionsSection holds the settings keyed as in Settings
	OptionsSection = "limit_xy_accel_jerk"

	// SlicerSection holds the slicer's own acceleration and jerk values
	SlicerSection = "slicer"
)

// OptionsFromSection reads every setting from sec, starting from defaults.
// A nil section yields defaults. ignored lists the keys present in sec
// that have no effect in the selected mode.
func OptionsFromSection(sec *config.Section, defaults Options) (opts Options, ignored []string, err error) {
	opts = defaults
	if sec == nil {
		return opts, nil, opts.Validate()
	}
	for _, s := range Settings {
		switch s.Type {
		case TypeBool:
			v, err := sec.GetBool(s.Key, s.Value(opts).(bool))
			if err != nil {
				return opts, nil, wrapConfig(err, sec.GetName(), s.Key)
			}
			s.set(&opts, v)
		case TypeInt:
			v, err := sec.GetIntWithBounds(s.Key, s.Minimum, nil, s.Value(opts).(int))
			if err != nil {
				return opts, nil, wrapConfig(err, sec.GetName(), s.Key)
			}
			s.set(&opts, v)
		}
	}
	for _, s := range Settings {
		if sec.HasOption(s.Key) && !s.IsEnabled(opts) {
			ignored = append(ignored, s.Key)
		}
	}
	return opts, ignored, opts.Validate()
}

func wrapConfig(err error, section, option string) error {
	return errors.Wrap(err, errors.ErrConfigValidation, "invalid setting").
		SetSection(section).
		SetOption(option)
}

// SeedOptions fills the limit and jerk settings from the slicer's print
// values, the starting point shown to a user before they edit anything.
func SeedOptions(opts Options, base Baseline) Options {
	accel := pyRound(base.AccelPrint)
	if accel < MinAccelLimit {
		accel = MinAccelLimit
	}
	opts.XAccelLimit, opts.YAccelLimit = accel, accel
	jerk := pyRound(base.JerkPrint)
	opts.XJerk, opts.YJerk = jerk, jerk
	return opts
}

// ResolveBaseline reads the slicer values from sec, falling back to what was
// detected in the document. Travel values default to the print values and
// the enable flags default to true.
func ResolveBaseline(sec *config.Section, det gcode.Detected) (Baseline, error) {
	b := Baseline{}
	if sec == nil {
		sec = config.New().EnsureSection(SlicerSection)
	}

	var err error
	if b.AccelPrint, err = floatOption(sec, "accel_print", det.Accel, det.HasAccel); err != nil {
		return b, err
	}
	if b.AccelTravel, err = sec.GetFloat("accel_travel", b.AccelPrint); err != nil {
		return b, wrapConfig(err, sec.GetName(), "accel_travel")
	}
	if b.JerkPrint, err = floatOption(sec, "jerk_print", det.Jerk, det.HasJerk); err != nil {
		return b, err
	}
	if b.JerkTravel, err = sec.GetFloat("jerk_travel", b.JerkPrint); err != nil {
		return b, wrapConfig(err, sec.GetName(), "jerk_travel")
	}

	for _, f := range []struct {
		key string
		dst *bool
	}{
		{"accel_enabled", &b.AccelEnabled},
		{"accel_travel_enabled", &b.AccelTravelEnabled},
		{"jerk_enabled", &b.JerkEnabled},
		{"jerk_travel_enabled", &b.JerkTravelEnabled},
	} {
		if *f.dst, err = sec.GetBool(f.key, true); err != nil {
			return b, wrapConfig(err, sec.GetName(), f.key)
		}
	}
	return b, b.Validate()
}

func floatOption(sec *config.Section, key string, detected float64, found bool) (float64, error) {
	if !sec.HasOption(key) && !found {
		return 0, errors.BaselineError(key).SetSection(sec.GetName())
	}
	v, err := sec.GetFloat(key, detected)
	if err != nil {
		return 0, wrapConfig(err, sec.GetName(), key)
	}
	return v, nil
}
