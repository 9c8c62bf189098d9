package limitxy

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// SettingType is the value type of a user-facing setting.
type SettingType string

const (
	TypeInt  SettingType = "int"
	TypeBool SettingType = "bool"
)

// Setting describes one user-facing option as presented by a settings UI.
type Setting struct {
	Key         string      `json:"-"`
	Label       string      `json:"label"`
	Description string      `json:"description"`
	Type        SettingType `json:"type"`
	Unit        string      `json:"unit,omitempty"`
	Default     interface{} `json:"default_value"`
	Minimum     *int        `json:"minimum_value,omitempty"`

	// Enabled is "" (always), a bool setting key, or "not <key>"
	Enabled string `json:"-"`

	get func(*Options) interface{}
	set func(*Options, interface{})
}

func intMin(v int) *int { return &v }

func intSetting(key, label, unit, enabled string, def int, minimum *int, field func(*Options) *int, desc string) Setting {
	return Setting{
		Key: key, Label: label, Description: desc, Type: TypeInt, Unit: unit,
		Default: def, Minimum: minimum, Enabled: enabled,
		get: func(o *Options) interface{} { return *field(o) },
		set: func(o *Options, v interface{}) { *field(o) = v.(int) },
	}
}

func boolSetting(key, label, desc string, field func(*Options) *bool) Setting {
	return Setting{
		Key: key, Label: label, Description: desc, Type: TypeBool, Default: false,
		get: func(o *Options) interface{} { return *field(o) },
		set: func(o *Options, v interface{}) { *field(o) = v.(bool) },
	}
}

// Settings lists the options in display order.
var Settings = []Setting{
	intSetting("X_accel_limit", "X MAX Acceleration", "mm/sec²", "", 500, intMin(MinAccelLimit),
		func(o *Options) *int { return &o.XAccelLimit },
		"Maximum X acceleration. Lower than the sliced acceleration to limit the X axis. Affects print and travel moves."),
	intSetting("Y_accel_limit", "Y MAX Acceleration", "mm/sec²", "", 500, intMin(MinAccelLimit),
		func(o *Options) *int { return &o.YAccelLimit },
		"Maximum Y acceleration. Lower than the sliced acceleration to limit the Y axis. Affects print and travel moves."),
	boolSetting("jerk_enable", "Change the Jerk", "Whether to change the jerk values.",
		func(o *Options) *bool { return &o.JerkEnable }),
	intSetting("X_jerk", "X jerk", "mm/sec", "jerk_enable", 8, intMin(0),
		func(o *Options) *int { return &o.XJerk },
		"Jerk for the X axis. 0 keeps the sliced X jerk."),
	intSetting("Y_jerk", "Y jerk", "mm/sec", "jerk_enable", 8, intMin(0),
		func(o *Options) *int { return &o.YJerk },
		"Jerk for the Y axis. 0 keeps the sliced Y jerk."),
	intSetting("start_layer", "From Start of Layer", "Lay#", "not gradient_change", 1, intMin(1),
		func(o *Options) *int { return &o.StartLayer },
		"Preview layer number to start the changes at. The minimum is layer 1."),
	intSetting("end_layer", "To End of Layer", "Lay#", "not gradient_change", ToEnd, intMin(ToEnd),
		func(o *Options) *int { return &o.EndLayer },
		"Preview layer number to end the changes at, reverting to the sliced values. -1 for the entire file."),
	boolSetting("gradient_change", "Gradual ACCEL Change",
		"Gradually lower the acceleration limit from the start layer to the end layer. The last value and any jerk change continue to the end of the file.",
		func(o *Options) *bool { return &o.GradientChange }),
	intSetting("gradient_start_layer", "Gradual From Layer", "Lay#", "gradient_change", 1, intMin(1),
		func(o *Options) *int { return &o.GradientStartLayer },
		"Preview layer number to start the gradual change at. The minimum is layer 1."),
	intSetting("gradient_end_layer", "Gradual To Layer", "Lay#", "gradient_change", ToEnd, intMin(ToEnd),
		func(o *Options) *int { return &o.GradientEndLayer },
		"Preview layer number where the gradual change reaches the limit. -1 for the top layer."),
}

// LookupSetting finds a setting by key, ignoring case.
func LookupSetting(key string) (Setting, bool) {
	for _, s := range Settings {
		if strings.EqualFold(s.Key, key) {
			return s, true
		}
	}
	return Setting{}, false
}

// Value returns the setting's value in o.
func (s Setting) Value(o Options) interface{} {
	return s.get(&o)
}

// IsEnabled evaluates the setting's visibility expression against o.
func (s Setting) IsEnabled(o Options) bool {
	expr := s.Enabled
	if expr == "" {
		return true
	}
	negate := false
	if rest, ok := strings.CutPrefix(expr, "not "); ok {
		negate, expr = true, rest
	}
	dep, ok := LookupSetting(expr)
	if !ok || dep.Type != TypeBool {
		return true
	}
	return dep.Value(o).(bool) != negate
}

// MarshalJSON writes the enabled expression as true or a string.
func (s Setting) MarshalJSON() ([]byte, error) {
	type plain Setting
	out := struct {
		plain
		Enabled interface{} `json:"enabled"`
	}{plain: plain(s), Enabled: true}
	if s.Enabled != "" {
		out.Enabled = s.Enabled
	}
	return json.Marshal(out)
}

// Schema is the settings definition document.
type Schema struct {
	Name     string
	Key      string
	Version  int
	Settings []Setting
}

// DefaultSchema returns the schema for Settings.
func DefaultSchema() Schema {
	return Schema{
		Name:     "Limit the X-Y Accel/Jerk",
		Key:      "LimitXYAccelJerk",
		Version:  2,
		Settings: Settings,
	}
}

// MarshalJSON keeps settings in display order.
func (s Schema) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	head, err := json.Marshal(struct {
		Name     string            `json:"name"`
		Key      string            `json:"key"`
		Metadata map[string]string `json:"metadata"`
		Version  int               `json:"version"`
	}{s.Name, s.Key, map[string]string{}, s.Version})
	if err != nil {
		return nil, err
	}
	buf.Write(head[:len(head)-1])
	buf.WriteString(`,"settings":{`)
	for i, st := range s.Settings {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, _ := json.Marshal(st.Key)
		val, err := json.Marshal(st)
		if err != nil {
			return nil, fmt.Errorf("setting %s: %w", st.Key, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteString("}}")
	return buf.Bytes(), nil
}
