package limitxy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gcode-postprocess/pkg/config"
	"gcode-postprocess/pkg/errors"
	"gcode-postprocess/pkg/gcode"
)

func loadSection(t *testing.T, text, name string) *config.Section {
	t.Helper()
	cfg, err := config.LoadString(text)
	require.NoError(t, err)
	sec, err := cfg.GetSection(name)
	require.NoError(t, err)
	return sec
}

func TestOptionsFromSection(t *testing.T) {
	sec := loadSection(t, `
[limit_xy_accel_jerk]
X_accel_limit: 800
y_accel_limit = 600
jerk_enable: yes
y_jerk: 0
start_layer: 2
end_layer: 5
gradient_start_layer: 4
unknown_option: 1
`, OptionsSection)

	opts, ignored, err := OptionsFromSection(sec, DefaultOptions())
	require.NoError(t, err)

	want := DefaultOptions()
	want.XAccelLimit, want.YAccelLimit = 800, 600
	want.JerkEnable = true
	want.YJerk = 0
	want.StartLayer, want.EndLayer = 2, 5
	want.GradientStartLayer = 4
	assert.Equal(t, want, opts)
	assert.Equal(t, []string{"gradient_start_layer"}, ignored)
	assert.Equal(t, []string{"unknown_option"}, sec.GetUnusedOptions())
}

func TestOptionsFromSectionNil(t *testing.T) {
	opts, ignored, err := OptionsFromSection(nil, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, DefaultOptions(), opts)
	assert.Empty(t, ignored)
}

func TestOptionsFromSectionErrors(t *testing.T) {
	tests := map[string]string{
		"below minimum": "x_accel_limit: 10",
		"not a number":  "start_layer: first",
		"not a bool":    "gradient_change: maybe",
		"end too low":   "gradient_end_layer: -2",
	}
	for name, line := range tests {
		t.Run(name, func(t *testing.T) {
			sec := loadSection(t, "[limit_xy_accel_jerk]\n"+line+"\n", OptionsSection)
			_, _, err := OptionsFromSection(sec, DefaultOptions())
			require.Error(t, err)
			assert.True(t, errors.IsConfig(err), "%v", err)
		})
	}
}

func TestSeedOptions(t *testing.T) {
	base := testBaseline()
	base.AccelPrint = 2500.5
	base.JerkPrint = 12

	opts := SeedOptions(DefaultOptions(), base)
	assert.Equal(t, AxisPair{X: 2500, Y: 2500}, opts.Limit())
	assert.Equal(t, 12, opts.XJerk)
	assert.Equal(t, 12, opts.YJerk)

	base.AccelPrint = 10
	assert.Equal(t, MinAccelLimit, SeedOptions(DefaultOptions(), base).XAccelLimit)
}

func TestResolveBaselineFromConfig(t *testing.T) {
	sec := loadSection(t, `
[slicer]
accel_print: 3000
accel_travel: 5000
jerk_print: 8
accel_enabled: false
`, SlicerSection)

	b, err := ResolveBaseline(sec, gcode.Detected{Accel: 9999, HasAccel: true, Jerk: 20, HasJerk: true})
	require.NoError(t, err)

	assert.Equal(t, 3000.0, b.AccelPrint)
	assert.Equal(t, 5000.0, b.OldAccel())
	assert.Equal(t, 8.0, b.JerkTravel, "travel defaults to print")
	assert.Equal(t, 8.0, b.OldJerk())
	assert.False(t, b.AccelEnabled)
	assert.True(t, b.AccelTravelEnabled)
	assert.True(t, b.JerkEnabled)
}

func TestResolveBaselineFromDocument(t *testing.T) {
	b, err := ResolveBaseline(nil, gcode.Detected{Accel: 4000, HasAccel: true, Jerk: 9.5, HasJerk: true})
	require.NoError(t, err)
	assert.Equal(t, 4000.0, b.OldAccel())
	assert.Equal(t, 9.5, b.OldJerk())
}

func TestResolveBaselineMissing(t *testing.T) {
	_, err := ResolveBaseline(nil, gcode.Detected{Jerk: 8, HasJerk: true})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrBaselineMissing))

	_, err = ResolveBaseline(nil, gcode.Detected{Accel: 3000, HasAccel: true})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrBaselineMissing))
}

func TestResolveBaselineInvalid(t *testing.T) {
	sec := loadSection(t, "[slicer]\naccel_print: fast\n", SlicerSection)
	_, err := ResolveBaseline(sec, gcode.Detected{})
	require.Error(t, err)
	assert.True(t, errors.IsConfig(err))

	sec = loadSection(t, "[slicer]\naccel_print: 0\njerk_print: 8\n", SlicerSection)
	_, err = ResolveBaseline(sec, gcode.Detected{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrOptionsValidation))
}

func TestExampleConfigs(t *testing.T) {
	det := gcode.Detected{Accel: 2500, HasAccel: true, Jerk: 9, HasJerk: true}
	tests := []struct {
		path     string
		mode     Mode
		limit    AxisPair
		span     [2]int
		ignored  []string
		oldAccel float64
	}{
		{"../../config/limitxy.cfg", ModeConstant, AxisPair{3000, 1000}, [2]int{1, ToEnd}, []string{"X_jerk", "Y_jerk"}, 2500},
		{"../../config/limitxy.yaml", ModeGradient, AxisPair{3000, 800}, [2]int{20, 120}, nil, 5000},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			cfg, err := config.Load(tt.path)
			require.NoError(t, err)

			opts, ignored, err := OptionsFromSection(cfg.GetSectionOptional(OptionsSection), DefaultOptions())
			require.NoError(t, err)
			assert.Equal(t, tt.ignored, ignored)
			assert.Equal(t, tt.mode, opts.Mode())
			assert.Equal(t, tt.limit, opts.Limit())
			start, end := opts.LayerSpan()
			assert.Equal(t, tt.span, [2]int{start, end})

			base, err := ResolveBaseline(cfg.GetSectionOptional(SlicerSection), det)
			require.NoError(t, err)
			assert.Equal(t, tt.oldAccel, base.OldAccel())
			assert.Equal(t, 9.0, base.OldJerk())
			assert.NoError(t, cfg.CheckUnusedOptions())
		})
	}
}
