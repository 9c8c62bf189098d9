package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gcode-postprocess/pkg/errors"
)

var update = flag.Bool("update", false, "rewrite golden files")

// execute runs the CLI with stdin and returns stdout and stderr.
func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(args, strings.NewReader(stdin), &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

func readTestdata(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return string(data)
}

func TestProcessGolden(t *testing.T) {
	tests := []struct {
		name   string
		config string
		golden string
	}{
		{"constant", "testdata/constant.cfg", "constant.golden"},
		{"gradient", "testdata/gradient.yaml", "gradient.golden"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := execute(t, "", "process", "testdata/sample.gcode", "-c", tt.config)
			require.NoError(t, err)

			path := filepath.Join("testdata", tt.golden)
			if *update {
				require.NoError(t, os.WriteFile(path, []byte(out), 0644))
			}
			if diff := cmp.Diff(readTestdata(t, tt.golden), out); diff != "" {
				t.Errorf("output mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestProcessStdinToFile(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "out.gcode")
	stdout, _, err := execute(t, readTestdata(t, "sample.gcode"),
		"process", "-", "-o", outPath,
		"--set", "y_accel_limit=1000",
		"--set", "slicer.accel_print=3000")
	require.NoError(t, err)
	assert.Empty(t, stdout)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	got := string(data)
	assert.True(t, strings.HasPrefix(got, ";POSTPROCESSED\n;FLAVOR:Marlin\n"))
	assert.Contains(t, got, ";LAYER:0\nM201 X500 Y1000\nM107\n")
	// accel_travel follows accel_print when only the print value is set
	assert.Contains(t, got, ";TIME_ELAPSED:30.9\nM201 X3000 Y3000\nM205 X12 Y12\n;End of Gcode\n")
}

func TestProcessRefusesProcessedInput(t *testing.T) {
	input := ";POSTPROCESSED\n" + readTestdata(t, "sample.gcode")

	_, _, err := execute(t, input, "process")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrAlreadyProcessed))

	out, stderr, err := execute(t, input, "process", "--force")
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(out, ";POSTPROCESSED"), "mark is not duplicated")
	assert.Contains(t, stderr, "already post-processed")
}

func TestProcessDryRun(t *testing.T) {
	out, _, err := execute(t, readTestdata(t, "sample.gcode"),
		"process", "--dry-run",
		"--set", "gradient_change=true",
		"--set", "x_accel_limit=800",
		"--set", "y_accel_limit=600")
	require.NoError(t, err)

	var report struct {
		Mode           string `json:"mode"`
		OverrideBlocks []int  `json:"override_blocks"`
		GradientValues []struct {
			X int `json:"x"`
			Y int `json:"y"`
		} `json:"gradient_values"`
		RestoreBlock int `json:"restore_block"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report), out)
	assert.Equal(t, "gradient", report.Mode)
	assert.Equal(t, []int{2, 3}, report.OverrideBlocks)
	require.Len(t, report.GradientValues, 2)
	assert.Equal(t, 800, report.GradientValues[1].X)
	assert.Equal(t, 600, report.GradientValues[1].Y)
	assert.Equal(t, -1, report.RestoreBlock)
}

func TestProcessWarnings(t *testing.T) {
	_, stderr, err := execute(t, readTestdata(t, "sample.gcode"),
		"process", "--log-format", "json",
		"--set", "gradient_start_layer=3",
		"--set", "x_acel_limit=900",
		"--set", "extra.key=1")
	require.NoError(t, err)

	assert.Contains(t, stderr, `"option":"gradient_start_layer"`)
	assert.Contains(t, stderr, "x_acel_limit")
	assert.Contains(t, stderr, "limits applied")
	assert.NotContains(t, stderr, "no settings section")
}

func TestProcessErrors(t *testing.T) {
	sample := readTestdata(t, "sample.gcode")
	tests := []struct {
		name  string
		stdin string
		args  []string
		code  errors.ErrorCode
	}{
		{"no layers", "G28\nM84\n", nil, errors.ErrGCodeDocument},
		{"bad set", sample, []string{"--set", "novalue"}, errors.ErrConfigOption},
		{"below minimum", sample, []string{"--set", "x_accel_limit=10"}, errors.ErrConfigValidation},
		{"degenerate", sample, []string{"--set", "gradient_change=1", "--set", "gradient_start_layer=3", "--set", "gradient_end_layer=1"}, errors.ErrRangeDegenerate},
		{"missing config", sample, []string{"-c", "testdata/missing.cfg"}, errors.ErrConfigValidation},
		{"no baseline", ";LAYER:0\nG1 X1\n;LAYER:1\nG1 X2\n", nil, errors.ErrBaselineMissing},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, tt.stdin, append([]string{"process"}, tt.args...)...)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.code), "got %v", err)
			assert.True(t, errors.IsInput(err))
		})
	}
}

func TestInspect(t *testing.T) {
	out, _, err := execute(t, "", "inspect", "testdata/sample.gcode")
	require.NoError(t, err)
	assert.Contains(t, out, "layers:    3\n")
	assert.Contains(t, out, "accel:     5000 (max M204)\n")
	assert.Contains(t, out, "jerk:      12 (max M205)\n")
	assert.Contains(t, out, "trailer")

	out, _, err = execute(t, "", "inspect", "--json", "testdata/sample.gcode")
	require.NoError(t, err)
	var info inspection
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	require.Len(t, info.Blocks, 6)
	assert.Equal(t, "header", info.Blocks[0].Kind)
	assert.Equal(t, "start", info.Blocks[1].Kind)
	require.NotNil(t, info.Blocks[3].Layer)
	assert.Equal(t, 1, *info.Blocks[3].Layer)
	assert.Equal(t, 1, info.Blocks[3].M205, "M2050 is not counted")
	assert.Equal(t, 1, info.Blocks[1].M201)
	assert.Equal(t, "trailer", info.Blocks[5].Kind)
	assert.Nil(t, info.Blocks[5].Layer)
}

func TestSettingsCommand(t *testing.T) {
	out, _, err := execute(t, "", "settings")
	require.NoError(t, err)

	var schema map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &schema))
	assert.Equal(t, "LimitXYAccelJerk", schema["key"])
	assert.Len(t, schema["settings"], 10)
}

func TestVersionCommand(t *testing.T) {
	out, _, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "limitxy dev ("))
}

func TestLogFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "limitxy.log")
	_, stderr, err := execute(t, readTestdata(t, "sample.gcode"), "process", "--logfile", logPath, "--log-level", "debug")
	require.NoError(t, err)
	assert.Empty(t, stderr)

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "document loaded")
	assert.Contains(t, string(data), "config loaded")
	assert.Contains(t, string(data), "no settings section; using defaults")
	assert.Contains(t, string(data), "limits applied")
}

func TestProcessMetricsFile(t *testing.T) {
	dir := t.TempDir()
	metricsPath := filepath.Join(dir, "limitxy.prom")

	_, _, err := execute(t, readTestdata(t, "sample.gcode"),
		"process", "-o", filepath.Join(dir, "out.gcode"), "--metrics-file", metricsPath,
		"--set", "jerk_enable=true")
	require.NoError(t, err)

	data, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "limitxy_runs_total{result=\"ok\"} 1\n")
	assert.Contains(t, text, "limitxy_overrides_inserted_total{mode=\"constant\"} 1\n")
	assert.Contains(t, text, "limitxy_jerk_lines_rewritten_total{mode=\"constant\"} 2\n")
	assert.Contains(t, text, "limitxy_document_blocks 6\n")
	assert.Contains(t, text, "limitxy_document_layers 3\n")

	_, _, err = execute(t, "G28\n", "process", "--metrics-file", metricsPath)
	require.Error(t, err)
	data, err = os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "limitxy_runs_total{result=\"input_error\"} 1\n")
	assert.NotContains(t, string(data), "limitxy_document_blocks 6")
}
