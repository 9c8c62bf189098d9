package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"gcode-postprocess/pkg/config"
	"gcode-postprocess/pkg/errors"
	"gcode-postprocess/pkg/gcode"
	"gcode-postprocess/pkg/limitxy"
	"gcode-postprocess/pkg/log"
)

type processFlags struct {
	output      string
	configPath  string
	sets        []string
	force       bool
	dryRun      bool
	seed        bool
	metricsFile string
}

func newProcessCmd(a *app) *cobra.Command {
	f := &processFlags{}
	cmd := &cobra.Command{
		Use:   "process [input]",
		Short: "Apply the acceleration/jerk limits to a G-code file",
		Long: `Reads sliced G-code, applies the limits configured in the
[limit_xy_accel_jerk] section and writes the result.

Slicer values to restore come from the [slicer] section (accel_print,
accel_travel, jerk_print, jerk_travel and their *_enabled flags); any
value missing there is taken from the M204/M205 commands in the file.

--set accepts key=value for [limit_xy_accel_jerk] or section.key=value for
any section, and overrides the config file.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runProcess(cmd, args, f)
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.output, "output", "o", "", "output file (default stdout)")
	fl.StringVarP(&f.configPath, "config", "c", "", "config file (.cfg, .yaml or .yml)")
	fl.StringArrayVar(&f.sets, "set", nil, "override a setting, key=value or section.key=value (repeatable)")
	fl.BoolVar(&f.force, "force", false, "process a file that is already marked as post-processed")
	fl.BoolVar(&f.dryRun, "dry-run", false, "print the edit report as JSON instead of writing G-code")
	fl.BoolVar(&f.seed, "seed", false, "default the limits and jerk to the slicer's print values")
	fl.StringVar(&f.metricsFile, "metrics-file", "", "write run metrics in Prometheus text format to this file")
	return cmd
}

func (a *app) runProcess(cmd *cobra.Command, args []string, f *processFlags) (err error) {
	logger := a.logger.WithPrefix("process")
	started := time.Now()

	var doc *gcode.Document
	var report *limitxy.Report
	if f.metricsFile != "" {
		defer func() {
			m := newRunMetrics()
			m.record(doc, report, err, started)
			if werr := m.registry.WriteTextfile(f.metricsFile); werr != nil {
				logger.WithError(werr).Warn("metrics file not written")
			}
		}()
	}

	doc, name, err := readDocument(cmd, args)
	if err != nil {
		return err
	}
	logger.WithFields(log.Fields{"input": name, "blocks": doc.Len(), "layers": doc.LayerCount()}).Debug("document loaded")

	if doc.IsProcessed() {
		if !f.force {
			return errors.AlreadyProcessedError().SetContext("input", name)
		}
		logger.WithField("input", name).Warn("input already post-processed; overrides will be duplicated")
	}

	cfg, err := loadConfig(f.configPath, f.sets)
	if err != nil {
		return err
	}
	logger.WithField("sections", cfg.GetSectionNames()).Debug("config loaded")
	if !cfg.HasSection(limitxy.OptionsSection) {
		logger.WithField("section", limitxy.OptionsSection).Info("no settings section; using defaults")
	}

	base, err :=limitxy.ResolveBaseline(cfg.GetSectionOptional(limitxy.SlicerSection), gcode.ScanBaseline(doc))
	if err != nil {
		return err
	}

	defaults := limitxy.DefaultOptions()
	if f.seed {
		defaults = limitxy.SeedOptions(defaults, base)
	}
	opts, ignored, err := limitxy.OptionsFromSection(cfg.GetSectionOptional(limitxy.OptionsSection), defaults)
	if err != nil {
		return err
	}
	for _, key := range ignored {
		logger.WithFields(log.Fields{"option": key, "mode": opts.Mode().String()}).Warn("setting has no effect in this mode")
	}
	if err := cfg.CheckUnusedOptions(); err != nil {
		logger.WithError(err).Warn("config contains unused options")
	}
	for _, sec := range cfg.GetUnusedSections() {
		logger.WithField("section", sec).Warn("config section is not used")
	}

	annotator, err := limitxy.New(opts, base, a.logger.WithPrefix("limitxy"))
	if err != nil {
		return err
	}
	if report, err = annotator.Apply(doc); err != nil {
		return err
	}
	logger.WithFields(log.Fields{
		"mode":           report.Mode.String(),
		"start_index":    report.Range.Start,
		"end_index":      report.Range.End,
		"overrides":      len(report.OverrideBlocks),
		"jerk_rewritten": report.JerkLinesRewritten,
		"restore_block":  report.RestoreBlock,
	}).Info("limits applied")

	if f.dryRun {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	doc.MarkProcessed()
	return writeDocument(cmd.OutOrStdout(), f.output, doc)
}

// loadConfig reads the config file, if any, and applies --set overrides.
func loadConfig(path string, sets []string) (*config.Config, error) {
	cfg := config.New()
	if path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigValidation, "load config").SetContext("path", path)
		}
	}
	for _, kv := range sets {
		key, value, ok := strings.Cut(kv, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, errors.New(errors.ErrConfigOption, fmt.Sprintf("--set %q: want key=value", kv))
		}
		section := limitxy.OptionsSection
		if s, k, dotted := strings.Cut(key, "."); dotted {
			section, key = s, k
		}
		cfg.EnsureSection(section).Set(key, value)
	}
	return cfg, nil
}

func writeDocument(stdout io.Writer, path string, doc *gcode.Document) error {
	if path == "" || path == "-" {
		_, err := io.WriteString(stdout, doc.String())
		return err
	}
	if err := os.WriteFile(path, []byte(doc.String()), 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
