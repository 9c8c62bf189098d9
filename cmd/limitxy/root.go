package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"gcode-postprocess/pkg/gcode"
	"gcode-postprocess/pkg/log"
)

// app carries state shared by the subcommands of one invocation.
type app struct {
	logLevel  string
	logFormat string
	logFile   string

	logger  *log.Logger
	logSink *os.File
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "limitxy",
		Short: "Limit X/Y acceleration and jerk over a layer range of sliced G-code",
		Long: `limitxy inserts firmware acceleration limits (M201) and rewrites jerk
settings (M205) between two layers of a sliced G-code file, either as one
constant limit that is restored afterwards or as a gradual taper.`,
		SilenceUsage:       true,
		SilenceErrors:      true,
		PersistentPreRunE:  a.setupLogging,
		PersistentPostRunE: a.closeLogging,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error (default info, or $LIMITXY_LOG_LEVEL)")
	pf.StringVar(&a.logFormat, "log-format", "", "log format: text or json (default text, or $LIMITXY_LOG_FORMAT)")
	pf.StringVar(&a.logFile, "logfile", "", "append log output to this file instead of stderr")

	root.AddCommand(
		newProcessCmd(a),
		newInspectCmd(a),
		newSettingsCmd(),
		newVersionCmd(),
	)
	return root
}

// setupLogging builds the logger: environment first, then flags.
func (a *app) setupLogging(cmd *cobra.Command, args []string) error {
	logger := log.New("limitxy")
	if err := log.ConfigureFromEnv(logger); err != nil {
		return err
	}

	w := cmd.ErrOrStderr()
	if a.logFile != "" {
		f, err := os.OpenFile(a.logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		a.logSink = f
		w = f
	}
	if w != os.Stderr {
		logger.SetColorize(false)
	}
	logger.SetWriter(w)

	if a.logLevel != "" {
		logger.SetLevel(log.ParseLevel(a.logLevel))
	}
	if a.logFormat != "" {
		logger.SetFormat(log.ParseFormat(a.logFormat))
	}

	a.logger = logger
	log.SetDefaultLogger(logger)
	return nil
}

func (a *app) closeLogging(cmd *cobra.Command, args []string) error {
	if a.logSink == nil {
		return nil
	}
	err := a.logSink.Close()
	a.logSink = nil
	return err
}

// readDocument reads G-code from the named file, or from the command's
// input when name is empty or "-".
func readDocument(cmd *cobra.Command, args []string) (*gcode.Document, string, error) {
	name := "-"
	if len(args) > 0 {
		name = args[0]
	}

	var data []byte
	var err error
	if name == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
		name = "<stdin>"
	} else {
		data, err = os.ReadFile(name)
	}
	if err != nil {
		return nil, name, fmt.Errorf("read %s: %w", name, err)
	}

	doc, err := gcode.Split(string(data))
	if err != nil {
		return nil, name, err
	}
	return doc, name, nil
}
