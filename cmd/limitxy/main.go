// limitxy limits the X/Y acceleration (M201) and optionally rewrites the
// jerk (M205) of sliced G-code over a range of layers.
//
// Usage:
//
//	limitxy process [input.gcode] [flags]
//	limitxy inspect [input.gcode]
//	limitxy settings
//	limitxy version
//
// Input "-" or no input reads stdin; without -o the result goes to stdout.
//
// Examples:
//
//	# Limit Y to 1000 mm/s² from layer 5 to the end of the print
//	limitxy process part.gcode -o part.limited.gcode --set y_accel_limit=1000 --set start_layer=5
//
//	# Taper both axes down to 800 between layers 10 and 40
//	limitxy process part.gcode -c limitxy.cfg --set gradient_change=true \
//	    --set gradient_start_layer=10 --set gradient_end_layer=40
//
//	# Show what would change without writing anything
//	limitxy process part.gcode -c limitxy.yaml --dry-run
package main

import (
	"fmt"
	"io"
	"os"

	"gcode-postprocess/pkg/errors"
)

const (
	exitError = 1
	exitInput = 2
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.IsInput(err) {
			os.Exit(exitInput)
		}
		os.Exit(exitError)
	}
}

// run executes the command line with the given streams. A panic anywhere
// below is returned as a runtime error.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) (err error) {
	defer func() {
		if e := errors.RecoverPanic(recover()); e != nil {
			err = e
		}
	}()

	root := newRootCmd()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return root.Execute()
}
