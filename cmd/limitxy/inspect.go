package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"gcode-postprocess/pkg/gcode"
	"gcode-postprocess/pkg/log"
)

type blockInfo struct {
	Index int    `json:"index"`
	Kind  string `json:"kind"`
	Layer *int   `json:"layer,omitempty"`
	Lines int    `json:"lines"`
	M201  int    `json:"m201"`
	M204  int    `json:"m204"`
	M205  int    `json:"m205"`
}

type inspection struct {
	Input     string         `json:"input"`
	Processed bool           `json:"processed"`
	Layers    int            `json:"layers"`
	Baseline  gcode.Detected `json:"baseline"`
	Blocks    []blockInfo    `json:"blocks"`
}

func newInspectCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "inspect [input]",
		Short: "Show the block and layer layout of a G-code file",
		Long: `Splits the file the way process does and lists every block with its
layer number and acceleration/jerk command counts, plus the acceleration
and jerk found in the file. Use it to check which layer numbers exist
before choosing start and end layers.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, name, err := readDocument(cmd, args)
			if err != nil {
				return err
			}
			a.logger.WithFields(log.Fields{"input": name, "blocks": doc.Len()}).Debug("document split")
			info := inspect(doc, name)
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(info)
			}
			return printInspection(cmd, info)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func inspect(doc *gcode.Document, name string) inspection {
	info := inspection{
		Input:     name,
		Processed: doc.IsProcessed(),
		Layers:    doc.LayerCount(),
		Baseline:  gcode.ScanBaseline(doc),
	}
	for i, block := range doc.Blocks {
		b := blockInfo{Index: i, Kind: blockKind(doc, i)}
		if n, ok := doc.BlockLayer(i); ok && b.Kind == "layer" {
			b.Layer = &n
		}
		lines := gcode.SplitLines(block)
		b.Lines = len(lines)
		if n := len(lines); n > 0 && lines[n-1] == "" {
			b.Lines--
		}
		for _, line := range lines {
			switch {
			case gcode.IsCommand(line, gcode.AccelLimitCommand):
				b.M201++
			case gcode.IsCommand(line, gcode.AccelCommand):
				b.M204++
			case gcode.IsCommand(line, gcode.JerkCommand):
				b.M205++
			}
		}
		info.Blocks = append(info.Blocks, b)
	}
	return info
}

func blockKind(doc *gcode.Document, i int) string {
	switch {
	case i == 0:
		return "header"
	case i == 1:
		return "start"
	case i == doc.TrailerIndex():
		return "trailer"
	default:
		return "layer"
	}
}

func printInspection(cmd *cobra.Command, info inspection) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "input:     %s\n", info.Input)
	fmt.Fprintf(out, "processed: %t\n", info.Processed)
	fmt.Fprintf(out, "layers:    %d\n", info.Layers)
	if info.Baseline.HasAccel {
		fmt.Fprintf(out, "accel:     %s (max M204)\n", gcode.FormatNumber(info.Baseline.Accel))
	}
	if info.Baseline.HasJerk {
		fmt.Fprintf(out, "jerk:      %s (max M205)\n", gcode.FormatNumber(info.Baseline.Jerk))
	}
	fmt.Fprintln(out)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "BLOCK\tKIND\tLAYER\tLINES\tM201\tM204\tM205")
	for _, b := range info.Blocks {
		layer := "-"
		if b.Layer != nil {
			// preview numbers are 1-based
			layer = fmt.Sprintf("%d (%d)", *b.Layer, *b.Layer+1)
		}
		fmt.Fprintln(tw, strings.Join([]string{
			fmt.Sprint(b.Index), b.Kind, layer, fmt.Sprint(b.Lines),
			fmt.Sprint(b.M201), fmt.Sprint(b.M204), fmt.Sprint(b.M205),
		}, "\t"))
	}
	return tw.Flush()
}
