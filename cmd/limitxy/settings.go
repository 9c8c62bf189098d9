package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"gcode-postprocess/pkg/limitxy"
)

func newSettingsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "settings",
		Short: "Print the settings schema as JSON",
		Long: `Prints every setting with its label, type, default, minimum and the
setting that controls its visibility. Keys are case-insensitive in config
files and --set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := json.MarshalIndent(limitxy.DefaultSchema(), "", "  ")
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		},
	}
}
