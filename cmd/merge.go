package main

import (
	"github.com/spf13/cobra"

	"github.com/worldhelipads/helipad-cli/internal/merge"
)

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Build the unified helipad dataset",
	Long:  "Normalizes the raw source files, deduplicates sites reported by both sources, annotates hospital and offshore helipads, and writes the intermediate dataset.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("merge"); err != nil {
			return err
		}

		_, err := merge.New(cfg).Run(cmd.Context())
		return err
	},
}

func init() { rootCmd.AddCommand(mergeCmd) }
