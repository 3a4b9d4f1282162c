package main

import (
	"github.com/spf13/cobra"

	"github.com/worldhelipads/helipad-cli/internal/export"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write LittleNavMap userpoint CSVs",
	Long:  "Partitions the unified dataset into three longitude regions and writes one userpoint import CSV per region.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("export"); err != nil {
			return err
		}

		_, err := export.New(cfg).Run(cmd.Context())
		return err
	},
}

func init() { rootCmd.AddCommand(exportCmd) }
