package main

import (
	"github.com/spf13/cobra"

	"github.com/worldhelipads/helipad-cli/internal/retrieve"
	"github.com/worldhelipads/helipad-cli/pkg/openaip"
	"github.com/worldhelipads/helipad-cli/pkg/overpass"
)

var retrieveCmd = &cobra.Command{
	Use:   "retrieve",
	Short: "Download raw source data",
	Long:  "Downloads OpenAIP airport dumps and Overpass helipad, hospital, and offshore platform extracts into the raw data directory.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("retrieve"); err != nil {
			return err
		}

		fetch := newFetcher()
		oa := openaip.NewClient(fetch, cfg.OpenAIP.BaseURL, cfg.OpenAIP.Bucket)
		op := overpass.NewClient(fetch, cfg.Overpass.URL)

		_, err := retrieve.New(cfg, oa, op).Run(cmd.Context())
		return err
	},
}

func init() { rootCmd.AddCommand(retrieveCmd) }
