package main

import (
	"github.com/spf13/cobra"

	"github.com/worldhelipads/helipad-cli/internal/export"
	"github.com/worldhelipads/helipad-cli/internal/merge"
	"github.com/worldhelipads/helipad-cli/internal/pipeline"
	"github.com/worldhelipads/helipad-cli/internal/retrieve"
	"github.com/worldhelipads/helipad-cli/pkg/openaip"
	"github.com/worldhelipads/helipad-cli/pkg/overpass"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full pipeline",
	Long:  "Runs retrieve, merge, and export in order, recording stage outcomes in the run catalog.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("run"); err != nil {
			return err
		}

		ctx := cmd.Context()
		st, err := newStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		fetch := newFetcher()
		oa := openaip.NewClient(fetch, cfg.OpenAIP.BaseURL, cfg.OpenAIP.Bucket)
		op := overpass.NewClient(fetch, cfg.Overpass.URL)

		runner := pipeline.New(st,
			retrieve.New(cfg, oa, op),
			merge.New(cfg),
			export.New(cfg),
		)
		_, err = runner.Run(ctx)
		return err
	},
}

func init() { rootCmd.AddCommand(runCmd) }
