package main

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"
)

var runsLimit int

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List past pipeline runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("runs"); err != nil {
			return err
		}

		ctx := cmd.Context()
		st, err := newStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		runs, err := st.ListRuns(ctx, runsLimit)
		if err != nil {
			return err
		}

		if len(runs) == 0 {
			cmd.Println("no runs recorded")
			return nil
		}

		for _, run := range runs {
			duration := ""
			if run.FinishedAt != nil {
				duration = run.FinishedAt.Sub(run.StartedAt).Round(time.Second).String()
			}
			cmd.Printf("%s  %-8s  %s  %s\n",
				run.ID, run.Status, run.StartedAt.Format(time.RFC3339), duration)
			for _, stage := range run.Stages {
				cmd.Printf("  %-8s  %-8s  %6dms  %s\n",
					stage.Name, stage.Status, stage.DurationMS, formatCounters(stage.Counters))
			}
			if run.Error != "" {
				cmd.Printf("  error: %s\n", run.Error)
			}
		}
		return nil
	},
}

func formatCounters(counters map[string]int) string {
	keys := make([]string, 0, len(counters))
	for k := range counters {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := ""
	for _, key := range keys {
		if out != "" {
			out += " "
		}
		out += fmt.Sprintf("%s=%d", key, counters[key])
	}
	return out
}

func init() {
	runsCmd.Flags().IntVar(&runsLimit, "limit", 20, "maximum runs to list")
	rootCmd.AddCommand(runsCmd)
}
