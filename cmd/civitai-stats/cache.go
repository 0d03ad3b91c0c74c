package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/BAIKEMARK/civitai-prompt-stats/internal/cachestore"
	"github.com/BAIKEMARK/civitai-prompt-stats/internal/maintenance"
)

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage the on-disk cache",
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show cache entry counts and disk usage",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := loadRuntime()
			if err != nil {
				return err
			}
			defer rt.Close()

			report := maintenance.BuildReport(rt.Store)
			fmt.Printf("Cache: %s\n", report.CacheDir)
			for _, kind := range cachestore.Kinds {
				ks := report.Kinds[kind]
				fmt.Printf("  %-8s %4d entries  %s\n", kind, ks.Entries, maintenance.FormatBytes(uint64(ks.Bytes)))
			}
			if report.Disk != nil {
				fmt.Printf("Disk:  %s free of %s (%.1f%% used)\n",
					maintenance.FormatBytes(report.Disk.FreeBytes),
					maintenance.FormatBytes(report.Disk.TotalBytes),
					report.Disk.UsedPercent)
			}
			return nil
		},
	}

	var kindFlag string
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove cached records",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := loadRuntime()
			if err != nil {
				return err
			}
			defer rt.Close()

			kinds := cachestore.Kinds
			if kindFlag != "" {
				kinds = []cachestore.Kind{cachestore.Kind(kindFlag)}
			}
			total := 0
			for _, kind := range kinds {
				removed, err := rt.Store.Clear(kind)
				if err != nil {
					return err
				}
				total += removed
			}
			fmt.Printf("Removed %d cache record(s)\n", total)
			return nil
		},
	}
	clearCmd.Flags().StringVar(&kindFlag, "kind", "", "only clear one kind: hash, triggers or prompts")

	cmd.AddCommand(statusCmd, clearCmd)
	return cmd
}
