package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newHistoryCmd() *cobra.Command {
	var limit int
	var summary bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent fetch history",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := loadRuntime()
			if err != nil {
				return err
			}
			defer rt.Close()

			if rt.History == nil {
				return fmt.Errorf("fetch history is not available")
			}

			if summary {
				sum, err := rt.History.Summarize()
				if err != nil {
					return err
				}
				fmt.Printf("Fetches:     %d\n", sum.Fetches)
				fmt.Printf("Cache hits:  %d (%.0f%%)\n", sum.CacheHits, sum.HitRate*100)
				fmt.Printf("Models seen: %d\n", sum.Models)
				return nil
			}

			entries, err := rt.History.Recent(limit)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Println("no fetch history yet")
				return nil
			}
			for _, e := range entries {
				source := "fetched"
				if e.CacheHit {
					source = "cached"
				}
				fmt.Printf("%s  %-28s %-10s %s  pages %d/%d (%d failed)  %d image(s)  %dms  [%s]\n",
					e.CreatedAt.Local().Format("2006-01-02 15:04:05"),
					e.Model, e.Sort, source,
					e.PagesFetched, e.PagesRequested, e.PagesFailed,
					e.Images, e.DurationMs, e.Node)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "number of entries to show")
	cmd.Flags().BoolVar(&summary, "summary", false, "show aggregate totals instead of entries")
	return cmd
}
