package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/BAIKEMARK/civitai-prompt-stats/internal/config"
	"github.com/BAIKEMARK/civitai-prompt-stats/internal/logging"
	"github.com/BAIKEMARK/civitai-prompt-stats/internal/nodes"
)

var version = "dev"

var configPath string

func main() {
	root := &cobra.Command{
		Use:     "civitai-stats",
		Short:   "Fetch community prompt statistics and trigger words for local model files",
		Version: version,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (yaml or json)")

	root.AddCommand(
		newStatsCmd(),
		newLoraCmd(),
		newHashCmd(),
		newCacheCmd(),
		newHistoryCmd(),
		newServeCmd(),
		newVersionCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadRuntime builds a node runtime from configuration.
func loadRuntime() (*nodes.Runtime, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logging.Default().SetLevel(logging.ParseLevel(cfg.LogLevel)).SetJSON(cfg.LogJSON)
	return nodes.NewRuntime(cfg)
}

// fetchFlags binds the shared invocation flags onto a Params value.
func fetchFlags(cmd *cobra.Command, p *nodes.Params, retries *int) {
	cmd.Flags().IntVar(&p.TopN, "top-n", 0, "number of ranked prompts to output (default 20)")
	cmd.Flags().IntVar(&p.MaxPages, "max-pages", 0, "maximum image pages to fetch (default 3)")
	cmd.Flags().StringVar(&p.Sort, "sort", "", `image sort: "Most Reactions", "Most Comments" or "Newest"`)
	cmd.Flags().IntVar(&p.TimeoutSeconds, "timeout", 0, "per-request timeout in seconds (default 10)")
	cmd.Flags().IntVar(retries, "retries", -1, "retries per failed page (default 2)")
	cmd.Flags().BoolVar(&p.ForceRefresh, "force", false, "ignore cached results and re-fetch")
}

func applyRetries(cmd *cobra.Command, p *nodes.Params, retries int) {
	if cmd.Flags().Changed("retries") && retries >= 0 {
		p.SetRetries(retries)
	}
}

func runNode(name string, p nodes.Params) (*nodes.Result, error) {
	rt, err := loadRuntime()
	if err != nil {
		return nil, err
	}
	defer rt.Close()

	spec, ok := nodes.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("unknown node: %s", name)
	}
	return spec.Run(rt, p)
}

func printPromptResult(res *nodes.Result) {
	if res.CacheHit {
		fmt.Println("(cached)")
	} else if res.PagesFailed > 0 {
		fmt.Printf("(partial: %d page(s) failed)\n", res.PagesFailed)
	}
	fmt.Println("== positive prompts ==")
	fmt.Println(res.Values[nodes.OutPositive])
	fmt.Println()
	fmt.Println("== negative prompts ==")
	fmt.Println(res.Values[nodes.OutNegative])
}
