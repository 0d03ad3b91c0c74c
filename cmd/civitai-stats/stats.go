package main

import (
	"github.com/spf13/cobra"

	"github.com/BAIKEMARK/civitai-prompt-stats/internal/nodes"
)

func newStatsCmd() *cobra.Command {
	var params nodes.Params
	var retries int

	cmd := &cobra.Command{
		Use:   "stats <checkpoint-file>",
		Short: "Fetch prompt statistics for a checkpoint model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params.FileName = args[0]
			applyRetries(cmd, &params, retries)

			res, err := runNode(nodes.NodeCKPT, params)
			if err != nil {
				return err
			}
			printPromptResult(res)
			return nil
		},
	}
	fetchFlags(cmd, &params, &retries)
	return cmd
}
