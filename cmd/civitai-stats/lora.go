package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/BAIKEMARK/civitai-prompt-stats/internal/nodes"
)

func newLoraCmd() *cobra.Command {
	var params nodes.Params
	var retries int

	cmd := &cobra.Command{
		Use:   "lora <lora-file>",
		Short: "Fetch prompt statistics and trigger words for a LoRA model",
		RunE: func(cmd *cobra.Command, args []string) error {
			params.FileName = args[0]
			applyRetries(cmd, &params, retries)

			res, err := runNode(nodes.NodeLORA, params)
			if err != nil {
				return err
			}
			printPromptResult(res)
			fmt.Println()
			fmt.Println("== local triggers ==")
			fmt.Println(res.Values[nodes.OutLocalTriggers])
			fmt.Println()
			fmt.Println("== official triggers ==")
			fmt.Println(res.Values[nodes.OutOfficialTriggers])
			return nil
		},
		Args: cobra.ExactArgs(1),
	}
	fetchFlags(cmd, &params, &retries)
	return cmd
}
