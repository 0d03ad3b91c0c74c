package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/BAIKEMARK/civitai-prompt-stats/internal/modelfile"
)

func newHashCmd() *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "hash <model-file>",
		Short: "Compute (and cache) the SHA-256 digest of a model file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := loadRuntime()
			if err != nil {
				return err
			}
			defer rt.Close()

			path, err := rt.Resolver.Resolve(modelfile.Kind(kind), args[0])
			if err != nil {
				return err
			}
			digest, err := rt.Hasher.FileDigest(path)
			if err != nil {
				return err
			}
			fmt.Printf("%s  %s\n", digest, path)
			return nil
		},
	}
	cmd.Flags().StringVar(&kind, "kind", string(modelfile.Checkpoint), "model kind: checkpoint or lora")
	return cmd
}
