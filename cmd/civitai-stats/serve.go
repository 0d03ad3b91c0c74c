package main

import (
	"github.com/spf13/cobra"

	"github.com/BAIKEMARK/civitai-prompt-stats/internal/refresh"
	"github.com/BAIKEMARK/civitai-prompt-stats/internal/server"
)

func newServeCmd() *cobra.Command {
	var port int
	var withRefresh bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the node API over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := loadRuntime()
			if err != nil {
				return err
			}
			defer rt.Close()

			if withRefresh {
				refresher := refresh.New(rt)
				if err := refresher.Start(); err != nil {
					return err
				}
				defer refresher.Stop()
			}

			if port == 0 {
				port = rt.Config.ServerPort
			}
			server.Version = version
			return server.New(rt).Start(port)
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "listen port (default from config)")
	cmd.Flags().BoolVar(&withRefresh, "refresh", false, "run the scheduled cache refresher")
	return cmd
}
