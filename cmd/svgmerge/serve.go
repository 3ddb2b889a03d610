package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/benoitkugler/svgmerge/api"
	"github.com/benoitkugler/svgmerge/svgfetch"
	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	addr := appConfig.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}
	srv := api.New(api.Options{
		Logger:       logger,
		Fetcher:      svgfetch.New(appConfig.FetcherConfig()),
		MaxBodyBytes: appConfig.Server.MaxBodyBytes,
	})

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	return srv.ListenAndServe(ctx, addr)
}
