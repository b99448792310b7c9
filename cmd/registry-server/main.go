package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ruteri/project-nft-registry/auth"
	"github.com/ruteri/project-nft-registry/cmd/flags"
	"github.com/ruteri/project-nft-registry/httpserver"
	"github.com/ruteri/project-nft-registry/kvstore"
	"github.com/ruteri/project-nft-registry/registry"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "registry-server",
		Usage: "Serve the project NFT registry API",
		Flags: append(append([]cli.Flag{
			flags.ListenAddrFlag,
			flags.StoreFlag,
			flags.ContentStorageFlag,
			flags.LogServiceFlagFn("registry-server"),
		}, flags.CommonFlags...), flags.ServerFlags...),
		Action: func(cCtx *cli.Context) error {
			logger := flags.SetupLogger(cCtx)

			store, err := kvstore.Open(cCtx.String(flags.StoreFlag.Name), logger)
			if err != nil {
				logger.Error("Failed to open store", "err", err)
				return err
			}
			defer store.Close()
			logger.Info("Opened registry store", "store", store.Name())

			content, err := flags.ConfigureContentStorage(cCtx, logger)
			if err != nil {
				logger.Error("Failed to configure content storage", "err", err)
				return err
			}
			if content != nil {
				logger.Info("Content storage configured", "location", content.LocationURI())
			}

			reg := registry.NewRegistry(store, auth.ContextAuthorizer{}, logger)
			handler := httpserver.NewHandler(reg, content, logger)

			server, err := httpserver.New(flags.ConfigureServer(cCtx, logger), handler)
			if err != nil {
				logger.Error("Failed to create server", "err", err)
				return err
			}
			reg.WithMetrics(server.RegistryMetrics())

			server.RunInBackground()

			exit := make(chan os.Signal, 1)
			signal.Notify(exit, os.Interrupt, syscall.SIGTERM)
			<-exit
			logger.Info("Shutdown signal received")

			server.Shutdown()
			logger.Info("Server shutdown complete")
			return nil
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
