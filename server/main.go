package main

import (
	"context"
	"flag"
	"os"

	"github.com/meikuraledutech/taskflow/config"
	"github.com/meikuraledutech/taskflow/factory"
	"github.com/meikuraledutech/taskflow/httpapi"
	"github.com/meikuraledutech/taskflow/logger"
)

func main() {
	configPath := flag.String("config", os.Getenv("TASKFLOW_CONFIG"), "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		// The logger isn't configured yet.
		boot := logger.New(false).GetLogger("server")
		boot.Fatal().Err(err).Msg("loading config")
	}

	logs := logger.Provide(cfg.Log.Debug, cfg.Log.File)
	log := logs.GetLogger("server")

	store, err := factory.NewStore(context.Background(), cfg.Storage)
	if err != nil {
		log.Fatal().Err(err).Str("storage", cfg.Storage.Type).Msg("opening store")
	}
	defer store.Close()

	app := httpapi.New(store, cfg, logs.GetLogger("http")).App()

	log.Info().Str("listen", cfg.Server.Listen).Str("storage", cfg.Storage.Type).Msg("starting taskflow server")
	if err := app.Listen(cfg.Server.Listen); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
