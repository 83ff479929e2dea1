package main

import (
	"context"
	"log"
	"os"

	"FinSignal/internal/di"
	"FinSignal/pkg/config"

	"github.com/urfave/cli/v3"
)

func main() {
	cmd := &cli.Command{
		Name:  "finsignal-api",
		Usage: "Serve technical analysis over HTTP and Kafka",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the YAML config file",
				Value:   "config/config.yaml",
				Sources: cli.EnvVars("FINSIGNAL_CONFIG"),
			},
		},
		Action: serve,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func serve(_ context.Context, cmd *cli.Command) error {
	cfg, err := config.LoadWithEnv(cmd.String("config"))
	if err != nil {
		return err
	}

	log.Printf("env=%s provider=%s cache=%s clickhouse=%t kafka=%t",
		cfg.Environment, cfg.MarketData.Provider, cfg.Cache.Backend, cfg.ClickHouse.Enabled, cfg.Kafka.Enabled)

	app, err := di.InitializeApp(cfg)
	if err != nil {
		return err
	}
	// Run blocks until SIGINT/SIGTERM.
	return app.Run()
}
