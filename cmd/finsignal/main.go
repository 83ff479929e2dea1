package main

import (
	"context"
	"log"
	"os"

	"github.com/urfave/cli/v3"
)

func main() {
	cmd := &cli.Command{
		Name:  "finsignal",
		Usage: "Technical indicators and signals from the command line",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the YAML config file",
				Value:   "config/config.yaml",
				Sources: cli.EnvVars("FINSIGNAL_CONFIG"),
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level for diagnostics on stderr",
				Value: "warn",
			},
		},
		Commands: []*cli.Command{
			analyzeCommand(),
			scanCommand(),
			backfillCommand(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
