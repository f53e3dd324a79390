/*
Copyright © 2023 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func RootApp() *cli.App {
	return &cli.App{
		Name:  "newsdesk",
		Usage: "A news reader engine serving feeds over a shared catalog",
		Description: `A news reader engine that lets readers follow named feeds over a
		shared catalog of news items.

		Feeds, algorithms, folders and the seed catalog are declared in a TOML
		configuration file. Every feed is a set of tags, journalists and sources;
		an item belongs to a feed when it matches each constrained dimension.
		The result can be browsed from the command line or served as an HTTP API.

		Flags can generally be set via environment variables, e.g.:

		--config => NEWSDESK_CONFIG=config/newsdesk.toml
		--port => NEWSDESK_PORT=3000
		`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   "config/newsdesk.toml",
				Usage:   "Path to the configuration file",
				EnvVars: []string{"NEWSDESK_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Usage:   "Log level (trace, debug, info, warn, error)",
				EnvVars: []string{"NEWSDESK_LOG_LEVEL"},
			},
			&cli.BoolFlag{
				Name:    "log-json",
				Usage:   "Write logs as JSON",
				EnvVars: []string{"NEWSDESK_LOG_JSON"},
			},
		},
		Before: configureLogging,
		Commands: []*cli.Command{
			serveCmd(),
			feedsCmd(),
			itemsCmd(),
			algorithmsCmd(),
			subscribeCmd(),
		},
		Action: func(ctx *cli.Context) error {
			// Show help if no command is specified
			return ctx.App.Run([]string{"", "help"})
		},
	}
}

func configureLogging(ctx *cli.Context) error {
	level, err := log.ParseLevel(ctx.String("log-level"))
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	log.SetLevel(level)

	if ctx.Bool("log-json") {
		log.SetFormatter(&log.JSONFormatter{})
	}
	return nil
}
