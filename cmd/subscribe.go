/*
Copyright © 2023 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"encoding/json"
	"os"
	"time"

	"newsdesk/models"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func subscribeCmd() *cli.Command {
	return &cli.Command{
		Name:  "subscribe",
		Usage: "Reload the catalog periodically and print state changes",
		Description: `Loads the catalog from the configuration file at a fixed interval
and prints every store state change to the command line.

Returns each state change as a JSON object on a single line. Use a tool like jq
to process the output.

Prints all other log messages to stderr.`,
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:    "interval",
				Aliases: []string{"i"},
				Value:   5 * time.Minute,
				Usage:   "Time between catalog loads",
			},
			&cli.IntFlag{
				Name:  "count",
				Value: -1,
				Usage: "Stop after this many loads, -1 runs until interrupted",
			},
		},
		Action: func(ctx *cli.Context) error {
			// Disable logging to stdout
			log.SetOutput(os.Stderr)

			s, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			key, events := s.Subscribe(16)
			defer s.Unsubscribe(key)

			done := make(chan struct{})
			go func() {
				defer close(done)
				for event := range events {
					printStdout(ctx, event)
				}
			}()

			ticker := time.NewTicker(ctx.Duration("interval"))
			defer ticker.Stop()

			for loads := 0; ctx.Int("count") < 0 || loads < ctx.Int("count"); loads++ {
				if loads > 0 {
					select {
					case <-ctx.Context.Done():
						return nil
					case <-ticker.C:
					}
				}
				if err := s.Load(ctx.Context); err != nil {
					log.Warnf("Catalog load did not finish: %v", err)
					return nil
				}
			}

			// Let the printer drain the events of the last load
			s.Unsubscribe(key)
			<-done
			return nil
		},
	}
}

func printStdout(ctx *cli.Context, event models.StateEvent) {
	// Print as single JSON string on a single line
	eventJson, err := json.Marshal(event)
	if err == nil {
		ctx.App.Writer.Write(append(eventJson, '\n'))
	}
}
