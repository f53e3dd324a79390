/*
Copyright © 2023 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"time"

	"newsdesk/server"
	"newsdesk/store"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the newsdesk API",
		Description: `Starts the newsdesk HTTP server.

Loads the catalog declared in the configuration file and serves feeds, items,
algorithms and folders as JSON. Load state changes are streamed as server sent
events on /api/state/sse and metrics are exposed on /metrics.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "hostname",
				Aliases: []string{"n"},
				Value:   "",
				Usage:   "The hostname to listen on",
				EnvVars: []string{"NEWSDESK_HOSTNAME"},
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Value:   3000,
				Usage:   "Port to listen on",
				EnvVars: []string{"NEWSDESK_PORT"},
			},
			&cli.StringFlag{
				Name:    "allow-origins",
				Usage:   "Comma separated origins allowed to call the API from a browser",
				EnvVars: []string{"NEWSDESK_ALLOW_ORIGINS"},
			},
			&cli.Uint64Flag{
				Name:    "load-retries",
				Value:   3,
				Usage:   "How many times a failing catalog load is retried",
				EnvVars: []string{"NEWSDESK_LOAD_RETRIES"},
			},
			&cli.DurationFlag{
				Name:    "reload-interval",
				Value:   0,
				Usage:   "Reload the catalog at this interval, 0 disables reloading",
				EnvVars: []string{"NEWSDESK_RELOAD_INTERVAL"},
			},
		},
		Action: func(ctx *cli.Context) error {
			s, err := openStore(ctx, store.WithRetry(store.RetryConfig{
				MaxRetries:      ctx.Uint64("load-retries"),
				InitialInterval: 500 * time.Millisecond,
				MaxInterval:     10 * time.Second,
			}))
			if err != nil {
				return err
			}
			defer s.Close()

			app := server.Server(&server.ServerConfig{
				Store:        s,
				AllowOrigins: ctx.String("allow-origins"),
			})

			// Load in the background so the state endpoints answer while loading
			go func() {
				if err := s.Load(ctx.Context); err != nil {
					log.Warnf("Initial catalog load did not finish: %v", err)
				}
			}()

			if interval := ctx.Duration("reload-interval"); interval > 0 {
				go reloadEvery(ctx, s, interval)
			}

			// Graceful shutdown
			go func() {
				<-ctx.Context.Done()
				log.Info("Gracefully shutting down...")
				if err := app.ShutdownWithTimeout(60 * time.Second); err != nil {
					log.Errorf("Server shutdown failed: %v", err)
				}
			}()

			addr := fmt.Sprintf("%s:%d", ctx.String("hostname"), ctx.Int("port"))
			log.Infof("Starting server on %s", addr)
			if err := app.Listen(addr); err != nil {
				return fmt.Errorf("server stopped: %w", err)
			}

			log.Info("Done!")
			return nil
		},
	}
}

func reloadEvery(ctx *cli.Context, s *store.Store, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Context.Done():
			return
		case <-ticker.C:
			if err := s.Load(ctx.Context); err != nil {
				log.Warnf("Catalog reload did not finish: %v", err)
			}
		}
	}
}
