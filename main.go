package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"newsdesk/cmd"

	log "github.com/sirupsen/logrus"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.RootApp().RunContext(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}
