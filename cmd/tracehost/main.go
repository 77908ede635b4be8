package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/gil906/Python-solver-stepbystep/internal/logging"
	"github.com/gil906/Python-solver-stepbystep/internal/sandbox"
)

func main() {
	// Stdout carries the frame stream; everything else goes to stderr.
	log := logging.NewWorker()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := sandbox.RunWorker(ctx, os.Stdin, os.Stdout); err != nil {
		log.Error("worker failed", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
	_ = log.Sync()
}
