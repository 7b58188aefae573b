package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/trimatrixio/matrix-engine/api"
	cerrors "github.com/trimatrixio/matrix-engine/common/errors"
	"github.com/trimatrixio/matrix-engine/common/logging"
	database "github.com/trimatrixio/matrix-engine/database/db"
	"github.com/trimatrixio/matrix-engine/matrix"
)

func main() {
	name := "matrix-engine"
	// Initialize logger.
	logging.Initialize(name)
	defer logging.Finalize()

	logger := logging.NewLoggerTag(name)

	// Setup panic handler.
	cerrors.Initialize(logger)
	defer cerrors.Catch()

	logger.Info("%s service started.", name)
	logger.Info("Initializing.")

	backgroundCtx, stop := context.WithCancel(context.Background())
	go WaitExitSignal(stop, logger)
	group, ctx := errgroup.WithContext(backgroundCtx)

	database.Initialize()
	defer database.Finalize()

	engine := matrix.NewEngine(logger, database.NewDAO(database.GetDB()))

	server := api.NewMatrixServer(ctx, logger, engine)
	group.Go(func() error {
		return server.Run()
	})

	if err := group.Wait(); err != nil {
		logger.Critical("service stopped: %s", err)
		os.Exit(-3)
	}
}

func WaitExitSignal(ctxStop context.CancelFunc, logger logging.Logger) {
	var exitSignal = make(chan os.Signal, 1)
	signal.Notify(exitSignal, syscall.SIGTERM)
	signal.Notify(exitSignal, syscall.SIGINT)

	sig := <-exitSignal
	logger.Info("caught sig: %+v, Stopping...\n", sig)
	ctxStop()
}
