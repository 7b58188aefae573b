package main

import (
	"github.com/alexflint/go-arg"

	"github.com/trimatrixio/matrix-engine/common/logging"
	database "github.com/trimatrixio/matrix-engine/database/db"
	"github.com/trimatrixio/matrix-engine/types"
)

type args struct {
	Force bool `arg:"--force" help:"reset even when the database is not empty"`
}

func main() {
	name := "matrix-reset-db"
	logging.Initialize(name)
	defer logging.Finalize()
	logger := logging.NewLoggerTag(name)

	a := new(args)
	arg.MustParse(a)

	database.Initialize()
	defer database.Finalize()

	logger.Info("resetting schema (force=%v)", a.Force)
	database.Reset(database.GetDB(), types.Matrix, a.Force)
	logger.Info("done")
}
