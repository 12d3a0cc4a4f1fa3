package main

import (
	"github.com/rolescope/backend/internal/server"
	"github.com/rolescope/backend/internal/util"
	"github.com/rolescope/backend/pkg/logger"
	"github.com/rolescope/backend/pkg/logger/console"

	_ "github.com/lib/pq"
)

func main() {
	util.LoadEnv()

	debug := util.GetEnvBool("DEBUG", false)

	consoleLogger := console.New(console.Params{
		Debug: debug,
	})
	logger.Init(consoleLogger)

	server.Init()
}
