package main

import (
	"log"

	"github.com/quitrk/stock-checker-sub001/app"
	"github.com/quitrk/stock-checker-sub001/config"
)

func main() {
	// Load config from .env file
	cfg := config.LoadFromEnv()

	// Create and start app
	application := app.New(cfg)
	if err := application.Start(); err != nil {
		log.Fatal(err)
	}
}
