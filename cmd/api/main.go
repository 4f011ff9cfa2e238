package main

import (
	"flag"
	"log"

	"github.com/bookline-io/bookline/internal/api"
	"github.com/bookline-io/bookline/internal/config"
)

const version = "0.1.0"

func initializeAPI(configPath string) (*api.Api, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	return api.NewApi(*cfg)
}

func main() {
	configPath := flag.String("config", "app.yml", "Path to configuration file")
	flag.Parse()

	log.Printf("Starting Bookline API v%s with config: %s", version, *configPath)

	api, err := initializeAPI(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	defer api.Close()

	api.Serve()
}
