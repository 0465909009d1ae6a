package main

import (
	"flag"

	log "github.com/sirupsen/logrus"

	"spinemark/api"
	"spinemark/pkg/config"
)

func main() {
	configPath := flag.String("config", "spinemark.yaml", "Path to the YAML configuration file")
	listenAddr := flag.String("listen", "", "Listen address (overrides config)")
	release := flag.Bool("release", false, "Run in release mode")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *listenAddr != "" {
		cfg.Server.ListenAddr = *listenAddr
	}
	if *release {
		cfg.Server.ReleaseMode = true
	}

	server := api.NewServer(cfg)
	if err := server.Run(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
