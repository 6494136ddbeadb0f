package main

import (
	"log"
	"net/http"
	"os"

	"github.com/cali-systems/core4-advisory/go-advisor/internal/config"
	"github.com/cali-systems/core4-advisory/go-advisor/internal/hub"
)

// #region main
func main() {
	cfg, err := config.Load(os.Getenv("CORE4_CONFIG"))
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	listen := envOr("HUB_LISTEN", cfg.Hub.Listen)

	stateHub := hub.New(cfg.Hub.EventCap, cfg.Hub.ControlCap)
	server := hub.NewServer(stateHub)

	log.Printf("[HUB] serving state hub on %s", listen)
	if err := http.ListenAndServe(listen, server); err != nil {
		log.Fatalf("hub server: %v", err)
	}
}

// #endregion main

// #region helpers
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// #endregion helpers
