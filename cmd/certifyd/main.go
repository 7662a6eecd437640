package main

import (
	"log"

	"github.com/csera5/BlockchainTech/internal/config"
	"github.com/csera5/BlockchainTech/internal/infra/db"
	httpinfra "github.com/csera5/BlockchainTech/internal/infra/http"
)

func main() {
	cfg := config.FromEnv()

	store, err := db.NewStore(cfg)
	if err != nil {
		log.Fatalf("failed to init store: %v", err)
	}
	if err := store.Migrate(); err != nil {
		log.Fatalf("failed to migrate: %v", err)
	}

	srv := httpinfra.NewServer(cfg, store)
	if err := srv.Run(); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
