package main

import (
	"flag"
	"log"

	"github.com/cristijna/SaboresGo/internal/config"
	"github.com/cristijna/SaboresGo/internal/database"
)

func main() {
	down := flag.Bool("down", false, "Revert every migration instead of applying them")
	path := flag.String("path", "", "Migration source URL (defaults to MIGRATIONS_PATH)")
	flag.Parse()

	cfg := config.Load()
	if *path == "" {
		*path = cfg.MigrationsPath
	}

	if err := database.Migrate(cfg.DatabaseURL, *path, *down); err != nil {
		log.Fatalf("ERROR: %v", err)
	}

	if *down {
		log.Printf("Migrations from %s reverted", *path)
		return
	}
	log.Printf("Migrations from %s applied", *path)
}
