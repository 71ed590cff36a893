package main

import (
	"log"
	"os"

	_ "github.com/joho/godotenv/autoload"

	"github.com/fdg312/health-navigator/internal/config"
	"github.com/fdg312/health-navigator/internal/dbmigrate"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: go run ./cmd/migrate [up|status|down]")
	}

	command := os.Args[1]
	switch command {
	case "up", "status", "down":
	default:
		log.Fatalf("unsupported command %q (allowed: up, status, down)", command)
	}

	cfg := config.Load()
	target, err := dbmigrate.SelectTarget(cfg, false)
	if err != nil {
		log.Fatal(err)
	}
	if target.Warning != "" {
		log.Printf("WARNING: %s", target.Warning)
	}
	log.Printf("INFO migrate: command=%s using=%s", command, target.Source)

	if err := dbmigrate.Run(command, target, dbmigrate.DefaultMigrationsDir); err != nil {
		log.Fatal(err)
	}
	log.Printf("INFO migrate: %s completed", command)
}
