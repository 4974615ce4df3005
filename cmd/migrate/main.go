// Command migrate runs schema operations for the backend.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"

	"fittlyfans/internal/bootstrap"
	"fittlyfans/internal/config"
	"fittlyfans/internal/database"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func usage() error {
	return fmt.Errorf("usage: go run ./cmd/migrate <up|status>")
}

func run() error {
	flag.Parse()
	if flag.NArg() < 1 {
		return usage()
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	bootstrap.ConfigureLogging(cfg)

	db, err := database.ConnectWithOptions(cfg, database.ConnectOptions{Migrate: false})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}()

	cmd := strings.ToLower(strings.TrimSpace(flag.Arg(0)))
	switch cmd {
	case "up":
		if err := database.Migrate(db); err != nil {
			return fmt.Errorf("automigrate failed: %w", err)
		}
		if err := bootstrap.EnsureAdmin(context.Background(), cfg, db); err != nil {
			return fmt.Errorf("ensure admin: %w", err)
		}
		log.Println("automigrations applied")
	case "status":
		missing := 0
		for _, model := range database.AllModels() {
			if db.Migrator().HasTable(model) {
				continue
			}
			missing++
			log.Printf("missing table for %T", model)
		}
		log.Printf("driver=%s env=%s models=%d missing=%d", cfg.DBDriver, cfg.Env, len(database.AllModels()), missing)
	default:
		return usage()
	}

	return nil
}
