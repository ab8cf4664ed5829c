// Command migrate applies the embedded items schema migrations.
//
//	migrate [up|down|status]
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/ghuser/shoplist/migrations/items"
	"github.com/ghuser/shoplist/pkg/config"
	"github.com/ghuser/shoplist/pkg/database"
	"github.com/ghuser/shoplist/pkg/logger"
	"github.com/ghuser/shoplist/pkg/migrator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg).With("component", "migrate")

	command := migrator.CommandUp
	if cfg.Args.Num(0) != "" {
		command = cfg.Args.Num(0)
	}

	ctx := context.Background()
	pool, err := database.NewPool(ctx, cfg.DatabaseURL, log)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := migrator.Run(ctx, pool.DB(), items.FS, command); err != nil {
		log.Error("migration failed", "command", command, "error", err)
		pool.Close()
		os.Exit(1) //nolint:gocritic
	}
	log.Info("migration complete", "command", command)
}
