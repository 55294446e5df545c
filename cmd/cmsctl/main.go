package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/dmitrijs2005/newsnow/internal/cmsctl"
	"github.com/dmitrijs2005/newsnow/internal/server/config"
	"github.com/dmitrijs2005/newsnow/internal/server/repositories/repomanager"
)

func main() {
	if err := run(context.Background()); err != nil {
		log.Printf("%v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg := config.LoadConfig()

	db, err := repomanager.OpenPostgres(ctx, cfg.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("db init error: %w", err)
	}
	defer db.Close()

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}

	return cmsctl.NewApp(db, rm, cfg, os.Stdin, os.Stdout).Run(ctx, os.Args[1:])
}
