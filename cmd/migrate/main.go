// Command migrate applies the remote PostgreSQL schema (accounts, planner
// tables, tombstones and row-level security) using the same configuration
// sources as the CLI: -r flag, GIFTKEEPER_REMOTE_DSN, .env or -c file.
package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/dmitrijs2005/giftkeeper/internal/buildinfo"
	"github.com/dmitrijs2005/giftkeeper/internal/client/config"
	"github.com/dmitrijs2005/giftkeeper/internal/server/migrations"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()

	db, err := sql.Open("pgx", cfg.RemoteDSN)
	if err != nil {
		log.Fatalf("open remote database: %v", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("remote database unreachable: %v", err)
	}

	applied, err := migrations.Up(ctx, db)
	if err != nil {
		log.Fatalf("%v", err)
	}
	if len(applied) == 0 {
		log.Println("schema is up to date")
		return
	}
	log.Printf("applied migrations: %v", applied)
}
