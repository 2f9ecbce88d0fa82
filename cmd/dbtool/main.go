// dbtool applies the Postgres schema migration for the dispatch engine.
// Fixture-seeding is out of scope (spec §1 Non-goals) — this tool only
// creates tables, unlike the original truck/package dbtool it replaces.
package main

import (
	"database/sql"
	"log"
	"os"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"delivery-route-service/internal/adapters/storage"
	"delivery-route-service/internal/platform/db"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if strings.TrimSpace(databaseURL) == "" {
		log.Fatal("DATABASE_URL is required")
	}

	conn, err := db.Open(databaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	if err := migrate(conn); err != nil {
		log.Fatal(err)
	}
}

func migrate(conn *sql.DB) error {
	log.Println("Initializing database schema...")
	if err := storage.InitSchemaPostgres(conn); err != nil {
		return err
	}
	log.Println("Schema ready.")
	return nil
}
