package database

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	_ "github.com/lib/pq" // PostgreSQL driver
)

var DB *sql.DB

// InitDB opens the connection pool and optionally applies the schema
// script pointed to by schemaPath (empty path skips bootstrap).
func InitDB(host, port, user, password, dbname, sslmode, schemaPath string) {
	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, dbname, sslmode)

	var err error
	DB, err = sql.Open("postgres", connStr)
	if err != nil {
		log.Fatalf("Error opening database: %q", err)
	}

	if err = DB.Ping(); err != nil {
		log.Fatalf("Error connecting to database: %q", err)
	}

	if err = applySchema(DB, schemaPath); err != nil {
		log.Fatalf("Error applying database schema: %q", err)
	}
}

// applySchema reads and executes the schema SQL file.
func applySchema(db *sql.DB, schemaPath string) error {
	if schemaPath == "" {
		return nil
	}
	content, err := os.ReadFile(schemaPath)
	if err != nil {
		return fmt.Errorf("could not read schema file %s: %w", schemaPath, err)
	}
	if _, err = db.Exec(string(content)); err != nil {
		return fmt.Errorf("could not execute schema script: %w", err)
	}
	return nil
}

// GetDB returns the database connection pool.
func GetDB() *sql.DB {
	return DB
}
