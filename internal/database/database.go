package database

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/bookline-io/bookline/internal/config"
	_ "github.com/lib/pq"           // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Open connects to the configured database and runs pending migrations.
func Open(cfg *config.Config) (*sql.DB, error) {
	var db *sql.DB
	var err error

	switch cfg.Database.Type {
	case "postgres":
		db, err = openPostgres(cfg)
	case "sqlite", "":
		db, err = openSQLite(cfg)
	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.Database.Type)
	}
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %v", err)
	}

	if err := RunMigrations(db, cfg.Database.Type); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %v", err)
	}

	log.Printf("Database initialized (%s)", databaseLabel(cfg))
	return db, nil
}

func databaseLabel(cfg *config.Config) string {
	if cfg.Database.Type == "postgres" {
		return fmt.Sprintf("postgres %s:%s/%s", cfg.Database.Host, cfg.Database.Port, cfg.Database.Name)
	}
	return fmt.Sprintf("sqlite %s, WAL mode: %v", cfg.Database.Path, cfg.Database.WALMode)
}

func openPostgres(cfg *config.Config) (*sql.DB, error) {
	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Name,
		cfg.Database.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open PostgreSQL connection: %v", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)
	return db, nil
}

func openSQLite(cfg *config.Config) (*sql.DB, error) {
	dataDir := filepath.Dir(cfg.Database.Path)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %v", err)
	}

	dsn := cfg.Database.Path
	if cfg.Database.WALMode {
		dsn += "?_journal=WAL"
	}

	// SQLite on a shared volume can be briefly locked by another process,
	// so connecting retries before giving up.
	var db *sql.DB
	var lastErr error
	for i := 0; i < cfg.Database.MaxRetries; i++ {
		db, lastErr = sql.Open("sqlite3", dsn)
		if lastErr == nil {
			if lastErr = db.Ping(); lastErr == nil {
				break
			}
			db.Close()
		}
		log.Printf("Attempt %d/%d failed: %v", i+1, cfg.Database.MaxRetries, lastErr)
		time.Sleep(time.Duration(cfg.Database.RetryDelay) * time.Second)
	}
	if lastErr != nil {
		return nil, fmt.Errorf("failed to connect to database after %d attempts: %v", cfg.Database.MaxRetries, lastErr)
	}

	// SQLite only supports one writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)
	return db, nil
}
