package database

import (
	"database/sql"
	"fmt"
	"log"
	"strings"
)

// Migration represents a database migration
type Migration struct {
	Version     int
	Description string
	SQL         string
}

// GetMigrations returns all database migrations
func GetMigrations(dbType string) []Migration {
	if dbType == "postgres" {
		return getPostgresMigrations()
	}
	return getSQLiteMigrations()
}

func getPostgresMigrations() []Migration {
	return []Migration{
		{
			Version:     1,
			Description: "Create users table",
			SQL: `CREATE TABLE IF NOT EXISTS users (
				id VARCHAR(36) PRIMARY KEY,
				email VARCHAR(255) UNIQUE NOT NULL,
				password VARCHAR(255) NOT NULL,
				role VARCHAR(50) NOT NULL DEFAULT 'user',
				is_email_verified BOOLEAN NOT NULL DEFAULT FALSE,
				device_token TEXT NOT NULL DEFAULT '',
				created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
			)`,
		},
		{
			Version:     2,
			Description: "Create tokens table",
			SQL: `CREATE TABLE IF NOT EXISTS tokens (
				id VARCHAR(36) PRIMARY KEY,
				user_id VARCHAR(36) NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				token TEXT UNIQUE NOT NULL,
				type VARCHAR(50) NOT NULL,
				expires_at TIMESTAMP WITH TIME ZONE NOT NULL,
				blacklisted BOOLEAN NOT NULL DEFAULT FALSE,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
			)`,
		},
		{
			Version:     3,
			Description: "Create schedules table",
			SQL: `CREATE TABLE IF NOT EXISTS schedules (
				id VARCHAR(36) PRIMARY KEY,
				added_by VARCHAR(36) NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				added_for VARCHAR(36) NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				start_time TIMESTAMP WITH TIME ZONE NOT NULL,
				end_time TIMESTAMP WITH TIME ZONE NOT NULL,
				detail TEXT NOT NULL,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
			)`,
		},
		{
			Version:     4,
			Description: "Create indexes",
			SQL: `CREATE INDEX IF NOT EXISTS idx_users_email ON users(email);
				CREATE INDEX IF NOT EXISTS idx_tokens_user_id ON tokens(user_id);
				CREATE INDEX IF NOT EXISTS idx_tokens_token ON tokens(token);
				CREATE INDEX IF NOT EXISTS idx_tokens_expires_at ON tokens(expires_at);
				CREATE INDEX IF NOT EXISTS idx_schedules_added_for ON schedules(added_for);`,
		},
	}
}

func getSQLiteMigrations() []Migration {
	return []Migration{
		{
			Version:     1,
			Description: "Create users table",
			SQL: `CREATE TABLE IF NOT EXISTS users (
				id TEXT PRIMARY KEY,
				email TEXT UNIQUE NOT NULL,
				password TEXT NOT NULL,
				role TEXT NOT NULL DEFAULT 'user',
				is_email_verified BOOLEAN NOT NULL DEFAULT 0,
				device_token TEXT NOT NULL DEFAULT '',
				created_at DATETIME NOT NULL,
				updated_at DATETIME NOT NULL
			)`,
		},
		{
			Version:     2,
			Description: "Create tokens table",
			SQL: `CREATE TABLE IF NOT EXISTS tokens (
				id TEXT PRIMARY KEY,
				user_id TEXT NOT NULL,
				token TEXT UNIQUE NOT NULL,
				type TEXT NOT NULL,
				expires_at DATETIME NOT NULL,
				blacklisted BOOLEAN NOT NULL DEFAULT 0,
				created_at DATETIME NOT NULL,
				FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
			)`,
		},
		{
			Version:     3,
			Description: "Create schedules table",
			SQL: `CREATE TABLE IF NOT EXISTS schedules (
				id TEXT PRIMARY KEY,
				added_by TEXT NOT NULL,
				added_for TEXT NOT NULL,
				start_time DATETIME NOT NULL,
				end_time DATETIME NOT NULL,
				detail TEXT NOT NULL,
				created_at DATETIME NOT NULL,
				updated_at DATETIME NOT NULL,
				FOREIGN KEY (added_by) REFERENCES users(id) ON DELETE CASCADE,
				FOREIGN KEY (added_for) REFERENCES users(id) ON DELETE CASCADE
			)`,
		},
		{
			Version:     4,
			Description: "Create indexes",
			SQL: `CREATE INDEX IF NOT EXISTS idx_users_email ON users(email);
				CREATE INDEX IF NOT EXISTS idx_tokens_user_id ON tokens(user_id);
				CREATE INDEX IF NOT EXISTS idx_tokens_token ON tokens(token);
				CREATE INDEX IF NOT EXISTS idx_tokens_expires_at ON tokens(expires_at);
				CREATE INDEX IF NOT EXISTS idx_schedules_added_for ON schedules(added_for);`,
		},
	}
}

// createMigrationsTable creates the schema_migrations table if needed
func createMigrationsTable(db *sql.DB, dbType string) error {
	var query string
	if dbType == "postgres" {
		query = `CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
		)`
	} else {
		query = `CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`
	}
	_, err := db.Exec(query)
	return err
}

// getAppliedMigrations returns the set of already applied migration versions
func getAppliedMigrations(db *sql.DB) (map[int]bool, error) {
	applied := make(map[int]bool)
	rows, err := db.Query("SELECT version FROM schema_migrations")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, err
		}
		applied[version] = true
	}
	return applied, rows.Err()
}

// recordMigration records that a migration has been applied
func recordMigration(db *sql.DB, dbType string, version int) error {
	var query string
	if dbType == "postgres" {
		query = "INSERT INTO schema_migrations (version) VALUES ($1)"
	} else {
		query = "INSERT INTO schema_migrations (version) VALUES (?)"
	}
	_, err := db.Exec(query, version)
	return err
}

// RunMigrations runs all pending migrations
func RunMigrations(db *sql.DB, dbType string) error {
	if err := createMigrationsTable(db, dbType); err != nil {
		return fmt.Errorf("failed to create migrations table: %v", err)
	}

	applied, err := getAppliedMigrations(db)
	if err != nil {
		return fmt.Errorf("failed to get applied migrations: %v", err)
	}

	for _, migration := range GetMigrations(dbType) {
		if applied[migration.Version] {
			continue
		}

		log.Printf("Applying migration %d: %s", migration.Version, migration.Description)

		// Split SQL by semicolon and execute each statement
		statements := strings.Split(migration.SQL, ";")
		for _, stmt := range statements {
			stmt = strings.TrimSpace(stmt)
			if stmt == "" {
				continue
			}
			if _, err := db.Exec(stmt); err != nil {
				return fmt.Errorf("failed to apply migration %d: %v", migration.Version, err)
			}
		}

		if err := recordMigration(db, dbType, migration.Version); err != nil {
			return fmt.Errorf("failed to record migration %d: %v", migration.Version, err)
		}
	}

	return nil
}
