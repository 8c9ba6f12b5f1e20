// Package database - connection management and schema migrations
// Chức năng:
//   - Initialize SQLite database connection
//   - Run schema migrations (CREATE TABLE statements)
//   - Connection pooling configuration
//   - Health check queries
//   - Pure Go SQLite driver (glebarez/go-sqlite)
package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/glebarez/go-sqlite"
)

// DB wraps the sql.DB connection
type DB struct {
	*sql.DB
}

// Config holds database configuration
type Config struct {
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// NewDB creates a new database connection
func NewDB(config Config) (*DB, error) {
	dir := filepath.Dir(config.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	sqlDB, err := sql.Open("sqlite", config.Path+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB.SetMaxOpenConns(config.MaxOpenConns)
	sqlDB.SetMaxIdleConns(config.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(config.ConnMaxLifetime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db := &DB{sqlDB}

	if err := db.Migrate(); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := db.Seed(); err != nil {
		return nil, fmt.Errorf("failed to seed database: %w", err)
	}

	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.DB.Close()
}

// Migrate runs database migrations. The schema mirrors the spec's data
// model directly: LibraryEntry and ProgressRecord are separate tables
// (Open Question #1), ratings are 1-5 with derived aggregates kept on the
// manga row via triggers, and there is deliberately no chat_messages table
// — the chat fabric is pure in-memory (spec §3/§4.4 Non-goal).
func (db *DB) Migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			username TEXT UNIQUE NOT NULL,
			email TEXT UNIQUE NOT NULL,
			password_hash TEXT NOT NULL,
			display_name TEXT NOT NULL,
			role TEXT DEFAULT 'user' CHECK (role IN ('user', 'admin', 'moderator')),
			is_active BOOLEAN DEFAULT 1,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			last_login_at DATETIME
		)`,

		`CREATE TABLE IF NOT EXISTS manga (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			author TEXT,
			artist TEXT,
			description TEXT,
			cover_url TEXT,
			status TEXT DEFAULT 'ongoing' CHECK (status IN ('ongoing', 'completed', 'hiatus', 'dropped', 'cancelled')),
			type TEXT DEFAULT 'manga' CHECK (type IN ('manga', 'manhwa', 'manhua', 'novel')),
			genres TEXT NOT NULL DEFAULT '[]',
			total_chapters INTEGER DEFAULT 0,
			average_rating REAL DEFAULT 0.0 CHECK (average_rating BETWEEN 0 AND 5),
			rating_count INTEGER DEFAULT 0,
			publication_year INTEGER,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE VIRTUAL TABLE IF NOT EXISTS manga_fts USING fts5(
			id UNINDEXED,
			title,
			author,
			description,
			content='manga'
		)`,

		`CREATE TRIGGER IF NOT EXISTS manga_fts_insert AFTER INSERT ON manga BEGIN
			INSERT INTO manga_fts(id, title, author, description)
			VALUES (new.id, new.title, new.author, new.description);
		END`,

		`CREATE TRIGGER IF NOT EXISTS manga_fts_update AFTER UPDATE ON manga BEGIN
			UPDATE manga_fts SET title = new.title, author = new.author, description = new.description
			WHERE id = new.id;
		END`,

		`CREATE TRIGGER IF NOT EXISTS manga_fts_delete AFTER DELETE ON manga BEGIN
			DELETE FROM manga_fts WHERE id = old.id;
		END`,

		`CREATE TABLE IF NOT EXISTS chapters (
			id TEXT PRIMARY KEY,
			manga_id TEXT NOT NULL,
			number REAL NOT NULL,
			volume INTEGER,
			title TEXT,
			language TEXT NOT NULL DEFAULT 'en',
			source TEXT,
			published_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			pages TEXT NOT NULL DEFAULT '[]',
			external_url TEXT,
			is_external BOOLEAN DEFAULT 0,
			FOREIGN KEY (manga_id) REFERENCES manga(id) ON DELETE CASCADE,
			UNIQUE(manga_id, number, language)
		)`,

		// ===== Library (collection membership) — separate from progress =====
		`CREATE TABLE IF NOT EXISTS library_entries (
			user_id TEXT NOT NULL,
			manga_id TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'plan_to_read' CHECK (status IN ('reading', 'completed', 'plan_to_read', 'dropped', 'on_hold', 're_reading')),
			added_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			last_updated DATETIME DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (user_id, manga_id),
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
			FOREIGN KEY (manga_id) REFERENCES manga(id) ON DELETE CASCADE
		)`,

		// ===== Progress (last-read position) — independent of library =====
		`CREATE TABLE IF NOT EXISTS progress_records (
			user_id TEXT NOT NULL,
			manga_id TEXT NOT NULL,
			current_chapter INTEGER DEFAULT 0,
			last_read_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (user_id, manga_id),
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
			FOREIGN KEY (manga_id) REFERENCES manga(id) ON DELETE CASCADE
		)`,

		// ===== Ratings (1-5 scale, derived aggregates on manga) =====
		`CREATE TABLE IF NOT EXISTS ratings (
			user_id TEXT NOT NULL,
			manga_id TEXT NOT NULL,
			value INTEGER NOT NULL CHECK (value BETWEEN 1 AND 5),
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (user_id, manga_id),
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
			FOREIGN KEY (manga_id) REFERENCES manga(id) ON DELETE CASCADE
		)`,

		`CREATE TRIGGER IF NOT EXISTS update_manga_rating_insert AFTER INSERT ON ratings BEGIN
			UPDATE manga
			SET average_rating = (SELECT AVG(value) FROM ratings WHERE manga_id = new.manga_id),
				rating_count = (SELECT COUNT(*) FROM ratings WHERE manga_id = new.manga_id)
			WHERE id = new.manga_id;
		END`,

		`CREATE TRIGGER IF NOT EXISTS update_manga_rating_update AFTER UPDATE ON ratings BEGIN
			UPDATE manga
			SET average_rating = (SELECT AVG(value) FROM ratings WHERE manga_id = new.manga_id)
			WHERE id = new.manga_id;
		END`,

		`CREATE TRIGGER IF NOT EXISTS update_manga_rating_delete AFTER DELETE ON ratings BEGIN
			UPDATE manga
			SET average_rating = (SELECT COALESCE(AVG(value), 0) FROM ratings WHERE manga_id = old.manga_id),
				rating_count = (SELECT COUNT(*) FROM ratings WHERE manga_id = old.manga_id)
			WHERE id = old.manga_id;
		END`,

		// ===== Indexes =====
		`CREATE INDEX IF NOT EXISTS idx_users_username ON users(username)`,
		`CREATE INDEX IF NOT EXISTS idx_users_email ON users(email)`,
		`CREATE INDEX IF NOT EXISTS idx_manga_title ON manga(title)`,
		`CREATE INDEX IF NOT EXISTS idx_manga_status ON manga(status)`,
		`CREATE INDEX IF NOT EXISTS idx_manga_type ON manga(type)`,
		`CREATE INDEX IF NOT EXISTS idx_manga_rating ON manga(average_rating DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_chapters_manga ON chapters(manga_id)`,
		`CREATE INDEX IF NOT EXISTS idx_library_user ON library_entries(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_library_manga ON library_entries(manga_id)`,
		`CREATE INDEX IF NOT EXISTS idx_library_status ON library_entries(status)`,
		`CREATE INDEX IF NOT EXISTS idx_progress_user ON progress_records(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_progress_manga ON progress_records(manga_id)`,
		`CREATE INDEX IF NOT EXISTS idx_progress_last_read ON progress_records(last_read_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_ratings_manga ON ratings(manga_id)`,
		`CREATE INDEX IF NOT EXISTS idx_ratings_user ON ratings(user_id)`,
	}

	for _, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	return nil
}

// BeginTx starts a new transaction
func (db *DB) BeginTx() (*sql.Tx, error) {
	return db.Begin()
}

// HealthCheck verifies database connectivity and returns status info
func (db *DB) HealthCheck() (map[string]interface{}, error) {
	result := make(map[string]interface{})

	start := time.Now()
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("database ping failed: %w", err)
	}
	result["ping_latency_ms"] = time.Since(start).Milliseconds()
	result["connected"] = true

	stats := db.Stats()
	result["open_connections"] = stats.OpenConnections
	result["in_use"] = stats.InUse
	result["idle"] = stats.Idle
	result["wait_count"] = stats.WaitCount
	result["max_open_connections"] = stats.MaxOpenConnections

	var tableCount int
	if err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table'").Scan(&tableCount); err != nil {
		return nil, fmt.Errorf("failed to query tables: %w", err)
	}
	result["table_count"] = tableCount

	var pageCount, pageSize int64
	if err := db.QueryRow("PRAGMA page_count").Scan(&pageCount); err == nil {
		if err := db.QueryRow("PRAGMA page_size").Scan(&pageSize); err == nil {
			result["database_size_bytes"] = pageCount * pageSize
		}
	}

	result["status"] = "healthy"
	return result, nil
}
