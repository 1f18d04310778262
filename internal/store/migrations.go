package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/semver/v3"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	// CurrentSchemaVersion tracks the database schema version
	CurrentSchemaVersion = "1.0.0"
)

// Migration represents a database schema migration
type Migration struct {
	Version string
	Up      string
	Down    string
}

// AllMigrations contains all database migrations in order
var AllMigrations = []Migration{
	{
		Version: "1.0.0",
		Up:      migrationV1Up,
		Down:    migrationV1Down,
	},
}

const migrationV1Up = `
-- Schema version tracking
CREATE TABLE IF NOT EXISTS schema_version (
    version TEXT PRIMARY KEY,
    applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

-- Vector similarity support
CREATE EXTENSION IF NOT EXISTS vector;

-- Snippets table
CREATE TABLE IF NOT EXISTS legal_snippets (
    id SERIAL PRIMARY KEY,
    citation TEXT NOT NULL,
    key_language TEXT NOT NULL,
    tags TEXT[] DEFAULT '{}',
    context TEXT,
    case_type TEXT DEFAULT 'civil',
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    citation_embedding vector(384),
    key_language_embedding vector(384),
    combined_embedding vector(384)
);

CREATE INDEX IF NOT EXISTS idx_legal_snippets_tags ON legal_snippets USING GIN(tags);
CREATE INDEX IF NOT EXISTS idx_legal_snippets_case_type ON legal_snippets(case_type);
CREATE INDEX IF NOT EXISTS idx_legal_snippets_updated_at ON legal_snippets(updated_at);

-- Approximate nearest neighbor indexes for cosine distance
CREATE INDEX IF NOT EXISTS idx_legal_snippets_citation_embedding
    ON legal_snippets USING ivfflat (citation_embedding vector_cosine_ops) WITH (lists = 100);
CREATE INDEX IF NOT EXISTS idx_legal_snippets_key_language_embedding
    ON legal_snippets USING ivfflat (key_language_embedding vector_cosine_ops) WITH (lists = 100);
CREATE INDEX IF NOT EXISTS idx_legal_snippets_combined_embedding
    ON legal_snippets USING ivfflat (combined_embedding vector_cosine_ops) WITH (lists = 100);
`

const migrationV1Down = `
DROP INDEX IF EXISTS idx_legal_snippets_combined_embedding;
DROP INDEX IF EXISTS idx_legal_snippets_key_language_embedding;
DROP INDEX IF EXISTS idx_legal_snippets_citation_embedding;
DROP INDEX IF EXISTS idx_legal_snippets_updated_at;
DROP INDEX IF EXISTS idx_legal_snippets_case_type;
DROP INDEX IF EXISTS idx_legal_snippets_tags;

DROP TABLE IF EXISTS legal_snippets;
DROP TABLE IF EXISTS schema_version;
`

// ApplyMigrations runs all pending migrations
func ApplyMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	// Check if schema_version table exists
	var tableName string
	err := pool.QueryRow(ctx,
		"SELECT tablename FROM pg_tables WHERE schemaname = current_schema() AND tablename = 'schema_version'").Scan(&tableName)

	// Parse current version (default to 0.0.0 if no migrations applied or table doesn't exist)
	var currentVersion *semver.Version
	if errors.Is(err, pgx.ErrNoRows) {
		currentVersion = semver.MustParse("0.0.0")
	} else if err != nil {
		return fmt.Errorf("failed to check schema_version table: %w", err)
	} else {
		var currentVersionStr string
		err = pool.QueryRow(ctx, "SELECT version FROM schema_version ORDER BY applied_at DESC LIMIT 1").Scan(&currentVersionStr)
		if errors.Is(err, pgx.ErrNoRows) || currentVersionStr == "" {
			currentVersion = semver.MustParse("0.0.0")
		} else if err != nil {
			return fmt.Errorf("failed to read schema_version: %w", err)
		} else {
			currentVersion, err = semver.NewVersion(currentVersionStr)
			if err != nil {
				return fmt.Errorf("invalid current schema version %s: %w", currentVersionStr, err)
			}
		}
	}

	// Run migrations in order
	for _, migration := range AllMigrations {
		migrationVersion, err := semver.NewVersion(migration.Version)
		if err != nil {
			return fmt.Errorf("invalid migration version %s: %w", migration.Version, err)
		}

		if !currentVersion.LessThan(migrationVersion) {
			continue // Already applied
		}

		if _, err := pool.Exec(ctx, migration.Up); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", migration.Version, err)
		}

		if _, err := pool.Exec(ctx, "INSERT INTO schema_version (version) VALUES ($1)", migration.Version); err != nil {
			return fmt.Errorf("failed to record migration %s: %w", migration.Version, err)
		}

		currentVersion = migrationVersion
	}

	return nil
}

// RollbackMigration rolls back the most recent migration
func RollbackMigration(ctx context.Context, pool *pgxpool.Pool) error {
	var currentVersion string
	err := pool.QueryRow(ctx, "SELECT version FROM schema_version ORDER BY applied_at DESC LIMIT 1").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("no migrations to rollback: %w", err)
	}

	var migration *Migration
	for i := range AllMigrations {
		if AllMigrations[i].Version == currentVersion {
			migration = &AllMigrations[i]
			break
		}
	}

	if migration == nil {
		return fmt.Errorf("migration %s not found", currentVersion)
	}

	if _, err := pool.Exec(ctx, migration.Down); err != nil {
		return fmt.Errorf("failed to rollback migration %s: %w", currentVersion, err)
	}

	if _, err := pool.Exec(ctx, "DELETE FROM schema_version WHERE version = $1", currentVersion); err != nil {
		return fmt.Errorf("failed to remove migration record %s: %w", currentVersion, err)
	}

	return nil
}
