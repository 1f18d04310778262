package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/lexsnip/lexsnip-mcp/internal/embedder"
	"github.com/lexsnip/lexsnip-mcp/internal/mcp"
	"github.com/lexsnip/lexsnip-mcp/internal/snippet"
	"github.com/lexsnip/lexsnip-mcp/internal/store"
)

const envTemplate = `# LexSnip configuration
# Storage backend: "postgres" or "file"
LEXSNIP_BACKEND=postgres

# PostgreSQL connection (requires the pgvector extension)
DATABASE_URL=postgres://localhost:5432/lexsnip

# File backend location (used when LEXSNIP_BACKEND=file)
# LEXSNIP_DATA_PATH=~/.lexsnip/legal_snippets.json

# Embedding provider: openai, jina, or local (offline, deterministic)
LEXSNIP_EMBEDDING_PROVIDER=local
# OPENAI_API_KEY=sk-...
# JINA_API_KEY=jina_...
`

func main() {
	log.SetOutput(os.Stderr)

	var (
		databaseURL = flag.String("database-url", "", "PostgreSQL connection string (defaults to DATABASE_URL)")
		writeEnv    = flag.String("write-env", "", "write a .env template to this path and exit")
		seedPath    = flag.String("seed", "", "seed the database from a JSON export file")
		seedWorkers = flag.Int("seed-workers", 4, "concurrent embedding workers while seeding")
	)
	flag.Parse()

	if *writeEnv != "" {
		if err := writeEnvTemplate(*writeEnv); err != nil {
			log.Fatalf("Failed to write env template: %v", err)
		}
		log.Printf("Wrote %s", *writeEnv)
		return
	}

	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found, using environment variables")
	}

	url := *databaseURL
	if url == "" {
		url = os.Getenv(mcp.EnvDatabaseURL)
	}
	if url == "" {
		log.Fatalf("%s is required (flag -database-url or environment)", mcp.EnvDatabaseURL)
	}

	ctx := context.Background()
	if err := setup(ctx, url); err != nil {
		log.Fatalf("Setup failed: %v", err)
	}
	log.Printf("Schema is at version %s", store.CurrentSchemaVersion)

	if *seedPath != "" {
		count, err := seed(ctx, url, *seedPath, *seedWorkers)
		if err != nil {
			log.Fatalf("Seeding failed: %v", err)
		}
		log.Printf("Seeded %d snippets from %s", count, *seedPath)
	}
}

// setup verifies pgvector is installable on the server, then applies
// pending migrations.
func setup(ctx context.Context, databaseURL string) error {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}
	defer pool.Close()

	var available bool
	err = pool.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM pg_available_extensions WHERE name = 'vector')").Scan(&available)
	if err != nil {
		return fmt.Errorf("failed to query available extensions: %w", err)
	}
	if !available {
		return fmt.Errorf("pgvector extension is not installed on this server; install it first (https://github.com/pgvector/pgvector)")
	}

	return store.ApplyMigrations(ctx, pool)
}

// seed loads a JSON export (the output of the export_snippets tool in json
// format) and inserts every snippet, embedding them with a bounded worker
// pool. Seeded snippets get fresh ids.
func seed(ctx context.Context, databaseURL, path string, workers int) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read seed file: %w", err)
	}
	var snippets []snippet.Snippet
	if err := json.Unmarshal(data, &snippets); err != nil {
		return 0, fmt.Errorf("failed to parse seed file: %w", err)
	}

	emb, err := embedder.NewFromEnv()
	if err != nil {
		return 0, fmt.Errorf("failed to initialize embedder: %w", err)
	}
	defer func() { _ = emb.Close() }()

	ps, err := store.NewPostgresStore(ctx, databaseURL, emb)
	if err != nil {
		return 0, err
	}
	defer func() { _ = ps.Close() }()

	if workers < 1 {
		workers = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, s := range snippets {
		g.Go(func() error {
			ns, err := snippet.New(s.Citation, s.KeyLanguage, s.Tags, s.Context, s.CaseType)
			if err != nil {
				return fmt.Errorf("invalid seed snippet %q: %w", s.Citation, err)
			}
			if _, err := ps.Create(gctx, ns); err != nil {
				return fmt.Errorf("failed to seed snippet %q: %w", s.Citation, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	return len(snippets), nil
}

func writeEnvTemplate(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists, refusing to overwrite", path)
	}
	return os.WriteFile(path, []byte(envTemplate), 0o644)
}
