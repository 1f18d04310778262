package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lexsnip/lexsnip-mcp/internal/embedder"
	"github.com/lexsnip/lexsnip-mcp/internal/snippet"
)

const snippetColumns = "id, citation, key_language, tags, context, case_type, created_at, updated_at"

// PostgresStore persists snippets in PostgreSQL with pgvector embedding
// columns. Every vector is written at create time and kept current on
// update, so searches never embed stored rows on the fly.
type PostgresStore struct {
	pool *pgxpool.Pool
	emb  embedder.Embedder
}

// NewPostgresStore connects to databaseURL, applies pending migrations,
// and returns a store that embeds through emb.
func NewPostgresStore(ctx context.Context, databaseURL string, emb embedder.Embedder) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := ApplyMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}
	return &PostgresStore{pool: pool, emb: emb}, nil
}

func (ps *PostgresStore) Create(ctx context.Context, s snippet.Snippet) (*snippet.Snippet, error) {
	vectors, err := ps.embedAll(ctx, s)
	if err != nil {
		return nil, err
	}

	row := ps.pool.QueryRow(ctx, `
		INSERT INTO legal_snippets
			(citation, key_language, tags, context, case_type,
			 citation_embedding, key_language_embedding, combined_embedding)
		VALUES ($1, $2, $3, $4, $5, $6::vector, $7::vector, $8::vector)
		RETURNING `+snippetColumns,
		s.Citation, s.KeyLanguage, s.Tags, s.Context, s.CaseType,
		vectors[0], vectors[1], vectors[2])

	out, err := scanSnippet(row)
	if err != nil {
		return nil, fmt.Errorf("failed to insert snippet: %w", err)
	}
	return out, nil
}

func (ps *PostgresStore) Get(ctx context.Context, id int64) (*snippet.Snippet, error) {
	row := ps.pool.QueryRow(ctx,
		"SELECT "+snippetColumns+" FROM legal_snippets WHERE id = $1", id)
	out, err := scanSnippet(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: id %d", snippet.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch snippet %d: %w", id, err)
	}
	return out, nil
}

func (ps *PostgresStore) Update(ctx context.Context, id int64, upd snippet.Update) (*snippet.Snippet, error) {
	if err := upd.Validate(); err != nil {
		return nil, err
	}

	tx, err := ps.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx,
		"SELECT "+snippetColumns+" FROM legal_snippets WHERE id = $1 FOR UPDATE", id)
	current, err := scanSnippet(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: id %d", snippet.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch snippet %d: %w", id, err)
	}

	citationChanged, keyLanguageChanged, combinedChanged := upd.Apply(current)

	sets := []string{"citation = $1", "key_language = $2", "tags = $3", "context = $4", "case_type = $5",
		"updated_at = clock_timestamp()"}
	args := []any{current.Citation, current.KeyLanguage, current.Tags, current.Context, current.CaseType}

	if citationChanged {
		vec, err := ps.embedText(ctx, current.Citation)
		if err != nil {
			return nil, err
		}
		args = append(args, vec)
		sets = append(sets, fmt.Sprintf("citation_embedding = $%d::vector", len(args)))
	}
	if keyLanguageChanged {
		vec, err := ps.embedText(ctx, current.KeyLanguage)
		if err != nil {
			return nil, err
		}
		args = append(args, vec)
		sets = append(sets, fmt.Sprintf("key_language_embedding = $%d::vector", len(args)))
	}
	if combinedChanged {
		vec, err := ps.embedText(ctx, current.CombinedText())
		if err != nil {
			return nil, err
		}
		args = append(args, vec)
		sets = append(sets, fmt.Sprintf("combined_embedding = $%d::vector", len(args)))
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE legal_snippets SET %s WHERE id = $%d RETURNING %s",
		strings.Join(sets, ", "), len(args), snippetColumns)

	out, err := scanSnippet(tx.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, fmt.Errorf("failed to update snippet %d: %w", id, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit update: %w", err)
	}
	return out, nil
}

func (ps *PostgresStore) Delete(ctx context.Context, id int64) error {
	tag, err := ps.pool.Exec(ctx, "DELETE FROM legal_snippets WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete snippet %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: id %d", snippet.ErrNotFound, id)
	}
	return nil
}

func (ps *PostgresStore) ListTags(ctx context.Context) ([]string, error) {
	rows, err := ps.pool.Query(ctx,
		"SELECT DISTINCT unnest(tags) AS tag FROM legal_snippets ORDER BY tag")
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	defer rows.Close()

	tags := []string{}
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read tags: %w", err)
	}
	return tags, nil
}

func (ps *PostgresStore) SearchText(ctx context.Context, query string, tags []string) ([]snippet.Snippet, error) {
	conds := []string{}
	args := []any{}
	if query != "" {
		args = append(args, "%"+query+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf("(citation ILIKE $%d OR key_language ILIKE $%d OR context ILIKE $%d)", n, n, n))
	}
	if len(tags) > 0 {
		args = append(args, tags)
		conds = append(conds, fmt.Sprintf("tags && $%d", len(args)))
	}

	sql := "SELECT " + snippetColumns + " FROM legal_snippets"
	if len(conds) > 0 {
		sql += " WHERE " + strings.Join(conds, " AND ")
	}
	sql += " ORDER BY updated_at DESC, id DESC"

	rows, err := ps.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search snippets: %w", err)
	}
	defer rows.Close()
	return collectSnippets(rows)
}

func (ps *PostgresStore) Export(ctx context.Context, format string) (string, error) {
	rows, err := ps.pool.Query(ctx,
		"SELECT "+snippetColumns+" FROM legal_snippets ORDER BY created_at, id")
	if err != nil {
		return "", fmt.Errorf("failed to read snippets for export: %w", err)
	}
	defer rows.Close()

	snippets, err := collectSnippets(rows)
	if err != nil {
		return "", err
	}
	return renderExport(snippets, format)
}

func (ps *PostgresStore) SearchVector(ctx context.Context, vector []float32, limit int, threshold float64, tags []string) ([]ScoredSnippet, error) {
	vec := formatVector(vector)
	args := []any{vec, threshold}
	cond := "1 - (combined_embedding <=> $1::vector) >= $2"
	if len(tags) > 0 {
		args = append(args, tags)
		cond += fmt.Sprintf(" AND tags && $%d", len(args))
	}
	args = append(args, limit)

	sql := fmt.Sprintf(`
		SELECT %s, 1 - (combined_embedding <=> $1::vector) AS similarity_score
		FROM legal_snippets
		WHERE combined_embedding IS NOT NULL AND %s
		ORDER BY combined_embedding <=> $1::vector, updated_at DESC, id
		LIMIT $%d`, snippetColumns, cond, len(args))

	rows, err := ps.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to run vector search: %w", err)
	}
	defer rows.Close()
	return collectScored(rows)
}

func (ps *PostgresStore) SimilarTo(ctx context.Context, id int64, limit int) ([]ScoredSnippet, error) {
	var vec string
	err := ps.pool.QueryRow(ctx,
		"SELECT combined_embedding::text FROM legal_snippets WHERE id = $1", id).Scan(&vec)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: id %d", snippet.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch embedding for snippet %d: %w", id, err)
	}

	sql := fmt.Sprintf(`
		SELECT %s, 1 - (combined_embedding <=> $1::vector) AS similarity_score
		FROM legal_snippets
		WHERE combined_embedding IS NOT NULL AND id != $2
		ORDER BY combined_embedding <=> $1::vector, updated_at DESC, id
		LIMIT $3`, snippetColumns)

	rows, err := ps.pool.Query(ctx, sql, vec, id, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to run similarity search: %w", err)
	}
	defer rows.Close()
	return collectScored(rows)
}

func (ps *PostgresStore) Close() error {
	ps.pool.Close()
	return nil
}

// embedAll generates the three per-snippet vectors in one batch request.
func (ps *PostgresStore) embedAll(ctx context.Context, s snippet.Snippet) ([3]string, error) {
	var out [3]string
	resp, err := ps.emb.GenerateBatch(ctx, embedder.BatchEmbeddingRequest{
		Texts: []string{s.Citation, s.KeyLanguage, s.CombinedText()},
	})
	if err != nil {
		return out, fmt.Errorf("%w: %v", snippet.ErrModelUnavailable, err)
	}
	if len(resp.Embeddings) != 3 {
		return out, fmt.Errorf("%w: expected 3 embeddings, got %d", snippet.ErrModelUnavailable, len(resp.Embeddings))
	}
	for i, e := range resp.Embeddings {
		out[i] = formatVector(e.Vector)
	}
	return out, nil
}

func (ps *PostgresStore) embedText(ctx context.Context, text string) (string, error) {
	emb, err := ps.emb.GenerateEmbedding(ctx, embedder.EmbeddingRequest{Text: text})
	if err != nil {
		return "", fmt.Errorf("%w: %v", snippet.ErrModelUnavailable, err)
	}
	return formatVector(emb.Vector), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSnippet(row rowScanner) (*snippet.Snippet, error) {
	var s snippet.Snippet
	err := row.Scan(&s.ID, &s.Citation, &s.KeyLanguage, &s.Tags, &s.Context,
		&s.CaseType, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if s.Tags == nil {
		s.Tags = []string{}
	}
	return &s, nil
}

func collectSnippets(rows pgx.Rows) ([]snippet.Snippet, error) {
	var out []snippet.Snippet
	for rows.Next() {
		s, err := scanSnippet(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan snippet: %w", err)
		}
		out = append(out, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read snippets: %w", err)
	}
	return out, nil
}

func collectScored(rows pgx.Rows) ([]ScoredSnippet, error) {
	var out []ScoredSnippet
	for rows.Next() {
		var sc ScoredSnippet
		err := rows.Scan(&sc.ID, &sc.Citation, &sc.KeyLanguage, &sc.Tags, &sc.Context,
			&sc.CaseType, &sc.CreatedAt, &sc.UpdatedAt, &sc.Score)
		if err != nil {
			return nil, fmt.Errorf("failed to scan search result: %w", err)
		}
		if sc.Tags == nil {
			sc.Tags = []string{}
		}
		sc.Score = clampScore(sc.Score)
		out = append(out, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read search results: %w", err)
	}
	return out, nil
}

