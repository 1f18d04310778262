package store

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexsnip/lexsnip-mcp/internal/snippet"
)

func newTestFileStore(t *testing.T) *FileStore {
	t.Helper()
	fs, err := NewFileStore(filepath.Join(t.TempDir(), "snippets.json"))
	require.NoError(t, err)
	return fs
}

func mustCreate(t *testing.T, fs *FileStore, citation, keyLanguage string, tags []string) *snippet.Snippet {
	t.Helper()
	s, err := snippet.New(citation, keyLanguage, tags, "", "")
	require.NoError(t, err)
	created, err := fs.Create(context.Background(), s)
	require.NoError(t, err)
	return created
}

func TestFileStoreCreateAndGet(t *testing.T) {
	fs := newTestFileStore(t)
	ctx := context.Background()

	created := mustCreate(t, fs, "Miranda v. Arizona", "You have the right to remain silent.", []string{"criminal"})
	assert.Equal(t, int64(1), created.ID)
	assert.Equal(t, "civil", created.CaseType)
	assert.False(t, created.CreatedAt.IsZero())
	assert.Equal(t, created.CreatedAt, created.UpdatedAt)

	got, err := fs.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	_, err = fs.Get(ctx, 999)
	assert.True(t, errors.Is(err, snippet.ErrNotFound))
}

func TestFileStorePersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snippets.json")
	ctx := context.Background()

	fs, err := NewFileStore(path)
	require.NoError(t, err)
	created := mustCreate(t, fs, "Marbury v. Madison", "Judicial review", []string{"constitutional"})
	require.NoError(t, fs.Close())

	reopened, err := NewFileStore(path)
	require.NoError(t, err)
	got, err := reopened.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Citation, got.Citation)
	assert.Equal(t, created.Tags, got.Tags)
}

func TestFileStoreIDsNeverReused(t *testing.T) {
	fs := newTestFileStore(t)
	ctx := context.Background()

	first := mustCreate(t, fs, "Case One", "language one", nil)
	second := mustCreate(t, fs, "Case Two", "language two", nil)
	require.NoError(t, fs.Delete(ctx, second.ID))

	third := mustCreate(t, fs, "Case Three", "language three", nil)
	assert.Greater(t, third.ID, second.ID, "deleted ids must not be reused")
	assert.Equal(t, first.ID+2, third.ID)
}

func TestFileStoreUpdate(t *testing.T) {
	fs := newTestFileStore(t)
	ctx := context.Background()

	created := mustCreate(t, fs, "Gideon v. Wainwright", "right to counsel", []string{"criminal"})

	newContext := "Indigent defendants"
	updated, err := fs.Update(ctx, created.ID, snippet.Update{Context: &newContext})
	require.NoError(t, err)
	assert.Equal(t, newContext, updated.Context)
	assert.Equal(t, created.Citation, updated.Citation, "absent fields stay untouched")
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt), "updated_at must advance")
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)

	empty := ""
	_, err = fs.Update(ctx, created.ID, snippet.Update{Citation: &empty})
	assert.True(t, errors.Is(err, snippet.ErrValidation))

	_, err = fs.Update(ctx, 999, snippet.Update{Context: &newContext})
	assert.True(t, errors.Is(err, snippet.ErrNotFound))

	_, err = fs.Update(ctx, 999, snippet.Update{Citation: &empty})
	assert.True(t, errors.Is(err, snippet.ErrValidation), "bad update reports validation before missing id")
}

func TestFileStoreFailedWriteLeavesNoTrace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snippets.json")
	ctx := context.Background()

	fs, err := NewFileStore(path)
	require.NoError(t, err)
	created := mustCreate(t, fs, "Miranda v. Arizona", "right to remain silent", []string{"criminal"})

	// Turn the data file into a directory so every write fails.
	require.NoError(t, os.Remove(path))
	require.NoError(t, os.Mkdir(path, 0o755))

	t.Run("create", func(t *testing.T) {
		s, err := snippet.New("Gideon v. Wainwright", "right to counsel", nil, "", "")
		require.NoError(t, err)
		_, err = fs.Create(ctx, s)
		require.Error(t, err)

		_, err = fs.Get(ctx, created.ID+1)
		assert.True(t, errors.Is(err, snippet.ErrNotFound), "no phantom record after failed create")

		all, err := fs.SearchText(ctx, "", nil)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("update", func(t *testing.T) {
		newContext := "never persisted"
		_, err := fs.Update(ctx, created.ID, snippet.Update{Context: &newContext})
		require.Error(t, err)

		got, err := fs.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.Empty(t, got.Context, "failed update leaves the record unchanged")
		assert.Equal(t, created.UpdatedAt, got.UpdatedAt)
	})

	t.Run("delete", func(t *testing.T) {
		require.Error(t, fs.Delete(ctx, created.ID))

		got, err := fs.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.Citation, got.Citation, "failed delete keeps the record")
	})

	t.Run("import", func(t *testing.T) {
		blob, err := json.Marshal([]snippet.Snippet{
			{ID: 7, Citation: "Brown v. Board", KeyLanguage: "separate but equal"},
		})
		require.NoError(t, err)
		require.Error(t, fs.ImportJSON(blob))

		got, err := fs.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.Citation, got.Citation, "failed import keeps the old collection")
	})

	// Once writes work again the id counter continues where it left off.
	require.NoError(t, os.Remove(path))
	next := mustCreate(t, fs, "Gideon v. Wainwright", "right to counsel", nil)
	assert.Equal(t, created.ID+1, next.ID)
}

func TestFileStoreDelete(t *testing.T) {
	fs := newTestFileStore(t)
	ctx := context.Background()

	created := mustCreate(t, fs, "Case", "language", nil)
	require.NoError(t, fs.Delete(ctx, created.ID))

	_, err := fs.Get(ctx, created.ID)
	assert.True(t, errors.Is(err, snippet.ErrNotFound))

	err = fs.Delete(ctx, created.ID)
	assert.True(t, errors.Is(err, snippet.ErrNotFound))
}

func TestFileStoreListTags(t *testing.T) {
	fs := newTestFileStore(t)
	ctx := context.Background()

	tags, err := fs.ListTags(ctx)
	require.NoError(t, err)
	assert.Empty(t, tags)

	mustCreate(t, fs, "A", "a", []string{"torts", "negligence"})
	mustCreate(t, fs, "B", "b", []string{"contracts", "torts"})

	tags, err = fs.ListTags(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"contracts", "negligence", "torts"}, tags)
}

func TestFileStoreSearchText(t *testing.T) {
	fs := newTestFileStore(t)
	ctx := context.Background()

	miranda := mustCreate(t, fs, "Miranda v. Arizona", "right to remain silent", []string{"criminal"})
	gideon := mustCreate(t, fs, "Gideon v. Wainwright", "right to counsel", []string{"criminal", "counsel"})
	brown := mustCreate(t, fs, "Brown v. Board", "separate but equal", []string{"civil-rights"})

	t.Run("query matches across fields", func(t *testing.T) {
		results, err := fs.SearchText(ctx, "RIGHT", nil)
		require.NoError(t, err)
		require.Len(t, results, 2)
	})

	t.Run("query and tags intersect", func(t *testing.T) {
		results, err := fs.SearchText(ctx, "right", []string{"counsel"})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, gideon.ID, results[0].ID)
	})

	t.Run("empty query with tags", func(t *testing.T) {
		results, err := fs.SearchText(ctx, "", []string{"civil-rights"})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, brown.ID, results[0].ID)
	})

	t.Run("no filters returns all, recency first", func(t *testing.T) {
		updatedCitation := "Miranda v. Arizona, 384 U.S. 436"
		_, err := fs.Update(ctx, miranda.ID, snippet.Update{Citation: &updatedCitation})
		require.NoError(t, err)

		results, err := fs.SearchText(ctx, "", nil)
		require.NoError(t, err)
		require.Len(t, results, 3)
		assert.Equal(t, miranda.ID, results[0].ID, "freshly updated snippet sorts first")
	})

	t.Run("no matches", func(t *testing.T) {
		results, err := fs.SearchText(ctx, "admiralty", nil)
		require.NoError(t, err)
		assert.Empty(t, results)
	})
}

func TestFileStoreExport(t *testing.T) {
	fs := newTestFileStore(t)
	ctx := context.Background()

	s, err := snippet.New("Roe v. Wade", "key language", []string{"privacy"}, "some context", "constitutional")
	require.NoError(t, err)
	created, err := fs.Create(ctx, s)
	require.NoError(t, err)

	t.Run("json round-trips", func(t *testing.T) {
		out, err := fs.Export(ctx, FormatJSON)
		require.NoError(t, err)

		var decoded []snippet.Snippet
		require.NoError(t, json.Unmarshal([]byte(out), &decoded))
		require.Len(t, decoded, 1)
		assert.Equal(t, *created, decoded[0])
	})

	t.Run("text format", func(t *testing.T) {
		out, err := fs.Export(ctx, FormatText)
		require.NoError(t, err)
		assert.Contains(t, out, "ID: 1\n")
		assert.Contains(t, out, "Citation: Roe v. Wade\n")
		assert.Contains(t, out, "Tags: privacy\n")
		assert.Contains(t, out, "Context: some context\n")
		assert.Contains(t, out, "Case Type: constitutional\n")
		assert.Contains(t, out, strings.Repeat("-", 50))
	})

	t.Run("unknown format", func(t *testing.T) {
		_, err := fs.Export(ctx, "yaml")
		assert.True(t, errors.Is(err, snippet.ErrValidation))
	})
}

func TestFileStoreImportJSON(t *testing.T) {
	fs := newTestFileStore(t)
	ctx := context.Background()

	mustCreate(t, fs, "Case A", "a", []string{"one"})
	mustCreate(t, fs, "Case B", "b", []string{"two"})
	exported, err := fs.Export(ctx, FormatJSON)
	require.NoError(t, err)

	dest := newTestFileStore(t)
	require.NoError(t, dest.ImportJSON([]byte(exported)))

	results, err := dest.SearchText(ctx, "", nil)
	require.NoError(t, err)
	assert.Len(t, results, 2)

	next := mustCreate(t, dest, "Case C", "c", nil)
	assert.Equal(t, int64(3), next.ID, "id counter continues past imported ids")

	err = dest.ImportJSON([]byte("{not json"))
	assert.True(t, errors.Is(err, snippet.ErrValidation))
}

func TestFileStoreImportJSONValidation(t *testing.T) {
	ctx := context.Background()

	valid := snippet.Snippet{ID: 1, Citation: "Miranda v. Arizona", KeyLanguage: "right to remain silent"}

	tests := []struct {
		name    string
		records []snippet.Snippet
	}{
		{"invalid id", []snippet.Snippet{{ID: 0, Citation: "Case", KeyLanguage: "language"}}},
		{"duplicate ids", []snippet.Snippet{valid, {ID: 1, Citation: "Other", KeyLanguage: "language"}}},
		{"missing citation", []snippet.Snippet{{ID: 2, KeyLanguage: "language"}}},
		{"missing key language", []snippet.Snippet{{ID: 2, Citation: "Case"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := newTestFileStore(t)
			existing := mustCreate(t, fs, "Existing", "existing language", nil)

			blob, err := json.Marshal(tt.records)
			require.NoError(t, err)

			err = fs.ImportJSON(blob)
			require.Error(t, err)
			assert.True(t, errors.Is(err, snippet.ErrValidation))

			got, err := fs.Get(ctx, existing.ID)
			require.NoError(t, err)
			assert.Equal(t, "Existing", got.Citation, "rejected import leaves the collection untouched")
		})
	}
}

func TestFileStoreImportJSONNormalizes(t *testing.T) {
	fs := newTestFileStore(t)
	ctx := context.Background()

	blob, err := json.Marshal([]snippet.Snippet{
		{ID: 3, Citation: "Case", KeyLanguage: "language", Tags: []string{"torts", "torts", ""}},
	})
	require.NoError(t, err)
	require.NoError(t, fs.ImportJSON(blob))

	got, err := fs.Get(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"torts"}, got.Tags)
	assert.Equal(t, "civil", got.CaseType, "case type defaults on import")
}

func TestFileStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snippets.json")
	require.NoError(t, os.WriteFile(path, []byte("{{{"), 0o644))

	_, err := NewFileStore(path)
	assert.Error(t, err)
}
