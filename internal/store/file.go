package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/lexsnip/lexsnip-mcp/internal/snippet"
)

// collection is the on-disk shape of the file backend: every snippet plus a
// monotonic id counter that survives deletes.
type collection struct {
	Snippets []snippet.Snippet `json:"snippets"`
	NextID   int64             `json:"next_id"`
}

// FileStore keeps the full collection in memory and rewrites the JSON file
// after every mutation. Suited to personal collections of a few thousand
// snippets; concurrent processes on the same file are last-writer-wins.
type FileStore struct {
	path string

	mu   sync.Mutex
	data collection
}

// NewFileStore loads the collection at path, creating parent directories as
// needed. A missing file is an empty collection, not an error.
func NewFileStore(path string) (*FileStore, error) {
	fs := &FileStore{
		path: path,
		data: collection{NextID: 1},
	}

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create data directory: %w", err)
			}
		}
		return fs, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if err := json.Unmarshal(raw, &fs.data); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if fs.data.NextID < 1 {
		fs.data.NextID = 1
	}
	for _, s := range fs.data.Snippets {
		if s.ID >= fs.data.NextID {
			fs.data.NextID = s.ID + 1
		}
	}
	return fs, nil
}

// save must be called with fs.mu held.
func (fs *FileStore) save() error {
	data, err := json.MarshalIndent(fs.data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal collection: %w", err)
	}
	if err := os.WriteFile(fs.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", fs.path, err)
	}
	return nil
}

func (fs *FileStore) Create(_ context.Context, s snippet.Snippet) (*snippet.Snippet, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	now := time.Now().UTC()
	s.ID = fs.data.NextID
	s.CreatedAt = now
	s.UpdatedAt = now
	prevID := fs.data.NextID
	prevLen := len(fs.data.Snippets)
	fs.data.NextID++
	fs.data.Snippets = append(fs.data.Snippets, s)

	// A failed write must leave no phantom record behind.
	if err := fs.save(); err != nil {
		fs.data.NextID = prevID
		fs.data.Snippets = fs.data.Snippets[:prevLen]
		return nil, err
	}
	out := cloneSnippet(s)
	return &out, nil
}

func (fs *FileStore) Get(_ context.Context, id int64) (*snippet.Snippet, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	idx := fs.indexOf(id)
	if idx < 0 {
		return nil, fmt.Errorf("%w: id %d", snippet.ErrNotFound, id)
	}
	out := cloneSnippet(fs.data.Snippets[idx])
	return &out, nil
}

func (fs *FileStore) Update(_ context.Context, id int64, upd snippet.Update) (*snippet.Snippet, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if err := upd.Validate(); err != nil {
		return nil, err
	}
	idx := fs.indexOf(id)
	if idx < 0 {
		return nil, fmt.Errorf("%w: id %d", snippet.ErrNotFound, id)
	}

	prev := fs.data.Snippets[idx]
	s := cloneSnippet(prev)
	upd.Apply(&s)

	now := time.Now().UTC()
	if !now.After(s.UpdatedAt) {
		now = s.UpdatedAt.Add(time.Microsecond)
	}
	s.UpdatedAt = now
	fs.data.Snippets[idx] = s

	if err := fs.save(); err != nil {
		fs.data.Snippets[idx] = prev
		return nil, err
	}
	out := cloneSnippet(s)
	return &out, nil
}

func (fs *FileStore) Delete(_ context.Context, id int64) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	idx := fs.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("%w: id %d", snippet.ErrNotFound, id)
	}

	prev := fs.data.Snippets
	remaining := make([]snippet.Snippet, 0, len(prev)-1)
	remaining = append(remaining, prev[:idx]...)
	remaining = append(remaining, prev[idx+1:]...)
	fs.data.Snippets = remaining

	if err := fs.save(); err != nil {
		fs.data.Snippets = prev
		return err
	}
	return nil
}

func (fs *FileStore) ListTags(_ context.Context) ([]string, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	seen := make(map[string]struct{})
	for _, s := range fs.data.Snippets {
		for _, t := range s.Tags {
			seen[t] = struct{}{}
		}
	}
	tags := make([]string, 0, len(seen))
	for t := range seen {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags, nil
}

func (fs *FileStore) SearchText(_ context.Context, query string, tags []string) ([]snippet.Snippet, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	var results []snippet.Snippet
	for _, s := range fs.data.Snippets {
		if s.MatchesText(query) && s.HasAnyTag(tags) {
			results = append(results, cloneSnippet(s))
		}
	}
	sort.SliceStable(results, func(i, j int) bool {
		if !results[i].UpdatedAt.Equal(results[j].UpdatedAt) {
			return results[i].UpdatedAt.After(results[j].UpdatedAt)
		}
		return results[i].ID > results[j].ID
	})
	return results, nil
}

func (fs *FileStore) Export(_ context.Context, format string) (string, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	snippets := make([]snippet.Snippet, 0, len(fs.data.Snippets))
	for _, s := range fs.data.Snippets {
		snippets = append(snippets, cloneSnippet(s))
	}
	sort.Slice(snippets, func(i, j int) bool {
		if !snippets[i].CreatedAt.Equal(snippets[j].CreatedAt) {
			return snippets[i].CreatedAt.Before(snippets[j].CreatedAt)
		}
		return snippets[i].ID < snippets[j].ID
	})
	return renderExport(snippets, format)
}

// ImportJSON replaces the collection with the contents of a JSON export.
// Every record is validated and ids must be unique; the id counter is
// reset past the highest imported id. A rejected import leaves the
// existing collection untouched.
func (fs *FileStore) ImportJSON(data []byte) error {
	var snippets []snippet.Snippet
	if err := json.Unmarshal(data, &snippets); err != nil {
		return fmt.Errorf("%w: failed to parse import: %v", snippet.ErrValidation, err)
	}

	seen := make(map[int64]struct{}, len(snippets))
	for i := range snippets {
		s := &snippets[i]
		if s.ID < 1 {
			return fmt.Errorf("%w: record %d has invalid id %d", snippet.ErrValidation, i, s.ID)
		}
		if _, dup := seen[s.ID]; dup {
			return fmt.Errorf("%w: duplicate id %d in import", snippet.ErrValidation, s.ID)
		}
		seen[s.ID] = struct{}{}
		if strings.TrimSpace(s.Citation) == "" {
			return fmt.Errorf("%w: record %d (id %d) is missing a citation", snippet.ErrValidation, i, s.ID)
		}
		if strings.TrimSpace(s.KeyLanguage) == "" {
			return fmt.Errorf("%w: record %d (id %d) is missing key language", snippet.ErrValidation, i, s.ID)
		}
		if s.CaseType == "" {
			s.CaseType = snippet.DefaultCaseType
		}
		s.Tags = snippet.NormalizeTags(s.Tags)
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	prev := fs.data
	fs.data = collection{Snippets: snippets, NextID: 1}
	for _, s := range snippets {
		if s.ID >= fs.data.NextID {
			fs.data.NextID = s.ID + 1
		}
	}
	if err := fs.save(); err != nil {
		fs.data = prev
		return err
	}
	return nil
}

func (fs *FileStore) Close() error {
	return nil
}

// indexOf must be called with fs.mu held.
func (fs *FileStore) indexOf(id int64) int {
	for i, s := range fs.data.Snippets {
		if s.ID == id {
			return i
		}
	}
	return -1
}

func cloneSnippet(s snippet.Snippet) snippet.Snippet {
	out := s
	out.Tags = append([]string(nil), s.Tags...)
	return out
}
