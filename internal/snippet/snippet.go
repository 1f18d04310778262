package snippet

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// DefaultCaseType is applied when a snippet is created without one.
const DefaultCaseType = "civil"

// Snippet is a stored legal-research note: a case citation, the key quoted
// language, categorization tags, free-form context, and a case type.
type Snippet struct {
	ID          int64     `json:"id"`
	Citation    string    `json:"citation"`
	KeyLanguage string    `json:"key_language"`
	Tags        []string  `json:"tags"`
	Context     string    `json:"context"`
	CaseType    string    `json:"case_type"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// New builds a validated snippet from caller-supplied fields, applying the
// documented defaults (tags=[], context="", case_type="civil"). The id and
// timestamps are assigned by the store.
func New(citation, keyLanguage string, tags []string, context, caseType string) (Snippet, error) {
	if strings.TrimSpace(citation) == "" {
		return Snippet{}, fmt.Errorf("%w: citation is required", ErrValidation)
	}
	if strings.TrimSpace(keyLanguage) == "" {
		return Snippet{}, fmt.Errorf("%w: key_language is required", ErrValidation)
	}
	if caseType == "" {
		caseType = DefaultCaseType
	}
	return Snippet{
		Citation:    citation,
		KeyLanguage: keyLanguage,
		Tags:        NormalizeTags(tags),
		Context:     context,
		CaseType:    caseType,
	}, nil
}

// Update carries a partial update. Each pointer field is either
// present-with-value or absent; absent fields leave the stored value
// untouched. An explicit empty slice for Tags clears them.
type Update struct {
	Citation    *string
	KeyLanguage *string
	Tags        *[]string
	Context     *string
	CaseType    *string
}

// IsZero reports whether the update carries no fields at all.
func (u Update) IsZero() bool {
	return u.Citation == nil && u.KeyLanguage == nil && u.Tags == nil &&
		u.Context == nil && u.CaseType == nil
}

// Validate rejects updates that would blank a required field.
func (u Update) Validate() error {
	if u.Citation != nil && strings.TrimSpace(*u.Citation) == "" {
		return fmt.Errorf("%w: citation cannot be empty", ErrValidation)
	}
	if u.KeyLanguage != nil && strings.TrimSpace(*u.KeyLanguage) == "" {
		return fmt.Errorf("%w: key_language cannot be empty", ErrValidation)
	}
	return nil
}

// Apply merges the update into s and reports which embedding source texts
// changed. Tags and context feed only the combined embedding; citation and
// key_language each feed their own embedding plus the combined one.
func (u Update) Apply(s *Snippet) (citationChanged, keyLanguageChanged, combinedChanged bool) {
	if u.Citation != nil && *u.Citation != s.Citation {
		s.Citation = *u.Citation
		citationChanged = true
		combinedChanged = true
	}
	if u.KeyLanguage != nil && *u.KeyLanguage != s.KeyLanguage {
		s.KeyLanguage = *u.KeyLanguage
		keyLanguageChanged = true
		combinedChanged = true
	}
	if u.Tags != nil {
		tags := NormalizeTags(*u.Tags)
		if !equalTags(tags, s.Tags) {
			s.Tags = tags
			combinedChanged = true
		}
	}
	if u.Context != nil && *u.Context != s.Context {
		s.Context = *u.Context
		combinedChanged = true
	}
	if u.CaseType != nil && *u.CaseType != s.CaseType {
		s.CaseType = *u.CaseType
	}
	return citationChanged, keyLanguageChanged, combinedChanged
}

// CombinedText is the source text for the combined embedding: citation, key
// language, tags, and context flattened into one string.
func (s Snippet) CombinedText() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Citation: %s. Key Language: %s.", s.Citation, s.KeyLanguage)
	if len(s.Tags) > 0 {
		fmt.Fprintf(&b, " Tags: %s.", strings.Join(s.Tags, ", "))
	}
	if s.Context != "" {
		fmt.Fprintf(&b, " Context: %s", s.Context)
	}
	return b.String()
}

// NormalizeTags collapses duplicates and sorts, so tags behave as a set
// regardless of how callers ordered them. Empty strings are dropped.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}

// HasAnyTag reports whether the snippet carries at least one of the given
// tags. An empty filter matches everything.
func (s Snippet) HasAnyTag(tags []string) bool {
	if len(tags) == 0 {
		return true
	}
	for _, want := range tags {
		for _, have := range s.Tags {
			if want == have {
				return true
			}
		}
	}
	return false
}

// MatchesText reports whether the query appears, case-insensitively, in the
// citation, key language, or context. An empty query matches everything.
func (s Snippet) MatchesText(query string) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(s.Citation), q) ||
		strings.Contains(strings.ToLower(s.KeyLanguage), q) ||
		strings.Contains(strings.ToLower(s.Context), q)
}

func equalTags(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
