package snippet

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string      { return &s }
func tagsPtr(t ...string) *[]string { return &t }

func TestNew(t *testing.T) {
	s, err := New("Miranda v. Arizona, 384 U.S. 436 (1966)", "You have the right to remain silent.",
		[]string{"criminal", "fifth-amendment", "criminal"}, "Custodial interrogation", "")
	require.NoError(t, err)

	assert.Equal(t, "civil", s.CaseType, "case type should default")
	assert.Equal(t, []string{"criminal", "fifth-amendment"}, s.Tags, "tags should dedupe and sort")
	assert.Zero(t, s.ID)
	assert.True(t, s.CreatedAt.IsZero())
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name        string
		citation    string
		keyLanguage string
	}{
		{"empty citation", "", "some language"},
		{"whitespace citation", "   ", "some language"},
		{"empty key language", "Roe v. Wade", ""},
		{"whitespace key language", "Roe v. Wade", "\t\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.citation, tt.keyLanguage, nil, "", "")
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrValidation))
		})
	}
}

func TestUpdateApply(t *testing.T) {
	base := func() Snippet {
		s, err := New("Marbury v. Madison", "It is emphatically the province of the judicial department",
			[]string{"constitutional"}, "Judicial review", "civil")
		require.NoError(t, err)
		return s
	}

	t.Run("citation change recomputes citation and combined", func(t *testing.T) {
		s := base()
		c, k, comb := Update{Citation: strPtr("Marbury v. Madison, 5 U.S. 137")}.Apply(&s)
		assert.True(t, c)
		assert.False(t, k)
		assert.True(t, comb)
		assert.Equal(t, "Marbury v. Madison, 5 U.S. 137", s.Citation)
	})

	t.Run("tags change recomputes combined only", func(t *testing.T) {
		s := base()
		c, k, comb := Update{Tags: tagsPtr("constitutional", "landmark")}.Apply(&s)
		assert.False(t, c)
		assert.False(t, k)
		assert.True(t, comb)
		assert.Equal(t, []string{"constitutional", "landmark"}, s.Tags)
	})

	t.Run("case type change recomputes nothing", func(t *testing.T) {
		s := base()
		c, k, comb := Update{CaseType: strPtr("constitutional")}.Apply(&s)
		assert.False(t, c)
		assert.False(t, k)
		assert.False(t, comb)
		assert.Equal(t, "constitutional", s.CaseType)
	})

	t.Run("same value is a no-op", func(t *testing.T) {
		s := base()
		c, k, comb := Update{Citation: strPtr(s.Citation), Tags: tagsPtr("constitutional")}.Apply(&s)
		assert.False(t, c)
		assert.False(t, k)
		assert.False(t, comb)
	})

	t.Run("empty tags clears them", func(t *testing.T) {
		s := base()
		_, _, comb := Update{Tags: &[]string{}}.Apply(&s)
		assert.True(t, comb)
		assert.Empty(t, s.Tags)
	})
}

func TestUpdateValidate(t *testing.T) {
	assert.NoError(t, Update{}.Validate())
	assert.NoError(t, Update{Context: strPtr("")}.Validate(), "context may be blanked")

	err := Update{Citation: strPtr("  ")}.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))

	err = Update{KeyLanguage: strPtr("")}.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestCombinedText(t *testing.T) {
	s := Snippet{
		Citation:    "Gideon v. Wainwright",
		KeyLanguage: "The right of one charged with crime to counsel",
	}
	assert.Equal(t, "Citation: Gideon v. Wainwright. Key Language: The right of one charged with crime to counsel.",
		s.CombinedText())

	s.Tags = []string{"criminal", "sixth-amendment"}
	s.Context = "Indigent defendants"
	assert.Equal(t, "Citation: Gideon v. Wainwright. Key Language: The right of one charged with crime to counsel."+
		" Tags: criminal, sixth-amendment. Context: Indigent defendants",
		s.CombinedText())
}

func TestMatchesText(t *testing.T) {
	s := Snippet{Citation: "Brown v. Board of Education", KeyLanguage: "Separate but equal", Context: "School segregation"}

	assert.True(t, s.MatchesText(""))
	assert.True(t, s.MatchesText("BOARD"))
	assert.True(t, s.MatchesText("separate"))
	assert.True(t, s.MatchesText("segregation"))
	assert.False(t, s.MatchesText("admiralty"))
}

func TestHasAnyTag(t *testing.T) {
	s := Snippet{Tags: []string{"civil-rights", "education"}}

	assert.True(t, s.HasAnyTag(nil))
	assert.True(t, s.HasAnyTag([]string{"education", "torts"}))
	assert.False(t, s.HasAnyTag([]string{"torts"}))
}

func TestKind(t *testing.T) {
	tests := []struct {
		err  error
		kind string
	}{
		{ErrValidation, "validation_error"},
		{ErrNotFound, "not_found"},
		{ErrModelUnavailable, "model_unavailable"},
		{ErrUnsupported, "unsupported_operation"},
		{ErrStorage, "storage_error"},
		{errors.New("connection reset"), "storage_error"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.kind, Kind(tt.err))
	}
}
