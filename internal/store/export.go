package store

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/lexsnip/lexsnip-mcp/internal/snippet"
)

// renderExport serializes snippets in the requested format. Both backends
// share this so exports are byte-identical regardless of where the data
// lives.
func renderExport(snippets []snippet.Snippet, format string) (string, error) {
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(snippets, "", "  ")
		if err != nil {
			return "", fmt.Errorf("failed to marshal export: %w", err)
		}
		return string(data), nil
	case FormatText:
		return renderText(snippets), nil
	default:
		return "", fmt.Errorf("%w: unsupported export format %q (expected %q or %q)",
			snippet.ErrValidation, format, FormatJSON, FormatText)
	}
}

func renderText(snippets []snippet.Snippet) string {
	var b strings.Builder
	for _, s := range snippets {
		fmt.Fprintf(&b, "ID: %d\n", s.ID)
		fmt.Fprintf(&b, "Citation: %s\n", s.Citation)
		fmt.Fprintf(&b, "Key Language: %s\n", s.KeyLanguage)
		fmt.Fprintf(&b, "Tags: %s\n", strings.Join(s.Tags, ", "))
		if s.Context != "" {
			fmt.Fprintf(&b, "Context: %s\n", s.Context)
		}
		fmt.Fprintf(&b, "Case Type: %s\n", s.CaseType)
		fmt.Fprintf(&b, "Created: %s\n", s.CreatedAt.Format(time.RFC3339))
		b.WriteString(strings.Repeat("-", 50))
		b.WriteByte('\n')
	}
	return b.String()
}
