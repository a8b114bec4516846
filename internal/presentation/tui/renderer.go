package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/fitpulse/fitpulse/pkg/domain"
)

// NewRenderer returns a function that renders markdown using glamour.
func NewRenderer() func(string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return func(markdown string) (string, error) {
			return markdown, nil
		}
	}

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

// WhoamiMarkdown describes the session state. The token itself is masked.
func WhoamiMarkdown(user *domain.User, backend string) string {
	var b strings.Builder
	b.WriteString("# Session\n\n")
	if user == nil {
		b.WriteString("Not signed in.\n\n")
		fmt.Fprintf(&b, "Run `fitpulse login` to sign in to `%s`.\n", backend)
		return b.String()
	}

	b.WriteString("| Field | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Backend | `%s` |\n", backend)
	fmt.Fprintf(&b, "| User ID | %d |\n", user.ID)
	fmt.Fprintf(&b, "| Token | `%s` |\n", MaskToken(user.Token))
	return b.String()
}

// MaskToken keeps only the last four characters of a token.
func MaskToken(token string) string {
	if len(token) <= 4 {
		return strings.Repeat("*", len(token))
	}
	return strings.Repeat("*", len(token)-4) + token[len(token)-4:]
}
