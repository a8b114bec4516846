package tui

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/fitpulse/fitpulse/pkg/domain"
	"github.com/fitpulse/fitpulse/pkg/ports"
	"github.com/stretchr/testify/assert"
)

func TestMaskToken(t *testing.T) {
	assert.Equal(t, "", MaskToken(""))
	assert.Equal(t, "***", MaskToken("abc"))
	assert.Equal(t, "****efgh", MaskToken("abcdefgh"))
}

func TestWhoamiMarkdown(t *testing.T) {
	md := WhoamiMarkdown(nil, "http://127.0.0.1:3000")
	assert.Contains(t, md, "Not signed in")

	md = WhoamiMarkdown(&domain.User{Token: "supersecret", ID: 7}, "http://127.0.0.1:3000")
	assert.Contains(t, md, "| User ID | 7 |")
	assert.Contains(t, md, "*******cret")
	assert.NotContains(t, md, "supersecret")
}

func TestNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := NewNotifier(&buf, true)

	n.Notify(context.Background(), ports.Notification{Kind: ports.NotifySuccess, Message: "Registration successful!"})
	n.Notify(context.Background(), ports.Notification{Kind: ports.NotifyFailure, Message: "Sign in failed.", Err: errors.New("status 401")})

	out := buf.String()
	assert.Contains(t, out, "Registration successful!")
	assert.Contains(t, out, "Sign in failed.")
	assert.Contains(t, out, "status 401")
}

func TestRenderer(t *testing.T) {
	render := NewRenderer()
	out, err := render("# Session\n\nNot signed in.\n")
	assert.NoError(t, err)
	assert.Contains(t, out, "Not signed in.")
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf, "1.0.0")
	assert.Contains(t, buf.String(), "v1.0.0")
}
