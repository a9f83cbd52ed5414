package gmail

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"github.com/bdrennan/mailkit/internal/fileset"
)

const testClientSecrets = `{
  "installed": {
    "client_id": "client-id-123.apps.googleusercontent.com",
    "client_secret": "shhh",
    "auth_uri": "https://accounts.google.com/o/oauth2/auth",
    "token_uri": "https://oauth2.googleapis.com/token",
    "redirect_uris": ["http://localhost"]
  }
}`

// newTestFlow writes a valid client-secrets file and builds a Flow around it.
func newTestFlow(t *testing.T) *Flow {
	t.Helper()

	dir := t.TempDir()
	credPath := filepath.Join(dir, "credentials.json")
	if err := os.WriteFile(credPath, []byte(testClientSecrets), 0o600); err != nil {
		t.Fatalf("failed to write credentials: %v", err)
	}

	flow, err := NewFlow(credPath, nil, filepath.Join(dir, "token.json"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return flow
}

func TestNewFlow_MissingCredentials(t *testing.T) {
	t.Parallel()

	_, err := NewFlow(filepath.Join(t.TempDir(), "absent.json"), nil, "token.json")
	if err == nil {
		t.Fatal("expected error for missing credentials file")
	}
	var notFound *fileset.NotFoundError
	if !errors.As(err, &notFound) {
		t.Errorf("error type: got %T, want *fileset.NotFoundError", err)
	}
}

func TestNewFlow_InvalidCredentials(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("not json"), 0o600); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	if _, err := NewFlow(path, nil, "token.json"); err == nil {
		t.Fatal("expected error for unparseable credentials file")
	}
}

func TestFlow_DefaultScope(t *testing.T) {
	t.Parallel()

	flow := newTestFlow(t)
	if len(flow.config.Scopes) != 1 || flow.config.Scopes[0] != "https://www.googleapis.com/auth/gmail.send" {
		t.Errorf("Scopes: got %v, want the gmail.send scope", flow.config.Scopes)
	}
}

func TestFlow_TokenRoundTrip(t *testing.T) {
	t.Parallel()

	flow := newTestFlow(t)

	tok := &oauth2.Token{
		AccessToken:  "access-abc",
		RefreshToken: "refresh-def",
		TokenType:    "Bearer",
		Expiry:       time.Now().Add(time.Hour).Round(time.Second),
	}
	if err := flow.SaveToken(tok); err != nil {
		t.Fatalf("SaveToken: unexpected error: %v", err)
	}

	loaded, err := flow.CachedToken()
	if err != nil {
		t.Fatalf("CachedToken: unexpected error: %v", err)
	}
	if loaded.AccessToken != tok.AccessToken {
		t.Errorf("AccessToken: got %q, want %q", loaded.AccessToken, tok.AccessToken)
	}
	if loaded.RefreshToken != tok.RefreshToken {
		t.Errorf("RefreshToken: got %q, want %q", loaded.RefreshToken, tok.RefreshToken)
	}
}

func TestFlow_CachedTokenMissing(t *testing.T) {
	t.Parallel()

	flow := newTestFlow(t)

	_, err := flow.CachedToken()
	if err == nil {
		t.Fatal("expected error when no token has been cached")
	}
	var notFound *fileset.NotFoundError
	if !errors.As(err, &notFound) {
		t.Errorf("error type: got %T, want *fileset.NotFoundError", err)
	}
}
