package gmail

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmailapi "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/bdrennan/mailkit/internal/fileset"
)

// authorizeTimeout bounds how long the loopback flow waits for the user to
// grant consent in the browser.
const authorizeTimeout = 5 * time.Minute

// callbackPath is the redirect path served by the loopback listener.
const callbackPath = "/oauth/callback"

// Flow holds the OAuth2 configuration for the installed-app authorization
// flow and the location of the cached token.
type Flow struct {
	config    *oauth2.Config
	tokenPath string
}

// NewFlow reads the client-secrets JSON file and prepares an authorization
// flow for the given scopes. Tokens are cached at tokenPath. A missing
// secrets file yields a *fileset.NotFoundError.
func NewFlow(credentialsPath string, scopes []string, tokenPath string) (*Flow, error) {
	b, err := os.ReadFile(credentialsPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &fileset.NotFoundError{Path: credentialsPath}
		}
		return nil, fmt.Errorf("unable to read client secret file: %w", err)
	}

	if len(scopes) == 0 {
		scopes = []string{gmailapi.GmailSendScope}
	}

	config, err := google.ConfigFromJSON(b, scopes...)
	if err != nil {
		return nil, fmt.Errorf("unable to parse client secret file: %w", err)
	}

	return &Flow{config: config, tokenPath: tokenPath}, nil
}

// Authorize runs the loopback consent flow: start a listener on an
// ephemeral localhost port, print the consent URL, capture the
// authorization code on the redirect, exchange it, and cache the token.
func (f *Flow) Authorize(ctx context.Context) (*oauth2.Token, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("failed to start loopback listener: %w", err)
	}
	defer ln.Close()

	f.config.RedirectURL = fmt.Sprintf("http://%s%s", ln.Addr().String(), callbackPath)

	state, err := randomState()
	if err != nil {
		return nil, err
	}

	authURL := f.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
	fmt.Printf("Open this URL in your browser to authorize:\n%s\n", authURL)

	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc(callbackPath, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("state") != state {
			http.Error(w, "state mismatch", http.StatusBadRequest)
			errCh <- fmt.Errorf("oauth state mismatch")
			return
		}
		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "code missing", http.StatusBadRequest)
			errCh <- fmt.Errorf("authorization code missing from redirect")
			return
		}
		fmt.Fprint(w, "Authorization received. You can close this tab.")
		codeCh <- code
	})

	srv := &http.Server{Handler: mux}
	go func() {
		_ = srv.Serve(ln)
	}()
	defer srv.Close()

	var code string
	select {
	case code = <-codeCh:
	case err := <-errCh:
		return nil, err
	case <-time.After(authorizeTimeout):
		return nil, fmt.Errorf("authorization timed out after %s", authorizeTimeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	tok, err := f.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("unable to exchange authorization code: %w", err)
	}
	if err := f.SaveToken(tok); err != nil {
		return nil, err
	}
	return tok, nil
}

// CachedToken loads the previously saved token. A missing token file yields
// a *fileset.NotFoundError, signalling that the login flow must be run.
func (f *Flow) CachedToken() (*oauth2.Token, error) {
	file, err := os.Open(f.tokenPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &fileset.NotFoundError{Path: f.tokenPath}
		}
		return nil, fmt.Errorf("unable to open cached token: %w", err)
	}
	defer file.Close()

	var tok oauth2.Token
	if err := json.NewDecoder(file).Decode(&tok); err != nil {
		return nil, fmt.Errorf("unable to decode cached token: %w", err)
	}
	return &tok, nil
}

// SaveToken writes the token to the configured token path.
func (f *Flow) SaveToken(token *oauth2.Token) error {
	file, err := os.Create(f.tokenPath)
	if err != nil {
		return fmt.Errorf("unable to cache oauth token: %w", err)
	}
	defer file.Close()

	if err := json.NewEncoder(file).Encode(token); err != nil {
		return fmt.Errorf("unable to encode oauth token: %w", err)
	}
	return nil
}

// Service builds an authorized Gmail service from the cached token. The
// oauth2 client refreshes the token transparently when it has expired.
func (f *Flow) Service(ctx context.Context) (*gmailapi.Service, error) {
	tok, err := f.CachedToken()
	if err != nil {
		return nil, err
	}
	client := f.config.Client(ctx, tok)
	return NewService(ctx, option.WithHTTPClient(client))
}

// randomState produces an unguessable state nonce for the consent URL.
func randomState() (string, error) {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}
	return hex.EncodeToString(b[:]), nil
}
