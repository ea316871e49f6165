package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"
)

// TokenStore persists the session token of the CLI user.
type TokenStore struct {
	path string
}

// NewTokenStore stores the token as <dataDir>/auth/token.json.
func NewTokenStore(dataDir string) *TokenStore {
	return &TokenStore{path: filepath.Join(dataDir, "auth", "token.json")}
}

// Path returns the token file location.
func (s *TokenStore) Path() string { return s.path }

// Load returns the saved token, or nil when nobody is logged in.
func (s *TokenStore) Load() (*oauth2.Token, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading token file: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("corrupt token file (run 'thub login' again or delete %s): %w", s.path, err)
	}
	return &tok, nil
}

// Save writes tok atomically with owner-only permissions.
func (s *TokenStore) Save(tok *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("creating auth directory: %w", err)
	}
	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling token: %w", err)
	}
	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("writing token file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("saving token file: %w", err)
	}
	return nil
}

// Clear removes the saved token. Clearing an absent token is not an error.
func (s *TokenStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing token file: %w", err)
	}
	return nil
}

// CurrentToken returns the stored access token, or "" when there is none.
// An expired token that can still be refreshed counts as present.
func (s *TokenStore) CurrentToken() string {
	tok, err := s.Load()
	if err != nil || tok == nil {
		return ""
	}
	if !tok.Valid() && tok.RefreshToken == "" {
		return ""
	}
	return tok.AccessToken
}

// OAuthConfig describes the identity provider used to refresh tokens and,
// when DeviceAuthURL is set, to log in with the device code flow.
func OAuthConfig(clientID, tokenURL, deviceAuthURL string) *oauth2.Config {
	if tokenURL == "" {
		return nil
	}
	return &oauth2.Config{
		ClientID: clientID,
		Endpoint: oauth2.Endpoint{
			TokenURL:      tokenURL,
			DeviceAuthURL: deviceAuthURL,
			AuthStyle:     oauth2.AuthStyleInParams,
		},
	}
}

// DeviceLogin runs the device code flow, printing the verification
// instructions to out, and saves the granted token.
func (s *TokenStore) DeviceLogin(ctx context.Context, cfg *oauth2.Config, out io.Writer) (*oauth2.Token, error) {
	if cfg == nil || cfg.Endpoint.DeviceAuthURL == "" {
		return nil, fmt.Errorf("device login is not configured (set api.token_url and api.device_auth_url)")
	}
	resp, err := cfg.DeviceAuth(ctx)
	if err != nil {
		return nil, fmt.Errorf("device auth request failed: %w", err)
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "To sign in, use a web browser to open the page:")
	fmt.Fprintf(out, "  %s\n", resp.VerificationURI)
	fmt.Fprintf(out, "Enter the code: %s\n", resp.UserCode)
	fmt.Fprintln(out)

	tok, err := cfg.DeviceAccessToken(ctx, resp)
	if err != nil {
		return nil, fmt.Errorf("device authentication failed: %w", err)
	}
	if err := s.Save(tok); err != nil {
		return nil, err
	}
	return tok, nil
}
