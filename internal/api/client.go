// Package api is the HTTP client of the marketplace backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

// Options configures a Client.
type Options struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
	Tokens            *TokenStore
	// OAuth enables refreshing an expired token. Nil uses the stored
	// token as is.
	OAuth  *oauth2.Config
	Logger *zap.Logger
}

// Client is an authenticated, throttled backend client.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	log        *zap.Logger
}

// NewClient builds a client from the token saved in opts.Tokens. Without a
// saved token the client sends unauthenticated requests.
func NewClient(ctx context.Context, opts Options) (*Client, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if opts.BaseURL == "" {
		return nil, fmt.Errorf("api base URL is not configured")
	}

	httpClient := &http.Client{}
	if opts.Tokens != nil {
		tok, err := opts.Tokens.Load()
		if err != nil {
			return nil, err
		}
		if tok != nil {
			var ts oauth2.TokenSource = oauth2.StaticTokenSource(tok)
			if opts.OAuth != nil && tok.RefreshToken != "" {
				ts = &savingTokenSource{ts: opts.OAuth.TokenSource(ctx, tok), store: opts.Tokens, last: tok.AccessToken, log: log}
			}
			httpClient = oauth2.NewClient(ctx, ts)
		}
	}
	if opts.Timeout > 0 {
		httpClient.Timeout = opts.Timeout
	}

	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}

	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/") + "/",
		httpClient: httpClient,
		limiter:    rate.NewLimiter(limit, 1),
		log:        log,
	}, nil
}

// savingTokenSource wraps a TokenSource and persists refreshed tokens.
type savingTokenSource struct {
	ts    oauth2.TokenSource
	store *TokenStore
	last  string
	log   *zap.Logger
}

func (s *savingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.ts.Token()
	if err != nil {
		return nil, err
	}
	if tok.AccessToken != s.last {
		s.last = tok.AccessToken
		if err := s.store.Save(tok); err != nil {
			s.log.Warn("could not save refreshed token", zap.Error(err))
		}
	}
	return tok, nil
}

// Call sends body to endpoint and returns the raw JSON response. body may
// be nil, a *Form for multipart uploads, or any JSON-marshallable value.
// Endpoints are relative to the base URL, e.g. "tutors/42/availability/".
// Any non-2xx status or transport failure is returned as a *DomainError.
func (c *Client) Call(ctx context.Context, endpoint, method string, body any) (json.RawMessage, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &DomainError{Message: "Request cancelled.", Err: err}
	}

	var (
		reader      io.Reader
		contentType string
	)
	switch b := body.(type) {
	case nil:
	case *Form:
		buf, ct, err := b.encode()
		if err != nil {
			return nil, &DomainError{Message: fmt.Sprintf("Could not attach file: %v", err), Err: err}
		}
		reader, contentType = buf, ct
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, fmt.Errorf("marshalling request body: %w", err)
		}
		reader, contentType = bytes.NewReader(data), "application/json"
	}

	url := c.baseURL + strings.TrimLeft(endpoint, "/")
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Debug("request failed", zap.String("method", method), zap.String("url", url), zap.Error(err))
		return nil, &DomainError{Message: "Could not reach the server. Check your connection and try again.", Err: err}
	}
	data, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, &DomainError{Status: resp.StatusCode, Message: "Could not read the server response.", Err: err}
	}
	c.log.Debug("request",
		zap.String("method", method),
		zap.String("url", url),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, parseError(resp.StatusCode, data)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	return json.RawMessage(data), nil
}
