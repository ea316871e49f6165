package cmd

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/oauth2"

	"github.com/Tiliavir/tutor-hub/internal/api"
	"github.com/Tiliavir/tutor-hub/internal/model"
	"github.com/Tiliavir/tutor-hub/internal/notify"
	"github.com/Tiliavir/tutor-hub/internal/storage"
	"github.com/Tiliavir/tutor-hub/internal/syncer"
)

func tokenStore() *api.TokenStore {
	return api.NewTokenStore(cfg.DataDir)
}

func oauthConfig() *oauth2.Config {
	return api.OAuthConfig(cfg.API.ClientID, cfg.API.TokenURL, cfg.API.DeviceAuthURL)
}

// newExecutor wires the backend client, session and console notifications.
func newExecutor(ctx context.Context, out io.Writer) (*syncer.Executor, error) {
	tokens := tokenStore()
	client, err := api.NewClient(ctx, api.Options{
		BaseURL:           cfg.API.BaseURL,
		Timeout:           cfg.API.Timeout,
		RequestsPerSecond: cfg.API.RequestsPerSecond,
		Tokens:            tokens,
		OAuth:             oauthConfig(),
		Logger:            log,
	})
	if err != nil {
		return nil, err
	}
	n := notify.Multi{notify.Console{Out: out}, notify.Zap{Log: log}}
	limits := syncer.Limits{Education: cfg.Limits.Education, Qualification: cfg.Limits.Qualification}
	return syncer.NewExecutor(client, tokens, n, log, limits), nil
}

// editDraft loads a draft, refuses while a push is running, applies fn and
// saves the result.
func editDraft(ref string, fn func(d *storage.Draft) error) (*storage.Draft, error) {
	d, err := storage.ResolveDraft(cfg.DataDir, ref)
	if err != nil {
		return nil, err
	}
	if err := d.CheckEditable(); err != nil {
		return nil, err
	}
	if err := fn(d); err != nil {
		return nil, err
	}
	if err := storage.SaveDraft(cfg.DataDir, d); err != nil {
		return nil, err
	}
	return d, nil
}

// parseFields turns repeated "name=value" flags into a map, rejecting
// names the schema does not declare.
func parseFields(schema model.Schema, pairs []string) (map[string]string, error) {
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		name, value, ok := strings.Cut(p, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --field %q (want name=value)", p)
		}
		if !schema.Has(name) {
			return nil, fmt.Errorf("unknown %s field %q (known: %s)", strings.ToLower(schema.Label), name, strings.Join(schema.Fields, ", "))
		}
		out[name] = strings.TrimSpace(value)
	}
	return out, nil
}

// findByHandle locates an item by 1-based position or by a prefix of its
// local key.
func findByHandle(keys []string, handle string) (int, error) {
	if n, err := strconv.Atoi(handle); err == nil {
		if n < 1 || n > len(keys) {
			return -1, fmt.Errorf("no entry #%d (have %d)", n, len(keys))
		}
		return n - 1, nil
	}
	found := -1
	for i, k := range keys {
		if strings.HasPrefix(k, handle) {
			if found >= 0 {
				return -1, fmt.Errorf("handle %q is ambiguous", handle)
			}
			found = i
		}
	}
	if found < 0 {
		return -1, fmt.Errorf("no entry matches %q", handle)
	}
	return found, nil
}

func resourceKeys(items []model.Resource) []string {
	keys := make([]string, len(items))
	for i, it := range items {
		keys[i] = it.Key
	}
	return keys
}

func lowerLabel(schema model.Schema) string {
	return strings.ToLower(schema.Label)
}
