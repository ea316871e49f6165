package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/Tiliavir/tutor-hub/internal/api"
	"github.com/Tiliavir/tutor-hub/internal/model"
)

func newClient(t *testing.T, srv *httptest.Server, tokens *api.TokenStore, oauth *oauth2.Config) *api.Client {
	t.Helper()
	c, err := api.NewClient(context.Background(), api.Options{
		BaseURL: srv.URL + "/api",
		Timeout: 5 * time.Second,
		Tokens:  tokens,
		OAuth:   oauth,
	})
	require.NoError(t, err)
	return c
}

func TestCallSendsJSONWithBearerToken(t *testing.T) {
	var gotAuth, gotType, gotPath string
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotType = r.Header.Get("Content-Type")
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"id": 12}`)
	}))
	defer srv.Close()

	tokens := api.NewTokenStore(t.TempDir())
	require.NoError(t, tokens.Save(&oauth2.Token{AccessToken: "abc", TokenType: "Bearer"}))

	c := newClient(t, srv, tokens, nil)
	raw, err := c.Call(context.Background(), api.Availability(model.OwnerTutor, "42"), http.MethodPost,
		map[string]string{"start_time": "16:00", "end_time": "18:00", "days_of_week": "mon"})
	require.NoError(t, err)

	assert.Equal(t, "Bearer abc", gotAuth)
	assert.Equal(t, "application/json", gotType)
	assert.Equal(t, "/api/tutors/42/availability/", gotPath)
	assert.Equal(t, "mon", gotBody["days_of_week"])
	assert.JSONEq(t, `{"id": 12}`, string(raw))
}

func TestCallEmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	raw, err := newClient(t, srv, nil, nil).Call(context.Background(), api.AvailabilityRecord("7"), http.MethodDelete, nil)
	require.NoError(t, err)
	assert.Nil(t, raw)
}

func TestCallDomainErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"field keyed", http.StatusBadRequest, `{"start_time": ["This field is required."]}`, "Start time: This field is required."},
		{"several fields sorted", http.StatusBadRequest, `{"end_year": ["Too early."], "degree": "Required."}`, "Degree: Required. End year: Too early."},
		{"detail", http.StatusForbidden, `{"detail": "Not your profile."}`, "Not your profile."},
		{"message", http.StatusConflict, `{"message": "Slot overlaps."}`, "Slot overlaps."},
		{"non field errors", http.StatusBadRequest, `{"non_field_errors": ["Duplicate slot."]}`, "Duplicate slot."},
		{"nested", http.StatusBadRequest, `{"profile": {"phone": ["Invalid."]}}`, "Profile: Invalid."},
		{"plain text", http.StatusBadGateway, `upstream down`, "upstream down"},
		{"html page", http.StatusInternalServerError, `<html>oops</html>`, "Request failed: Internal Server Error (500)."},
		{"empty unauthorized", http.StatusUnauthorized, ``, "Your session has expired. Please log in again."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			_, err := newClient(t, srv, nil, nil).Call(context.Background(), "education/1/", http.MethodPatch, map[string]string{})
			require.Error(t, err)

			var de *api.DomainError
			require.True(t, errors.As(err, &de))
			assert.Equal(t, tt.status, de.Status)
			assert.Equal(t, tt.want, de.Message)
		})
	}
}

func TestCallUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	_, err := newClient(t, srv, nil, nil).Call(context.Background(), "tutors/1/", http.MethodGet, nil)
	var de *api.DomainError
	require.True(t, errors.As(err, &de))
	assert.Zero(t, de.Status)
	assert.Contains(t, de.Message, "Could not reach the server")
}

func TestCallMultipart(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "diploma.pdf")
	require.NoError(t, os.WriteFile(file, []byte("%PDF-1.4"), 0o600))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "MIT", r.FormValue("institution"))
		f, hdr, err := r.FormFile("certificate")
		require.NoError(t, err)
		defer f.Close()
		data, _ := io.ReadAll(f)
		assert.Equal(t, "diploma.pdf", hdr.Filename)
		assert.Equal(t, "%PDF-1.4", string(data))
		_, _ = io.WriteString(w, `{"id": "e-1", "certificate": "https://files.example/diploma.pdf"}`)
	}))
	defer srv.Close()

	raw, err := newClient(t, srv, nil, nil).Call(context.Background(), api.Entries(model.EducationSchema, "42"), http.MethodPost, &api.Form{
		Fields: map[string]string{"institution": "MIT"},
		Files:  map[string]string{"certificate": file},
	})
	require.NoError(t, err)
	assert.Contains(t, string(raw), "e-1")
}

func TestCallMultipartMissingFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("request must not be sent")
	}))
	defer srv.Close()

	_, err := newClient(t, srv, nil, nil).Call(context.Background(), "qualifications/3/", http.MethodPatch, &api.Form{
		Files: map[string]string{"document": filepath.Join(t.TempDir(), "missing.pdf")},
	})
	var de *api.DomainError
	require.True(t, errors.As(err, &de))
	assert.Contains(t, de.Message, "Could not attach file")
}

func TestRefreshedTokenIsSaved(t *testing.T) {
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.FormValue("grant_type"))
		assert.Equal(t, "r1", r.FormValue("refresh_token"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"access_token":"fresh","token_type":"Bearer","refresh_token":"r2","expires_in":3600}`)
	}))
	defer tokenSrv.Close()

	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = io.WriteString(w, `{}`)
	}))
	defer srv.Close()

	tokens := api.NewTokenStore(t.TempDir())
	require.NoError(t, tokens.Save(&oauth2.Token{
		AccessToken:  "stale",
		TokenType:    "Bearer",
		RefreshToken: "r1",
		Expiry:       time.Now().Add(-time.Hour),
	}))

	c := newClient(t, srv, tokens, api.OAuthConfig("thub-cli", tokenSrv.URL, ""))
	_, err := c.Call(context.Background(), "tutors/1/", http.MethodGet, nil)
	require.NoError(t, err)

	assert.Equal(t, "Bearer fresh", gotAuth)
	saved, err := tokens.Load()
	require.NoError(t, err)
	assert.Equal(t, "fresh", saved.AccessToken)
	assert.Equal(t, "r2", saved.RefreshToken)
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	_, err := api.NewClient(context.Background(), api.Options{})
	assert.Error(t, err)
}
