package google

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"photos-picker-backend/config"
)

func oauthConfig(tokenURL, revokeURL string) config.Google {
	return config.Google{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURI:  "https://example.com/auth/callback",
		AuthURL:      "https://accounts.google.com/o/oauth2/v2/auth",
		TokenURL:     tokenURL,
		RevokeURL:    revokeURL,
	}
}

func TestAuthCodeURL(t *testing.T) {
	oauth := NewOAuth(oauthConfig("", ""), clockwork.NewRealClock())

	raw := oauth.AuthCodeURL("some-state")
	parsed, err := url.Parse(raw)
	require.NoError(t, err)

	query := parsed.Query()
	assert.Equal(t, "client-id", query.Get("client_id"))
	assert.Equal(t, "https://example.com/auth/callback", query.Get("redirect_uri"))
	assert.Equal(t, "code", query.Get("response_type"))
	assert.Equal(t, "https://www.googleapis.com/auth/photoslibrary.readonly", query.Get("scope"))
	assert.Equal(t, "offline", query.Get("access_type"))
	assert.Equal(t, "consent", query.Get("prompt"))
	assert.Equal(t, "some-state", query.Get("state"))
}

func TestExchange(t *testing.T) {
	clock := clockwork.NewFakeClock()

	var gotForm url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotForm = r.PostForm
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"new-access","refresh_token":"new-refresh","expires_in":3600}`))
	}))
	defer server.Close()

	oauth := NewOAuth(oauthConfig(server.URL, ""), clock)

	record, err := oauth.Exchange(context.Background(), "auth-code")
	require.NoError(t, err)

	assert.Equal(t, "authorization_code", gotForm.Get("grant_type"))
	assert.Equal(t, "auth-code", gotForm.Get("code"))
	assert.Equal(t, "client-id", gotForm.Get("client_id"))
	assert.Equal(t, "client-secret", gotForm.Get("client_secret"))

	assert.Equal(t, "new-access", record.AccessToken)
	assert.Equal(t, "new-refresh", record.RefreshToken)
	assert.Equal(t, clock.Now().Add(time.Hour), record.ExpiresAt)
}

func TestExchangeUpstreamFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"invalid_grant"}`))
	}))
	defer server.Close()

	oauth := NewOAuth(oauthConfig(server.URL, ""), clockwork.NewRealClock())

	_, err := oauth.Exchange(context.Background(), "bad-code")
	require.Error(t, err)
	assert.True(t, IsExternalError(err))
	assert.Contains(t, err.Error(), "invalid_grant")
	assert.Contains(t, err.Error(), "400")
}

func TestRefresh(t *testing.T) {
	clock := clockwork.NewFakeClock()

	var gotForm url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotForm = r.PostForm
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"refreshed-access","expires_in":1800}`))
	}))
	defer server.Close()

	oauth := NewOAuth(oauthConfig(server.URL, ""), clock)

	accessToken, expiresAt, err := oauth.Refresh(context.Background(), "stored-refresh")
	require.NoError(t, err)

	assert.Equal(t, "refresh_token", gotForm.Get("grant_type"))
	assert.Equal(t, "stored-refresh", gotForm.Get("refresh_token"))
	assert.Equal(t, "refreshed-access", accessToken)
	assert.Equal(t, clock.Now().Add(30*time.Minute), expiresAt)
}

func TestRevoke(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "the-token", r.URL.Query().Get("token"))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	oauth := NewOAuth(oauthConfig("", server.URL), clockwork.NewRealClock())

	require.NoError(t, oauth.Revoke(context.Background(), "the-token"))
	assert.Equal(t, int32(1), calls.Load())
}
