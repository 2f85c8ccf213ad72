package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/gravitational/trace"
	"github.com/jonboulle/clockwork"

	"photos-picker-backend/kv"
	"photos-picker-backend/models"
)

// Authorizer is the OAuth provider surface the auth service depends on.
// *google.OAuth implements it; tests substitute fakes.
type Authorizer interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*models.TokenRecord, error)
	Refresh(ctx context.Context, refreshToken string) (accessToken string, expiresAt time.Time, err error)
	Revoke(ctx context.Context, accessToken string) error
}

// AuthService owns the OAuth token lifecycle for the key-value store:
// persist on exchange, refresh on demand, delete on logout.
type AuthService struct {
	kv    kv.KeyValueStore
	oauth Authorizer
	clock clockwork.Clock
}

// NewAuthService creates a new AuthService instance with the provided
// key-value store and OAuth client.
func NewAuthService(kv kv.KeyValueStore, oauth Authorizer, clock clockwork.Clock) *AuthService {
	return &AuthService{
		kv:    kv,
		oauth: oauth,
		clock: clock,
	}
}

func tokenKey(userID string) string {
	return "tokens:" + userID
}

// StoreTokens persists the token record for a user. Token records do not
// expire on their own; they are replaced on refresh and removed on logout.
func (s *AuthService) StoreTokens(userID string, record *models.TokenRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return trace.Wrap(err)
	}

	if err := s.kv.Set(tokenKey(userID), string(data), 0); err != nil {
		slog.Error("failed to store token record", "error", err, "user_id", userID)
		return trace.Wrap(err)
	}
	return nil
}

// Tokens loads the stored token record, returning (nil, nil) when the user
// has none.
func (s *AuthService) Tokens(userID string) (*models.TokenRecord, error) {
	data, err := s.kv.Get(tokenKey(userID))
	if errors.Is(err, kv.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, trace.Wrap(err)
	}

	var record models.TokenRecord
	if err := json.Unmarshal([]byte(data), &record); err != nil {
		return nil, trace.Wrap(err)
	}
	return &record, nil
}

// DeleteTokens removes the stored token record. Deleting an absent record is
// not an error.
func (s *AuthService) DeleteTokens(userID string) error {
	_, err := s.kv.Del(tokenKey(userID))
	if err != nil && !errors.Is(err, kv.ErrNotFound) {
		return trace.Wrap(err)
	}
	return nil
}

// ValidAccessToken returns a usable access token for the user, refreshing it
// when it is within 60 seconds of expiry. An empty token with a nil error
// means the user is not authenticated; a failed refresh is deliberately
// reported the same way, never as a distinct error.
//
// No lock is held around the refresh: two concurrent requests racing past an
// expired token may both refresh, and the last write to the store wins.
func (s *AuthService) ValidAccessToken(ctx context.Context, userID string) (string, error) {
	record, err := s.Tokens(userID)
	if err != nil {
		return "", trace.Wrap(err)
	}
	if record == nil {
		return "", nil
	}

	if record.FreshAt(s.clock.Now()) {
		return record.AccessToken, nil
	}

	if record.RefreshToken == "" {
		return "", nil
	}

	accessToken, expiresAt, err := s.oauth.Refresh(ctx, record.RefreshToken)
	if err != nil {
		slog.Error("token refresh failed, treating user as unauthenticated", "error", err, "user_id", userID)
		return "", nil
	}

	// keep the original refresh token, Google does not reissue one
	record.AccessToken = accessToken
	record.ExpiresAt = expiresAt
	if err := s.StoreTokens(userID, record); err != nil {
		return "", trace.Wrap(err)
	}

	return accessToken, nil
}

// Revoke invalidates the token at the provider best-effort and then deletes
// the local record. A failed remote revoke is logged and never blocks the
// local deletion.
func (s *AuthService) Revoke(ctx context.Context, userID string) error {
	record, err := s.Tokens(userID)
	if err != nil {
		return trace.Wrap(err)
	}

	if record != nil && record.AccessToken != "" {
		if err := s.oauth.Revoke(ctx, record.AccessToken); err != nil {
			slog.Warn("remote token revoke failed", "error", err, "user_id", userID)
		}
	}

	return s.DeleteTokens(userID)
}
