package google

import (
	"context"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/gravitational/trace"
	"github.com/jonboulle/clockwork"

	"photos-picker-backend/config"
	"photos-picker-backend/models"
)

// photosScope grants read-only access to the user's photo library.
const photosScope = "https://www.googleapis.com/auth/photoslibrary.readonly"

// OAuth performs the authorization-code and refresh-token grants against
// Google's OAuth2 endpoints. CSRF state generation and validation belong to
// the caller.
type OAuth struct {
	client *resty.Client
	clock  clockwork.Clock
	cfg    config.Google
}

// NewOAuth creates an OAuth client from the Google endpoint configuration.
func NewOAuth(cfg config.Google, clock clockwork.Clock) *OAuth {
	return &OAuth{
		client: makeClient(""),
		clock:  clock,
		cfg:    cfg,
	}
}

// AuthCodeURL builds the authorization endpoint URL. access_type=offline and
// prompt=consent force Google to issue a refresh token on every consent.
func (o *OAuth) AuthCodeURL(state string) string {
	params := url.Values{}
	params.Set("client_id", o.cfg.ClientID)
	params.Set("redirect_uri", o.cfg.RedirectURI)
	params.Set("response_type", "code")
	params.Set("scope", photosScope)
	params.Set("access_type", "offline")
	params.Set("prompt", "consent")
	if state != "" {
		params.Set("state", state)
	}

	return o.cfg.AuthURL + "?" + params.Encode()
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Exchange trades an authorization code for a token record. ExpiresAt is
// derived here, at issuance time.
func (o *OAuth) Exchange(ctx context.Context, code string) (*models.TokenRecord, error) {
	var result tokenResponse

	resp, err := o.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"code":          code,
			"client_id":     o.cfg.ClientID,
			"client_secret": o.cfg.ClientSecret,
			"redirect_uri":  o.cfg.RedirectURI,
			"grant_type":    "authorization_code",
		}).
		SetResult(&result).
		Post(o.cfg.TokenURL)

	if err != nil {
		return nil, trace.Wrap(err)
	}
	if resp.IsError() {
		return nil, externalError("token exchange", resp)
	}

	return &models.TokenRecord{
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		ExpiresAt:    o.clock.Now().Add(time.Duration(result.ExpiresIn) * time.Second),
	}, nil
}

// Refresh mints a new access token from a refresh token. Google does not
// reissue a refresh token on this grant.
func (o *OAuth) Refresh(ctx context.Context, refreshToken string) (accessToken string, expiresAt time.Time, err error) {
	var result tokenResponse

	resp, err := o.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"refresh_token": refreshToken,
			"client_id":     o.cfg.ClientID,
			"client_secret": o.cfg.ClientSecret,
			"grant_type":    "refresh_token",
		}).
		SetResult(&result).
		Post(o.cfg.TokenURL)

	if err != nil {
		return "", time.Time{}, trace.Wrap(err)
	}
	if resp.IsError() {
		return "", time.Time{}, externalError("token refresh", resp)
	}

	return result.AccessToken, o.clock.Now().Add(time.Duration(result.ExpiresIn) * time.Second), nil
}

// Revoke invalidates an access token at the provider.
func (o *OAuth) Revoke(ctx context.Context, accessToken string) error {
	resp, err := o.client.R().
		SetContext(ctx).
		SetQueryParam("token", accessToken).
		Post(o.cfg.RevokeURL)

	if err != nil {
		return trace.Wrap(err)
	}
	if resp.IsError() {
		return externalError("token revoke", resp)
	}
	return nil
}
