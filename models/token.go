package models

import "time"

// TokenRecord holds the OAuth credentials for one logical user. ExpiresAt is
// always derived at issuance or refresh time from the provider's expires_in,
// never taken from any other clock.
type TokenRecord struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// FreshAt reports whether the access token is still usable at the given
// instant, with a 60 second safety margin before actual expiry.
func (t *TokenRecord) FreshAt(now time.Time) bool {
	return t.ExpiresAt.After(now.Add(60 * time.Second))
}
