package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"photos-picker-backend/config"
	"photos-picker-backend/service"
)

const (
	stateCookie    = "oauth_state"
	stateCookieTTL = 600 // seconds

	notAuthenticatedMsg = "Not authenticated. Please visit /auth/google first."
)

// AuthController handles the Google OAuth flow: authorization start, the
// provider callback with CSRF state verification, and token clearing.
type AuthController struct {
	auth  *service.AuthService
	oauth service.Authorizer
	cfg   *config.Config
}

// NewAuthController creates and returns a new AuthController instance
func NewAuthController(auth *service.AuthService, oauth service.Authorizer, cfg *config.Config) *AuthController {
	return &AuthController{auth: auth, oauth: oauth, cfg: cfg}
}

// requireAccessToken resolves a valid access token for the configured user,
// refreshing it when needed, and writes the uniform 401 body when the user
// is not authenticated. Every protected endpoint goes through here.
func requireAccessToken(c *gin.Context, auth *service.AuthService, userID string) (string, bool) {
	token, err := auth.ValidAccessToken(c.Request.Context(), userID)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return "", false
	}
	if token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": notAuthenticatedMsg})
		return "", false
	}
	return token, true
}

// Start begins the authorization flow: an unguessable state token goes into
// a short-lived cookie and rides along to the provider as CSRF protection.
func (ctrl AuthController) Start(c *gin.Context) {
	state := uuid.New().String()

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(stateCookie, state, stateCookieTTL, "/", "", true, true)
	c.Redirect(http.StatusFound, ctrl.oauth.AuthCodeURL(state))
}

// Callback is the provider's redirect target. The exchange only happens when
// no error came back, a code is present and the state matches the cookie.
func (ctrl AuthController) Callback(c *gin.Context) {
	if oauthErr := c.Query("error"); oauthErr != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "OAuth error: " + oauthErr})
		return
	}

	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing authorization code"})
		return
	}

	state := c.Query("state")
	storedState, err := c.Cookie(stateCookie)
	if err != nil || state == "" || state != storedState {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid state parameter"})
		return
	}

	record, err := ctrl.oauth.Exchange(c.Request.Context(), code)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if err := ctrl.auth.StoreTokens(ctrl.cfg.UserID, record); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(stateCookie, "", -1, "/", "", true, true)
	c.Redirect(http.StatusFound, "/photos")
}

// Clear deletes the local token record without touching the provider.
func (ctrl AuthController) Clear(c *gin.Context) {
	if err := ctrl.auth.DeleteTokens(ctrl.cfg.UserID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Redirect(http.StatusFound, "/photos")
}

// Revoke invalidates the token at the provider best-effort and deletes the
// local record.
func (ctrl AuthController) Revoke(c *gin.Context) {
	if err := ctrl.auth.Revoke(c.Request.Context(), ctrl.cfg.UserID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Redirect(http.StatusFound, "/photos")
}
