package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gravitational/trace"

	"photos-picker-backend/config"
	"photos-picker-backend/forms"
	"photos-picker-backend/service"
)

// PickerController exposes the picker session lifecycle over HTTP.
type PickerController struct {
	auth   *service.AuthService
	picker *service.PickerService
	cfg    *config.Config
}

var pickerForm = new(forms.PickerForm)

// NewPickerController creates and returns a new PickerController instance
func NewPickerController(auth *service.AuthService, picker *service.PickerService, cfg *config.Config) *PickerController {
	return &PickerController{auth: auth, picker: picker, cfg: cfg}
}

// CreateSession opens a remote picker session for the authenticated user.
func (ctrl PickerController) CreateSession(c *gin.Context) {
	token, ok := requireAccessToken(c, ctrl.auth, ctrl.cfg.UserID)
	if !ok {
		return
	}

	session, err := ctrl.picker.CreateSession(c.Request.Context(), token)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"sessionId": session.ID, "pickerUri": session.PickerURI})
}

// SessionStatus reports whether the user has confirmed a selection. The
// answer comes from the remote service, not the local shadow record.
func (ctrl PickerController) SessionStatus(c *gin.Context) {
	token, ok := requireAccessToken(c, ctrl.auth, ctrl.cfg.UserID)
	if !ok {
		return
	}

	sessionID := c.Param("id")
	session, err := ctrl.picker.SessionStatus(c.Request.Context(), token, sessionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"sessionId": session.ID, "mediaItemsSet": session.MediaItemsSet})
}

// SessionMedia returns one page of the selected items and caches it.
func (ctrl PickerController) SessionMedia(c *gin.Context) {
	token, ok := requireAccessToken(c, ctrl.auth, ctrl.cfg.UserID)
	if !ok {
		return
	}

	var query forms.MediaQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": pickerForm.Media(err)})
		return
	}

	sessionID := c.Param("id")
	page, err := ctrl.picker.SessionMedia(c.Request.Context(), token, sessionID, query.PageToken, query.PageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, page)
}

// SessionWait long-polls the remote session until the selection is confirmed
// or the polling budget runs out; a navigated-away client cancels the loop
// through the request context.
func (ctrl PickerController) SessionWait(c *gin.Context) {
	token, ok := requireAccessToken(c, ctrl.auth, ctrl.cfg.UserID)
	if !ok {
		return
	}

	sessionID := c.Param("id")
	session, err := ctrl.picker.WaitForSelection(c.Request.Context(), token, sessionID)
	if err != nil {
		switch {
		case errors.Is(err, context.Canceled):
			c.Abort()
		case trace.IsLimitExceeded(err):
			c.JSON(http.StatusGatewayTimeout, gin.H{"error": "Selection not completed in time, please try again"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"sessionId": session.ID, "mediaItemsSet": session.MediaItemsSet})
}

// DeleteSession removes the remote session and the local bookkeeping.
func (ctrl PickerController) DeleteSession(c *gin.Context) {
	token, ok := requireAccessToken(c, ctrl.auth, ctrl.cfg.UserID)
	if !ok {
		return
	}

	if err := ctrl.picker.DeleteSession(c.Request.Context(), token, c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Session deleted"})
}

// Callback handles the provider-side completion ping and sends the user back
// to the photos page.
func (ctrl PickerController) Callback(c *gin.Context) {
	var callback forms.SessionCallback
	if err := c.ShouldBindQuery(&callback); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": pickerForm.Callback(err)})
		return
	}

	if err := ctrl.picker.ConfirmCallback(callback.SessionID); err != nil {
		if trace.IsNotFound(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown picker session"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Redirect(http.StatusFound, "/photos?session_id="+callback.SessionID)
}
