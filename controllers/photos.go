package controllers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"photos-picker-backend/config"
	"photos-picker-backend/google"
	"photos-picker-backend/service"
)

// LibraryClient is the Photos Library surface used by the connectivity check.
// *google.Library implements it.
type LibraryClient interface {
	ListAlbums(ctx context.Context, accessToken, pageToken string, pageSize int) (*google.AlbumsPage, error)
}

// PhotosController serves the photos page and the API connectivity check.
type PhotosController struct {
	auth    *service.AuthService
	library LibraryClient
	cfg     *config.Config
}

// NewPhotosController creates and returns a new PhotosController instance
func NewPhotosController(auth *service.AuthService, library LibraryClient, cfg *config.Config) *PhotosController {
	return &PhotosController{auth: auth, library: library, cfg: cfg}
}

// TestPhotos verifies that the stored credentials still reach the Photos
// API by listing a handful of albums.
func (ctrl PhotosController) TestPhotos(c *gin.Context) {
	token, ok := requireAccessToken(c, ctrl.auth, ctrl.cfg.UserID)
	if !ok {
		return
	}

	page, err := ctrl.library.ListAlbums(c.Request.Context(), token, "", 5)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"albums":  page.Albums,
		"message": fmt.Sprintf("Successfully connected to Google Photos API. Found %d album(s).", len(page.Albums)),
	})
}

// Root redirects the bare origin to the photos page.
func (ctrl PhotosController) Root(c *gin.Context) {
	c.Redirect(http.StatusFound, "/photos")
}

// Page serves the single-page photos UI.
func (ctrl PhotosController) Page(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", photosPage)
}
