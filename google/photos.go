package google

import (
	"context"
	"strconv"

	"github.com/go-resty/resty/v2"
	"github.com/gravitational/trace"

	"photos-picker-backend/config"
	"photos-picker-backend/models"
)

// Library talks to the Google Photos Library API. Only the albums listing is
// needed, as a cheap connectivity probe for an authenticated user.
type Library struct {
	client *resty.Client
}

func NewLibrary(cfg config.Google) *Library {
	return &Library{client: makeClient(cfg.LibraryURL)}
}

// AlbumsPage is one page of library albums.
type AlbumsPage struct {
	Albums        []models.Album `json:"albums"`
	NextPageToken string         `json:"nextPageToken,omitempty"`
}

// ListAlbums fetches one page of the user's albums.
func (l *Library) ListAlbums(ctx context.Context, accessToken, pageToken string, pageSize int) (*AlbumsPage, error) {
	var page AlbumsPage

	req := l.client.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		SetQueryParam("pageSize", strconv.Itoa(pageSize)).
		SetResult(&page)
	if pageToken != "" {
		req.SetQueryParam("pageToken", pageToken)
	}

	resp, err := req.Get("/albums")
	if err != nil {
		return nil, trace.Wrap(err)
	}
	if resp.IsError() {
		return nil, externalError("list albums", resp)
	}

	return &page, nil
}
