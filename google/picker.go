package google

import (
	"context"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/gravitational/trace"
	"github.com/jonboulle/clockwork"

	"photos-picker-backend/config"
	"photos-picker-backend/models"
)

const (
	// DefaultPageSize is the media items page size when the caller does
	// not ask for a specific one.
	DefaultPageSize = 100

	defaultMaxAttempts  = 30
	defaultPollInterval = 2 * time.Second
)

// Picker talks to the Google Photos Picker API: session lifecycle plus the
// selected media items listing.
type Picker struct {
	client *resty.Client
	clock  clockwork.Clock

	// MaxAttempts and PollInterval bound PollUntilReady.
	MaxAttempts  int
	PollInterval time.Duration
}

// NewPicker creates a Picker client rooted at the configured base URL.
func NewPicker(cfg config.Google, clock clockwork.Clock) *Picker {
	return &Picker{
		client:       makeClient(cfg.PickerURL),
		clock:        clock,
		MaxAttempts:  defaultMaxAttempts,
		PollInterval: defaultPollInterval,
	}
}

// CreateSession starts a remote picker session. The returned pickerUri gets
// an "/autoclose" suffix so the picker UI closes itself after selection.
func (p *Picker) CreateSession(ctx context.Context, accessToken string) (*models.PickerSession, error) {
	var session models.PickerSession

	resp, err := p.client.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		SetBody("{}").
		SetResult(&session).
		Post("/sessions")

	if err != nil {
		return nil, trace.Wrap(err)
	}
	if resp.IsError() {
		return nil, externalError("create picker session", resp)
	}

	session.PickerURI += "/autoclose"
	return &session, nil
}

// GetSession reads the current state of a picker session. The remote answer
// is authoritative for mediaItemsSet.
func (p *Picker) GetSession(ctx context.Context, accessToken, sessionID string) (*models.PickerSession, error) {
	var session models.PickerSession

	resp, err := p.client.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		SetPathParam("sessionId", sessionID).
		SetResult(&session).
		Get("/sessions/{sessionId}")

	if err != nil {
		return nil, trace.Wrap(err)
	}
	if resp.IsError() {
		return nil, externalError("get picker session", resp)
	}

	return &session, nil
}

// ListMediaItems fetches one page of the user's selection. The caller drives
// pagination by passing nextPageToken back in.
func (p *Picker) ListMediaItems(ctx context.Context, accessToken, sessionID, pageToken string, pageSize int) (*models.MediaPage, error) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	var page models.MediaPage

	req := p.client.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		SetQueryParam("sessionId", sessionID).
		SetQueryParam("pageSize", strconv.Itoa(pageSize)).
		SetResult(&page)
	if pageToken != "" {
		req.SetQueryParam("pageToken", pageToken)
	}

	resp, err := req.Get("/mediaItems")
	if err != nil {
		return nil, trace.Wrap(err)
	}
	if resp.IsError() {
		return nil, externalError("list session media items", resp)
	}

	return &page, nil
}

// DeleteSession removes a picker session at the provider.
func (p *Picker) DeleteSession(ctx context.Context, accessToken, sessionID string) error {
	resp, err := p.client.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		SetPathParam("sessionId", sessionID).
		Delete("/sessions/{sessionId}")

	if err != nil {
		return trace.Wrap(err)
	}
	if resp.IsError() {
		return externalError("delete picker session", resp)
	}
	return nil
}

// PollUntilReady reads the session until mediaItemsSet turns true, sleeping
// PollInterval between attempts but not after the last one. It returns a
// limit-exceeded error once MaxAttempts checks came back not ready, and
// stops early when ctx is cancelled.
func (p *Picker) PollUntilReady(ctx context.Context, accessToken, sessionID string) (*models.PickerSession, error) {
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		session, err := p.GetSession(ctx, accessToken, sessionID)
		if err != nil {
			return nil, trace.Wrap(err)
		}

		if session.MediaItemsSet {
			return session, nil
		}

		if attempt == p.MaxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return nil, trace.Wrap(ctx.Err())
		case <-p.clock.After(p.PollInterval):
		}
	}

	return nil, trace.LimitExceeded("picker session %s not ready after %d attempts", sessionID, p.MaxAttempts)
}
