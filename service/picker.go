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

const (
	sessionRecordTTL = time.Hour
	mediaCacheTTL    = 24 * time.Hour
)

// PickerClient is the picker API surface the service depends on.
// *google.Picker implements it.
type PickerClient interface {
	CreateSession(ctx context.Context, accessToken string) (*models.PickerSession, error)
	GetSession(ctx context.Context, accessToken, sessionID string) (*models.PickerSession, error)
	ListMediaItems(ctx context.Context, accessToken, sessionID, pageToken string, pageSize int) (*models.MediaPage, error)
	DeleteSession(ctx context.Context, accessToken, sessionID string) error
	PollUntilReady(ctx context.Context, accessToken, sessionID string) (*models.PickerSession, error)
}

// PickerService orchestrates remote picker sessions and keeps shadow records
// and a media page cache in the key-value store. The remote service stays
// authoritative for session readiness; shadow records are bookkeeping only.
type PickerService struct {
	kv     kv.KeyValueStore
	picker PickerClient
	clock  clockwork.Clock
}

func NewPickerService(kv kv.KeyValueStore, picker PickerClient, clock clockwork.Clock) *PickerService {
	return &PickerService{
		kv:     kv,
		picker: picker,
		clock:  clock,
	}
}

func sessionKey(sessionID string) string {
	return "picker_session:" + sessionID
}

func mediaKey(sessionID string) string {
	return "selected_media:" + sessionID
}

// CreateSession opens a remote picker session and stores a pending shadow
// record for it.
func (s *PickerService) CreateSession(ctx context.Context, accessToken string) (*models.PickerSession, error) {
	session, err := s.picker.CreateSession(ctx, accessToken)
	if err != nil {
		return nil, trace.Wrap(err)
	}

	record := models.SessionRecord{
		SessionID: session.ID,
		Status:    models.SessionPending,
		CreatedAt: s.clock.Now(),
	}
	if err := s.putSessionRecord(record); err != nil {
		slog.Warn("failed to store picker session record", "error", err, "session_id", session.ID)
	}

	return session, nil
}

// SessionStatus reads the remote session state. When the selection turned
// out to be confirmed, the shadow record is flipped to ready best-effort.
func (s *PickerService) SessionStatus(ctx context.Context, accessToken, sessionID string) (*models.PickerSession, error) {
	session, err := s.picker.GetSession(ctx, accessToken, sessionID)
	if err != nil {
		return nil, trace.Wrap(err)
	}

	if session.MediaItemsSet {
		s.markReady(sessionID)
	}

	return session, nil
}

// WaitForSelection blocks until the remote session reports a confirmed
// selection, bounded by the picker client's polling budget and the caller's
// context.
func (s *PickerService) WaitForSelection(ctx context.Context, accessToken, sessionID string) (*models.PickerSession, error) {
	session, err := s.picker.PollUntilReady(ctx, accessToken, sessionID)
	if err != nil {
		return nil, trace.Wrap(err)
	}

	s.markReady(sessionID)
	return session, nil
}

// SessionMedia fetches one page of the selection and caches it. Readiness is
// not enforced here; the remote API simply returns an empty selection when
// nothing was confirmed yet.
func (s *PickerService) SessionMedia(ctx context.Context, accessToken, sessionID, pageToken string, pageSize int) (*models.MediaPage, error) {
	page, err := s.picker.ListMediaItems(ctx, accessToken, sessionID, pageToken, pageSize)
	if err != nil {
		return nil, trace.Wrap(err)
	}

	if data, err := json.Marshal(page); err == nil {
		if err := s.kv.Set(mediaKey(sessionID), string(data), mediaCacheTTL); err != nil {
			slog.Warn("failed to cache selected media", "error", err, "session_id", sessionID)
		}
	}

	return page, nil
}

// CachedMedia returns the last cached media page for a session, or (nil, nil)
// when nothing is cached.
func (s *PickerService) CachedMedia(sessionID string) (*models.MediaPage, error) {
	data, err := s.kv.Get(mediaKey(sessionID))
	if errors.Is(err, kv.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, trace.Wrap(err)
	}

	var page models.MediaPage
	if err := json.Unmarshal([]byte(data), &page); err != nil {
		return nil, trace.Wrap(err)
	}
	return &page, nil
}

// ConfirmCallback handles the provider-side completion ping. The session id
// must belong to a known shadow record.
func (s *PickerService) ConfirmCallback(sessionID string) error {
	data, err := s.kv.Get(sessionKey(sessionID))
	if errors.Is(err, kv.ErrNotFound) {
		return trace.NotFound("unknown picker session %q", sessionID)
	}
	if err != nil {
		return trace.Wrap(err)
	}

	var record models.SessionRecord
	if err := json.Unmarshal([]byte(data), &record); err != nil {
		return trace.Wrap(err)
	}

	record.Status = models.SessionReady
	return trace.Wrap(s.putSessionRecord(record))
}

// SessionRecord returns the shadow record for a session, or (nil, nil) when
// none exists.
func (s *PickerService) SessionRecord(sessionID string) (*models.SessionRecord, error) {
	data, err := s.kv.Get(sessionKey(sessionID))
	if errors.Is(err, kv.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, trace.Wrap(err)
	}

	var record models.SessionRecord
	if err := json.Unmarshal([]byte(data), &record); err != nil {
		return nil, trace.Wrap(err)
	}
	return &record, nil
}

// DeleteSession removes the remote session and the local shadow record and
// media cache.
func (s *PickerService) DeleteSession(ctx context.Context, accessToken, sessionID string) error {
	if err := s.picker.DeleteSession(ctx, accessToken, sessionID); err != nil {
		return trace.Wrap(err)
	}

	if _, err := s.kv.Del(sessionKey(sessionID)); err != nil && !errors.Is(err, kv.ErrNotFound) {
		slog.Warn("failed to delete picker session record", "error", err, "session_id", sessionID)
	}
	if _, err := s.kv.Del(mediaKey(sessionID)); err != nil && !errors.Is(err, kv.ErrNotFound) {
		slog.Warn("failed to delete cached media", "error", err, "session_id", sessionID)
	}
	return nil
}

func (s *PickerService) putSessionRecord(record models.SessionRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return trace.Wrap(err)
	}
	return trace.Wrap(s.kv.Set(sessionKey(record.SessionID), string(data), sessionRecordTTL))
}

func (s *PickerService) markReady(sessionID string) {
	if err := s.ConfirmCallback(sessionID); err != nil && !trace.IsNotFound(err) {
		slog.Warn("failed to update picker session record", "error", err, "session_id", sessionID)
	}
}
