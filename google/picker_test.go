package google

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gravitational/trace"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"photos-picker-backend/config"
	"photos-picker-backend/models"
)

func newTestPicker(serverURL string) *Picker {
	picker := NewPicker(config.Google{PickerURL: serverURL}, clockwork.NewRealClock())
	picker.PollInterval = time.Millisecond
	return picker
}

func TestCreateSessionAppendsAutoclose(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/sessions", r.URL.Path)
		assert.Equal(t, "Bearer access-token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"sess-1","pickerUri":"https://photos.google.com/picker/sess-1"}`))
	}))
	defer server.Close()

	picker := newTestPicker(server.URL)

	session, err := picker.CreateSession(context.Background(), "access-token")
	require.NoError(t, err)
	assert.Equal(t, "sess-1", session.ID)
	assert.Equal(t, "https://photos.google.com/picker/sess-1/autoclose", session.PickerURI)
}

func TestCreateSessionUpstreamFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte("insufficient scope"))
	}))
	defer server.Close()

	picker := newTestPicker(server.URL)

	_, err := picker.CreateSession(context.Background(), "access-token")
	require.Error(t, err)
	assert.True(t, IsExternalError(err))
	assert.Contains(t, err.Error(), "insufficient scope")
}

func TestListMediaItemsForwardsPaging(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/mediaItems", r.URL.Path)
		query := r.URL.Query()
		assert.Equal(t, "sess-1", query.Get("sessionId"))
		assert.Equal(t, "abc", query.Get("pageToken"))
		assert.Equal(t, "100", query.Get("pageSize"))

		page := models.MediaPage{
			MediaItems: []models.MediaItem{
				{ID: "item-1", Filename: "cat.jpg", BaseURL: "https://lh3.googleusercontent.com/item-1", MimeType: "image/jpeg"},
			},
			NextPageToken: "def",
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(page)
	}))
	defer server.Close()

	picker := newTestPicker(server.URL)

	page, err := picker.ListMediaItems(context.Background(), "access-token", "sess-1", "abc", 0)
	require.NoError(t, err)
	require.Len(t, page.MediaItems, 1)
	assert.Equal(t, "cat.jpg", page.MediaItems[0].Filename)
	assert.Equal(t, "def", page.NextPageToken)
}

func TestDeleteSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/sessions/sess-1", r.URL.Path)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("{}"))
	}))
	defer server.Close()

	picker := newTestPicker(server.URL)
	require.NoError(t, picker.DeleteSession(context.Background(), "access-token", "sess-1"))
}

func TestPollUntilReadyReturnsOnNthCheck(t *testing.T) {
	const readyOn = 3

	var checks atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := checks.Add(1)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"id":"sess-1","pickerUri":"u","mediaItemsSet":%t}`, n >= readyOn)
	}))
	defer server.Close()

	picker := newTestPicker(server.URL)

	session, err := picker.PollUntilReady(context.Background(), "access-token", "sess-1")
	require.NoError(t, err)
	assert.True(t, session.MediaItemsSet)
	assert.Equal(t, int32(readyOn), checks.Load())
}

func TestPollUntilReadyTimesOut(t *testing.T) {
	var checks atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		checks.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"sess-1","pickerUri":"u","mediaItemsSet":false}`))
	}))
	defer server.Close()

	picker := newTestPicker(server.URL)
	picker.MaxAttempts = 5

	_, err := picker.PollUntilReady(context.Background(), "access-token", "sess-1")
	require.Error(t, err)
	assert.True(t, trace.IsLimitExceeded(err))
	// exactly MaxAttempts checks, no extra attempt after the last sleep
	assert.Equal(t, int32(5), checks.Load())
}

func TestPollUntilReadyStopsOnCancel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"sess-1","pickerUri":"u","mediaItemsSet":false}`))
	}))
	defer server.Close()

	picker := newTestPicker(server.URL)
	picker.PollInterval = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := picker.PollUntilReady(ctx, "access-token", "sess-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
