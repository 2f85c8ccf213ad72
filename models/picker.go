package models

import "time"

// PickerSession mirrors the remote picker session resource. PickerUri is the
// URL the end user opens to perform the selection; MediaItemsSet flips to
// true once the user confirms a selection remotely.
type PickerSession struct {
	ID            string `json:"id"`
	PickerURI     string `json:"pickerUri"`
	MediaItemsSet bool   `json:"mediaItemsSet,omitempty"`
}

// Session shadow record statuses.
const (
	SessionPending = "pending"
	SessionReady   = "ready"
)

// SessionRecord is the locally cached shadow of a remote picker session,
// kept for bookkeeping only. The remote service stays authoritative for
// readiness.
type SessionRecord struct {
	SessionID string    `json:"sessionId"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}
