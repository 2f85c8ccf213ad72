package models

// MediaItem is a read-only projection of one selected photo. BaseURL is not
// yet sized; consumers append size parameters (e.g. "=w200-h200").
type MediaItem struct {
	ID            string         `json:"id"`
	Filename      string         `json:"filename"`
	ProductURL    string         `json:"productUrl,omitempty"`
	BaseURL       string         `json:"baseUrl"`
	MimeType      string         `json:"mimeType"`
	MediaMetadata *MediaMetadata `json:"mediaMetadata,omitempty"`
}

// MediaMetadata carries the capture metadata subset exposed by the API.
// Width and height come over the wire as strings.
type MediaMetadata struct {
	CreationTime string         `json:"creationTime,omitempty"`
	Width        string         `json:"width,omitempty"`
	Height       string         `json:"height,omitempty"`
	Photo        *PhotoMetadata `json:"photo,omitempty"`
}

// PhotoMetadata is the camera EXIF subset.
type PhotoMetadata struct {
	CameraMake      string  `json:"cameraMake,omitempty"`
	CameraModel     string  `json:"cameraModel,omitempty"`
	FocalLength     float64 `json:"focalLength,omitempty"`
	ApertureFNumber float64 `json:"apertureFNumber,omitempty"`
	ISOEquivalent   int     `json:"isoEquivalent,omitempty"`
}

// MediaPage is one page of selected media items.
type MediaPage struct {
	MediaItems    []MediaItem `json:"mediaItems"`
	NextPageToken string      `json:"nextPageToken,omitempty"`
}

// Album is a Google Photos library album, used by the connectivity check.
type Album struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}
