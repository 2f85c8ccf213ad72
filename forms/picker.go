package forms

import (
	"encoding/json"

	"github.com/go-playground/validator/v10"
)

// PickerForm represents the base form structure for picker-related forms
type PickerForm struct{}

// MediaQuery bounds a request for one page of selected media items
type MediaQuery struct {
	PageToken string `form:"pageToken" json:"pageToken"`
	PageSize  int    `form:"pageSize" json:"pageSize" binding:"omitempty,min=1,max=100"`
}

// SessionCallback carries the session identifier of a provider-side
// completion ping
type SessionCallback struct {
	SessionID string `form:"session_id" json:"session_id" binding:"required"`
}

// PageSize returns the appropriate error message for page size validation tags
func (f PickerForm) PageSize(tag string) string {
	switch tag {
	case "min", "max":
		return "Page size must be between 1 and 100"
	default:
		return "Something went wrong, please try again later"
	}
}

// SessionID returns the appropriate error message for session id validation tags
func (f PickerForm) SessionID(tag string) string {
	switch tag {
	case "required":
		return "Missing session_id parameter"
	default:
		return "Something went wrong, please try again later"
	}
}

// Media validates a MediaQuery and returns appropriate error messages
func (f PickerForm) Media(err error) string {
	switch err.(type) {
	case validator.ValidationErrors:
		if _, ok := err.(*json.UnmarshalTypeError); ok {
			return "Something went wrong, please try again later"
		}

		for _, err := range err.(validator.ValidationErrors) {
			if err.Field() == "PageSize" {
				return f.PageSize(err.Tag())
			}
		}
	default:
		return "Invalid request"
	}
	return "Something went wrong, please try again later"
}

// Callback validates a SessionCallback and returns appropriate error messages
func (f PickerForm) Callback(err error) string {
	switch err.(type) {
	case validator.ValidationErrors:
		for _, err := range err.(validator.ValidationErrors) {
			if err.Field() == "SessionID" {
				return f.SessionID(err.Tag())
			}
		}
	default:
		return "Invalid request"
	}
	return "Something went wrong, please try again later"
}
