package inviteengine

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/eringen/inviteengine/textlayout"
	"github.com/eringen/inviteengine/views"
)

// Invite is one generated invite in the history table.
type Invite = views.Invite

// FlexString accepts a JSON string or number and keeps its text form, so
// {"age": 7} and {"age": "7"} decode the same way.
type FlexString string

func (f *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", b)
	}
	*f = FlexString(n.String())
	return nil
}

func (f FlexString) String() string { return string(f) }

// InviteRequest is the body of POST /api/invites.
type InviteRequest struct {
	Theme     string     `json:"theme"`
	ChildName string     `json:"childName"`
	Age       FlexString `json:"age"`
	Date      string     `json:"date"`
	Time      string     `json:"time"`
	Venue     string     `json:"venue"`
}

// Normalize trims every field and lowercases the theme key.
func (r *InviteRequest) Normalize() {
	r.Theme = strings.ToLower(strings.TrimSpace(r.Theme))
	r.ChildName = strings.TrimSpace(r.ChildName)
	r.Age = FlexString(strings.TrimSpace(string(r.Age)))
	r.Date = strings.TrimSpace(r.Date)
	r.Time = strings.TrimSpace(r.Time)
	r.Venue = strings.TrimSpace(r.Venue)
}

// InviteMetadata echoes the request and describes the rendered image.
type InviteMetadata struct {
	Theme       string              `json:"theme"`
	ChildName   string              `json:"childName"`
	Age         string              `json:"age"`
	Date        string              `json:"date"`
	Time        string              `json:"time"`
	Venue       string              `json:"venue"`
	Width       int                 `json:"width"`
	Height      int                 `json:"height"`
	GeneratedAt string              `json:"generatedAt"`
	InviteID    string              `json:"inviteId,omitempty"`
	Durable     bool                `json:"durable"`
	Zones       []textlayout.Layout `json:"zones"`
}

// InviteResponse is the success body of POST /api/invites. ImageURL equals
// LocalImageURL when the image could not be persisted.
type InviteResponse struct {
	Success       bool           `json:"success"`
	ImageURL      string         `json:"imageUrl"`
	LocalImageURL string         `json:"localImageUrl"`
	Metadata      InviteMetadata `json:"metadata"`
}

// ErrorResponse is the body of every failed API call.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// ThemeSummary is one entry of GET /api/themes.
type ThemeSummary struct {
	Key    string   `json:"key"`
	Name   string   `json:"name"`
	Width  int      `json:"width"`
	Height int      `json:"height"`
	Zones  []string `json:"zones"`
}
