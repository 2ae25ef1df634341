package domain

import (
	"strings"
	"time"
)

// DefaultNamePlaceholder is replaced by the contact's name when a campaign
// message is personalized.
const DefaultNamePlaceholder = "[NAME]"

// Campaign is a named message sent to every contact carrying all of its tags.
// Recipients is the delivery history used by the Anti-Annoyance Shield: it
// only ever grows.
type Campaign struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Message        string    `json:"message"`
	CreatedAt      time.Time `json:"created_at"`
	Tags           []*Tag    `json:"tags"`
	RecipientCount int       `json:"recipient_count"`
}

// Personalize replaces every occurrence of placeholder in body with name.
// An empty placeholder leaves the body untouched.
func Personalize(body, placeholder, name string) string {
	if placeholder == "" {
		return body
	}
	return strings.ReplaceAll(body, placeholder, name)
}

// ExportLine is one personalized message in a campaign export.
type ExportLine struct {
	ContactID string `json:"-"`
	Phone     string `json:"phone"`
	Message   string `json:"message"`
}

// ExportHeader is the literal header row of every export file.
var ExportHeader = []string{"PhoneNumber", "Message"}
