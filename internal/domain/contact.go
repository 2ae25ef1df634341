package domain

import (
	"strings"
	"time"
)

// Contact is a person reachable by phone. Phone is the identity key: no two
// contacts share one, and import dedup compares phones only.
type Contact struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Source    string    `json:"source,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	Tags      []*Tag    `json:"tags"`
}

// NormalizePhone trims whitespace around a phone number. The stored value is
// otherwise kept as entered, so "0912 345 678" and "0912345678" stay distinct.
func NormalizePhone(s string) string {
	return strings.TrimSpace(s)
}
