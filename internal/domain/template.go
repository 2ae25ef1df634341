package domain

import "time"

// MessageTemplate is reusable message text. It has no link to contacts or
// campaigns; the UI copies its body into a campaign message.
type MessageTemplate struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Touch updates the UpdatedAt timestamp.
func (t *MessageTemplate) Touch() {
	t.UpdatedAt = time.Now()
}
