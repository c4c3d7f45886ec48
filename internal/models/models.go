package models

import "time"

type User struct {
	ID        string
	Name      string
	Email     string
	PassHash  []byte
	CreatedAt time.Time
}

// RefreshToken is the server-side session record. Its ID is the opaque
// value handed to the client in the refreshToken cookie. Rows are never
// deleted; logout flips Revoked.
type RefreshToken struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	Revoked   bool
	CreatedAt time.Time
}

func (t *RefreshToken) IsExpired() bool {
	return !t.ExpiresAt.After(time.Now())
}

// IsActive reports whether the token may still complete a logout or refresh.
func (t *RefreshToken) IsActive() bool {
	return !t.Revoked && !t.IsExpired()
}

type Note struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	TotalNotes int64 `json:"totalNotes"`
	TotalPages int64 `json:"totalPages"`
}

// Event is the payload published to the message broker on domain changes.
type Event struct {
	Type   string `json:"type"`
	UserID string `json:"user_id"`
	Email  string `json:"email,omitempty"`
	NoteID string `json:"note_id,omitempty"`
}
