package types

import (
	"strings"
	"time"
)

// SessionSnapshot is the persisted form of the signed-in session.
type SessionSnapshot struct {
	User    *User     `json:"user,omitempty"`
	Token   string    `json:"token,omitempty"`
	SavedAt time.Time `json:"saved_at"`
}

func (s *SessionSnapshot) Empty() bool {
	return s == nil || (s.User == nil && strings.TrimSpace(s.Token) == "")
}
