package types

import (
	"encoding/json"
	"strings"
	"time"
)

const RoleAdmin = "admin"

type User struct {
	ID        string    `json:"_id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Avatar    string    `json:"avatar,omitempty"`
	Role      string    `json:"role,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// UnmarshalJSON accepts both "_id" and "id" since the backend is not
// consistent between the auth and user endpoints.
func (u *User) UnmarshalJSON(data []byte) error {
	type alias User
	var raw struct {
		alias
		AltID string `json:"id"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*u = User(raw.alias)
	if strings.TrimSpace(u.ID) == "" {
		u.ID = strings.TrimSpace(raw.AltID)
	}
	return nil
}

func (u *User) IsAdmin() bool {
	return u != nil && strings.EqualFold(strings.TrimSpace(u.Role), RoleAdmin)
}

func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	if name := strings.TrimSpace(u.Username); name != "" {
		return name
	}
	return strings.TrimSpace(u.Email)
}
