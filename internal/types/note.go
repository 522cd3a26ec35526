package types

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// AnonymousUsername is the display name the backend assigns to comments whose
// author could not be resolved. Such comments never expose owner controls.
const AnonymousUsername = "Anonymous"

type Uploader struct {
	ID       string `json:"_id,omitempty"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
}

// UnmarshalJSON accepts the populated object as well as the bare id string
// the listing endpoints send when the reference is not expanded.
func (u *Uploader) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		*u = Uploader{ID: strings.TrimSpace(id)}
		return nil
	}
	type alias Uploader
	var raw struct {
		alias
		AltID string `json:"id"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*u = Uploader(raw.alias)
	if strings.TrimSpace(u.ID) == "" {
		u.ID = strings.TrimSpace(raw.AltID)
	}
	return nil
}

type Comment struct {
	ID          string    `json:"_id"`
	User        string    `json:"user,omitempty"`
	Username    string    `json:"username,omitempty"`
	Text        string    `json:"text"`
	CommentedAt time.Time `json:"commentedAt"`
}

type Note struct {
	ID            string    `json:"_id"`
	Title         string    `json:"title"`
	Description   string    `json:"description,omitempty"`
	SubjectName   string    `json:"subjectName,omitempty"`
	CourseName    string    `json:"courseName,omitempty"`
	Semester      string    `json:"semester,omitempty"`
	CollegeName   string    `json:"collegeName,omitempty"`
	Batch         string    `json:"batch,omitempty"`
	FileURL       string    `json:"fileUrl,omitempty"`
	FileType      string    `json:"fileType,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	DownloadCount int       `json:"downloadCount"`
	Likes         []string  `json:"likes"`
	Comments      []Comment `json:"comments"`
	Approved      bool      `json:"approved"`
	Uploader      *Uploader `json:"uploader,omitempty"`
}

func (n *Note) LikedBy(userID string) bool {
	if n == nil {
		return false
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return false
	}
	for _, id := range n.Likes {
		if id == userID {
			return true
		}
	}
	return false
}

func (n *Note) UploaderName() string {
	if n == nil || n.Uploader == nil {
		return ""
	}
	return n.Uploader.Username
}

// Clone returns a deep copy so callers can patch engagement arrays without
// aliasing the cached record.
func (n *Note) Clone() *Note {
	if n == nil {
		return nil
	}
	out := *n
	if n.Likes != nil {
		out.Likes = append([]string{}, n.Likes...)
	}
	if n.Comments != nil {
		out.Comments = append([]Comment{}, n.Comments...)
	}
	if n.Uploader != nil {
		uploader := *n.Uploader
		out.Uploader = &uploader
	}
	return &out
}

// CanManage reports whether userID owns the comment and may edit or delete it.
func (c Comment) CanManage(userID string) bool {
	userID = strings.TrimSpace(userID)
	if userID == "" || c.User == "" {
		return false
	}
	if strings.EqualFold(strings.TrimSpace(c.Username), AnonymousUsername) {
		return false
	}
	return c.User == userID
}
