package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"notedeck/internal/types"
)

// CommentAddKind names which of the three response shapes the backend sent
// for a new comment.
type CommentAddKind int

const (
	// CommentAddList: {"comments": [...]} with the full updated thread.
	CommentAddList CommentAddKind = iota + 1
	// CommentAddSingle: {"comment": {...}} with only the new comment.
	CommentAddSingle
	// CommentAddRaw: the new comment object itself, possibly partial.
	CommentAddRaw
)

func (k CommentAddKind) String() string {
	switch k {
	case CommentAddList:
		return "list"
	case CommentAddSingle:
		return "single"
	case CommentAddRaw:
		return "raw"
	default:
		return "unknown"
	}
}

type CommentAddResult struct {
	Kind     CommentAddKind
	Comments []types.Comment
	Comment  types.Comment
}

const fallbackCommentUsername = "You"

var (
	commentNow   = time.Now
	commentNewID = func() string { return uuid.NewString() }
)

// DecodeCommentAddResult classifies the add-comment response body. text is
// the submitted comment, used when the backend echoes a partial object.
func DecodeCommentAddResult(data []byte, text string) (*CommentAddResult, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, fmt.Errorf("%w: add comment expects an object", ErrUnexpectedResponse)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnexpectedResponse, err)
	}

	if raw, ok := fields["comments"]; ok && isJSONArray(raw) {
		var comments []types.Comment
		if err := json.Unmarshal(raw, &comments); err != nil {
			return nil, fmt.Errorf("%w: comments: %v", ErrUnexpectedResponse, err)
		}
		return &CommentAddResult{Kind: CommentAddList, Comments: comments}, nil
	}
	if raw, ok := fields["comment"]; ok && isJSONObject(raw) {
		var comment types.Comment
		if err := json.Unmarshal(raw, &comment); err != nil {
			return nil, fmt.Errorf("%w: comment: %v", ErrUnexpectedResponse, err)
		}
		return &CommentAddResult{Kind: CommentAddSingle, Comment: fillComment(comment, text)}, nil
	}

	var partial struct {
		ID          string `json:"_id"`
		User        string `json:"user"`
		Username    string `json:"username"`
		CommentedAt string `json:"commentedAt"`
	}
	_ = json.Unmarshal(trimmed, &partial)
	comment := types.Comment{
		ID:       partial.ID,
		User:     partial.User,
		Username: partial.Username,
		Text:     text,
	}
	if at, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(partial.CommentedAt)); err == nil {
		comment.CommentedAt = at
	}
	return &CommentAddResult{Kind: CommentAddRaw, Comment: fillComment(comment, text)}, nil
}

// Apply merges the result into the current thread.
func (r *CommentAddResult) Apply(current []types.Comment) []types.Comment {
	if r == nil {
		return current
	}
	if r.Kind == CommentAddList {
		return append([]types.Comment{}, r.Comments...)
	}
	out := make([]types.Comment, 0, len(current)+1)
	out = append(out, current...)
	return append(out, r.Comment)
}

func fillComment(comment types.Comment, text string) types.Comment {
	if strings.TrimSpace(comment.ID) == "" {
		comment.ID = commentNewID()
	}
	if strings.TrimSpace(comment.Text) == "" {
		comment.Text = text
	}
	if strings.TrimSpace(comment.Username) == "" {
		comment.Username = fallbackCommentUsername
	}
	if comment.CommentedAt.IsZero() {
		comment.CommentedAt = commentNow().UTC()
	}
	return comment
}

func isJSONArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '['
}

func isJSONObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}
