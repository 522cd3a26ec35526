package client

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"notedeck/internal/types"
)

func (c *Client) ListNotes(ctx context.Context, query types.NoteQuery) ([]*types.Note, error) {
	var resp NotesResponse
	path := "/notes?" + query.Values().Encode()
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Notes == nil {
		return []*types.Note{}, nil
	}
	return resp.Notes, nil
}

func (c *Client) GetNote(ctx context.Context, id string) (*types.Note, error) {
	id, err := requireID(id, "note id")
	if err != nil {
		return nil, err
	}
	var resp NoteResponse
	if err := c.doJSON(ctx, http.MethodGet, "/uploading/get/"+id, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Note == nil {
		return nil, ErrUnexpectedResponse
	}
	return resp.Note, nil
}

// ToggleLike flips the signed-in user's membership in the note's likes.
// Concurrent calls for the same note share one request.
func (c *Client) ToggleLike(ctx context.Context, id string) error {
	id, err := requireID(id, "note id")
	if err != nil {
		return err
	}
	return c.collapse("like:"+id, func() error {
		return c.doJSON(ctx, http.MethodPut, "/notes/"+id+"/like", nil, nil)
	})
}

// IncrementDownload bumps the server-side download counter. Concurrent calls
// for the same note share one request.
func (c *Client) IncrementDownload(ctx context.Context, id string) error {
	id, err := requireID(id, "note id")
	if err != nil {
		return err
	}
	return c.collapse("download:"+id, func() error {
		var resp StatusResponse
		return c.doJSON(ctx, http.MethodPut, "/notes/"+id+"/download", nil, &resp)
	})
}

func (c *Client) AddComment(ctx context.Context, noteID, text string) (*CommentAddResult, error) {
	noteID, err := requireID(noteID, "note id")
	if err != nil {
		return nil, err
	}
	req := CommentRequest{Text: strings.TrimSpace(text)}
	if err := Validate(req); err != nil {
		return nil, err
	}
	data, err := c.doJSONWithResponse(ctx, http.MethodPost, "/notes/"+noteID+"/comment", req, nil)
	if err != nil {
		return nil, err
	}
	return DecodeCommentAddResult(data, req.Text)
}

func (c *Client) EditComment(ctx context.Context, noteID, commentID, text string) error {
	path, err := commentPath(noteID, commentID)
	if err != nil {
		return err
	}
	req := CommentRequest{Text: strings.TrimSpace(text)}
	if err := Validate(req); err != nil {
		return err
	}
	var resp StatusResponse
	return c.doJSON(ctx, http.MethodPut, path, req, &resp)
}

func (c *Client) DeleteComment(ctx context.Context, noteID, commentID string) error {
	path, err := commentPath(noteID, commentID)
	if err != nil {
		return err
	}
	var resp StatusResponse
	return c.doJSON(ctx, http.MethodDelete, path, nil, &resp)
}

func (c *Client) ArchiveNote(ctx context.Context, id string) (*StatusResponse, error) {
	id, err := requireID(id, "note id")
	if err != nil {
		return nil, err
	}
	var resp StatusResponse
	if err := c.doJSON(ctx, http.MethodPost, "/notes/archive/"+id, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) RemoveArchive(ctx context.Context, id string) error {
	id, err := requireID(id, "note id")
	if err != nil {
		return err
	}
	var resp StatusResponse
	return c.doJSON(ctx, http.MethodPost, "/notes/remove-archive/"+id, nil, &resp)
}

func (c *Client) ListArchived(ctx context.Context, userID string) ([]*types.Note, error) {
	userID, err := requireID(userID, "user id")
	if err != nil {
		return nil, err
	}
	var notes []*types.Note
	if err := c.doJSON(ctx, http.MethodGet, "/notes/archived/"+userID, nil, &notes); err != nil {
		return nil, err
	}
	return nonNilNotes(notes), nil
}

func (c *Client) ListUploads(ctx context.Context, userID string) ([]*types.Note, error) {
	userID, err := requireID(userID, "user id")
	if err != nil {
		return nil, err
	}
	var notes []*types.Note
	if err := c.doJSON(ctx, http.MethodGet, "/user/uploads/"+userID, nil, &notes); err != nil {
		return nil, err
	}
	return nonNilNotes(notes), nil
}

func (c *Client) DeleteUpload(ctx context.Context, id string) error {
	id, err := requireID(id, "note id")
	if err != nil {
		return err
	}
	var resp StatusResponse
	return c.doJSON(ctx, http.MethodDelete, "/uploading/delete/"+id, nil, &resp)
}

func commentPath(noteID, commentID string) (string, error) {
	noteID, err := requireID(noteID, "note id")
	if err != nil {
		return "", err
	}
	commentID, err = requireID(commentID, "comment id")
	if err != nil {
		return "", err
	}
	return "/notes/comments/" + noteID + "/" + commentID, nil
}

func requireID(id, name string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", errors.New(name + " is required")
	}
	return url.PathEscape(id), nil
}

func nonNilNotes(notes []*types.Note) []*types.Note {
	out := make([]*types.Note, 0, len(notes))
	for _, note := range notes {
		if note != nil {
			out = append(out, note)
		}
	}
	return out
}
