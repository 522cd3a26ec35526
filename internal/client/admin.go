package client

import (
	"context"
	"net/http"

	"notedeck/internal/types"
)

// AdminListNotes returns the whole corpus, approved or not.
func (c *Client) AdminListNotes(ctx context.Context) ([]*types.Note, error) {
	var notes []*types.Note
	if err := c.doJSON(ctx, http.MethodGet, "/admin/notes", nil, &notes); err != nil {
		return nil, err
	}
	return nonNilNotes(notes), nil
}

// ReviewNote sets the approval flag and returns the server's copy of the note.
func (c *Client) ReviewNote(ctx context.Context, id string, approved bool) (*types.Note, error) {
	id, err := requireID(id, "note id")
	if err != nil {
		return nil, err
	}
	var note types.Note
	if err := c.doJSON(ctx, http.MethodPut, "/admin/notes/"+id+"/review", ReviewRequest{Approved: approved}, &note); err != nil {
		return nil, err
	}
	if note.ID == "" {
		return nil, ErrUnexpectedResponse
	}
	return &note, nil
}

func (c *Client) AdminDeleteNote(ctx context.Context, id string) error {
	id, err := requireID(id, "note id")
	if err != nil {
		return err
	}
	return c.doJSON(ctx, http.MethodDelete, "/admin/notes/"+id, nil, nil)
}
