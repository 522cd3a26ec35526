package client

import (
	"context"
	"net/http"
	"strings"

	"notedeck/internal/types"
)

// UpdateUser sends the changed profile fields. The backend answers with the
// updated user either at the top level or under "user".
func (c *Client) UpdateUser(ctx context.Context, userID string, req UpdateUserRequest) (*types.User, error) {
	userID, err := requireID(userID, "user id")
	if err != nil {
		return nil, err
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	req.Avatar = strings.TrimSpace(req.Avatar)
	if err := Validate(req); err != nil {
		return nil, err
	}
	data, err := c.doJSONWithResponse(ctx, http.MethodPost, "/user/update/"+userID, req, nil)
	if err != nil {
		return nil, err
	}
	user, _, err := decodeAuthBody(data)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (c *Client) DeleteUser(ctx context.Context, userID string) error {
	userID, err := requireID(userID, "user id")
	if err != nil {
		return err
	}
	var resp StatusResponse
	if err := c.doJSON(ctx, http.MethodDelete, "/user/delete/"+userID, nil, &resp); err != nil {
		return err
	}
	c.SetToken("")
	return nil
}
