package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"notedeck/internal/types"
)

func (c *Client) SignIn(ctx context.Context, req SignInRequest) (*AuthResult, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := Validate(req); err != nil {
		return nil, err
	}
	return c.authenticate(ctx, "/auth/signin", req)
}

func (c *Client) SignUp(ctx context.Context, req SignUpRequest) (*AuthResult, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if err := Validate(req); err != nil {
		return nil, err
	}
	return c.authenticate(ctx, "/auth/signup", req)
}

// SignInWithGoogle exchanges a verified Google profile for a backend session.
func (c *Client) SignInWithGoogle(ctx context.Context, req GoogleSignInRequest) (*AuthResult, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := Validate(req); err != nil {
		return nil, err
	}
	return c.authenticate(ctx, "/auth/google", req)
}

// SignOut ends the backend session. The local credential is only dropped once
// the backend confirms, so a failed sign-out leaves the client usable.
func (c *Client) SignOut(ctx context.Context) error {
	var resp StatusResponse
	if err := c.doJSON(ctx, http.MethodGet, "/auth/signout", nil, &resp); err != nil {
		return err
	}
	c.SetToken("")
	return nil
}

func (c *Client) authenticate(ctx context.Context, path string, body any) (*AuthResult, error) {
	data, err := c.doJSONWithResponse(ctx, http.MethodPost, path, body, nil)
	if err != nil {
		return nil, err
	}
	user, token, err := decodeAuthBody(data)
	if err != nil {
		return nil, err
	}
	if token != "" {
		c.SetToken(token)
	}
	return &AuthResult{User: user, Token: c.Token()}, nil
}

// decodeAuthBody accepts {user, token?} and falls back to a bare user record,
// which some auth endpoints return.
func decodeAuthBody(data []byte) (*types.User, string, error) {
	var resp authResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrUnexpectedResponse, err)
	}
	if resp.User != nil && strings.TrimSpace(resp.User.ID) != "" {
		return resp.User, strings.TrimSpace(resp.Token), nil
	}
	var user types.User
	if err := json.Unmarshal(data, &user); err != nil || strings.TrimSpace(user.ID) == "" {
		return nil, "", fmt.Errorf("%w: auth response has no user", ErrUnexpectedResponse)
	}
	return &user, strings.TrimSpace(resp.Token), nil
}
