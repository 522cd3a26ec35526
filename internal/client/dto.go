package client

import "notedeck/internal/types"

type NotesResponse struct {
	Notes []*types.Note `json:"notes"`
}

type NoteResponse struct {
	Success *bool       `json:"success,omitempty"`
	Note    *types.Note `json:"note"`
}

type StatusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

type CommentRequest struct {
	Text string `json:"text" validate:"required,max=2000"`
}

type ReviewRequest struct {
	Approved bool `json:"approved"`
}

type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type SignUpRequest struct {
	Username string `json:"username" validate:"required,min=3"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type GoogleSignInRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Photo string `json:"photo,omitempty"`
}

// UpdateUserRequest carries only the fields being changed plus the current
// password collected by the verify step.
type UpdateUserRequest struct {
	Username        string `json:"username,omitempty" validate:"omitempty,min=3"`
	Email           string `json:"email,omitempty" validate:"omitempty,email"`
	Password        string `json:"password,omitempty" validate:"omitempty,min=6"`
	Avatar          string `json:"avatar,omitempty" validate:"omitempty,url"`
	CurrentPassword string `json:"currentPassword" validate:"required"`
}

type authResponse struct {
	User  *types.User `json:"user"`
	Token string      `json:"token,omitempty"`
}

// AuthResult is the signed-in identity plus the credential to persist.
type AuthResult struct {
	User  *types.User
	Token string
}
