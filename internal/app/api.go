package app

import (
	"context"

	"golang.org/x/oauth2"

	"notedeck/internal/auth"
	"notedeck/internal/client"
	"notedeck/internal/types"
)

type NotesAPI interface {
	ListNotes(ctx context.Context, query types.NoteQuery) ([]*types.Note, error)
	GetNote(ctx context.Context, id string) (*types.Note, error)
	ToggleLike(ctx context.Context, id string) error
	IncrementDownload(ctx context.Context, id string) error
	DownloadFile(ctx context.Context, note *types.Note, dir string) (string, error)
	AddComment(ctx context.Context, noteID, text string) (*client.CommentAddResult, error)
	EditComment(ctx context.Context, noteID, commentID, text string) error
	DeleteComment(ctx context.Context, noteID, commentID string) error
	ArchiveNote(ctx context.Context, id string) (*client.StatusResponse, error)
}

type ProfileAPI interface {
	ListUploads(ctx context.Context, userID string) ([]*types.Note, error)
	ListArchived(ctx context.Context, userID string) ([]*types.Note, error)
	DeleteUpload(ctx context.Context, id string) error
	RemoveArchive(ctx context.Context, id string) error
	UpdateUser(ctx context.Context, userID string, req client.UpdateUserRequest) (*types.User, error)
	DeleteUser(ctx context.Context, userID string) error
}

type AdminAPI interface {
	AdminListNotes(ctx context.Context) ([]*types.Note, error)
	ReviewNote(ctx context.Context, id string, approved bool) (*types.Note, error)
	AdminDeleteNote(ctx context.Context, id string) error
}

type AuthAPI interface {
	SignIn(ctx context.Context, req client.SignInRequest) (*client.AuthResult, error)
	SignUp(ctx context.Context, req client.SignUpRequest) (*client.AuthResult, error)
	SignInWithGoogle(ctx context.Context, req client.GoogleSignInRequest) (*client.AuthResult, error)
	SignOut(ctx context.Context) error
}

// API is everything the screens need from the backend.
type API interface {
	NotesAPI
	ProfileAPI
	AdminAPI
	AuthAPI
}

// GoogleSignIn runs the device authorization flow. auth.GoogleProvider
// implements it.
type GoogleSignIn interface {
	Start(ctx context.Context) (*oauth2.DeviceAuthResponse, error)
	Wait(ctx context.Context, device *oauth2.DeviceAuthResponse) (*auth.GoogleProfile, error)
}

// ClientAPI adapts the REST client to the screen interfaces.
type ClientAPI struct {
	*client.Client
}

func NewClientAPI(c *client.Client) *ClientAPI {
	return &ClientAPI{Client: c}
}

var (
	_ API          = (*ClientAPI)(nil)
	_ GoogleSignIn = (*auth.GoogleProvider)(nil)
)
