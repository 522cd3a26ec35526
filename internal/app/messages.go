package app

import (
	"time"

	"golang.org/x/oauth2"

	"notedeck/internal/auth"
	"notedeck/internal/client"
	"notedeck/internal/types"
)

type notesMsg struct {
	seq   int
	query types.NoteQuery
	notes []*types.Note
	err   error
}

type noteDetailMsg struct {
	seq  int
	id   string
	note *types.Note
	err  error
}

// likeMsg and downloadCountMsg trigger a refetch of whichever view issued
// them.
type likeMsg struct {
	origin route
	noteID string
	err    error
}

type downloadCountMsg struct {
	origin route
	noteID string
	err    error
}

type fileDownloadMsg struct {
	noteID string
	path   string
	err    error
}

type commentAddedMsg struct {
	origin route
	noteID string
	result *client.CommentAddResult
	err    error
}

type commentEditedMsg struct {
	noteID    string
	commentID string
	text      string
	err       error
}

type commentDeletedMsg struct {
	noteID    string
	commentID string
	err       error
}

type archiveMsg struct {
	noteID string
	resp   *client.StatusResponse
	err    error
}

type uploadsMsg struct {
	seq   int
	notes []*types.Note
	err   error
}

type archivedMsg struct {
	seq   int
	notes []*types.Note
	err   error
}

type uploadDeletedMsg struct {
	noteID string
	err    error
}

type archiveRemovedMsg struct {
	noteID string
	err    error
}

type userUpdatedMsg struct {
	user *types.User
	err  error
}

type userDeletedMsg struct {
	err error
}

type signedOutMsg struct {
	err error
}

type adminNotesMsg struct {
	seq   int
	notes []*types.Note
	err   error
}

type reviewMsg struct {
	noteID string
	note   *types.Note
	err    error
}

type adminDeleteMsg struct {
	noteID string
	err    error
}

type authFlow int

const (
	authFlowSignIn authFlow = iota
	authFlowSignUp
	authFlowGoogle
)

type authResultMsg struct {
	flow   authFlow
	result *client.AuthResult
	err    error
}

type googleDeviceMsg struct {
	seq    int
	device *oauth2.DeviceAuthResponse
	err    error
}

type googleProfileMsg struct {
	seq     int
	profile *auth.GoogleProfile
	err     error
}

type tickMsg time.Time
