package app

import (
	"context"
	"time"

	tea "charm.land/bubbletea/v2"

	"notedeck/internal/client"
	"notedeck/internal/types"
)

const (
	requestTimeout  = 10 * time.Second
	downloadTimeout = 2 * time.Minute
	tickInterval    = 250 * time.Millisecond
)

func fetchNotesCmd(api NotesAPI, parent context.Context, seq int, query types.NoteQuery) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, requestTimeout)
		defer cancel()
		list, err := api.ListNotes(ctx, query)
		return notesMsg{seq: seq, query: query, notes: list, err: err}
	}
}

func fetchNoteDetailCmd(api NotesAPI, parent context.Context, seq int, id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, requestTimeout)
		defer cancel()
		note, err := api.GetNote(ctx, id)
		return noteDetailMsg{seq: seq, id: id, note: note, err: err}
	}
}

func toggleLikeCmd(api NotesAPI, origin route, id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return likeMsg{origin: origin, noteID: id, err: api.ToggleLike(ctx, id)}
	}
}

func incrementDownloadCmd(api NotesAPI, origin route, id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return downloadCountMsg{origin: origin, noteID: id, err: api.IncrementDownload(ctx, id)}
	}
}

func downloadFileCmd(api NotesAPI, note *types.Note, dir string) tea.Cmd {
	note = note.Clone()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), downloadTimeout)
		defer cancel()
		path, err := api.DownloadFile(ctx, note, dir)
		return fileDownloadMsg{noteID: note.ID, path: path, err: err}
	}
}

func addCommentCmd(api NotesAPI, origin route, noteID, text string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		result, err := api.AddComment(ctx, noteID, text)
		return commentAddedMsg{origin: origin, noteID: noteID, result: result, err: err}
	}
}

func editCommentCmd(api NotesAPI, noteID, commentID, text string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		err := api.EditComment(ctx, noteID, commentID, text)
		return commentEditedMsg{noteID: noteID, commentID: commentID, text: text, err: err}
	}
}

func deleteCommentCmd(api NotesAPI, noteID, commentID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		err := api.DeleteComment(ctx, noteID, commentID)
		return commentDeletedMsg{noteID: noteID, commentID: commentID, err: err}
	}
}

func archiveNoteCmd(api NotesAPI, id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		resp, err := api.ArchiveNote(ctx, id)
		return archiveMsg{noteID: id, resp: resp, err: err}
	}
}

func fetchUploadsCmd(api ProfileAPI, parent context.Context, seq int, userID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, requestTimeout)
		defer cancel()
		list, err := api.ListUploads(ctx, userID)
		return uploadsMsg{seq: seq, notes: list, err: err}
	}
}

func fetchArchivedCmd(api ProfileAPI, parent context.Context, seq int, userID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, requestTimeout)
		defer cancel()
		list, err := api.ListArchived(ctx, userID)
		return archivedMsg{seq: seq, notes: list, err: err}
	}
}

func deleteUploadCmd(api ProfileAPI, id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return uploadDeletedMsg{noteID: id, err: api.DeleteUpload(ctx, id)}
	}
}

func removeArchiveCmd(api ProfileAPI, id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return archiveRemovedMsg{noteID: id, err: api.RemoveArchive(ctx, id)}
	}
}

func updateUserCmd(api ProfileAPI, userID string, req client.UpdateUserRequest) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		user, err := api.UpdateUser(ctx, userID, req)
		return userUpdatedMsg{user: user, err: err}
	}
}

func deleteUserCmd(api ProfileAPI, userID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return userDeletedMsg{err: api.DeleteUser(ctx, userID)}
	}
}

func signOutCmd(api AuthAPI) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return signedOutMsg{err: api.SignOut(ctx)}
	}
}

func fetchAdminNotesCmd(api AdminAPI, parent context.Context, seq int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, requestTimeout)
		defer cancel()
		list, err := api.AdminListNotes(ctx)
		return adminNotesMsg{seq: seq, notes: list, err: err}
	}
}

func reviewNoteCmd(api AdminAPI, id string, approved bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		note, err := api.ReviewNote(ctx, id, approved)
		return reviewMsg{noteID: id, note: note, err: err}
	}
}

func adminDeleteNoteCmd(api AdminAPI, id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return adminDeleteMsg{noteID: id, err: api.AdminDeleteNote(ctx, id)}
	}
}

func signInCmd(api AuthAPI, req client.SignInRequest) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		result, err := api.SignIn(ctx, req)
		return authResultMsg{flow: authFlowSignIn, result: result, err: err}
	}
}

func signUpCmd(api AuthAPI, req client.SignUpRequest) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		result, err := api.SignUp(ctx, req)
		return authResultMsg{flow: authFlowSignUp, result: result, err: err}
	}
}

func googleStartCmd(google GoogleSignIn, parent context.Context, seq int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, requestTimeout)
		defer cancel()
		device, err := google.Start(ctx)
		return googleDeviceMsg{seq: seq, device: device, err: err}
	}
}

// googleWaitCmd polls until the user approves the device code, the code
// expires, or the scope is cancelled.
func googleWaitCmd(google GoogleSignIn, parent context.Context, seq int, msg googleDeviceMsg) tea.Cmd {
	return func() tea.Msg {
		profile, err := google.Wait(parent, msg.device)
		return googleProfileMsg{seq: seq, profile: profile, err: err}
	}
}

func googleSignInCmd(api AuthAPI, req client.GoogleSignInRequest) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		result, err := api.SignInWithGoogle(ctx, req)
		return authResultMsg{flow: authFlowGoogle, result: result, err: err}
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
