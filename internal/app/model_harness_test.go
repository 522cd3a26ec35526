package app

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	xansi "github.com/charmbracelet/x/ansi"

	"notedeck/internal/client"
	"notedeck/internal/session"
	"notedeck/internal/testutil"
	"notedeck/internal/types"
)

const cmdTimeout = 5 * time.Second

func newTestModel(t *testing.T, backend *testutil.Backend, user *types.User, token string, opts ...Option) *Model {
	t.Helper()
	api := NewClientAPI(client.NewWithBaseURL(backend.URL(), token))
	store := session.NewStore()
	if user != nil {
		store.Dispatch(context.Background(), session.SignInSuccess(user, token))
	}
	opts = append([]Option{WithDownloadsDir(t.TempDir())}, opts...)
	m := NewModel(api, store, opts...)
	m.resize(120, 40)
	return &m
}

// drain executes cmd and feeds every app message it produces back into the
// model until nothing is left. Widget messages such as cursor blinks and
// the render tick are dropped.
func drain(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	pending := []tea.Cmd{cmd}
	for len(pending) > 0 {
		next := pending[0]
		pending = pending[1:]
		if next == nil {
			continue
		}
		switch msg := execCmd(t, next).(type) {
		case tea.BatchMsg:
			pending = append(pending, msg...)
		default:
			if !isAppMsg(msg) {
				continue
			}
			_, out := m.Update(msg)
			pending = append(pending, out)
		}
	}
}

func execCmd(t *testing.T, cmd tea.Cmd) tea.Msg {
	t.Helper()
	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()
	select {
	case msg := <-done:
		return msg
	case <-time.After(cmdTimeout):
		t.Fatalf("command did not finish within %s", cmdTimeout)
		return nil
	}
}

func isAppMsg(msg tea.Msg) bool {
	switch msg.(type) {
	case notesMsg, noteDetailMsg, likeMsg, downloadCountMsg, fileDownloadMsg,
		commentAddedMsg, commentEditedMsg, commentDeletedMsg, archiveMsg,
		uploadsMsg, archivedMsg, uploadDeletedMsg, archiveRemovedMsg,
		userUpdatedMsg, userDeletedMsg, signedOutMsg,
		adminNotesMsg, reviewMsg, adminDeleteMsg,
		authResultMsg, googleDeviceMsg, googleProfileMsg:
		return true
	}
	return false
}

func keyPress(key string) tea.KeyPressMsg {
	switch key {
	case "enter":
		return tea.KeyPressMsg{Code: tea.KeyEnter}
	case "esc":
		return tea.KeyPressMsg{Code: tea.KeyEscape}
	case "tab":
		return tea.KeyPressMsg{Code: tea.KeyTab}
	case "shift+tab":
		return tea.KeyPressMsg{Code: tea.KeyTab, Mod: tea.ModShift}
	case "up":
		return tea.KeyPressMsg{Code: tea.KeyUp}
	case "down":
		return tea.KeyPressMsg{Code: tea.KeyDown}
	case "ctrl+u":
		return tea.KeyPressMsg{Code: 'u', Mod: tea.ModCtrl}
	}
	r := []rune(key)[0]
	return tea.KeyPressMsg{Code: r, Text: key}
}

// press sends one key through Update and returns the resulting command.
func press(m *Model, key string) tea.Cmd {
	_, cmd := m.Update(keyPress(key))
	return cmd
}

func typeText(m *Model, text string) {
	for _, r := range text {
		m.Update(tea.KeyPressMsg{Code: r, Text: string(r)})
	}
}

func renderPlain(m *Model) string {
	view := m.View()
	return xansi.Strip(fmt.Sprint(view.Content))
}

func testUser(id, username string) *types.User {
	return &types.User{ID: id, Username: username, Email: strings.ToLower(username) + "@example.com"}
}

func testAdmin(id, username string) *types.User {
	user := testUser(id, username)
	user.Role = types.RoleAdmin
	return user
}

func approvedNote(id, title string) types.Note {
	return types.Note{
		ID:          id,
		Title:       title,
		SubjectName: "Operating Systems",
		CourseName:  "BTech",
		Semester:    "5",
		CollegeName: "IIT",
		Approved:    true,
		CreatedAt:   time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}
