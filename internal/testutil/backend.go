// Package testutil provides an in-memory stand-in for the notes platform
// backend so client and UI tests can exercise real HTTP round trips.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"notedeck/internal/types"
)

const sessionCookie = "access_token"

// CommentShape selects which add-comment response form the backend emits.
type CommentShape string

const (
	CommentShapeList   CommentShape = "list"
	CommentShapeSingle CommentShape = "single"
	CommentShapeRaw    CommentShape = "raw"
)

type Call struct {
	Method string
	Path   string
	Query  string
}

type failure struct {
	status  int
	message string
}

type Backend struct {
	server *httptest.Server

	mu           sync.Mutex
	notes        []*types.Note
	users        map[string]*types.User
	passwords    map[string]string
	tokens       map[string]string
	archived     map[string][]string
	calls        []Call
	failures     map[string]failure
	commentShape CommentShape
	now          func() time.Time
}

// NewBackend starts the fake server and closes it when t finishes.
func NewBackend(t testing.TB) *Backend {
	t.Helper()
	b := &Backend{
		users:        map[string]*types.User{},
		passwords:    map[string]string{},
		tokens:       map[string]string{},
		archived:     map[string][]string{},
		failures:     map[string]failure{},
		commentShape: CommentShapeList,
		now:          func() time.Time { return time.Now().UTC() },
	}
	b.server = httptest.NewServer(b.routes())
	t.Cleanup(b.server.Close)
	return b
}

func (b *Backend) URL() string {
	return b.server.URL
}

// AddUser registers an account and returns a token already valid for it.
func (b *Backend) AddUser(user types.User, password string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	u := user
	b.users[u.ID] = &u
	b.passwords[strings.ToLower(u.Email)] = password
	token := "token-" + u.ID
	b.tokens[token] = u.ID
	return token
}

func (b *Backend) AddNote(note types.Note) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.notes = append(b.notes, note.Clone())
}

func (b *Backend) Note(id string) *types.Note {
	b.mu.Lock()
	defer b.mu.Unlock()
	if note := b.findNote(id); note != nil {
		return note.Clone()
	}
	return nil
}

func (b *Backend) Archive(userID, noteID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.archived[userID] = append(b.archived[userID], noteID)
}

func (b *Backend) SetCommentShape(shape CommentShape) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.commentShape = shape
}

// FailNext makes the next request to method+path answer with status and a
// {"success":false,"message"} body.
func (b *Backend) FailNext(method, path string, status int, message string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures[method+" "+path] = failure{status: status, message: message}
}

func (b *Backend) Calls() []Call {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Call(nil), b.calls...)
}

// CallCount counts requests matching method and exact path.
func (b *Backend) CallCount(method, path string) int {
	count := 0
	for _, call := range b.Calls() {
		if call.Method == method && call.Path == path {
			count++
		}
	}
	return count
}

func (b *Backend) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(b.record)

	r.Get("/files/{id}", b.handleFile)
	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/signin", b.handleSignIn)
		r.Post("/auth/signup", b.handleSignUp)
		r.Post("/auth/google", b.handleGoogle)
		r.Get("/auth/signout", b.handleSignOut)

		r.Get("/notes", b.handleListNotes)
		r.Get("/uploading/get/{id}", b.handleGetNote)

		r.Group(func(r chi.Router) {
			r.Use(b.requireUser)
			r.Put("/notes/{id}/like", b.handleLike)
			r.Put("/notes/{id}/download", b.handleDownload)
			r.Post("/notes/{id}/comment", b.handleAddComment)
			r.Put("/notes/comments/{noteID}/{commentID}", b.handleEditComment)
			r.Delete("/notes/comments/{noteID}/{commentID}", b.handleDeleteComment)
			r.Post("/notes/archive/{id}", b.handleArchive)
			r.Post("/notes/remove-archive/{id}", b.handleRemoveArchive)
			r.Get("/notes/archived/{userID}", b.handleListArchived)
			r.Get("/user/uploads/{userID}", b.handleListUploads)
			r.Delete("/uploading/delete/{id}", b.handleDeleteUpload)
			r.Post("/user/update/{id}", b.handleUpdateUser)
			r.Delete("/user/delete/{id}", b.handleDeleteUser)
		})

		r.Group(func(r chi.Router) {
			r.Use(b.requireAdmin)
			r.Get("/admin/notes", b.handleAdminList)
			r.Put("/admin/notes/{id}/review", b.handleReview)
			r.Delete("/admin/notes/{id}", b.handleAdminDelete)
		})
	})
	return r
}

func (b *Backend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.calls = append(b.calls, Call{Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery})
		key := r.Method + " " + r.URL.Path
		fail, ok := b.failures[key]
		if ok {
			delete(b.failures, key)
		}
		b.mu.Unlock()
		if ok {
			writeJSON(w, fail.status, map[string]any{"success": false, "message": fail.message})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (b *Backend) currentUser(r *http.Request) *types.User {
	token := strings.TrimSpace(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))
	if token == "" {
		if cookie, err := r.Cookie(sessionCookie); err == nil {
			token = cookie.Value
		}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	userID, ok := b.tokens[token]
	if !ok {
		return nil
	}
	return b.users[userID]
}

func (b *Backend) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if b.currentUser(r) == nil {
			writeFailure(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (b *Backend) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := b.currentUser(r)
		if user == nil {
			writeFailure(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		if !user.IsAdmin() {
			writeFailure(w, http.StatusForbidden, "Admins only")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (b *Backend) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decode(w, r, &req) {
		return
	}
	b.mu.Lock()
	password, ok := b.passwords[strings.ToLower(req.Email)]
	var user *types.User
	if ok && password == req.Password {
		user = b.userByEmail(req.Email)
	}
	b.mu.Unlock()
	if user == nil {
		writeFailure(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	b.issueSession(w, user)
}

func (b *Backend) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decode(w, r, &req) {
		return
	}
	b.mu.Lock()
	if b.userByEmail(req.Email) != nil {
		b.mu.Unlock()
		writeFailure(w, http.StatusConflict, "User already exists")
		return
	}
	user := &types.User{ID: uuid.NewString(), Username: req.Username, Email: req.Email, CreatedAt: b.now()}
	b.users[user.ID] = user
	b.passwords[strings.ToLower(req.Email)] = req.Password
	b.mu.Unlock()
	b.issueSession(w, user)
}

func (b *Backend) handleGoogle(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name  string `json:"name"`
		Email string `json:"email"`
		Photo string `json:"photo"`
	}
	if !decode(w, r, &req) {
		return
	}
	b.mu.Lock()
	user := b.userByEmail(req.Email)
	if user == nil {
		user = &types.User{ID: uuid.NewString(), Username: req.Name, Email: req.Email, Avatar: req.Photo, CreatedAt: b.now()}
		b.users[user.ID] = user
	}
	b.mu.Unlock()
	b.issueSession(w, user)
}

func (b *Backend) handleSignOut(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: "", Path: "/", MaxAge: -1})
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "User has been logged out!"})
}

// issueSession answers with the user only; the credential travels in the
// cookie, as the real backend does.
func (b *Backend) issueSession(w http.ResponseWriter, user *types.User) {
	token := "token-" + user.ID
	b.mu.Lock()
	b.tokens[token] = user.ID
	out := *user
	b.mu.Unlock()
	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: token, Path: "/", HttpOnly: true})
	writeJSON(w, http.StatusOK, map[string]any{"user": out})
}

func (b *Backend) handleListNotes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	search := strings.ToLower(strings.TrimSpace(q.Get("search")))
	b.mu.Lock()
	out := []*types.Note{}
	for _, note := range b.notes {
		if !note.Approved {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(note.Title), search) &&
			!strings.Contains(strings.ToLower(note.Description), search) {
			continue
		}
		if !matchExact(q.Get("subject"), note.SubjectName) ||
			!matchExact(q.Get("course"), note.CourseName) ||
			!matchExact(q.Get("semester"), note.Semester) ||
			!matchExact(q.Get("college"), note.CollegeName) {
			continue
		}
		out = append(out, note.Clone())
	}
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"notes": out})
}

func (b *Backend) handleGetNote(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	note := b.findNote(chi.URLParam(r, "id"))
	if note != nil {
		note = note.Clone()
	}
	b.mu.Unlock()
	if note == nil {
		writeFailure(w, http.StatusNotFound, "Note not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "note": note})
}

func (b *Backend) handleLike(w http.ResponseWriter, r *http.Request) {
	user := b.currentUser(r)
	b.mu.Lock()
	defer b.mu.Unlock()
	note := b.findNote(chi.URLParam(r, "id"))
	if note == nil {
		writeFailure(w, http.StatusNotFound, "Note not found")
		return
	}
	if note.LikedBy(user.ID) {
		likes := note.Likes[:0]
		for _, id := range note.Likes {
			if id != user.ID {
				likes = append(likes, id)
			}
		}
		note.Likes = likes
	} else {
		note.Likes = append(note.Likes, user.ID)
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "likes": note.Likes})
}

func (b *Backend) handleDownload(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	note := b.findNote(chi.URLParam(r, "id"))
	if note == nil {
		writeFailure(w, http.StatusNotFound, "Note not found")
		return
	}
	note.DownloadCount++
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (b *Backend) handleAddComment(w http.ResponseWriter, r *http.Request) {
	user := b.currentUser(r)
	var req struct {
		Text string `json:"text"`
	}
	if !decode(w, r, &req) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	note := b.findNote(chi.URLParam(r, "id"))
	if note == nil {
		writeFailure(w, http.StatusNotFound, "Note not found")
		return
	}
	comment := types.Comment{
		ID:          uuid.NewString(),
		User:        user.ID,
		Username:    user.Username,
		Text:        req.Text,
		CommentedAt: b.now(),
	}
	note.Comments = append(note.Comments, comment)
	switch b.commentShape {
	case CommentShapeSingle:
		writeJSON(w, http.StatusCreated, map[string]any{"success": true, "comment": comment})
	case CommentShapeRaw:
		writeJSON(w, http.StatusCreated, map[string]any{"user": comment.User, "text": comment.Text})
	default:
		writeJSON(w, http.StatusCreated, map[string]any{"comments": note.Comments})
	}
}

func (b *Backend) handleEditComment(w http.ResponseWriter, r *http.Request) {
	b.withOwnComment(w, r, func(note *types.Note, idx int) {
		var req struct {
			Text string `json:"text"`
		}
		if !decode(w, r, &req) {
			return
		}
		note.Comments[idx].Text = req.Text
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Comment updated"})
	})
}

func (b *Backend) handleDeleteComment(w http.ResponseWriter, r *http.Request) {
	b.withOwnComment(w, r, func(note *types.Note, idx int) {
		note.Comments = append(note.Comments[:idx], note.Comments[idx+1:]...)
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Comment deleted"})
	})
}

func (b *Backend) withOwnComment(w http.ResponseWriter, r *http.Request, fn func(note *types.Note, idx int)) {
	user := b.currentUser(r)
	b.mu.Lock()
	defer b.mu.Unlock()
	note := b.findNote(chi.URLParam(r, "noteID"))
	if note == nil {
		writeFailure(w, http.StatusNotFound, "Note not found")
		return
	}
	commentID := chi.URLParam(r, "commentID")
	for i, comment := range note.Comments {
		if comment.ID != commentID {
			continue
		}
		if comment.User != user.ID {
			writeFailure(w, http.StatusForbidden, "You can only change your own comments")
			return
		}
		fn(note, i)
		return
	}
	writeFailure(w, http.StatusNotFound, "Comment not found")
}

func (b *Backend) handleArchive(w http.ResponseWriter, r *http.Request) {
	user := b.currentUser(r)
	id := chi.URLParam(r, "id")
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.findNote(id) == nil {
		writeFailure(w, http.StatusNotFound, "Note not found")
		return
	}
	for _, existing := range b.archived[user.ID] {
		if existing == id {
			writeJSON(w, http.StatusOK, map[string]any{"success": false, "message": "Note already archived"})
			return
		}
	}
	b.archived[user.ID] = append(b.archived[user.ID], id)
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Note archived"})
}

func (b *Backend) handleRemoveArchive(w http.ResponseWriter, r *http.Request) {
	user := b.currentUser(r)
	id := chi.URLParam(r, "id")
	b.mu.Lock()
	defer b.mu.Unlock()
	kept := b.archived[user.ID][:0]
	for _, existing := range b.archived[user.ID] {
		if existing != id {
			kept = append(kept, existing)
		}
	}
	b.archived[user.ID] = kept
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Removed from archive"})
}

func (b *Backend) handleListArchived(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	b.mu.Lock()
	out := []*types.Note{}
	for _, id := range b.archived[userID] {
		if note := b.findNote(id); note != nil {
			out = append(out, note.Clone())
		}
	}
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) handleListUploads(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	b.mu.Lock()
	out := []*types.Note{}
	for _, note := range b.notes {
		if note.Uploader != nil && note.Uploader.ID == userID {
			out = append(out, note.Clone())
		}
	}
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) handleDeleteUpload(w http.ResponseWriter, r *http.Request) {
	user := b.currentUser(r)
	id := chi.URLParam(r, "id")
	b.mu.Lock()
	defer b.mu.Unlock()
	note := b.findNote(id)
	if note == nil {
		writeFailure(w, http.StatusNotFound, "Note not found")
		return
	}
	if note.Uploader == nil || note.Uploader.ID != user.ID {
		writeFailure(w, http.StatusForbidden, "You can only delete your own uploads")
		return
	}
	b.removeNote(id)
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Note deleted"})
}

func (b *Backend) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	user := b.currentUser(r)
	if user.ID != chi.URLParam(r, "id") {
		writeFailure(w, http.StatusForbidden, "You can only update your own account")
		return
	}
	var req struct {
		Username        string `json:"username"`
		Email           string `json:"email"`
		Password        string `json:"password"`
		Avatar          string `json:"avatar"`
		CurrentPassword string `json:"currentPassword"`
	}
	if !decode(w, r, &req) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	oldEmail := strings.ToLower(user.Email)
	if b.passwords[oldEmail] != req.CurrentPassword {
		writeJSON(w, http.StatusOK, map[string]any{"success": false, "message": "Wrong password"})
		return
	}
	password := b.passwords[oldEmail]
	if req.Password != "" {
		password = req.Password
	}
	if req.Username != "" {
		user.Username = req.Username
	}
	if req.Avatar != "" {
		user.Avatar = req.Avatar
	}
	if req.Email != "" {
		delete(b.passwords, oldEmail)
		user.Email = req.Email
	}
	b.passwords[strings.ToLower(user.Email)] = password
	body := map[string]any{
		"success":   true,
		"_id":       user.ID,
		"username":  user.Username,
		"email":     user.Email,
		"avatar":    user.Avatar,
		"role":      user.Role,
		"createdAt": user.CreatedAt,
	}
	writeJSON(w, http.StatusOK, body)
}

func (b *Backend) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	user := b.currentUser(r)
	if user.ID != chi.URLParam(r, "id") {
		writeFailure(w, http.StatusForbidden, "You can only delete your own account")
		return
	}
	b.mu.Lock()
	delete(b.users, user.ID)
	delete(b.passwords, strings.ToLower(user.Email))
	for token, id := range b.tokens {
		if id == user.ID {
			delete(b.tokens, token)
		}
	}
	b.mu.Unlock()
	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: "", Path: "/", MaxAge: -1})
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "User has been deleted"})
}

func (b *Backend) handleAdminList(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	out := make([]*types.Note, 0, len(b.notes))
	for _, note := range b.notes {
		out = append(out, note.Clone())
	}
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) handleReview(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Approved bool `json:"approved"`
	}
	if !decode(w, r, &req) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	note := b.findNote(chi.URLParam(r, "id"))
	if note == nil {
		writeFailure(w, http.StatusNotFound, "Note not found")
		return
	}
	note.Approved = req.Approved
	writeJSON(w, http.StatusOK, note)
}

func (b *Backend) handleAdminDelete(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.removeNote(chi.URLParam(r, "id")) {
		writeFailure(w, http.StatusNotFound, "Note not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{})
}

func (b *Backend) handleFile(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/pdf")
	_, _ = fmt.Fprintf(w, "%%PDF-1.4\n%% note %s\n", chi.URLParam(r, "id"))
}

// FileURL is the download address the fake serves for a note id.
func (b *Backend) FileURL(id string) string {
	return b.server.URL + "/files/" + id
}

func (b *Backend) findNote(id string) *types.Note {
	for _, note := range b.notes {
		if note.ID == id {
			return note
		}
	}
	return nil
}

func (b *Backend) removeNote(id string) bool {
	for i, note := range b.notes {
		if note.ID == id {
			b.notes = append(b.notes[:i], b.notes[i+1:]...)
			return true
		}
	}
	return false
}

func (b *Backend) userByEmail(email string) *types.User {
	for _, user := range b.users {
		if strings.EqualFold(user.Email, email) {
			return user
		}
	}
	return nil
}

func matchExact(want, got string) bool {
	want = strings.TrimSpace(want)
	return want == "" || want == got
}

func decode(w http.ResponseWriter, r *http.Request, out any) bool {
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid json body")
		return false
	}
	return true
}

func writeFailure(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"success": false, "message": message})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
