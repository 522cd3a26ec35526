package app

import (
	"net/http"
	"net/url"
	"strings"
	"testing"

	"notedeck/internal/testutil"
	"notedeck/internal/types"
)

func lastNotesQuery(t *testing.T, backend *testutil.Backend) url.Values {
	t.Helper()
	calls := backend.Calls()
	for i := len(calls) - 1; i >= 0; i-- {
		if calls[i].Method == http.MethodGet && calls[i].Path == "/api/notes" {
			values, err := url.ParseQuery(calls[i].Query)
			if err != nil {
				t.Fatalf("parse query %q: %v", calls[i].Query, err)
			}
			return values
		}
	}
	t.Fatalf("no GET /api/notes call recorded")
	return nil
}

func TestFetchNotesSendsAllFiveParameters(t *testing.T) {
	backend := testutil.NewBackend(t)
	backend.AddNote(approvedNote("n1", "Deadlocks"))
	m := newTestModel(t, backend, nil, "")

	drain(t, m, m.setQuery(types.NoteQuery{Search: "dead", Subject: "Operating Systems"}))

	values := lastNotesQuery(t, backend)
	for _, key := range []string{"search", "subject", "course", "semester", "college"} {
		if _, ok := values[key]; !ok {
			t.Fatalf("expected %q parameter to be present, got %v", key, values)
		}
	}
	if values.Get("search") != "dead" || values.Get("subject") != "Operating Systems" {
		t.Fatalf("unexpected query values: %v", values)
	}
	if values.Get("course") != "" || values.Get("college") != "" {
		t.Fatalf("expected unset filters to be empty, got %v", values)
	}
	if len(m.browse.notes) != 1 || m.browse.notes[0].ID != "n1" {
		t.Fatalf("expected listing to hold n1, got %#v", m.browse.notes)
	}
}

func TestClearFiltersResetsInputsAndRefetchesEverything(t *testing.T) {
	backend := testutil.NewBackend(t)
	backend.AddNote(approvedNote("n1", "Deadlocks"))
	m := newTestModel(t, backend, nil, "")
	m.browse.search.SetValue("dead")
	m.browse.filters[0].SetValue("Operating Systems")
	drain(t, m, m.setQuery(types.NoteQuery{Search: "dead", Subject: "Operating Systems"}))

	drain(t, m, press(m, "x"))

	values := lastNotesQuery(t, backend)
	for _, key := range []string{"search", "subject", "course", "semester", "college"} {
		if got, ok := values[key]; !ok || got[0] != "" {
			t.Fatalf("expected empty %q parameter, got %v", key, values)
		}
	}
	if m.browse.search.Value() != "" {
		t.Fatalf("expected search input cleared, got %q", m.browse.search.Value())
	}
	for _, filter := range m.browse.filters {
		if filter.Value() != "" || filter.Buffer() != "" {
			t.Fatalf("expected filter cleared, got value=%q buffer=%q", filter.Value(), filter.Buffer())
		}
	}
	if !m.browse.query.IsZero() {
		t.Fatalf("expected zero query, got %#v", m.browse.query)
	}
}

func TestFilterSelectionIssuesFilteredFetch(t *testing.T) {
	backend := testutil.NewBackend(t)
	backend.AddNote(approvedNote("n1", "Deadlocks"))
	other := approvedNote("n2", "Normal forms")
	other.SubjectName = "DBMS"
	backend.AddNote(other)
	m := newTestModel(t, backend, nil, "")
	drain(t, m, m.fetchNotes())

	press(m, "tab")
	press(m, "tab")
	typeText(m, "db")
	drain(t, m, press(m, "enter"))

	if m.browse.query.Subject != "DBMS" {
		t.Fatalf("expected subject filter DBMS, got %#v", m.browse.query)
	}
	if got := lastNotesQuery(t, backend).Get("subject"); got != "DBMS" {
		t.Fatalf("expected subject=DBMS on the wire, got %q", got)
	}
	if len(m.browse.notes) != 1 || m.browse.notes[0].ID != "n2" {
		t.Fatalf("expected only n2, got %#v", m.browse.notes)
	}
}

func TestFilterOptionsComeFromFirstListing(t *testing.T) {
	backend := testutil.NewBackend(t)
	backend.AddNote(approvedNote("n1", "Deadlocks"))
	m := newTestModel(t, backend, nil, "")
	drain(t, m, m.fetchNotes())

	options := m.browse.options.Options().For(types.FilterSubject)
	if len(options) != 1 || options[0] != "Operating Systems" {
		t.Fatalf("unexpected subject options: %v", options)
	}
	later := approvedNote("n2", "Normal forms")
	later.SubjectName = "DBMS"
	backend.AddNote(later)
	drain(t, m, m.fetchNotes())
	if got := m.browse.options.Options().For(types.FilterSubject); len(got) != 1 {
		t.Fatalf("expected cached options within ttl, got %v", got)
	}
}

func TestLikeWhileSignedOutRedirectsToSignIn(t *testing.T) {
	backend := testutil.NewBackend(t)
	backend.AddNote(approvedNote("n1", "Deadlocks"))
	m := newTestModel(t, backend, nil, "")
	drain(t, m, m.fetchNotes())

	drain(t, m, press(m, "l"))

	if m.route != routeSignIn {
		t.Fatalf("expected sign-in route, got %s", m.route)
	}
	if n := backend.CallCount(http.MethodPut, "/api/notes/n1/like"); n != 0 {
		t.Fatalf("expected no like request, got %d", n)
	}
}

func TestLikeRefetchesListing(t *testing.T) {
	backend := testutil.NewBackend(t)
	user := testUser("u1", "ana")
	token := backend.AddUser(*user, "secret1")
	backend.AddNote(approvedNote("n1", "Deadlocks"))
	m := newTestModel(t, backend, user, token)
	drain(t, m, m.fetchNotes())
	before := backend.CallCount(http.MethodGet, "/api/notes")

	drain(t, m, press(m, "l"))

	if n := backend.CallCount(http.MethodPut, "/api/notes/n1/like"); n != 1 {
		t.Fatalf("expected one like request, got %d", n)
	}
	if after := backend.CallCount(http.MethodGet, "/api/notes"); after != before+1 {
		t.Fatalf("expected a refetch after like, got %d -> %d", before, after)
	}
	if !m.browse.notes[0].LikedBy("u1") {
		t.Fatalf("expected refetched note to be liked by u1")
	}
}

func TestInlineCommentAppliesResultToSelectedNote(t *testing.T) {
	for _, shape := range []testutil.CommentShape{testutil.CommentShapeList, testutil.CommentShapeSingle, testutil.CommentShapeRaw} {
		t.Run(string(shape), func(t *testing.T) {
			backend := testutil.NewBackend(t)
			backend.SetCommentShape(shape)
			user := testUser("u1", "ana")
			token := backend.AddUser(*user, "secret1")
			backend.AddNote(approvedNote("n1", "Deadlocks"))
			m := newTestModel(t, backend, user, token)
			drain(t, m, m.fetchNotes())

			press(m, "enter")
			press(m, "c")
			typeText(m, "great notes")
			drain(t, m, press(m, "enter"))

			note := m.browse.notes[0]
			if len(note.Comments) != 1 || note.Comments[0].Text != "great notes" {
				t.Fatalf("expected one applied comment, got %#v", note.Comments)
			}
			if m.browse.composing {
				t.Fatalf("expected composer to close after posting")
			}
			if !strings.Contains(renderPlain(m), "1 comment") {
				t.Fatalf("expected inline panel to show the comment count")
			}
		})
	}
}

func TestListingErrorShowsBackendMessage(t *testing.T) {
	backend := testutil.NewBackend(t)
	backend.FailNext(http.MethodGet, "/api/notes", http.StatusInternalServerError, "database offline")
	m := newTestModel(t, backend, nil, "")

	drain(t, m, m.fetchNotes())

	if m.browse.err != "database offline" {
		t.Fatalf("expected backend message, got %q", m.browse.err)
	}
	if !strings.Contains(renderPlain(m), "database offline") {
		t.Fatalf("expected error in view")
	}
}
