package app

import (
	"context"
	"errors"
)

// requestKind names one fetch site. At most one request per kind is in
// flight; starting another aborts the previous one.
type requestKind string

const (
	requestNotes    requestKind = "notes"
	requestDetail   requestKind = "note_detail"
	requestUploads  requestKind = "uploads"
	requestArchived requestKind = "archived"
	requestAdmin    requestKind = "admin_notes"
	requestGoogle   requestKind = "google_signin"
)

type pendingRequest struct {
	ctx    context.Context
	cancel context.CancelFunc
	seq    int
}

// requestTracker hands out sequence numbers shared by every kind so a reply
// can be matched against the request that is still wanted.
type requestTracker struct {
	pending map[requestKind]pendingRequest
	lastSeq int
}

func newRequestTracker() *requestTracker {
	return &requestTracker{pending: map[requestKind]pendingRequest{}}
}

func (t *requestTracker) begin(kind requestKind) (context.Context, int) {
	t.abort(kind)
	t.lastSeq++
	ctx, cancel := context.WithCancel(context.Background())
	t.pending[kind] = pendingRequest{ctx: ctx, cancel: cancel, seq: t.lastSeq}
	return ctx, t.lastSeq
}

func (t *requestTracker) latest(kind requestKind, seq int) bool {
	req, ok := t.pending[kind]
	return ok && req.seq == seq
}

// context returns the live context of kind's request, for follow-up calls
// that belong to the same logical operation.
func (t *requestTracker) context(kind requestKind) context.Context {
	if req, ok := t.pending[kind]; ok {
		return req.ctx
	}
	return context.Background()
}

func (t *requestTracker) inFlight(kind requestKind) bool {
	_, ok := t.pending[kind]
	return ok
}

func (t *requestTracker) abort(kind requestKind) {
	req, ok := t.pending[kind]
	if !ok {
		return
	}
	req.cancel()
	delete(t.pending, kind)
}

func (m *Model) beginRequest(kind requestKind) (context.Context, int) {
	return m.requests.begin(kind)
}

// isLatestRequest reports whether a reply tagged seq is still wanted.
func (m *Model) isLatestRequest(kind requestKind, seq int) bool {
	return m.requests.latest(kind, seq)
}

// settleRequest releases kind once the reply to its latest request arrived.
func (m *Model) settleRequest(kind requestKind, seq int) {
	if m.requests.latest(kind, seq) {
		m.requests.abort(kind)
	}
}

func (m *Model) requestInFlight(kind requestKind) bool {
	return m.requests.inFlight(kind)
}

func (m *Model) abortRequest(kind requestKind) {
	m.requests.abort(kind)
}

// isAborted separates user-driven cancellation from real failures; aborted
// replies leave state alone.
func isAborted(err error) bool {
	return err != nil && errors.Is(err, context.Canceled)
}
