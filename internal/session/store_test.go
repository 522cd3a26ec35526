package session

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"notedeck/internal/store"
	"notedeck/internal/types"
)

type memoryPersister struct {
	snapshot *types.SessionSnapshot
	saves    int
	clears   int
	loadErr  error
}

func (m *memoryPersister) Load(context.Context) (*types.SessionSnapshot, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	if m.snapshot == nil {
		return &types.SessionSnapshot{}, nil
	}
	return m.snapshot, nil
}

func (m *memoryPersister) Save(_ context.Context, snapshot *types.SessionSnapshot) error {
	m.saves++
	m.snapshot = snapshot
	return nil
}

func (m *memoryPersister) Clear(context.Context) error {
	m.clears++
	m.snapshot = nil
	return nil
}

func jwtWithExpiry(t *testing.T, exp time.Time) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("backend-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return token
}

func TestDispatchPersistsIdentityChanges(t *testing.T) {
	ctx := context.Background()
	persister := &memoryPersister{}
	s := NewStore(WithPersister(persister))

	s.Dispatch(ctx, SignInStart())
	if persister.saves != 0 {
		t.Fatalf("start must not persist")
	}
	s.Dispatch(ctx, SignInSuccess(&types.User{ID: "u1"}, "tok"))
	if persister.saves != 1 || persister.snapshot.Token != "tok" || persister.snapshot.User.ID != "u1" {
		t.Fatalf("unexpected persisted snapshot: %#v", persister.snapshot)
	}
	s.Dispatch(ctx, SignInFailure("nope"))
	if persister.saves != 1 {
		t.Fatalf("failure must not persist")
	}
	s.Dispatch(ctx, SignOutSuccess())
	if persister.clears != 1 || persister.snapshot != nil {
		t.Fatalf("sign out should clear persistence")
	}
}

func TestSubscribersSeeEveryDispatch(t *testing.T) {
	s := NewStore()
	var seen []State
	s.Subscribe(func(state State) { seen = append(seen, state) })
	s.Dispatch(context.Background(), SignInStart())
	s.Dispatch(context.Background(), SignInFailure("Invalid credentials"))
	if len(seen) != 2 || !seen[0].Loading || seen[1].Err != "Invalid credentials" {
		t.Fatalf("unexpected notifications: %#v", seen)
	}
}

func TestRestoreHydratesValidSession(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	token := jwtWithExpiry(t, now.Add(time.Hour))
	persister := &memoryPersister{snapshot: &types.SessionSnapshot{User: &types.User{ID: "u1"}, Token: token}}
	s := NewStore(WithPersister(persister), WithClock(func() time.Time { return now }))

	state, err := s.Restore(context.Background())
	if err != nil {
		t.Fatalf("Restore error: %v", err)
	}
	if state.UserID() != "u1" || state.Token != token {
		t.Fatalf("unexpected state: %#v", state)
	}
	if persister.saves != 0 {
		t.Fatalf("restore must not write back")
	}
}

func TestRestoreDropsExpiredToken(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	persister := &memoryPersister{snapshot: &types.SessionSnapshot{
		User:  &types.User{ID: "u1"},
		Token: jwtWithExpiry(t, now.Add(-time.Minute)),
	}}
	s := NewStore(WithPersister(persister), WithClock(func() time.Time { return now }))

	state, err := s.Restore(context.Background())
	if err != nil {
		t.Fatalf("Restore error: %v", err)
	}
	if state.SignedIn() {
		t.Fatalf("expired session should not be restored")
	}
	if persister.clears != 1 {
		t.Fatalf("expected expired snapshot cleared")
	}
}

func TestRestoreReportsLoadError(t *testing.T) {
	s := NewStore(WithPersister(&memoryPersister{loadErr: errors.New("disk")}))
	if _, err := s.Restore(context.Background()); err == nil {
		t.Fatalf("expected load error")
	}
}

func TestStoreWithBboltRepository(t *testing.T) {
	repo, err := store.NewBboltRepository(filepath.Join(t.TempDir(), "session.db"))
	if err != nil {
		t.Fatalf("repo: %v", err)
	}
	defer repo.Close()
	ctx := context.Background()

	first := NewStore(WithPersister(repo.Session()))
	first.Dispatch(ctx, SignUpSuccess(&types.User{ID: "u9", Username: "new"}, "opaque"))

	second := NewStore(WithPersister(repo.Session()))
	state, err := second.Restore(ctx)
	if err != nil {
		t.Fatalf("Restore error: %v", err)
	}
	if state.UserID() != "u9" || state.Token != "opaque" {
		t.Fatalf("unexpected restored state: %#v", state)
	}
}
