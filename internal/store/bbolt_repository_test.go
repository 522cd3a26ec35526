package store

import (
	"context"
	"path/filepath"
	"testing"

	"notedeck/internal/types"
)

func TestBboltSessionRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.db")
	repo, err := NewBboltRepository(path)
	if err != nil {
		t.Fatalf("NewBboltRepository: %v", err)
	}
	ctx := context.Background()

	empty, err := repo.Session().Load(ctx)
	if err != nil {
		t.Fatalf("load empty: %v", err)
	}
	if !empty.Empty() {
		t.Fatalf("expected empty snapshot, got %#v", empty)
	}

	snapshot := &types.SessionSnapshot{
		User:  &types.User{ID: "u1", Username: "ana", Role: types.RoleAdmin},
		Token: "tok-1",
	}
	if err := repo.Session().Save(ctx, snapshot); err != nil {
		t.Fatalf("save: %v", err)
	}
	if !snapshot.SavedAt.IsZero() {
		t.Fatalf("save must not mutate the caller's snapshot")
	}
	if err := repo.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := NewBboltRepository(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	loaded, err := reopened.Session().Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.User == nil || loaded.User.ID != "u1" || !loaded.User.IsAdmin() || loaded.Token != "tok-1" {
		t.Fatalf("unexpected snapshot: %#v", loaded)
	}
	if loaded.SavedAt.IsZero() {
		t.Fatalf("expected saved_at to be stamped")
	}

	if err := reopened.Session().Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	cleared, err := reopened.Session().Load(ctx)
	if err != nil {
		t.Fatalf("load after clear: %v", err)
	}
	if !cleared.Empty() {
		t.Fatalf("expected empty snapshot after clear, got %#v", cleared)
	}
}

func TestNewBboltRepositoryRequiresPath(t *testing.T) {
	if _, err := NewBboltRepository("  "); err == nil {
		t.Fatalf("expected error for blank path")
	}
}
