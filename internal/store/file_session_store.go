package store

import (
	"context"
	"errors"
	"os"
	"sync"
	"time"

	"notedeck/internal/types"
)

type FileSessionStore struct {
	path string
	mu   sync.Mutex
	now  func() time.Time
}

func NewFileSessionStore(path string) *FileSessionStore {
	return &FileSessionStore{path: path, now: time.Now}
}

// Load returns an empty snapshot when nothing has been saved yet.
func (s *FileSessionStore) Load(ctx context.Context) (*types.SessionSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := &types.SessionSnapshot{}
	if err := readCredentialFile(s.path, snapshot); err != nil {
		if errors.Is(err, os.ErrNotExist) || errors.Is(err, errEmptyFile) {
			return &types.SessionSnapshot{}, nil
		}
		return nil, err
	}
	return snapshot, nil
}

func (s *FileSessionStore) Save(ctx context.Context, snapshot *types.SessionSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if snapshot == nil {
		return errors.New("snapshot is required")
	}
	out := cloneSnapshot(snapshot)
	out.SavedAt = s.now().UTC()
	return writeCredentialFile(s.path, out)
}

func (s *FileSessionStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
