package store

import (
	"context"
	"errors"
	"strings"

	"notedeck/internal/config"
	"notedeck/internal/types"
)

const (
	RepositoryBackendFile  = config.StorageFile
	RepositoryBackendBbolt = config.StorageBbolt
)

type Repository interface {
	Session() SessionStore
	Backend() string
	Close() error
}

// SessionStore persists at most one signed-in session.
type SessionStore interface {
	Load(ctx context.Context) (*types.SessionSnapshot, error)
	Save(ctx context.Context, snapshot *types.SessionSnapshot) error
	Clear(ctx context.Context) error
}

type RepositoryPaths struct {
	SessionPath string
	DBPath      string
}

// Open picks the repository implementation for backend.
func Open(backend string, paths RepositoryPaths) (Repository, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case RepositoryBackendFile:
		if strings.TrimSpace(paths.SessionPath) == "" {
			return nil, errors.New("session file path is required")
		}
		return NewFileRepository(paths), nil
	case "", RepositoryBackendBbolt:
		return NewBboltRepository(paths.DBPath)
	default:
		return nil, errors.New("unknown storage backend: " + backend)
	}
}

// OpenFromConfig opens the repository configured for this user.
func OpenFromConfig(cfg config.Config) (Repository, error) {
	paths, err := config.ResolvePaths()
	if err != nil {
		return nil, err
	}
	return Open(cfg.StorageBackend(), RepositoryPaths{SessionPath: paths.SessionFile, DBPath: paths.SessionDB})
}

type fileRepository struct {
	session SessionStore
}

func NewFileRepository(paths RepositoryPaths) Repository {
	return &fileRepository{session: NewFileSessionStore(paths.SessionPath)}
}

func (r *fileRepository) Session() SessionStore {
	return r.session
}

func (r *fileRepository) Backend() string {
	return RepositoryBackendFile
}

func (r *fileRepository) Close() error {
	return nil
}

func cloneSnapshot(snapshot *types.SessionSnapshot) *types.SessionSnapshot {
	if snapshot == nil {
		return nil
	}
	out := *snapshot
	if snapshot.User != nil {
		user := *snapshot.User
		out.User = &user
	}
	return &out
}
