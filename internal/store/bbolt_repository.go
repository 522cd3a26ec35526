package store

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"

	"notedeck/internal/types"
)

var (
	bucketSession = []byte("session")
	keySession    = []byte("current")
)

type bboltRepository struct {
	db      *bolt.DB
	session SessionStore
}

func NewBboltRepository(path string) (Repository, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("repository db path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, err
	}
	if err := initBboltSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &bboltRepository{
		db:      db,
		session: &bboltSessionStore{db: db, now: time.Now},
	}, nil
}

func (r *bboltRepository) Session() SessionStore {
	return r.session
}

func (r *bboltRepository) Backend() string {
	return RepositoryBackendBbolt
}

func (r *bboltRepository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

func initBboltSchema(db *bolt.DB) error {
	return db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketSession)
		return err
	})
}

type bboltSessionStore struct {
	db  *bolt.DB
	now func() time.Time
}

func (s *bboltSessionStore) Load(ctx context.Context) (*types.SessionSnapshot, error) {
	snapshot := &types.SessionSnapshot{}
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSession)
		if b == nil {
			return nil
		}
		raw := b.Get(keySession)
		if len(raw) == 0 {
			return nil
		}
		return json.Unmarshal(raw, snapshot)
	})
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}

func (s *bboltSessionStore) Save(ctx context.Context, snapshot *types.SessionSnapshot) error {
	if snapshot == nil {
		return errors.New("snapshot is required")
	}
	out := cloneSnapshot(snapshot)
	out.SavedAt = s.now().UTC()
	raw, err := json.Marshal(out)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSession)
		if b == nil {
			return errors.New("session bucket missing")
		}
		return b.Put(keySession, raw)
	})
}

func (s *bboltSessionStore) Clear(ctx context.Context) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSession)
		if b == nil {
			return nil
		}
		return b.Delete(keySession)
	})
}
