// Package file is a single-file JSON store for running without Postgres.
// Every read-modify-write cycle holds an exclusive advisory lock on a sibling
// lock file, so several processes can share one data directory.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"github.com/gosuda/slackdone/internal/domain"
)

const (
	dataFile   = "slackdone.json"
	lockSuffix = ".lock"
	retryDelay = 25 * time.Millisecond
)

// Cipher seals tokens before they are written. *secrets.Vault satisfies it.
type Cipher interface {
	Encrypt(plaintext, scope string) (string, error)
	Decrypt(ciphertext, scope string) (string, error)
}

type workspaceRecord struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	BotToken  string    `json:"bot_token"`
	UserToken string    `json:"user_token,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type savedListRecord struct {
	ListID  string    `json:"list_id"`
	Title   string    `json:"title"`
	AddedAt time.Time `json:"added_at"`
}

type document struct {
	Workspaces []workspaceRecord            `json:"workspaces"`
	SavedLists map[string][]savedListRecord `json:"saved_lists"`
}

// Store implements the workspace and saved list repositories on one file.
type Store struct {
	path   string
	lock   *flock.Flock
	cipher Cipher

	// mu serializes goroutines of this process; the file lock covers other
	// processes.
	mu sync.Mutex

	workspaces *WorkspaceRepo
	savedLists *SavedListRepo
}

// Open creates dir if needed and returns a Store backed by dir/slackdone.json.
func Open(dir string, cipher Cipher) (*Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("file.Open: %w", err)
	}

	path := filepath.Join(dir, dataFile)
	s := &Store{
		path:   path,
		lock:   flock.New(path + lockSuffix),
		cipher: cipher,
	}
	s.workspaces = &WorkspaceRepo{s: s}
	s.savedLists = &SavedListRepo{s: s}
	return s, nil
}

// Path returns the data file location.
func (s *Store) Path() string { return s.path }

func (s *Store) Close() error {
	if err := s.lock.Close(); err != nil {
		return fmt.Errorf("file.Store.Close: %w", err)
	}
	return nil
}

func (s *Store) Workspaces() domain.WorkspaceRepository { return s.workspaces }
func (s *Store) SavedLists() domain.SavedListRepository { return s.savedLists }

// view runs fn on the current document under a shared lock.
func (s *Store) view(ctx context.Context, fn func(*document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.lock.TryRLockContext(ctx, retryDelay); err != nil {
		return fmt.Errorf("file.Store.view: lock: %w", err)
	}
	defer func() { _ = s.lock.Unlock() }()

	doc, err := s.read()
	if err != nil {
		return err
	}
	return fn(doc)
}

// update runs fn under the exclusive lock and persists the document when fn
// succeeds.
func (s *Store) update(ctx context.Context, fn func(*document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.lock.TryLockContext(ctx, retryDelay); err != nil {
		return fmt.Errorf("file.Store.update: lock: %w", err)
	}
	defer func() { _ = s.lock.Unlock() }()

	doc, err := s.read()
	if err != nil {
		return err
	}
	if err := fn(doc); err != nil {
		return err
	}
	return s.write(doc)
}

func (s *Store) read() (*document, error) {
	doc := &document{SavedLists: map[string][]savedListRecord{}}

	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return doc, nil
	}
	if err != nil {
		return nil, fmt.Errorf("file.Store.read: %w", err)
	}
	if len(raw) == 0 {
		return doc, nil
	}

	if err := json.Unmarshal(raw, doc); err != nil {
		return nil, fmt.Errorf("file.Store.read: %s: %w", s.path, err)
	}
	if doc.SavedLists == nil {
		doc.SavedLists = map[string][]savedListRecord{}
	}
	return doc, nil
}

// write replaces the data file atomically via a temp file and rename.
func (s *Store) write(doc *document) error {
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("file.Store.write: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), dataFile+".*.tmp")
	if err != nil {
		return fmt.Errorf("file.Store.write: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(append(raw, '\n')); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("file.Store.write: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("file.Store.write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("file.Store.write: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("file.Store.write: %w", err)
	}
	return nil
}
