package pathtree

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-faster/errors"
	"github.com/gofrs/flock"
)

// Store is a small key-value store for UI state that must survive restarts.
// Load returns ErrNotFound for keys that were never saved.
type Store interface {
	Load(key string) ([]byte, error)
	Save(key string, data []byte) error
}

// ErrNotFound is returned by Store.Load for unknown keys.
var ErrNotFound = errors.New("key not found")

// MemoryStore keeps values in memory. The zero value is ready to use.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (m *MemoryStore) Load(key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *MemoryStore) Save(key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		m.data = make(map[string][]byte)
	}
	m.data[key] = append([]byte(nil), data...)
	return nil
}

// FileStore keeps every key in one JSON object on disk:
//
//	{
//	  "fileTreeExpanded": ["reports", "reports/2024"]
//	}
//
// Access is serialized across processes with a lock file next to the state
// file, and writes go through a temp file and rename so readers never see a
// partial file.
type FileStore struct {
	path string
	lock *flock.Flock
}

// NewFileStore returns a store backed by path. The file is created on first Save.
func NewFileStore(path string) *FileStore {
	return &FileStore{
		path: path,
		lock: flock.New(path + ".lock"),
	}
}

// Path returns the state file location.
func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Load(key string) ([]byte, error) {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return nil, errors.Wrap(err, "create state dir")
	}
	if err := s.lock.RLock(); err != nil {
		return nil, errors.Wrapf(err, "lock %s", s.path)
	}
	defer s.lock.Unlock()

	all, err := s.readAll()
	if err != nil {
		return nil, err
	}
	v, ok := all[key]
	if !ok {
		return nil, ErrNotFound
	}
	return v, nil
}

func (s *FileStore) Save(key string, data []byte) error {
	if !json.Valid(data) {
		return errors.Errorf("value for %q is not valid JSON", key)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return errors.Wrap(err, "create state dir")
	}
	if err := s.lock.Lock(); err != nil {
		return errors.Wrapf(err, "lock %s", s.path)
	}
	defer s.lock.Unlock()

	all, err := s.readAll()
	if err != nil {
		// A corrupt file is replaced rather than blocking every later save.
		all = make(map[string]json.RawMessage)
	}
	all[key] = json.RawMessage(data)

	out, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal state")
	}
	return atomicWrite(s.path, out)
}

func (s *FileStore) readAll() (map[string]json.RawMessage, error) {
	all := make(map[string]json.RawMessage)
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return all, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", s.path)
	}
	if len(raw) == 0 {
		return all, nil
	}
	if err := json.Unmarshal(raw, &all); err != nil {
		return nil, errors.Wrapf(err, "parse %s", s.path)
	}
	return all, nil
}

func atomicWrite(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return errors.Wrap(err, "create temp file")
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, "write temp file")
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return errors.Wrap(err, "sync temp file")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "close temp file")
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return errors.Wrapf(err, "rename to %s", path)
	}
	return nil
}
