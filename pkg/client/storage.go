package client

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"
)

// Storage keys shared with the browser pages
const (
	KeyUserMenu           = "userMenu"
	KeyJustLoggedOut      = "justLoggedOut"
	KeySessionInvalidated = "sessionInvalidated"
)

// Storage is a string key/value store with the semantics of browser web storage.
// Its content is advisory; nothing in it is trusted for authorization.
type Storage interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Remove(key string) error
	Clear() error
}

// Take reads key and deletes it (one-shot flag).
func Take(s Storage, key string) (string, bool) {
	v, ok := s.Get(key)
	if ok {
		_ = s.Remove(key)
	}
	return v, ok
}

// MemStorage lives as long as the process, like sessionStorage lives as long as the tab.
type MemStorage struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewMemStorage() *MemStorage {
	return &MemStorage{data: make(map[string]string)}
}

func (s *MemStorage) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	return v, ok
}

func (s *MemStorage) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

func (s *MemStorage) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

func (s *MemStorage) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = make(map[string]string)
	return nil
}

// FileStorage persists to a JSON file, like localStorage survives restarts.
type FileStorage struct {
	mu   sync.Mutex
	fs   afero.Fs
	path string
}

func NewFileStorage(fs afero.Fs, path string) *FileStorage {
	return &FileStorage{fs: fs, path: path}
}

func (s *FileStorage) load() (map[string]string, error) {
	data := make(map[string]string)
	raw, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return data, nil
		}
		return nil, err
	}
	if len(raw) == 0 {
		return data, nil
	}
	if err = json.Unmarshal(raw, &data); err != nil {
		return nil, err
	}
	return data, nil
}

func (s *FileStorage) save(data map[string]string) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	if err = s.fs.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err = afero.WriteFile(s.fs, tmp, raw, 0o600); err != nil {
		return err
	}
	return s.fs.Rename(tmp, s.path)
}

func (s *FileStorage) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := s.load()
	if err != nil {
		return "", false
	}
	v, ok := data[key]
	return v, ok
}

func (s *FileStorage) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := s.load()
	if err != nil {
		return err
	}
	data[key] = value
	return s.save(data)
}

func (s *FileStorage) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := data[key]; !ok {
		return nil
	}
	delete(data, key)
	return s.save(data)
}

func (s *FileStorage) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(map[string]string{})
}
