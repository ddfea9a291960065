package auth

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// FileSessionStore keeps sessions in a single JSON document on disk.
type FileSessionStore struct {
	path string
	mu   sync.Mutex
}

func NewFileSessionStore(path string) (*FileSessionStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("session state file path is required")
	}
	return &FileSessionStore{path: path}, nil
}

func (s *FileSessionStore) Load() (map[string]Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]Session)
	b, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return out, nil
		}
		return nil, fmt.Errorf("read session state: %w", err)
	}
	if len(b) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("decode session state: %w", err)
	}
	for token, sess := range out {
		if strings.TrimSpace(token) == "" || sess.Token != token {
			delete(out, token)
		}
	}
	return out, nil
}

func (s *FileSessionStore) Save(sessions map[string]Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := json.MarshalIndent(sessions, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session state: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("mkdir session state dir: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return fmt.Errorf("write session state: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace session state: %w", err)
	}
	return nil
}
