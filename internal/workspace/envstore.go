package workspace

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/joho/godotenv"
)

// EnvStore reads and writes Settings in a .env file.
type EnvStore struct {
	mu   sync.Mutex
	path string
}

func NewEnvStore(path string) *EnvStore {
	return &EnvStore{path: path}
}

func (s *EnvStore) Path() string {
	return s.path
}

// Load returns the stored settings. A missing file yields zero Settings.
func (s *EnvStore) Load() (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	env, err := s.read()
	if err != nil {
		return Settings{}, err
	}
	return FromEnv(env), nil
}

// Save rewrites the managed keys and keeps every other key in the file.
func (s *EnvStore) Save(settings Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	env, err := s.read()
	if err != nil {
		return err
	}
	for k, v := range settings.ToEnv() {
		env[k] = v
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create env dir: %w", err)
	}
	if err := godotenv.Write(env, s.path); err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	return os.Chmod(s.path, 0o600)
}

func (s *EnvStore) read() (map[string]string, error) {
	env, err := godotenv.Read(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	return env, nil
}
