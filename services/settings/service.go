// Package settings persists the user-supplied configuration: the upstream API
// key and the default event duration. A single small JSON blob on disk,
// written atomically.
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/afero"

	"fixturecal/models"
)

var (
	ErrStorageDirRequired = errors.New("storage directory not provided")

	// ErrMissingCredential is returned when an operation needs the upstream
	// key and none has been saved. Callers redirect the user to settings
	// entry instead of invoking the pipeline.
	ErrMissingCredential = errors.New("No API key configured. Add your Anthropic API key in the settings first.")

	ErrBadKeyPrefix = errors.New(`API key should start with "sk-ant-". Please check your key.`)
	ErrBadDuration  = errors.New("Duration must be between 15 and 480 minutes.")
)

// Service manages persistence and retrieval of the settings blob.
type Service struct {
	mu   sync.RWMutex
	fs   afero.Fs
	path string
	cur  models.Settings
}

// NewService creates a settings service storing data inside the provided
// directory. A nil fs uses the operating system filesystem; tests inject a
// memory-backed one.
func NewService(fs afero.Fs, storageDir string) (*Service, error) {
	if strings.TrimSpace(storageDir) == "" {
		return nil, ErrStorageDirRequired
	}
	if fs == nil {
		fs = afero.NewOsFs()
	}

	if err := fs.MkdirAll(storageDir, 0o755); err != nil {
		return nil, fmt.Errorf("create settings dir: %w", err)
	}

	svc := &Service{
		fs:   fs,
		path: filepath.Join(storageDir, "settings.json"),
		cur:  models.Settings{DefaultDuration: models.DefaultDurationMinutes},
	}

	if err := svc.load(); err != nil {
		return nil, err
	}

	return svc, nil
}

// Get returns the current settings.
func (s *Service) Get() models.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur
}

// RequireAPIKey returns the saved credential, or ErrMissingCredential.
func (s *Service) RequireAPIKey() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cur.APIKey == "" {
		return "", ErrMissingCredential
	}
	return s.cur.APIKey, nil
}

// View returns the API representation, with the key masked.
func (s *Service) View() models.SettingsView {
	s.mu.RLock()
	defer s.mu.RUnlock()

	view := models.SettingsView{
		APIKeySet:       s.cur.APIKey != "",
		DefaultDuration: s.cur.DefaultDuration,
	}
	if n := len(s.cur.APIKey); n > 12 {
		view.APIKeyHint = s.cur.APIKey[:10] + "…" + s.cur.APIKey[n-4:]
	}
	return view
}

// Update validates and persists new settings. The key must carry the known
// prefix; the duration must sit inside the allowed range.
func (s *Service) Update(settings models.Settings) error {
	settings.APIKey = strings.TrimSpace(settings.APIKey)
	if settings.APIKey == "" {
		return ErrMissingCredential
	}
	if !strings.HasPrefix(settings.APIKey, models.APIKeyPrefix) {
		return ErrBadKeyPrefix
	}
	if settings.DefaultDuration < models.MinDefaultDuration || settings.DefaultDuration > models.MaxDefaultDuration {
		return ErrBadDuration
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cur = settings
	return s.saveLocked()
}

// SeedAPIKey stores a key coming from the environment, without overwriting a
// key the user already saved. Used at startup for ANTHROPIC_API_KEY.
func (s *Service) SeedAPIKey(key string) error {
	key = strings.TrimSpace(key)
	if key == "" || !strings.HasPrefix(key, models.APIKeyPrefix) {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cur.APIKey != "" {
		return nil
	}
	s.cur.APIKey = key
	return s.saveLocked()
}

func (s *Service) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		if os.IsNotExist(err) || errors.Is(err, afero.ErrFileNotFound) {
			return nil
		}
		return fmt.Errorf("read settings: %w", err)
	}
	if len(data) == 0 {
		return nil
	}

	var loaded models.Settings
	if err := json.Unmarshal(data, &loaded); err != nil {
		return fmt.Errorf("decode settings: %w", err)
	}
	if loaded.DefaultDuration < models.MinDefaultDuration || loaded.DefaultDuration > models.MaxDefaultDuration {
		loaded.DefaultDuration = models.DefaultDurationMinutes
	}

	s.cur = loaded
	return nil
}

func (s *Service) saveLocked() error {
	data, err := json.MarshalIndent(s.cur, "", "  ")
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, data, 0o600); err != nil {
		return fmt.Errorf("write settings temp file: %w", err)
	}
	if err := s.fs.Rename(tmp, s.path); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("replace settings file: %w", err)
	}
	return nil
}
