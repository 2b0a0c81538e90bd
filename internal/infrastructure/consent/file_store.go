package consent

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/goccy/go-yaml"

	"github.com/luminor-dev/luminor/internal/domain/permissions"
)

// FileStore provides file-based persistence for consent decisions.
// It implements permissions.ConsentStore.
type FileStore struct {
	mu         sync.Mutex
	configPath string
}

// NewFileStore creates a new FileStore.
func NewFileStore(configPath string) *FileStore {
	return &FileStore{
		configPath: configPath,
	}
}

// ConfigPath returns the path to the consent file.
func (s *FileStore) ConfigPath() string {
	return s.configPath
}

// consentFile represents the YAML structure of the consent file.
type consentFile struct {
	Grants []grantRecord `yaml:"grants"`
}

type grantRecord struct {
	Plugin     string `yaml:"plugin"`
	Permission string `yaml:"permission"`
	Granted    bool   `yaml:"granted"`
}

// IsGranted reports whether a recorded grant exists for the plugin and
// permission. A missing file means nothing was ever granted.
func (s *FileStore) IsGranted(pluginID string, perm permissions.Permission) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, err := s.load()
	if err != nil {
		return false, err
	}
	for _, g := range cfg.Grants {
		if g.Plugin == pluginID && g.Permission == perm.String() {
			return g.Granted, nil
		}
	}
	return false, nil
}

// Record persists a consent decision, replacing any earlier record for
// the same plugin and permission.
func (s *FileStore) Record(pluginID string, perm permissions.Permission, granted bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, err := s.load()
	if err != nil {
		return err
	}

	replaced := false
	for i, g := range cfg.Grants {
		if g.Plugin == pluginID && g.Permission == perm.String() {
			cfg.Grants[i].Granted = granted
			replaced = true
			break
		}
	}
	if !replaced {
		cfg.Grants = append(cfg.Grants, grantRecord{
			Plugin:     pluginID,
			Permission: perm.String(),
			Granted:    granted,
		})
	}

	return s.save(cfg)
}

func (s *FileStore) load() (*consentFile, error) {
	if _, err := os.Stat(s.configPath); os.IsNotExist(err) {
		return &consentFile{}, nil
	}

	data, err := os.ReadFile(s.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read consent file: %w", err)
	}

	var cfg consentFile
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse consent file: %w", err)
	}
	return &cfg, nil
}

func (s *FileStore) save(cfg *consentFile) error {
	dir := filepath.Dir(s.configPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create consent directory: %w", err)
	}

	data, err := yaml.MarshalWithOptions(cfg, yaml.IndentSequence(true))
	if err != nil {
		return fmt.Errorf("failed to marshal consent file: %w", err)
	}

	return os.WriteFile(s.configPath, data, 0o600)
}
