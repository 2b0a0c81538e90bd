package permissions

import (
	"sync"
	"time"

	"github.com/luminor-dev/luminor/internal/domain/values"
)

// PermissionRequest is one plugin's request to perform a specific action.
// Requests are ephemeral value objects: they live for one check and its
// audit-log entry, nothing persists them.
type PermissionRequest struct {
	ID         values.RequestID  `json:"id"`
	PluginID   string            `json:"plugin_id"`
	Permission Permission        `json:"permission"`
	Action     string            `json:"action"`
	Context    map[string]string `json:"context,omitempty"`
	Timestamp  time.Time         `json:"timestamp"`
}

// ConsentDecision is the user's answer to a permission request.
type ConsentDecision struct {
	Granted   bool      `json:"granted"`
	Remember  bool      `json:"remember"`
	Reason    string    `json:"reason,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// ConsentStore persists remembered consent grants. The session grant set is
// always in-memory; whether "remember" decisions survive a restart depends
// entirely on the store implementation plugged in here.
type ConsentStore interface {
	// IsGranted reports whether a durable grant exists for the permission.
	IsGranted(pluginID string, perm Permission) (bool, error)
	// Record stores or clears a durable grant for the permission.
	Record(pluginID string, perm Permission, granted bool) error
}

// MemoryConsentStore is a process-lifetime ConsentStore. It backs the
// default session grant set and is the baseline for tests.
type MemoryConsentStore struct {
	mu     sync.RWMutex
	grants map[string]bool
}

// NewMemoryConsentStore creates an empty in-memory consent store.
func NewMemoryConsentStore() *MemoryConsentStore {
	return &MemoryConsentStore{grants: make(map[string]bool)}
}

func consentKey(pluginID string, perm Permission) string {
	return pluginID + ":" + string(perm)
}

// IsGranted reports whether the permission was granted this session.
func (s *MemoryConsentStore) IsGranted(pluginID string, perm Permission) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.grants[consentKey(pluginID, perm)], nil
}

// Record stores the grant decision in memory.
func (s *MemoryConsentStore) Record(pluginID string, perm Permission, granted bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if granted {
		s.grants[consentKey(pluginID, perm)] = true
	} else {
		delete(s.grants, consentKey(pluginID, perm))
	}
	return nil
}
