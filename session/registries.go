package session

import (
	"sync"

	"github.com/streamforge/agentcore/model"
)

// RegistrySet owns one *Registry per provider tag, constructed lazily on
// first use: each provider instance is handed its own Registry by this
// set rather than sharing mutable state across provider kinds.
type RegistrySet struct {
	mu         sync.Mutex
	registries map[model.ProviderTag]*Registry
}

// NewRegistrySet constructs an empty RegistrySet.
func NewRegistrySet() *RegistrySet {
	return &RegistrySet{registries: make(map[model.ProviderTag]*Registry)}
}

// For returns the Registry owned by tag, creating one with sessionsFile on
// first use. Two calls with the same tag always return the same *Registry;
// two calls with different tags always return distinct registries, so
// sessions recorded under one provider are never visible under another.
func (s *RegistrySet) For(tag model.ProviderTag, sessionsFile string) *Registry {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.registries[tag]; ok {
		return r
	}
	r := New(sessionsFile)
	s.registries[tag] = r
	return r
}
