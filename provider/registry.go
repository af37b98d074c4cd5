package provider

import (
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/streamforge/agentcore/model"
)

// Registry holds one Provider per tag, assembled once at startup.
type Registry struct {
	providers map[model.ProviderTag]Provider
}

// NewRegistry builds a Registry from a fixed set of providers. Two entries
// sharing a tag is a construction error handled by the last write winning;
// callers are expected to pass a tag-distinct set.
func NewRegistry(providers ...Provider) *Registry {
	r := &Registry{providers: make(map[model.ProviderTag]Provider, len(providers))}
	for _, p := range providers {
		r.providers[p.Identity().Tag] = p
	}
	return r
}

// Get returns the provider registered under tag, if any.
func (r *Registry) Get(tag model.ProviderTag) (Provider, bool) {
	p, ok := r.providers[tag]
	return p, ok
}

// ResolveBinary looks up a provider's CLI binary on PATH, falling back to
// its fixed fallback paths in order. Returns a ProviderError with kind
// "unavailable" if neither resolves — this is a construction-time
// failure; the orchestrator is never invoked in that case.
func ResolveBinary(id Identity) (string, error) {
	if path, err := exec.LookPath(id.BinaryName); err == nil {
		return path, nil
	}
	for _, candidate := range id.FallbackPaths {
		expanded := expandHome(candidate)
		if path, err := exec.LookPath(expanded); err == nil {
			return path, nil
		}
		if fileExists(expanded) {
			return expanded, nil
		}
	}
	return "", model.NewProviderError(string(id.Tag), "resolve_binary", model.ProviderErrorKindUnavailable,
		"binary \""+id.BinaryName+"\" not found on PATH or any fallback path", false, nil)
}

func fileExists(path string) bool {
	return statExists(path)
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := homeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
