package toolserver

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/streamforge/agentcore/model"
)

// SettingsFile supports providers that read tool
// server configuration from a workspace-scoped settings file rather than a
// command-line flag. Write backs up any prior content and merges the
// server map in; Cleanup restores the backup byte-for-byte, or removes
// the file (and the directory it created) if there was none.
type SettingsFile struct {
	// Path is {workspace}/.<providerDir>/settings.json.
	Path string
	// BackupPath is Path + "." + backupSuffix.
	BackupPath string

	hadPriorFile bool
	wrote        bool
	createdDir   string
}

// NewSettingsFile derives Path/BackupPath for providerDir under
// workspaceRoot, using backupSuffix (e.g. "bak") for the backup file.
func NewSettingsFile(workspaceRoot, providerDir, backupSuffix string) *SettingsFile {
	path := filepath.Join(workspaceRoot, "."+providerDir, "settings.json")
	return &SettingsFile{Path: path, BackupPath: path + "." + backupSuffix}
}

// Write merges cfg's servers into the settings file's "mcpServers" key,
// preserving any other top-level keys already present, after backing up
// prior content. Returns the path written (== s.Path), for callers that
// also want to point an env var at it.
func (s *SettingsFile) Write(cfg *model.ToolServerConfig) (string, error) {
	dir := filepath.Dir(s.Path)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", err
		}
		s.createdDir = dir
	}

	existing := make(map[string]any)
	prior, err := os.ReadFile(s.Path)
	switch {
	case err == nil:
		s.hadPriorFile = true
		if uerr := json.Unmarshal(prior, &existing); uerr != nil {
			existing = make(map[string]any)
		}
		if werr := os.WriteFile(s.BackupPath, prior, 0o644); werr != nil {
			return "", werr
		}
	case os.IsNotExist(err):
		s.hadPriorFile = false
	default:
		return "", err
	}
	s.wrote = true

	servers := map[string]model.ToolServerEntry{}
	if cfg != nil {
		servers = cfg.McpServers
	}
	existing["mcpServers"] = servers

	data, err := json.MarshalIndent(existing, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(s.Path, data, 0o644); err != nil {
		return "", err
	}
	return s.Path, nil
}

// Cleanup restores the backup byte-for-byte if one was taken, otherwise
// removes the settings file and, if Write created the directory, the
// directory too. Safe to call even when Write was never called or failed
// partway.
func (s *SettingsFile) Cleanup() {
	if s.hadPriorFile {
		if backup, err := os.ReadFile(s.BackupPath); err == nil {
			_ = os.WriteFile(s.Path, backup, 0o644)
			_ = os.Remove(s.BackupPath)
		}
		return
	}

	if s.wrote {
		_ = os.Remove(s.Path)
		_ = os.Remove(s.BackupPath)
	}
	if s.createdDir != "" {
		_ = os.Remove(s.createdDir) // no-op if non-empty
	}
}
