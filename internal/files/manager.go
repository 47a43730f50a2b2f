package files

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"netmobcli/internal/config"
)

// Manager provides file management operations
type Manager struct {
	paths  *config.Paths
	logger *slog.Logger
}

// NewManager creates a new file manager instance
func NewManager(paths *config.Paths, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{paths: paths, logger: logger}
}

// FileExists checks if a file exists at the given path
func (m *Manager) FileExists(path string) bool {
	fullPath := m.resolvePath(path)
	_, err := os.Stat(fullPath)
	exists := err == nil

	m.logger.Debug("FileExists check",
		slog.String("path", path),
		slog.String("full_path", fullPath),
		slog.Bool("exists", exists))

	return exists
}

// ReadFile reads the entire content of a file
func (m *Manager) ReadFile(path string) ([]byte, error) {
	fullPath := m.resolvePath(path)
	m.logger.Debug("Reading file", slog.String("full_path", fullPath))
	return os.ReadFile(fullPath)
}

// WriteFile writes data through a temporary file in the target directory
// and renames it into place, so readers never see a partial file.
func (m *Manager) WriteFile(path string, data []byte) error {
	fullPath := m.resolvePath(path)

	m.logger.Debug("Writing file",
		slog.String("full_path", fullPath),
		slog.Int("size_bytes", len(data)))

	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(fullPath)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", fullPath, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", fullPath, err)
	}
	return os.Rename(tmp.Name(), fullPath)
}

// EnsureDirectory creates a directory if it doesn't exist
func (m *Manager) EnsureDirectory(path string) error {
	fullPath := m.resolvePath(path)
	if _, err := os.Stat(fullPath); os.IsNotExist(err) {
		m.logger.Info("Creating directory", slog.String("full_path", fullPath))
		return os.MkdirAll(fullPath, 0755)
	}
	return nil
}

// CleanPath returns the cleaned, resolved path
func (m *Manager) CleanPath(path string) string {
	return filepath.Clean(m.resolvePath(path))
}

// resolvePath resolves a path relative to the appropriate base directory
func (m *Manager) resolvePath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}

	switch {
	case strings.HasPrefix(path, "reports/"):
		return m.paths.GetReportPath(strings.TrimPrefix(path, "reports/"))
	case strings.HasPrefix(path, "output/"):
		return filepath.Join(m.paths.OutputDir, strings.TrimPrefix(path, "output/"))
	case strings.HasPrefix(path, "geo/"):
		return filepath.Join(m.paths.GeoDir, strings.TrimPrefix(path, "geo/"))
	case strings.HasPrefix(path, "logs/"):
		return filepath.Join(m.paths.LogsDir, strings.TrimPrefix(path, "logs/"))
	default:
		return filepath.Join(m.paths.DataDir, path)
	}
}
