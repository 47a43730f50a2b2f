package files

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"netmobcli/internal/catalog"
	"netmobcli/internal/config"
)

// FileInfo represents information about a discovered file
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
	IsDir   bool
}

// Discovery walks the traffic file tree
// {base}/{level}/{city}/{service}/{YYYYMMDD}/.
type Discovery struct {
	basePath string
}

// NewDiscovery creates a new file discovery instance
func NewDiscovery(basePath string) *Discovery {
	return &Discovery{basePath: basePath}
}

func (d *Discovery) resolve(dir string) string {
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(d.basePath, dir)
}

// FindTrafficFiles lists the counter files (*.txt) of a directory, by name.
func (d *Discovery) FindTrafficFiles(dir string) ([]FileInfo, error) {
	return d.FindFilesByPattern(dir, "*.txt")
}

// FindFilesByPattern finds files matching a glob pattern, sorted by name.
func (d *Discovery) FindFilesByPattern(dir string, pattern string) ([]FileInfo, error) {
	fullPath := d.resolve(dir)
	matches, err := filepath.Glob(filepath.Join(fullPath, pattern))
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
	}

	var files []FileInfo
	for _, match := range matches {
		info, err := os.Stat(match)
		if err != nil || info.IsDir() {
			continue
		}
		files = append(files, FileInfo{
			Path:    match,
			Name:    filepath.Base(match),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

// ListDirectories lists all subdirectories in the specified directory, by
// name.
func (d *Discovery) ListDirectories(dir string) ([]FileInfo, error) {
	fullPath := d.resolve(dir)
	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", fullPath, err)
	}

	var dirs []FileInfo
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		dirs = append(dirs, FileInfo{
			Path:    filepath.Join(fullPath, entry.Name()),
			Name:    entry.Name(),
			ModTime: info.ModTime(),
			IsDir:   true,
		})
	}
	sort.Slice(dirs, func(i, j int) bool { return dirs[i].Name < dirs[j].Name })
	return dirs, nil
}

func names(infos []FileInfo) []string {
	out := make([]string, len(infos))
	for i, f := range infos {
		out[i] = f.Name
	}
	return out
}

// Cities lists the city directories present at a level.
func (d *Discovery) Cities(level catalog.Level) ([]string, error) {
	dirs, err := d.ListDirectories(string(level))
	if err != nil {
		return nil, err
	}
	return names(dirs), nil
}

// Services lists the service directories of a city.
func (d *Discovery) Services(level catalog.Level, city string) ([]string, error) {
	dirs, err := d.ListDirectories(filepath.Join(string(level), city))
	if err != nil {
		return nil, err
	}
	return names(dirs), nil
}

// Days lists the day directories of a (city, service), ascending. Entries
// that are not YYYYMMDD dates are skipped.
func (d *Discovery) Days(level catalog.Level, city, service string) ([]time.Time, error) {
	dirs, err := d.ListDirectories(filepath.Join(string(level), city, service))
	if err != nil {
		return nil, err
	}

	var days []time.Time
	for _, dir := range dirs {
		day, err := time.Parse(config.DayLayout, dir.Name)
		if err != nil {
			continue
		}
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days, nil
}

// FilterDaysByRange keeps the days in [from, to], both inclusive.
func FilterDaysByRange(days []time.Time, from, to time.Time) []time.Time {
	from, to = catalog.Truncate(from), catalog.Truncate(to)
	var filtered []time.Time
	for _, day := range days {
		if !day.Before(from) && !day.After(to) {
			filtered = append(filtered, day)
		}
	}
	return filtered
}

// MissingDays returns the days of the observation window that have no
// directory for the (city, service).
func (d *Discovery) MissingDays(level catalog.Level, city, service string) ([]time.Time, error) {
	present, err := d.Days(level, city, service)
	if err != nil {
		return nil, err
	}
	have := make(map[time.Time]bool, len(present))
	for _, day := range present {
		have[day] = true
	}

	var missing []time.Time
	for _, day := range catalog.Days() {
		if !have[day] {
			missing = append(missing, day)
		}
	}
	return missing, nil
}
