package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mchmarny/menubuilder/pkg/menu"
)

const fileExt = ".json"

// FileRepository stores every configuration as <dir>/<name>.json.
type FileRepository struct {
	dir string
}

// NewFileRepository returns a repository rooted at dir. The directory is
// created on first save.
func NewFileRepository(dir string) *FileRepository {
	return &FileRepository{dir: dir}
}

// Dir returns the directory holding the configurations.
func (r *FileRepository) Dir() string {
	return r.dir
}

func (r *FileRepository) path(name string) string {
	return filepath.Join(r.dir, strings.TrimSpace(name)+fileExt)
}

// Load implements Repository.
func (r *FileRepository) Load(name string) ([]menu.Item, error) {
	if err := validateName(name); err != nil {
		return []menu.Item{}, err
	}

	p := r.path(name)
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []menu.Item{}, fmt.Errorf("%s: %w", p, ErrNotFound)
		}
		return []menu.Item{}, fmt.Errorf("failed to read %s: %w", p, err)
	}

	items, err := Decode(data)
	if err != nil {
		return []menu.Item{}, fmt.Errorf("%s: %w", p, err)
	}
	slog.Debug("configuration loaded", "path", p, "items", len(items))
	return items, nil
}

// Save implements Repository.
func (r *FileRepository) Save(name string, items []menu.Item) error {
	if err := validateName(name); err != nil {
		return err
	}
	data, err := Encode(items)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", r.dir, err)
	}

	p := r.path(name)
	tmp := p + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, p); err != nil {
		return fmt.Errorf("failed to replace %s: %w", p, err)
	}
	slog.Debug("configuration saved", "path", p, "items", len(items))
	return nil
}

// List implements Repository.
func (r *FileRepository) List() ([]string, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list %s: %w", r.dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != fileExt {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), fileExt))
	}
	sort.Strings(names)
	return names, nil
}

// Close implements Repository.
func (r *FileRepository) Close() error {
	return nil
}
