// Package storage persists named menu configurations. Load failures never
// escape this package as a non-empty result: callers always get a usable,
// possibly empty, list.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mchmarny/menubuilder/pkg/menu"
)

var (
	// ErrNotFound is returned when a configuration does not exist.
	ErrNotFound = errors.New("configuration not found")

	// ErrInvalidName is returned for names that cannot be stored.
	ErrInvalidName = errors.New("invalid configuration name")
)

// Repository loads and saves named configurations.
type Repository interface {
	// Load returns the items of name. On any error the returned list is empty
	// and non-nil.
	Load(name string) ([]menu.Item, error)

	// Save replaces the items of name.
	Save(name string, items []menu.Item) error

	// List returns the names of all stored configurations.
	List() ([]string, error)

	// Close releases resources held by the repository.
	Close() error
}

func validateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return fmt.Errorf("%q: %w", name, ErrInvalidName)
	}
	return nil
}

// Decode parses a configuration document.
func Decode(data []byte) ([]menu.Item, error) {
	var items []menu.Item
	if err := json.Unmarshal(data, &items); err != nil {
		return []menu.Item{}, fmt.Errorf("failed to decode configuration: %w", err)
	}
	if items == nil {
		items = []menu.Item{}
	}
	return items, nil
}

// Encode renders a configuration document.
func Encode(items []menu.Item) ([]byte, error) {
	if items == nil {
		items = []menu.Item{}
	}
	data, err := json.MarshalIndent(items, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode configuration: %w", err)
	}
	return data, nil
}

// yamlItem mirrors menu.Item with YAML field names.
type yamlItem struct {
	Label       string `yaml:"label"`
	Path        string `yaml:"path,omitempty"`
	Order       int    `yaml:"order"`
	Command     string `yaml:"command,omitempty"`
	CommandKind string `yaml:"commandKind,omitempty"`
	Icon        string `yaml:"icon,omitempty"`
	IsOptionBox bool   `yaml:"isOptionBox,omitempty"`
	IsDivider   bool   `yaml:"isDivider,omitempty"`
}

// ExportYAML writes items as a YAML sequence.
func ExportYAML(w io.Writer, items []menu.Item) error {
	out := make([]yamlItem, len(items))
	for i, it := range items {
		out[i] = yamlItem{
			Label:       it.Label,
			Path:        it.Path,
			Order:       it.Order,
			Command:     it.Command,
			CommandKind: string(it.CommandKind),
			Icon:        it.Icon,
			IsOptionBox: it.IsOptionBox,
			IsDivider:   it.IsDivider,
		}
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("failed to encode yaml: %w", err)
	}
	return enc.Close()
}
