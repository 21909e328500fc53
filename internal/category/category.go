// Package category reads the per-folder _category_ sidecar files that label,
// order and group a docs folder in the sidebar.
package category

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileNames are the recognized sidecar names in lookup order.
var FileNames = []string{"_category_.json", "_category_.yml", "_category_.yaml"}

// Link describes what a category label points to.
type Link struct {
	Type string `json:"type" yaml:"type"`
	Slug string `json:"slug,omitempty" yaml:"slug,omitempty"`
}

// Config is the content of one sidecar file.
type Config struct {
	Label           string `json:"label,omitempty" yaml:"label,omitempty"`
	Position        *int   `json:"position,omitempty" yaml:"position,omitempty"`
	SidebarPosition *int   `json:"sidebar_position,omitempty" yaml:"sidebar_position,omitempty"`
	Link            *Link  `json:"link,omitempty" yaml:"link,omitempty"`
	Collapsed       *bool  `json:"collapsed,omitempty" yaml:"collapsed,omitempty"`
	Collapsible     *bool  `json:"collapsible,omitempty" yaml:"collapsible,omitempty"`
	Icon            string `json:"icon,omitempty" yaml:"icon,omitempty"`
	TabGroup        string `json:"tab_group,omitempty" yaml:"tab_group,omitempty"`
}

// EffectivePosition returns position, falling back to sidebar_position.
func (c Config) EffectivePosition() *int {
	if c.Position != nil {
		return c.Position
	}
	return c.SidebarPosition
}

// Load reads the sidecar in dir. It returns nil without error when the
// folder has none.
func Load(dir string) (*Config, error) {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		// #nosec G304 -- dir comes from walking the configured docs root
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		cfg, err := parse(name, data)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		return cfg, nil
	}
	return nil, nil
}

func parse(name string, data []byte) (*Config, error) {
	var cfg Config
	if strings.HasSuffix(name, ".json") {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
		return &cfg, nil
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadAll collects the sidecars of every folder below versionDir, keyed by
// the folder path relative to versionDir with "/" separators. The root
// folder and hidden folders are skipped. Unreadable or malformed sidecars
// are reported in the joined error while the rest are still returned.
func LoadAll(versionDir string) (map[string]Config, error) {
	out := make(map[string]Config)
	var errs []error
	walkErr := filepath.WalkDir(versionDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			errs = append(errs, err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if !d.IsDir() || path == versionDir {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			return fs.SkipDir
		}
		cfg, err := Load(path)
		if err != nil {
			errs = append(errs, err)
			return nil
		}
		if cfg == nil {
			return nil
		}
		rel, err := filepath.Rel(versionDir, path)
		if err != nil {
			errs = append(errs, err)
			return nil
		}
		out[filepath.ToSlash(rel)] = *cfg
		return nil
	})
	if walkErr != nil {
		errs = append(errs, walkErr)
	}
	return out, errors.Join(errs...)
}
