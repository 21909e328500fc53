package frontmatter

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// WordsPerMinute is the reading speed used for reading time estimates.
const WordsPerMinute = 200

// Meta is the typed front matter of a document. Unknown keys are kept in Extra.
type Meta struct {
	Title           string     `yaml:"title" json:"title,omitempty"`
	Description     string     `yaml:"description" json:"description,omitempty"`
	Slug            string     `yaml:"slug" json:"slug,omitempty"`
	Section         string     `yaml:"section" json:"section,omitempty"`
	Group           string     `yaml:"group" json:"group,omitempty"`
	Sidebar         string     `yaml:"sidebar" json:"sidebar,omitempty"`
	Order           *int       `yaml:"order" json:"order,omitempty"`
	SidebarPosition *int       `yaml:"sidebar_position" json:"sidebar_position,omitempty"`
	LastUpdated     string     `yaml:"last_updated" json:"last_updated,omitempty"`
	Draft           bool       `yaml:"draft" json:"draft,omitempty"`
	Authors         []Author   `yaml:"authors" json:"authors,omitempty"`
	Tags            StringList `yaml:"tags" json:"tags,omitempty"`
	RedirectFrom    StringList `yaml:"redirect_from" json:"redirect_from,omitempty"`
	Icon            string     `yaml:"icon" json:"icon,omitempty"`
	TabGroup        string     `yaml:"tab_group" json:"tab_group,omitempty"`
	Locale          string     `yaml:"locale" json:"locale,omitempty"`

	ReadingTime int `yaml:"-" json:"reading_time"`
	WordCount   int `yaml:"-" json:"word_count"`

	Extra map[string]any `yaml:",inline" json:"extra,omitempty"`
}

// Author is a document author. A plain string in front matter becomes both
// the id and the name.
type Author struct {
	ID   string `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
}

// UnmarshalYAML accepts either a scalar or an {id, name} mapping.
func (a *Author) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		a.ID, a.Name = value.Value, value.Value
		return nil
	case yaml.MappingNode:
		type plain Author
		var p plain
		if err := value.Decode(&p); err != nil {
			return err
		}
		*a = Author(p)
		if a.Name == "" {
			a.Name = a.ID
		}
		if a.ID == "" {
			a.ID = a.Name
		}
		return nil
	default:
		return fmt.Errorf("line %d: author must be a string or mapping", value.Line)
	}
}

// StringList decodes from a single scalar or a sequence of scalars.
type StringList []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (l *StringList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		if value.Tag == "!!null" || value.Value == "" {
			*l = nil
			return nil
		}
		*l = StringList{value.Value}
		return nil
	case yaml.SequenceNode:
		var items []string
		if err := value.Decode(&items); err != nil {
			return err
		}
		*l = items
		return nil
	default:
		return fmt.Errorf("line %d: expected string or list of strings", value.Line)
	}
}

// DecodeMeta decodes raw YAML front matter into Meta.
func DecodeMeta(raw []byte) (Meta, error) {
	var m Meta
	if len(bytes.TrimSpace(raw)) == 0 {
		return m, nil
	}
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return Meta{}, fmt.Errorf("decode front matter: %w", err)
	}
	return m, nil
}

// Position returns sidebar_position, then order, then fallback.
func (m Meta) Position(fallback int) int {
	if m.SidebarPosition != nil {
		return *m.SidebarPosition
	}
	if m.Order != nil {
		return *m.Order
	}
	return fallback
}

// SidebarGroup returns the custom sidebar group name, if any.
func (m Meta) SidebarGroup() string {
	if m.Sidebar != "" {
		return m.Sidebar
	}
	return m.Group
}

// SetReadingStats sets WordCount and ReadingTime (rounded up minutes) from body.
func (m *Meta) SetReadingStats(body string) {
	m.WordCount = len(strings.Fields(body))
	m.ReadingTime = (m.WordCount + WordsPerMinute - 1) / WordsPerMinute
}
