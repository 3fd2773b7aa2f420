// Package lookup provides the id → label tables search contributors consult
// to render descriptions and resolve role ids.
//
// Tables is an immutable in-memory snapshot. It is filled once, either from a
// YAML fixture (LoadFile) or from the CRM database (Store.Load), and then
// shared read-only by every request.
package lookup

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Option-group names.
const (
	GroupActivityType     = "activity_type"
	GroupActivityStatus   = "activity_status"
	GroupEngagementIndex  = "engagement_index"
	GroupActivityContacts = "activity_contacts"
)

// Option names inside GroupActivityContacts.
const (
	RoleSource    = "Activity Source"
	RoleAssignees = "Activity Assignees"
	RoleTargets   = "Activity Targets"
)

// ErrNotFound is returned when a required lookup entry is missing.
var ErrNotFound = errors.New("lookup entry not found")

// Provider answers label and id lookups. Implementations must be safe for
// concurrent reads.
type Provider interface {
	ActivityTypeLabel(id string) (string, bool)
	// IsComponentActivityType reports whether the type belongs to a
	// component (CiviCase, CiviCampaign, ...) rather than core.
	IsComponentActivityType(id string) bool
	ActivityStatusLabel(id string) (string, bool)
	OptionLabel(group, value string) (string, bool)
	OptionValueByName(group, name string) (string, bool)
	TagName(id string) (string, bool)
	SurveyTitle(id string) (string, bool)
	CampaignTitle(id string) (string, bool)
}

// Option is one entry of an option group.
type Option struct {
	Value     string `yaml:"value" json:"value" db:"value"`
	Label     string `yaml:"label" json:"label" db:"label"`
	Name      string `yaml:"name,omitempty" json:"name,omitempty" db:"name"`
	Component bool   `yaml:"component,omitempty" json:"component,omitempty" db:"component"`
}

// Tables is the in-memory lookup snapshot.
type Tables struct {
	Groups    map[string][]Option `yaml:"option_groups" json:"option_groups"`
	Tags      map[string]string   `yaml:"tags" json:"tags"`
	Surveys   map[string]string   `yaml:"surveys" json:"surveys"`
	Campaigns map[string]string   `yaml:"campaigns" json:"campaigns"`
}

// NewTables returns an empty snapshot with all maps allocated.
func NewTables() *Tables {
	return &Tables{
		Groups:    make(map[string][]Option),
		Tags:      make(map[string]string),
		Surveys:   make(map[string]string),
		Campaigns: make(map[string]string),
	}
}

// Parse decodes a YAML fixture.
func Parse(data []byte) (*Tables, error) {
	t := NewTables()
	if err := yaml.Unmarshal(data, t); err != nil {
		return nil, fmt.Errorf("parse lookup tables: %w", err)
	}
	t.fill()
	return t, nil
}

// LoadFile reads a YAML fixture from disk.
func LoadFile(path string) (*Tables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read lookup tables: %w", err)
	}
	return Parse(data)
}

// fill replaces maps a fixture left nil.
func (t *Tables) fill() {
	if t.Groups == nil {
		t.Groups = make(map[string][]Option)
	}
	if t.Tags == nil {
		t.Tags = make(map[string]string)
	}
	if t.Surveys == nil {
		t.Surveys = make(map[string]string)
	}
	if t.Campaigns == nil {
		t.Campaigns = make(map[string]string)
	}
}

func (t *Tables) option(group, value string) (Option, bool) {
	for _, o := range t.Groups[group] {
		if o.Value == value {
			return o, true
		}
	}
	return Option{}, false
}

func (t *Tables) ActivityTypeLabel(id string) (string, bool) {
	return t.OptionLabel(GroupActivityType, id)
}

func (t *Tables) IsComponentActivityType(id string) bool {
	o, ok := t.option(GroupActivityType, id)
	return ok && o.Component
}

func (t *Tables) ActivityStatusLabel(id string) (string, bool) {
	return t.OptionLabel(GroupActivityStatus, id)
}

func (t *Tables) OptionLabel(group, value string) (string, bool) {
	o, ok := t.option(group, value)
	return o.Label, ok
}

func (t *Tables) OptionValueByName(group, name string) (string, bool) {
	for _, o := range t.Groups[group] {
		if o.Name == name {
			return o.Value, true
		}
	}
	return "", false
}

func (t *Tables) TagName(id string) (string, bool) {
	n, ok := t.Tags[id]
	return n, ok
}

func (t *Tables) SurveyTitle(id string) (string, bool) {
	n, ok := t.Surveys[id]
	return n, ok
}

func (t *Tables) CampaignTitle(id string) (string, bool) {
	n, ok := t.Campaigns[id]
	return n, ok
}

var _ Provider = (*Tables)(nil)
