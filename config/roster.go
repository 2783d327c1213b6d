package config

import (
	"fmt"
	"os"

	yaml "go.yaml.in/yaml/v3"

	"github.com/shopdesk/promocast/broadcast"
	"github.com/shopdesk/promocast/tg"
)

// rosterFile is the on-disk shape of the department roster.
type rosterFile struct {
	Departments []rosterEntry `yaml:"departments"`
}

type rosterEntry struct {
	ID     string `yaml:"id"`
	Name   string `yaml:"name"`
	ChatID string `yaml:"chat_id"`
	// Active defaults to true when omitted.
	Active *bool `yaml:"active"`
}

// LoadRoster reads the YAML department roster and returns the broadcast
// targets it defines, in file order. An empty chat_id is allowed here;
// the dispatcher reports it per department at send time.
func LoadRoster(path string) ([]broadcast.Target, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read roster: %w", err)
	}

	var file rosterFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse roster: %w", err)
	}

	seen := make(map[string]struct{}, len(file.Departments))
	targets := make([]broadcast.Target, 0, len(file.Departments))
	for i, dep := range file.Departments {
		if dep.Name == "" {
			return nil, tg.NewValidationError("departments", fmt.Sprintf("entry %d has no name", i))
		}
		id := dep.ID
		if id == "" {
			id = dep.Name
		}
		if _, dup := seen[id]; dup {
			return nil, tg.NewValidationError("departments", fmt.Sprintf("duplicate id %q", id))
		}
		seen[id] = struct{}{}

		active := true
		if dep.Active != nil {
			active = *dep.Active
		}
		targets = append(targets, broadcast.Target{
			ID:     id,
			Name:   dep.Name,
			ChatID: dep.ChatID,
			Active: active,
		})
	}
	return targets, nil
}
