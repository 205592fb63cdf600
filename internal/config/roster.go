package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Roster is the set of courier IDs allowed to receive routes.
// A nil or empty roster permits every courier.
type Roster struct {
	ids map[string]struct{}
}

type rosterFile struct {
	Couriers []string `yaml:"couriers"`
}

func NewRoster(ids ...string) *Roster {
	r := &Roster{ids: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		r.ids[id] = struct{}{}
	}
	return r
}

// LoadRoster reads a YAML roster file of the form:
//
//	couriers:
//	  - leo
//	  - ana
//
// An empty path yields an open roster.
func LoadRoster(path string) (*Roster, error) {
	if path == "" {
		return NewRoster(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load roster: read %q: %w", path, err)
	}

	var f rosterFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("load roster: parse %q: %w", path, err)
	}

	return NewRoster(f.Couriers...), nil
}

// Permits reports whether courierID may receive a route.
func (r *Roster) Permits(courierID string) bool {
	if r == nil || len(r.ids) == 0 {
		return true
	}
	_, ok := r.ids[courierID]
	return ok
}

func (r *Roster) Len() int {
	if r == nil {
		return 0
	}
	return len(r.ids)
}
