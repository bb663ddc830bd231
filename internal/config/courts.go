package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// CourtMapping pins a court identifier to the portal's cascading
// jurisdiction dropdowns. Without a mapping the navigator falls back to the
// first enumerable option for district, complex and establishment, which is
// an approximation and not a guarantee that the requested court is targeted.
type CourtMapping struct {
	State         string `json:"state"`
	District      string `json:"district"`
	CourtComplex  string `json:"court_complex"`
	Establishment string `json:"establishment"`
}

// defaultCourtMappings covers the jurisdictions verified by hand so far.
// Additional courts are supplied via COURT_MAP_FILE.
var defaultCourtMappings = map[string]CourtMapping{
	"delhi_district": {State: "Delhi"},
}

// CourtMappings resolves court identifiers to portal selections
type CourtMappings struct {
	mappings map[string]CourtMapping
}

// LoadCourtMappings loads the court mapping table, merging an optional JSON
// file pointed at by COURT_MAP_FILE over the built-in defaults.
func LoadCourtMappings() (*CourtMappings, error) {
	mappings := make(map[string]CourtMapping, len(defaultCourtMappings))
	for id, m := range defaultCourtMappings {
		mappings[id] = m
	}

	if path := os.Getenv("COURT_MAP_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read court map file: %w", err)
		}
		var fromFile map[string]CourtMapping
		if err := json.Unmarshal(data, &fromFile); err != nil {
			return nil, fmt.Errorf("failed to parse court map file: %w", err)
		}
		for id, m := range fromFile {
			mappings[id] = m
		}
	}

	return &CourtMappings{mappings: mappings}, nil
}

// Lookup returns the mapping for a court identifier, if one is configured
func (c *CourtMappings) Lookup(courtName string) (CourtMapping, bool) {
	m, ok := c.mappings[courtName]
	return m, ok
}

// IDs returns the configured court identifiers in sorted order
func (c *CourtMappings) IDs() []string {
	ids := make([]string, 0, len(c.mappings))
	for id := range c.mappings {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
