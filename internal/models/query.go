package models

import (
	"errors"
	"fmt"
	"strings"
)

const (
	DefaultYear    = 2019
	DefaultDataset = "acs/acs5"

	// Wildcard selects every area at a geography level.
	Wildcard = "*"
)

// Geography levels understood by the census API
const (
	LevelState      = "state"
	LevelCounty     = "county"
	LevelTract      = "tract"
	LevelBlockGroup = "block group"
)

// ErrNoVariables is returned when a query asks for no variables.
var ErrNoVariables = errors.New("at least one variable is required")

// Geography selects the areas a query returns
type Geography struct {
	Level      string `json:"level"`
	State      string `json:"state,omitempty"`
	County     string `json:"county,omitempty"`
	Tract      string `json:"tract,omitempty"`
	BlockGroup string `json:"block_group,omitempty"`
}

// NewGeography returns a geography for the given level with every selector set to the wildcard.
func NewGeography(level string) Geography {
	return Geography{Level: level}
}

func selector(s string) string {
	if s == "" {
		return Wildcard
	}
	return s
}

// For returns the value of the "for" query parameter.
func (g Geography) For() string {
	switch g.Level {
	case LevelState:
		return "state:" + selector(g.State)
	case LevelCounty:
		return "county:" + selector(g.County)
	case LevelTract:
		return "tract:" + selector(g.Tract)
	case LevelBlockGroup:
		return "block group:" + selector(g.BlockGroup)
	default:
		return g.Level + ":" + Wildcard
	}
}

// In returns the value of the "in" query parameter, empty when the level takes none.
func (g Geography) In() string {
	switch g.Level {
	case LevelCounty:
		return "state:" + selector(g.State)
	case LevelTract:
		return fmt.Sprintf("state:%s county:%s", selector(g.State), selector(g.County))
	case LevelBlockGroup:
		return fmt.Sprintf("state:%s county:%s tract:%s", selector(g.State), selector(g.County), selector(g.Tract))
	default:
		return ""
	}
}

func (g Geography) String() string {
	if in := g.In(); in != "" {
		return g.For() + " in " + in
	}
	return g.For()
}

// Query describes one request against the census data API
type Query struct {
	Year      int       `json:"year"`
	Dataset   string    `json:"dataset"`
	Variables []string  `json:"variables"`
	Geography Geography `json:"geography"`
	// Key is sent as-is; the API accepts keyless requests at low volume.
	Key string `json:"-"`
	// RUCA requests a tract-level join with the USDA rural-urban commuting area codes.
	RUCA bool `json:"ruca,omitempty"`
}

// NewQuery builds a query against the default year and dataset.
func NewQuery(variables []string, area string, apiKey string) Query {
	return Query{
		Year:      DefaultYear,
		Dataset:   DefaultDataset,
		Variables: variables,
		Geography: NewGeography(area),
		Key:       apiKey,
	}
}

// Validate ensures all required fields are present and valid
func (q *Query) Validate() error {
	if len(q.Variables) == 0 {
		return ErrNoVariables
	}
	for i, v := range q.Variables {
		if strings.TrimSpace(v) == "" {
			return fmt.Errorf("variable at index %d is empty", i)
		}
	}
	if q.Year <= 0 {
		return fmt.Errorf("invalid year: %d", q.Year)
	}
	if q.Dataset == "" {
		return fmt.Errorf("dataset is required")
	}
	if q.Geography.Level == "" {
		return fmt.Errorf("geography level is required")
	}
	return nil
}
