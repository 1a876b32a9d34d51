package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SearchMessages holds the copy shown by the search screens.
type SearchMessages struct {
	Failed       string `yaml:"failed"`
	EmptyQuery   string `yaml:"empty_query"`
	EmptyCount   string `yaml:"empty_count"`
	ProfaneQuery string `yaml:"profane_query"`
}

// SimilarMessages holds the copy shown by the similar-recipes modal.
type SimilarMessages struct {
	Failed string `yaml:"failed"`
	Empty  string `yaml:"empty"`
}

// DetailMessages holds the copy shown by the recipe detail view.
type DetailMessages struct {
	Failed string `yaml:"failed"`
}

// Messages is the top-level user-facing copy loaded from YAML.
type Messages struct {
	Search  SearchMessages  `yaml:"search"`
	Similar SimilarMessages `yaml:"similar"`
	Detail  DetailMessages  `yaml:"detail"`
}

// DefaultMessages returns the built-in copy.
func DefaultMessages() *Messages {
	return &Messages{
		Search: SearchMessages{
			Failed:       "Retype your search",
			EmptyQuery:   "Enter something to search for",
			EmptyCount:   "Enter a number from 1 to 10",
			ProfaneQuery: "Search contains inappropriate language",
		},
		Similar: SimilarMessages{
			Failed: "Failed to load similar recipes",
			Empty:  "No similar recipes found",
		},
		Detail: DetailMessages{
			Failed: "Failed to fetch recipe details",
		},
	}
}

// LoadMessages reads and parses a YAML messages file. Entries left blank
// in the file keep their built-in value.
func LoadMessages(path string) (*Messages, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read messages file: %w", err)
	}

	var loaded Messages
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("failed to parse messages YAML: %w", err)
	}

	msgs := DefaultMessages()
	overlay(&msgs.Search.Failed, loaded.Search.Failed)
	overlay(&msgs.Search.EmptyQuery, loaded.Search.EmptyQuery)
	overlay(&msgs.Search.EmptyCount, loaded.Search.EmptyCount)
	overlay(&msgs.Search.ProfaneQuery, loaded.Search.ProfaneQuery)
	overlay(&msgs.Similar.Failed, loaded.Similar.Failed)
	overlay(&msgs.Similar.Empty, loaded.Similar.Empty)
	overlay(&msgs.Detail.Failed, loaded.Detail.Failed)

	return msgs, nil
}

func overlay(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
