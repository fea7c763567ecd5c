package config

import (
	"errors"
	"os"

	"gopkg.in/yaml.v3"
)

// Synonyms maps a query term to related terms the keyword retriever adds
// for recall on known topics. The table is deployment data, not logic:
// institutions override it with a YAML file of the form
//
//	care: [continuous, assessment, reduction, experience]
//	attendance: [waiver, participation, present]
type Synonyms map[string][]string

// DefaultSynonyms covers the policy topics the original deployment shipped
// with.
func DefaultSynonyms() Synonyms {
	return Synonyms{
		"care":          {"continuous", "assessment", "reduction", "experience"},
		"attendance":    {"waiver", "participation", "present"},
		"certification": {"certificate", "course", "completion"},
		"policy":        {"guideline", "rule", "procedure"},
	}
}

// LoadSynonyms reads the synonym table from path. An empty path or a
// missing file yields the built-in defaults.
func LoadSynonyms(path string) (Synonyms, error) {
	if path == "" {
		return DefaultSynonyms(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultSynonyms(), nil
		}
		return nil, err
	}
	var syn Synonyms
	if err := yaml.Unmarshal(data, &syn); err != nil {
		return nil, err
	}
	return syn, nil
}
