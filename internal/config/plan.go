// Package config loads the search plan: which terms to search for and in
// which organizations.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Plan is the inbound list of terms and organizations.
// Both YAML and JSON files are accepted; the legacy codeStrings key is an
// alias for terms.
type Plan struct {
	Terms         []string `yaml:"terms"`
	CodeStrings   []string `yaml:"codeStrings"`
	Organizations []string `yaml:"organizations"`
}

// ErrNoTerms is returned when a plan has nothing to search for.
var ErrNoTerms = errors.New("search plan has no terms")

// LoadPlan reads a plan file from path.
func LoadPlan(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read search plan: %w", err)
	}
	var plan Plan
	if err := yaml.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("failed to unmarshal search plan: %w", err)
	}
	return &plan, nil
}

// Merge appends extra terms and organizations, e.g. from command line flags.
func (p *Plan) Merge(terms, orgs []string) {
	p.Terms = append(p.Terms, terms...)
	p.Organizations = append(p.Organizations, orgs...)
}

// Normalize folds codeStrings into terms, trims every entry and drops blanks
// and duplicates while keeping the first occurrence.
func (p *Plan) Normalize() error {
	terms := make([]string, 0, len(p.CodeStrings)+len(p.Terms))
	terms = append(terms, p.CodeStrings...)
	p.Terms = dedupe(append(terms, p.Terms...))
	p.CodeStrings = nil
	p.Organizations = dedupe(p.Organizations)
	if len(p.Terms) == 0 {
		return ErrNoTerms
	}
	return nil
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
