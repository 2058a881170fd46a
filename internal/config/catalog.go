package config

import (
	"fmt"
	"os"

	"enrollment-assessment/internal/domain"
	"gopkg.in/yaml.v3"
)

// LoadCatalog reads a question catalog from a YAML file:
//
//	questions:
//	  - category: Clarify
//	    prompt: "..."
//	    options:
//	      - {text: "...", score: 3}
func LoadCatalog(path string) (domain.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Catalog{}, fmt.Errorf("read catalog: %w", err)
	}
	var catalog domain.Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return domain.Catalog{}, fmt.Errorf("parse catalog: %w", err)
	}
	if err := catalog.Validate(); err != nil {
		return domain.Catalog{}, err
	}
	return catalog, nil
}
