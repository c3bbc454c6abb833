// Package store loads the categorization rule files: category keyword rules,
// direct merchant-to-category mappings, and merchant noise tokens. Each file
// is optional; compiled-in defaults apply when a file is absent so the CLI
// works out of the box.
package store

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/sebascrugu/finanzas-email-tracker/internal/models"
)

// RuleStore manages loading of rule data from YAML files.
type RuleStore struct {
	CategoriesFile string
	ComerciosFile  string
	RuidoFile      string
}

// NewRuleStore creates a store for the given rule file paths.
func NewRuleStore(categoriesFile, comerciosFile, ruidoFile string) *RuleStore {
	return &RuleStore{
		CategoriesFile: categoriesFile,
		ComerciosFile:  comerciosFile,
		RuidoFile:      ruidoFile,
	}
}

// defaultCategories seed the keyword categorizer when no categories file
// exists.
var defaultCategories = []models.CategoryConfig{
	{Name: "Supermercado", Keywords: []string{"auto mercado", "walmart", "mas x menos", "pali", "maxi pali", "megasuper", "pricesmart"}},
	{Name: "Restaurantes", Keywords: []string{"subway", "mcdonald", "kfc", "taco bell", "pizza", "restaurante", "soda", "cafe"}},
	{Name: "Transporte", Keywords: []string{"uber", "didi", "gasolinera", "combustible", "servicentro", "peaje", "parqueo"}},
	{Name: "Servicios", Keywords: []string{"ice", "kolbi", "cnfl", "aya", "cable", "internet", "electricidad"}},
	{Name: "Streaming", Keywords: []string{"netflix", "spotify", "disney", "hbo", "youtube premium", "apple.com"}},
	{Name: "Salud", Keywords: []string{"farmacia", "fischel", "sucre", "clinica", "hospital", "laboratorio"}},
	{Name: "Transferencias", Keywords: []string{"sinpe", "transferencia"}},
	{Name: "Efectivo", Keywords: []string{"retiro", "atm", "cajero"}},
}

// LoadCategories reads the category keyword rules, falling back to the
// compiled-in defaults when the file does not exist.
func (s *RuleStore) LoadCategories() ([]models.CategoryConfig, error) {
	path, err := resolve(s.CategoriesFile)
	if err != nil {
		return defaultCategories, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading categories file %s: %w", path, err)
	}

	var wrapper struct {
		Categories []models.CategoryConfig `yaml:"categories"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return nil, fmt.Errorf("parsing categories file %s: %w", path, err)
	}
	if len(wrapper.Categories) == 0 {
		return defaultCategories, nil
	}
	return wrapper.Categories, nil
}

// LoadComercios reads the direct merchant→category mapping. Keys are matched
// case- and accent-insensitively by the categorizer. Missing file yields an
// empty map.
func (s *RuleStore) LoadComercios() (map[string]string, error) {
	path, err := resolve(s.ComerciosFile)
	if err != nil {
		return map[string]string{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading comercios file %s: %w", path, err)
	}

	mappings := make(map[string]string)
	if err := yaml.Unmarshal(data, &mappings); err != nil {
		return nil, fmt.Errorf("parsing comercios file %s: %w", path, err)
	}
	return mappings, nil
}

// LoadRuido reads extra merchant noise tokens to feed the normalizer.
// Missing file yields nil (the normalizer's defaults still apply).
func (s *RuleStore) LoadRuido() ([]string, error) {
	path, err := resolve(s.RuidoFile)
	if err != nil {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading ruido file %s: %w", path, err)
	}

	var wrapper struct {
		Tokens []string `yaml:"tokens"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return nil, fmt.Errorf("parsing ruido file %s: %w", path, err)
	}
	return wrapper.Tokens, nil
}

// resolve looks for a rule file in the standard locations.
func resolve(filename string) (string, error) {
	if filename == "" {
		return "", os.ErrNotExist
	}
	if filepath.IsAbs(filename) {
		if _, err := os.Stat(filename); err == nil {
			return filename, nil
		}
		return "", os.ErrNotExist
	}

	locations := []string{
		filename,
		filepath.Join("config", filename),
		filepath.Join("database", filename),
	}
	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc, nil
		}
	}
	return "", os.ErrNotExist
}
