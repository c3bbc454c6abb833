// Package categorizer assigns spending categories to parsed transactions
// using two deterministic strategies evaluated in order:
//  1. Direct merchant-to-category mapping from the comercios YAML file
//  2. Keyword matching against category rules
//
// Rule-based extraction is the primary and only pass here; semantic or
// LLM-assisted categorization for ambiguous merchants lives outside this
// core. A transaction no strategy matches stays uncategorized rather than
// guessed at.
package categorizer

import (
	"strings"

	"github.com/sebascrugu/finanzas-email-tracker/internal/logging"
	"github.com/sebascrugu/finanzas-email-tracker/internal/models"
	"github.com/sebascrugu/finanzas-email-tracker/internal/store"
	"github.com/sebascrugu/finanzas-email-tracker/internal/textutils"
)

// FallbackCategory is reported when no strategy matches.
const FallbackCategory = "Sin clasificar"

// Transaction is the categorizer's view of a transaction: the normalized
// merchant name plus any descriptive text worth matching keywords against.
type Transaction struct {
	Comercio    string
	Descripcion string
}

// Categorizer holds the loaded rule tables. Built once; read-only
// thereafter, so concurrent Categorize calls are safe.
type Categorizer struct {
	categories []models.CategoryConfig
	comercios  map[string]string
	logger     logging.Logger
}

// New creates a Categorizer from the rule store. Load failures degrade to
// empty tables with a warning; categorization is best-effort by design.
func New(ruleStore *store.RuleStore, logger logging.Logger) *Categorizer {
	if logger == nil {
		logger = logging.GetLogger()
	}

	c := &Categorizer{
		comercios: make(map[string]string),
		logger:    logger,
	}

	categories, err := ruleStore.LoadCategories()
	if err != nil {
		logger.WithError(err).Warn("Failed to load category rules")
	} else {
		c.categories = categories
	}

	comercios, err := ruleStore.LoadComercios()
	if err != nil {
		logger.WithError(err).Warn("Failed to load merchant mappings")
	} else {
		for name, category := range comercios {
			c.comercios[textutils.FoldLower(name)] = category
		}
	}

	return c
}

// Categorize runs the strategy chain. The second return is false when no
// strategy matched and the fallback category was used.
func (c *Categorizer) Categorize(tx Transaction) (models.Category, bool) {
	if category, ok := c.direct(tx); ok {
		return category, true
	}
	if category, ok := c.keyword(tx); ok {
		return category, true
	}
	return models.Category{Name: FallbackCategory}, false
}

// direct is the exact merchant-name strategy.
func (c *Categorizer) direct(tx Transaction) (models.Category, bool) {
	name := textutils.FoldLower(strings.TrimSpace(tx.Comercio))
	if name == "" {
		return models.Category{}, false
	}
	if category, ok := c.comercios[name]; ok {
		c.logger.Debug("Categorized by direct mapping",
			logging.Field{Key: "comercio", Value: tx.Comercio},
			logging.Field{Key: "categoria", Value: category})
		return models.Category{Name: category}, true
	}
	return models.Category{}, false
}

// keyword matches category keywords against merchant and description,
// accent-insensitively.
func (c *Categorizer) keyword(tx Transaction) (models.Category, bool) {
	haystack := textutils.FoldLower(tx.Comercio + " " + tx.Descripcion)
	if strings.TrimSpace(haystack) == "" {
		return models.Category{}, false
	}

	for _, categoryConfig := range c.categories {
		for _, kw := range categoryConfig.Keywords {
			if strings.Contains(haystack, textutils.FoldLower(kw)) {
				c.logger.Debug("Categorized by keyword",
					logging.Field{Key: "comercio", Value: tx.Comercio},
					logging.Field{Key: "keyword", Value: kw},
					logging.Field{Key: "categoria", Value: categoryConfig.Name})
				return models.Category{Name: categoryConfig.Name}, true
			}
		}
	}
	return models.Category{}, false
}
