package models

// Category is the result of categorizing a transaction.
type Category struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// CategoryConfig is one category rule loaded from the YAML rule files:
// a category name plus the keywords that map a merchant or description to it.
type CategoryConfig struct {
	Name     string   `json:"name" yaml:"name"`
	Keywords []string `json:"keywords" yaml:"keywords"`
}
