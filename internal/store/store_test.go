package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCategoriesDefaults(t *testing.T) {
	s := NewRuleStore("", "", "")

	categories, err := s.LoadCategories()

	require.NoError(t, err)
	assert.NotEmpty(t, categories)

	names := make([]string, 0, len(categories))
	for _, c := range categories {
		names = append(names, c.Name)
	}
	assert.Contains(t, names, "Supermercado")
	assert.Contains(t, names, "Transferencias")
}

func TestLoadCategoriesFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "categorias.yaml")
	content := `categories:
  - name: Mascotas
    keywords:
      - veterinaria
      - pet shop
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	s := NewRuleStore(path, "", "")
	categories, err := s.LoadCategories()

	require.NoError(t, err)
	require.Len(t, categories, 1)
	assert.Equal(t, "Mascotas", categories[0].Name)
	assert.Equal(t, []string{"veterinaria", "pet shop"}, categories[0].Keywords)
}

func TestLoadCategoriesInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "categorias.yaml")
	require.NoError(t, os.WriteFile(path, []byte("categories: [unclosed"), 0o600))

	s := NewRuleStore(path, "", "")
	_, err := s.LoadCategories()

	assert.Error(t, err)
}

func TestLoadComercios(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "comercios.yaml")
	require.NoError(t, os.WriteFile(path,
		[]byte("Auto Mercado: Supermercado\nNetflix: Streaming\n"), 0o600))

	s := NewRuleStore("", path, "")
	mappings, err := s.LoadComercios()

	require.NoError(t, err)
	assert.Equal(t, "Supermercado", mappings["Auto Mercado"])
	assert.Equal(t, "Streaming", mappings["Netflix"])
}

func TestLoadComerciosMissingFile(t *testing.T) {
	s := NewRuleStore("", filepath.Join(t.TempDir(), "nope.yaml"), "")

	mappings, err := s.LoadComercios()

	require.NoError(t, err)
	assert.Empty(t, mappings)
}

func TestLoadRuido(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ruido.yaml")
	require.NoError(t, os.WriteFile(path,
		[]byte("tokens:\n  - SUCURSAL\n  - AGENCIA\n"), 0o600))

	s := NewRuleStore("", "", path)
	tokens, err := s.LoadRuido()

	require.NoError(t, err)
	assert.Equal(t, []string{"SUCURSAL", "AGENCIA"}, tokens)
}

func TestLoadRuidoMissingFile(t *testing.T) {
	s := NewRuleStore("", "", "")

	tokens, err := s.LoadRuido()

	require.NoError(t, err)
	assert.Nil(t, tokens)
}
