package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeConfigDefaults(t *testing.T) {
	cfg, err := InitializeConfig()

	require.NoError(t, err)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, ",", cfg.CSV.Delimiter)
	assert.Equal(t, "categorias.yaml", cfg.Reglas.Categorias)
	assert.Equal(t, "comercios.yaml", cfg.Reglas.Comercios)
	assert.Equal(t, "ruido.yaml", cfg.Reglas.Ruido)
}

func TestInitializeConfigEnvOverride(t *testing.T) {
	t.Setenv("FINANZAS_LOG_LEVEL", "debug")
	t.Setenv("FINANZAS_CSV_DELIMITER", ";")

	cfg, err := InitializeConfig()

	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, ";", cfg.CSV.Delimiter)
}

func TestConfigureLogging(t *testing.T) {
	cfg, err := InitializeConfig()
	require.NoError(t, err)

	logger := cfg.ConfigureLogging()
	assert.NotNil(t, logger)
}
