package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	// Run from a temp dir so a developer's config.yaml is not picked up.
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "https://api.apollo.io/api/v1", cfg.Apollo.BaseURL)
	assert.Equal(t, "https://api.liaufa.com/api/v1/open-api", cfg.Expandi.BaseURL)
	assert.Equal(t, "https://login.salesforce.com", cfg.Salesforce.LoginURL)
	assert.Equal(t, 5.0, cfg.Salesforce.RateLimit)
	assert.Equal(t, 25, cfg.Search.DefaultLimit)
	assert.Equal(t, 3, cfg.Search.MaxCompanies)
	assert.Equal(t, 1000, cfg.Search.CompanyPauseMS)
	assert.Equal(t, 500, cfg.Enrich.PauseMS)
	assert.Equal(t, 1500, cfg.CRM.ContactPauseMS)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Empty(t, cfg.Apollo.Key)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PROSPECT_STORE_DRIVER", "sqlite")
	t.Setenv("PROSPECT_APOLLO_KEY", "apollo-secret")
	t.Setenv("PROSPECT_EXPANDI_CAMPAIGN_ID", "c42")
	t.Setenv("PROSPECT_SEARCH_DEFAULT_LIMIT", "50")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "apollo-secret", cfg.Apollo.Key)
	assert.Equal(t, "c42", cfg.Expandi.CampaignID)
	assert.Equal(t, 50, cfg.Search.DefaultLimit)
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	require.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json"}))

	err := InitLogger(LogConfig{Level: "shouty"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse log level")
}
