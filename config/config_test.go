package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgresql://localhost/route_orders_test")
	t.Setenv("JWT_SECRET", "secret")
	t.Cleanup(func() { SetConfig(nil) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "test", cfg.GoEnv)
	assert.True(t, cfg.IsTest())
	assert.Equal(t, "route-orders-api", cfg.JWTIssuer)
	assert.Equal(t, "route-orders-mobile", cfg.JWTAudience)
	assert.Equal(t, 5*time.Minute, cfg.CatalogCacheTTL)
	assert.Equal(t, EditTotalClient, cfg.EditTotalPolicy)
	assert.Equal(t, []string{"http://localhost:8081"}, cfg.CORSAllowedOrigins)
	assert.False(t, cfg.S3Enabled())
	assert.Same(t, cfg, GetConfig())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgresql://localhost/route_orders_test")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("PORT", "9090")
	t.Setenv("AWS_S3_BUCKET", "defect-photos")
	t.Setenv("CATALOG_CACHE_TTL", "30s")
	t.Setenv("ORDER_EDIT_TOTAL_POLICY", "Recompute")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com ,")
	t.Cleanup(func() { SetConfig(nil) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.True(t, cfg.S3Enabled())
	assert.Equal(t, 30*time.Second, cfg.CatalogCacheTTL)
	assert.Equal(t, EditTotalRecompute, cfg.EditTotalPolicy)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSAllowedOrigins)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{DatabaseURL: "postgresql://x", JWTSecret: "s", EditTotalPolicy: EditTotalClient}
	}

	assert.NoError(t, valid().Validate())

	missingDB := valid()
	missingDB.DatabaseURL = ""
	assert.ErrorContains(t, missingDB.Validate(), "DATABASE_URL")

	missingSecret := valid()
	missingSecret.JWTSecret = ""
	assert.ErrorContains(t, missingSecret.Validate(), "JWT_SECRET")

	badPolicy := valid()
	badPolicy.EditTotalPolicy = "sometimes"
	assert.ErrorContains(t, badPolicy.Validate(), "ORDER_EDIT_TOTAL_POLICY")
}

func TestEnvironmentHelpers(t *testing.T) {
	assert.True(t, (&Config{GoEnv: "production"}).IsProduction())
	assert.True(t, (&Config{GoEnv: "development"}).IsDevelopment())
	assert.False(t, (&Config{GoEnv: "test"}).IsDevelopment())
}
