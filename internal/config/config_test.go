package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaultsAndEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("SERVER_ADDRESS", ":9090")
	t.Setenv("DATABASE_DRIVER", "memory")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Address)
	assert.Equal(t, DriverMemory, cfg.Database.Driver)
	assert.Equal(t, "test-secret", cfg.JWT.Secret)
	assert.Equal(t, time.Hour, cfg.JWT.Expiration)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 10, cfg.Plans.MaxPerUser)
	assert.Equal(t, 20, cfg.Plans.DefaultPageSize)
	assert.Equal(t, 100, cfg.Plans.MaxPageSize)
	assert.False(t, cfg.S3.Enabled)
}

func TestLoadConfigFromFile(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("SERVER_ADDRESS", "")
	dir := t.TempDir()
	yaml := `
server:
  address: ":7070"
jwt:
  secret: from-file
  expiration: 30m
plans:
  max_per_user: 3
exercises:
  seed_file: seeds/exercises.yaml
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Server.Address)
	assert.Equal(t, 30*time.Minute, cfg.JWT.Expiration)
	assert.Equal(t, 3, cfg.Plans.MaxPerUser)
	assert.Equal(t, "seeds/exercises.yaml", cfg.Exercises.SeedFile)
}

func TestLoadConfigRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, err := LoadConfig(t.TempDir())
	assert.EqualError(t, err, "jwt.secret is required")
}

func TestValidate(t *testing.T) {
	base := Config{
		JWT:      JWTConfig{Secret: "s"},
		Database: DatabaseConfig{Driver: DriverMongo},
		Plans:    PlansConfig{MaxPerUser: 10, DefaultPageSize: 20, MaxPageSize: 100},
	}
	require.NoError(t, base.Validate())

	bad := base
	bad.Database.Driver = "postgres"
	assert.Error(t, bad.Validate())

	bad = base
	bad.S3.Enabled = true
	assert.Error(t, bad.Validate())

	bad = base
	bad.Plans.MaxPageSize = 5
	assert.Error(t, bad.Validate())
}
