package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalizeEnvKey_UsesExistingCamelCaseKeys(t *testing.T) {
	existing := map[string]any{
		"postgres": map[string]any{
			"sslMode": "disable",
			"master": map[string]any{
				"userName": "user",
			},
		},
		"pubsub": map[string]any{
			"topicId": "",
		},
		"secretKey": map[string]any{
			"token": "",
		},
		"remote": map[string]any{
			"twinoid": map[string]any{
				"baseUrl": "",
			},
		},
	}

	tests := []struct {
		envKey string
		want   string
	}{
		{envKey: "POSTGRES_SSLMODE", want: "postgres.sslMode"},
		{envKey: "POSTGRES_MASTER_USERNAME", want: "postgres.master.userName"},
		{envKey: "PUBSUB_TOPICID", want: "pubsub.topicId"},
		{envKey: "SECRETKEY_TOKEN", want: "secretKey.token"},
		{envKey: "REMOTE_TWINOID_BASEURL", want: "remote.twinoid.baseUrl"},
		{envKey: "STORAGE_BACKEND", want: "storage.backend"},
	}

	for _, tt := range tests {
		t.Run(tt.envKey, func(t *testing.T) {
			if got := canonicalizeEnvKey(tt.envKey, existing); got != tt.want {
				t.Fatalf("canonicalizeEnvKey(%q) = %q, want %q", tt.envKey, got, tt.want)
			}
		})
	}
}

func TestLoadWithEnv_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	content := []byte(`
env:
  env: test
  serviceName: etwin
storage:
  backend: memory
secretKey:
  token: from-file
auth:
  bcryptCost: 4
  emailTokenTTL: 2h
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "etwin.yaml"), content, 0o600))
	t.Chdir(dir)
	t.Setenv("SECRETKEY_TOKEN", "from-env")

	cfg, err := LoadWithEnv[Config]("etwin")
	require.NoError(t, err)

	assert.Equal(t, "etwin", cfg.Env.ServiceName)
	assert.Equal(t, "from-env", cfg.SecretKey.Token)
	require.NotNil(t, cfg.Auth)
	assert.Equal(t, 4, cfg.Auth.BcryptCost)
	assert.Equal(t, 2*time.Hour, cfg.Auth.EmailTokenTTL)
}

func TestLoadWithEnv_MissingFile(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := LoadWithEnv[Config]("absent")
	assert.Error(t, err)
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)

	assert.Equal(t, StorageMemory, cfg.Storage.Backend)
	assert.Equal(t, defaultBcryptCost, cfg.Auth.BcryptCost)
	assert.Equal(t, 24*time.Hour, cfg.Auth.EmailTokenTTL)
	assert.Equal(t, time.Hour, cfg.Auth.AccessTokenTTL)
	assert.Equal(t, "sid", cfg.Auth.SessionCookie)
	assert.Equal(t, RemoteModeMemory, cfg.Remote.Twinoid.Mode)
}
