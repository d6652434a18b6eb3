package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_LoadDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, BackendBolt, cfg.Store.Backend)
	assert.Equal(t, 15*time.Second, cfg.Rollout.PollInterval)
	assert.Empty(t, cfg.Network.AZs)
	assert.Equal(t, "info", cfg.Log.Level)
}

func Test_LoadFile(t *testing.T) {
	dir := t.TempDir()
	content := `store:
  backend: ssm
aws:
  profile: prod
  region: us-east-2
rollout:
  pollInterval: 30s
network:
  azs:
    - us-east-2a
    - us-east-2b
log:
  level: debug
  format: json
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "capturectl.yaml"), []byte(content), 0o600))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, Config{
		Store:   Store{Backend: BackendSSM, Path: "capturectl.db"},
		AWS:     AWS{Profile: "prod", Region: "us-east-2"},
		Rollout: Rollout{PollInterval: 30 * time.Second},
		Network: Network{AZs: []string{"us-east-2a", "us-east-2b"}},
		Log:     Log{Level: "debug", Format: "json"},
	}, cfg)
}

func Test_LoadEnv(t *testing.T) {
	t.Setenv("CAPTURECTL_STORE_BACKEND", "memory")
	t.Setenv("CAPTURECTL_ROLLOUT_POLLINTERVAL", "1m")
	t.Setenv("CAPTURECTL_NETWORK_AZS", "a,b,c")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, BackendMemory, cfg.Store.Backend)
	assert.Equal(t, time.Minute, cfg.Rollout.PollInterval)
	assert.Equal(t, []string{"a", "b", "c"}, cfg.Network.AZs)
}

func Test_LoadInvalid(t *testing.T) {
	t.Run("unknown backend", func(t *testing.T) {
		t.Setenv("CAPTURECTL_STORE_BACKEND", "etcd")

		_, err := Load(t.TempDir())
		assert.ErrorIs(t, err, ErrUnknownBackend)
	})

	t.Run("malformed file", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "capturectl.yaml"), []byte("store: [\n"), 0o600))

		_, err := Load(dir)
		assert.Error(t, err)
	})
}
