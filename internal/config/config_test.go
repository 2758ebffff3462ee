package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDirs(t *testing.T) (configDir, dataDir string) {
	t.Helper()

	configDir = filepath.Join(t.TempDir(), "config")
	dataDir = filepath.Join(t.TempDir(), "data")
	t.Setenv(EnvPrefix+"_CONFIG_DIR", configDir)
	t.Setenv(EnvPrefix+"_DATA_DIR", dataDir)

	return configDir, dataDir
}

func TestLoadMergedDefaults(t *testing.T) {
	_, dataDir := testDirs(t)

	cfg, used, err := LoadMerged(Options{})
	require.NoError(t, err)

	assert.Contains(t, used, "default config in memory")
	assert.Equal(t, "file", cfg.StoreBackend)
	assert.Equal(t, filepath.Join(dataDir, "library.json"), cfg.StorePath)
	assert.Equal(t, filepath.Join(dataDir, "library.db"), cfg.SQLitePath)
	assert.Equal(t, "127.0.0.1:8765", cfg.ListenAddr)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, 3, cfg.Retries)
	assert.Equal(t, "20s", cfg.Timeout().String())

	cfg, used, err = LoadMerged(Options{IgnoreConfig: true})
	require.NoError(t, err)
	assert.Equal(t, "(ignored config)", used)
	assert.Equal(t, "file", cfg.StoreBackend)
}

func TestLoadMergedEnvAndOptions(t *testing.T) {
	testDirs(t)
	t.Setenv("LNTRACK_STORE_BACKEND", "sqlite")
	t.Setenv("LNTRACK_WORKERS", "9")
	t.Setenv("LNTRACK_ALLOWED_ORIGINS", "https://novelbin.com, ,https://ranobes.top")
	t.Setenv("LNTRACK_CLOUDFLARE_BYPASS", "true")
	t.Setenv("LNTRACK_REDIS_ADDR", "redis:6380")

	cfg, _, err := LoadMerged(Options{})
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.StoreBackend)
	assert.Equal(t, 9, cfg.Workers)
	assert.Equal(t, []string{"https://novelbin.com", "https://ranobes.top"}, cfg.AllowedOrigins)
	assert.True(t, cfg.CloudflareBypass)
	assert.Equal(t, "redis:6380", cfg.RedisAddr)

	t.Run("options win over env", func(t *testing.T) {
		cfg, _, err := LoadMerged(Options{Workers: 2, StorePath: "/tmp/custom.db", ListenAddr: ":9000"})
		require.NoError(t, err)

		assert.Equal(t, 2, cfg.Workers)
		assert.Equal(t, "/tmp/custom.db", cfg.SQLitePath, "store path follows the sqlite backend")
		assert.Equal(t, ":9000", cfg.ListenAddr)

		cfg, _, err = LoadMerged(Options{StoreBackend: "file", StorePath: "/tmp/lib.json"})
		require.NoError(t, err)
		assert.Equal(t, "/tmp/lib.json", cfg.StorePath)
	})
}

func TestProfiles(t *testing.T) {
	configDir, _ := testDirs(t)

	_, err := ActiveConfigPath()
	assert.ErrorIs(t, err, ErrNoConfig)

	cfg := DefaultConfig()
	cfg.Workers = 7
	cfg.Retries = 0
	path, err := InitDefaultConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(configDir, "configs", "Default.yaml"), path)

	loaded, used, err := LoadMerged(Options{})
	require.NoError(t, err)
	assert.Equal(t, path, used)
	assert.Equal(t, 7, loaded.Workers)
	assert.Equal(t, 1, loaded.Retries)

	_, err = InitDefaultConfig(nil)
	assert.ErrorIs(t, err, os.ErrExist)

	other := DefaultConfig()
	other.StoreBackend = "memory"
	require.NoError(t, SaveYAML(other, filepath.Join(ConfigsDir(), "Other.yaml")))
	require.NoError(t, SwitchConfig("Other"))

	label, err := CurrentLabel()
	require.NoError(t, err)
	assert.Equal(t, "Other", label)

	infos, err := ListConfigs()
	require.NoError(t, err)
	assert.Equal(t, []ConfigInfo{
		{Label: "Default", Path: path, Active: false},
		{Label: "Other", Path: filepath.Join(ConfigsDir(), "Other.yaml"), Active: true},
	}, infos)

	loaded, _, err = LoadMerged(Options{})
	require.NoError(t, err)
	assert.Equal(t, "memory", loaded.StoreBackend)

	assert.Error(t, SwitchConfig("missing"))
	assert.Error(t, SwitchConfig(" "))
	assert.Error(t, RemoveConfig("Default"))
	assert.Error(t, RemoveConfig("missing"))

	require.NoError(t, RemoveConfig("Other"))
	label, err = CurrentLabel()
	require.NoError(t, err)
	assert.Equal(t, "Default", label)
}

func TestLoadBrokenProfile(t *testing.T) {
	testDirs(t)

	_, err := InitDefaultConfig(nil)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(ConfigsDir(), "Default.yaml"), []byte("workers: [nope"), 0644))

	_, _, err = LoadMerged(Options{})
	assert.ErrorContains(t, err, "failed to load config")
}

func TestPrint(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StoreBackend = "sqlite"
	cfg.AllowedOrigins = []string{"https://a.test"}

	var buf bytes.Buffer
	cfg.Print(&buf)

	assert.Contains(t, buf.String(), " -sqlite_path: ")
	assert.NotContains(t, buf.String(), " -store_path: ")
	assert.Contains(t, buf.String(), " -allowed_origins: https://a.test")
}
