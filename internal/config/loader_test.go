package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultStoreType, cfg.Store.Type)
	assert.Equal(t, DefaultDatabase, cfg.Store.Database)
	assert.Equal(t, DefaultBatchSize, cfg.BatchSize)
	assert.Equal(t, DefaultOutput, cfg.Output)
	assert.False(t, cfg.Verbose)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "habistat.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
store:
  type: postgres
  host: db.internal
  port: 6432
  dbname: prices
batch_size: 500
verbose: true
`), 0o644))

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Type)
	assert.Equal(t, "db.internal", cfg.Store.Host)
	assert.Equal(t, 6432, cfg.Store.Port)
	assert.Equal(t, "prices", cfg.Store.DBName)
	assert.Equal(t, 500, cfg.BatchSize)
	assert.True(t, cfg.Verbose)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "habistat.yaml")
	require.NoError(t, os.WriteFile(path, []byte("store:\n  type: sqlite\n"), 0o644))

	t.Setenv("HABISTAT_STORE__TYPE", "postgres")
	t.Setenv("HABISTAT_BATCH_SIZE", "250")

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Type)
	assert.Equal(t, 250, cfg.BatchSize)
}

func TestLoadFlagsOverrideEnv(t *testing.T) {
	t.Setenv("HABISTAT_STORE__DATABASE", "env.db")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("database", "", "")
	flags.String("store-type", "", "")
	flags.Bool("verbose", false, "")
	require.NoError(t, flags.Parse([]string{"--database", "flag.db", "--verbose"}))

	cfg, err := Load("", flags)
	require.NoError(t, err)

	assert.Equal(t, "flag.db", cfg.Store.Database)
	assert.True(t, cfg.Verbose)
}

func TestLoadExpandsCredentialEnvVars(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "habistat.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
store:
  type: postgres
  user: ingest
  password: ${HABISTAT_TEST_PASSWORD}
`), 0o644))

	t.Setenv("HABISTAT_TEST_PASSWORD", "s3cret")

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "s3cret", cfg.Store.Password)
}

func TestLoadKeepsUnsetEnvReference(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "habistat.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
store:
  password: ${HABISTAT_DOES_NOT_EXIST}
`), 0o644))

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "${HABISTAT_DOES_NOT_EXIST}", cfg.Store.Password)
}

func TestLoadBadBatchSizeFallsBack(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "habistat.yaml")
	require.NoError(t, os.WriteFile(path, []byte("batch_size: -5\n"), 0o644))

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultBatchSize, cfg.BatchSize)
}
