package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsAreValid(t *testing.T) {
	cfg, err := New()
	require.NoError(t, err)
	assert.Equal(t, "https://app.greenhouse.io", cfg.Greenhouse.BaseURL)
	assert.Contains(t, cfg.Regions, "americas")
	assert.Contains(t, cfg.Regions, "latam")
}

func TestOverridesMerge(t *testing.T) {
	cfg, err := New([]byte(`
greenhouse:
  base_url: https://acme.greenhouse.io/
  target_board: Acme Careers
regions:
  mars: ["Olympus Mons"]
`))
	require.NoError(t, err)

	assert.Equal(t, "https://acme.greenhouse.io", cfg.Greenhouse.BaseURL)
	assert.Equal(t, "Acme Careers", cfg.Greenhouse.TargetBoard)
	assert.Equal(t, "Internal", cfg.Greenhouse.SourceBoard)
	assert.Equal(t, map[string][]string{"mars": {"Olympus Mons"}}, cfg.Regions)
}

func TestOverrideRegionsReplaceDefaults(t *testing.T) {
	cfg, err := New([]byte(`
regions:
  nordics: ["Oslo, Norway", "Helsinki, Finland"]
`))
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{"nordics": {"Oslo, Norway", "Helsinki, Finland"}}, cfg.Regions)

	cfg, err = New([]byte("greenhouse:\n  source_board: A\n"))
	require.NoError(t, err)
	assert.Equal(t, Default().Regions, cfg.Regions)
}

func TestLaterOverridesWin(t *testing.T) {
	cfg, err := New(
		[]byte("greenhouse:\n  source_board: A\n"),
		[]byte("greenhouse:\n  source_board: B\n"),
	)
	require.NoError(t, err)
	assert.Equal(t, "B", cfg.Greenhouse.SourceBoard)
}

func TestUnknownOverrideKeyFails(t *testing.T) {
	_, err := New([]byte("greenhouse:\n  sorce_board: typo\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sorce_board")

	_, err = New([]byte("nope: 1\n"))
	require.Error(t, err)
}

func TestEmptyOverrideIsNoop(t *testing.T) {
	_, err := New([]byte(""))
	require.NoError(t, err)
}

func TestValidationErrors(t *testing.T) {
	cases := map[string]string{
		"bad url":           "greenhouse:\n  base_url: not-a-url\n",
		"bad pattern":       "greenhouse:\n  protected_boards: ['(']\n",
		"empty region":      "regions:\n  void: []\n",
		"bad auth":          "auth:\n  method: magic\n",
		"zero rate":         "rate_limit:\n  requests_per_second: 0\n",
		"negative geocode":  "rate_limit:\n  geocode_per_second: -1\n",
		"bad env":           "app:\n  env: staging\n",
		"no source board":   "greenhouse:\n  source_board: '  '\n",
		"cache without ttl": "cache:\n  redis_url: redis://localhost:6379\n  ttl_hours: 0\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := New([]byte(doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "config validation failed")
		})
	}
}

func TestNormalizeTrimsAndDedups(t *testing.T) {
	cfg := Default()
	cfg.Greenhouse.FilteredAttributes = []string{" id ", "id", "", "job_id"}
	out, res := NormalizeAndValidate(cfg)
	require.True(t, res.OK(), res.Errors)
	assert.Equal(t, []string{"id", "job_id"}, out.Greenhouse.FilteredAttributes)
}

func TestEnsureUserConfigAndLoad(t *testing.T) {
	dir := t.TempDir()

	path, err := EnsureUserConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "config.yml"), path)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, dir, cfg.App.DataDir)

	// existing files are left alone
	require.NoError(t, os.WriteFile(path, []byte("greenhouse:\n  target_board: Mine\n"), 0o600))
	_, err = EnsureUserConfig(dir)
	require.NoError(t, err)
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Mine", cfg.Greenhouse.TargetBoard)
}

func TestSaveAtomicKeepsBackup(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")

	cfg := Default()
	require.NoError(t, SaveAtomic(path, cfg))
	cfg.Greenhouse.TargetBoard = "Second"
	require.NoError(t, SaveAtomic(path, cfg))

	_, err := os.Stat(path + ".bak")
	require.NoError(t, err)

	bad := Default()
	bad.Auth.Method = ""
	assert.Error(t, SaveAtomic(path, bad))
}
