package workspace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadWithoutConfigFileUsesDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, DefaultReferenceBranch, cfg.ReferenceBranch)
	assert.Equal(t, "Cargo.toml", cfg.WorkspaceManifest)
	assert.Len(t, cfg.Packages, 6)
	assert.Equal(t, "common", cfg.Packages[0].Name)
	assert.Equal(t, "utils", cfg.Packages[5].Name)
}

func TestLoadReadsConfigFile(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".semgate"), 0755))

	content := `reference_branch: develop
workspace_manifest: Cargo.toml
packages:
  - name: core
    manifest: core/Cargo.toml
    subtree: core
  - name: api
    manifest: api/Cargo.toml
    subtree: api
`
	require.NoError(t, os.WriteFile(filepath.Join(root, ConfigPath), []byte(content), 0644))

	cfg, err := Load(root)
	require.NoError(t, err)

	assert.Equal(t, "develop", cfg.ReferenceBranch)
	require.Len(t, cfg.Packages, 2)
	assert.Equal(t, "core", cfg.Packages[0].Name)
	assert.Equal(t, "api/Cargo.toml", cfg.Packages[1].Manifest)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("SEMGATE_REFERENCE_BRANCH", "release/2024")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "release/2024", cfg.ReferenceBranch)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".semgate"), 0755))

	content := `packages:
  - name: core
    manifest: core/Cargo.toml
    subtree: core
  - name: core
    manifest: other/Cargo.toml
    subtree: other
`
	require.NoError(t, os.WriteFile(filepath.Join(root, ConfigPath), []byte(content), 0644))

	_, err := Load(root)
	assert.ErrorContains(t, err, "duplicate package name")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "empty reference branch",
			mutate:  func(c *Config) { c.ReferenceBranch = "" },
			wantErr: "reference_branch",
		},
		{
			name:    "empty package name",
			mutate:  func(c *Config) { c.Packages[0].Name = "" },
			wantErr: "package name",
		},
		{
			name:    "reserved aggregate name",
			mutate:  func(c *Config) { c.Packages[0].Name = AggregateName },
			wantErr: "reserved",
		},
		{
			name:    "absolute manifest path",
			mutate:  func(c *Config) { c.Packages[0].Manifest = "/etc/Cargo.toml" },
			wantErr: "repo-relative",
		},
		{
			name:    "empty subtree",
			mutate:  func(c *Config) { c.Packages[0].Subtree = "" },
			wantErr: "subtree",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.wantErr)
		})
	}

	assert.NoError(t, Default().Validate())
}

func TestSelect(t *testing.T) {
	cfg := Default()

	t.Run("EmptySelectsAll", func(t *testing.T) {
		pkgs, err := cfg.Select(nil)
		require.NoError(t, err)
		assert.Len(t, pkgs, 6)
	})

	t.Run("SubsetPreservesDeclaredOrder", func(t *testing.T) {
		pkgs, err := cfg.Select([]string{"utils", "domain"})
		require.NoError(t, err)
		require.Len(t, pkgs, 2)
		assert.Equal(t, "domain", pkgs[0].Name)
		assert.Equal(t, "utils", pkgs[1].Name)
	})

	t.Run("UnknownNameFails", func(t *testing.T) {
		_, err := cfg.Select([]string{"utils", "nonexistent"})
		assert.ErrorContains(t, err, "nonexistent")
	})
}
