// Package workspace loads the static description of the versioned
// workspace: the reference branch, the member packages, and output
// policy. Configuration comes from .semgate/config.yaml with SEMGATE_*
// environment overrides; when no file exists the built-in layout of the
// workspace is used.
package workspace

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/viper"
)

// ConfigPath is the repo-relative location of the config file.
const ConfigPath = ".semgate/config.yaml"

// DefaultReferenceBranch is the shared integration branch pushes are
// compared against unless configured otherwise.
const DefaultReferenceBranch = "main"

// AggregateName is the reserved package name of the workspace aggregate.
const AggregateName = "workspace"

// Package describes one versioned unit: where its manifest lives and
// which subtree its sources occupy.
type Package struct {
	Name     string `mapstructure:"name"`
	Manifest string `mapstructure:"manifest"`
	Subtree  string `mapstructure:"subtree"`
}

// Config is the immutable per-run configuration. It is constructed once
// and passed into the orchestrator; nothing mutates it afterwards.
type Config struct {
	// ReferenceBranch is the branch each push is compared against.
	ReferenceBranch string `mapstructure:"reference_branch"`

	// Packages are scanned in declared order. The workspace aggregate is
	// appended automatically and always scanned last.
	Packages []Package `mapstructure:"packages"`

	// WorkspaceManifest is the manifest of the workspace aggregate.
	WorkspaceManifest string `mapstructure:"workspace_manifest"`

	// NoColor disables colored terminal output.
	NoColor bool `mapstructure:"no_color"`

	// Verbose enables debug logging.
	Verbose bool `mapstructure:"verbose"`
}

// Default returns the configuration for the workspace this tool ships
// with: the member crates plus the root aggregate manifest.
func Default() Config {
	return Config{
		ReferenceBranch:   DefaultReferenceBranch,
		WorkspaceManifest: "Cargo.toml",
		Packages: []Package{
			{Name: "common", Manifest: "common/Cargo.toml", Subtree: "common"},
			{Name: "domain", Manifest: "domain/Cargo.toml", Subtree: "domain"},
			{Name: "macros", Manifest: "macros/Cargo.toml", Subtree: "macros"},
			{Name: "shared", Manifest: "shared/Cargo.toml", Subtree: "shared"},
			{Name: "traits", Manifest: "traits/Cargo.toml", Subtree: "traits"},
			{Name: "utils", Manifest: "utils/Cargo.toml", Subtree: "utils"},
		},
	}
}

// Load reads the configuration for the repository at repoRoot. A missing
// config file is not an error; defaults apply. Environment variables of
// the form SEMGATE_REFERENCE_BRANCH override file values.
func Load(repoRoot string) (Config, error) {
	v := viper.New()

	defaults := Default()
	v.SetDefault("reference_branch", defaults.ReferenceBranch)
	v.SetDefault("workspace_manifest", defaults.WorkspaceManifest)
	v.SetDefault("no_color", false)
	v.SetDefault("verbose", false)

	v.SetConfigFile(filepath.Join(repoRoot, ConfigPath))
	v.SetConfigType("yaml")
	v.SetEnvPrefix("SEMGATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("reading %s: %w", ConfigPath, err)
		}
	}

	cfg := defaults
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing %s: %w", ConfigPath, err)
	}
	if len(cfg.Packages) == 0 {
		cfg.Packages = defaults.Packages
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks structural soundness of the configuration.
func (c Config) Validate() error {
	if c.ReferenceBranch == "" {
		return errors.New("reference_branch must not be empty")
	}
	if c.WorkspaceManifest == "" {
		return errors.New("workspace_manifest must not be empty")
	}

	seen := make(map[string]struct{}, len(c.Packages))
	for _, pkg := range c.Packages {
		if pkg.Name == "" {
			return errors.New("package name must not be empty")
		}
		if pkg.Name == AggregateName {
			return fmt.Errorf("package name %q is reserved for the workspace aggregate", AggregateName)
		}
		if _, dup := seen[pkg.Name]; dup {
			return fmt.Errorf("duplicate package name %q", pkg.Name)
		}
		seen[pkg.Name] = struct{}{}

		if pkg.Manifest == "" || filepath.IsAbs(pkg.Manifest) {
			return fmt.Errorf("package %q: manifest must be a repo-relative path", pkg.Name)
		}
		if pkg.Subtree == "" || filepath.IsAbs(pkg.Subtree) {
			return fmt.Errorf("package %q: subtree must be a repo-relative path", pkg.Name)
		}
	}
	return nil
}

// Select returns the subset of packages whose names appear in names,
// preserving declared order. An unknown name is an error. An empty names
// list selects everything.
func (c Config) Select(names []string) ([]Package, error) {
	if len(names) == 0 {
		return c.Packages, nil
	}

	wanted := make(map[string]bool, len(names))
	for _, name := range names {
		wanted[name] = true
	}

	var selected []Package
	for _, pkg := range c.Packages {
		if wanted[pkg.Name] {
			selected = append(selected, pkg)
			delete(wanted, pkg.Name)
		}
	}
	if len(wanted) > 0 {
		var unknown []string
		for name := range wanted {
			unknown = append(unknown, name)
		}
		sort.Strings(unknown)
		return nil, fmt.Errorf("unknown package(s): %s", strings.Join(unknown, ", "))
	}
	return selected, nil
}
