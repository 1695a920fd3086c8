package config

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/thoreinstein/claudekit/internal/errors"
	"github.com/thoreinstein/claudekit/internal/paths"
	"github.com/thoreinstein/claudekit/pkg/fileutil"
)

// CurrentVersion is the only supported config file version.
const CurrentVersion = 1

// DefaultBranch is the branch bootstrap checks out when none is configured.
const DefaultBranch = "main"

// Config represents the top-level configuration structure.
type Config struct {
	Version       int             `mapstructure:"version" yaml:"version"`
	BundleDir     string          `mapstructure:"bundle_dir" yaml:"bundle_dir,omitempty"`
	ClaudeDir     string          `mapstructure:"claude_dir" yaml:"claude_dir,omitempty"`
	EnterpriseDir string          `mapstructure:"enterprise_dir" yaml:"enterprise_dir,omitempty"`
	Ignore        []string        `mapstructure:"ignore" yaml:"ignore,omitempty"`
	Backup        BackupConfig    `mapstructure:"backup" yaml:"backup"`
	Bootstrap     BootstrapConfig `mapstructure:"bootstrap" yaml:"bootstrap"`
}

// BackupConfig controls timestamped backup copies made before overwrites.
type BackupConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
}

// BootstrapConfig names the git repository that holds the bundle.
type BootstrapConfig struct {
	User   string `mapstructure:"user" yaml:"user,omitempty"`
	Repo   string `mapstructure:"repo" yaml:"repo,omitempty"`
	Branch string `mapstructure:"branch" yaml:"branch,omitempty"`
	Dir    string `mapstructure:"dir" yaml:"dir,omitempty"`
}

// Default returns a configuration populated with default values.
func Default() *Config {
	return &Config{
		Version: CurrentVersion,
		Backup:  BackupConfig{Enabled: true},
		Bootstrap: BootstrapConfig{
			Branch: DefaultBranch,
			Dir:    paths.DefaultBundleDir(),
		},
	}
}

// Init resets Viper and installs defaults, search paths and env bindings.
// Call this once at application startup before Load.
func Init() {
	viper.Reset()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.AddConfigPath(".")
	if dir := os.Getenv("CLAUDEKIT_CONFIG_DIR"); dir != "" {
		viper.AddConfigPath(dir)
	} else {
		viper.AddConfigPath(paths.ConfigDir())
	}

	viper.SetEnvPrefix("CLAUDEKIT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// The bootstrap variables predate the CLAUDEKIT_ prefix.
	_ = viper.BindEnv("bootstrap.user", "CLAUDEKIT_BOOTSTRAP_USER", "GITHUB_USER")
	_ = viper.BindEnv("bootstrap.repo", "CLAUDEKIT_BOOTSTRAP_REPO", "GITHUB_REPO")
	_ = viper.BindEnv("bootstrap.branch", "CLAUDEKIT_BOOTSTRAP_BRANCH", "GITHUB_BRANCH")
	_ = viper.BindEnv("bootstrap.dir", "CLAUDEKIT_BOOTSTRAP_DIR", "INSTALL_DIR")

	def := Default()
	viper.SetDefault("version", def.Version)
	viper.SetDefault("bundle_dir", "")
	viper.SetDefault("claude_dir", "")
	viper.SetDefault("enterprise_dir", "")
	viper.SetDefault("ignore", []string{})
	viper.SetDefault("backup.enabled", def.Backup.Enabled)
	viper.SetDefault("bootstrap.user", "")
	viper.SetDefault("bootstrap.repo", "")
	viper.SetDefault("bootstrap.branch", def.Bootstrap.Branch)
	viper.SetDefault("bootstrap.dir", def.Bootstrap.Dir)
}

// Load reads the configuration file.
// If path is provided, it reads from that specific file and a missing file
// is an error. If path is empty, the search paths are used and a missing
// file yields defaults.
func Load(path string) (*Config, error) {
	if path != "" {
		viper.SetConfigFile(path)
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		isNotFound := errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist)
		switch {
		case isNotFound && path == "":
			// Implicit load without a file uses defaults.
		case isNotFound:
			return nil, errors.Wrapf(errors.ErrNotFound, "config file %s", path)
		default:
			return nil, errors.Wrap(err, "reading config file")
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshaling config")
	}

	cfg.BundleDir = paths.ExpandHome(cfg.BundleDir)
	cfg.ClaudeDir = paths.ExpandHome(cfg.ClaudeDir)
	cfg.EnterpriseDir = paths.ExpandHome(cfg.EnterpriseDir)
	cfg.Bootstrap.Dir = paths.ExpandHome(cfg.Bootstrap.Dir)

	if errs := Validate(&cfg); len(errs) > 0 {
		return nil, errors.Wrap(errors.Join(errs...), "validating config")
	}

	return &cfg, nil
}

// FileUsed returns the config file Viper loaded, or "" if defaults are in use.
func FileUsed() string {
	return viper.ConfigFileUsed()
}

// Save writes cfg to path as YAML, creating the parent directory.
func Save(path string, cfg *Config) error {
	if errs := Validate(cfg); len(errs) > 0 {
		return errors.Wrap(errors.Join(errs...), "validating config")
	}
	if err := paths.EnsureDir(filepath.Dir(path), 0o700); err != nil {
		return errors.Wrap(err, "creating config directory")
	}
	return fileutil.AtomicWriteYAMLWithPerm(path, cfg, 0o600)
}
