package config

import (
	"net/url"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/oshokin/release-merger/internal/domain/release"
	"github.com/oshokin/release-merger/internal/logger"
)

// Config holds the settings of the release merger.
type Config struct {
	// BaseURL is the object storage prefix artifact locations are built from.
	BaseURL string `yaml:"base_url"`
	// Platforms lists the generic media types and their extension segment counts.
	Platforms []release.Platform `yaml:"platforms"`
	// LogLevel is the minimum level of emitted log messages.
	LogLevel string `yaml:"log_level"`
}

const (
	// DefaultConfigFilename is the settings file looked up when no path is given.
	DefaultConfigFilename = "release-merger.yaml"

	// DefaultLogLevel is used when the settings do not name one.
	DefaultLogLevel = "info"

	// DefaultFilePermissions is the file permission for written settings.
	DefaultFilePermissions = 0o644
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errPlatformName is returned for an unnamed platform.
	errPlatformName = errors.New("platform name must be provided")
	// errDuplicatePlatform is returned when a platform is listed twice.
	errDuplicatePlatform = errors.New("duplicate platform")
	// errReservedPlatform is returned when a platform shadows an installer image.
	errReservedPlatform = errors.New("platform name is reserved for installer images")
	// errExtensionSegments is returned for a non-positive segment count.
	errExtensionSegments = errors.New("extension segments must be at least 1")
	// errUnknownLogLevel is returned when the log level cannot be parsed.
	errUnknownLogLevel = errors.New("unknown log level")
	// errRelativeBaseURL is returned when base_url lacks a scheme or host.
	errRelativeBaseURL = errors.New("base URL must be absolute")
	// ErrConfigExists is returned by Init when the target file is already present.
	ErrConfigExists = errors.New("settings file already exists")
)

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		BaseURL:   release.DefaultBaseURL,
		Platforms: release.DefaultPlatforms(),
		LogLevel:  DefaultLogLevel,
	}
}

// Load reads configuration from the provided path and validates it.
// An empty path means DefaultConfigFilename, which may be absent: defaults are returned then.
func Load(path string) (*Config, error) {
	optional := path == ""
	if optional {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if optional && errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}

		return nil, errors.Wrap(err, "read settings")
	}

	cfg := new(Config)
	if err = yaml.Unmarshal(contents, cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshal settings")
	}

	if err = Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes settings to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "marshal settings")
	}

	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return errors.Wrap(err, "write settings")
	}

	return nil
}

// Init writes the default settings to path without overwriting an existing file.
func Init(path string) error {
	if path == "" {
		path = DefaultConfigFilename
	}

	if _, err := os.Stat(filepath.Clean(path)); err == nil {
		return errors.Wrapf(ErrConfigExists, "%q", path)
	} else if !errors.Is(err, os.ErrNotExist) {
		return errors.Wrap(err, "stat settings")
	}

	return Save(path, Default())
}

// Validate checks the settings and fills defaults for omitted values.
func Validate(settings *Config) error {
	if settings == nil {
		return errConfigIsNotSet
	}

	if settings.BaseURL == "" {
		settings.BaseURL = release.DefaultBaseURL
	}

	base, err := url.Parse(settings.BaseURL)
	if err != nil {
		return errors.Wrap(err, "invalid base URL")
	}

	if !base.IsAbs() || base.Host == "" {
		return errors.Wrapf(errRelativeBaseURL, "%q", settings.BaseURL)
	}

	if settings.LogLevel == "" {
		settings.LogLevel = DefaultLogLevel
	}

	if _, ok := logger.ParseLogLevel(settings.LogLevel); !ok {
		return errors.Wrapf(errUnknownLogLevel, "%q", settings.LogLevel)
	}

	// An omitted table means the built-in one; an explicit empty list disables generic platforms.
	if settings.Platforms == nil {
		settings.Platforms = release.DefaultPlatforms()
	}

	return validatePlatforms(settings.Platforms)
}

func validatePlatforms(platforms []release.Platform) error {
	seen := make(map[string]struct{}, len(platforms))

	for _, platform := range platforms {
		switch platform.Name {
		case "":
			return errPlatformName
		case release.ImageISO, release.ImageKernel, release.ImageInitramfs:
			return errors.Wrapf(errReservedPlatform, "%q", platform.Name)
		}

		if _, found := seen[platform.Name]; found {
			return errors.Wrapf(errDuplicatePlatform, "%q", platform.Name)
		}

		seen[platform.Name] = struct{}{}

		if platform.ExtensionSegments < 1 {
			return errors.Wrapf(errExtensionSegments, "platform %q", platform.Name)
		}
	}

	return nil
}
