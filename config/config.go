// Package config provides YAML configuration parsing for dashserve.
//
// A config file is optional; command-line flags cover every setting. The file
// is convenient when a project wants to check in its dev server settings.
//
// Example configuration:
//
//	title: Marketing Dashboard
//	port: 3001
//	dir: ./dashboard
//	open: true
//	headers:
//	  Cross-Origin-Opener-Policy: same-origin
package config

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/jpalmerr/dashserve"
	"gopkg.in/yaml.v3"
)

// DefaultTitle is shown in the startup banner when no title is configured.
const DefaultTitle = "Dashboard"

// Config is the root configuration structure for dashserve.
//
// It maps directly to the YAML configuration file structure.
// Use [Load] or [Parse] to create a Config from YAML.
type Config struct {
	// Title is the name shown in the startup banner. Defaults to "Dashboard".
	Title string `yaml:"title"`

	// Port is the HTTP server port. Defaults to 3001.
	Port int `yaml:"port"`

	// Dir is the directory to serve. Relative paths in a file loaded with
	// [Load] are resolved against the directory containing that file.
	// Empty means the directory containing the executable.
	Dir string `yaml:"dir"`

	// Open opens the dashboard in the default browser once the server is up.
	Open bool `yaml:"open"`

	// Headers are extra response headers sent with every response.
	// The CORS headers and Cache-Control cannot be overridden.
	Headers map[string]string `yaml:"headers"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Title: DefaultTitle,
		Port:  dashserve.DefaultPort,
	}
}

// Load reads and parses a YAML configuration file.
//
// Returns an error if the file cannot be read, parsed or validated.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}

	if cfg.Dir != "" && !filepath.IsAbs(cfg.Dir) {
		cfg.Dir = filepath.Join(filepath.Dir(path), cfg.Dir)
	}
	if err := cfg.validateDir(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse parses YAML configuration data.
//
// Defaults are applied for Title ("Dashboard") and Port (3001). Dir is not
// checked against the filesystem; [Load] does that after resolving it.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if cfg.Title == "" {
		cfg.Title = DefaultTitle
	}
	if cfg.Port == 0 {
		cfg.Port = dashserve.DefaultPort
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks port range and header legality. Header names are
// canonicalised, and two names that canonicalise to the same header are
// rejected.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}

	headers := make(map[string]string, len(c.Headers))
	for k, v := range c.Headers {
		if err := dashserve.ValidateHeader(k, v); err != nil {
			return fmt.Errorf("headers[%s]: %w", k, err)
		}
		name := http.CanonicalHeaderKey(k)
		if _, dup := headers[name]; dup {
			return fmt.Errorf("headers: %q is set more than once", name)
		}
		headers[name] = v
	}
	if len(headers) > 0 {
		c.Headers = headers
	}
	return nil
}

// validateDir checks that Dir, when set, names an existing directory.
func (c *Config) validateDir() error {
	if c.Dir == "" {
		return nil
	}
	info, err := os.Stat(c.Dir)
	if err != nil {
		return fmt.Errorf("dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("dir: %q is not a directory", c.Dir)
	}
	return nil
}

// Options converts the config into [dashserve.Option] values.
func (c *Config) Options() []dashserve.Option {
	opts := []dashserve.Option{dashserve.WithPort(c.Port)}
	if c.Dir != "" {
		opts = append(opts, dashserve.WithRoot(c.Dir))
	}
	for k, v := range c.Headers {
		opts = append(opts, dashserve.WithHeader(k, v))
	}
	return opts
}
