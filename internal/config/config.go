// Package config resolves runtime settings from defaults, an optional YAML
// file, the environment (including a .env file) and command-line flags, in
// that order of precedence.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/oukeidos/panetrans/internal/aimodel"
	"github.com/oukeidos/panetrans/internal/httpclient"
	"github.com/oukeidos/panetrans/internal/language"
	"github.com/oukeidos/panetrans/internal/models"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultFile is read when no --config path is given and it exists.
	DefaultFile = "panetrans.yaml"
	// EnvPrefix prefixes every environment variable.
	EnvPrefix = "PANETRANS_"

	DefaultBackendURL  = "http://127.0.0.1:5000"
	DefaultPreviewAddr = "127.0.0.1:8765"

	MinTimeout = 10 * time.Second
	MaxTimeout = 30 * time.Minute
)

type Config struct {
	BackendURL  string        `yaml:"backend_url"`
	TargetLang  string        `yaml:"target_lang"`
	AIModel     string        `yaml:"ai_model"`
	ImageMode   string        `yaml:"image_mode"`
	OutputDir   string        `yaml:"output_dir"`
	Timeout     time.Duration `yaml:"timeout"`
	PreviewAddr string        `yaml:"preview_addr"`
	Debug       bool          `yaml:"debug"`
	LogFile     string        `yaml:"log_file"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		BackendURL:  DefaultBackendURL,
		TargetLang:  language.DefaultTarget,
		AIModel:     aimodel.Default,
		ImageMode:   string(models.ModeSegment),
		OutputDir:   ".",
		Timeout:     httpclient.DefaultTimeout,
		PreviewAddr: DefaultPreviewAddr,
	}
}

// Load layers defaults, the YAML file at path (or DefaultFile when path is
// empty and the file exists), .env and the process environment. The result
// is normalized but not validated; flags are applied by the caller.
func Load(path string) (Config, error) {
	cfg := Default()

	if err := loadDotEnv(".env"); err != nil {
		return cfg, err
	}

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	if err := cfg.mergeFile(path); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return cfg, err
		}
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	cfg.Normalize()
	return cfg, nil
}

// loadDotEnv reads a .env file into the process environment. Variables
// already set win; a missing file is not an error.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("failed to load %s: %w", path, err)
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return c.mergeYAML(data, path)
}

func (c *Config) mergeYAML(data []byte, name string) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse config %s: %w", name, err)
	}
	return nil
}

// ApplyEnv overrides fields from PANETRANS_* variables found by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(EnvPrefix + key); ok && strings.TrimSpace(v) != "" {
			*dst = v
		}
	}
	str("BACKEND_URL", &c.BackendURL)
	str("TARGET_LANG", &c.TargetLang)
	str("AI_MODEL", &c.AIModel)
	str("IMAGE_MODE", &c.ImageMode)
	str("OUTPUT_DIR", &c.OutputDir)
	str("PREVIEW_ADDR", &c.PreviewAddr)
	str("LOG_FILE", &c.LogFile)

	if v, ok := lookup(EnvPrefix + "TIMEOUT"); ok && strings.TrimSpace(v) != "" {
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid %sTIMEOUT %q: %w", EnvPrefix, v, err)
		}
		c.Timeout = d
	}
	if v, ok := lookup(EnvPrefix + "DEBUG"); ok && strings.TrimSpace(v) != "" {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid %sDEBUG %q: %w", EnvPrefix, v, err)
		}
		c.Debug = b
	}
	return nil
}

// RegisterFlags adds the settings flags. Defaults are shown for help
// only; ApplyFlags copies just the flags the user set.
func RegisterFlags(flags *pflag.FlagSet) {
	d := Default()
	flags.String("config", "", "Path to a YAML config file (default ./"+DefaultFile+" if present)")
	flags.String("backend", d.BackendURL, "Backend base URL")
	flags.String("target", d.TargetLang, "Target language code")
	flags.String("model", d.AIModel, "AI model key (see 'models')")
	flags.String("mode", d.ImageMode, "Image translation mode: segment or whole")
	flags.String("out", d.OutputDir, "Directory for exported files")
	flags.Duration("timeout", d.Timeout, "Per-request timeout")
	flags.String("addr", d.PreviewAddr, "Preview server listen address")
	flags.Bool("debug", false, "Enable debug logging")
	flags.String("log-file", "", "Path to save machine-readable JSONL logs")
}

// ApplyFlags overrides fields with the flags the user set.
func (c *Config) ApplyFlags(flags *pflag.FlagSet) error {
	var err error
	flags.Visit(func(f *pflag.Flag) {
		if err != nil {
			return
		}
		switch f.Name {
		case "backend":
			c.BackendURL = f.Value.String()
		case "target":
			c.TargetLang = f.Value.String()
		case "model":
			c.AIModel = f.Value.String()
		case "mode":
			c.ImageMode = f.Value.String()
		case "out":
			c.OutputDir = f.Value.String()
		case "addr":
			c.PreviewAddr = f.Value.String()
		case "log-file":
			c.LogFile = f.Value.String()
		case "timeout":
			c.Timeout, err = flags.GetDuration("timeout")
		case "debug":
			c.Debug, err = flags.GetBool("debug")
		}
	})
	if err != nil {
		return err
	}
	c.Normalize()
	return nil
}

// Normalize trims values, canonicalizes catalogue keys and clamps the
// timeout.
func (c *Config) Normalize() {
	c.BackendURL = strings.TrimRight(strings.TrimSpace(c.BackendURL), "/")
	c.TargetLang = strings.TrimSpace(c.TargetLang)
	if lang, ok := language.GetLanguage(c.TargetLang); ok {
		c.TargetLang = lang.Code
	}
	c.AIModel = strings.TrimSpace(c.AIModel)
	if m, ok := aimodel.Lookup(c.AIModel); ok {
		c.AIModel = m.Key
	}
	c.ImageMode = strings.ToLower(strings.TrimSpace(c.ImageMode))
	c.OutputDir = strings.TrimSpace(c.OutputDir)
	if c.OutputDir == "" {
		c.OutputDir = "."
	}
	c.PreviewAddr = strings.TrimSpace(c.PreviewAddr)

	switch {
	case c.Timeout <= 0:
		c.Timeout = httpclient.DefaultTimeout
	case c.Timeout < MinTimeout:
		c.Timeout = MinTimeout
	case c.Timeout > MaxTimeout:
		c.Timeout = MaxTimeout
	}
}

// Validate reports every invalid field at once.
func (c Config) Validate() error {
	var errs []error

	u, err := url.Parse(c.BackendURL)
	switch {
	case err != nil:
		errs = append(errs, fmt.Errorf("invalid backend URL %q: %w", c.BackendURL, err))
	case u.Scheme != "http" && u.Scheme != "https":
		errs = append(errs, fmt.Errorf("backend URL %q must use http or https", c.BackendURL))
	case u.Host == "":
		errs = append(errs, fmt.Errorf("backend URL %q has no host", c.BackendURL))
	}

	if _, ok := language.GetLanguage(c.TargetLang); !ok {
		errs = append(errs, fmt.Errorf("unsupported target language %q", c.TargetLang))
	}
	if _, ok := aimodel.Lookup(c.AIModel); !ok {
		errs = append(errs, fmt.Errorf("unsupported AI model %q (available: %s)", c.AIModel, strings.Join(aimodel.Keys(), ", ")))
	}
	if _, err := models.ParseImageMode(c.ImageMode); err != nil {
		errs = append(errs, err)
	}
	if _, _, err := net.SplitHostPort(c.PreviewAddr); err != nil {
		errs = append(errs, fmt.Errorf("invalid preview address %q: %w", c.PreviewAddr, err))
	}
	return errors.Join(errs...)
}

// Mode returns the parsed image mode. Call after Validate.
func (c Config) Mode() models.ImageMode {
	mode, err := models.ParseImageMode(c.ImageMode)
	if err != nil {
		return models.ModeSegment
	}
	return mode
}
