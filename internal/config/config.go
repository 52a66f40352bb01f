// Package config loads the TOML configuration file shared by the console, the
// batch CLI and the server.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	jj "github.com/cloudfoundry/jibber_jabber"
	"golang.org/x/mod/semver"
	"golang.org/x/text/language"

	"github.com/dekarrin/algestep/algebra"
	"github.com/dekarrin/algestep/algebra/solve"
	"github.com/dekarrin/algestep/internal/ebnf"
	"github.com/dekarrin/algestep/internal/ebnf/parse"
)

// DefaultFile is the config file read when no other is given.
const DefaultFile = "algestep.toml"

// FormatVersion is the version of the config file format this package reads.
// Files giving any version with the same major version are accepted.
const FormatVersion = "v1.0.0"

const (
	DefaultMaxSteps = 100
	DefaultWidth    = 80
)

// Separator settings.
const (
	SeparatorAuto   = "auto"
	SeparatorPoint  = "."
	SeparatorComma  = ","
	defaultLanguage = "en-US"
)

// ErrFormat is wrapped by errors caused by a config file format version that
// is missing, malformed, or of an unsupported major version.
var ErrFormat = errors.New("unsupported config format")

// Config is the contents of a config file.
type Config struct {
	Format  string  `toml:"format"`
	Debug   bool    `toml:"debug"`
	Rules   Rules   `toml:"rules"`
	Display Display `toml:"display"`
	Limits  Limits  `toml:"limits"`
	History History `toml:"history"`
	Server  Server  `toml:"server"`
}

// Rules selects the rewrite rules engines use by name.
type Rules struct {
	Include []string `toml:"include"`
	Exclude []string `toml:"exclude"`
}

// Display controls how results are shown.
type Display struct {
	// DecimalSeparator is ".", "," or "auto" to pick from the user's locale.
	DecimalSeparator string `toml:"decimal_separator"`

	// Width is the column width console output is wrapped to.
	Width int `toml:"width"`
}

// Limits bound how much work is done for one expression.
type Limits struct {
	// MaxSteps is the most steps a full solve makes.
	MaxSteps int `toml:"max_steps"`

	// ParseBudget is the most matching steps the parser may take on one
	// source before giving up. 0 uses the parser's default.
	ParseBudget int `toml:"parse_budget"`
}

// History says where finished solves are recorded. DB is a connection string
// such as "inmem" or "sqlite:/path/to/dir"; if blank, nothing is recorded.
type History struct {
	DB string `toml:"db"`
}

// Server holds settings for the REST server.
type Server struct {
	Listen   string `toml:"listen"`
	Secret   string `toml:"secret"`
	DB       string `toml:"db"`
	TokenTTL string `toml:"token_ttl"`
}

// Default returns the config used when there is no config file.
func Default() Config {
	return Config{}.FillDefaults()
}

// Load reads the config file at path. If path is blank, DefaultFile is read,
// and if that does not exist the default config is returned.
func Load(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes config file data and fills in defaults for anything it does
// not set. The result has not been validated.
func Parse(data []byte) (Config, error) {
	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := checkFormat(cfg.Format); err != nil {
		return Config{}, err
	}
	return cfg.FillDefaults(), nil
}

func checkFormat(format string) error {
	if format == "" {
		return fmt.Errorf("%w: format key is not set", ErrFormat)
	}
	if !semver.IsValid(format) {
		return fmt.Errorf("%w: %q is not a semantic version", ErrFormat, format)
	}
	if semver.Major(format) != semver.Major(FormatVersion) {
		return fmt.Errorf("%w: %s; this version of algestep reads %s files", ErrFormat, format, semver.Major(FormatVersion))
	}
	return nil
}

// FillDefaults returns a copy of cfg with unset values set to their defaults.
func (cfg Config) FillDefaults() Config {
	filled := cfg

	if filled.Format == "" {
		filled.Format = FormatVersion
	}
	if filled.Display.DecimalSeparator == "" {
		filled.Display.DecimalSeparator = SeparatorAuto
	}
	if filled.Display.Width == 0 {
		filled.Display.Width = DefaultWidth
	}
	if filled.Limits.MaxSteps == 0 {
		filled.Limits.MaxSteps = DefaultMaxSteps
	}
	if filled.Limits.ParseBudget == 0 {
		filled.Limits.ParseBudget = parse.DefaultMaxSteps
	}

	return filled
}

// Validate returns an error if cfg has invalid values. Rule names are checked
// against reg; if reg is nil the default registry is used.
func (cfg Config) Validate(reg *solve.Registry) error {
	if err := checkFormat(cfg.Format); err != nil {
		return err
	}
	if reg == nil {
		reg = solve.DefaultRegistry()
	}
	if _, err := reg.Select(cfg.Rules.Include, cfg.Rules.Exclude); err != nil {
		return fmt.Errorf("rules: %w", err)
	}

	switch cfg.Display.DecimalSeparator {
	case SeparatorAuto, SeparatorPoint, SeparatorComma:
	default:
		return fmt.Errorf("display: decimal_separator must be %q, %q or %q, not %q", SeparatorAuto, SeparatorPoint, SeparatorComma, cfg.Display.DecimalSeparator)
	}
	if cfg.Display.Width < 10 {
		return fmt.Errorf("display: width must be at least 10, but is %d", cfg.Display.Width)
	}
	if cfg.Limits.MaxSteps < 0 {
		return fmt.Errorf("limits: max_steps cannot be negative")
	}
	if cfg.Limits.ParseBudget < 0 {
		return fmt.Errorf("limits: parse_budget cannot be negative")
	}
	if cfg.Server.TokenTTL != "" {
		if _, err := time.ParseDuration(cfg.Server.TokenTTL); err != nil {
			return fmt.Errorf("server: token_ttl: %w", err)
		}
	}

	return nil
}

// EngineOptions returns the options that make engines follow cfg. fe is the
// front end engines parse with; it may be nil to use the shared one.
func (cfg Config) EngineOptions(fe *ebnf.Frontend) []algebra.Option {
	var opts []algebra.Option
	if len(cfg.Rules.Include) > 0 {
		opts = append(opts, algebra.IncludeRules(cfg.Rules.Include...))
	}
	if len(cfg.Rules.Exclude) > 0 {
		opts = append(opts, algebra.ExcludeRules(cfg.Rules.Exclude...))
	}
	if fe != nil {
		opts = append(opts, algebra.WithFrontend(fe))
	}
	return opts
}

// Separator returns the decimal separator computed results are shown with.
func (cfg Config) Separator() rune {
	switch cfg.Display.DecimalSeparator {
	case SeparatorComma:
		return ','
	case SeparatorPoint:
		return '.'
	}
	return LocaleSeparator()
}

// languages whose numbers are written with a decimal comma.
var decimalCommaLanguages = map[string]bool{
	"bg": true, "cs": true, "da": true, "de": true, "el": true, "es": true,
	"fi": true, "fr": true, "hr": true, "hu": true, "id": true, "it": true,
	"lt": true, "lv": true, "nb": true, "nl": true, "nn": true, "no": true,
	"pl": true, "pt": true, "ro": true, "ru": true, "sk": true, "sl": true,
	"sr": true, "sv": true, "tr": true, "uk": true, "vi": true,
}

// LocaleSeparator returns the decimal separator of the user's locale, or '.'
// if the locale cannot be found.
func LocaleSeparator() rune {
	userLocale, err := jj.DetectIETF()
	if err != nil {
		userLocale = defaultLanguage
	}
	return SeparatorFor(userLocale)
}

// SeparatorFor returns the decimal separator of the given IETF language tag.
func SeparatorFor(tag string) rune {
	lang, err := language.Parse(tag)
	if err != nil {
		return '.'
	}
	base, _ := lang.Base()
	if decimalCommaLanguages[base.String()] {
		return ','
	}
	return '.'
}

// TokenTTL returns the lifetime of server tokens, or def if none is set.
func (cfg Config) TokenTTL(def time.Duration) time.Duration {
	if cfg.Server.TokenTTL == "" {
		return def
	}
	d, err := time.ParseDuration(cfg.Server.TokenTTL)
	if err != nil {
		return def
	}
	return d
}
