package config

import (
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"

	"github.com/floaties-dev/floaties/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "floaties.json"

	// DefaultListen is the default HTTP listen address.
	DefaultListen = ":8080"

	// DefaultAPIBaseURL is the content API pages fetch from.
	DefaultAPIBaseURL = "https://floaties-api.dudi.win/"

	// DefaultCondition is the request body sent with every fetch.
	DefaultCondition = "2 == 2"

	// DefaultAPITimeout bounds a single fetch.
	DefaultAPITimeout = "10s"

	// DefaultLoginTimeout bounds a callback login.
	DefaultLoginTimeout = "2m"

	// DefaultToken is issued by static auth when none is configured.
	DefaultToken = "floaties-dev"

	// DefaultS3Region is used by s3:// content URLs.
	DefaultS3Region = "us-east-1"

	// DefaultNamespace prefixes every metric.
	DefaultNamespace = "floaties"
)

// Auth modes.
const (
	AuthModeStatic   = "static"
	AuthModeCallback = "callback"
)

// Config represents floaties.json.
type Config struct {
	// Name is shown in the page title and the navbar brand.
	Name string `json:"name,omitempty"`

	// Listen is the HTTP listen address.
	Listen string `json:"listen,omitempty"`

	// Locale is the BCP 47 tag pages render with.
	Locale string `json:"locale,omitempty"`

	API     APIConfig     `json:"api"`
	Auth    AuthConfig    `json:"auth"`
	S3      S3Config      `json:"s3"`
	Log     LogConfig     `json:"log"`
	Metrics MetricsConfig `json:"metrics"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// APIConfig configures the content API.
type APIConfig struct {
	// BaseURL is an http, https or s3 URL. Page URLs are joined onto it.
	BaseURL string `json:"baseURL,omitempty"`

	// Timeout is a Go duration bounding each fetch.
	Timeout string `json:"timeout,omitempty"`

	// Condition is the body POSTed with each request.
	Condition string `json:"condition,omitempty"`
}

// AuthConfig configures the login capability.
type AuthConfig struct {
	// Mode is "static" (issue Token immediately) or "callback" (popup
	// login completed by /auth/callback).
	Mode string `json:"mode,omitempty"`

	// Token is issued by static mode and by the built-in callback page
	// when AuthorizeURL is empty.
	Token string `json:"token,omitempty"`

	// AuthorizeURL is where callback mode sends the login popup. The
	// state parameter is appended.
	AuthorizeURL string `json:"authorizeURL,omitempty"`

	// LoginTimeout is a Go duration bounding a callback login.
	LoginTimeout string `json:"loginTimeout,omitempty"`
}

// S3Config configures the s3:// content source.
type S3Config struct {
	Region   string `json:"region,omitempty"`
	Endpoint string `json:"endpoint,omitempty"`
}

// LogConfig configures slog output.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `json:"level,omitempty"`

	// JSON switches the handler from text to JSON.
	JSON bool `json:"json,omitempty"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Namespace string `json:"namespace,omitempty"`

	// Disabled removes /metrics.
	Disabled bool `json:"disabled,omitempty"`
}

// New creates a Config with default values.
func New() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads floaties.json from dir.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from path. Missing fields take their
// defaults; the result is not validated.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("F101").
				WithDetail("No config file at " + path).
				WithSuggestion("Run 'floaties init' to write a default " + ConfigFileName).
				Wrap(err)
		}
		return nil, errors.New("F102").Wrap(err)
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		e := errors.New("F102").
			WithSuggestion("Check that " + filepath.Base(path) + " is valid JSON").
			Wrap(err)
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		switch {
		case stderrors.As(err, &syntaxErr):
			e.WithOffset(path, data, syntaxErr.Offset)
		case stderrors.As(err, &typeErr):
			e.WithOffset(path, data, typeErr.Offset)
		}
		return nil, e
	}

	cfg.configPath = path
	cfg.applyDefaults()
	return cfg, nil
}

// Exists checks if a config file exists in dir.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.Newf(errors.CategoryConfig, "encode config").Wrap(err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Newf(errors.CategoryConfig, "write %s", path).Wrap(err)
	}
	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Name == "" {
		c.Name = "Floaties"
	}
	if c.Listen == "" {
		c.Listen = DefaultListen
	}
	if c.Locale == "" {
		c.Locale = "en"
	}

	if c.API.BaseURL == "" {
		c.API.BaseURL = DefaultAPIBaseURL
	}
	if c.API.Timeout == "" {
		c.API.Timeout = DefaultAPITimeout
	}
	if c.API.Condition == "" {
		c.API.Condition = DefaultCondition
	}

	if c.Auth.Mode == "" {
		c.Auth.Mode = AuthModeStatic
	}
	if c.Auth.Mode == AuthModeStatic && c.Auth.Token == "" {
		c.Auth.Token = DefaultToken
	}
	if c.Auth.LoginTimeout == "" {
		c.Auth.LoginTimeout = DefaultLoginTimeout
	}

	if c.S3.Region == "" {
		c.S3.Region = DefaultS3Region
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultNamespace
	}
}

// Validate checks every field and returns the first coded error.
func (c *Config) Validate() error {
	if err := validateListen(c.Listen); err != nil {
		return err
	}
	if err := validateBaseURL(c.API.BaseURL); err != nil {
		return err
	}
	for _, f := range []struct{ key, value string }{
		{"api.timeout", c.API.Timeout},
		{"auth.loginTimeout", c.Auth.LoginTimeout},
	} {
		if d, err := time.ParseDuration(f.value); err != nil || d <= 0 {
			return errors.New("F109").
				WithDetail(f.key + " is " + strconv.Quote(f.value)).
				WithExample(`"timeout": "10s"`)
		}
	}

	switch c.Auth.Mode {
	case AuthModeStatic:
		if c.Auth.Token == "" {
			return errors.New("F106").WithSuggestion(`Set auth.token or switch auth.mode to "callback"`)
		}
	case AuthModeCallback:
		if c.Auth.AuthorizeURL != "" {
			if u, err := url.Parse(c.Auth.AuthorizeURL); err != nil || !u.IsAbs() {
				return errors.New("F105").
					WithDetail("auth.authorizeURL must be an absolute URL, got " + strconv.Quote(c.Auth.AuthorizeURL))
			}
		}
	default:
		return errors.New("F105").
			WithDetail("auth.mode is " + strconv.Quote(c.Auth.Mode)).
			WithSuggestion(`Use "static" or "callback"`)
	}

	if _, err := parseLevel(c.Log.Level); err != nil {
		return errors.New("F107").
			WithDetail("log.level is " + strconv.Quote(c.Log.Level)).
			Wrap(err)
	}
	if _, err := language.Parse(c.Locale); err != nil {
		return errors.New("F108").
			WithDetail("locale is " + strconv.Quote(c.Locale)).
			Wrap(err)
	}
	return nil
}

func validateListen(addr string) error {
	_, port, err := net.SplitHostPort(addr)
	if err == nil {
		var n int
		n, err = strconv.Atoi(port)
		if err == nil && (n < 0 || n > 65535) {
			err = stderrors.New("port out of range")
		}
	}
	if err != nil {
		return errors.New("F103").
			WithSuggestion(`Use ":8080" to listen on every interface`).
			Wrap(err)
	}
	return nil
}

func validateBaseURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return errors.New("F104").Wrap(err)
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https", "s3":
	default:
		return errors.New("F104").
			WithDetail("api.baseURL has scheme " + strconv.Quote(u.Scheme) + ", want http, https or s3")
	}
	if u.Host == "" {
		return errors.New("F104").WithDetail("api.baseURL has no host")
	}
	return nil
}

// APITimeout returns api.timeout, or the default when it does not parse.
func (c *Config) APITimeout() time.Duration {
	return durationOr(c.API.Timeout, DefaultAPITimeout)
}

// LoginTimeout returns auth.loginTimeout, or the default when it does not
// parse.
func (c *Config) LoginTimeout() time.Duration {
	return durationOr(c.Auth.LoginTimeout, DefaultLoginTimeout)
}

// LogLevel returns log.level as a slog.Level, Info when it does not parse.
func (c *Config) LogLevel() slog.Level {
	l, err := parseLevel(c.Log.Level)
	if err != nil {
		return slog.LevelInfo
	}
	return l
}

// Language returns the configured locale, English when it does not parse.
func (c *Config) Language() language.Tag {
	tag, err := language.Parse(c.Locale)
	if err != nil {
		return language.English
	}
	return tag
}

// PageURL joins a content path such as "posts/7" onto the API base URL.
func (c *Config) PageURL(path string) string {
	return strings.TrimRight(c.API.BaseURL, "/") + "/" + strings.TrimLeft(path, "/")
}

func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	err := l.UnmarshalText([]byte(s))
	return l, err
}

func durationOr(s, fallback string) time.Duration {
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d
	}
	d, _ := time.ParseDuration(fallback)
	return d
}
