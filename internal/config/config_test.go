package config

import (
	stderrors "errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"golang.org/x/text/language"

	"github.com/floaties-dev/floaties/internal/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ConfigFileName)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.Listen != DefaultListen {
		t.Errorf("Listen = %q, want %q", cfg.Listen, DefaultListen)
	}
	if cfg.API.BaseURL != DefaultAPIBaseURL {
		t.Errorf("API.BaseURL = %q", cfg.API.BaseURL)
	}
	if cfg.API.Condition != DefaultCondition {
		t.Errorf("API.Condition = %q", cfg.API.Condition)
	}
	if cfg.Auth.Mode != AuthModeStatic || cfg.Auth.Token != DefaultToken {
		t.Errorf("Auth = %+v", cfg.Auth)
	}
	if cfg.Metrics.Namespace != DefaultNamespace {
		t.Errorf("Metrics.Namespace = %q", cfg.Metrics.Namespace)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	if Exists(dir) {
		t.Fatal("Exists on an empty dir")
	}
	_, err := Load(dir)
	if !errors.HasCode(err, "F101") {
		t.Fatalf("missing config error = %v, want F101", err)
	}
	if !stderrors.Is(err, os.ErrNotExist) {
		t.Errorf("F101 should wrap the not-exist error, got %v", err)
	}

	content := `{
  "name": "Staging",
  "listen": "127.0.0.1:3000",
  "api": {"baseURL": "s3://floaties-content/", "timeout": "3s"},
  "auth": {"mode": "callback", "authorizeURL": "https://id.example/authorize"},
  "log": {"level": "debug", "json": true}
}
`
	if err := os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	if !Exists(dir) {
		t.Fatal("Exists should see floaties.json")
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Name != "Staging" || cfg.Listen != "127.0.0.1:3000" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.APITimeout() != 3*time.Second {
		t.Errorf("APITimeout = %v", cfg.APITimeout())
	}
	if cfg.Auth.Mode != AuthModeCallback || cfg.Auth.Token != "" {
		t.Errorf("callback mode should not get a default token: %+v", cfg.Auth)
	}
	if cfg.API.Condition != DefaultCondition || cfg.Locale != "en" {
		t.Errorf("defaults not applied: %+v", cfg)
	}
	if cfg.LogLevel() != slog.LevelDebug || !cfg.Log.JSON {
		t.Errorf("Log = %+v", cfg.Log)
	}
	if cfg.Path() != filepath.Join(dir, ConfigFileName) {
		t.Errorf("Path = %q", cfg.Path())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoadFileInvalidJSON(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantLine int
	}{
		{"syntax", "{\n  \"listen\": ,\n}\n", 2},
		{"type", "{\n  \"name\": \"x\",\n  \"listen\": 8080\n}\n", 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFile(writeConfig(t, tt.content))
			if !errors.HasCode(err, "F102") {
				t.Fatalf("error = %v, want F102", err)
			}
			fe := errors.FromError(err, "")
			if fe.Location == nil || fe.Location.Line != tt.wantLine {
				t.Errorf("Location = %v, want line %d", fe.Location, tt.wantLine)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		code   string
	}{
		{"defaults", func(*Config) {}, ""},
		{"listen without port", func(c *Config) { c.Listen = "localhost" }, "F103"},
		{"listen port range", func(c *Config) { c.Listen = ":70000" }, "F103"},
		{"listen port name", func(c *Config) { c.Listen = ":http" }, "F103"},
		{"base url scheme", func(c *Config) { c.API.BaseURL = "ftp://x/" }, "F104"},
		{"base url relative", func(c *Config) { c.API.BaseURL = "/api" }, "F104"},
		{"base url s3", func(c *Config) { c.API.BaseURL = "s3://bucket/prefix" }, ""},
		{"timeout", func(c *Config) { c.API.Timeout = "soon" }, "F109"},
		{"negative login timeout", func(c *Config) { c.Auth.LoginTimeout = "-1s" }, "F109"},
		{"auth mode", func(c *Config) { c.Auth.Mode = "magic" }, "F105"},
		{"static without token", func(c *Config) { c.Auth.Token = "" }, "F106"},
		{"callback without token", func(c *Config) { c.Auth.Mode = AuthModeCallback; c.Auth.Token = "" }, ""},
		{"callback relative authorize", func(c *Config) {
			c.Auth.Mode = AuthModeCallback
			c.Auth.AuthorizeURL = "/authorize"
		}, "F105"},
		{"log level", func(c *Config) { c.Log.Level = "loud" }, "F107"},
		{"log level case", func(c *Config) { c.Log.Level = "WARN" }, ""},
		{"locale", func(c *Config) { c.Locale = "not a tag!" }, "F108"},
		{"regional locale", func(c *Config) { c.Locale = "de-CH" }, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.code == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.HasCode(err, tt.code) {
				t.Errorf("Validate() = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestSaveTo(t *testing.T) {
	cfg := New()
	cfg.Name = "Saved"
	cfg.S3.Endpoint = "http://localhost:9000"
	cfg.Metrics.Disabled = true

	if err := cfg.Save(); err == nil {
		t.Error("Save without a path should fail")
	}

	path := filepath.Join(t.TempDir(), ConfigFileName)
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}
	if cfg.Path() != path {
		t.Errorf("Path = %q after SaveTo", cfg.Path())
	}

	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if diff := cmp.Diff(cfg, loaded, cmpopts.IgnoreUnexported(Config{})); diff != "" {
		t.Errorf("round trip mismatch (-saved +loaded):\n%s", diff)
	}

	loaded.Listen = ":9090"
	if err := loaded.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}
	again, err := LoadFile(path)
	if err != nil || again.Listen != ":9090" {
		t.Errorf("Save did not persist: %v %+v", err, again)
	}
}

func TestAccessors(t *testing.T) {
	cfg := New()
	cfg.API.Timeout = "garbage"
	if cfg.APITimeout() != 10*time.Second {
		t.Errorf("APITimeout fallback = %v", cfg.APITimeout())
	}
	if cfg.LoginTimeout() != 2*time.Minute {
		t.Errorf("LoginTimeout = %v", cfg.LoginTimeout())
	}

	cfg.Log.Level = "loud"
	if cfg.LogLevel() != slog.LevelInfo {
		t.Errorf("LogLevel fallback = %v", cfg.LogLevel())
	}

	cfg.Locale = "de-CH"
	if cfg.Language().String() != "de-CH" {
		t.Errorf("Language = %v", cfg.Language())
	}
	cfg.Locale = "!!"
	if cfg.Language() != language.English {
		t.Errorf("Language fallback = %v", cfg.Language())
	}

	tests := []struct {
		base, path, want string
	}{
		{"https://floaties-api.dudi.win/", "posts/7", "https://floaties-api.dudi.win/posts/7"},
		{"https://api.example", "/authors", "https://api.example/authors"},
		{"s3://content/site/", "authors/3", "s3://content/site/authors/3"},
	}
	for _, tt := range tests {
		cfg.API.BaseURL = tt.base
		if got := cfg.PageURL(tt.path); got != tt.want {
			t.Errorf("PageURL(%q) with %q = %q, want %q", tt.path, tt.base, got, tt.want)
		}
	}
}
