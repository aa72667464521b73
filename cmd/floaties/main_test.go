package main

import (
	"bytes"
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/floaties-dev/floaties/internal/config"
	"github.com/floaties-dev/floaties/internal/errors"
	"github.com/floaties-dev/floaties/pkg/auth"
	"github.com/floaties-dev/floaties/pkg/transport"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestResolveCommand(t *testing.T) {
	tests := []struct {
		path string
		want []string
	}{
		{"/posts/7", []string{"route:     Post{id:7}", "path:      /posts/7"}},
		{"/authors/3/", []string{"route:     Author{id:3}", "path:      /authors/3"}},
		{"/settings/theme", []string{"route:     Settings{Theme}"}},
		{"/settings/404", []string{"route:     NotFound", "redirect:  /404"}},
		{"/", []string{"route:     Home"}},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			out, err := run(t, "resolve", tt.path)
			if err != nil {
				t.Fatalf("resolve error = %v", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("output missing %q:\n%s", want, out)
				}
			}
		})
	}
}

func TestResolveCommandErrors(t *testing.T) {
	tests := []struct {
		args []string
		code string
	}{
		{[]string{"resolve"}, "F301"},
		{[]string{"resolve", "/a", "/b"}, "F301"},
		{[]string{"resolve", "https://elsewhere.example/"}, "F302"},
		{[]string{"resolve", `/posts\7`}, "F302"},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			_, err := run(t, tt.args...)
			if !errors.HasCode(err, tt.code) {
				t.Errorf("error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestInitCommand(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, "init", dir)
	if err != nil {
		t.Fatalf("init error = %v", err)
	}
	if !strings.Contains(out, config.ConfigFileName) {
		t.Errorf("output = %q", out)
	}
	cfg, err := config.Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.API.BaseURL != config.DefaultAPIBaseURL {
		t.Errorf("api.baseURL = %q", cfg.API.BaseURL)
	}

	if _, err := run(t, "init", dir); !errors.HasCode(err, "F303") {
		t.Errorf("second init error = %v, want F303", err)
	}
	if _, err := run(t, "init", dir, "--force"); err != nil {
		t.Errorf("init --force error = %v", err)
	}
}

func TestLoadServeConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.json")
	data := `{"listen": ":9000", "api": {"baseURL": "s3://content/", "timeout": "3s"}, "auth": {"mode": "callback"}}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadServeConfig(serveFlags{config: path, listen: "127.0.0.1:7000", logLevel: "debug"})
	if err != nil {
		t.Fatalf("loadServeConfig() error = %v", err)
	}
	if cfg.Listen != "127.0.0.1:7000" || cfg.API.BaseURL != "s3://content/" || cfg.Log.Level != "debug" {
		t.Errorf("config = %+v", cfg)
	}

	_, err = loadServeConfig(serveFlags{config: path, logLevel: "loud"})
	if !errors.HasCode(err, "F107") {
		t.Errorf("bad level error = %v, want F107", err)
	}

	_, err = loadServeConfig(serveFlags{config: filepath.Join(t.TempDir(), "missing.json")})
	if !errors.HasCode(err, "F101") {
		t.Errorf("missing file error = %v, want F101", err)
	}
}

func TestHostConfig(t *testing.T) {
	cfg := config.New()
	cfg.Locale = "de-CH"
	cfg.API.Timeout = "3s"
	logger := newLogger(cfg, &bytes.Buffer{})

	hc := hostConfig(cfg, logger, nil)
	if hc.Addr != config.DefaultListen || hc.FetchTimeout != 3*time.Second || hc.Locale.String() != "de-CH" {
		t.Errorf("host config = %+v", hc)
	}
	if p, ok := hc.Provider.(auth.StaticProvider); !ok || p.Token != config.DefaultToken {
		t.Errorf("static provider = %#v", hc.Provider)
	}

	cfg.Auth.Mode = config.AuthModeCallback
	if _, ok := hostConfig(cfg, logger, nil).Provider.(*auth.CallbackProvider); !ok {
		t.Errorf("callback mode provider = %T", hostConfig(cfg, logger, nil).Provider)
	}
}

func TestFetcherSchemes(t *testing.T) {
	f := newFetcher(config.New())
	_, err := f.FetchText(context.Background(), "ftp://content/posts", "")
	if !stderrors.Is(err, transport.ErrUnsupportedScheme) {
		t.Errorf("ftp error = %v, want ErrUnsupportedScheme", err)
	}
	_, err = f.FetchText(context.Background(), "s3://bucket-only", "")
	if !stderrors.Is(err, transport.ErrBadS3URL) {
		t.Errorf("s3 error = %v, want ErrBadS3URL", err)
	}
}

func TestNewLoggerFormat(t *testing.T) {
	cfg := config.New()
	cfg.Log.JSON = true
	var buf bytes.Buffer
	newLogger(cfg, &buf).Info("hello", "conn_id", "c1")
	if !strings.HasPrefix(buf.String(), "{") || !strings.Contains(buf.String(), `"conn_id":"c1"`) {
		t.Errorf("JSON log = %q", buf.String())
	}

	cfg.Log.JSON = false
	cfg.Log.Level = "warn"
	buf.Reset()
	logger := newLogger(cfg, &buf)
	logger.Info("dropped")
	logger.Warn("kept")
	if strings.Contains(buf.String(), "dropped") || !strings.Contains(buf.String(), "msg=kept") {
		t.Errorf("text log = %q", buf.String())
	}
}

func TestVersionShort(t *testing.T) {
	out, err := run(t, "version", "--short")
	if err != nil || strings.TrimSpace(out) != version {
		t.Errorf("version --short = %q, %v", out, err)
	}
}
