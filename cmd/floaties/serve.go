package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/floaties-dev/floaties/internal/config"
	"github.com/floaties-dev/floaties/pkg/auth"
	"github.com/floaties-dev/floaties/pkg/host"
	"github.com/floaties-dev/floaties/pkg/transport"
)

type serveFlags struct {
	config   string
	listen   string
	api      string
	logLevel string
	logJSON  bool
}

func serveCmd() *cobra.Command {
	var flags serveFlags

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the server",
		Long: `Start the HTTP and websocket server.

Configuration comes from --config, else ./floaties.json when present,
else the built-in defaults. Flags override the file.

Examples:
  floaties serve
  floaties serve --listen=127.0.0.1:3000
  floaties serve --api=s3://floaties-content/ --log-level=debug`,
		Args: exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadServeConfig(flags)
			if err != nil {
				return err
			}

			logger := newLogger(cfg, cmd.ErrOrStderr())
			slog.SetDefault(logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			info(cmd.OutOrStdout(), "content API %s", cfg.API.BaseURL)
			info(cmd.OutOrStdout(), "auth mode   %s", cfg.Auth.Mode)
			return runServe(ctx, cfg, logger)
		},
	}

	cmd.Flags().StringVarP(&flags.config, "config", "c", "", "Path to floaties.json")
	cmd.Flags().StringVarP(&flags.listen, "listen", "l", "", "Listen address (default from floaties.json)")
	cmd.Flags().StringVar(&flags.api, "api", "", "Content API base URL (default from floaties.json)")
	cmd.Flags().StringVar(&flags.logLevel, "log-level", "", "debug, info, warn or error")
	cmd.Flags().BoolVar(&flags.logJSON, "log-json", false, "Log JSON instead of text")

	return cmd
}

// loadServeConfig reads the config file, applies flag overrides and
// validates the result.
func loadServeConfig(flags serveFlags) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	switch {
	case flags.config != "":
		cfg, err = config.LoadFile(flags.config)
	case config.Exists("."):
		cfg, err = config.Load(".")
	default:
		cfg = config.New()
	}
	if err != nil {
		return nil, err
	}

	if flags.listen != "" {
		cfg.Listen = flags.listen
	}
	if flags.api != "" {
		cfg.API.BaseURL = flags.api
	}
	if flags.logLevel != "" {
		cfg.Log.Level = flags.logLevel
	}
	if flags.logJSON {
		cfg.Log.JSON = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runServe(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	var reg *prometheus.Registry
	if !cfg.Metrics.Disabled {
		reg = prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	return host.New(hostConfig(cfg, logger, reg)).ListenAndServe(ctx)
}

func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel()}
	if cfg.Log.JSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// hostConfig maps floaties.json onto the server.
func hostConfig(cfg *config.Config, logger *slog.Logger, reg *prometheus.Registry) *host.Config {
	return &host.Config{
		Addr:         cfg.Listen,
		Name:         cfg.Name,
		Locale:       cfg.Language(),
		BaseURL:      cfg.API.BaseURL,
		Condition:    cfg.API.Condition,
		FetchTimeout: cfg.APITimeout(),
		Fetcher:      newFetcher(cfg),
		Provider:     newProvider(cfg),
		AuthorizeURL: cfg.Auth.AuthorizeURL,
		DevToken:     cfg.Auth.Token,
		Registry:     reg,
		Namespace:    cfg.Metrics.Namespace,
		Logger:       logger,
	}
}

// newFetcher serves http and https with one HTTPFetcher and s3 with an
// anonymous S3 client.
func newFetcher(cfg *config.Config) transport.Fetcher {
	mux := transport.NewMux()
	web := transport.NewHTTPFetcher()
	mux.Handle("http", web)
	mux.Handle("https", web)
	mux.Handle("s3", transport.NewS3Fetcher(transport.NewS3Client(transport.S3Options{
		Region:   cfg.S3.Region,
		Endpoint: cfg.S3.Endpoint,
	})))
	return mux
}

func newProvider(cfg *config.Config) auth.Provider {
	switch cfg.Auth.Mode {
	case config.AuthModeCallback:
		return auth.NewCallbackProvider(host.LoginPath, auth.WithLoginTimeout(cfg.LoginTimeout()))
	default:
		return auth.StaticProvider{Token: auth.Token(cfg.Auth.Token)}
	}
}
