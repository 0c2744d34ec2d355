package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/joeblew999/storemap/internal/catalog"
	"github.com/joeblew999/storemap/internal/logger"
	"github.com/joeblew999/storemap/internal/metrics"
	"github.com/joeblew999/storemap/internal/server"
	"github.com/joeblew999/storemap/internal/session"
)

var (
	version = "0.1.0"
	commit  = ""
)

// Options defines all CLI flags and env vars for the store map server.
// Flags: --host, --port, --catalog, --tile-url, --log-level, --log-console, --max-instances, --metrics
// Env vars: SERVICE_HOST, SERVICE_PORT, SERVICE_CATALOG, SERVICE_TILE_URL, ...
type Options struct {
	Host         string `doc:"Host to bind to" default:"0.0.0.0"`
	Port         int    `doc:"Port to listen on" short:"p" default:"8086"`
	Catalog      string `doc:"Catalog file (.yaml, .json, .geojson or .duckdb); empty uses the bundled survey"`
	TileURL      string `doc:"Raster tile URL template" default:"https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png"`
	LogLevel     string `doc:"Log level (debug, info, warn, error)" default:"info"`
	LogConsole   bool   `doc:"Human readable console logs"`
	MaxInstances int    `doc:"Live map instances kept before the least recently used is closed" default:"1000"`
	Metrics      bool   `doc:"Expose Prometheus metrics on /metrics" default:"true"`
}

func loadCatalog(ctx context.Context, opts *Options, log zerolog.Logger) (*catalog.Catalog, []catalog.Rejection, error) {
	c, rejected, err := catalog.Load(ctx, opts.Catalog)
	if err != nil {
		return nil, nil, err
	}
	for _, r := range rejected {
		log.Warn().Int("index", r.Index).Str("store", r.Name).Str("reason", r.Reason).Msg("store rejected")
	}
	return c, rejected, nil
}

func newServer(opts *Options, log zerolog.Logger) (*server.Server, error) {
	c, rejected, err := loadCatalog(context.Background(), opts, log)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	sess := session.DefaultConfig()
	sess.MaxInstances = opts.MaxInstances
	if opts.TileURL != "" {
		sess.Map.TileURL = opts.TileURL
	}

	var prov *metrics.Provider
	if opts.Metrics {
		prov = metrics.Init(metrics.BuildInfo{Version: version, Commit: commit})
		prov.ObserveCatalog(c.Len(), len(c.Enseignes()), len(rejected))
	}

	return server.New(server.Config{
		Host:    opts.Host,
		Port:    opts.Port,
		Version: version,
		Catalog: c,
		Session: sess,
		Logger:  log,
		Metrics: prov,
	})
}

func buildLogger(opts *Options) zerolog.Logger {
	return logger.Build(logger.Config{
		Level:     opts.LogLevel,
		Console:   opts.LogConsole,
		Component: "storemap",
	}, os.Stderr)
}

func main() {
	cli := humacli.New(func(hooks humacli.Hooks, opts *Options) {
		log := buildLogger(opts)
		var httpServer *http.Server

		hooks.OnStart(func() {
			srv, err := newServer(opts, log)
			if err != nil {
				log.Fatal().Err(err).Msg("startup failed")
			}
			defer srv.Close()

			addr := fmt.Sprintf("%s:%d", opts.Host, opts.Port)
			displayHost := opts.Host
			if displayHost == "0.0.0.0" {
				displayHost = "localhost"
			}
			baseURL := fmt.Sprintf("http://%s:%d", displayHost, opts.Port)

			fmt.Println()
			fmt.Printf("storemap server starting...\n")
			fmt.Printf("  Server:  %s\n", baseURL)
			fmt.Println()
			fmt.Printf("  Pages:   %s/store-map, %s/embed/store-map\n", baseURL, baseURL)
			fmt.Printf("  Docs:    %s/docs\n", baseURL)
			fmt.Printf("  OpenAPI: %s/openapi.json\n", baseURL)
			fmt.Println()

			httpServer = &http.Server{Addr: addr, Handler: srv, ReadHeaderTimeout: 10 * time.Second}
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatal().Err(err).Msg("server error")
			}
		})

		hooks.OnStop(func() {
			if httpServer == nil {
				return
			}
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := httpServer.Shutdown(ctx); err != nil {
				log.Error().Err(err).Msg("shutdown")
			}
		})
	})

	cli.Root().Use = "storemap"
	cli.Root().Short = "Store map of the cage-egg survey"
	cli.Root().Version = version

	// spec subcommand: export OpenAPI spec
	specCmd := &cobra.Command{
		Use:   "spec",
		Short: "Export OpenAPI spec (JSON by default, --yaml for YAML)",
		Run: humacli.WithOptions(func(cmd *cobra.Command, args []string, opts *Options) {
			srv, err := newServer(opts, zerolog.Nop())
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			spec := srv.OpenAPI()

			useYAML, _ := cmd.Flags().GetBool("yaml")

			var output []byte
			if useYAML {
				output, err = yaml.Marshal(spec)
			} else {
				output, err = json.MarshalIndent(spec, "", "  ")
			}
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error marshaling spec: %v\n", err)
				os.Exit(1)
			}
			fmt.Println(string(output))
		}),
	}
	specCmd.Flags().BoolP("yaml", "y", false, "Output as YAML instead of JSON")
	cli.Root().AddCommand(specCmd)

	// catalog subcommand: validate a catalog and list rejected stores
	catalogCmd := &cobra.Command{
		Use:   "catalog",
		Short: "Load the catalog and report rejected stores",
		Run: humacli.WithOptions(func(cmd *cobra.Command, args []string, opts *Options) {
			c, rejected, err := loadCatalog(cmd.Context(), opts, zerolog.Nop())
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("%d stores, %d enseignes, %d rejected\n", c.Len(), len(c.Enseignes()), len(rejected))
			for _, r := range rejected {
				fmt.Printf("  #%d %s: %s\n", r.Index, r.Name, r.Reason)
			}
			if len(rejected) > 0 {
				os.Exit(2)
			}
		}),
	}
	cli.Root().AddCommand(catalogCmd)

	cli.Run()
}
