// Package server assembles the store map HTTP server: REST API, map UI
// SSE endpoints, pages and static assets.
package server

import (
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"strconv"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/joeblew999/storemap/internal/api"
	"github.com/joeblew999/storemap/internal/api/mapui"
	"github.com/joeblew999/storemap/internal/catalog"
	"github.com/joeblew999/storemap/internal/filter"
	"github.com/joeblew999/storemap/internal/icon"
	"github.com/joeblew999/storemap/internal/metrics"
	"github.com/joeblew999/storemap/internal/middleware"
	"github.com/joeblew999/storemap/internal/session"
	"github.com/joeblew999/storemap/internal/templates"
)

//go:embed static
var static embed.FS

// Client libraries loaded by the page.
const (
	DefaultLeafletCSS = "https://unpkg.com/leaflet@1.9.4/dist/leaflet.css"
	DefaultLeafletJS  = "https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"
	DefaultDatastarJS = "https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0-RC.6/bundles/datastar.js"
)

// Config holds the server configuration.
type Config struct {
	Host    string
	Port    int
	Version string
	Title   string

	Catalog *catalog.Catalog
	Session session.Config

	Logger  zerolog.Logger
	Metrics *metrics.Provider // nil disables /metrics

	LeafletCSS string
	LeafletJS  string
	DatastarJS string
}

func (c *Config) defaults() {
	if c.Title == "" {
		c.Title = "Carte des magasins"
	}
	if c.LeafletCSS == "" {
		c.LeafletCSS = DefaultLeafletCSS
	}
	if c.LeafletJS == "" {
		c.LeafletJS = DefaultLeafletJS
	}
	if c.DatastarJS == "" {
		c.DatastarJS = DefaultDatastarJS
	}
	if c.Session.MaxInstances == 0 {
		c.Session = session.DefaultConfig()
	}
}

// Server is the store map HTTP server.
type Server struct {
	config   Config
	router   chi.Router
	humaAPI  huma.API
	registry *session.Registry
	renderer *templates.Renderer
	services *api.Services
}

// New creates a new store map server.
func New(cfg Config) (*Server, error) {
	cfg.defaults()
	if cfg.Catalog == nil {
		return nil, fmt.Errorf("server: catalog is required")
	}

	renderer, err := templates.Default()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	var (
		regOpts      = []session.Option{session.WithLogger(cfg.Logger.With().Str("component", "session").Logger())}
		iconOpts     = []icon.FactoryOption{icon.WithAssetBase(cfg.Session.AssetBase)}
		iconMetrics  *icon.Metrics
		routeMetrics *middleware.Metrics
	)
	if cfg.Metrics != nil {
		iconMetrics = icon.NewMetrics(cfg.Metrics.Registerer())
		routeMetrics = middleware.NewMetrics(cfg.Metrics.Registerer())
		regOpts = append(regOpts,
			session.WithMetrics(session.NewMetrics(cfg.Metrics.Registerer())),
			session.WithIconMetrics(iconMetrics))
		iconOpts = append(iconOpts, icon.WithMetrics(iconMetrics))
	}
	registry, err := session.NewRegistry(cfg.Catalog, cfg.Session, regOpts...)
	if err != nil {
		return nil, err
	}

	router := chi.NewRouter()
	router.Use(chimw.RequestID, chimw.RealIP, middleware.Logging(cfg.Logger), middleware.Recover(cfg.Logger))
	if routeMetrics != nil {
		router.Use(routeMetrics.Handler)
	}

	humaConfig := huma.DefaultConfig("storemap API", cfg.Version)
	humaConfig.Info.Description = "Supermarkets annotated with cage-egg survey results, and the interactive map that shows them."
	humaConfig.Servers = []*huma.Server{
		{URL: fmt.Sprintf("http://%s:%d", cfg.Host, cfg.Port), Description: "Local server"},
	}
	// Disable $schema property in responses (cleaner JSON)
	humaConfig.CreateHooks = []func(huma.Config) huma.Config{}
	humaConfig.Transformers = append(humaConfig.Transformers, api.LinkTransformer())

	s := &Server{
		config:   cfg,
		router:   router,
		registry: registry,
		renderer: renderer,
		services: &api.Services{
			Catalog:  cfg.Catalog,
			Icons:    icon.NewFactory(cfg.Session.IconCacheSize, iconOpts...),
			Palette:  cfg.Session.Palette,
			Zoom:     cfg.Session.Map.Zoom,
			Registry: registry,
			Version:  cfg.Version,
		},
	}

	router.Group(func(r chi.Router) {
		r.Use(middleware.CORS())
		s.humaAPI = humachi.New(r, humaConfig)
	})
	s.routes()
	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// OpenAPI returns the generated API description.
func (s *Server) OpenAPI() *huma.OpenAPI {
	return s.humaAPI.OpenAPI()
}

// Registry returns the live map instances.
func (s *Server) Registry() *session.Registry { return s.registry }

// Close unmounts every live map.
func (s *Server) Close() error {
	s.registry.CloseAll()
	return nil
}

func (s *Server) routes() {
	// Register Huma REST API routes (OpenAPI-documented JSON endpoints)
	api.RegisterRoutes(s.humaAPI, s.services)

	// Map UI SSE routes using Huma + Datastar SDK
	mapui.NewHandler(s.registry, s.renderer, s.config.Logger.With().Str("component", "mapui").Logger()).
		RegisterRoutes(s.humaAPI)

	// Static files
	markers := http.StripPrefix(s.config.Session.AssetBase+"/", http.FileServer(http.FS(icon.Assets())))
	s.router.Handle(s.config.Session.AssetBase+"/*", cacheable(markers))
	scripts, _ := fs.Sub(static, "static")
	s.router.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(scripts))))

	if s.config.Metrics != nil {
		s.router.Handle("/metrics", s.config.Metrics.Handler())
	}

	// Page routes
	s.router.With(middleware.SameOrigin()).Get("/store-map", s.handlePage(false))
	s.router.With(middleware.AllowFraming()).Get("/embed/store-map", s.handlePage(true))
	s.router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/store-map", http.StatusFound)
	})
}

// PageData is the store-map page template input.
type PageData struct {
	Title      string
	LeafletCSS string
	LeafletJS  string
	DatastarJS string
	Breakpoint int
	Embed      bool
	Signals    map[string]any
}

// pageSignals seeds the client signals. Invalid overrides are dropped here
// and the size is clamped; the registry applies the same rules on mount.
func pageSignals(style, size string) map[string]any {
	signals := map[string]any{
		"mapid":        "",
		"initialstyle": "",
		"initialsize":  0,
		"width":        0,
		"height":       0,
		"event":        "",
		"error":        "",
		"zoom":         0,
		"lat":          0,
		"lng":          0,
		"view":         map[string]any{},
		"markers":      []any{},
		"settings":     filter.DefaultSettings(),
	}
	if s, ok := filter.ParseMarkerStyle(style); ok {
		signals["initialstyle"] = string(s)
	}
	if n, err := strconv.Atoi(size); err == nil && n > 0 {
		signals["initialsize"] = min(max(n, filter.MinMarkerSize), filter.MaxMarkerSize)
	}
	return signals
}

func (s *Server) handlePage(embed bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		data := PageData{
			Title:      s.config.Title,
			LeafletCSS: s.config.LeafletCSS,
			LeafletJS:  s.config.LeafletJS,
			DatastarJS: s.config.DatastarJS,
			Breakpoint: s.config.Session.Map.Breakpoint,
			Embed:      embed,
			Signals:    pageSignals(q.Get("initialStyle"), q.Get("initialSize")),
		}
		html, err := s.renderer.Render("store-map", data)
		if err != nil {
			s.config.Logger.Error().Err(err).Msg("render store map page")
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(html))
	}
}

func cacheable(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=86400")
		next.ServeHTTP(w, r)
	})
}
