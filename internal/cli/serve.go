package cli

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/matzehuels/crossplot/pkg/buildinfo"
	"github.com/matzehuels/crossplot/pkg/dataset"
	"github.com/matzehuels/crossplot/pkg/errors"
	"github.com/matzehuels/crossplot/pkg/figspec"
	"github.com/matzehuels/crossplot/pkg/observability"
	"github.com/matzehuels/crossplot/pkg/pipeline"
)

const (
	defaultAddr         = "127.0.0.1:8080"
	defaultMaxBody      = 1 << 20
	defaultTimeout      = 60 * time.Second
	headerRequestID     = "X-Request-ID"
	shutdownGracePeriod = 10 * time.Second
)

var contentTypes = map[string]string{
	"svg":  "image/svg+xml",
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"tif":  "image/tiff",
	"tiff": "image/tiff",
	"pdf":  "application/pdf",
	"eps":  "application/postscript",
}

type serveOpts struct {
	addr    string
	dataDir string
	maxBody int64
	timeout time.Duration
}

func (c *CLI) serveCommand() *cobra.Command {
	opts := serveOpts{addr: defaultAddr, maxBody: defaultMaxBody, timeout: defaultTimeout}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Render figure descriptions over HTTP",
		Long: `Start an HTTP server that renders figure descriptions.

Endpoints:
  POST /render?format=svg&dpi=150   body: TOML or YAML figure, response: the image
  POST /layout                      body: figure, response: region JSON
  GET  /datasets                    the dataset catalog
  GET  /healthz                     liveness
  GET  /metrics                     Prometheus metrics

Figures may only read local files below --data-dir.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", opts.addr, "listen address")
	cmd.Flags().StringVar(&opts.dataDir, "data-dir", "", "directory local data paths are resolved in (default: local paths are rejected)")
	cmd.Flags().Int64Var(&opts.maxBody, "max-body", opts.maxBody, "maximum request body in bytes")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", opts.timeout, "per-request render timeout")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts serveOpts) error {
	runner, err := c.newRunner(ctx, false)
	if err != nil {
		return err
	}
	defer runner.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	hooks := observability.NewPrometheusHooks(reg)
	observability.SetPipelineHooks(hooks)
	observability.SetCacheHooks(hooks)
	observability.SetHTTPHooks(hooks)
	defer observability.Reset()

	srv := &http.Server{
		Addr:              opts.addr,
		Handler:           newServer(runner, reg, opts, c.Logger).routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		c.Logger.Info("listening", "addr", opts.addr, "data_dir", opts.dataDir)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if err != nil && err != http.ErrServerClosed {
			return errors.Wrap(errors.ErrCodeNetwork, err, "listen on %s", opts.addr)
		}
		return nil
	case <-ctx.Done():
	}

	c.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGracePeriod)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// server holds the HTTP handlers. Handlers share one runner, so artifacts
// and datasets are cached across requests.
type server struct {
	runner   *pipeline.Runner
	registry *prometheus.Registry
	opts     serveOpts
	logger   *log.Logger
}

func newServer(runner *pipeline.Runner, reg *prometheus.Registry, opts serveOpts, logger *log.Logger) *server {
	if opts.maxBody <= 0 {
		opts.maxBody = defaultMaxBody
	}
	if opts.timeout <= 0 {
		opts.timeout = defaultTimeout
	}
	return &server{runner: runner, registry: reg, opts: opts, logger: logger}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.SetHeader("Server", buildinfo.UserAgent()))
	r.Use(s.requestID)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	r.Get("/datasets", s.handleDatasets)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	r.Post("/render", s.handleRender)
	r.Post("/layout", s.handleLayout)
	return r
}

// requestID tags every request with an ID, reusing the client's when sent,
// and attaches a logger carrying it.
func (s *server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(headerRequestID)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(headerRequestID, id)
		ctx := withLogger(r.Context(), s.logger.With("request_id", id))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		loggerFromContext(r.Context()).Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).Round(time.Millisecond))
	})
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type catalogEntry struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Tables      []string `json:"tables"`
	Loaded      bool     `json:"loaded"`
}

func (s *server) handleDatasets(w http.ResponseWriter, r *http.Request) {
	var out []catalogEntry
	for _, e := range dataset.Catalog() {
		out = append(out, catalogEntry{
			Name:        e.Name,
			Description: e.Description,
			Tables:      tableNames(e),
			Loaded:      s.runner.Loader.Cached(e.Name),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *server) handleRender(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.opts.timeout)
	defer cancel()

	fig, err := s.readFigure(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		format = pipeline.DefaultFormat
	}
	dpi := 0
	if v := r.URL.Query().Get("dpi"); v != "" {
		if dpi, err = strconv.Atoi(v); err != nil {
			writeError(w, r, errors.Wrap(errors.ErrCodeInvalidOption, err, "dpi %q", v))
			return
		}
	}

	result, err := s.runner.Execute(ctx, pipeline.Options{
		Figure:  fig,
		Dir:     s.opts.dataDir,
		Formats: []string{format},
		DPI:     dpi,
		Refresh: r.URL.Query().Has("refresh"),
		Logger:  loggerFromContext(r.Context()),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	cacheStatus := "MISS"
	if result.CacheInfo.RenderHit {
		cacheStatus = "HIT"
	}
	w.Header().Set("Content-Type", contentTypes[format])
	w.Header().Set("X-Cache", cacheStatus)
	w.Header().Set("ETag", strconv.Quote(result.FigureHash[:16]))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Artifacts[format])
}

func (s *server) handleLayout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.opts.timeout)
	defer cancel()

	fig, err := s.readFigure(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	b, err := s.runner.Build(ctx, pipeline.Options{Figure: fig, Dir: s.opts.dataDir, Logger: loggerFromContext(r.Context())})
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := b.Render(); err != nil {
		writeError(w, r, err)
		return
	}
	regions, err := b.Regions()
	if err != nil {
		writeError(w, r, err)
		return
	}
	width, height := b.Size()
	writeJSON(w, http.StatusOK, map[string]any{
		"width":   width,
		"height":  height,
		"regions": regionsJSON(regions),
	})
}

// readFigure parses the request body as TOML, or as YAML when the content
// type says so, and checks its local paths against the data directory.
func (s *server) readFigure(w http.ResponseWriter, r *http.Request) (*figspec.Figure, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.opts.maxBody))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read body")
	}
	syntax := "toml"
	if ct := r.Header.Get("Content-Type"); strings.Contains(ct, "yaml") {
		syntax = "yaml"
	}
	fig, err := figspec.Parse(body, syntax)
	if err != nil {
		return nil, err
	}
	for _, p := range pipeline.LocalPaths(fig) {
		if err := s.checkPath(p); err != nil {
			return nil, err
		}
	}
	return fig, nil
}

func (s *server) checkPath(p string) error {
	if s.opts.dataDir == "" {
		return errors.New(errors.ErrCodeInvalidPath, "local data path %q not allowed: server has no data directory", p)
	}
	if filepath.IsAbs(p) {
		return errors.New(errors.ErrCodeInvalidPath, "data path %q must be relative", p)
	}
	rel, err := filepath.Rel(s.opts.dataDir, filepath.Join(s.opts.dataDir, p))
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return errors.New(errors.ErrCodeInvalidPath, "data path %q escapes the data directory", p)
	}
	return nil
}

type errorBody struct {
	Code      errors.Code `json:"code"`
	Message   string      `json:"message"`
	Detail    string      `json:"detail,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		loggerFromContext(r.Context()).Error("request failed", "err", err)
	}
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	writeJSON(w, status, errorBody{
		Code:      code,
		Message:   errors.UserMessage(err),
		Detail:    err.Error(),
		RequestID: w.Header().Get(headerRequestID),
	})
}

// statusFor maps error codes to HTTP status codes.
func statusFor(err error) int {
	switch code := errors.GetCode(err); {
	case code == errors.ErrCodeNotFound, code == errors.ErrCodeDatasetNotFound:
		return http.StatusNotFound
	case code == errors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case code == errors.ErrCodeNetwork:
		return http.StatusBadGateway
	case code == errors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	case errors.IsValidation(err), errors.IsType(err), errors.IsState(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
