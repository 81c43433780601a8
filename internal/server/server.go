package server

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/agenthands/wardwatch/internal/config"
	"github.com/agenthands/wardwatch/internal/core"
	"github.com/agenthands/wardwatch/internal/core/model"
	"github.com/agenthands/wardwatch/internal/driver"
	"github.com/agenthands/wardwatch/internal/ingest"
)

const RunIDHeader = "X-Run-ID"

// statusClientClosedRequest is the nginx convention for a client that went
// away before the response was written.
const statusClientClosedRequest = 499

type Server struct {
	Config *config.Config
	Reader *ingest.Reader
	Logger *zap.Logger
	// Driver is nil unless Memgraph export is enabled.
	Driver  driver.GraphDriver
	metrics *metrics
}

func NewServer(cfg *config.Config, d driver.GraphDriver, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		Config:  cfg,
		Reader:  ingest.NewReader(),
		Logger:  logger,
		Driver:  d,
		metrics: newMetrics(),
	}
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())
	r.MaxMultipartMemory = s.Config.Server.MaxUploadMB << 20

	r.POST("/cluster", s.Cluster)
	r.GET("/healthz", s.Health)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{})))

	return r
}

// Handler is the router wrapped with the configured CORS policy.
func (s *Server) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   s.Config.Server.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{RunIDHeader},
		AllowCredentials: true,
	})
	return c.Handler(s.SetupRouter())
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ":" + s.Config.Server.Port,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.Logger.Info("starting server", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Cluster accepts transfer_file and micro_file uploads and responds with the
// contact graph document.
func (s *Server) Cluster(c *gin.Context) {
	opts := s.Config.Core()
	if v := c.PostForm("window_days"); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil {
			s.fail(c, http.StatusBadRequest, "bad_request", fmt.Errorf("window_days must be an integer, got %q", v))
			return
		}
		if err := config.CheckWindowDays(days); err != nil {
			s.fail(c, http.StatusBadRequest, "bad_request", fmt.Errorf("window_days: %w", err))
			return
		}
		opts.Window = config.Days(days)
	}

	transfers, err := s.readTransfers(c)
	if err != nil {
		s.inputError(c, err)
		return
	}
	micro, err := s.readMicrobiology(c)
	if err != nil {
		s.inputError(c, err)
		return
	}

	ctx := c.Request.Context()
	if timeout := s.Config.RequestTimeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	res, err := core.NewPipeline(opts, s.Logger).Run(ctx, transfers, micro)
	s.metrics.duration.Observe(time.Since(start).Seconds())
	if err != nil {
		s.inputError(c, err)
		return
	}
	s.metrics.pairs.Observe(float64(len(res.Pairs)))
	s.metrics.clusters.Observe(float64(len(res.Clusters)))

	doc := res.Document()

	if s.Driver != nil {
		runID := uuid.New().String()
		if err := driver.SaveDocument(ctx, s.Driver, runID, doc); err != nil {
			s.Logger.Error("failed to export graph", zap.String("run_id", runID), zap.Error(err))
			s.fail(c, http.StatusInternalServerError, "export_failed", errors.New("failed to export graph"))
			return
		}
		c.Header(RunIDHeader, runID)
	}

	s.metrics.runs.WithLabelValues("ok").Inc()
	c.JSON(http.StatusOK, doc)
}

func (s *Server) readTransfers(c *gin.Context) ([]model.TransferRow, error) {
	f, name, err := formFile(c, "transfer_file")
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return s.Reader.Transfers(f, ingest.FormatOf(name))
}

func (s *Server) readMicrobiology(c *gin.Context) ([]model.MicroRow, error) {
	f, name, err := formFile(c, "micro_file")
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return s.Reader.Microbiology(f, ingest.FormatOf(name))
}

type missingFileError struct{ field string }

func (e *missingFileError) Error() string { return fmt.Sprintf("missing upload %q", e.field) }

func formFile(c *gin.Context, field string) (multipart.File, string, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil, "", &missingFileError{field: field}
	}
	f, err := fh.Open()
	if err != nil {
		return nil, "", fmt.Errorf("failed to open upload %q: %w", field, err)
	}
	return f, fh.Filename, nil
}

func (s *Server) inputError(c *gin.Context, err error) {
	var missing *missingFileError
	switch {
	case ingest.IsMalformed(err):
		s.fail(c, http.StatusUnprocessableEntity, "malformed_input", err)
	case errors.As(err, &missing):
		s.fail(c, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, context.DeadlineExceeded):
		s.fail(c, http.StatusGatewayTimeout, "timeout", errors.New("cluster computation timed out"))
	case errors.Is(err, context.Canceled):
		s.Logger.Info("cluster request cancelled by client", zap.Error(err))
		s.fail(c, statusClientClosedRequest, "cancelled", errors.New("request cancelled"))
	default:
		s.Logger.Error("cluster request failed", zap.Error(err))
		s.fail(c, http.StatusInternalServerError, "error", errors.New("failed to build clusters"))
	}
}

func (s *Server) fail(c *gin.Context, status int, outcome string, err error) {
	s.metrics.runs.WithLabelValues(outcome).Inc()
	c.JSON(status, gin.H{"error": err.Error()})
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.Logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
