// Package server exposes the question generator over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/abhisek/qgen/internal/metrics"
)

// Options configures the router. Generator is required.
type Options struct {
	Generator      Generator
	Logger         *zap.Logger
	Metrics        *metrics.Metrics
	TracerProvider trace.TracerProvider
	ServiceName    string
	AllowedOrigins []string
}

// NewRouter builds the gin engine with all routes and middleware.
func NewRouter(opts Options) *gin.Engine {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	r := gin.New()
	r.Use(recovery(log), requestLogger(log), corsMiddleware(opts.AllowedOrigins))
	if opts.TracerProvider != nil {
		name := opts.ServiceName
		if name == "" {
			name = "qgen"
		}
		r.Use(otelgin.Middleware(name, otelgin.WithTracerProvider(opts.TracerProvider)))
	}
	if opts.Metrics != nil {
		r.Use(opts.Metrics.Middleware())
		r.GET("/metrics", opts.Metrics.Handler())
	}
	r.GET("/healthz", healthz)

	h := &handlers{gen: opts.Generator}
	api := r.Group("/api/qgen")
	{
		api.POST("/generate", h.generate)
		api.POST("/generate-single", h.generateSingle)
		api.GET("/contexts", h.contexts)
		api.GET("/templates", h.templates)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, errorEnvelope{Error: "route not found", Code: "not_found"})
	})
	return r
}

// Run serves handler on addr until ctx is cancelled, then shuts down with
// the given grace period.
func Run(ctx context.Context, addr string, handler http.Handler, grace time.Duration, log *zap.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
