package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/qgen/internal/logger"
	"github.com/abhisek/qgen/internal/metrics"
	"github.com/abhisek/qgen/internal/observability"
	"github.com/abhisek/qgen/internal/qgen"
	"github.com/abhisek/qgen/internal/server"
	"github.com/abhisek/qgen/internal/store"
)

const shutdownGrace = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the question generation HTTP API",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides server.addr)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Server.Addr = addr
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tp, shutdownTracing, err := observability.Setup(ctx, observability.TracingOptions{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: cfg.Tracing.ServiceName,
		Version:     version,
	}, log)
	if err != nil {
		return fmt.Errorf("tracing: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			log.Warn("tracing shutdown", zap.Error(err))
		}
	}()

	lib, err := loadLibrary(cfg.Library.Path)
	if err != nil {
		return fmt.Errorf("load library: %w", err)
	}
	st := lib.Stats()
	log.Info("library loaded",
		zap.Int("goals", st.Goals),
		zap.Int("contexts", st.Contexts),
		zap.Int("templates", st.Templates),
		zap.Int("skills", st.Skills))

	var reqLog *store.Store
	if cfg.DB.Enabled {
		dbPath, err := resolveDBPath(cfg)
		if err != nil {
			return fmt.Errorf("resolve database path: %w", err)
		}
		reqLog, err = store.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer reqLog.Close()
		log.Info("recording LLM requests", zap.String("db", dbPath))
	}

	var synthesizer qgen.AnswerSynthesizer
	if cfg.LLMEnabled() {
		synthesizer, err = newSynthesizer(ctx, cfg, reqLog, log)
		if err != nil {
			return err
		}
		log.Info("answer synthesis enabled", zap.String("provider", cfg.LLM.Provider))
	} else {
		log.Warn("no LLM provider configured; generate-single will fail")
	}

	m := metrics.New()
	svc, err := qgen.NewService(qgen.Options{
		Library:          lib,
		Synthesizer:      synthesizer,
		MaxAttempts:      cfg.Generation.MaxAttempts,
		SynthesisTimeout: cfg.Generation.SynthesisTimeout,
		Logger:           log,
		Tracer:           tp.Tracer("qgen"),
		Recorder:         m,
	})
	if err != nil {
		return err
	}

	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	router := server.NewRouter(server.Options{
		Generator:      svc,
		Logger:         log,
		Metrics:        m,
		TracerProvider: tp,
		ServiceName:    cfg.Tracing.ServiceName,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	})

	return server.Run(ctx, cfg.Server.Addr, router, shutdownGrace, log)
}
