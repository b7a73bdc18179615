// Package server is the HTTP front door of the classification service.
package server

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"email-classifier/internal/classifier"
	"email-classifier/internal/common/config"
	apperrors "email-classifier/internal/common/errors"
	"email-classifier/internal/common/logger"
	"email-classifier/web"
)

const (
	ProcessPath       = "/process"
	legacyProcessPath = "/processar"
)

// Classifier is the adapter the front door delegates to.
type Classifier interface {
	Classify(ctx context.Context, emailText string) classifier.Result
}

type Options struct {
	Config     *config.Config
	Logger     logger.Logger
	Classifier Classifier
}

type Server struct {
	cfg        *config.Config
	logger     logger.Logger
	classifier Classifier
	errors     *apperrors.ErrorHandler
	engine     *gin.Engine
}

func New(opts Options) (*Server, error) {
	if opts.Config == nil {
		return nil, errors.New("server: config is required")
	}
	if opts.Classifier == nil {
		return nil, errors.New("server: classifier is required")
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewNoOpLogger()
	}

	tmpl, err := template.ParseFS(web.Templates, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	s := &Server{
		cfg:        opts.Config,
		logger:     opts.Logger.WithFields(map[string]interface{}{"component": "server"}),
		classifier: opts.Classifier,
	}
	s.errors = apperrors.NewErrorHandler(s.logger)

	engine := gin.New()
	engine.HandleMethodNotAllowed = true
	engine.SetHTMLTemplate(tmpl)
	engine.Use(
		s.requestID(),
		s.accessLog(),
		gin.CustomRecovery(s.recover),
	)
	s.routes(engine)
	s.engine = engine

	return s, nil
}

func (s *Server) routes(r *gin.Engine) {
	r.GET("/", s.home)
	r.POST(ProcessPath, s.process)
	r.POST(legacyProcessPath, s.process)

	r.GET("/health", s.health)
	r.GET("/ready", s.ready)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.engine,
		ReadTimeout:  config.GetDuration(s.cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(s.cfg.Server.WriteTimeout),
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", map[string]interface{}{"addr": srv.Addr})
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

	s.logger.Info("shutting down HTTP server", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(s.cfg.Server.ShutdownTimeout))
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return <-errCh
}
