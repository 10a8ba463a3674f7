// Package runtime wires config, logging, the model registry and the HTTP
// server into one process.
package runtime

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	appconfig "github.com/saker-ai/classroom-avatar/internal/config"
	apphttp "github.com/saker-ai/classroom-avatar/internal/http"
	applogger "github.com/saker-ai/classroom-avatar/internal/logger"
	"github.com/saker-ai/classroom-avatar/internal/model"
	"github.com/saker-ai/classroom-avatar/internal/ws"
)

// Server is the classroom avatar server.
type Server struct {
	cfg    appconfig.Config
	logger *zap.Logger
	models *model.Registry
	ws     *ws.Handler
	server *http.Server
}

// New loads configPath (empty means discover conf.yaml) and builds the server.
func New(configPath string) (*Server, error) {
	cfg, err := appconfig.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("load classroom config: %w", err)
	}

	logger, err := applogger.New(cfg.Log)
	if err != nil {
		logger, _ = zap.NewProduction()
		logger.Warn("logger config rejected; using production defaults", zap.Error(err))
	}
	logger.Info("classroom config loaded",
		zap.String("config_path", configPath),
		zap.String("root_dir", cfg.RootDir),
		zap.String("http_addr", cfg.HTTPAddr),
		zap.String("conf_uid", cfg.CharacterConfig.ConfUID),
		zap.String("model_file", cfg.CharacterConfig.ModelFile),
		zap.String("log_level", cfg.Log.Level),
	)
	return NewWithConfig(cfg, logger), nil
}

// NewWithConfig builds the server from an already loaded config.
func NewWithConfig(cfg appconfig.Config, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	models := model.NewRegistry(logger, cfg.ModelsDir)
	wsHandler := ws.NewHandler(logger, cfg, models)
	return &Server{
		cfg:    cfg,
		logger: logger,
		models: models,
		ws:     wsHandler,
		server: &http.Server{
			Addr:    cfg.HTTPAddr,
			Handler: apphttp.NewRouter(cfg, wsHandler, models, logger),
		},
	}
}

// Run serves until the listener fails or Shutdown is called. Model files are
// watched for the lifetime of ctx.
func (s *Server) Run(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	go func() {
		if err := s.models.Watch(ctx, s.ws.NotifyModelChanged); err != nil {
			s.logger.Warn("model watcher stopped", zap.Error(err))
		}
	}()

	err := listen(s.server, s.cfg, s.logger)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	if s == nil || s.server == nil {
		return ""
	}
	return s.server.Addr
}

// Logger returns the process logger.
func (s *Server) Logger() *zap.Logger {
	return s.logger
}

// Shutdown stops accepting connections and waits for handlers up to ctx.
func (s *Server) Shutdown(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	err := s.server.Shutdown(ctx)
	if err == nil || errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
