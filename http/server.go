// Package http 提供HTTP服务器功能
package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Server HTTP服务器
type Server struct {
	server   *http.Server
	handlers *Handlers
	logger   *zap.Logger
	config   ServerConfig
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port           int           `yaml:"port"`
	Timeout        time.Duration `yaml:"timeout"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	RateLimit      float64       `yaml:"rate_limit"`
	RateBurst      int           `yaml:"rate_burst"`
	RateClients    int           `yaml:"rate_clients"`
	MaxBodyBytes   int64         `yaml:"max_body_bytes"`
}

// DefaultServerConfig 默认服务器配置
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Port:           8501,
		Timeout:        30 * time.Second,
		AllowedOrigins: []string{"*"},
		RateLimit:      20,
		RateBurst:      40,
		RateClients:    1024,
		MaxBodyBytes:   1 << 20,
	}
}

// NewServer 创建HTTP服务器
func NewServer(config ServerConfig, handlers *Handlers, logger *zap.Logger) (*Server, error) {
	handler, err := NewHandler(config, handlers, logger)
	if err != nil {
		return nil, err
	}
	return &Server{
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", config.Port),
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		handlers: handlers,
		logger:   logger,
		config:   config,
	}, nil
}

// NewHandler assembles routes and the middleware chain.
func NewHandler(config ServerConfig, handlers *Handlers, logger *zap.Logger) (http.Handler, error) {
	var limiter *RateLimiter
	if config.RateLimit > 0 {
		var err error
		limiter, err = NewRateLimiter(config.RateLimit, config.RateBurst, config.RateClients)
		if err != nil {
			return nil, err
		}
	}

	routes := http.NewServeMux()
	handlers.Register(routes)

	mux := http.NewServeMux()
	mux.Handle("GET /api/ws/predict", handlers.Socket())
	mux.Handle("/", Chain(
		TimeoutMiddleware(config.Timeout),
		RequestSizeMiddleware(config.MaxBodyBytes),
	)(routes))

	chain := Chain(
		RecoveryMiddleware(logger),            // 1. 恢复中间件（最先执行，捕获panic）
		LoggerMiddleware(logger),              // 2. 日志中间件
		SecurityHeadersMiddleware,             // 3. 安全头中间件
		CORSMiddleware(config.AllowedOrigins), // 4. CORS中间件
		RateLimitMiddleware(limiter),          // 5. 限流中间件
	)
	return chain(mux), nil
}

// Start 启动服务器
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Stop 停止服务器
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	s.handlers.Socket().CloseAll()
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}

// Addr 返回服务器地址
func (s *Server) Addr() string {
	return s.server.Addr
}
