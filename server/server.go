// Package server implements the inbound HTTP surface of the gateway. Route
// handlers are thin adapters: extract parameters, call the backend
// forwarder, wrap the result in the route family's envelope.
package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	gateway "github.com/cryptocrystian/pravado-gateway"
	"github.com/cryptocrystian/pravado-gateway/proxy"
)

// maxRequestBody caps inbound bodies; forwarded payloads are small JSON
// documents.
const maxRequestBody = 1 << 20

const ctxRequestID = "request_id"

// gin.SetMode is global; guard it for tests that build several servers.
var ginModeOnce sync.Once

type Server struct {
	engine *gin.Engine
	core   proxy.Forwarder
	pr     proxy.Forwarder
	log    *zap.Logger
}

// New builds a gateway server over the two backend pools. Which pool (and
// which envelope policy) a route uses is fixed here at registration time.
func New(core, pr proxy.Forwarder, log *zap.Logger) *Server {
	ginModeOnce.Do(func() { gin.SetMode(gin.ReleaseMode) })
	if log == nil {
		log = zap.NewNop()
	}

	s := &Server{
		engine: gin.New(),
		core:   core,
		pr:     pr,
		log:    log,
	}
	s.engine.Use(gin.Recovery(), requestMeta())
	s.registerRoutes()
	return s
}

// requestMeta stamps every response with a request ID, marks it
// non-cacheable and caps the inbound body size. Every invocation of a route
// re-issues the outbound call; nothing is ever served from a cache.
func requestMeta() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader("X-Request-ID")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Set(ctxRequestID, reqID)
		c.Header("X-Request-ID", reqID)
		c.Header("Cache-Control", "no-store")
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxRequestBody)
		c.Next()
	}
}

func requestID(c *gin.Context) string { return c.GetString(ctxRequestID) }

// Handler exposes the engine for tests and embedding.
func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) handlePing(c *gin.Context) {
	c.JSON(http.StatusOK, gateway.BuiltVersion)
}

// Run serves the gateway on listen and, when metricsListen is non-empty,
// the prometheus endpoint on its own listener. It blocks until ctx is
// cancelled or the server fails, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, listen, metricsListen string) error {
	if metricsListen != "" {
		mmux := http.NewServeMux()
		mmux.Handle("/metrics", promhttp.Handler())
		msrv := &http.Server{Addr: metricsListen, Handler: mmux}
		go func() {
			if err := msrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				s.log.Error("metrics server stopped", zap.Error(err))
			}
		}()
		defer msrv.Close()
		s.log.Info("metrics listening", zap.String("addr", metricsListen))
	}

	srv := &http.Server{
		Addr:         listen,
		Handler:      s.engine,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.log.Info("gateway listening", zap.String("addr", listen))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
