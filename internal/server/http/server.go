package httpserver

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/rahulshendre/secure-logchain/internal/runtime"
	"github.com/rahulshendre/secure-logchain/internal/server/http/controllers"
	logsvc "github.com/rahulshendre/secure-logchain/internal/services/logs"
	logpkg "github.com/rahulshendre/secure-logchain/pkg/log"
)

// Server serves the logchain HTTP API.
type Server struct {
	rt     *runtime.Runtime
	srv    *http.Server
	lis    net.Listener
	logs   *logsvc.Service
	logger logpkg.Logger
}

// New builds a Server with a fresh logs service.
func New(rt *runtime.Runtime, logger logpkg.Logger) *Server {
	return NewWithService(rt, logsvc.NewWithLogger(rt, logger), logger)
}

// NewWithService builds a Server around a shared logs service instance.
func NewWithService(rt *runtime.Runtime, logs *logsvc.Service, logger logpkg.Logger) *Server {
	if logger == nil {
		logger = logpkg.NewLogger()
	}
	mux := http.NewServeMux()
	s := &Server{
		rt:     rt,
		logs:   logs,
		logger: logger.WithComponent("http"),
		srv:    &http.Server{Handler: cors(mux)},
	}
	controllers.NewControllerRegistry(rt, logs).RegisterAllRoutes(mux)
	return s
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.lis = l
	s.logger.Info("http listening", logpkg.Str("addr", l.Addr().String()))
	errCh := make(chan error, 1)
	go func() { errCh <- s.srv.Serve(l) }()
	select {
	case <-ctx.Done():
		cctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.srv.Shutdown(cctx)
		return nil
	case err := <-errCh:
		return err
	}
}

// Close stops the listener.
func (s *Server) Close() {
	if s.lis != nil {
		_ = s.lis.Close()
	}
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
