// Package pprofserver exposes the runtime profiles on a separate listener.
package pprofserver

import (
	"context"
	"github.com/myrjola/whodunit/internal/errors"
	"log/slog"
	"net"
	"net/http"
	"net/http/pprof"
	"time"
)

func Handle(mux *http.ServeMux) {
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
}

func newServer() *http.Server {
	mux := http.NewServeMux()
	Handle(mux)
	return &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: time.Second,
	}
}

// Launch serves pprof on addr until ctx is done. Pass a loopback address so that the profiles are not open to the world.
//
// Failures are logged and do not stop the application.
func Launch(ctx context.Context, addr string, logger *slog.Logger) {
	logger = logger.With(slog.String("source", "pprof"))
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "pprof server not started",
			errors.SlogError(errors.Wrap(err, "TCP listen", slog.String("pprof_addr", addr))))
		return
	}
	srv := newServer()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	go func() {
		logger.LogAttrs(ctx, slog.LevelInfo, "starting pprof server", slog.String("pprof_addr", listener.Addr().String()))
		if serveErr := srv.Serve(listener); !errors.Is(serveErr, http.ErrServerClosed) {
			logger.LogAttrs(ctx, slog.LevelError, "pprof server stopped", errors.SlogError(serveErr))
		}
	}()
}
