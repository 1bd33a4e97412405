package httpapi

import (
	"context"
	"net"
	"net/http"
	"time"

	"pkt.systems/pslog"
)

const (
	shutdownTimeout   = 5 * time.Second
	readHeaderTimeout = 10 * time.Second
)

// ListenAndServe starts an HTTP server and shuts it down on context
// cancellation. The listener is opened eagerly so a bind failure surfaces
// immediately and an addr of ":0" resolves to a concrete port.
func ListenAndServe(ctx context.Context, addr string, handler http.Handler) error {
	logger := pslog.Ctx(ctx)

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	logger.Info("http api listening", "addr", ln.Addr().String())

	server := &http.Server{
		Handler:           handler,
		ErrorLog:          pslog.LogLoggerWithLevel(logger, pslog.ErrorLevel),
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Serve(ln)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
		return nil
	case err := <-errCh:
		return err
	}
}
