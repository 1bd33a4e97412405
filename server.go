// Package termprof composes the profile service with its transports.
package termprof

import (
	"context"
	"errors"
	"sync"

	"pkt.systems/pslog"
	"pkt.systems/termprof/core"
	"pkt.systems/termprof/httpapi"
	"pkt.systems/termprof/internal/eventbus"
	"pkt.systems/termprof/schema"
)

// Server composes the profile service and the HTTP API.
type Server interface {
	Start(ctx context.Context) error
	Wait() error
	Stop(ctx context.Context) error
	Service() core.Service
	// Events subscribes to profile change notifications for
	// in-process consumers. The returned func cancels the
	// subscription.
	Events() (<-chan schema.ProfilesChangedEvent, func())
}

// ServerConfig configures the compositor.
type ServerConfig struct {
	Service    schema.ServiceConfig
	HTTP       httpapi.Config
	HubHistory int
}

// ServerDeps captures dependencies required to build the server.
type ServerDeps struct {
	ServiceDeps core.ServiceDeps
}

// ServerOption toggles compositor components.
type ServerOption func(*serverOptions)

type serverOptions struct {
	enableHTTP bool
}

// WithHTTP enables the HTTP API server.
func WithHTTP() ServerOption {
	return func(o *serverOptions) { o.enableHTTP = true }
}

// New constructs a composable termprof server.
func New(cfg ServerConfig, deps ServerDeps, opts ...ServerOption) (Server, error) {
	options := serverOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	normalized, err := schema.NormalizeServiceConfig(cfg.Service)
	if err != nil {
		return nil, err
	}
	cfg.Service = normalized

	serviceDeps := deps.ServiceDeps
	bus := eventbus.New(serviceDeps.Logger)
	var hub *httpapi.Hub
	sinks := make([]core.EventSink, 0, 3)
	if serviceDeps.EventSink != nil {
		sinks = append(sinks, serviceDeps.EventSink)
	}
	sinks = append(sinks, bus)
	if options.enableHTTP {
		hub = httpapi.NewHub(cfg.HubHistory)
		sinks = append(sinks, hub)
	}
	if len(sinks) == 1 {
		serviceDeps.EventSink = sinks[0]
	} else {
		serviceDeps.EventSink = eventFanout{sinks: sinks}
	}

	service, err := core.NewService(cfg.Service, serviceDeps)
	if err != nil {
		return nil, err
	}

	var httpSrv *httpapi.Server
	if options.enableHTTP {
		httpSrv = httpapi.NewServer(cfg.HTTP, service, hub)
	}

	return &compositeServer{
		cfg:     cfg,
		options: options,
		service: service,
		httpSrv: httpSrv,
		bus:     bus,
	}, nil
}

type compositeServer struct {
	cfg     ServerConfig
	options serverOptions
	service core.Service
	httpSrv *httpapi.Server
	bus     *eventbus.Bus
	logger  pslog.Logger

	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	errCh   chan error
	started bool
}

func (s *compositeServer) Service() core.Service {
	return s.service
}

func (s *compositeServer) Events() (<-chan schema.ProfilesChangedEvent, func()) {
	return s.bus.Subscribe()
}

func (s *compositeServer) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		pslog.Ctx(ctx).Warn("server start rejected", "reason", "already started")
		return errors.New("server already started")
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.errCh = make(chan error, 2)
	s.started = true
	s.logger = pslog.Ctx(s.ctx)
	s.mu.Unlock()

	log := s.logger
	log.Info(
		"server start",
		"http", s.options.enableHTTP,
		"http_addr", s.cfg.HTTP.Addr,
		"refresh_interval", s.cfg.Service.RefreshInterval,
		"ready_timeout", s.cfg.Service.ReadyTimeout,
	)
	if err := s.service.Start(s.ctx); err != nil {
		// The cache keeps last-known-good state; a failed first pass
		// is logged, not fatal.
		log.Warn("initial profile refresh failed", "err", err)
	}
	if s.options.enableHTTP && s.httpSrv != nil {
		go func() {
			if err := httpapi.ListenAndServe(s.ctx, s.cfg.HTTP.Addr, s.httpSrv.Handler()); err != nil {
				log.Error("http server failed", "err", err)
				s.errCh <- err
			}
		}()
	}
	return nil
}

func (s *compositeServer) Wait() error {
	s.mu.Lock()
	ctx := s.ctx
	errCh := s.errCh
	started := s.started
	s.mu.Unlock()
	if !started {
		return errors.New("server not started")
	}

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		if err != nil {
			pslog.Ctx(ctx).Error("server stopped", "err", err)
			_ = s.Stop(context.Background())
			return err
		}
		return nil
	}
}

func (s *compositeServer) Stop(ctx context.Context) error {
	s.mu.Lock()
	cancel := s.cancel
	started := s.started
	log := s.logger
	s.mu.Unlock()
	if !started {
		return nil
	}
	if log == nil {
		log = pslog.Ctx(context.Background())
	}
	log.Info("server stop requested")
	if err := s.service.Close(); err != nil {
		log.Warn("server service close failed", "err", err)
	}
	if cancel != nil {
		cancel()
	}
	if ctx == nil {
		log.Info("server stop completed")
		return nil
	}
	select {
	case <-ctx.Done():
		log.Warn("server stop timed out", "err", ctx.Err())
		return ctx.Err()
	case <-s.ctx.Done():
		log.Info("server stopped")
		return nil
	}
}
