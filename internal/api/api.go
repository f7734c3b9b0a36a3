package api

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/curaious/taskdesk/internal/api/authenticator"
	"github.com/curaious/taskdesk/internal/config"
	"github.com/curaious/taskdesk/internal/db"
	"github.com/curaious/taskdesk/internal/migrations"
	"github.com/curaious/taskdesk/internal/pubsub"
	"github.com/curaious/taskdesk/internal/services"
)

// Server is the taskdesk REST API server
type Server struct {
	srv      *fasthttp.Server
	addr     string
	conf     *config.Config
	services *services.Services
	auth     *authenticator.Authenticator
	metrics  *Metrics
	bus      *pubsub.PubSub
}

// New connects to the database, applies pending migrations and wires the handlers.
func New(conf *config.Config) (*Server, error) {
	conn := db.NewConn(conf)

	m, err := migrations.NewMigrator(conn)
	if err != nil {
		return nil, fmt.Errorf("unable to create migrator: %w", err)
	}
	if err := m.Up(context.Background(), 0); err != nil {
		return nil, fmt.Errorf("unable to run migrations: %w", err)
	}

	revoked := authenticator.NewRevocationStore(context.Background(), conf)
	var bus *pubsub.PubSub
	if mem, ok := revoked.(*authenticator.MemoryRevocations); ok {
		bus = pubsub.NewPubSub(conf, conn)
		if err := bus.Start(); err != nil {
			slog.Warn("Token revocations stay local to this instance", slog.Any("error", err))
			bus = nil
		} else {
			revoked = authenticator.NewBroadcastRevocations(mem, bus)
		}
	}

	auth, err := authenticator.New(conf, revoked)
	if err != nil {
		return nil, err
	}

	s := &Server{
		srv: &fasthttp.Server{
			Name:         "taskdesk",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		addr:     conf.SERVER_ADDR,
		conf:     conf,
		services: services.NewServicesWithDB(conn),
		auth:     auth,
		metrics:  NewMetrics(conf.METRICS_PREFIX),
		bus:      bus,
	}

	s.srv.Handler = s.initRoutes()

	return s, nil
}

// NewHandler builds the routed, middleware-wrapped handler over existing services.
func NewHandler(conf *config.Config, svc *services.Services, auth *authenticator.Authenticator, metrics *Metrics) fasthttp.RequestHandler {
	s := &Server{conf: conf, services: svc, auth: auth, metrics: metrics}
	return s.initRoutes()
}

// Start the rest server
func (s *Server) Start() {
	slog.Info("Starting REST server...", slog.String("addr", s.addr))
	go func() {
		if err := s.srv.ListenAndServe(s.addr); err != nil {
			slog.Error("Server shutdown", slog.Any("error", err))
		}
	}()
	slog.Info("REST server started!")

	// Listen for OS interrupts
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	// Block till we receive an interrupt
	<-c
	slog.Info("Received interrupt...")

	// Create a timeout
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	s.shutdown(ctx)
}

// Shutdown shuts down the rest server
func (s *Server) shutdown(ctx context.Context) {
	slog.Info("Gracefully shutting down REST server...")
	if err := s.srv.ShutdownWithContext(ctx); err != nil {
		slog.Error("Failed to shutdown the server", slog.Any("error", err))
	}
	if s.bus != nil {
		s.bus.Stop()
	}
	slog.Info("REST server shutdown!")
}
