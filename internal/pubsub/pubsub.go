package pubsub

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/curaious/taskdesk/internal/config"
	"github.com/curaious/taskdesk/internal/db"
)

// Channel is the Postgres NOTIFY channel carrying token revocations.
const Channel = "token_revocations"

// RevocationEvent announces that the token with JTI is revoked until Until.
type RevocationEvent struct {
	JTI   string
	Until time.Time
}

func (e RevocationEvent) payload() string {
	return e.JTI + ":" + strconv.FormatInt(e.Until.Unix(), 10)
}

func parsePayload(s string) (RevocationEvent, error) {
	jti, rawUntil, ok := strings.Cut(s, ":")
	if !ok || jti == "" {
		return RevocationEvent{}, fmt.Errorf("invalid revocation payload %q", s)
	}
	until, err := strconv.ParseInt(rawUntil, 10, 64)
	if err != nil {
		return RevocationEvent{}, fmt.Errorf("invalid revocation expiry in %q: %w", s, err)
	}
	return RevocationEvent{JTI: jti, Until: time.Unix(until, 0)}, nil
}

// RevocationHandler is a callback for revocations published by any API instance
type RevocationHandler func(event RevocationEvent)

// PubSub shares token revocations between API instances over Postgres
// LISTEN/NOTIFY when no Redis is available.
type PubSub struct {
	connStr  string
	db       *sqlx.DB
	listener *pq.Listener
	handlers []RevocationHandler
	mu       sync.RWMutex
	ctx      context.Context
	cancel   context.CancelFunc
}

// NewPubSub creates a new PubSub instance; conn is used for publishing
func NewPubSub(conf *config.Config, conn *sqlx.DB) *PubSub {
	ctx, cancel := context.WithCancel(context.Background())

	return &PubSub{
		connStr:  db.DSN(conf),
		db:       conn,
		handlers: make([]RevocationHandler, 0),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Subscribe adds a handler for revocation events
func (ps *PubSub) Subscribe(handler RevocationHandler) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.handlers = append(ps.handlers, handler)
}

// Publish announces a revocation to every listening instance, this one included.
func (ps *PubSub) Publish(ctx context.Context, event RevocationEvent) error {
	_, err := ps.db.ExecContext(ctx, "SELECT pg_notify($1, $2)", Channel, event.payload())
	return err
}

// Start begins listening for notifications
func (ps *PubSub) Start() error {
	reportProblem := func(ev pq.ListenerEventType, err error) {
		if err != nil {
			slog.Error("PubSub listener error", slog.Any("error", err))
		}
		switch ev {
		case pq.ListenerEventConnectionAttemptFailed:
			slog.Warn("PubSub connection attempt failed, will retry")
		case pq.ListenerEventDisconnected:
			slog.Warn("PubSub disconnected, will attempt reconnect")
		case pq.ListenerEventReconnected:
			// Revocations sent while disconnected are lost; tokens still expire on their own.
			slog.Warn("PubSub reconnected, revocations published meanwhile were missed")
		}
	}

	ps.listener = pq.NewListener(ps.connStr, 10*time.Second, time.Minute, reportProblem)

	if err := ps.listener.Listen(Channel); err != nil {
		return fmt.Errorf("failed to listen on %s channel: %w", Channel, err)
	}

	slog.Info("PubSub started listening for token revocations")

	go ps.processNotifications()

	return nil
}

// Stop closes the listener
func (ps *PubSub) Stop() {
	ps.cancel()
	if ps.listener != nil {
		_ = ps.listener.Close()
	}
	slog.Info("PubSub stopped")
}

func (ps *PubSub) processNotifications() {
	for {
		select {
		case <-ps.ctx.Done():
			return
		case notification := <-ps.listener.Notify:
			if notification == nil {
				// Connection lost, will be handled by reportProblem callback
				continue
			}
			ps.dispatch(notification.Extra)
		}
	}
}

func (ps *PubSub) dispatch(payload string) {
	event, err := parsePayload(payload)
	if err != nil {
		slog.Warn("Invalid notification payload", slog.String("payload", payload), slog.Any("error", err))
		return
	}

	slog.Debug("Received token revocation", slog.String("jti", event.JTI))

	ps.mu.RLock()
	handlers := make([]RevocationHandler, len(ps.handlers))
	copy(handlers, ps.handlers)
	ps.mu.RUnlock()

	for _, handler := range handlers {
		handler(event)
	}
}
