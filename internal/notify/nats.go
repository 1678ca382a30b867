package notify

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/OCAP2/spotting/pkg/core"
)

// DefaultSubjectPrefix is used when no prefix is configured.
const DefaultSubjectPrefix = "spotting.events"

// Publisher is the subset of *nats.Conn used by the NATS notifier.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// NATS publishes each spot as JSON on <prefix>.<observer side>.
type NATS struct {
	pub    Publisher
	conn   *nats.Conn
	prefix string
	logger *slog.Logger
}

// ConnectNATS dials the server at url and returns a notifier on that connection.
func ConnectNATS(url, prefix string, logger *slog.Logger) (*NATS, error) {
	opts := []nats.Option{
		nats.Name("spotting-engine"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn("NATS disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("NATS reconnected", "url", nc.ConnectedUrl())
		}),
		nats.ErrorHandler(func(_ *nats.Conn, _ *nats.Subscription, err error) {
			logger.Error("NATS error", "error", err)
		}),
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	n := NewNATS(nc, prefix, logger)
	n.conn = nc
	return n, nil
}

// NewNATS creates a notifier on an existing publisher.
func NewNATS(pub Publisher, prefix string, logger *slog.Logger) *NATS {
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	return &NATS{pub: pub, prefix: prefix, logger: logger}
}

// Subject returns the subject spots observed by side are published on.
func (n *NATS) Subject(side core.Side) string {
	return n.prefix + "." + side.String()
}

func (n *NATS) Notify(e core.SpotEvent) {
	data, err := json.Marshal(e)
	if err != nil {
		n.logger.Error("Failed to marshal spot event", "error", err)
		return
	}
	if err := n.pub.Publish(n.Subject(e.ObserverSide), data); err != nil {
		n.logger.Warn("Failed to publish spot event", "target", e.TargetID, "error", err)
	}
}

// Close drains the connection opened by ConnectNATS.
func (n *NATS) Close() error {
	if n.conn == nil {
		return nil
	}
	return n.conn.Drain()
}
