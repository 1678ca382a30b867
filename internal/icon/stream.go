package icon

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/OCAP2/spotting/pkg/core"
	"github.com/OCAP2/spotting/pkg/streaming"
)

// StreamConfig holds the icon relay connection settings.
type StreamConfig struct {
	URL    string
	Secret string
}

// Stream sends icon lifecycle messages over WebSocket to an external renderer or relay.
type Stream struct {
	conn   *connection
	cfg    StreamConfig
	logger *slog.Logger
}

// NewStream creates a Stream sink. Call Init to connect.
func NewStream(cfg StreamConfig, logger *slog.Logger) *Stream {
	return &Stream{
		conn:   newConnection(logger),
		cfg:    cfg,
		logger: logger,
	}
}

// Init connects to the relay.
func (s *Stream) Init() error {
	return s.conn.dial(s.cfg.URL, s.cfg.Secret)
}

// Close disconnects from the relay.
func (s *Stream) Close() error {
	return s.conn.close()
}

func marshalEnvelope(msgType string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", msgType, err)
	}
	data, err := json.Marshal(streaming.Envelope{Type: msgType, Payload: raw})
	if err != nil {
		return nil, fmt.Errorf("marshal %s envelope: %w", msgType, err)
	}
	return data, nil
}

// StartSession announces a session and waits for the relay ack.
func (s *Stream) StartSession(session *core.Session) error {
	data, err := marshalEnvelope(streaming.TypeStartSession, streaming.StartSessionPayload{Session: session})
	if err != nil {
		return err
	}

	s.conn.mu.Lock()
	s.conn.cachedStartMsg = data
	s.conn.mu.Unlock()

	return s.conn.sendAndWait(data, streaming.TypeStartSession, ackTimeout)
}

// EndSession announces the end of the session and waits for the relay ack.
func (s *Stream) EndSession() error {
	data, err := marshalEnvelope(streaming.TypeEndSession, nil)
	if err != nil {
		return err
	}
	err = s.conn.sendAndWait(data, streaming.TypeEndSession, ackTimeout)

	s.conn.mu.Lock()
	s.conn.cachedStartMsg = nil
	s.conn.mu.Unlock()

	return err
}

func (s *Stream) Create(spec Spec) Handle {
	assignHandle(&spec)
	s.sendEnvelope(streaming.TypeIconCreate, streaming.IconCreatePayload{
		Handle:     string(spec.Handle),
		TargetID:   spec.TargetID,
		Side:       spec.Side.String(),
		Follow:     spec.Follow,
		Position:   spec.Position,
		Offset:     spec.Offset,
		Effect:     spec.Effect,
		LifetimeMs: spec.Lifetime.Milliseconds(),
		TickRateMs: spec.TickRate.Milliseconds(),
	})
	return spec.Handle
}

func (s *Stream) KeepAlive(h Handle, lifetime time.Duration) {
	s.sendEnvelope(streaming.TypeIconKeepAlive, streaming.IconKeepAlivePayload{
		Handle:     string(h),
		LifetimeMs: lifetime.Milliseconds(),
	})
}

func (s *Stream) SetSnapshotPosition(h Handle, pos core.Position3D) {
	s.sendEnvelope(streaming.TypeIconSnapshot, streaming.IconSnapshotPayload{
		Handle:   string(h),
		Position: pos,
	})
}

func (s *Stream) Remove(h Handle) {
	s.sendEnvelope(streaming.TypeIconRemove, streaming.IconRemovePayload{Handle: string(h)})
}

// sendEnvelope marshals the payload and pushes it to the write loop (fire-and-forget).
func (s *Stream) sendEnvelope(msgType string, payload any) {
	data, err := marshalEnvelope(msgType, payload)
	if err != nil {
		s.logger.Error("Failed to marshal icon message", "type", msgType, "error", err)
		return
	}
	s.conn.send(data)
}
