package icon

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	ws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OCAP2/spotting/pkg/core"
	"github.com/OCAP2/spotting/pkg/streaming"
)

// testRelay upgrades to WebSocket, records received envelopes and acks
// start_session/end_session.
func testRelay(t *testing.T) (*httptest.Server, *envelopeLog) {
	t.Helper()
	log := &envelopeLog{}

	upgrader := ws.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.setSecret(r.URL.Query().Get("secret"))
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Logf("upgrade error: %v", err)
			return
		}
		defer c.Close()

		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				return
			}

			var env streaming.Envelope
			if err := json.Unmarshal(msg, &env); err != nil {
				continue
			}
			log.add(env)

			if env.Type == streaming.TypeStartSession || env.Type == streaming.TypeEndSession {
				data, _ := json.Marshal(streaming.AckMessage{Type: "ack", For: env.Type})
				if err := c.WriteMessage(ws.TextMessage, data); err != nil {
					return
				}
			}
		}
	}))

	return srv, log
}

type envelopeLog struct {
	mu       sync.Mutex
	secret   string
	messages []streaming.Envelope
}

func (l *envelopeLog) setSecret(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.secret = s
}

func (l *envelopeLog) add(env streaming.Envelope) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, env)
}

func (l *envelopeLog) all() []streaming.Envelope {
	l.mu.Lock()
	defer l.mu.Unlock()
	cp := make([]streaming.Envelope, len(l.messages))
	copy(cp, l.messages)
	return cp
}

func relayURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestStreamSessionAck(t *testing.T) {
	srv, log := testRelay(t)
	defer srv.Close()

	s := NewStream(StreamConfig{URL: relayURL(srv), Secret: "hunter2"}, discardLogger())
	require.NoError(t, s.Init())
	defer s.Close()

	require.NoError(t, s.StartSession(&core.Session{ID: 1, MissionName: "Op Test"}))
	require.NoError(t, s.EndSession())

	msgs := log.all()
	require.GreaterOrEqual(t, len(msgs), 2)
	assert.Equal(t, streaming.TypeStartSession, msgs[0].Type)
	assert.Equal(t, streaming.TypeEndSession, msgs[len(msgs)-1].Type)

	log.mu.Lock()
	assert.Equal(t, "hunter2", log.secret)
	log.mu.Unlock()
}

func TestStreamIconMessages(t *testing.T) {
	srv, log := testRelay(t)
	defer srv.Close()

	s := NewStream(StreamConfig{URL: relayURL(srv)}, discardLogger())
	require.NoError(t, s.Init())
	defer s.Close()

	require.NoError(t, s.StartSession(&core.Session{ID: 2}))

	h := s.Create(Spec{TargetID: 3, Side: core.SideWest, Follow: true, Lifetime: 5 * time.Second})
	s.KeepAlive(h, 2*time.Second)
	s.SetSnapshotPosition(h, core.Position3D{X: 7})
	s.Remove(h)

	// end_session is acked after everything queued before it.
	require.NoError(t, s.EndSession())

	msgs := log.all()
	require.Len(t, msgs, 6)
	assert.Equal(t, streaming.TypeIconCreate, msgs[1].Type)
	assert.Equal(t, streaming.TypeIconKeepAlive, msgs[2].Type)
	assert.Equal(t, streaming.TypeIconSnapshot, msgs[3].Type)
	assert.Equal(t, streaming.TypeIconRemove, msgs[4].Type)

	var create streaming.IconCreatePayload
	require.NoError(t, json.Unmarshal(msgs[1].Payload, &create))
	assert.Equal(t, string(h), create.Handle)
	assert.Equal(t, "WEST", create.Side)
	assert.True(t, create.Follow)
	assert.Equal(t, int64(5000), create.LifetimeMs)

	var keep streaming.IconKeepAlivePayload
	require.NoError(t, json.Unmarshal(msgs[2].Payload, &keep))
	assert.Equal(t, int64(2000), keep.LifetimeMs)
}

func TestStreamInitBadURL(t *testing.T) {
	s := NewStream(StreamConfig{URL: "ws://127.0.0.1:1"}, discardLogger())
	assert.Error(t, s.Init())
}

func TestStreamCloseIdempotent(t *testing.T) {
	srv, _ := testRelay(t)
	defer srv.Close()

	s := NewStream(StreamConfig{URL: relayURL(srv)}, discardLogger())
	require.NoError(t, s.Init())
	require.NoError(t, s.Close())
	assert.NoError(t, s.Close())
}

func TestStreamCloseWhileWriting(t *testing.T) {
	srv, _ := testRelay(t)
	defer srv.Close()

	s := NewStream(StreamConfig{URL: relayURL(srv)}, discardLogger())
	require.NoError(t, s.Init())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			s.Create(Spec{TargetID: core.ObjectID(i), Side: core.SideEast, Lifetime: time.Second})
		}
	}()

	time.Sleep(time.Millisecond)
	assert.NoError(t, s.Close())
	wg.Wait()
}
