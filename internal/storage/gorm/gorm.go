// Package gormstorage journals spots and marker events through GORM with
// internal queues and a background DB writer goroutine. The sqlite and
// postgres backends embed it.
package gormstorage

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"gorm.io/gorm"

	"github.com/OCAP2/spotting/internal/model"
	"github.com/OCAP2/spotting/internal/model/convert"
	"github.com/OCAP2/spotting/internal/queue"
	"github.com/OCAP2/spotting/pkg/core"
)

// ErrNoSession is returned when recording outside a session.
var ErrNoSession = errors.New("no active journal session")

// DefaultFlushInterval is how often queued rows are written when none is configured.
const DefaultFlushInterval = 2 * time.Second

// Dependencies holds all dependencies for the GORM storage backend.
type Dependencies struct {
	DB            *gorm.DB
	Logger        *slog.Logger
	Clock         clockwork.Clock
	FlushInterval time.Duration
}

// queues holds the write queues for batch DB insertion.
type queues struct {
	Spots   *queue.Queue[model.Spot]
	Markers *queue.Queue[model.MarkerEvent]
}

// MaxPending bounds each write queue; the oldest rows are dropped beyond it.
const MaxPending = 200000

// writeBatchSize caps the rows written per transaction.
const writeBatchSize = 5000

func newQueues() *queues {
	return &queues{
		Spots:   queue.NewBounded[model.Spot](MaxPending),
		Markers: queue.NewBounded[model.MarkerEvent](MaxPending),
	}
}

// Backend implements storage.Backend using GORM with queue-based batch writes.
// Without a DB it only queues, which is what the unit tests exercise.
type Backend struct {
	deps      Dependencies
	queues    *queues
	sessionID atomic.Uint64
	localID   atomic.Uint64 // session ids in queue-only mode

	// serialises flushes from the writer loop and session boundaries
	writeMu sync.Mutex

	stopChan  chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup
	lastWrite atomic.Int64
}

// New creates a new GORM storage backend.
func New(deps Dependencies) *Backend {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Clock == nil {
		deps.Clock = clockwork.NewRealClock()
	}
	if deps.FlushInterval <= 0 {
		deps.FlushInterval = DefaultFlushInterval
	}
	return &Backend{
		deps:   deps,
		queues: newQueues(),
	}
}

// SetDB injects the connection opened by the embedding backend.
func (b *Backend) SetDB(db *gorm.DB) {
	b.deps.DB = db
}

// Init starts the DB writer goroutine.
func (b *Backend) Init() error {
	b.stopChan = make(chan struct{})
	if b.deps.DB != nil {
		b.wg.Add(1)
		go b.writerLoop()
	}
	return nil
}

// Close stops the DB writer goroutine and writes whatever is still queued.
func (b *Backend) Close() error {
	b.stopOnce.Do(func() {
		if b.stopChan != nil {
			close(b.stopChan)
		}
	})
	b.wg.Wait()
	return b.Flush()
}

// StartSession inserts the session row and assigns its ID.
func (b *Backend) StartSession(s *core.Session) error {
	if s.StartTime.IsZero() {
		s.StartTime = b.deps.Clock.Now()
	}
	if b.deps.DB == nil {
		s.ID = uint(b.localID.Add(1))
		b.sessionID.Store(uint64(s.ID))
		return nil
	}

	// rows from the previous session keep their session id
	if err := b.Flush(); err != nil {
		b.deps.Logger.Warn("Failed to flush previous session", "error", err)
	}

	gormSession := convert.CoreToSession(*s)
	gormSession.ID = 0
	if err := b.deps.DB.Create(&gormSession).Error; err != nil {
		return fmt.Errorf("failed to insert new session: %w", err)
	}

	s.ID = gormSession.ID
	b.sessionID.Store(uint64(gormSession.ID))
	return nil
}

// EndSession writes pending rows and stamps the session end time.
func (b *Backend) EndSession() error {
	id := uint(b.sessionID.Load())
	if id == 0 {
		return nil
	}
	if b.deps.DB == nil {
		b.sessionID.Store(0)
		return nil
	}
	if err := b.Flush(); err != nil {
		return err
	}

	end := b.deps.Clock.Now()
	if err := b.deps.DB.Model(&model.Session{}).Where("id = ?", id).Update("end_time", end).Error; err != nil {
		return fmt.Errorf("failed to close session %d: %w", id, err)
	}
	b.sessionID.Store(0)
	return nil
}

// SessionID returns the ID rows are currently stamped with.
func (b *Backend) SessionID() uint {
	return uint(b.sessionID.Load())
}

// RecordSpot converts and queues a spot.
func (b *Backend) RecordSpot(e *core.SpotEvent) error {
	id := b.SessionID()
	if id == 0 {
		return ErrNoSession
	}
	b.queues.Spots.Push(convert.CoreToSpot(*e, id))
	return nil
}

// RecordMarker converts and queues a marker event.
func (b *Backend) RecordMarker(e *core.MarkerEvent) error {
	id := b.SessionID()
	if id == 0 {
		return ErrNoSession
	}
	b.queues.Markers.Push(convert.CoreToMarkerEvent(*e, id))
	return nil
}

// Pending returns the number of queued rows.
func (b *Backend) Pending() int {
	return b.queues.Spots.Len() + b.queues.Markers.Len()
}

// GetLastDBWriteDuration returns the duration of the last DB write cycle.
func (b *Backend) GetLastDBWriteDuration() time.Duration {
	return time.Duration(b.lastWrite.Load())
}

// Flush writes all queued rows now.
func (b *Backend) Flush() error {
	if b.deps.DB == nil {
		return nil
	}

	b.writeMu.Lock()
	defer b.writeMu.Unlock()

	start := b.deps.Clock.Now()
	errSpots := writeQueue(b.deps.DB, b.queues.Spots, "spots", b.deps.Logger)
	errMarkers := writeQueue(b.deps.DB, b.queues.Markers, "marker events", b.deps.Logger)
	b.lastWrite.Store(int64(b.deps.Clock.Since(start)))

	if errSpots != nil {
		return errSpots
	}
	return errMarkers
}

// writeQueue writes the queued rows to the database, one transaction per batch.
// A failed batch is requeued at the head for the next cycle.
func writeQueue[T any](db *gorm.DB, q *queue.Queue[T], name string, log *slog.Logger) error {
	for !q.Empty() {
		items := q.Drain(writeBatchSize)

		tx := db.Begin()
		if err := tx.Create(&items).Error; err != nil {
			log.Error("Error writing journal batch", "table", name, "count", len(items), "error", err)
			tx.Rollback()
			q.Requeue(items...)
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
		if err := tx.Commit().Error; err != nil {
			q.Requeue(items...)
			return fmt.Errorf("failed to commit %s: %w", name, err)
		}
	}
	return nil
}

// Dropped returns how many rows were discarded because a queue was full.
func (b *Backend) Dropped() int64 {
	return b.queues.Spots.Dropped() + b.queues.Markers.Dropped()
}

// writerLoop periodically drains queues into the DB.
func (b *Backend) writerLoop() {
	defer b.wg.Done()

	ticker := b.deps.Clock.NewTicker(b.deps.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stopChan:
			return
		case <-ticker.Chan():
			if err := b.Flush(); err != nil {
				b.deps.Logger.Debug("Journal flush deferred", "error", err)
			}
		}
	}
}
