package worker

import (
	"fmt"

	"github.com/OCAP2/spotting/internal/dispatcher"
	"github.com/OCAP2/spotting/pkg/core"
)

// RegisterHandlers registers every spotting command with the dispatcher.
// All of them are synchronous so the game's call order is the processing order.
func (m *Manager) RegisterHandlers(d *dispatcher.Dispatcher) {
	// Session lifecycle
	d.Register(":SESSION:START:", m.handleSessionStart, dispatcher.Logged())
	d.Register(":SESSION:END:", m.handleSessionEnd, dispatcher.Logged())

	// Target lifecycle
	d.Register(":TARGET:REGISTER:", m.handleTargetRegister, dispatcher.Logged())
	d.Register(":TARGET:DESTROYED:", m.handleTargetDestroyed, dispatcher.Logged())
	d.Register(":TARGET:POSITION:", m.handleTargetPosition)

	// Observations
	d.Register(":SPOT:", m.handleSpot, dispatcher.Logged())
	d.Register(":UNSPOT:", m.handleUnspot, dispatcher.Logged())
	d.Register(":OBSERVER:REMOVED:", m.handleObserverRemoved, dispatcher.Logged())

	// Queries, called every simulation step while a missile is in flight
	d.Register(":LASER:TARGET:", m.handleLaserTarget)
	d.Register(":STATUS:", m.handleStatus)
}

func (m *Manager) handleSessionStart(e dispatcher.Event) (any, error) {
	req, err := m.deps.Parser.ParseSessionStart(e.Args)
	if err != nil {
		return nil, fmt.Errorf("failed to start session: %w", err)
	}

	if m.active {
		m.deps.Logger.Warn("Session started while another was open, closing it")
		m.endSession()
	}

	m.deps.Registry.Reset()

	session := core.Session{
		MissionName:  req.MissionName,
		WorldName:    req.WorldName,
		StartTime:    m.deps.Clock.Now(),
		SideFriendly: req.SideFriendly,
	}
	if err := m.deps.Backend.StartSession(&session); err != nil {
		return nil, fmt.Errorf("failed to start journal session: %w", err)
	}
	for _, h := range m.deps.Hooks {
		if err := h.StartSession(&session); err != nil {
			m.deps.Logger.Warn("Session hook failed to start", "error", err)
		}
	}
	m.deps.Mission.SetSession(session)
	m.active = true

	m.deps.Logger.Info("Session started",
		"sessionId", session.ID,
		"mission", session.MissionName,
		"world", session.WorldName,
	)
	return session.ID, nil
}

func (m *Manager) handleSessionEnd(e dispatcher.Event) (any, error) {
	if !m.active {
		return nil, ErrNoSession
	}
	if err := m.endSession(); err != nil {
		return nil, fmt.Errorf("failed to end session: %w", err)
	}
	return nil, nil
}

// endSession tears down every observation so the journal sees the markers
// removed, then closes the journal session.
func (m *Manager) endSession() error {
	m.deps.Registry.RemoveAllObservers()
	summary := m.deps.Registry.Summary()

	err := m.deps.Backend.EndSession()
	for _, h := range m.deps.Hooks {
		if hookErr := h.EndSession(); hookErr != nil {
			m.deps.Logger.Warn("Session hook failed to end", "error", hookErr)
		}
	}
	m.deps.Mission.Clear()
	m.active = false

	m.deps.Logger.Info("Session ended", "spots", summary.Spots, "rejected", summary.Rejected, "targets", summary.Entities)
	return err
}

func (m *Manager) handleTargetRegister(e dispatcher.Event) (any, error) {
	target, err := m.deps.Parser.ParseTargetRegister(e.Args)
	if err != nil {
		return nil, fmt.Errorf("failed to register target: %w", err)
	}
	if _, err := m.deps.Registry.RegisterTarget(target); err != nil {
		return nil, fmt.Errorf("failed to register target %d: %w", target.ID, err)
	}
	return nil, nil
}

func (m *Manager) handleTargetDestroyed(e dispatcher.Event) (any, error) {
	id, err := m.deps.Parser.ParseTargetID(e.Args)
	if err != nil {
		return nil, fmt.Errorf("failed to deregister target: %w", err)
	}
	return m.deps.Registry.DeregisterTarget(id), nil
}

func (m *Manager) handleTargetPosition(e dispatcher.Event) (any, error) {
	req, err := m.deps.Parser.ParseTargetPosition(e.Args)
	if err != nil {
		return nil, fmt.Errorf("failed to update target position: %w", err)
	}
	return m.deps.Registry.NotifyPositionUpdate(req.TargetID, req.Position), nil
}

func (m *Manager) handleSpot(e dispatcher.Event) (any, error) {
	req, err := m.deps.Parser.ParseSpot(e.Args)
	if err != nil {
		return nil, fmt.Errorf("failed to parse spot: %w", err)
	}
	return m.deps.Registry.TryAcquireSpot(req.Observer, req.Hit), nil
}

func (m *Manager) handleUnspot(e dispatcher.Event) (any, error) {
	req, err := m.deps.Parser.ParseUnspot(e.Args)
	if err != nil {
		return nil, fmt.Errorf("failed to parse unspot: %w", err)
	}
	return m.deps.Registry.Unspot(req.ObserverID, req.TargetID), nil
}

func (m *Manager) handleObserverRemoved(e dispatcher.Event) (any, error) {
	id, err := m.deps.Parser.ParseObserverID(e.Args)
	if err != nil {
		return nil, fmt.Errorf("failed to remove observer: %w", err)
	}
	return m.deps.Registry.RemoveObserver(id), nil
}

func (m *Manager) handleLaserTarget(e dispatcher.Event) (any, error) {
	req, err := m.deps.Parser.ParseLaserQuery(e.Args)
	if err != nil {
		return nil, fmt.Errorf("failed to parse laser query: %w", err)
	}
	return m.deps.Registry.IsLaserTarget(req.TargetID, req.Side), nil
}

func (m *Manager) handleStatus(e dispatcher.Event) (any, error) {
	return m.deps.Registry.Summary(), nil
}
