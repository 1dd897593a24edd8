package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log"
	mrand "math/rand"
	"sync"
	"time"

	"mevsbrain/internal/app/ports"
	"mevsbrain/internal/domain/game"
)

// ManagerDeps wires the shared collaborators every session draws from.
// MediaFactory builds one player per session; players are stateful (they
// hold the continuation slot) and must not be shared.
type ManagerDeps struct {
	Content      ports.ContentProvider
	Tx           ports.TxManager
	Results      ports.ResultRepository
	Analytics    ports.AnalyticsRepository
	Metrics      ports.GameMetrics
	MediaFactory func() ports.MediaPlayer
	Logger       *log.Logger
}

// Manager tracks live sessions by id and owns the story catalogue loaded at
// boot.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session

	cfg    Config
	deps   ManagerDeps
	events []game.StoryEvent
	newID  func() string
}

func NewManager(ctx context.Context, cfg Config, deps ManagerDeps) *Manager {
	if deps.Logger == nil {
		deps.Logger = log.Default()
	}
	m := &Manager{
		sessions: make(map[string]*Session),
		cfg:      cfg,
		deps:     deps,
		newID:    randomID,
	}
	if deps.Content != nil {
		events, err := deps.Content.LoadEvents(ctx)
		if err != nil {
			deps.Logger.Printf("loading story events: %v (running without story content)", err)
		}
		m.events = events
	}
	return m
}

// Create starts a new session and its run. seedStoryID optionally forces a
// story event right after the clock starts.
func (m *Manager) Create(seedStoryID string) *Session {
	id := m.newID()
	s := New(id, m.cfg, Deps{
		Media:     m.deps.MediaFactory(),
		Tx:        m.deps.Tx,
		Results:   m.deps.Results,
		Analytics: m.deps.Analytics,
		Metrics:   m.deps.Metrics,
		Logger:    m.deps.Logger,
		Rand:      mrand.New(mrand.NewSource(time.Now().UnixNano())),
	}, m.events)

	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()

	s.Start(seedStoryID)
	return s
}

// Get returns the session or ErrNotFound.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return s, nil
}

// Remove closes the session and drops it from the registry.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if ok {
		s.Close()
	}
}

// CloseAll shuts every live session down, for server teardown.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()
	for _, s := range sessions {
		s.Close()
	}
}

func randomID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return hex.EncodeToString([]byte(time.Now().Format("20060102150405.000000000")))
	}
	return hex.EncodeToString(buf)
}
