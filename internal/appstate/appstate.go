// Package appstate holds UI preferences shared by every view.
package appstate

import (
	"log/slog"
	"strconv"
	"sync"
)

const (
	keyDarkMode         = "darkMode"
	keySidebarCollapsed = "isSidebarCollapsed"
)

type State struct {
	DarkMode         bool `json:"isDarkMode"`
	SidebarCollapsed bool `json:"isSidebarCollapsed"`
}

// Persister stores preferences between runs.
type Persister interface {
	Get(key string) (string, error)
	Set(key, value string) error
}

// Store serializes writes to the state and fans every change out to
// subscribers. Listeners run synchronously after the lock is released;
// fn passed to Update runs under it and must not call back into the store.
type Store struct {
	mu        sync.Mutex
	state     State
	listeners map[int]func(State)
	nextId    int
	persister Persister
	logger    *slog.Logger
}

func NewStore(initial State) *Store {
	return &Store{
		state:     initial,
		listeners: make(map[int]func(State)),
		logger:    slog.Default(),
	}
}

// Load builds a store from saved preferences. A nil persister gives the
// zero state with nothing saved.
func Load(p Persister, logger *slog.Logger) (*Store, error) {
	s := NewStore(State{})
	if logger != nil {
		s.logger = logger
	}
	if p == nil {
		return s, nil
	}
	s.persister = p

	darkMode, err := readBool(p, keyDarkMode)
	if err != nil {
		return nil, err
	}
	collapsed, err := readBool(p, keySidebarCollapsed)
	if err != nil {
		return nil, err
	}
	s.state = State{DarkMode: darkMode, SidebarCollapsed: collapsed}
	return s, nil
}

func readBool(p Persister, key string) (bool, error) {
	raw, err := p.Get(key)
	if err != nil || raw == "" {
		return false, err
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, nil
	}
	return v, nil
}

func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Update applies fn to the current state. Changes are saved in the order
// they are applied; subscribers are notified only when the state actually
// changes.
func (s *Store) Update(fn func(State) State) State {
	s.mu.Lock()
	prev := s.state
	next := fn(prev)
	if next == prev {
		s.mu.Unlock()
		return next
	}
	s.state = next
	s.persist(prev, next)
	listeners := make([]func(State), 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l(next)
	}
	return next
}

// persist must be called with s.mu held.
func (s *Store) persist(prev, next State) {
	if s.persister == nil {
		return
	}
	if prev.DarkMode != next.DarkMode {
		s.save(keyDarkMode, next.DarkMode)
	}
	if prev.SidebarCollapsed != next.SidebarCollapsed {
		s.save(keySidebarCollapsed, next.SidebarCollapsed)
	}
}

func (s *Store) save(key string, v bool) {
	if err := s.persister.Set(key, strconv.FormatBool(v)); err != nil {
		s.logger.Warn("save preference", slog.String("key", key), slog.String("error", err.Error()))
	}
}

// Subscribe registers fn for every future change and returns a function
// that removes it.
func (s *Store) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextId
	s.nextId++
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

func (s *Store) SetDarkMode(on bool) State {
	return s.Update(func(st State) State {
		st.DarkMode = on
		return st
	})
}

func (s *Store) SetSidebarCollapsed(collapsed bool) State {
	return s.Update(func(st State) State {
		st.SidebarCollapsed = collapsed
		return st
	})
}

func (s *Store) ToggleSidebar() State {
	return s.Update(func(st State) State {
		st.SidebarCollapsed = !st.SidebarCollapsed
		return st
	})
}
