// Package store holds the todo collection and the only sanctioned ways to change it.
//
// A TodoStore owns an ordered list of items and the counter used to mint ids.
// Callers read through derived views, which always return copies, and mutate
// through Add, Toggle, Remove, ClearCompleted, ToggleAll and Reset.
//
// When built with a storage.Adapter the store hydrates itself from the adapter
// once, at construction, and writes its full state back after every mutation.
// Adapter failures and rejected operations are reported on the store's logger
// and never returned to the caller.
package store

import (
	"slices"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/storage"
)

// DefaultKey is the key the state is persisted under.
const DefaultKey = "tada_todo_data"

// Listener receives a snapshot of the state after each mutation.
type Listener func(model.State)

// Option configures a TodoStore.
type Option func(*TodoStore)

// WithLogger sets the diagnostic logger. The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(s *TodoStore) { s.log = l.With().Str("component", "todostore").Logger() }
}

// WithKey overrides DefaultKey.
func WithKey(key string) Option {
	return func(s *TodoStore) {
		if key != "" {
			s.key = key
		}
	}
}

// TodoStore is safe for concurrent use, though it is meant for a single caller.
type TodoStore struct {
	mu      sync.RWMutex
	state   model.State
	adapter storage.Adapter
	key     string
	log     zerolog.Logger

	listenersMu sync.RWMutex
	listeners   []subscription // in subscription order
	nextSub     int
}

type subscription struct {
	id int
	fn Listener
}

// New builds a store. adapter may be nil, in which case the store lives purely
// in memory and starts from the built-in defaults.
func New(adapter storage.Adapter, opts ...Option) *TodoStore {
	s := &TodoStore{
		state:     model.DefaultState(),
		adapter:   adapter,
		key:       DefaultKey,
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.restore()
	return s
}

// Key is the adapter key the store reads and writes.
func (s *TodoStore) Key() string { return s.key }

func (s *TodoStore) restore() {
	if s.adapter == nil {
		s.log.Debug().Msg("no persistence adapter, using defaults")
		return
	}
	raw, ok, err := s.adapter.Get(s.key)
	if err != nil {
		s.log.Warn().Err(err).Str("key", s.key).Msg("failed to read saved state, using defaults")
		return
	}
	if !ok || raw == "" {
		s.log.Debug().Str("key", s.key).Msg("no saved state, using defaults")
		return
	}
	st, err := Decode([]byte(raw))
	if err != nil {
		s.log.Warn().Err(err).Str("key", s.key).Msg("failed to parse saved state, using defaults")
		return
	}
	s.state = s.repair(st)
	s.log.Debug().Int("items", len(s.state.Items)).Int("next_id", s.state.NextID).Msg("state restored")
}

// repair restores the id invariants on a decoded state: every id positive and
// unique, nextId above all of them.
func (s *TodoStore) repair(st model.State) model.State {
	seen := make(map[int]bool, len(st.Items))
	maxID := 0
	for _, it := range st.Items {
		if it.ID > 0 && !seen[it.ID] {
			seen[it.ID] = true
			if it.ID > maxID {
				maxID = it.ID
			}
		}
	}
	if st.NextID <= maxID {
		s.log.Warn().Int("next_id", st.NextID).Int("max_id", maxID).Msg("saved nextId not above existing ids, clamping")
		st.NextID = maxID + 1
	}
	if st.NextID < 1 {
		st.NextID = 1
	}

	clear(seen)
	for i := range st.Items {
		id := st.Items[i].ID
		if id > 0 && !seen[id] {
			seen[id] = true
			continue
		}
		s.log.Warn().Int("id", id).Int("new_id", st.NextID).Msg("invalid or duplicate saved id, reassigning")
		st.Items[i].ID = st.NextID
		seen[st.NextID] = true
		st.NextID++
	}
	return st
}

// ---------------------------------------------------
// Operations
// ---------------------------------------------------

// Add appends a new active item titled with the trimmed title.
// An empty title is rejected and reported; ok is false then.
func (s *TodoStore) Add(title string) (item model.Item, ok bool) {
	text := strings.TrimSpace(title)
	if text == "" {
		s.log.Warn().Msg("cannot add empty todo")
		return model.Item{}, false
	}

	s.mu.Lock()
	item = model.Item{ID: s.state.NextID, Title: text}
	s.state.Items = append(s.state.Items, item)
	s.state.NextID++
	snap := s.commitLocked()
	s.mu.Unlock()

	s.notify(snap)
	return item, true
}

// Toggle flips the done flag of the item with id.
func (s *TodoStore) Toggle(id int) bool {
	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		s.log.Warn().Int("id", id).Msg("todo not found")
		return false
	}
	s.state.Items[i].Done = !s.state.Items[i].Done
	snap := s.commitLocked()
	s.mu.Unlock()

	s.notify(snap)
	return true
}

// Remove deletes the item with id, keeping the order of the others.
func (s *TodoStore) Remove(id int) bool {
	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		s.log.Warn().Int("id", id).Msg("todo not found")
		return false
	}
	s.state.Items = append(s.state.Items[:i], s.state.Items[i+1:]...)
	snap := s.commitLocked()
	s.mu.Unlock()

	s.notify(snap)
	return true
}

// ClearCompleted drops every done item and returns how many were dropped.
func (s *TodoStore) ClearCompleted() int {
	s.mu.Lock()
	kept := make([]model.Item, 0, len(s.state.Items))
	for _, it := range s.state.Items {
		if !it.Done {
			kept = append(kept, it)
		}
	}
	removed := len(s.state.Items) - len(kept)
	s.state.Items = kept
	snap := s.commitLocked()
	s.mu.Unlock()

	s.notify(snap)
	return removed
}

// ToggleAll marks everything active when everything is done, and everything
// done otherwise.
func (s *TodoStore) ToggleAll() {
	s.mu.Lock()
	allDone := true
	for _, it := range s.state.Items {
		if !it.Done {
			allDone = false
			break
		}
	}
	for i := range s.state.Items {
		s.state.Items[i].Done = !allDone
	}
	snap := s.commitLocked()
	s.mu.Unlock()

	s.notify(snap)
}

// Reset replaces the state with a fresh copy of the built-in defaults.
func (s *TodoStore) Reset() {
	s.mu.Lock()
	s.state = model.DefaultState()
	snap := s.commitLocked()
	s.mu.Unlock()

	s.notify(snap)
}

func (s *TodoStore) indexLocked(id int) int {
	for i, it := range s.state.Items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

// commitLocked persists the current state and returns a snapshot for listeners.
// Must be called with mu held.
func (s *TodoStore) commitLocked() model.State {
	snap := s.state.Clone()
	s.persist(snap)
	return snap
}

func (s *TodoStore) persist(st model.State) {
	if s.adapter == nil {
		return
	}
	b, err := Encode(st)
	if err != nil {
		s.log.Warn().Err(err).Msg("failed to encode state")
		return
	}
	if err := s.adapter.Set(s.key, string(b)); err != nil {
		s.log.Warn().Err(err).Str("key", s.key).Msg("failed to save state")
	}
}

// ---------------------------------------------------
// Derived views
// ---------------------------------------------------

// All returns every item in insertion order.
func (s *TodoStore) All() []model.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return model.CloneItems(s.state.Items)
}

// Active returns the items that are not done.
func (s *TodoStore) Active() []model.Item {
	return s.filter(false)
}

// Completed returns the items that are done.
func (s *TodoStore) Completed() []model.Item {
	return s.filter(true)
}

func (s *TodoStore) filter(done bool) []model.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Item, 0, len(s.state.Items))
	for _, it := range s.state.Items {
		if it.Done == done {
			out = append(out, it)
		}
	}
	return out
}

// RemainingCount is the number of active items.
func (s *TodoStore) RemainingCount() int {
	return s.count(false)
}

// CompletedCount is the number of done items.
func (s *TodoStore) CompletedCount() int {
	return s.count(true)
}

func (s *TodoStore) count(done bool) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, it := range s.state.Items {
		if it.Done == done {
			n++
		}
	}
	return n
}

// TotalCount is the number of items.
func (s *TodoStore) TotalCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.state.Items)
}

// AllCompleted reports whether there is at least one item and none is active.
func (s *TodoStore) AllCompleted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.state.Items) == 0 {
		return false
	}
	for _, it := range s.state.Items {
		if !it.Done {
			return false
		}
	}
	return true
}

// Get looks up an item by id.
func (s *TodoStore) Get(id int) (model.Item, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexLocked(id); i >= 0 {
		return s.state.Items[i], true
	}
	return model.Item{}, false
}

// Snapshot returns a deep copy of the whole state.
func (s *TodoStore) Snapshot() model.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// ---------------------------------------------------
// Listeners
// ---------------------------------------------------

// Subscribe registers fn to run after every mutation. Listeners are called in
// the order they subscribed. The returned func removes fn again.
func (s *TodoStore) Subscribe(fn Listener) (unsubscribe func()) {
	s.listenersMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.listeners = append(s.listeners, subscription{id: id, fn: fn})
	s.listenersMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.listenersMu.Lock()
			s.listeners = slices.DeleteFunc(s.listeners, func(sub subscription) bool { return sub.id == id })
			s.listenersMu.Unlock()
		})
	}
}

func (s *TodoStore) notify(snap model.State) {
	s.listenersMu.RLock()
	fns := make([]Listener, 0, len(s.listeners))
	for _, sub := range s.listeners {
		fns = append(fns, sub.fn)
	}
	s.listenersMu.RUnlock()

	for _, fn := range fns {
		fn(snap.Clone())
	}
}
