package lens

import (
	"sync"

	"github.com/google/uuid"

	"github.com/ubreblanca/vscode-py-sig-lens/internal/config"
	"github.com/ubreblanca/vscode-py-sig-lens/internal/render"
)

// Event is one label operation delivered to a subscriber.
type Event struct {
	URI        string
	Kind       OpKind
	AnchorLine int
	Text       string
}

// Session manages the label pipelines for a set of open documents. Each
// document gets its own refresh controller; documents never share mutable
// state and run concurrently. Configuration is swapped atomically and each
// swap re-runs every open document.
type Session struct {
	pipeline *Pipeline
	cache    *resultCache

	mu      sync.RWMutex
	cfg     *config.Config
	docs    map[string]*Controller
	subs    map[string]chan Event
	stopped bool
}

// NewSession creates a session with the given configuration. A nil cfg uses
// defaults.
func NewSession(cfg *config.Config) *Session {
	if cfg == nil {
		cfg = config.Default()
	}
	// A session without a cache still works; every run just parses fresh.
	cache, err := newResultCache(defaultCacheCapacity)
	if err != nil {
		cache = nil
	}
	return &Session{
		pipeline: NewPipeline(),
		cache:    cache,
		cfg:      cfg.Clone(),
		docs:     make(map[string]*Controller),
		subs:     make(map[string]chan Event),
	}
}

// OpenDocument registers a document and runs its pipeline immediately,
// emitting add operations for every label found. Opening an already-open
// document replaces its text.
func (s *Session) OpenDocument(uri string, text []byte) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	ctrl, ok := s.docs[uri]
	if !ok {
		ctrl = newController(uri, s.pipeline, s.cache, s.cfg, s.publish)
		s.docs[uri] = ctrl
	}
	s.mu.Unlock()

	ctrl.Update(text)
	ctrl.RunNow()
}

// UpdateDocument schedules a debounced refresh with the document's new full
// text. Unknown URIs are opened implicitly.
func (s *Session) UpdateDocument(uri string, text []byte) {
	s.mu.RLock()
	ctrl, ok := s.docs[uri]
	stopped := s.stopped
	s.mu.RUnlock()
	if stopped {
		return
	}
	if !ok {
		s.OpenDocument(uri, text)
		return
	}
	ctrl.Update(text)
}

// CloseDocument removes a document, emitting remove operations for every
// label it still displays.
func (s *Session) CloseDocument(uri string) {
	s.mu.Lock()
	ctrl, ok := s.docs[uri]
	if ok {
		delete(s.docs, uri)
	}
	s.mu.Unlock()
	if !ok {
		return
	}

	labels := ctrl.Labels()
	ctrl.Stop()
	if ops := removeAll(labels); len(ops) > 0 {
		s.publish(uri, ops)
	}
}

// SetConfig installs a new configuration snapshot and re-runs every open
// document under it. Controllers that lose labels under the new config emit
// the corresponding removes.
func (s *Session) SetConfig(cfg *config.Config) {
	if cfg == nil {
		cfg = config.Default()
	}
	snapshot := cfg.Clone()

	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.cfg = snapshot
	ctrls := make([]*Controller, 0, len(s.docs))
	for _, ctrl := range s.docs {
		ctrls = append(ctrls, ctrl)
	}
	s.mu.Unlock()

	for _, ctrl := range ctrls {
		ctrl.SetConfig(snapshot)
	}
}

// Config returns the session's current configuration snapshot.
func (s *Session) Config() *config.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.Clone()
}

// Labels returns the current labels for one document, or nil when the
// document is not open.
func (s *Session) Labels(uri string) []render.Label {
	s.mu.RLock()
	ctrl, ok := s.docs[uri]
	s.mu.RUnlock()
	if !ok {
		return nil
	}
	return ctrl.Labels()
}

// Subscribe registers a label event channel and returns its subscription ID.
// The channel is buffered; slow subscribers miss events rather than blocking
// document pipelines. Callers must Unsubscribe when done.
func (s *Session) Subscribe() (string, <-chan Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.New().String()
	ch := make(chan Event, 64)
	s.subs[id] = ch
	return id, ch
}

// Unsubscribe removes a subscriber and closes its channel. Safe to call
// multiple times with the same ID.
func (s *Session) Unsubscribe(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ch, ok := s.subs[id]; ok {
		close(ch)
		delete(s.subs, id)
	}
}

// publish fans one document's diff operations out to all subscribers.
// Sending is non-blocking.
func (s *Session) publish(uri string, ops []Op) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.stopped {
		return
	}

	for _, op := range ops {
		event := Event{URI: uri, Kind: op.Kind, AnchorLine: op.AnchorLine, Text: op.Text}
		for _, ch := range s.subs {
			select {
			case ch <- event:
			default:
				// Subscriber slow, skip (non-blocking)
			}
		}
	}
}

// Stop shuts the session down: every controller stops, every subscriber
// channel closes, and the result cache is released. Stop is idempotent.
func (s *Session) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	ctrls := make([]*Controller, 0, len(s.docs))
	for _, ctrl := range s.docs {
		ctrls = append(ctrls, ctrl)
	}
	s.docs = make(map[string]*Controller)
	for id, ch := range s.subs {
		close(ch)
		delete(s.subs, id)
	}
	cache := s.cache
	s.cache = nil
	s.mu.Unlock()

	for _, ctrl := range ctrls {
		ctrl.Stop()
	}
	if cache != nil {
		cache.close()
	}
}
