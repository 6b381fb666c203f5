package lens

import (
	"sync"
	"time"

	"github.com/ubreblanca/vscode-py-sig-lens/internal/config"
	"github.com/ubreblanca/vscode-py-sig-lens/internal/render"
)

// State names the refresh controller's position in its cycle.
type State string

const (
	// StateIdle means the current labels match the current text.
	StateIdle State = "idle"
	// StateScheduled means an edit is waiting out the debounce window.
	StateScheduled State = "scheduled"
	// StateParsing means a pipeline run over the latest text is in flight.
	StateParsing State = "parsing"
)

// Controller reconciles one document's labels as its text changes. Edits move
// the controller Idle/Parsing → Scheduled and restart the debounce timer; the
// timer firing moves Scheduled → Parsing, runs the full pipeline over the
// latest text, and emits only the add/update/remove operations the diff
// produces. Rapid edits collapse: a run superseded by a newer edit finishes
// but its result is discarded, and the newer edit's own cycle takes over.
// Supersession is tracked with a generation counter; there is no explicit
// cancel signal.
type Controller struct {
	uri      string
	pipeline *Pipeline
	cache    *resultCache
	emit     func(uri string, ops []Op)

	mu         sync.Mutex
	state      State
	text       []byte
	cfg        *config.Config
	labels     []render.Label
	generation uint64
	timer      *time.Timer
	stopped    bool
}

// newController creates a controller in the Idle state with no text. The
// emit callback receives diff operations; it must not block.
func newController(uri string, pipeline *Pipeline, cache *resultCache, cfg *config.Config, emit func(uri string, ops []Op)) *Controller {
	return &Controller{
		uri:      uri,
		pipeline: pipeline,
		cache:    cache,
		emit:     emit,
		state:    StateIdle,
		cfg:      cfg,
	}
}

// Update records a new full text for the document and (re)starts the debounce
// timer. Only the most recent update survives the window.
func (c *Controller) Update(text []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return
	}

	c.text = append([]byte(nil), text...)
	c.generation++
	c.state = StateScheduled

	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.cfg.Debounce(), c.fire)
}

// SetConfig swaps the controller's configuration snapshot and re-runs the
// pipeline immediately, since a settings change must refresh every label
// without waiting for an edit.
func (c *Controller) SetConfig(cfg *config.Config) {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}
	c.cfg = cfg
	c.mu.Unlock()

	c.RunNow()
}

// RunNow runs a full cycle synchronously, bypassing the debounce window. Any
// in-flight debounced run is superseded and will discard its result.
func (c *Controller) RunNow() {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.generation++
	gen := c.generation
	text := c.text
	cfg := c.cfg
	c.state = StateParsing
	c.mu.Unlock()

	c.finish(gen, c.runPipeline(text, cfg))
}

// fire is the debounce timer callback: Scheduled → Parsing → Idle. A timer
// that lost the race with a newer schedule finds state != Scheduled and
// returns without running.
func (c *Controller) fire() {
	c.mu.Lock()
	if c.stopped || c.state != StateScheduled {
		c.mu.Unlock()
		return
	}
	gen := c.generation
	text := c.text
	cfg := c.cfg
	c.state = StateParsing
	c.mu.Unlock()

	c.finish(gen, c.runPipeline(text, cfg))
}

// finish installs a run's labels and emits the diff, unless a newer edit
// superseded the run while it was parsing. A superseded result is dropped
// whole; the newer edit's pending cycle delivers the fresh one.
func (c *Controller) finish(gen uint64, next []render.Label) {
	c.mu.Lock()
	if c.stopped || c.generation != gen {
		c.mu.Unlock()
		return
	}
	ops := diffLabels(c.labels, next)
	c.labels = next
	c.state = StateIdle
	c.mu.Unlock()

	if len(ops) > 0 && c.emit != nil {
		c.emit(c.uri, ops)
	}
}

// runPipeline runs the pipeline for text, reusing a cached result when the
// content hash and config fingerprint match a previous run.
func (c *Controller) runPipeline(text []byte, cfg *config.Config) []render.Label {
	if c.cache == nil {
		return c.pipeline.Run(text, cfg)
	}
	key := c.cache.key(text, cfg)
	if labels, ok := c.cache.get(key); ok {
		return labels
	}
	labels := c.pipeline.Run(text, cfg)
	c.cache.set(key, labels)
	return labels
}

// Labels returns a snapshot of the current labels.
func (c *Controller) Labels() []render.Label {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]render.Label(nil), c.labels...)
}

// State returns the controller's current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Stop halts the controller. Pending timers are cancelled; an in-flight run
// finishes without emitting. Stop is idempotent.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopped = true
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}
