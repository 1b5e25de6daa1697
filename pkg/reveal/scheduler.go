package reveal

import (
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/alchemytree/pkg/layout"
	"github.com/matzehuels/alchemytree/pkg/observability"
)

// Default playback intervals.
const (
	DefaultDelay    = time.Second
	DefaultMinDelay = 250 * time.Millisecond
)

// Options configures a [Scheduler]. Zero values select the defaults.
type Options struct {
	Delay    time.Duration // Initial interval between ticks; raised to MinDelay when below it
	MinDelay time.Duration // Floor for Delay and SpeedUp
	Clock    Clock
	Logger   *log.Logger

	// OnChange is called with a snapshot after every change.
	OnChange func(Snapshot)
}

func (o Options) withDefaults() Options {
	if o.Delay <= 0 {
		o.Delay = DefaultDelay
	}
	if o.MinDelay <= 0 {
		o.MinDelay = DefaultMinDelay
	}
	if o.Delay < o.MinDelay {
		o.Delay = o.MinDelay
	}
	if o.Clock == nil {
		o.Clock = RealClock()
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return o
}

// Scheduler reveals the levels of one graph at a time. It is safe for
// concurrent use.
type Scheduler struct {
	opts Options

	mu      sync.Mutex
	graph   *layout.Graph
	state   State
	cursor  int
	delay   time.Duration
	nodes   []layout.Node
	edges   []layout.Edge
	timer   Timer
	gen     uint64
	seq     uint64
	started time.Time
	closed  bool
}

// New returns an idle Scheduler with no graph loaded.
func New(opts Options) *Scheduler {
	opts = opts.withDefaults()
	return &Scheduler{opts: opts, delay: opts.Delay}
}

// effects collects work that must run after the lock is released.
type effects struct {
	calls []func()
}

func (e *effects) add(f func()) { e.calls = append(e.calls, f) }

func (e *effects) run() {
	for _, f := range e.calls {
		f()
	}
}

// Load replaces the graph, cancelling any pending tick and discarding every
// exposed node and edge. The scheduler returns to Idle; the delay is kept.
// A nil graph behaves like a graph with no levels.
func (s *Scheduler) Load(g *layout.Graph) {
	var fx effects
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.cancel()
	s.graph = g
	s.clear()
	s.setState(&fx, Idle)
	s.opts.Logger.Debug("reveal graph loaded", "build", s.buildID(), "levels", s.total())
	s.publish(&fx, nil)
	s.mu.Unlock()
	fx.run()
}

// Play starts or resumes playback. It is a no-op while Playing or Complete.
// With no levels to reveal, Play moves straight to Complete.
func (s *Scheduler) Play() {
	var fx effects
	s.mu.Lock()
	s.play(&fx)
	s.mu.Unlock()
	fx.run()
}

func (s *Scheduler) play(fx *effects) {
	if s.closed || (s.state != Idle && s.state != Paused) {
		return
	}
	if s.state == Idle {
		s.started = s.opts.Clock.Now()
	}
	if s.cursor >= s.total() {
		s.finish(fx)
		s.publish(fx, nil)
		return
	}
	s.setState(fx, Playing)
	s.schedule()
	s.publish(fx, nil)
}

// Pause freezes the cursor. It is a no-op unless Playing.
func (s *Scheduler) Pause() {
	var fx effects
	s.mu.Lock()
	s.pause(&fx)
	s.mu.Unlock()
	fx.run()
}

func (s *Scheduler) pause(fx *effects) {
	if s.closed || s.state != Playing {
		return
	}
	s.cancel()
	s.setState(fx, Paused)
	s.publish(fx, nil)
}

// Toggle pauses while Playing and plays otherwise.
func (s *Scheduler) Toggle() {
	var fx effects
	s.mu.Lock()
	if s.state == Playing {
		s.pause(&fx)
	} else {
		s.play(&fx)
	}
	s.mu.Unlock()
	fx.run()
}

// Reset returns to Idle from any state and clears every exposed node and
// edge. The current delay is kept.
func (s *Scheduler) Reset() {
	var fx effects
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.cancel()
	s.clear()
	s.setState(&fx, Idle)
	s.publish(&fx, nil)
	s.mu.Unlock()
	fx.run()
}

// SpeedUp halves the delay, never going below MinDelay. A tick that is
// already scheduled keeps its original deadline.
func (s *Scheduler) SpeedUp() {
	var fx effects
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.delay = max(s.delay/2, s.opts.MinDelay)
	s.opts.Logger.Debug("reveal speed changed", "delay", s.delay)
	s.publish(&fx, nil)
	s.mu.Unlock()
	fx.run()
}

// Status returns the current progress.
func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status()
}

// Visible returns copies of the exposed nodes and edges, in exposure order.
func (s *Scheduler) Visible() ([]layout.Node, []layout.Edge) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]layout.Node(nil), s.nodes...), append([]layout.Edge(nil), s.edges...)
}

// Close cancels any pending tick. A closed scheduler ignores every call.
func (s *Scheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancel()
	s.closed = true
}

// tick is the timer callback for generation gen.
func (s *Scheduler) tick(gen uint64) {
	var fx effects
	s.mu.Lock()
	if gen != s.gen || s.state != Playing || s.closed {
		s.mu.Unlock()
		return
	}
	s.timer = nil

	lvl := s.graph.Levels[s.cursor]
	for _, id := range lvl.NodeIDs {
		if n, ok := s.graph.Node(id); ok {
			s.nodes = append(s.nodes, n)
		}
	}
	for _, id := range lvl.EdgeIDs {
		if e, ok := s.graph.Edge(id); ok {
			s.edges = append(s.edges, e)
		}
	}
	s.cursor++

	build, depth, nn, ne := s.buildID(), lvl.Depth, len(lvl.NodeIDs), len(lvl.EdgeIDs)
	fx.add(func() { observability.Reveal().OnLevelRevealed(build, depth, nn, ne) })
	s.opts.Logger.Debug("reveal level exposed", "build", build, "depth", depth, "nodes", nn, "edges", ne)

	if s.cursor >= s.total() {
		s.finish(&fx)
	} else {
		s.schedule()
	}
	s.publish(&fx, &lvl)
	s.mu.Unlock()
	fx.run()
}

// finish moves to Complete and reports the elapsed playback time.
func (s *Scheduler) finish(fx *effects) {
	s.setState(fx, Complete)
	build, levels, elapsed := s.buildID(), s.total(), s.opts.Clock.Now().Sub(s.started)
	fx.add(func() { observability.Reveal().OnComplete(build, levels, elapsed) })
}

// schedule arms the timer for the next tick.
func (s *Scheduler) schedule() {
	s.cancel()
	gen := s.gen
	s.timer = s.opts.Clock.AfterFunc(s.delay, func() { s.tick(gen) })
}

// cancel stops the pending timer and invalidates any tick already in flight.
func (s *Scheduler) cancel() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.gen++
}

func (s *Scheduler) clear() {
	s.cursor = 0
	s.nodes = nil
	s.edges = nil
}

func (s *Scheduler) setState(fx *effects, to State) {
	from := s.state
	s.state = to
	if from == to {
		return
	}
	build := s.buildID()
	s.opts.Logger.Debug("reveal state", "build", build, "from", from, "to", to, "cursor", s.cursor)
	fx.add(func() { observability.Reveal().OnStateChange(build, from.String(), to.String()) })
}

// publish queues a snapshot for the listener.
func (s *Scheduler) publish(fx *effects, exposed *layout.Level) {
	if s.opts.OnChange == nil {
		return
	}
	s.seq++
	snap := Snapshot{
		Seq:     s.seq,
		BuildID: s.buildID(),
		Status:  s.status(),
		Nodes:   append([]layout.Node(nil), s.nodes...),
		Edges:   append([]layout.Edge(nil), s.edges...),
		Exposed: exposed,
	}
	fn := s.opts.OnChange
	fx.add(func() { fn(snap) })
}

func (s *Scheduler) status() Status {
	return Status{
		Cursor:   s.cursor,
		Total:    s.total(),
		State:    s.state,
		Delay:    s.delay,
		Complete: s.state == Complete,
	}
}

func (s *Scheduler) total() int {
	if s.graph == nil {
		return 0
	}
	return len(s.graph.Levels)
}

func (s *Scheduler) buildID() string {
	if s.graph == nil {
		return ""
	}
	return s.graph.BuildID
}
