package virtual

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// State is the scheduling state of a Manager.
type State int

const (
	// Idle means no tick is pending.
	Idle State = iota
	// TickScheduled means a frame callback has been requested.
	TickScheduled
	// Ticking means a tick is running.
	Ticking
)

func (s State) String() string {
	switch s {
	case TickScheduled:
		return "tick-scheduled"
	case Ticking:
		return "ticking"
	default:
		return "idle"
	}
}

// Stats counts what a Manager has done since it was created.
type Stats struct {
	Ticks      uint64
	Reveals    uint64
	Hides      uint64
	Adopted    uint64
	Released   uint64
	Rejections uint64
	// Absorbed counts update requests merged into an already pending tick.
	Absorbed uint64
	// Converged counts syncs that reached an empty diff.
	Converged uint64
	// FramesOfSync is the number of ticks the most recent sync needed to
	// converge.
	FramesOfSync int
}

// Inconsistency is an element whose recorded state disagrees with the hider.
type Inconsistency struct {
	Element Element
	// Revealed is the manager's record.
	Revealed bool
	// HiderRevealed is what the hider reports.
	HiderRevealed bool
}

func (i Inconsistency) String() string {
	return fmt.Sprintf("element %d: revealed=%t hider=%t", i.Element.ID(), i.Revealed, i.HiderRevealed)
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithIntersectionObserver sets the feed used when Config.UseIntersection is
// on. The manager observes the revealed run and the sibling just outside each
// end of it.
func WithIntersectionObserver(o Observer) Option {
	return func(m *Manager) {
		m.intersection = o
	}
}

// Manager keeps the revealed children of a host converged on the viewport
// plus a buffer. It is driven by a FrameScheduler and must only be used from
// the UI goroutine.
type Manager struct {
	host   Host
	hider  Hider
	frames FrameScheduler
	cfg    Config
	logger *slog.Logger

	sizes    *SizeEstimator
	window   *WindowCalculator
	revealed *VisibilityState
	pending  []pendingOp

	intersection Observer
	observed     *VisibilityState

	state  State
	again  bool
	cancel func()
	closed bool

	syncTicks int
	stats     Stats
}

// NewManager returns a manager for host. Nothing happens until a signal
// arrives or Sync is called.
func NewManager(host Host, hider Hider, frames FrameScheduler, cfg Config, opts ...Option) (*Manager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	m := &Manager{
		host:     host,
		hider:    hider,
		frames:   frames,
		cfg:      cfg,
		revealed: NewVisibilityState(),
		observed: NewVisibilityState(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}
	m.logger = m.logger.With("instance", uuid.New().String())
	m.sizes = NewSizeEstimator(cfg.DefaultHeightEstimate, m.revealed.Has)
	m.window = NewWindowCalculator(m.sizes)

	if cfg.UseIntersection && m.intersection == nil {
		m.logger.Warn("virtual: intersection feed requested without an observer, falling back to scroll events")
		m.cfg.UseIntersection = false
	}
	return m, nil
}

// Config returns the active configuration.
func (m *Manager) Config() Config {
	return m.cfg
}

// Sizes exposes the size bookkeeping.
func (m *Manager) Sizes() *SizeEstimator {
	return m.sizes
}

// State returns the scheduling state.
func (m *Manager) State() State {
	return m.state
}

// Stats returns a copy of the counters.
func (m *Manager) Stats() Stats {
	return m.stats
}

// IsRevealed reports whether e is in the revealed set.
func (m *Manager) IsRevealed(e Element) bool {
	return m.revealed.Has(e)
}

// Revealed returns the revealed elements in the order they were revealed.
func (m *Manager) Revealed() []Element {
	return m.revealed.Elements()
}

// Observing reports whether e is watched by the intersection feed.
func (m *Manager) Observing(e Element) bool {
	return m.observed.Has(e)
}

// UsesIntersection reports whether intersection changes, rather than scroll
// events, drive ticks.
func (m *Manager) UsesIntersection() bool {
	return m.cfg.UseIntersection
}

// ScheduleUpdate requests a tick. Requests made while a tick is scheduled are
// absorbed; requests made while ticking produce exactly one follow-up tick.
func (m *Manager) ScheduleUpdate() {
	if m.closed {
		return
	}
	switch m.state {
	case Idle:
		m.state = TickScheduled
		m.cancel = m.frames.RequestFrame(m.onFrame)
	case TickScheduled:
		m.stats.Absorbed++
	case Ticking:
		if m.again {
			m.stats.Absorbed++
		}
		m.again = true
	}
}

// Sync runs a tick now. It does nothing on an empty container.
func (m *Manager) Sync() {
	if m.closed || m.host.Children().Len() == 0 {
		return
	}
	switch m.state {
	case Ticking:
		m.again = true
		return
	case TickScheduled:
		m.cancel()
		m.cancel = nil
	}
	m.run()
}

func (m *Manager) onFrame() {
	m.cancel = nil
	if m.closed || m.state != TickScheduled {
		return
	}
	m.run()
}

func (m *Manager) run() {
	m.state = Ticking
	m.again = false
	if m.tick() {
		m.again = true
	}
	m.state = Idle
	if m.again {
		m.again = false
		m.ScheduleUpdate()
	}
}

// tick runs one pass and reports whether the revealed set changed.
func (m *Manager) tick() bool {
	m.stats.Ticks++
	m.syncTicks++
	log := m.logger
	if m.cfg.Debug {
		log = log.With("trace_id", uuid.New().String())
	}

	m.reap()

	children := m.host.Children()
	if children.Len() == 0 {
		if m.revealed.Len() > 0 {
			m.violation(ErrInvalidState, fmt.Sprintf("%d revealed elements in an empty container", m.revealed.Len()))
			m.revealed.Clear()
		}
		m.converged(log)
		return false
	}
	if m.cfg.Debug {
		m.checkOrder(children)
	}

	changed, bounds := m.pass(children, log)
	for pass := 1; m.cfg.UseForcedLayouts && changed && pass < m.cfg.MaxForcedPasses; pass++ {
		m.host.ForceLayout()
		children = m.host.Children()
		var next Bounds
		changed, next = m.pass(children, log)
		if bounds.SameEnds(next) {
			changed = false
		}
		bounds = next
	}

	if m.cfg.UseIntersection {
		m.updateIntersection(children, bounds)
	}
	if !changed {
		m.converged(log)
	}
	return changed
}

// pass measures, computes the target bounds and applies the diff.
func (m *Manager) pass(children Children, log *slog.Logger) (bool, Bounds) {
	m.measureRevealed()

	desired := DesiredBounds(m.host.Viewport(), m.cfg.BufferFraction, m.host.ContentHeight())
	target, err := m.target(children, desired)
	if err != nil {
		log.Warn("virtual: failed to compute bounds", "error", err)
		return false, Bounds{}
	}

	next := NewVisibilityState()
	if err := target.Walk(children, func(e Element) { next.Add(e) }); err != nil {
		m.violation(err, fmt.Sprintf("bounds %v", target))
	}
	toHide, toReveal := m.revealed.Diff(next)
	for _, e := range toHide {
		m.hide(e)
	}
	for _, e := range toReveal {
		m.reveal(e)
	}

	if m.cfg.Debug {
		log.Debug("virtual: tick",
			"desired", desired.String(),
			"bounds", target.String(),
			"hide", len(toHide),
			"reveal", len(toReveal),
			"revealed", m.revealed.Len())
	}
	return len(toHide)+len(toReveal) > 0, target
}

// target returns the run of children that should be revealed for desired.
func (m *Manager) target(children Children, desired Bounds) (Bounds, error) {
	current, ok := m.revealedBounds(children)
	if !ok || !intersects(current, desired) {
		seed, err := m.window.Seed(children, desired.Low)
		if err != nil {
			return Bounds{}, err
		}
		current = seed
	}

	if current.Low < desired.Low {
		current = m.window.ShrinkBounds(children, current, desired, Up)
	}
	if current.High > desired.High {
		current = m.window.ShrinkBounds(children, current, desired, Down)
	}
	if current.Low > desired.Low {
		current = m.window.GrowBounds(children, current, desired, Up)
	}
	if current.High < desired.High {
		current = m.window.GrowBounds(children, current, desired, Down)
	}
	return current, nil
}

// revealedBounds returns the run from the lowest to the highest revealed
// element.
func (m *Manager) revealedBounds(children Children) (Bounds, bool) {
	lowIndex, highIndex := -1, -1
	for _, e := range m.revealed.Elements() {
		i := children.IndexOf(e)
		if i < 0 {
			m.violation(ErrInvalidState, fmt.Sprintf("revealed element %d is not a child", e.ID()))
			m.revealed.Delete(e)
			m.sizes.Remove(e)
			continue
		}
		if lowIndex < 0 || i < lowIndex {
			lowIndex = i
		}
		if i > highIndex {
			highIndex = i
		}
	}
	if lowIndex < 0 {
		return Bounds{}, false
	}
	return ElementBounds(children.At(lowIndex), children.At(highIndex)), true
}

func (m *Manager) measureRevealed() {
	for _, e := range m.revealed.Elements() {
		if err := m.sizes.EnsureValid(e); err != nil {
			m.violation(err, "measure revealed")
		}
	}
}

func (m *Manager) reveal(e Element) {
	if !m.revealed.Add(e) {
		m.violation(ErrAlreadyRevealed, fmt.Sprintf("element %d", e.ID()))
		return
	}
	m.stats.Reveals++
	m.track(e, "reveal", m.hider.Reveal(e))
}

func (m *Manager) hide(e Element) {
	if !m.revealed.Delete(e) {
		m.violation(ErrAlreadyHidden, fmt.Sprintf("element %d", e.ID()))
		return
	}
	m.stats.Hides++
	size := m.sizes.Estimate(e)
	m.sizes.RecordSnapshot(e, size)
	m.sizes.Invalidate(e)
	m.track(e, "hide", m.hider.Hide(e, size))
}

// Adopt hides a newly added element without consulting the revealed set.
func (m *Manager) Adopt(e Element) {
	m.revealed.Delete(e)
	size := m.sizes.Estimate(e)
	m.sizes.RecordSnapshot(e, size)
	m.stats.Adopted++
	m.track(e, "adopt", m.hider.Hide(e, size))
}

// Release drops every record of a removed element. Hidden elements are
// revealed through the hider so that they leave the container unlocked.
func (m *Manager) Release(e Element) {
	if !m.revealed.Delete(e) {
		m.stats.Released++
		m.track(e, "release", m.hider.Reveal(e))
	}
	if m.observed.Delete(e) && m.intersection != nil {
		m.intersection.Unobserve(e)
	}
	m.sizes.Remove(e)
}

// Invalidate marks the size of e as stale.
func (m *Manager) Invalidate(e Element) {
	m.sizes.Invalidate(e)
}

func (m *Manager) track(e Element, op string, result Completion) {
	if result == nil {
		return
	}
	m.pending = append(m.pending, pendingOp{id: e.ID(), op: op, result: result})
}

// reap collects settled completions without blocking.
func (m *Manager) reap() {
	kept := m.pending[:0]
	for _, p := range m.pending {
		select {
		case err := <-p.result:
			if err != nil {
				m.stats.Rejections++
				m.logger.Warn("virtual: hider rejected", "op", p.op, "element", uint64(p.id), "error", err)
			}
		default:
			kept = append(kept, p)
		}
	}
	clear(m.pending[len(kept):])
	m.pending = kept
}

// Pending returns the number of hider operations not yet reaped.
func (m *Manager) Pending() int {
	return len(m.pending)
}

func (m *Manager) converged(log *slog.Logger) {
	m.stats.Converged++
	m.stats.FramesOfSync = m.syncTicks
	if m.cfg.Debug {
		log.Debug("virtual: converged", "frames", m.syncTicks, "revealed", m.revealed.Len())
	}
	m.syncTicks = 0
}

// updateIntersection observes the revealed run plus the siblings just outside
// it and stops observing everything else.
func (m *Manager) updateIntersection(children Children, bounds Bounds) {
	want := NewVisibilityState()
	if bounds.Anchored() {
		for e := range bounds.Elements(children) {
			want.Add(e)
		}
		if prev := Previous(children, bounds.LowElement); prev != nil {
			want.Add(prev)
		}
		if next := Next(children, bounds.HighElement); next != nil {
			want.Add(next)
		}
	}
	for _, e := range m.observed.Difference(want) {
		m.observed.Delete(e)
		m.intersection.Unobserve(e)
	}
	for _, e := range want.Difference(m.observed) {
		m.observed.Add(e)
		m.intersection.Observe(e)
	}
}

// RevealedCount returns the size of the revealed set. In debug mode it is
// checked against the hider.
func (m *Manager) RevealedCount() int {
	if m.cfg.Debug {
		children := m.host.Children()
		count := 0
		for i := range children.Len() {
			if m.hider.IsRevealed(children.At(i)) {
				count++
			}
		}
		if count != m.revealed.Len() {
			m.violation(ErrInvalidState, fmt.Sprintf("hider reports %d revealed, recorded %d", count, m.revealed.Len()))
		}
	}
	return m.revealed.Len()
}

// FindInconsistentLockState lists the children whose recorded state differs
// from the hider's.
func (m *Manager) FindInconsistentLockState() []Inconsistency {
	var out []Inconsistency
	children := m.host.Children()
	for i := range children.Len() {
		e := children.At(i)
		recorded, live := m.revealed.Has(e), m.hider.IsRevealed(e)
		if recorded != live {
			out = append(out, Inconsistency{Element: e, Revealed: recorded, HiderRevealed: live})
		}
	}
	return out
}

// Close cancels pending work and releases every hidden child. The manager
// ignores all signals afterwards.
func (m *Manager) Close() {
	if m.closed {
		return
	}
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	children := m.host.Children()
	for i := range children.Len() {
		e := children.At(i)
		if !m.revealed.Has(e) {
			m.stats.Released++
			m.hider.Reveal(e)
		}
	}
	if m.intersection != nil {
		for _, e := range m.observed.Elements() {
			m.intersection.Unobserve(e)
		}
	}
	m.observed.Clear()
	m.closed = true
	m.state = Idle
	m.logger.Debug("virtual: closed", "ticks", m.stats.Ticks)
}

func (m *Manager) checkOrder(children Children) {
	prev := Rect{}
	for i := range children.Len() {
		r := children.At(i).Rect()
		if i > 0 && r.Top < prev.Top {
			m.violation(ErrInvalidState, fmt.Sprintf("child %d starts at %g before child %d at %g", i, r.Top, i-1, prev.Top))
			return
		}
		prev = r
	}
}

// violation panics in debug mode and logs otherwise.
func (m *Manager) violation(err error, detail string) {
	if m.cfg.Debug {
		panic(&InvariantError{Err: err, Detail: detail})
	}
	m.logger.Warn("virtual: invariant violated", "error", err, "detail", detail)
}
