package vcontent

import (
	"log/slog"
	"slices"
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/xqrs/vcontent/hide"
	"github.com/xqrs/vcontent/virtual"
)

// blockContent is a fixed-height item that fills its rect with 'x'.
type blockContent struct {
	*Box
	rows    int
	changed func()
}

func newBlock(rows int) *blockContent {
	return &blockContent{Box: NewBox(), rows: rows}
}

func (b *blockContent) Height(int) int { return b.rows }

func (b *blockContent) SetChangedFunc(handler func()) { b.changed = handler }

func (b *blockContent) setRows(rows int) {
	b.rows = rows
	if b.changed != nil {
		b.changed()
	}
}

func (b *blockContent) Draw(screen tcell.Screen) {
	b.DrawForSubclass(screen, b)
	fill(screen, b.x, b.y, b.width, b.height, 'x', tcell.StyleDefault)
}

type contentHarness struct {
	queue   *virtual.FrameQueue
	content *VirtualContent
}

func newContentHarness(t *testing.T, cfg virtual.Config) *contentHarness {
	t.Helper()
	queue := virtual.NewFrameQueue()
	c, err := NewVirtualContent(queue,
		WithConfig(cfg),
		WithLogger(slog.New(slog.DiscardHandler)),
	)
	if err != nil {
		t.Fatalf("NewVirtualContent: %v", err)
	}
	c.SetRect(0, 0, 20, 10)
	return &contentHarness{queue: queue, content: c}
}

// populate appends n blocks of the given height.
func (h *contentHarness) populate(n, rows int) []*blockContent {
	blocks := make([]*blockContent, n)
	for i := range blocks {
		blocks[i] = newBlock(rows)
		h.content.AppendChild(NewItem(blocks[i]))
	}
	return blocks
}

func (h *contentHarness) settle(t *testing.T) int {
	t.Helper()
	frames := h.queue.RunUntilIdle(100)
	if h.queue.Pending() != 0 {
		t.Fatalf("Expected to settle, %d callbacks still pending after %d frames", h.queue.Pending(), frames)
	}
	return frames
}

// wantRevealed returns the indexes of the items intersecting the buffered
// viewport at the current layout.
func wantRevealed(c *VirtualContent) []int {
	c.ForceLayout()
	desired := virtual.DesiredBounds(c.Viewport(), c.Config().BufferFraction, c.ContentHeight())
	var want []int
	for i := range c.Len() {
		r := c.ItemAt(i).Rect()
		if r.Top < desired.High && r.Bottom > desired.Low {
			want = append(want, i)
		}
	}
	return want
}

func revealedIndexes(c *VirtualContent) []int {
	var got []int
	for i := range c.Len() {
		if c.Manager().IsRevealed(c.ItemAt(i)) {
			got = append(got, i)
		}
	}
	return got
}

func checkConverged(t *testing.T, c *VirtualContent) {
	t.Helper()
	want := wantRevealed(c)
	if got := revealedIndexes(c); !slices.Equal(got, want) {
		t.Errorf("Expected revealed %v, got %v", want, got)
	}
	if bad := c.Manager().FindInconsistentLockState(); len(bad) != 0 {
		t.Errorf("Expected consistent state, got %v", bad)
	}
}

func TestVirtualContentRevealsViewport(t *testing.T) {
	h := newContentHarness(t, DefaultContentConfig())
	h.populate(100, 5)

	h.settle(t)

	checkConverged(t, h.content)
	if got := revealedIndexes(h.content); !slices.Equal(got, []int{0, 1, 2}) {
		t.Errorf("Expected items 0..2 revealed, got %v", got)
	}
	for i := range h.content.Len() {
		it := h.content.ItemAt(i)
		if it.Rendered() != h.content.Manager().IsRevealed(it) {
			t.Errorf("Item %d: rendered %t, revealed %t", i, it.Rendered(), h.content.Manager().IsRevealed(it))
		}
	}
	if got := h.content.Manager().RevealedCount(); got != 3 {
		t.Errorf("Expected RevealedCount 3, got %d", got)
	}
}

func TestVirtualContentSyncEmpty(t *testing.T) {
	h := newContentHarness(t, DefaultContentConfig())

	h.content.Sync()

	if stats := h.content.Manager().Stats(); stats.Ticks != 0 {
		t.Errorf("Expected no ticks, got %d", stats.Ticks)
	}
	if h.content.RectReads() != 0 {
		t.Errorf("Expected no rect reads, got %d", h.content.RectReads())
	}
}

func TestVirtualContentAddThenRemove(t *testing.T) {
	h := newContentHarness(t, DefaultContentConfig())
	h.settle(t)
	ticks := h.content.Manager().Stats().Ticks
	it := NewItem(newBlock(5))

	h.content.AppendChild(it)
	if !h.content.RemoveChild(it) {
		t.Fatal("Expected RemoveChild to find the item")
	}
	h.settle(t)

	stats := h.content.Manager().Stats()
	if stats.Adopted != 0 || stats.Released != 0 {
		t.Errorf("Expected no adoption, got adopted=%d released=%d", stats.Adopted, stats.Released)
	}
	if stats.Ticks != ticks {
		t.Errorf("Expected no ticks, got %d", stats.Ticks-ticks)
	}
	if it.DisplayLock().Locked() {
		t.Error("Expected a detached item to stay unlocked")
	}
}

func TestVirtualContentRemovesTextNodes(t *testing.T) {
	h := newContentHarness(t, DefaultContentConfig())
	h.populate(3, 5)
	h.content.AppendText("stray")

	h.settle(t)

	if got := len(h.content.Nodes()); got != 3 {
		t.Errorf("Expected 3 nodes after removing the text node, got %d", got)
	}
	checkConverged(t, h.content)
}

func TestVirtualContentRemoveReleases(t *testing.T) {
	h := newContentHarness(t, DefaultContentConfig())
	h.populate(20, 5)
	h.settle(t)

	hidden := h.content.ItemAt(10)
	if !hidden.DisplayLock().Locked() {
		t.Fatal("Expected item 10 to be locked")
	}
	h.content.RemoveChild(hidden)
	h.settle(t)

	if hidden.DisplayLock().Locked() {
		t.Error("Expected a removed item to be unlocked")
	}
	if h.content.Len() != 19 {
		t.Errorf("Expected 19 items, got %d", h.content.Len())
	}
	checkConverged(t, h.content)
}

func TestVirtualContentMove(t *testing.T) {
	h := newContentHarness(t, DefaultContentConfig())
	h.populate(20, 5)
	h.settle(t)

	last := h.content.ItemAt(19)
	h.content.InsertBefore(last, h.content.ItemAt(0))
	h.settle(t)

	if h.content.ItemAt(0) != last {
		t.Fatal("Expected the last item to move to the front")
	}
	if !h.content.Manager().IsRevealed(last) {
		t.Error("Expected the moved item to be revealed at the top")
	}
	checkConverged(t, h.content)
}

func TestVirtualContentScroll(t *testing.T) {
	h := newContentHarness(t, DefaultContentConfig())
	h.populate(100, 5)
	h.settle(t)

	for _, offset := range []float64{50, 200, 120, 0} {
		h.content.ScrollTo(offset)
		h.settle(t)
		checkConverged(t, h.content)
	}

	// A settled container stays quiet.
	ticks := h.content.Manager().Stats().Ticks
	h.queue.RunUntilIdle(10)
	if got := h.content.Manager().Stats().Ticks; got != ticks {
		t.Errorf("Expected no further ticks, got %d", got-ticks)
	}
}

func TestVirtualContentScrollAnchoring(t *testing.T) {
	cfg := DefaultContentConfig()
	cfg.BufferFraction = 1
	h := newContentHarness(t, cfg)
	blocks := h.populate(100, 5)
	h.settle(t)
	h.content.ScrollTo(100)
	h.settle(t)

	above := revealedIndexes(h.content)[0]
	first := h.content.ItemAt(h.content.firstVisible())
	if above >= first.index {
		t.Fatalf("Expected a revealed item above the viewport, first revealed %d, first visible %d", above, first.index)
	}
	before := first.Rect().Top - h.content.ScrollOffset()
	blocks[above].setRows(9)
	h.content.ForceLayout()

	if got := h.content.ItemAt(above).Rect().Height(); got != 9 {
		t.Fatalf("Expected item %d to grow to 9 rows, got %g", above, got)
	}

	if after := first.Rect().Top - h.content.ScrollOffset(); after != before {
		t.Errorf("Expected the first visible item to stay at %g, got %g", before, after)
	}
}

func TestVirtualContentResize(t *testing.T) {
	h := newContentHarness(t, DefaultContentConfig())
	blocks := h.populate(30, 5)
	h.settle(t)

	blocks[0].setRows(1)
	h.settle(t)

	if got := h.content.ItemAt(0).Rect().Height(); got != 1 {
		t.Errorf("Expected item 0 to be 1 row, got %g", got)
	}
	checkConverged(t, h.content)

	h.content.SetRect(0, 0, 20, 30)
	h.settle(t)
	checkConverged(t, h.content)
	if h.content.Manager().RevealedCount() <= 3 {
		t.Errorf("Expected a taller viewport to reveal more items, got %d", h.content.Manager().RevealedCount())
	}
}

func TestVirtualContentIntersection(t *testing.T) {
	cfg := DefaultContentConfig()
	cfg.UseIntersection = true
	h := newContentHarness(t, cfg)
	h.populate(100, 5)

	h.settle(t)

	if !h.content.Manager().UsesIntersection() {
		t.Fatal("Expected the intersection feed to drive ticks")
	}
	checkConverged(t, h.content)

	h.content.ScrollTo(40)
	h.settle(t)
	checkConverged(t, h.content)

	// The feed watches the revealed run and one sibling on each side.
	revealed := revealedIndexes(h.content)
	for i := range h.content.Len() {
		want := i >= revealed[0]-1 && i <= revealed[len(revealed)-1]+1
		if got := h.content.Manager().Observing(h.content.ItemAt(i)); got != want {
			t.Errorf("Item %d: observing %t, want %t", i, got, want)
		}
	}
}

// TestVirtualContentIntersectionScrollByRow scrolls one row at a time so that
// items cross the buffer edges exactly.
func TestVirtualContentIntersectionScrollByRow(t *testing.T) {
	cfg := DefaultContentConfig()
	cfg.UseIntersection = true
	h := newContentHarness(t, cfg)
	h.populate(100, 5)
	h.settle(t)

	c := h.content
	for step := 1; step <= 120; step++ {
		c.ScrollBy(1)
		h.settle(t)

		viewport := c.Viewport()
		for i := range c.Len() {
			it := c.ItemAt(i)
			r := it.Rect()
			if r.Top < viewport.High && r.Bottom > viewport.Low && !c.Manager().IsRevealed(it) {
				t.Fatalf("Step %d: item %d %v inside viewport %v is hidden; revealed %v",
					step, i, r, viewport, revealedIndexes(c))
			}
		}
		want := wantRevealed(c)
		if got := revealedIndexes(c); !slices.Equal(got, want) {
			t.Fatalf("Step %d: expected revealed %v, got %v", step, want, got)
		}
	}
}

// TestVirtualContentQueriesKeepLayout verifies that reading lock state for
// diagnostics neither relayouts nor schedules frames.
func TestVirtualContentQueriesKeepLayout(t *testing.T) {
	cfg := DefaultContentConfig()
	cfg.Debug = true
	cfg.UseIntersection = true
	h := newContentHarness(t, cfg)
	h.populate(30, 5)
	h.settle(t)
	c := h.content
	c.SetShowStatus(true)
	s := newTestScreen(t, 20, 10)

	// The status title takes a row, so the first frames settle the resize.
	for range 2 {
		c.Draw(s)
		h.settle(t)
	}
	layouts := c.Layouts()
	for range 3 {
		c.Draw(s)
		if bad := c.Manager().FindInconsistentLockState(); len(bad) != 0 {
			t.Errorf("Expected consistent state, got %v", bad)
		}
	}
	if got := c.Layouts(); got != layouts {
		t.Errorf("Expected no relayout, got %d layouts after %d", got, layouts)
	}
	if got := h.queue.Pending(); got != 0 {
		t.Errorf("Expected no scheduled frames, got %d", got)
	}
}

func TestVirtualContentSetConfig(t *testing.T) {
	h := newContentHarness(t, DefaultContentConfig())
	h.populate(30, 5)
	h.settle(t)

	cfg := DefaultContentConfig()
	cfg.UseLocking = false
	if err := h.content.SetConfig(cfg); err != nil {
		t.Fatalf("SetConfig: %v", err)
	}
	h.settle(t)

	checkConverged(t, h.content)
	for i := range h.content.Len() {
		it := h.content.ItemAt(i)
		if it.DisplayLock().Locked() {
			t.Errorf("Item %d: expected no display lock with containment", i)
		}
		if revealed := h.content.Manager().IsRevealed(it); it.ContentHidden() == revealed {
			t.Errorf("Item %d: content hidden %t, revealed %t", i, it.ContentHidden(), revealed)
		}
	}

	bad := DefaultContentConfig()
	bad.BufferFraction = -1
	if err := h.content.SetConfig(bad); err == nil {
		t.Error("Expected an invalid config to be rejected")
	}
}

func TestVirtualContentColorDebug(t *testing.T) {
	cfg := DefaultContentConfig()
	cfg.UseLocking = false
	cfg.UseColorDebug = true
	h := newContentHarness(t, cfg)
	h.populate(30, 5)

	h.settle(t)

	checkConverged(t, h.content)
	if got := h.content.ContentHeight(); got != 150 {
		t.Errorf("Expected every item at full height, got content height %g", got)
	}
	for i := range h.content.Len() {
		it := h.content.ItemAt(i)
		if !it.Rendered() {
			t.Errorf("Item %d: expected debug colours to keep content rendered", i)
		}
		hidden := it.DebugColor() == hide.HiddenColor
		if revealed := h.content.Manager().IsRevealed(it); hidden == revealed {
			t.Errorf("Item %d: painted hidden %t, revealed %t", i, hidden, revealed)
		}
	}
}

func TestVirtualContentClose(t *testing.T) {
	h := newContentHarness(t, DefaultContentConfig())
	h.populate(30, 5)
	h.settle(t)

	h.content.Close()
	h.content.ForceLayout()

	for i := range h.content.Len() {
		if !h.content.ItemAt(i).Rendered() {
			t.Errorf("Item %d: expected Close to reveal every item", i)
		}
	}
	if got := h.content.ContentHeight(); got != 150 {
		t.Errorf("Expected content height 150, got %g", got)
	}
}

func TestVirtualContentStatusLine(t *testing.T) {
	h := newContentHarness(t, DefaultContentConfig())
	h.populate(10, 5)
	h.settle(t)

	got := h.content.StatusLine()
	want := "3/10 locking ticks="
	if len(got) < len(want) || got[:len(want)] != want {
		t.Errorf("Expected status to start with %q, got %q", want, got)
	}
}
