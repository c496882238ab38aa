package vcontent

import (
	"fmt"
	"log/slog"
	"slices"
	"sort"

	"github.com/gdamore/tcell/v2"

	"github.com/xqrs/vcontent/hide"
	"github.com/xqrs/vcontent/keybind"
	"github.com/xqrs/vcontent/virtual"
)

// DefaultItemHeight is the row estimate for items that were never measured.
const DefaultItemHeight = 3

// DefaultContentConfig returns virtual.DefaultConfig with the height estimate
// in rows.
func DefaultContentConfig() virtual.Config {
	cfg := virtual.DefaultConfig()
	cfg.DefaultHeightEstimate = DefaultItemHeight
	return cfg
}

// Keybinds are the scroll keys of a VirtualContent. They implement the help
// package's KeyMap.
type Keybinds struct {
	ScrollUp     keybind.Keybind
	ScrollDown   keybind.Keybind
	PageUp       keybind.Keybind
	PageDown     keybind.Keybind
	HalfPageUp   keybind.Keybind
	HalfPageDown keybind.Keybind
	Top          keybind.Keybind
	Bottom       keybind.Keybind
}

// DefaultKeybinds returns vi-style and arrow key bindings.
func DefaultKeybinds() Keybinds {
	return Keybinds{
		ScrollUp:     keybind.NewKeybind(keybind.WithKeys("up", "k"), keybind.WithHelp("↑/k", "up")),
		ScrollDown:   keybind.NewKeybind(keybind.WithKeys("down", "j"), keybind.WithHelp("↓/j", "down")),
		PageUp:       keybind.NewKeybind(keybind.WithKeys("pgup", "ctrl+b"), keybind.WithHelp("pgup", "page up")),
		PageDown:     keybind.NewKeybind(keybind.WithKeys("pgdn", "ctrl+f", "space"), keybind.WithHelp("pgdn", "page down")),
		HalfPageUp:   keybind.NewKeybind(keybind.WithKeys("ctrl+u"), keybind.WithHelp("ctrl+u", "half page up")),
		HalfPageDown: keybind.NewKeybind(keybind.WithKeys("ctrl+d"), keybind.WithHelp("ctrl+d", "half page down")),
		Top:          keybind.NewKeybind(keybind.WithKeys("home", "g"), keybind.WithHelp("g", "top")),
		Bottom:       keybind.NewKeybind(keybind.WithKeys("end", "G"), keybind.WithHelp("G", "bottom")),
	}
}

// ArrowKeybinds returns DefaultKeybinds without the letter keys, for hosts
// that use letters for their own commands.
func ArrowKeybinds() Keybinds {
	k := DefaultKeybinds()
	k.ScrollUp.SetKeys("up")
	k.ScrollUp.SetHelp("↑", "up")
	k.ScrollDown.SetKeys("down")
	k.ScrollDown.SetHelp("↓", "down")
	k.Top.SetKeys("home")
	k.Top.SetHelp("home", "top")
	k.Bottom.SetKeys("end")
	k.Bottom.SetHelp("end", "bottom")
	return k
}

// ShortHelp returns the keybinds shown in help lines.
func (k Keybinds) ShortHelp() []keybind.Keybind {
	return []keybind.Keybind{k.ScrollDown, k.ScrollUp, k.PageDown, k.PageUp, k.Top, k.Bottom}
}

// FullHelp returns every keybind, grouped by step size.
func (k Keybinds) FullHelp() [][]keybind.Keybind {
	return [][]keybind.Keybind{
		{k.ScrollDown, k.ScrollUp, k.Top, k.Bottom},
		{k.PageDown, k.PageUp, k.HalfPageDown, k.HalfPageUp},
	}
}

// wheelStep is the number of rows a mouse wheel notch scrolls.
const wheelStep = 3

// Option configures a VirtualContent.
type Option func(*VirtualContent)

// WithConfig sets the engine configuration. The default is
// DefaultContentConfig().
func WithConfig(cfg virtual.Config) Option {
	return func(c *VirtualContent) {
		c.cfg = cfg
	}
}

// WithLogger sets the logger shared with the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(c *VirtualContent) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithKeybinds replaces the scroll keys.
func WithKeybinds(keybinds Keybinds) Option {
	return func(c *VirtualContent) {
		c.keybinds = keybinds
	}
}

// VirtualContent is a scrollable column of items of which only those near the
// viewport are rendered. Items outside the viewport and its buffer keep a
// placeholder of their last known or estimated height.
//
// Frames come from the scheduler passed to NewVirtualContent; with an
// Application, items are windowed before every redraw.
type VirtualContent struct {
	*Box

	frames   virtual.FrameScheduler
	cfg      virtual.Config
	logger   *slog.Logger
	keybinds Keybinds

	manager   *virtual.Manager
	tracker   *virtual.Tracker
	hiderName string

	resize       *resizeFeed
	intersection *intersectionFeed

	// The child list. items holds the elements of nodes in order and is
	// rebuilt lazily.
	nodes      []virtual.Node
	items      []*Item
	orderDirty bool

	// Layout state, in rows.
	innerSeenWidth  int
	innerSeenHeight int
	layoutWidth     int
	contentHeight   float64
	scrollTop       float64
	layoutDirty     bool
	anchoring       bool
	layouts         int
	rectReads       int

	// Deliveries waiting for the next flush.
	records          []virtual.MutationRecord
	removed          []*Item
	containerResized bool
	scrolled         bool
	flushCancel      func()

	scrollBar  *ScrollBar
	dragging   bool
	showStatus bool
}

// NewVirtualContent returns an empty container driven by frames.
func NewVirtualContent(frames virtual.FrameScheduler, opts ...Option) (*VirtualContent, error) {
	c := &VirtualContent{
		Box:         NewBox(),
		frames:      frames,
		cfg:         DefaultContentConfig(),
		logger:      slog.Default(),
		keybinds:    DefaultKeybinds(),
		scrollBar:   NewScrollBar(),
		anchoring:   true,
		layoutDirty: true,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.resize = newResizeFeed()
	c.intersection = newIntersectionFeed(c.requestFlush)
	if err := c.attach(c.cfg); err != nil {
		return nil, err
	}
	return c, nil
}

// attach builds the engine for cfg.
func (c *VirtualContent) attach(cfg virtual.Config) error {
	hider := hide.Select(cfg, hide.Probe(&Item{}), c.logger)
	if hider == nil {
		return fmt.Errorf("vcontent: %w", hide.ErrUnsupported)
	}
	m, err := virtual.NewManager(c, hider, managerFrames{c}, cfg,
		virtual.WithLogger(c.logger),
		virtual.WithIntersectionObserver(c.intersection),
	)
	if err != nil {
		return fmt.Errorf("failed to create manager: %w", err)
	}
	if _, ok := hider.(*hide.ColorDebugHider); !ok {
		for _, it := range c.items {
			it.debugColor = tcell.ColorDefault
		}
	}
	c.cfg = m.Config()
	c.manager = m
	c.tracker = virtual.NewTracker(m, c, c.resize)
	c.hiderName = fmt.Sprint(hider)
	return nil
}

// SetConfig replaces the engine. Every item is released by the old engine and
// adopted by the new one.
func (c *VirtualContent) SetConfig(cfg virtual.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	c.flush()
	c.manager.Close()
	c.intersection.reset()
	if err := c.attach(cfg); err != nil {
		return err
	}
	c.ensureOrder()
	nodes := make([]virtual.Node, len(c.items))
	for i, it := range c.items {
		nodes[i] = it
	}
	c.tracker.OnChildrenAdded(nodes)
	c.MarkDirty()
	return nil
}

// Config returns the active configuration.
func (c *VirtualContent) Config() virtual.Config {
	return c.cfg
}

// Keybinds returns the scroll keys.
func (c *VirtualContent) Keybinds() Keybinds {
	return c.keybinds
}

// Manager returns the engine, mainly for diagnostics.
func (c *VirtualContent) Manager() *virtual.Manager {
	return c.manager
}

// Sync delivers pending notifications and runs one tick right away.
func (c *VirtualContent) Sync() {
	c.flush()
	c.manager.Sync()
}

// Close stops the engine and reveals every item.
func (c *VirtualContent) Close() {
	c.flush()
	c.manager.Close()
	c.MarkDirty()
}

// SetScrollAnchoring keeps the first visible item in place while items above
// it change height. It is on by default.
func (c *VirtualContent) SetScrollAnchoring(anchoring bool) *VirtualContent {
	c.anchoring = anchoring
	return c
}

// SetShowStatus shows the engine status in the title.
func (c *VirtualContent) SetShowStatus(show bool) *VirtualContent {
	c.showStatus = show
	c.MarkDirty()
	return c
}

// ScrollBar returns the scroll bar for styling.
func (c *VirtualContent) ScrollBar() *ScrollBar {
	return c.scrollBar
}

// AppendChild adds n at the end of the child list.
func (c *VirtualContent) AppendChild(n virtual.Node) *VirtualContent {
	return c.InsertBefore(n, nil)
}

// AppendText adds a text node. Text nodes are not elements and are removed
// again by the engine.
func (c *VirtualContent) AppendText(text string) *TextNode {
	n := NewTextNode(text)
	c.AppendChild(n)
	return n
}

// InsertBefore inserts n before ref, or at the end when ref is nil or not a
// child. A node that already is a child is moved.
func (c *VirtualContent) InsertBefore(n, ref virtual.Node) *VirtualContent {
	if n == nil || n == ref {
		return c
	}
	if it, ok := n.(*Item); ok && it.owner != nil && it.owner != c {
		it.owner.RemoveChild(it)
	}
	c.RemoveChild(n)

	pos := len(c.nodes)
	if ref != nil {
		if i := c.indexOfNode(ref); i >= 0 {
			pos = i
		}
	}
	c.nodes = slices.Insert(c.nodes, pos, n)
	if it, ok := n.(*Item); ok {
		it.owner = c
	}
	c.orderDirty = true
	c.layoutDirty = true
	c.record(virtual.MutationRecord{Added: []virtual.Node{n}})
	return c
}

// RemoveChild implements virtual.Host.
func (c *VirtualContent) RemoveChild(n virtual.Node) bool {
	i := c.indexOfNode(n)
	if i < 0 {
		return false
	}
	c.nodes = slices.Delete(c.nodes, i, i+1)
	if it, ok := n.(*Item); ok {
		it.owner = nil
		it.index = -1
		c.removed = append(c.removed, it)
	}
	c.orderDirty = true
	c.layoutDirty = true
	c.record(virtual.MutationRecord{Removed: []virtual.Node{n}})
	return true
}

// Clear removes every child.
func (c *VirtualContent) Clear() *VirtualContent {
	for len(c.nodes) > 0 {
		c.RemoveChild(c.nodes[len(c.nodes)-1])
	}
	return c
}

func (c *VirtualContent) indexOfNode(n virtual.Node) int {
	if it, ok := n.(*Item); ok && it.owner != c {
		return -1
	}
	return slices.Index(c.nodes, n)
}

func (c *VirtualContent) record(r virtual.MutationRecord) {
	c.records = append(c.records, r)
	c.requestFlush()
	c.MarkDirty()
}

// ensureOrder rebuilds the element list after structural changes.
func (c *VirtualContent) ensureOrder() {
	if !c.orderDirty {
		return
	}
	c.orderDirty = false
	c.items = c.items[:0]
	for _, n := range c.nodes {
		if it, ok := n.(*Item); ok {
			it.index = len(c.items)
			c.items = append(c.items, it)
		}
	}
}

// Len returns the number of items.
func (c *VirtualContent) Len() int {
	c.ensureOrder()
	return len(c.items)
}

// ItemAt returns the item at index.
func (c *VirtualContent) ItemAt(index int) *Item {
	c.ensureOrder()
	if index < 0 || index >= len(c.items) {
		return nil
	}
	return c.items[index]
}

// Nodes returns a copy of the child list, text nodes included.
func (c *VirtualContent) Nodes() []virtual.Node {
	return slices.Clone(c.nodes)
}

// Children implements virtual.Host.
func (c *VirtualContent) Children() virtual.Children {
	c.ensureOrder()
	return childList{c}
}

// Viewport implements virtual.Host.
func (c *VirtualContent) Viewport() virtual.Bounds {
	_, _, _, height := c.GetInnerRect()
	return virtual.Bounds{Low: c.scrollTop, High: c.scrollTop + float64(height)}
}

// ContentHeight implements virtual.Host.
func (c *VirtualContent) ContentHeight() float64 {
	c.layout()
	return c.contentHeight
}

// ForceLayout implements virtual.Host.
func (c *VirtualContent) ForceLayout() {
	c.layout()
}

// Layouts returns the number of layout passes run so far.
func (c *VirtualContent) Layouts() int {
	return c.layouts
}

// RectReads returns the number of element rect reads so far.
func (c *VirtualContent) RectReads() int {
	return c.rectReads
}

func (c *VirtualContent) contentWidth() int {
	_, _, width, _ := c.GetInnerRect()
	if width > 1 {
		width--
	}
	return width
}

// SetRect reports size changes to the engine.
func (c *VirtualContent) SetRect(x, y, width, height int) {
	c.Box.SetRect(x, y, width, height)
	c.checkResize()
}

// checkResize compares the inner size with the last one seen. A new width
// changes the height of every item.
func (c *VirtualContent) checkResize() {
	_, _, width, height := c.GetInnerRect()
	if width == c.innerSeenWidth && height == c.innerSeenHeight {
		return
	}
	if width != c.innerSeenWidth {
		c.layoutDirty = true
		c.ensureOrder()
		for _, it := range c.items {
			c.resize.notify(it)
		}
	}
	c.innerSeenWidth, c.innerSeenHeight = width, height
	c.containerResized = true
	c.requestFlush()
}

// layout positions every child, settling pending display locks. Hidden items
// take their placeholder height.
func (c *VirtualContent) layout() {
	c.ensureOrder()
	width := c.contentWidth()
	if !c.layoutDirty && width == c.layoutWidth {
		return
	}
	anchor, delta := c.anchor()
	c.layoutDirty = false
	c.layoutWidth = width
	c.layouts++

	top := 0.0
	for _, n := range c.nodes {
		switch n := n.(type) {
		case *Item:
			n.lock.Settle()
			n.top = top
			top += n.height(width)
			n.bottom = top
		case *TextNode:
			n.top = top
			top++
		}
	}
	c.contentHeight = top

	if anchor != nil {
		c.scrollTop = anchor.top + delta
	}
	c.clampScroll()
	if c.intersection.len() > 0 {
		c.requestFlush()
	}
}

// anchor returns the first item visible at the current offset and the
// offset's distance from its top, from the previous layout.
func (c *VirtualContent) anchor() (*Item, float64) {
	if !c.anchoring || c.scrollTop <= 0 || len(c.items) == 0 {
		return nil, 0
	}
	i := sort.Search(len(c.items), func(i int) bool {
		return c.items[i].bottom > c.scrollTop
	})
	if i == len(c.items) || c.items[i].owner != c {
		return nil, 0
	}
	it := c.items[i]
	return it, c.scrollTop - it.top
}

func (c *VirtualContent) maxScroll() float64 {
	_, _, _, height := c.GetInnerRect()
	return max(c.contentHeight-float64(height), 0)
}

func (c *VirtualContent) clampScroll() {
	c.scrollTop = min(max(c.scrollTop, 0), c.maxScroll())
}

// ScrollOffset returns the first visible row in content coordinates.
func (c *VirtualContent) ScrollOffset() float64 {
	return c.scrollTop
}

// ScrollTo scrolls so that offset is the first visible row.
func (c *VirtualContent) ScrollTo(offset float64) *VirtualContent {
	c.layout()
	prev := c.scrollTop
	c.scrollTop = offset
	c.clampScroll()
	if c.scrollTop != prev {
		c.scrolled = true
		c.requestFlush()
		c.MarkDirty()
	}
	return c
}

// ScrollBy scrolls by delta rows.
func (c *VirtualContent) ScrollBy(delta float64) *VirtualContent {
	return c.ScrollTo(c.scrollTop + delta)
}

// ScrollToStart scrolls to the first row.
func (c *VirtualContent) ScrollToStart() *VirtualContent {
	return c.ScrollTo(0)
}

// ScrollToEnd scrolls to the last row.
func (c *VirtualContent) ScrollToEnd() *VirtualContent {
	c.layout()
	return c.ScrollTo(c.contentHeight)
}

// ScrollToItem scrolls so that it is the first visible item.
func (c *VirtualContent) ScrollToItem(it *Item) *VirtualContent {
	if it == nil || it.owner != c {
		return c
	}
	c.layout()
	return c.ScrollTo(it.top)
}

// childList exposes the items as virtual.Children.
type childList struct {
	c *VirtualContent
}

func (l childList) Len() int {
	return len(l.c.items)
}

func (l childList) At(index int) virtual.Element {
	return l.c.items[index]
}

func (l childList) IndexOf(e virtual.Element) int {
	it, ok := e.(*Item)
	if !ok || it.owner != l.c {
		return -1
	}
	l.c.ensureOrder()
	return it.index
}

var (
	_ virtual.Host = &VirtualContent{}
	_ Primitive    = &VirtualContent{}
)
