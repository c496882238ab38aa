package vcontent

import (
	"sync/atomic"

	"github.com/gdamore/tcell/v2"

	"github.com/xqrs/vcontent/hide"
	"github.com/xqrs/vcontent/virtual"
)

// Item is an element of a VirtualContent. It carries the state every hiding
// strategy needs: a display lock, a containment flag and a debug colour.
type Item struct {
	id      virtual.ElementID
	content Content
	owner   *VirtualContent
	index   int

	// Extent from the last layout, in rows.
	top, bottom float64

	lock          hide.DisplayLock
	contentHidden bool
	intrinsic     float64
	debugColor    tcell.Color
}

// lastItemID is the id of the most recently created item.
var lastItemID atomic.Uint64

// NewItem wraps content in an item.
func NewItem(content Content) *Item {
	it := &Item{
		id:         virtual.ElementID(lastItemID.Add(1)),
		content:    content,
		index:      -1,
		debugColor: tcell.ColorDefault,
	}
	it.lock.SetChangedFunc(it.touch)
	if n, ok := content.(changeNotifier); ok {
		n.SetChangedFunc(it.Invalidate)
	}
	return it
}

// ID implements virtual.Element.
func (it *Item) ID() virtual.ElementID {
	return it.id
}

// Rect implements virtual.Element. It lays the owner out first if needed.
func (it *Item) Rect() virtual.Rect {
	if c := it.owner; c != nil {
		c.rectReads++
		c.layout()
	}
	return virtual.Rect{Top: it.top, Bottom: it.bottom}
}

// Content returns the wrapped content.
func (it *Item) Content() Content {
	return it.content
}

// Rendered reports whether the content is drawn, as opposed to a placeholder.
func (it *Item) Rendered() bool {
	return !it.lock.Locked() && !it.contentHidden
}

// DisplayLock implements hide.Lockable. Lock changes dirty the owner's layout
// and apply when it next runs.
func (it *Item) DisplayLock() *hide.DisplayLock {
	return &it.lock
}

// SetContentHidden implements hide.Containable.
func (it *Item) SetContentHidden(hidden bool, intrinsicHeight float64) {
	if it.contentHidden == hidden && it.intrinsic == intrinsicHeight {
		return
	}
	it.contentHidden = hidden
	it.intrinsic = intrinsicHeight
	it.touch()
}

// ContentHidden implements hide.Containable.
func (it *Item) ContentHidden() bool {
	return it.contentHidden
}

// SetDebugColor implements hide.Colorable.
func (it *Item) SetDebugColor(color tcell.Color) {
	if it.debugColor != color {
		it.debugColor = color
		if it.owner != nil {
			it.owner.MarkDirty()
		}
	}
}

// DebugColor implements hide.Colorable.
func (it *Item) DebugColor() tcell.Color {
	return it.debugColor
}

// Invalidate reports that the content changed its height.
func (it *Item) Invalidate() {
	if c := it.owner; c != nil {
		c.layoutDirty = true
		c.resize.notify(it)
		c.requestFlush()
		c.MarkDirty()
	}
}

func (it *Item) touch() {
	if c := it.owner; c != nil {
		c.layoutDirty = true
		c.MarkDirty()
	}
}

// height returns the rows the item takes at the given width.
func (it *Item) height(width int) float64 {
	switch {
	case it.lock.Locked():
		return it.lock.Size()
	case it.contentHidden:
		return it.intrinsic
	default:
		return float64(max(it.content.Height(width), 0))
	}
}

// TextNode is a bare line of text in the child list. It is not an element, so
// the tracker removes it from the container.
type TextNode struct {
	Text string
	top  float64
}

// NewTextNode returns a text node.
func NewTextNode(text string) *TextNode {
	return &TextNode{Text: text}
}

var (
	_ virtual.Element  = &Item{}
	_ hide.Lockable    = &Item{}
	_ hide.Containable = &Item{}
	_ hide.Colorable   = &Item{}
)
