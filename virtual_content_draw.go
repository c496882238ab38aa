package vcontent

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/xqrs/vcontent/keybind"
	"github.com/xqrs/vcontent/virtual"
)

// Draw draws the visible part of the content. Hidden items show as
// placeholders, dotted in debug mode.
func (c *VirtualContent) Draw(screen tcell.Screen) {
	if c.showStatus {
		c.SetTitle(c.StatusLine())
	}
	c.DrawForSubclass(screen, c)
	c.checkResize()
	c.layout()

	x, y, width, height := c.GetInnerRect()
	if width <= 0 || height <= 0 {
		return
	}
	contentWidth := c.contentWidth()
	clip := newClippedScreen(screen, x, y, contentWidth, height)
	placeholder := tcell.StyleDefault.Background(c.backgroundColor)
	if c.cfg.Debug {
		placeholder = placeholder.Foreground(Styles.PlaceholderColor).Dim(true)
	}

	scroll := c.scrollTop
	for i := c.firstVisible(); i < len(c.nodes); i++ {
		top, bottom := nodeExtent(c.nodes[i])
		if top >= scroll+float64(height) {
			break
		}
		first := int(math.Floor(top - scroll))
		last := int(math.Floor(bottom - scroll))
		if last <= first {
			continue
		}

		switch n := c.nodes[i].(type) {
		case *Item:
			if !n.Rendered() {
				c.drawPlaceholder(screen, x, y+max(first, 0), contentWidth, min(last, height)-max(first, 0), placeholder)
				continue
			}
			n.content.SetRect(x, y+first, contentWidth, last-first)
			target := clip
			if n.debugColor != tcell.ColorDefault {
				target = clip.tinted(n.debugColor)
			}
			n.content.Draw(target)
		case *TextNode:
			if first >= 0 && first < height {
				style := tcell.StyleDefault.Foreground(Styles.SecondaryTextColor).Dim(true)
				printWithStyle(screen, n.Text, x, y+first, contentWidth, AlignmentLeft, style, true)
			}
		}
	}

	if width > 1 {
		c.scrollBar.SetRect(x+width-1, y, 1, height)
		c.scrollBar.SetLengths(ScrollLengths{
			ContentLen:  int(math.Ceil(c.contentHeight)),
			ViewportLen: height,
		})
		c.scrollBar.SetOffset(int(math.Round(c.scrollTop)))
		c.scrollBar.Draw(screen)
	}
}

func (c *VirtualContent) drawPlaceholder(screen tcell.Screen, x, y, width, height int, style tcell.Style) {
	if height <= 0 {
		return
	}
	if !c.cfg.Debug {
		fill(screen, x, y, width, height, ' ', style)
		return
	}
	for row := y; row < y+height; row++ {
		for col := x; col < x+width; col++ {
			putString(screen, col, row, SemigraphicsMiddleDot, style)
		}
	}
}

// firstVisible returns the index of the first node ending below the scroll
// offset.
func (c *VirtualContent) firstVisible() int {
	return sort.Search(len(c.nodes), func(i int) bool {
		_, bottom := nodeExtent(c.nodes[i])
		return bottom > c.scrollTop
	})
}

func nodeExtent(n virtual.Node) (float64, float64) {
	switch n := n.(type) {
	case *Item:
		return n.top, n.bottom
	case *TextNode:
		return n.top, n.top + 1
	}
	return 0, 0
}

// StatusLine summarises the engine state for the title. Settings that are off
// are left out.
func (c *VirtualContent) StatusLine() string {
	stats := c.manager.Stats()
	var b strings.Builder
	fmt.Fprintf(&b, "%d/%d %s ticks=%d", c.manager.RevealedCount(), c.Len(), c.hiderName, stats.Ticks)
	for _, s := range c.cfg.Settings() {
		if s.Value != "0" && s.Value != "" {
			fmt.Fprintf(&b, " %s=%s", s.Key, s.Value)
		}
	}
	return b.String()
}

// InputHandler scrolls on the configured keys.
func (c *VirtualContent) InputHandler(event *tcell.EventKey) Command {
	_, _, _, height := c.GetInnerRect()
	page := float64(max(height, 1))
	switch {
	case keybind.Matches(event, c.keybinds.ScrollUp):
		c.ScrollBy(-1)
	case keybind.Matches(event, c.keybinds.ScrollDown):
		c.ScrollBy(1)
	case keybind.Matches(event, c.keybinds.PageUp):
		c.ScrollBy(-page)
	case keybind.Matches(event, c.keybinds.PageDown):
		c.ScrollBy(page)
	case keybind.Matches(event, c.keybinds.HalfPageUp):
		c.ScrollBy(-math.Ceil(page / 2))
	case keybind.Matches(event, c.keybinds.HalfPageDown):
		c.ScrollBy(math.Ceil(page / 2))
	case keybind.Matches(event, c.keybinds.Top):
		c.ScrollToStart()
	case keybind.Matches(event, c.keybinds.Bottom):
		c.ScrollToEnd()
	default:
		return nil
	}
	return RedrawCommand{}
}

// MouseHandler scrolls on the wheel and drags the scroll bar thumb.
func (c *VirtualContent) MouseHandler(action MouseAction, event *tcell.EventMouse) (Primitive, Command) {
	mx, my := event.Position()
	if !c.dragging && !c.InRect(mx, my) {
		return nil, nil
	}
	_, by, _, _ := c.scrollBar.GetRect()

	switch action {
	case MouseScrollUp:
		c.ScrollBy(-wheelStep)
		return nil, RedrawCommand{}
	case MouseScrollDown:
		c.ScrollBy(wheelStep)
		return nil, RedrawCommand{}
	case MouseLeftDown:
		if c.scrollBar.InRect(mx, my) {
			c.dragging = true
			c.ScrollTo(float64(c.scrollBar.OffsetAt(my - by)))
			return c, AppendCommand(SetFocusCommand{Target: c}, RedrawCommand{})
		}
		return nil, SetFocusCommand{Target: c}
	case MouseMove:
		if c.dragging {
			c.ScrollTo(float64(c.scrollBar.OffsetAt(my - by)))
			return c, RedrawCommand{}
		}
	case MouseLeftUp:
		if c.dragging {
			c.dragging = false
			return nil, RedrawCommand{}
		}
	}
	return nil, nil
}
