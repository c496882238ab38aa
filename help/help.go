// Package help draws keybinding help for a VirtualContent, either as a single
// line or as aligned columns.
package help

import (
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/xqrs/vcontent"
	"github.com/xqrs/vcontent/keybind"
)

// KeyMap provides the keybinds to describe.
type KeyMap interface {
	// ShortHelp returns keybinds for the single line.
	ShortHelp() []keybind.Keybind
	// FullHelp returns keybind groups, one column each.
	FullHelp() [][]keybind.Keybind
}

// Help is a primitive listing keybinds.
type Help struct {
	*vcontent.Box
	Styles Styles

	keyMap    KeyMap
	showAll   bool
	separator string
	gap       string
	ellipsis  string
}

// New returns an empty help primitive.
func New() *Help {
	return &Help{
		Box:       vcontent.NewBox(),
		Styles:    DefaultStyles(),
		separator: " • ",
		gap:       "    ",
		ellipsis:  vcontent.SemigraphicsHorizontalEllipsis,
	}
}

// SetKeyMap sets the keybinds to describe.
func (h *Help) SetKeyMap(keyMap KeyMap) *Help {
	h.keyMap = keyMap
	h.MarkDirty()
	return h
}

// SetShowAll switches between the single line and the columns.
func (h *Help) SetShowAll(showAll bool) *Help {
	if h.showAll != showAll {
		h.showAll = showAll
		h.MarkDirty()
	}
	return h
}

// ShowAll reports whether the columns are shown.
func (h *Help) ShowAll() bool {
	return h.showAll
}

// SetSeparator sets the text between entries of the single line.
func (h *Help) SetSeparator(separator string) *Help {
	h.separator = separator
	return h
}

// Height returns the rows needed at the given width.
func (h *Help) Height(width int) int {
	if h.keyMap == nil {
		return 0
	}
	if !h.showAll {
		return 1
	}
	return max(len(h.columnLines(h.keyMap.FullHelp(), width)), 1)
}

// Draw draws the help.
func (h *Help) Draw(screen tcell.Screen) {
	h.DrawForSubclass(screen, h)
	if h.keyMap == nil {
		return
	}

	x, y, width, height := h.GetInnerRect()
	var lines [][]span
	if h.showAll {
		lines = h.columnLines(h.keyMap.FullHelp(), width)
	} else {
		lines = [][]span{h.line(h.keyMap.ShortHelp(), width)}
	}
	for row := 0; row < len(lines) && row < height; row++ {
		drawSpans(screen, x, y+row, width, lines[row])
	}
}

// Lines renders the columns as plain text.
func (h *Help) Lines(groups [][]keybind.Keybind, width int) []string {
	lines := h.columnLines(groups, width)
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		var b strings.Builder
		for _, s := range line {
			b.WriteString(s.text)
		}
		out = append(out, b.String())
	}
	return out
}

// span is a run of text in one style.
type span struct {
	text  string
	style tcell.Style
}

func entrySpans(kb keybind.Keybind, key, desc tcell.Style) []span {
	hp := kb.Help()
	var out []span
	if hp.Key != "" {
		out = append(out, span{hp.Key, key})
	}
	if hp.Key != "" && hp.Desc != "" {
		out = append(out, span{" ", desc})
	}
	if hp.Desc != "" {
		out = append(out, span{hp.Desc, desc})
	}
	return out
}

// line joins the enabled keybinds until the next one would overflow width.
func (h *Help) line(keybinds []keybind.Keybind, width int) []span {
	var out []span
	for _, kb := range keybinds {
		if !kb.Enabled() {
			continue
		}
		entry := entrySpans(kb, h.Styles.KeyStyle, h.Styles.DescStyle)
		if len(entry) == 0 {
			continue
		}
		next := entry
		if len(out) > 0 {
			next = append([]span{{h.separator, h.Styles.SeparatorStyle}}, entry...)
		}
		if width > 0 && spansWidth(out)+spansWidth(next) > width {
			return append(out, h.tail(out, width)...)
		}
		out = append(out, next...)
	}
	return out
}

type column struct {
	keys, descs []string
	keyWidth    int
	width       int
}

// columnLines lays groups out side by side, dropping the columns that do not
// fit.
func (h *Help) columnLines(groups [][]keybind.Keybind, width int) [][]span {
	var columns []column
	for _, group := range groups {
		var c column
		for _, kb := range group {
			hp := kb.Help()
			if !kb.Enabled() || (hp.Key == "" && hp.Desc == "") {
				continue
			}
			c.keys = append(c.keys, hp.Key)
			c.descs = append(c.descs, hp.Desc)
			c.keyWidth = max(c.keyWidth, vcontent.StringWidth(hp.Key))
		}
		if len(c.keys) == 0 {
			continue
		}
		for _, desc := range c.descs {
			c.width = max(c.width, c.keyWidth+1+vcontent.StringWidth(desc))
		}
		columns = append(columns, c)
	}
	if len(columns) == 0 {
		return nil
	}

	gapWidth := vcontent.StringWidth(h.gap)
	fit, used := 0, 0
	for i, c := range columns {
		need := c.width
		if i > 0 {
			need += gapWidth
		}
		if width > 0 && used+need > width {
			break
		}
		fit++
		used += need
	}
	if fit == 0 {
		return [][]span{{{h.ellipsis, h.Styles.EllipsisStyle}}}
	}

	rows := 0
	for _, c := range columns[:fit] {
		rows = max(rows, len(c.keys))
	}
	lines := make([][]span, rows)
	for row := range lines {
		for i, c := range columns[:fit] {
			if i > 0 {
				lines[row] = append(lines[row], span{h.gap, h.Styles.SeparatorStyle})
			}
			if row >= len(c.keys) {
				lines[row] = append(lines[row], span{strings.Repeat(" ", c.width), h.Styles.DescStyle})
				continue
			}
			key := c.keys[row] + strings.Repeat(" ", c.keyWidth-vcontent.StringWidth(c.keys[row]))
			cell := key + " " + c.descs[row]
			if i < fit-1 {
				cell += strings.Repeat(" ", c.width-vcontent.StringWidth(cell))
			}
			lines[row] = append(lines[row],
				span{key, h.Styles.KeyStyle},
				span{cell[len(key):], h.Styles.DescStyle},
			)
		}
	}
	if fit < len(columns) {
		lines[0] = append(lines[0], h.tail(lines[0], width)...)
	}
	return lines
}

// tail returns the truncation marker if it fits after current.
func (h *Help) tail(current []span, width int) []span {
	if width <= 0 || h.ellipsis == "" {
		return nil
	}
	tail := []span{{" " + h.ellipsis, h.Styles.EllipsisStyle}}
	if spansWidth(current)+spansWidth(tail) > width {
		return nil
	}
	return tail
}

func drawSpans(screen tcell.Screen, x, y, width int, spans []span) {
	for _, s := range spans {
		if width <= 0 {
			return
		}
		_, printed := vcontent.PrintWithStyle(screen, s.text, x, y, width, vcontent.AlignmentLeft, s.style)
		x += printed
		width -= printed
	}
}

func spansWidth(spans []span) int {
	width := 0
	for _, s := range spans {
		width += vcontent.StringWidth(s.text)
	}
	return width
}

var _ vcontent.Content = &Help{}
