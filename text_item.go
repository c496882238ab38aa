package vcontent

import "github.com/gdamore/tcell/v2"

// TextItem is a word-wrapped paragraph.
type TextItem struct {
	*Box

	text    string
	style   tcell.Style
	changed func()

	// Wrapped lines of the last width asked for.
	wrapWidth int
	lines     []string
}

// NewTextItem returns a paragraph showing text.
func NewTextItem(text string) *TextItem {
	t := &TextItem{
		Box:       NewBox(),
		text:      text,
		style:     tcell.StyleDefault.Foreground(Styles.PrimaryTextColor),
		wrapWidth: -1,
	}
	t.SetDontClear(true)
	return t
}

// SetText replaces the text and reports the height change.
func (t *TextItem) SetText(text string) *TextItem {
	if t.text != text {
		t.text = text
		t.wrapWidth = -1
		t.MarkDirty()
		if t.changed != nil {
			t.changed()
		}
	}
	return t
}

// GetText returns the text.
func (t *TextItem) GetText() string {
	return t.text
}

// SetTextStyle sets the style of the text.
func (t *TextItem) SetTextStyle(style tcell.Style) *TextItem {
	t.style = style
	t.MarkDirty()
	return t
}

// SetChangedFunc sets the handler called when the height may have changed.
func (t *TextItem) SetChangedFunc(handler func()) {
	t.changed = handler
}

func (t *TextItem) wrap(width int) []string {
	if width != t.wrapWidth {
		t.wrapWidth = width
		t.lines = WordWrap(t.text, width)
	}
	return t.lines
}

// Height returns the rows needed at the given width, frame included.
func (t *TextItem) Height(width int) int {
	inner := width - t.borders.Columns() - t.paddingLeft - t.paddingRight
	if inner <= 0 {
		return t.FrameRows()
	}
	return len(t.wrap(inner)) + t.FrameRows()
}

// Draw draws the paragraph.
func (t *TextItem) Draw(screen tcell.Screen) {
	t.DrawForSubclass(screen, t)
	x, y, width, height := t.GetInnerRect()
	for i, line := range t.wrap(width) {
		if i >= height {
			break
		}
		printWithStyle(screen, line, x, y+i, width, AlignmentLeft, t.style, true)
	}
}

var _ Content = &TextItem{}
