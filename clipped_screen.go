package vcontent

import "github.com/gdamore/tcell/v2"

// clippedScreen drops writes outside its rectangle. A tint other than
// tcell.ColorDefault replaces the background of every cell written.
type clippedScreen struct {
	tcell.Screen
	x      int
	y      int
	width  int
	height int
	tint   tcell.Color
}

func newClippedScreen(screen tcell.Screen, x, y, width, height int) *clippedScreen {
	return &clippedScreen{
		Screen: screen,
		x:      x,
		y:      y,
		width:  width,
		height: height,
		tint:   tcell.ColorDefault,
	}
}

// tinted returns a copy of s that paints backgrounds in color.
func (s *clippedScreen) tinted(color tcell.Color) *clippedScreen {
	c := *s
	c.tint = color
	return &c
}

func (s *clippedScreen) inBounds(x, y int) bool {
	return x >= s.x && x < s.x+s.width && y >= s.y && y < s.y+s.height
}

func (s *clippedScreen) SetContent(x int, y int, primary rune, combining []rune, style tcell.Style) {
	if !s.inBounds(x, y) {
		return
	}
	if s.tint != tcell.ColorDefault {
		style = style.Background(s.tint)
	}
	s.Screen.SetContent(x, y, primary, combining, style)
}

func (s *clippedScreen) SetCell(x int, y int, style tcell.Style, ch ...rune) {
	if len(ch) == 0 {
		s.SetContent(x, y, ' ', nil, style)
		return
	}
	s.SetContent(x, y, ch[0], ch[1:], style)
}

func (s *clippedScreen) ShowCursor(x int, y int) {
	if !s.inBounds(x, y) {
		s.Screen.HideCursor()
		return
	}
	s.Screen.ShowCursor(x, y)
}
