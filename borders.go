package vcontent

// Glyphs used to draw borders, placeholders and truncated text.
const (
	SemigraphicsHorizontalEllipsis = "\u2026" // …
	SemigraphicsMiddleDot          = "\u00b7" // ·

	BoxDrawingsLightHorizontal = "\u2500" // ─
	BoxDrawingsHeavyHorizontal = "\u2501" // ━
	BoxDrawingsLightVertical   = "\u2502" // │
	BoxDrawingsHeavyVertical   = "\u2503" // ┃

	BoxDrawingsLightDownAndRight = "\u250c" // ┌
	BoxDrawingsHeavyDownAndRight = "\u250f" // ┏
	BoxDrawingsLightDownAndLeft  = "\u2510" // ┐
	BoxDrawingsHeavyDownAndLeft  = "\u2513" // ┓
	BoxDrawingsLightUpAndRight   = "\u2514" // └
	BoxDrawingsHeavyUpAndRight   = "\u2517" // ┗
	BoxDrawingsLightUpAndLeft    = "\u2518" // ┘
	BoxDrawingsHeavyUpAndLeft    = "\u251b" // ┛

	BoxDrawingsDoubleHorizontal   = "\u2550" // ═
	BoxDrawingsDoubleVertical     = "\u2551" // ║
	BoxDrawingsDoubleDownAndRight = "\u2554" // ╔
	BoxDrawingsDoubleDownAndLeft  = "\u2557" // ╗
	BoxDrawingsDoubleUpAndRight   = "\u255a" // ╚
	BoxDrawingsDoubleUpAndLeft    = "\u255d" // ╝

	BoxDrawingsLightArcDownAndRight = "\u256d" // ╭
	BoxDrawingsLightArcDownAndLeft  = "\u256e" // ╮
	BoxDrawingsLightArcUpAndLeft    = "\u256f" // ╯
	BoxDrawingsLightArcUpAndRight   = "\u2570" // ╰
)

// BorderSet defines the glyphs of a box frame.
type BorderSet struct {
	Top         string
	Bottom      string
	Left        string
	Right       string
	TopLeft     string
	TopRight    string
	BottomLeft  string
	BottomRight string
}

func uniformBorderSet(horizontal, vertical, topLeft, topRight, bottomLeft, bottomRight string) BorderSet {
	return BorderSet{
		Top:         horizontal,
		Bottom:      horizontal,
		Left:        vertical,
		Right:       vertical,
		TopLeft:     topLeft,
		TopRight:    topRight,
		BottomLeft:  bottomLeft,
		BottomRight: bottomRight,
	}
}

func BorderSetHidden() BorderSet {
	return uniformBorderSet(" ", " ", " ", " ", " ", " ")
}

func BorderSetPlain() BorderSet {
	return uniformBorderSet(
		BoxDrawingsLightHorizontal, BoxDrawingsLightVertical,
		BoxDrawingsLightDownAndRight, BoxDrawingsLightDownAndLeft,
		BoxDrawingsLightUpAndRight, BoxDrawingsLightUpAndLeft,
	)
}

func BorderSetRound() BorderSet {
	return uniformBorderSet(
		BoxDrawingsLightHorizontal, BoxDrawingsLightVertical,
		BoxDrawingsLightArcDownAndRight, BoxDrawingsLightArcDownAndLeft,
		BoxDrawingsLightArcUpAndRight, BoxDrawingsLightArcUpAndLeft,
	)
}

func BorderSetThick() BorderSet {
	return uniformBorderSet(
		BoxDrawingsHeavyHorizontal, BoxDrawingsHeavyVertical,
		BoxDrawingsHeavyDownAndRight, BoxDrawingsHeavyDownAndLeft,
		BoxDrawingsHeavyUpAndRight, BoxDrawingsHeavyUpAndLeft,
	)
}

func BorderSetDouble() BorderSet {
	return uniformBorderSet(
		BoxDrawingsDoubleHorizontal, BoxDrawingsDoubleVertical,
		BoxDrawingsDoubleDownAndRight, BoxDrawingsDoubleDownAndLeft,
		BoxDrawingsDoubleUpAndRight, BoxDrawingsDoubleUpAndLeft,
	)
}

// BorderSetNames lists the names accepted by BorderSetByName.
var BorderSetNames = []string{"plain", "round", "thick", "double", "hidden"}

// BorderSetByName returns the border set with the given name.
func BorderSetByName(name string) (BorderSet, bool) {
	switch name {
	case "plain":
		return BorderSetPlain(), true
	case "round":
		return BorderSetRound(), true
	case "thick":
		return BorderSetThick(), true
	case "double":
		return BorderSetDouble(), true
	case "hidden":
		return BorderSetHidden(), true
	}
	return BorderSet{}, false
}

type Borders uint

const (
	BordersTop Borders = 1 << iota
	BordersBottom
	BordersLeft
	BordersRight

	BordersNone Borders = 0
	BordersAll  Borders = BordersTop | BordersBottom | BordersLeft | BordersRight
)

func (b Borders) Has(flag Borders) bool {
	return b&flag != 0
}

// Rows returns how many rows the top and bottom borders take.
func (b Borders) Rows() int {
	rows := 0
	if b.Has(BordersTop) {
		rows++
	}
	if b.Has(BordersBottom) {
		rows++
	}
	return rows
}

// Columns returns how many columns the left and right borders take.
func (b Borders) Columns() int {
	cols := 0
	if b.Has(BordersLeft) {
		cols++
	}
	if b.Has(BordersRight) {
		cols++
	}
	return cols
}
