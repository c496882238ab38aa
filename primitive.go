package vcontent

import "github.com/gdamore/tcell/v2"

// Primitive is anything the Application can place on screen and route events
// to.
type Primitive interface {
	Draw(screen tcell.Screen)

	// GetRect returns x, y, width and height.
	GetRect() (int, int, int, int)
	SetRect(x, y, width, height int)

	// InputHandler receives key events while the primitive has focus. A nil
	// command means the key was not handled.
	InputHandler(event *tcell.EventKey) Command
	// MouseHandler receives mouse events. A non-nil capture primitive keeps
	// receiving mouse events until it releases the capture.
	MouseHandler(action MouseAction, event *tcell.EventMouse) (capture Primitive, cmd Command)

	HasFocus() bool
	// Focus is called when the primitive receives focus. It may pass the
	// focus on through delegate.
	Focus(delegate func(p Primitive))
	Blur()
}

// Content is what an Item displays. It reports its own height so that items
// of different sizes can be laid out.
type Content interface {
	Primitive
	Height(width int) int
}

// changeNotifier is implemented by content that can report height changes.
type changeNotifier interface {
	SetChangedFunc(handler func())
}

// Command is a side effect requested by a primitive while handling an event.
// The Application executes it after the handler returns.
type Command any

// BatchCommand runs its commands in order.
type BatchCommand []Command

// AppendCommand merges next into current, flattening batches. Nil commands
// are dropped.
func AppendCommand(current Command, next Command) Command {
	switch {
	case next == nil:
		return current
	case current == nil:
		return next
	}
	var batch BatchCommand
	for _, c := range []Command{current, next} {
		if b, ok := c.(BatchCommand); ok {
			batch = append(batch, b...)
		} else {
			batch = append(batch, c)
		}
	}
	return batch
}

type (
	// SetFocusCommand moves the focus to Target.
	SetFocusCommand struct{ Target Primitive }
	// RedrawCommand requests a redraw once the event is handled.
	RedrawCommand struct{}
	// QuitCommand stops the event loop.
	QuitCommand struct{}
	// SyncCommand repaints the whole terminal, discarding what tcell thinks is
	// on it.
	SyncCommand struct{}
	// ConsumeEventCommand stops the event from reaching other handlers.
	ConsumeEventCommand struct{}
)
