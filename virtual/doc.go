/*
Package virtual keeps only the children of a scrolling container that are near
the viewport rendered.

Children are either revealed (rendered) or hidden (not rendered, with a
placeholder size reserved). A Manager re-evaluates the partition on frame
callbacks: it measures revealed children, computes the viewport plus a buffer
on both sides, grows or shrinks the revealed run towards it and applies the
difference through a Hider. Ticks repeat until the revealed set stops
changing.

A host supplies the container (Host), the frame callbacks (FrameScheduler),
the hiding strategy (Hider) and feeds structural and size changes to a
Tracker:

	queue := virtual.NewFrameQueue()
	manager, err := virtual.NewManager(host, hider, queue, virtual.DefaultConfig())
	if err != nil {
		return err
	}
	tracker := virtual.NewTracker(manager, host, resizeObserver)
	tracker.OnChildrenAdded(nodes)
	queue.RunUntilIdle(16)

Sizes of hidden children are estimated: the last measured height if any,
otherwise the average of all measured heights. Estimation errors are corrected
on the next tick once the affected children are revealed and measured.

Nothing in this package is safe for concurrent use. All calls must happen on
the goroutine that runs frame callbacks.
*/
package virtual
