// Package hide implements the strategies that stop elements from rendering:
// display locks, content containment and, for debugging, colour tinting.
//
// Strategies are chosen once per container with Select; the engine in package
// virtual only sees the virtual.Hider interface.
package hide
