// Package toast implements the per-user toast notification engine: a
// bounded set of visible notifications, a FIFO of pending ones, timed
// auto-dismissal, and stacking position management. Rendering is delegated
// to a Renderer collaborator so the engine stays independent of any
// particular display technology.
package toast
