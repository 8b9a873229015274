// Package editor implements the stateful topology editor session. A Session
// owns the canonical graph state in session-local maps keyed by identity,
// drives an injected canvas.Surface as a write-through projection of that
// state, and mirrors canvas-originated interaction back into it through a
// single event pipe. Callers load a topology.Graph, mutate through the
// session's operations, and read the result back with Serialize.
package editor
