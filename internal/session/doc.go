// Package session owns the per-session state histories and the round
// coordinator that advances them.
//
// A session is an independent play-through identified by an opaque string
// key. Its history is append-only and starts with the fixed initial state;
// nothing outside the store holds a mutable reference to it. Round
// submissions for one session are serialized so each round observes the
// history left by the previous successful one, while different sessions
// proceed without blocking each other.
package session
