// Package history persists finished runs and node executions in a SQLite
// database so `scriptgrid history` can list them after the process exits.
//
// The Store is written by a Recorder that consumes notices from the event
// bus; nothing in the scheduler depends on it.
package history
