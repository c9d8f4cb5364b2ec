// Package graph holds the topology the scheduler reads: nodes in insertion
// order, their input sockets and, for every node, the input sockets elsewhere
// that are joined to its outputs.
//
// # Ownership
//
// A Graph is not safe for concurrent mutation. It is populated by the builder
// and then owned by the runner goroutine for the duration of a run; nothing
// may call Join, Unjoin or AddNode while a run is in progress.
//
// # Edges
//
// Edges are implicit. Each input socket references at most one output socket
// (its join). Join and Unjoin maintain a reverse index from output sockets to
// the inputs consuming them, so OutputConnections does not scan the graph.
//
// # Validation
//
// Validate rejects graphs with unconnected inputs. DataCycle rejects cycles
// formed only by data joins, since such nodes wait on each other forever.
// Cycles that include a signal join are legal: a signal input fires on a
// token file rather than on every producer.
package graph
