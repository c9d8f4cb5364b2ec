// Package scheduler decides which nodes in the graph are eligible to run.
//
// # How It Works
//
// The Evaluator performs a sweep (a "pass") over every node in graph order.
// A node that is not already running is launched immediately when eligible,
// so the running set grows during the sweep and later nodes observe it:
//
//  1. A node is skipped while any consumer of its outputs is running, so a
//     producer never rewrites files a consumer is reading.
//  2. On the first pass of a run only nodes with no inputs are launched.
//  3. Afterwards a node with inputs is launched when either
//     a. it has data inputs and every one of them changed, or
//     b. any signal input changed and the token file of its joined output exists.
//
// Data inputs are an AND-join: all producers must complete again. Signal
// inputs are an OR-trigger: one producer that completed and left its token
// file behind is enough.
//
// # Relationship with Other Components
//
//   - graph.Reader supplies nodes, inputs and output connections.
//   - The runner owns the running set and performs the actual launch through
//     the LaunchFunc callback; the evaluator never touches processes.
//
// # Thread-Safety
//
// None. The evaluator is called from the runner's owner goroutine only.
package scheduler
