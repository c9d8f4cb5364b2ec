// Package runner drives a graph run: it owns the execution sets, launches
// nodes chosen by the readiness evaluator, reconciles process exits and moves
// the run between Stop, Run and Pause.
//
// # Concurrency
//
// Everything except the CompletionQueue belongs to the goroutine that calls
// Run, Tick, Stop and Serve. Process exit callbacks run on launcher
// goroutines and only enqueue onto the CompletionQueue. Other goroutines
// interact through Send, State and Snapshot.
//
// # Failure
//
// There are no retries. The first failing node (launch failure or non-zero
// exit) stops the whole run: every tracked process is killed and the error
// is surfaced once, through a run_failed event and the return value of Serve.
package runner
