// Package dag provides a small string-keyed directed graph with cycle
// detection. The graph package projects its data joins onto it to find
// cycles that could never make progress.
package dag
