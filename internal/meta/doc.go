// Package meta reads the per-node metadata files that live in each node's
// working directory: the run descriptor (executable and command line) and
// the input and output socket lists.
package meta
