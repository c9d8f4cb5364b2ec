// Package app contains the core application logic. It defines the main App
// struct, its configuration, and the run lifecycle: load the project, build
// the graph, execute it and optionally keep watching for changes. It is
// decoupled from any specific entrypoint like a CLI.
package app
