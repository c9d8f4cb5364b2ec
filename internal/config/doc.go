// Package config defines the format-agnostic project model: the settings that
// name a node's metadata files, the declared nodes and the joins between
// their sockets.
//
// A `config.Project` is what the builder turns into a graph. Concrete
// loaders, such as the HCL one, live in separate packages.
package config
