/*
Package builder constructs the runtime graph from a project model. It acts as
the bridge between the static configuration (the 'config' package) and the
scheduler (the 'runner' package).

The graph construction is a two-phase process:

 1. Node Creation: every declared node becomes a *node.Node. Its input and
    output sockets are read from the socket metadata files inside the node
    directory, through a meta.Cache so reloads skip unchanged files.

 2. Join Linking: every join is resolved against the created nodes and
    applied to the graph. A join to an unknown node or socket is an error; a
    join between sockets of different kinds is allowed but logged as a
    warning, since the input's kind decides how it is scheduled.

The builder does not validate the result. Unconnected inputs and data cycles
are reported by the runner when a run starts, so `validate` and `run` share
one code path.
*/
package builder
