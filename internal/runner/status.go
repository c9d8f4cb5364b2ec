package runner

// NodeStatus is a point-in-time view of one node.
type NodeStatus struct {
	ID      string `json:"id" yaml:"id"`
	State   string `json:"state" yaml:"state"`
	Version int    `json:"version" yaml:"version"`
}

// Status is a point-in-time view of the runner.
type Status struct {
	RunID string       `json:"run_id" yaml:"run_id"`
	State string       `json:"state" yaml:"state"`
	Nodes []NodeStatus `json:"nodes" yaml:"nodes"`
}

// Snapshot returns the current status. Safe from any goroutine.
func (r *Runner) Snapshot() Status {
	r.statusMu.RLock()
	defer r.statusMu.RUnlock()

	s := Status{RunID: r.runID, State: r.State().String()}
	for _, n := range r.snapshotNodes {
		s.Nodes = append(s.Nodes, NodeStatus{ID: n.ID, State: n.State().String(), Version: r.versions[n.ID]})
	}
	return s
}
