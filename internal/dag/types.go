package dag

import "sync"

// Graph is a collection of nodes and their edges. All operations on the
// graph are concurrency-safe.
type Graph struct {
	// mutex protects the nodes map and order during concurrent access.
	mutex sync.RWMutex
	// nodes stores all nodes in the graph, keyed by their unique ID.
	nodes map[string]*node
	// order is the insertion order of the node IDs, which keeps cycle
	// reports deterministic.
	order []string
}

// node is un-exported to enforce interaction through string IDs.
type node struct {
	id string
	// deps holds the predecessors, dependents the successors. Both slices
	// keep edge insertion order.
	deps       []*node
	dependents []*node
}
