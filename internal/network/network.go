// Package network derives the directed weighted flood-propagation graph
// from historical incidents and serves it read-only for the rest of a run.
//
// The graph is held as an explicit adjacency structure keyed by stable
// integer indices (assigned in sorted name order) with a separate name
// table, so iteration order never depends on map semantics and identical
// inputs always produce byte-identical networks.
package network

// Node is a road segment retained after the occurrence-count filter.
type Node struct {
	ID    int    // stable index, sorted-name order
	Name  string
	Count int // incidents containing this street
}

// Edge is a directed dependency: Weight estimates P(child floods | parent
// flooded) from historical co-occurrence. Both directions of a pair are
// distinct edges with independent weights.
type Edge struct {
	Parent      int
	Child       int
	CoCount     int     // incidents containing both endpoints
	ParentCount int     // parent occurrences over co-occurrence-bearing incidents
	Weight      float64 // CoCount / ParentCount
}

// Network owns the node set and both adjacency views. Built once per run,
// immutable afterwards; safe to share across windows without locking.
type Network struct {
	nodes    []Node
	index    map[string]int
	edges    []Edge
	parents  [][]int // parents[v] lists edge indices with Child == v
	children [][]int // children[v] lists edge indices with Parent == v
}

// New assembles a Network from a built node and edge set. Nodes must be
// ID-ordered and edges (Parent, Child)-ordered, as produced by BuildNodes
// and BuildEdges.
func New(nodes []Node, edges []Edge) *Network {
	n := &Network{
		nodes:    nodes,
		index:    make(map[string]int, len(nodes)),
		edges:    edges,
		parents:  make([][]int, len(nodes)),
		children: make([][]int, len(nodes)),
	}
	for _, node := range nodes {
		n.index[node.Name] = node.ID
	}
	for i, e := range edges {
		n.parents[e.Child] = append(n.parents[e.Child], i)
		n.children[e.Parent] = append(n.children[e.Parent], i)
	}
	return n
}

// NodeCount returns the number of retained road segments.
func (n *Network) NodeCount() int { return len(n.nodes) }

// EdgeCount returns the number of directed edges.
func (n *Network) EdgeCount() int { return len(n.edges) }

// Nodes returns the node set in ID order.
func (n *Network) Nodes() []Node { return n.nodes }

// Names returns all node names in ID (sorted) order.
func (n *Network) Names() []string {
	names := make([]string, len(n.nodes))
	for i, node := range n.nodes {
		names[i] = node.Name
	}
	return names
}

// Lookup resolves a street identifier to its node ID.
func (n *Network) Lookup(name string) (int, bool) {
	id, ok := n.index[name]
	return id, ok
}

// Contains reports whether the street is a retained node.
func (n *Network) Contains(name string) bool {
	_, ok := n.index[name]
	return ok
}

// Parents returns the incoming edges of node v in deterministic order.
func (n *Network) Parents(v int) []Edge {
	out := make([]Edge, len(n.parents[v]))
	for i, ei := range n.parents[v] {
		out[i] = n.edges[ei]
	}
	return out
}

// Children returns the outgoing edges of node v in deterministic order.
func (n *Network) Children(v int) []Edge {
	out := make([]Edge, len(n.children[v]))
	for i, ei := range n.children[v] {
		out[i] = n.edges[ei]
	}
	return out
}

// Edges returns every directed edge in (Parent, Child) order.
func (n *Network) Edges() []Edge { return n.edges }
