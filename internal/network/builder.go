package network

import (
	"sort"

	"github.com/ZhangdingLiu/Charleston-Flood-Risk-Digital-Twin/internal/domain"
)

// Thresholds are the three statistical filters that shape the network.
type Thresholds struct {
	Occurrence int     // minimum incidents for a street to become a node
	Edge       int     // minimum co-occurrence count for a directed edge
	Weight     float64 // minimum conditional probability for a directed edge
}

// Build runs both construction passes and assembles the Network.
func Build(incidents []domain.Incident, thr Thresholds) *Network {
	nodes := BuildNodes(incidents, thr.Occurrence)
	edges := BuildEdges(incidents, nodes, thr.Edge, thr.Weight)
	return New(nodes, edges)
}

// BuildNodes counts each street's occurrences across all incidents and
// retains streets meeting the occurrence threshold. IDs are assigned in
// sorted name order so the node set is identical across runs.
func BuildNodes(incidents []domain.Incident, occThr int) []Node {
	counts := make(map[string]int)
	for _, in := range incidents {
		for _, s := range in.Streets {
			counts[s]++
		}
	}

	names := make([]string, 0, len(counts))
	for name, c := range counts {
		if c >= occThr {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	nodes := make([]Node, len(names))
	for i, name := range names {
		nodes[i] = Node{ID: i, Name: name, Count: counts[name]}
	}
	return nodes
}

// BuildEdges derives the directed weighted edge set. Incidents are first
// projected onto the node set; projections with fewer than two member
// nodes carry no co-occurrence signal and are dropped, and the occurrence
// denominators for weights are recomputed over the surviving projections.
// For every ordered pair (a, b) co-occurring in at least edgeThr surviving
// incidents, the edge a→b is retained iff its weight co(a,b)/occ(a) meets
// weightThr. No self-loops; both directions are evaluated independently.
//
// The pair sweep is bounded by the sum of squared incident sizes, fine for
// tens of nodes and hundreds of incidents.
func BuildEdges(incidents []domain.Incident, nodes []Node, edgeThr int, weightThr float64) []Edge {
	index := make(map[string]int, len(nodes))
	for _, n := range nodes {
		index[n.Name] = n.ID
	}

	occ := make([]int, len(nodes))
	co := make(map[[2]int]int)
	for _, in := range incidents {
		members := projectIncident(in, index)
		if len(members) < 2 {
			continue
		}
		for _, id := range members {
			occ[id]++
		}
		for i := 0; i < len(members); i++ {
			for j := i + 1; j < len(members); j++ {
				co[[2]int{members[i], members[j]}]++
			}
		}
	}

	pairs := make([][2]int, 0, len(co))
	for pair := range co {
		pairs = append(pairs, pair)
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i][0] != pairs[j][0] {
			return pairs[i][0] < pairs[j][0]
		}
		return pairs[i][1] < pairs[j][1]
	})

	var edges []Edge
	for _, pair := range pairs {
		count := co[pair]
		if count < edgeThr {
			continue
		}
		edges = appendEdge(edges, pair[0], pair[1], count, occ[pair[0]], weightThr)
		edges = appendEdge(edges, pair[1], pair[0], count, occ[pair[1]], weightThr)
	}

	sort.Slice(edges, func(i, j int) bool {
		if edges[i].Parent != edges[j].Parent {
			return edges[i].Parent < edges[j].Parent
		}
		return edges[i].Child < edges[j].Child
	})
	return edges
}

// projectIncident maps an incident's streets onto node IDs, dropping
// streets outside the node set. Result is sorted and unique (incident
// street sets already are).
func projectIncident(in domain.Incident, index map[string]int) []int {
	var members []int
	for _, s := range in.Streets {
		if id, ok := index[s]; ok {
			members = append(members, id)
		}
	}
	sort.Ints(members)
	return members
}

// appendEdge retains parent→child when the weight clears the threshold.
// A zero parent occurrence cannot happen for a node that passed BuildNodes
// and appears in a surviving projection, but the guard keeps the division
// total.
func appendEdge(edges []Edge, parent, child, coCount, parentCount int, weightThr float64) []Edge {
	if parentCount == 0 {
		return edges
	}
	weight := float64(coCount) / float64(parentCount)
	if weight < weightThr {
		return edges
	}
	return append(edges, Edge{
		Parent:      parent,
		Child:       child,
		CoCount:     coCount,
		ParentCount: parentCount,
		Weight:      weight,
	})
}
