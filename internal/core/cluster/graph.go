package cluster

import (
	"sort"

	"github.com/agenthands/wardwatch/internal/core/model"
)

// Edge is one contact between two patients. Two patients can share several
// edges when they met under different organisms or on different wards.
type Edge struct {
	Source   string `json:"source"`
	Target   string `json:"target"`
	Organism string `json:"organism"`
	Location string `json:"location"`
}

// Graph is the undirected contact graph. It is read-only once built.
type Graph struct {
	nodes []string
	edges []Edge
	adj   map[string][]string
}

// Cluster is a connected component with at least two patients.
type Cluster struct {
	ID    int
	Nodes []string
	Edges []Edge
}

func (c Cluster) Size() int { return len(c.Nodes) }

// Build creates the contact graph from pairs. Pairs are expected to be
// deduplicated already; identical pairs would become identical edges.
func Build(pairs []model.ContactPair) *Graph {
	g := &Graph{adj: make(map[string][]string)}
	seen := make(map[string]bool)

	addNode := func(id string) {
		if !seen[id] {
			seen[id] = true
			g.nodes = append(g.nodes, id)
		}
	}

	for _, p := range pairs {
		addNode(p.PatientID1)
		addNode(p.PatientID2)
		g.edges = append(g.edges, Edge{
			Source:   p.PatientID1,
			Target:   p.PatientID2,
			Organism: p.Organism,
			Location: p.Location,
		})
		g.adj[p.PatientID1] = append(g.adj[p.PatientID1], p.PatientID2)
		g.adj[p.PatientID2] = append(g.adj[p.PatientID2], p.PatientID1)
	}
	return g
}

// Nodes returns patient IDs in first-seen order.
func (g *Graph) Nodes() []string {
	return append([]string(nil), g.nodes...)
}

func (g *Graph) Edges() []Edge {
	return append([]Edge(nil), g.edges...)
}

// Components partitions every node of the graph, singletons included.
func (g *Graph) Components() [][]string {
	visited := make(map[string]bool, len(g.nodes))
	var comps [][]string

	for _, n := range g.nodes {
		if visited[n] {
			continue
		}
		comps = append(comps, g.walk(n, visited))
	}
	return comps
}

// walk collects the component containing start with an explicit stack.
func (g *Graph) walk(start string, visited map[string]bool) []string {
	var comp []string
	stack := []string{start}
	visited[start] = true

	for len(stack) > 0 {
		u := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		comp = append(comp, u)

		for _, v := range g.adj[u] {
			if !visited[v] {
				visited[v] = true
				stack = append(stack, v)
			}
		}
	}
	return comp
}

// Clusters returns the components with two or more patients. Node lists are
// sorted and clusters are ordered by their smallest patient ID; IDs are
// assigned from 1 in that order. Callers should still compare memberships as
// sets.
func (g *Graph) Clusters() []Cluster {
	var comps [][]string
	for _, c := range g.Components() {
		if len(c) < 2 {
			continue
		}
		sort.Strings(c)
		comps = append(comps, c)
	}
	sort.Slice(comps, func(i, j int) bool { return comps[i][0] < comps[j][0] })

	member := make(map[string]int)
	clusters := make([]Cluster, len(comps))
	for i, c := range comps {
		clusters[i] = Cluster{ID: i + 1, Nodes: c}
		for _, n := range c {
			member[n] = i
		}
	}

	for _, e := range g.edges {
		i, ok := member[e.Source]
		if !ok {
			continue
		}
		clusters[i].Edges = append(clusters[i].Edges, e)
	}
	return clusters
}
