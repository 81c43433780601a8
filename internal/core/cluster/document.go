package cluster

import (
	"fmt"
	"strings"
)

// Document is the wire shape of a contact graph, shared by the HTTP response,
// the CLI output file and the graph export.
type Document struct {
	Nodes    []NodeDoc    `json:"nodes"`
	Edges    []Edge       `json:"edges"`
	Clusters []ClusterDoc `json:"clusters"`
	Summary  string       `json:"summary"`
}

type NodeDoc struct {
	ID string `json:"id"`
}

type ClusterDoc struct {
	ID    int      `json:"id"`
	Size  int      `json:"size"`
	Nodes []string `json:"nodes"`
	Edges []Edge   `json:"edges"`
}

// ToDocument serializes g. Lists are always non-nil so empty results encode
// as [] rather than null.
func ToDocument(g *Graph) Document {
	doc := Document{
		Nodes:    make([]NodeDoc, 0, len(g.nodes)),
		Edges:    make([]Edge, 0, len(g.edges)),
		Clusters: []ClusterDoc{},
	}
	for _, n := range g.nodes {
		doc.Nodes = append(doc.Nodes, NodeDoc{ID: n})
	}
	doc.Edges = append(doc.Edges, g.edges...)

	clusters := g.Clusters()
	for _, c := range clusters {
		edges := c.Edges
		if edges == nil {
			edges = []Edge{}
		}
		doc.Clusters = append(doc.Clusters, ClusterDoc{
			ID:    c.ID,
			Size:  c.Size(),
			Nodes: c.Nodes,
			Edges: edges,
		})
	}
	doc.Summary = summarize(clusters)
	return doc
}

// Summary renders the plain-text cluster report for g.
func Summary(g *Graph) string {
	return summarize(g.Clusters())
}

func summarize(clusters []Cluster) string {
	var b strings.Builder
	for _, c := range clusters {
		fmt.Fprintf(&b, "\nCluster %d: [%s] (size: %d)\n", c.ID, strings.Join(c.Nodes, ", "), c.Size())
		for _, e := range c.Edges {
			fmt.Fprintf(&b, "\tContact: %s ↔ %s\n", e.Source, e.Target)
			fmt.Fprintf(&b, "\t\tOrganism: %s\n", e.Organism)
			fmt.Fprintf(&b, "\t\tLocation: %s\n", e.Location)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
