package routing

import (
	"lighting-plan-server/geometry"
	"lighting-plan-server/models"
)

// StitchThresholdM joins road endpoints that are this close but not connected.
const StitchThresholdM = 5.0

// Node is a graph vertex. Nodes are addressed by their index in Graph.Nodes.
type Node struct {
	Index    int
	Position models.Coordinate // first coordinate seen for this key
}

// Edge is an undirected connection, stored once with From < To.
type Edge struct {
	From   int
	To     int
	Weight float64 // meters
}

type Neighbor struct {
	Node   int
	Weight float64
}

// Graph is an undirected weighted graph over quantized coordinates. It is
// rebuilt for every planning pass and never shared between passes.
type Graph struct {
	Nodes []Node
	Edges []Edge

	adj     [][]Neighbor
	index   map[string]int
	edgeSet map[[2]int]struct{}
}

func NewGraph() *Graph {
	return &Graph{
		index:   make(map[string]int),
		edgeSet: make(map[[2]int]struct{}),
	}
}

// Connection is an explicit edge between two positions, e.g. a manual link
// between two lights.
type Connection struct {
	From models.Coordinate
	To   models.Coordinate
}

// AddNode returns the index of the node for c, creating it if needed.
func (g *Graph) AddNode(c models.Coordinate) int {
	key := geometry.Key(c)
	if idx, ok := g.index[key]; ok {
		return idx
	}
	idx := len(g.Nodes)
	g.Nodes = append(g.Nodes, Node{Index: idx, Position: c})
	g.adj = append(g.adj, nil)
	g.index[key] = idx
	return idx
}

// Lookup finds the node with the same quantized key as c.
func (g *Graph) Lookup(c models.Coordinate) (int, bool) {
	idx, ok := g.index[geometry.Key(c)]
	return idx, ok
}

func edgeKey(u, v int) [2]int {
	if u > v {
		u, v = v, u
	}
	return [2]int{u, v}
}

func (g *Graph) HasEdge(u, v int) bool {
	_, ok := g.edgeSet[edgeKey(u, v)]
	return ok
}

// AddEdge connects u and v. Self loops and repeated edges are ignored and
// report false.
func (g *Graph) AddEdge(u, v int, weight float64) bool {
	if u == v || g.HasEdge(u, v) {
		return false
	}
	k := edgeKey(u, v)
	g.edgeSet[k] = struct{}{}
	g.Edges = append(g.Edges, Edge{From: k[0], To: k[1], Weight: weight})
	g.adj[u] = append(g.adj[u], Neighbor{Node: v, Weight: weight})
	g.adj[v] = append(g.adj[v], Neighbor{Node: u, Weight: weight})
	return true
}

func (g *Graph) Neighbors(u int) []Neighbor {
	if u < 0 || u >= len(g.adj) {
		return nil
	}
	return g.adj[u]
}

func (g *Graph) NodeCount() int { return len(g.Nodes) }

func (g *Graph) Position(u int) models.Coordinate {
	return g.Nodes[u].Position
}

// Build creates the planning graph from road polylines and explicit
// connections, then stitches nearby nodes.
func Build(roads []models.Road, connections []Connection) *Graph {
	g := NewGraph()
	for _, road := range roads {
		for i := 0; i+1 < len(road.Path); i++ {
			g.connect(road.Path[i], road.Path[i+1])
		}
	}
	for _, c := range connections {
		g.connect(c.From, c.To)
	}
	g.Stitch(StitchThresholdM)
	return g
}

func (g *Graph) connect(a, b models.Coordinate) {
	u := g.AddNode(a)
	v := g.AddNode(b)
	g.AddEdge(u, v, geometry.Distance(a, b))
}

// Stitch joins every pair of unconnected nodes closer than threshold meters
// and returns how many edges were added. Quadratic in the node count.
func (g *Graph) Stitch(threshold float64) int {
	added := 0
	for i := 0; i < len(g.Nodes); i++ {
		for j := i + 1; j < len(g.Nodes); j++ {
			if g.HasEdge(i, j) {
				continue
			}
			d := geometry.Distance(g.Nodes[i].Position, g.Nodes[j].Position)
			if d > 0 && d < threshold {
				g.AddEdge(i, j, d)
				added++
			}
		}
	}
	return added
}
