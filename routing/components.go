package routing

// Component returns the nodes connected to start, in breadth-first order,
// ignoring edge weights.
func Component(g *Graph, start int) []int {
	if start < 0 || start >= g.NodeCount() {
		return nil
	}
	visited := map[int]bool{start: true}
	queue := []int{start}
	for head := 0; head < len(queue); head++ {
		for _, nb := range g.Neighbors(queue[head]) {
			if !visited[nb.Node] {
				visited[nb.Node] = true
				queue = append(queue, nb.Node)
			}
		}
	}
	return queue
}

// InternalEdges returns the edges with both ends in nodes, each once with
// the lower index first, ordered by the node list.
func InternalEdges(g *Graph, nodes []int) [][2]int {
	members := make(map[int]bool, len(nodes))
	for _, n := range nodes {
		members[n] = true
	}
	var edges [][2]int
	for _, u := range nodes {
		for _, nb := range g.Neighbors(u) {
			if u < nb.Node && members[nb.Node] {
				edges = append(edges, [2]int{u, nb.Node})
			}
		}
	}
	return edges
}
