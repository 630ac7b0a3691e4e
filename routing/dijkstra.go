package routing

import (
	"container/heap"
	"math"

	"lighting-plan-server/models"
)

// NoParent marks the root and unreached nodes in a Tree.
const NoParent = -1

// Tree is a single-source shortest path tree over a Graph.
type Tree struct {
	Root   int
	Dist   []float64
	Parent []int
}

type queueItem struct {
	node     int
	priority float64
	seq      int
	index    int
}

type priorityQueue []*queueItem

func (pq priorityQueue) Len() int { return len(pq) }

func (pq priorityQueue) Less(i, j int) bool {
	if pq[i].priority == pq[j].priority {
		return pq[i].seq < pq[j].seq
	}
	return pq[i].priority < pq[j].priority
}

func (pq priorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}

func (pq *priorityQueue) Push(x interface{}) {
	item := x.(*queueItem)
	item.index = len(*pq)
	*pq = append(*pq, item)
}

func (pq *priorityQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*pq = old[0 : n-1]
	return item
}

// Dijkstra computes shortest distances from root. A root outside the graph
// yields a tree where every node is unreached.
func Dijkstra(g *Graph, root int) *Tree {
	n := g.NodeCount()
	tree := &Tree{
		Root:   root,
		Dist:   make([]float64, n),
		Parent: make([]int, n),
	}
	for i := range tree.Dist {
		tree.Dist[i] = math.Inf(1)
		tree.Parent[i] = NoParent
	}
	if root < 0 || root >= n {
		tree.Root = NoParent
		return tree
	}

	tree.Dist[root] = 0
	pq := &priorityQueue{}
	heap.Init(pq)
	seq := 0
	heap.Push(pq, &queueItem{node: root, priority: 0, seq: seq})

	settled := make([]bool, n)
	for pq.Len() > 0 {
		current := heap.Pop(pq).(*queueItem)
		u := current.node
		if settled[u] {
			continue
		}
		settled[u] = true

		for _, nb := range g.Neighbors(u) {
			candidate := tree.Dist[u] + nb.Weight
			if candidate < tree.Dist[nb.Node] {
				tree.Dist[nb.Node] = candidate
				tree.Parent[nb.Node] = u
				seq++
				heap.Push(pq, &queueItem{node: nb.Node, priority: candidate, seq: seq})
			}
		}
	}
	return tree
}

func (t *Tree) Reachable(node int) bool {
	return node >= 0 && node < len(t.Dist) && !math.IsInf(t.Dist[node], 1)
}

// BranchRoot walks node's parent chain and returns the node whose parent is
// the root, i.e. the first hop out of the root. It returns NoParent for the
// root itself, unreached nodes, or when the walk exceeds the node count.
func (t *Tree) BranchRoot(node int) int {
	if !t.Reachable(node) || node == t.Root {
		return NoParent
	}
	current := node
	for steps := 0; steps < len(t.Parent); steps++ {
		parent := t.Parent[current]
		if parent == NoParent {
			return NoParent
		}
		if parent == t.Root {
			return current
		}
		current = parent
	}
	return NoParent
}

// EdgesToRoot lists the (child, parent) edges from node up to the root,
// bounded by the node count.
func (t *Tree) EdgesToRoot(node int) [][2]int {
	if !t.Reachable(node) {
		return nil
	}
	var edges [][2]int
	current := node
	for steps := 0; steps < len(t.Parent); steps++ {
		parent := t.Parent[current]
		if parent == NoParent {
			break
		}
		edges = append(edges, [2]int{current, parent})
		current = parent
	}
	return edges
}

// PathFromRoot rebuilds the path root -> node as coordinates. The path is
// empty when node is unreached.
func (t *Tree) PathFromRoot(g *Graph, node int) []models.Coordinate {
	if !t.Reachable(node) {
		return nil
	}
	var reversed []models.Coordinate
	current := node
	for steps := 0; current != NoParent && current != t.Root && steps < len(t.Parent); steps++ {
		reversed = append(reversed, g.Position(current))
		current = t.Parent[current]
	}
	if current == t.Root {
		reversed = append(reversed, g.Position(t.Root))
	}
	path := make([]models.Coordinate, len(reversed))
	for i, c := range reversed {
		path[len(reversed)-1-i] = c
	}
	return path
}
