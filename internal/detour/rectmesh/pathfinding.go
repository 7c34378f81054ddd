package rectmesh

import (
	"container/heap"
	"fmt"

	"github.com/udisondev/navgo/internal/detour"
	"github.com/udisondev/navgo/internal/geom"
)

// heuristicScale keeps the heuristic slightly admissible.
const heuristicScale = 0.999

// searchNode is a polygon visited by the A* search.
type searchNode struct {
	poly   int
	pos    geom.Vec3 // точка входа в полигон
	parent *searchNode
	gCost  float32 // Actual cost from start
	hCost  float32 // Heuristic cost to target
	fCost  float32 // gCost + hCost
	index  int     // heap index, -1 when not in the open list
	closed bool
}

// Query is a search context over one mesh. Not safe for concurrent use.
type Query struct {
	mesh     *Mesh
	maxNodes int
	nodes    map[int]*searchNode
	open     nodeHeap
	visited  map[int]struct{}
}

func newQuery(mesh *Mesh, maxNodes int) *Query {
	return &Query{
		mesh:     mesh,
		maxNodes: maxNodes,
		nodes:    make(map[int]*searchNode, 256),
		visited:  make(map[int]struct{}, 64),
	}
}

// FindPath runs A* over polygon links. Each step costs the distance between
// entry points scaled by the area cost of the polygon being crossed.
// When the goal is unreachable or the node budget runs out, the corridor
// leads to the visited polygon closest to the goal.
func (q *Query) FindPath(startRef, endRef detour.PolyRef, startPos, endPos geom.Vec3, filter *detour.QueryFilter, path []detour.PolyRef) (int, error) {
	start, ok1 := q.mesh.poly(startRef)
	end, ok2 := q.mesh.poly(endRef)
	if !ok1 || !ok2 || filter == nil || len(path) == 0 {
		return 0, fmt.Errorf("%w: FindPath(start=%d, end=%d, path=%d)", detour.ErrInvalidParam, startRef, endRef, len(path))
	}
	if start == end {
		path[0] = startRef
		return 1, nil
	}

	clear(q.nodes)
	q.open = q.open[:0]

	startNode := &searchNode{poly: start, pos: startPos}
	startNode.hCost = startPos.Dist(endPos) * heuristicScale
	startNode.fCost = startNode.hCost
	q.nodes[start] = startNode
	heap.Push(&q.open, startNode)

	best := startNode
	for q.open.Len() > 0 {
		current := heap.Pop(&q.open).(*searchNode)
		current.closed = true

		if current.poly == end {
			best = current
			break
		}

		cp := &q.mesh.polys[current.poly]
		for _, l := range cp.links {
			np := &q.mesh.polys[l.to]
			if !filter.PassFilter(np.Flags) {
				continue
			}

			pos := l.portal[0].Lerp(l.portal[1], 0.5)
			cost := current.pos.Dist(pos) * filter.AreaCost(cp.Area)
			var h float32
			if l.to == end {
				cost += pos.Dist(endPos) * filter.AreaCost(np.Area)
			} else {
				h = pos.Dist(endPos) * heuristicScale
			}
			g := current.gCost + cost

			node, seen := q.nodes[l.to]
			switch {
			// Закрытые узлы не переоткрываются: поиск всегда завершается.
			case seen && (node.closed || !(g < node.gCost)):
				continue
			case seen:
				node.parent = current
				node.pos = pos
				node.gCost = g
				node.hCost = h
				node.fCost = g + h
				heap.Fix(&q.open, node.index)
			default:
				if len(q.nodes) >= q.maxNodes {
					continue
				}
				node = &searchNode{poly: l.to, pos: pos, parent: current, gCost: g, hCost: h, fCost: g + h}
				q.nodes[l.to] = node
				heap.Push(&q.open, node)
			}

			if node.hCost < best.hCost {
				best = node
			}
		}
	}

	// Собираем коридор от best к старту.
	n := 0
	for node := best; node != nil; node = node.parent {
		n++
	}
	skip := max(n-len(path), 0)
	count := n - skip
	i := n - 1
	for node := best; node != nil; node = node.parent {
		if i < count {
			path[i] = ref(node.poly)
		}
		i--
	}
	return count, nil
}

// nodeHeap implements container/heap for A* open list (min-heap by fCost).
type nodeHeap []*searchNode

func (h nodeHeap) Len() int           { return len(h) }
func (h nodeHeap) Less(i, j int) bool { return h[i].fCost < h[j].fCost }
func (h nodeHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i]; h[i].index = i; h[j].index = j }
func (h *nodeHeap) Push(x any)        { n := x.(*searchNode); n.index = len(*h); *h = append(*h, n) }
func (h *nodeHeap) Pop() any {
	old := *h
	n := len(old)
	node := old[n-1]
	old[n-1] = nil // GC
	node.index = -1
	*h = old[:n-1]
	return node
}
