package world

import (
	"container/heap"
)

// PathNode represents a node in the A* pathfinding algorithm.
type PathNode struct {
	X, Z   int     // Column coordinates
	G      float32 // Cost from start
	H      float32 // Heuristic (estimated cost to goal)
	F      float32 // Total cost (G + H)
	Parent *PathNode
	Index  int // Index in heap
}

// PathHeap implements a priority queue for A* pathfinding.
type PathHeap []*PathNode

func (h PathHeap) Len() int           { return len(h) }
func (h PathHeap) Less(i, j int) bool { return h[i].F < h[j].F }
func (h PathHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].Index = i
	h[j].Index = j
}

func (h *PathHeap) Push(x interface{}) {
	n := len(*h)
	node := x.(*PathNode)
	node.Index = n
	*h = append(*h, node)
}

func (h *PathHeap) Pop() interface{} {
	old := *h
	n := len(old)
	node := old[n-1]
	old[n-1] = nil
	node.Index = -1
	*h = old[0 : n-1]
	return node
}

// PathFinder runs A* over the walkable surface of a rectangular world
// region. Walkability is delegated so tests and the manager can supply
// their own terrain.
type PathFinder struct {
	walkable func(x, z int) bool

	minX, minZ    int
	width, height int
}

// NewPathFinder creates a pathfinder over the region starting at
// (minX, minZ) with the given size in columns.
func NewPathFinder(walkable func(x, z int) bool, minX, minZ, width, height int) *PathFinder {
	if walkable == nil || width <= 0 || height <= 0 {
		return nil
	}
	return &PathFinder{
		walkable: walkable,
		minX:     minX,
		minZ:     minZ,
		width:    width,
		height:   height,
	}
}

// FindPath finds a path from start to goal using A* algorithm.
// Returns nil if no path exists.
func (pf *PathFinder) FindPath(startX, startZ, goalX, goalZ int) [][2]int {
	if pf == nil {
		return nil
	}

	// Check bounds
	if !pf.inBounds(startX, startZ) || !pf.inBounds(goalX, goalZ) {
		return nil
	}

	// Check if goal is walkable
	if !pf.walkable(goalX, goalZ) {
		return nil
	}

	// A* algorithm
	openSet := &PathHeap{}
	heap.Init(openSet)

	closedSet := make(map[int]bool)
	nodeMap := make(map[int]*PathNode)

	startNode := &PathNode{
		X: startX,
		Z: startZ,
		G: 0,
		H: pf.heuristic(startX, startZ, goalX, goalZ),
	}
	startNode.F = startNode.G + startNode.H
	heap.Push(openSet, startNode)
	nodeMap[pf.key(startX, startZ)] = startNode

	// Directions: 8-way movement
	directions := [][2]int{
		{0, 1},   // S
		{-1, 1},  // SW
		{-1, 0},  // W
		{-1, -1}, // NW
		{0, -1},  // N
		{1, -1},  // NE
		{1, 0},   // E
		{1, 1},   // SE
	}

	// Diagonal movement cost (sqrt(2) ~= 1.414)
	diagonalCost := float32(1.414)
	straightCost := float32(1.0)

	maxIterations := pf.width * pf.height // Prevent infinite loops
	iterations := 0

	for openSet.Len() > 0 && iterations < maxIterations {
		iterations++

		// Get node with lowest F score
		current := heap.Pop(openSet).(*PathNode)

		// Check if we reached the goal
		if current.X == goalX && current.Z == goalZ {
			return pf.reconstructPath(current)
		}

		closedSet[pf.key(current.X, current.Z)] = true

		// Check all neighbors
		for i, dir := range directions {
			nx, nz := current.X+dir[0], current.Z+dir[1]

			// Skip if out of bounds or not walkable
			if !pf.inBounds(nx, nz) || !pf.walkable(nx, nz) {
				continue
			}

			// Skip if already processed
			if closedSet[pf.key(nx, nz)] {
				continue
			}

			// Calculate movement cost (diagonal or straight)
			var moveCost float32
			if i%2 == 1 { // Diagonal directions (SW, NW, NE, SE)
				moveCost = diagonalCost
				// For diagonal movement, both adjacent cells must be walkable
				if !pf.walkable(current.X+dir[0], current.Z) ||
					!pf.walkable(current.X, current.Z+dir[1]) {
					continue
				}
			} else {
				moveCost = straightCost
			}

			g := current.G + moveCost

			neighbor, exists := nodeMap[pf.key(nx, nz)]
			if !exists {
				// New node
				neighbor = &PathNode{
					X:      nx,
					Z:      nz,
					G:      g,
					H:      pf.heuristic(nx, nz, goalX, goalZ),
					Parent: current,
				}
				neighbor.F = neighbor.G + neighbor.H
				nodeMap[pf.key(nx, nz)] = neighbor
				heap.Push(openSet, neighbor)
			} else if g < neighbor.G {
				// Found better path
				neighbor.G = g
				neighbor.F = neighbor.G + neighbor.H
				neighbor.Parent = current
				heap.Fix(openSet, neighbor.Index)
			}
		}
	}

	// No path found
	return nil
}

// IsWalkable checks if a column is walkable.
func (pf *PathFinder) IsWalkable(x, z int) bool {
	if pf == nil {
		return false
	}
	if !pf.inBounds(x, z) {
		return false
	}
	return pf.walkable(x, z)
}

// heuristic calculates the estimated distance using octile distance.
func (pf *PathFinder) heuristic(x1, z1, x2, z2 int) float32 {
	dx := abs(x2 - x1)
	dz := abs(z2 - z1)
	// Octile distance: min(dx,dz)*sqrt(2) + |dx-dz|
	if dx < dz {
		return float32(dx)*1.414 + float32(dz-dx)
	}
	return float32(dz)*1.414 + float32(dx-dz)
}

func (pf *PathFinder) inBounds(x, z int) bool {
	return x >= pf.minX && x < pf.minX+pf.width && z >= pf.minZ && z < pf.minZ+pf.height
}

func (pf *PathFinder) key(x, z int) int {
	return (z-pf.minZ)*pf.width + (x - pf.minX)
}

func (pf *PathFinder) reconstructPath(node *PathNode) [][2]int {
	var path [][2]int
	for node != nil {
		path = append(path, [2]int{node.X, node.Z})
		node = node.Parent
	}
	// Reverse path (it's built from goal to start)
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
