package puzzle

// SolutionTree maps a move (dataset form) to the subtree of replies.
// An empty map means checkmate has been delivered and no further move
// exists. Every root-to-leaf path is a legal alternating move sequence
// ending in mate.
type SolutionTree map[string]SolutionTree

// NewSolutionTree returns an empty tree.
func NewSolutionTree() SolutionTree { return SolutionTree{} }

// Insert adds a move sequence to the tree, sharing prefixes with lines
// already present. An empty line is a no-op.
func (t SolutionTree) Insert(line []Move) {
	node := t
	for _, m := range line {
		key := m.String()
		child, ok := node[key]
		if !ok {
			child = SolutionTree{}
			node[key] = child
		}
		node = child
	}
}

// Depth returns the longest root-to-leaf path length in plies.
// The walk is iterative; mate trees are shallow but the explicit stack
// keeps the bound independent of tree shape.
func (t SolutionTree) Depth() int {
	if len(t) == 0 {
		return 0
	}
	type frame struct {
		node  SolutionTree
		plies int
	}
	max := 0
	stack := []frame{{node: t, plies: 0}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if len(f.node) == 0 && f.plies > max {
			max = f.plies
		}
		for _, child := range f.node {
			stack = append(stack, frame{node: child, plies: f.plies + 1})
		}
	}
	return max
}
