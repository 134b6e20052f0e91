package csg

import (
	"fmt"
	"sort"

	"github.com/BRL-CAD/brlcad-sub154/pkg/core"
	"github.com/aukilabs/go-tooling/pkg/errors"
)

// ErrTypeMalformed marks a boolean tree that cannot be evaluated
const ErrTypeMalformed = "malformed_tree"

// Op is a boolean tree operator
type Op int

const (
	OpLeaf Op = iota
	OpUnion
	OpIntersect
	OpSubtract
)

func (op Op) String() string {
	switch op {
	case OpLeaf:
		return "leaf"
	case OpUnion:
		return "union"
	case OpIntersect:
		return "intersect"
	case OpSubtract:
		return "subtract"
	default:
		return fmt.Sprintf("Op(%d)", int(op))
	}
}

// Node is an unresolved boolean expression over solid names
type Node struct {
	Op    Op
	Name  string // leaf solid name
	Left  *Node
	Right *Node
}

// Leaf references a solid by name
func Leaf(name string) *Node {
	return &Node{Op: OpLeaf, Name: name}
}

// Union combines two subtrees
func Union(left, right *Node) *Node {
	return &Node{Op: OpUnion, Left: left, Right: right}
}

// Intersect keeps what both subtrees share
func Intersect(left, right *Node) *Node {
	return &Node{Op: OpIntersect, Left: left, Right: right}
}

// Subtract removes right from left
func Subtract(left, right *Node) *Node {
	return &Node{Op: OpSubtract, Left: left, Right: right}
}

// Resolver maps a leaf name to a solid handle. ok is false for names that
// do not exist. A negative handle with ok set names a solid that exists
// but contributes nothing, such as one dropped during preparation.
type Resolver func(name string) (solid int, ok bool)

type compiled struct {
	op    Op
	left  int
	right int
	solid int
}

// Tree is a validated boolean expression over solid handles
type Tree struct {
	nodes  []compiled
	root   int
	solids []int
}

// Compile validates a boolean tree and resolves its leaves. Missing
// names, nil children, unknown operators, cycles and subtrees reachable
// through more than one parent are all malformed.
func Compile(root *Node, resolve Resolver) (*Tree, error) {
	const (
		white = iota
		gray
		black
	)

	if root == nil {
		return nil, errors.New("empty boolean tree").WithType(ErrTypeMalformed)
	}

	t := &Tree{}
	color := make(map[*Node]int)
	seen := make(map[int]struct{})

	var visit func(n *Node, depth int) (int, error)
	visit = func(n *Node, depth int) (int, error) {
		if n == nil {
			return 0, errors.New("missing operand").
				WithType(ErrTypeMalformed).
				WithTag("depth", depth)
		}
		switch color[n] {
		case gray:
			return 0, errors.New("cycle detected").
				WithType(ErrTypeMalformed).
				WithTag("op", n.Op.String()).
				WithTag("depth", depth)
		case black:
			return 0, errors.New("subtree is shared by more than one parent").
				WithType(ErrTypeMalformed).
				WithTag("op", n.Op.String()).
				WithTag("depth", depth)
		}
		color[n] = gray

		c := compiled{op: n.Op, solid: -1}
		switch n.Op {
		case OpLeaf:
			if n.Left != nil || n.Right != nil {
				return 0, errors.New("leaf has operands").
					WithType(ErrTypeMalformed).
					WithTag("name", n.Name)
			}
			solid, ok := resolve(n.Name)
			if !ok {
				return 0, errors.New("leaf references unknown solid").
					WithType(ErrTypeMalformed).
					WithTag("name", n.Name)
			}
			c.solid = solid
			if solid >= 0 {
				seen[solid] = struct{}{}
			}

		case OpUnion, OpIntersect, OpSubtract:
			left, err := visit(n.Left, depth+1)
			if err != nil {
				return 0, err
			}
			right, err := visit(n.Right, depth+1)
			if err != nil {
				return 0, err
			}
			c.left, c.right = left, right

		default:
			return 0, errors.New("unknown boolean operator").
				WithType(ErrTypeMalformed).
				WithTag("op", n.Op.String())
		}

		color[n] = black
		t.nodes = append(t.nodes, c)
		return len(t.nodes) - 1, nil
	}

	rootIndex, err := visit(root, 0)
	if err != nil {
		return nil, err
	}
	t.root = rootIndex

	t.solids = make([]int, 0, len(seen))
	for solid := range seen {
		t.solids = append(t.solids, solid)
	}
	sort.Ints(t.solids)
	return t, nil
}

// Solids returns the distinct solid handles the tree references, sorted
func (t *Tree) Solids() []int {
	return t.solids
}

// Source yields the normalized intervals of one solid along the current
// ray. Returned sets are read, never modified.
type Source func(solid int) Set

// Evaluate combines the leaves' intervals bottom-up
func (t *Tree) Evaluate(src Source, tol core.Tolerance) Set {
	return t.eval(t.root, src, tol)
}

func (t *Tree) eval(i int, src Source, tol core.Tolerance) Set {
	n := t.nodes[i]
	switch n.op {
	case OpLeaf:
		if n.solid < 0 {
			return nil
		}
		return src(n.solid)
	case OpUnion:
		return t.eval(n.left, src, tol).Union(t.eval(n.right, src, tol), tol)
	case OpIntersect:
		left := t.eval(n.left, src, tol)
		if len(left) == 0 {
			return nil
		}
		return left.Intersect(t.eval(n.right, src, tol), tol)
	default:
		left := t.eval(n.left, src, tol)
		if len(left) == 0 {
			return nil
		}
		return left.Subtract(t.eval(n.right, src, tol), tol)
	}
}
