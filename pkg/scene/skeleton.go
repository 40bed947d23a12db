// Package scene holds the node hierarchy that skinned shapes are bound to.
// A Skeleton is owned by its caller; shapes only look bones up by ref.
package scene

import (
	"fmt"

	"github.com/taigrr/nifview/pkg/blocks"
	"github.com/taigrr/nifview/pkg/math3d"
)

// Node is one transform in the hierarchy.
type Node struct {
	Ref    blocks.Ref
	Name   string
	Parent blocks.Ref
	Local  math3d.Transform
}

// Skeleton is a node hierarchy keyed by block ref.
type Skeleton struct {
	nodes map[blocks.Ref]*Node
	order []blocks.Ref
}

// NewSkeleton creates an empty skeleton.
func NewSkeleton() *Skeleton {
	return &Skeleton{nodes: make(map[blocks.Ref]*Node)}
}

// FromSource walks the Children links of root and every NiNode below it.
// Shapes and other non-node children are skipped.
func FromSource(src blocks.Source, root blocks.Ref) (*Skeleton, error) {
	if !src.Inherits(root, blocks.KindNiNode) {
		return nil, fmt.Errorf("skeleton root %d is %v, not a node", root, src.Kind(root))
	}
	s := NewSkeleton()
	var walk func(ref, parent blocks.Ref) error
	walk = func(ref, parent blocks.Ref) error {
		if _, seen := s.nodes[ref]; seen {
			return fmt.Errorf("node %d reached twice", ref)
		}
		s.Add(Node{
			Ref:    ref,
			Name:   nodeName(src, ref),
			Parent: parent,
			Local:  blocks.ReadTransform(src, ref),
		})
		children, err := src.LinkArray(ref, blocks.FieldChildren)
		if err != nil {
			return nil
		}
		for _, c := range children {
			if !src.Inherits(c, blocks.KindNiNode) {
				continue
			}
			if err := walk(c, ref); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(root, blocks.None); err != nil {
		return nil, err
	}
	return s, nil
}

func nodeName(src blocks.Source, ref blocks.Ref) string {
	name, err := src.Text(ref, blocks.FieldName)
	if err != nil {
		return fmt.Sprintf("node %d", ref)
	}
	return name
}

// Add inserts or replaces a node.
func (s *Skeleton) Add(n Node) {
	if _, ok := s.nodes[n.Ref]; !ok {
		s.order = append(s.order, n.Ref)
	}
	s.nodes[n.Ref] = &n
}

// Len returns the number of nodes.
func (s *Skeleton) Len() int {
	return len(s.order)
}

// Nodes returns the node refs in insertion order (parents before children
// when built by FromSource).
func (s *Skeleton) Nodes() []blocks.Ref {
	return s.order
}

// Node returns a copy of the node for ref.
func (s *Skeleton) Node(ref blocks.Ref) (Node, bool) {
	n, ok := s.nodes[ref]
	if !ok {
		return Node{}, false
	}
	return *n, true
}

// Find returns the first node with the given name.
func (s *Skeleton) Find(name string) (blocks.Ref, bool) {
	for _, ref := range s.order {
		if s.nodes[ref].Name == name {
			return ref, true
		}
	}
	return blocks.None, false
}

// World composes local transforms from the root down to ref.
func (s *Skeleton) World(ref blocks.Ref) (math3d.Transform, bool) {
	n, ok := s.nodes[ref]
	if !ok {
		return math3d.IdentityTransform(), false
	}
	world := n.Local
	for depth := 0; n.Parent.Valid(); depth++ {
		if depth > len(s.order) {
			// parent cycle
			return math3d.IdentityTransform(), false
		}
		p, ok := s.nodes[n.Parent]
		if !ok {
			break
		}
		world = p.Local.Mul(world)
		n = p
	}
	return world, true
}

// BoneTransform returns the live world transform of a bone. Unknown refs
// report false and contribute nothing to skinning.
func (s *Skeleton) BoneTransform(ref blocks.Ref) (math3d.Transform, bool) {
	return s.World(ref)
}

// SetLocal replaces a node's local transform.
func (s *Skeleton) SetLocal(ref blocks.Ref, t math3d.Transform) bool {
	n, ok := s.nodes[ref]
	if !ok {
		return false
	}
	n.Local = t
	return true
}

// Rotate applies an extra rotation about axis to a node's local transform.
func (s *Skeleton) Rotate(ref blocks.Ref, axis math3d.Vec3, angle float64) bool {
	n, ok := s.nodes[ref]
	if !ok {
		return false
	}
	n.Local.Rotation = n.Local.Rotation.Mul(math3d.Rotation3(axis, angle))
	return true
}

// Clone returns an independent copy, so a pose can be edited without
// touching the original.
func (s *Skeleton) Clone() *Skeleton {
	c := NewSkeleton()
	for _, ref := range s.order {
		c.Add(*s.nodes[ref])
	}
	return c
}
