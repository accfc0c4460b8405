// Package scene holds a minimal scene graph of mesh leaves and groups and
// applies flat per-triangle colorization to it.
package scene

import "github.com/soypat/facet"

// Node is a scene graph node: either a [*Group] or a [*Solid].
type Node interface {
	// NodeName returns the node's name, which need not be unique.
	NodeName() string
	sceneNode() // marker method restricting implementations to this package
}

var (
	_ Node = (*Group)(nil)
	_ Node = (*Solid)(nil)
)

// Group is a container node. It exclusively owns its children.
type Group struct {
	Name     string
	Children []Node
}

// NewGroup returns a group with the given name and children. Nil children
// are skipped as in [Group.Add].
func NewGroup(name string, children ...Node) *Group {
	g := &Group{Name: name}
	g.Add(children...)
	return g
}

// Add appends nodes to the group's children. Nil nodes, including nil
// *Group and *Solid values, are skipped.
func (g *Group) Add(nodes ...Node) {
	for _, n := range nodes {
		if !isNil(n) {
			g.Children = append(g.Children, n)
		}
	}
}

func isNil(n Node) bool {
	switch n := n.(type) {
	case nil:
		return true
	case *Group:
		return n == nil
	case *Solid:
		return n == nil
	}
	return false
}

func (g *Group) NodeName() string { return g.Name }
func (g *Group) sceneNode()       {}

// Solid is a mesh leaf: renderable geometry with the material used to draw it.
// A nil Material means the renderer's defaults.
type Solid struct {
	Name     string
	Mesh     *facet.Mesh
	Material *Material
}

// NewSolid returns a solid with the default material.
func NewSolid(name string, mesh *facet.Mesh) *Solid {
	return &Solid{Name: name, Mesh: mesh, Material: DefaultMaterial()}
}

func (s *Solid) NodeName() string { return s.Name }
func (s *Solid) sceneNode()       {}

// IsSurface reports whether the solid holds triangle geometry that can be colorized.
func (s *Solid) IsSurface() bool {
	return s.Mesh != nil && s.Mesh.Topology == facet.Triangles
}

// Walk visits root and its descendants depth first, parents before
// children. If fn returns false the node's children are not visited.
// Nil nodes are skipped and each group is visited at most once, so a
// group that contains itself does not loop forever.
func Walk(root Node, fn func(n Node) bool) {
	if isNil(root) {
		return
	}
	var visited map[*Group]struct{}
	stack := []Node{root}
	for len(stack) > 0 {
		last := len(stack) - 1
		n := stack[last]
		stack = stack[:last]
		if isNil(n) {
			continue
		}
		g, isGroup := n.(*Group)
		if isGroup {
			if _, seen := visited[g]; seen {
				continue
			}
			if visited == nil {
				visited = make(map[*Group]struct{})
			}
			visited[g] = struct{}{}
		}
		if !fn(n) {
			continue
		}
		if isGroup {
			// Push in reverse so children are visited in order.
			for i := len(g.Children) - 1; i >= 0; i-- {
				stack = append(stack, g.Children[i])
			}
		}
	}
}

// Solids returns every solid under root in traversal order.
func Solids(root Node) []*Solid {
	var solids []*Solid
	Walk(root, func(n Node) bool {
		if s, ok := n.(*Solid); ok {
			solids = append(solids, s)
		}
		return true
	})
	return solids
}
