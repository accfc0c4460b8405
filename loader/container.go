package loader

import (
	"context"
	"errors"
	"fmt"

	"github.com/soypat/facet/scene"
)

// ElementError is returned by [Container.Accept] for an element that is
// recognized as unusable. It is meant to be shown to the user; loading
// continues with the remaining elements.
type ElementError struct {
	Name string
	Err  error
}

func (e *ElementError) Error() string {
	return fmt.Sprintf("element %q: %v", e.Name, e.Err)
}

func (e *ElementError) Unwrap() error { return e.Err }

// Message returns a user facing description of the failure.
func (e *ElementError) Message() string {
	if e.Name == "" {
		return "could not add model: " + e.Err.Error()
	}
	return fmt.Sprintf("could not add model %s: %v", e.Name, e.Err)
}

var (
	errNoVertices = errors.New("mesh has no vertices")
	errNoMesh     = errors.New("solid has no mesh")
	errNoRoot     = errors.New("container has no root group")
)

// Container aggregates parsed elements into a single scene graph group.
type Container struct {
	Root *scene.Group
}

// NewContainer returns a container with an empty root group.
func NewContainer(name string) *Container {
	return &Container{Root: scene.NewGroup(name)}
}

// Accept incorporates one element into the root group. Nil elements are
// ignored. Unusable solids yield an [*ElementError]; any other error means
// the container can not continue.
func (c *Container) Accept(elem scene.Node) error {
	if elem == nil {
		return nil
	}
	if c.Root == nil {
		return errNoRoot
	}
	var elemErr error
	cycle := false
	scene.Walk(elem, func(n scene.Node) bool {
		if n == scene.Node(c.Root) {
			cycle = true
			return false
		}
		s, ok := n.(*scene.Solid)
		if !ok || elemErr != nil {
			return elemErr == nil
		}
		switch {
		case s.Mesh == nil:
			elemErr = &ElementError{Name: s.Name, Err: errNoMesh}
		case len(s.Mesh.Positions) == 0:
			elemErr = &ElementError{Name: s.Name, Err: errNoVertices}
		default:
			if err := s.Mesh.Validate(); err != nil {
				elemErr = &ElementError{Name: s.Name, Err: err}
			}
		}
		return true
	})
	if cycle {
		return fmt.Errorf("element %q contains the container root", elem.NodeName())
	}
	if elemErr != nil {
		return elemErr
	}
	c.Root.Add(elem)
	return nil
}

// Assemble accepts every element in order. Element errors are passed to
// report and skipped; any other error stops assembly and is returned.
func (c *Container) Assemble(elems []scene.Node, report func(msg string)) error {
	for _, elem := range elems {
		err := c.Accept(elem)
		var elemErr *ElementError
		switch {
		case err == nil:
		case errors.As(err, &elemErr):
			if report != nil {
				report(elemErr.Message())
			}
		default:
			return err
		}
	}
	return nil
}

// LoadAndColorize starts l, waits for every element, assembles them into a
// new container and colorizes the result in a single pass.
func LoadAndColorize(ctx context.Context, l *Loader, col *scene.Colorizer, report func(msg string)) (*scene.Group, scene.Stats, error) {
	elems, err := l.Start(ctx).Wait(ctx)
	if err != nil {
		return nil, scene.Stats{}, err
	}
	c := NewContainer("model")
	if err := c.Assemble(elems, report); err != nil {
		return nil, scene.Stats{}, err
	}
	return c.Root, col.Colorize(c.Root), nil
}
