package svgunit

import "github.com/benoitkugler/svgrender/svgpath"

// Boundable is anything percentages and bounding box units
// may be resolved against.
type Boundable interface {
	Bounds() svgpath.Rect
}

// RectBoundable is a synthetic boundable.
type RectBoundable svgpath.Rect

func (r RectBoundable) Bounds() svgpath.Rect { return svgpath.Rect(r) }

// Stack is a LIFO of boundables. The current boundable
// is the top of the stack.
type Stack struct {
	items []Boundable
}

// Push makes `b` the current boundable.
func (s *Stack) Push(b Boundable) { s.items = append(s.items, b) }

// Pop removes and returns the current boundable, or nil
// if the stack is empty.
func (s *Stack) Pop() Boundable {
	if len(s.items) == 0 {
		return nil
	}
	b := s.items[len(s.items)-1]
	s.items = s.items[:len(s.items)-1]
	return b
}

// Top returns the current boundable, or nil.
func (s *Stack) Top() Boundable {
	if len(s.items) == 0 {
		return nil
	}
	return s.items[len(s.items)-1]
}

// Len returns the number of boundables in the stack.
func (s *Stack) Len() int { return len(s.items) }
