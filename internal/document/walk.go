package document

import "iter"

// Walk yields root and then, depth first, every shape nested inside group
// containers, preserving z-order. A leaf yields only itself.
func Walk(root Shape) iter.Seq[Shape] {
	return func(yield func(Shape) bool) {
		walk(root, yield)
	}
}

// WalkAll walks each shape of a shape tree in order.
func WalkAll(shapes []Shape) iter.Seq[Shape] {
	return func(yield func(Shape) bool) {
		for _, s := range shapes {
			if !walk(s, yield) {
				return
			}
		}
	}
}

func walk(s Shape, yield func(Shape) bool) bool {
	if s == nil {
		return true
	}
	if !yield(s) {
		return false
	}
	c, ok := s.(Container)
	if !ok {
		return true
	}
	for _, child := range c.Children() {
		if !walk(child, yield) {
			return false
		}
	}
	return true
}
