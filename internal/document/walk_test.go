package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(seq func(func(Shape) bool)) []string {
	var out []string
	for s := range seq {
		out = append(out, s.ShapeName())
	}
	return out
}

func TestWalkLeafYieldsItself(t *testing.T) {
	got := names(Walk(&TextShape{Name: "title", Text: "x"}))
	assert.Equal(t, []string{"title"}, got)
}

func TestWalkNestedGroupsPreOrder(t *testing.T) {
	root := &Group{
		Name: "outer",
		Shapes: []Shape{
			&Picture{Name: "pic1"},
			&Group{
				Name: "inner",
				Shapes: []Shape{
					&TextShape{Name: "t1"},
					&Group{Name: "deep", Shapes: []Shape{&Other{Name: "line"}}},
					&TextShape{Name: "t2"},
				},
			},
			&TextShape{Name: "t3"},
		},
	}

	got := names(Walk(root))
	assert.Equal(t, []string{"outer", "pic1", "inner", "t1", "deep", "line", "t2", "t3"}, got)
}

func TestWalkEmptyGroup(t *testing.T) {
	got := names(Walk(&Group{Name: "empty"}))
	assert.Equal(t, []string{"empty"}, got)
}

func TestWalkAllStopsEarly(t *testing.T) {
	shapes := []Shape{
		&Group{Name: "g", Shapes: []Shape{&Picture{Name: "p"}, &TextShape{Name: "a"}}},
		&TextShape{Name: "b"},
	}

	var seen []string
	for s := range WalkAll(shapes) {
		seen = append(seen, s.ShapeName())
		if _, ok := s.(ImageSource); ok {
			break
		}
	}
	require.Equal(t, []string{"g", "p"}, seen)
}

func TestWalkAllSkipsNil(t *testing.T) {
	got := names(WalkAll([]Shape{nil, &Other{Name: "x"}}))
	assert.Equal(t, []string{"x"}, got)
}
