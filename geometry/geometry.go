// Package geometry provides small value types that serialize as compact
// comma separated strings, such as "1,2,3,4" for a rectangle.
package geometry

import (
	"fmt"
	"strconv"
	"strings"
)

// Point is a position on a plane.
type Point struct {
	X, Y float64
}

// Size is the extent of a rectangle.
type Size struct {
	W, H float64
}

// Rect is an axis-aligned rectangle anchored at its top-left corner.
type Rect struct {
	X, Y, W, H float64
}

// Origin returns the top-left corner.
func (r Rect) Origin() Point {
	return Point{X: r.X, Y: r.Y}
}

// Size returns the extent of the rectangle.
func (r Rect) Size() Size {
	return Size{W: r.W, H: r.H}
}

// Contains tells if p lies inside the rectangle, edges included.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.W &&
		p.Y >= r.Y && p.Y <= r.Y+r.H
}

func (p Point) String() string { return format(p.X, p.Y) }
func (s Size) String() string  { return format(s.W, s.H) }
func (r Rect) String() string  { return format(r.X, r.Y, r.W, r.H) }

func format(values ...float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}

	return strings.Join(parts, ",")
}

// parse reads exactly n comma separated numbers.
func parse(text string, n int) ([]float64, error) {
	parts := strings.Split(text, ",")
	if len(parts) != n {
		return nil, fmt.Errorf("expected %d numbers, got %q", n, text)
	}

	values := make([]float64, n)
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, err
		}

		values[i] = v
	}

	return values, nil
}

// ParsePoint parses "x,y".
func ParsePoint(text string) (Point, error) {
	v, err := parse(text, 2)
	if err != nil {
		return Point{}, err
	}

	return Point{X: v[0], Y: v[1]}, nil
}

// ParseSize parses "w,h".
func ParseSize(text string) (Size, error) {
	v, err := parse(text, 2)
	if err != nil {
		return Size{}, err
	}

	return Size{W: v[0], H: v[1]}, nil
}

// ParseRect parses "x,y,w,h".
func ParseRect(text string) (Rect, error) {
	v, err := parse(text, 4)
	if err != nil {
		return Rect{}, err
	}

	return Rect{X: v[0], Y: v[1], W: v[2], H: v[3]}, nil
}
