package model

import "math"

// Vec2 is a position or velocity in container space.
// Value type, passed by value.
type Vec2 struct {
	X float64
	Y float64
}

// V is a shorthand constructor.
func V(x, y float64) Vec2 {
	return Vec2{X: x, Y: y}
}

func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{X: v.X + o.X, Y: v.Y + o.Y}
}

func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{X: v.X - o.X, Y: v.Y - o.Y}
}

func (v Vec2) Scale(f float64) Vec2 {
	return Vec2{X: v.X * f, Y: v.Y * f}
}

// Len returns the magnitude.
func (v Vec2) Len() float64 {
	return math.Hypot(v.X, v.Y)
}

// DistanceSquared returns the squared distance (no sqrt on the hot path).
func (v Vec2) DistanceSquared(o Vec2) float64 {
	dx := v.X - o.X
	dy := v.Y - o.Y
	return dx*dx + dy*dy
}

// Midpoint returns the point halfway between v and o.
func (v Vec2) Midpoint(o Vec2) Vec2 {
	return Vec2{X: (v.X + o.X) / 2, Y: (v.Y + o.Y) / 2}
}

// Centroid returns the arithmetic mean of points (zero vector for none).
func Centroid(points []Vec2) Vec2 {
	if len(points) == 0 {
		return Vec2{}
	}
	var sum Vec2
	for _, p := range points {
		sum = sum.Add(p)
	}
	return sum.Scale(1 / float64(len(points)))
}
