package vmath

// Vec2 is a position in pixel space.
type Vec2 struct{ X, Y float32 }

func V2(x, y float32) Vec2 { return Vec2{X: x, Y: y} }

// V2f splats a single value into both components.
func V2f(v float32) Vec2 { return Vec2{X: v, Y: v} }

func Add(a, b Vec2) Vec2 { return Vec2{X: a.X + b.X, Y: a.Y + b.Y} }

func Sub(a, b Vec2) Vec2 { return Vec2{X: a.X - b.X, Y: a.Y - b.Y} }

func Scale(a Vec2, s float32) Vec2 { return Vec2{X: a.X * s, Y: a.Y * s} }

// SqrLen returns a.X² + a.Y² without taking the square root.
func SqrLen(a Vec2) float32 { return a.X*a.X + a.Y*a.Y }
