package model

import "math"

// Point is a map position in game cells.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func Pt(x, y float64) Point { return Point{X: x, Y: y} }

func (p Point) Add(o Point) Point { return Point{p.X + o.X, p.Y + o.Y} }
func (p Point) Sub(o Point) Point { return Point{p.X - o.X, p.Y - o.Y} }
func (p Point) Scale(f float64) Point { return Point{p.X * f, p.Y * f} }
func (p Point) Len() float64 { return math.Hypot(p.X, p.Y) }
func (p Point) Dist(o Point) float64 { return p.Sub(o).Len() }
func (p Point) Near(o Point, eps float64) bool { return p.Dist(o) <= eps }

// Unit returns p scaled to length 1, or the zero point when p has no length.
func (p Point) Unit() Point {
	l := p.Len()
	if l == 0 {
		return Point{}
	}
	return Point{p.X / l, p.Y / l}
}

// Centroid of the given points. ok is false for an empty set.
func Centroid(points []Point) (c Point, ok bool) {
	if len(points) == 0 {
		return Point{}, false
	}
	for _, p := range points {
		c.X += p.X
		c.Y += p.Y
	}
	n := float64(len(points))
	return Point{c.X / n, c.Y / n}, true
}

// Positions extracts unit positions in input order.
func Positions(units []Unit) []Point {
	out := make([]Point, len(units))
	for i, u := range units {
		out[i] = u.Pos
	}
	return out
}

// Closest returns the unit nearest to p. Ties keep the earlier unit.
func Closest(units []Unit, p Point) (Unit, bool) {
	var best Unit
	bestDist := math.MaxFloat64
	found := false
	for _, u := range units {
		d := u.Pos.Dist(p)
		if d < bestDist {
			best, bestDist, found = u, d, true
		}
	}
	return best, found
}

// MeanDistance is the average distance of points from c (0 for no points).
func MeanDistance(points []Point, c Point) float64 {
	if len(points) == 0 {
		return 0
	}
	sum := 0.0
	for _, p := range points {
		sum += p.Dist(c)
	}
	return sum / float64(len(points))
}
