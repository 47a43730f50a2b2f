package spatial

import (
	"math"

	"github.com/ctessum/geom"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

type segment struct {
	a, b orb.Point
}

// boundaryDistance is the smallest planar distance between the boundaries of
// two polygonal geometries. Crossing or touching boundaries give zero.
func boundaryDistance(a, b geom.Polygonal) float64 {
	sa, sb := segments(a), segments(b)
	best := math.Inf(1)
	for _, s := range sa {
		for _, o := range sb {
			d := segmentDistance(s, o)
			if d < best {
				best = d
				if best == 0 {
					return 0
				}
			}
		}
	}
	return best
}

// boundsDistance is a lower bound of boundaryDistance.
func boundsDistance(a, b *geom.Bounds) float64 {
	dx := math.Max(0, math.Max(a.Min.X-b.Max.X, b.Min.X-a.Max.X))
	dy := math.Max(0, math.Max(a.Min.Y-b.Max.Y, b.Min.Y-a.Max.Y))
	return math.Hypot(dx, dy)
}

func segments(g geom.Polygonal) []segment {
	var out []segment
	for _, poly := range polygons(g) {
		for _, ring := range poly {
			n := len(ring)
			for i := 0; i < n; i++ {
				p, q := ring[i], ring[(i+1)%n]
				if p == q {
					continue
				}
				out = append(out, segment{
					a: orb.Point{p.X, p.Y},
					b: orb.Point{q.X, q.Y},
				})
			}
		}
	}
	return out
}

func segmentDistance(s, o segment) float64 {
	if segmentsIntersect(s, o) {
		return 0
	}
	return math.Min(
		math.Min(planar.DistanceFromSegment(o.a, o.b, s.a), planar.DistanceFromSegment(o.a, o.b, s.b)),
		math.Min(planar.DistanceFromSegment(s.a, s.b, o.a), planar.DistanceFromSegment(s.a, s.b, o.b)),
	)
}

func orientation(p, q, r orb.Point) float64 {
	return (q[0]-p[0])*(r[1]-p[1]) - (q[1]-p[1])*(r[0]-p[0])
}

func onSegment(p, q, r orb.Point) bool {
	return math.Min(p[0], r[0]) <= q[0] && q[0] <= math.Max(p[0], r[0]) &&
		math.Min(p[1], r[1]) <= q[1] && q[1] <= math.Max(p[1], r[1])
}

func segmentsIntersect(s, o segment) bool {
	d1 := orientation(o.a, o.b, s.a)
	d2 := orientation(o.a, o.b, s.b)
	d3 := orientation(s.a, s.b, o.a)
	d4 := orientation(s.a, s.b, o.b)

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) && ((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}
	switch {
	case d1 == 0 && onSegment(o.a, s.a, o.b):
		return true
	case d2 == 0 && onSegment(o.a, s.b, o.b):
		return true
	case d3 == 0 && onSegment(s.a, o.a, s.b):
		return true
	case d4 == 0 && onSegment(s.a, o.b, s.b):
		return true
	}
	return false
}
