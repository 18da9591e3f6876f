package geometry

import "math"

// RegularPolygonPoints returns the vertices of a regular polygon centered on
// center. The first vertex points straight up (negative Y) and the rest follow
// clockwise on screen.
func RegularPolygonPoints(center Point2D, radius float64, sides int) []Point2D {
	if sides < 3 {
		return nil
	}
	points := make([]Point2D, sides)
	for i := 0; i < sides; i++ {
		angle := float64(i) * 2.0 * math.Pi / float64(sides)
		points[i] = Point2D{
			X: center.X + radius*math.Sin(angle),
			Y: center.Y - radius*math.Cos(angle),
		}
	}
	return points
}

// PointInPolygon reports whether p lies inside the polygon using the even-odd
// rule. The polygon is implicitly closed.
func PointInPolygon(p Point2D, polygon []Point2D) bool {
	if len(polygon) < 3 {
		return false
	}
	inside := false
	j := len(polygon) - 1
	for i := 0; i < len(polygon); i++ {
		a, b := polygon[i], polygon[j]
		if (a.Y > p.Y) != (b.Y > p.Y) {
			xCross := (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y) + a.X
			if p.X < xCross {
				inside = !inside
			}
		}
		j = i
	}
	return inside
}
