package building

import "math"

type Point3d struct {
	X, Y, Z float64
}

// newellNormal returns the (unnormalized) Newell normal of a planar polygon. Its
// length is twice the polygon area.
func newellNormal(vertices []Point3d) (nx, ny, nz float64) {
	n := len(vertices)
	for i := 0; i < n; i++ {
		a := vertices[i]
		b := vertices[(i+1)%n]
		nx += (a.Y - b.Y) * (a.Z + b.Z)
		ny += (a.Z - b.Z) * (a.X + b.X)
		nz += (a.X - b.X) * (a.Y + b.Y)
	}
	return
}

func GrossArea(vertices []Point3d) float64 {
	if len(vertices) < 3 {
		return 0
	}
	nx, ny, nz := newellNormal(vertices)
	return 0.5 * math.Sqrt(nx*nx+ny*ny+nz*nz)
}

// Azimuth of the outward normal in radians, clockwise from north (+y), in [0, 2pi).
// Counter-clockwise vertex order seen from outside gives the outward normal.
func Azimuth(vertices []Point3d) float64 {
	if len(vertices) < 3 {
		return 0
	}
	nx, ny, _ := newellNormal(vertices)
	if nx == 0 && ny == 0 {
		return 0
	}
	az := math.Atan2(nx, ny)
	if az < 0 {
		az += 2 * math.Pi
	}
	return az
}

// AverageZ is the mean vertex height.
func AverageZ(vertices []Point3d) (float64, bool) {
	if len(vertices) == 0 {
		return 0, false
	}
	var z float64
	for _, p := range vertices {
		z += p.Z
	}
	return z / float64(len(vertices)), true
}
