package geometry

import "math"

// Rotation holds one angle (radians) per plane of rotation in 4D.
// 4D has six independent rotation planes, not four axes.
type Rotation struct {
	XY, XZ, XW, YZ, YW, ZW float64
}

func rotXY(a float64) Mat4 {
	c, s := math.Cos(a), math.Sin(a)
	M := Identity()
	M.M[0][0], M.M[0][1] = c, -s
	M.M[1][0], M.M[1][1] = s, c
	return M
}

func rotXZ(a float64) Mat4 {
	c, s := math.Cos(a), math.Sin(a)
	M := Identity()
	M.M[0][0], M.M[0][2] = c, -s
	M.M[2][0], M.M[2][2] = s, c
	return M
}

func rotXW(a float64) Mat4 {
	c, s := math.Cos(a), math.Sin(a)
	M := Identity()
	M.M[0][0], M.M[0][3] = c, -s
	M.M[3][0], M.M[3][3] = s, c
	return M
}

func rotYZ(a float64) Mat4 {
	c, s := math.Cos(a), math.Sin(a)
	M := Identity()
	M.M[1][1], M.M[1][2] = c, -s
	M.M[2][1], M.M[2][2] = s, c
	return M
}

func rotYW(a float64) Mat4 {
	c, s := math.Cos(a), math.Sin(a)
	M := Identity()
	M.M[1][1], M.M[1][3] = c, -s
	M.M[3][1], M.M[3][3] = s, c
	return M
}

func rotZW(a float64) Mat4 {
	c, s := math.Cos(a), math.Sin(a)
	M := Identity()
	M.M[2][2], M.M[2][3] = c, -s
	M.M[3][2], M.M[3][3] = s, c
	return M
}

// Compose builds the rotation matrix by applying the plane rotations in
// canonical order: XY, XZ, XW, YZ, YW, ZW. Plane rotations do not
// commute in 4D, so the order is fixed.
func (r Rotation) Compose() Mat4 {
	R := Identity()
	R = rotXY(r.XY).Mul(R)
	R = rotXZ(r.XZ).Mul(R)
	R = rotXW(r.XW).Mul(R)
	R = rotYZ(r.YZ).Mul(R)
	R = rotYW(r.YW).Mul(R)
	R = rotZW(r.ZW).Mul(R)
	return R
}

// Advance adds dt-scaled per-plane angular velocities and wraps each
// angle into (-2π, 2π) to keep magnitudes bounded over long runs.
func (r Rotation) Advance(vel Rotation, dt float64) Rotation {
	wrap := func(a float64) float64 { return math.Mod(a, 2*math.Pi) }
	return Rotation{
		XY: wrap(r.XY + vel.XY*dt),
		XZ: wrap(r.XZ + vel.XZ*dt),
		XW: wrap(r.XW + vel.XW*dt),
		YZ: wrap(r.YZ + vel.YZ*dt),
		YW: wrap(r.YW + vel.YW*dt),
		ZW: wrap(r.ZW + vel.ZW*dt),
	}
}
