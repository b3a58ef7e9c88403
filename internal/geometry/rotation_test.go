package geometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestComposeIsOrthonormal(t *testing.T) {
	R := Rotation{
		XY: math.Pi / 6,
		XZ: math.Pi / 7,
		XW: math.Pi / 5,
		YZ: math.Pi / 8,
		YW: math.Pi / 9,
		ZW: math.Pi / 10,
	}.Compose()

	P := R.Transpose().Mul(R)
	I := Identity()
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			require.InDelta(t, I.M[r][c], P.M[r][c], 1e-12, "R^T R at (%d,%d)", r, c)
		}
	}
}

func TestComposeInvertible(t *testing.T) {
	// The transpose of an orthonormal rotation undoes it exactly, for
	// every vertex of every topology.
	R := Rotation{XY: 0.3, XZ: -1.1, XW: 0.7, YZ: 2.2, YW: -0.4, ZW: 0.9}.Compose()
	RT := R.Transpose()

	for _, kind := range Kinds() {
		p, err := Topology(kind, 6)
		require.NoError(t, err)
		for i, v := range p.Vertices {
			back := RT.MulVec(R.MulVec(v))
			require.InDelta(t, v.X, back.X, 1e-12, "%s vertex %d X", kind, i)
			require.InDelta(t, v.Y, back.Y, 1e-12, "%s vertex %d Y", kind, i)
			require.InDelta(t, v.Z, back.Z, 1e-12, "%s vertex %d Z", kind, i)
			require.InDelta(t, v.W, back.W, 1e-12, "%s vertex %d W", kind, i)
		}
	}
}

func TestSinglePlaneNegativeAngleInverts(t *testing.T) {
	// For a single-plane rotation, Compose of the negated angle is the
	// exact inverse.
	v := Vec4{0.3, -0.8, 0.5, 1.2}
	fwd := Rotation{XW: 1.234}.Compose()
	bwd := Rotation{XW: -1.234}.Compose()
	back := bwd.MulVec(fwd.MulVec(v))
	require.InDelta(t, v.X, back.X, 1e-12)
	require.InDelta(t, v.W, back.W, 1e-12)
}

func TestPlaneRotationMovesOnlyItsPlane(t *testing.T) {
	// 90° in XY: (1,0,0,0) -> (0,1,0,0), length preserved.
	o := Rotation{XY: math.Pi / 2}.Compose().MulVec(Vec4{X: 1})
	require.InDelta(t, 0, o.X, 1e-12)
	require.InDelta(t, 1, o.Y, 1e-12)
	require.InDelta(t, 0, o.Z, 1e-12)
	require.InDelta(t, 0, o.W, 1e-12)
	require.InDelta(t, 1, o.Len(), 1e-12)

	// 90° in ZW: (0,0,1,0) -> (0,0,0,1).
	o = Rotation{ZW: math.Pi / 2}.Compose().MulVec(Vec4{Z: 1})
	require.InDelta(t, 1, o.W, 1e-12)
}

func TestComposeAppliesPlanesInCanonicalOrder(t *testing.T) {
	// XY before YZ: 90° XY sends x̂ to ŷ, then 90° YZ sends ŷ to ẑ.
	// The reverse order would leave x̂ on ŷ, so this pins the order.
	o := Rotation{XY: math.Pi / 2, YZ: math.Pi / 2}.Compose().MulVec(Vec4{X: 1})
	require.InDelta(t, 0, o.X, 1e-12)
	require.InDelta(t, 0, o.Y, 1e-12)
	require.InDelta(t, 1, o.Z, 1e-12)
	require.InDelta(t, 0, o.W, 1e-12)
}

func TestAdvanceWrapsAngles(t *testing.T) {
	r := Rotation{}
	vel := Rotation{XY: 1, ZW: -2}
	for i := 0; i < 1000; i++ {
		r = r.Advance(vel, 0.5)
	}
	require.Less(t, math.Abs(r.XY), 2*math.Pi)
	require.Less(t, math.Abs(r.ZW), 2*math.Pi)
	require.Zero(t, r.XZ)
}
