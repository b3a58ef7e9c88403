package geometry

import (
	"fmt"
	"math"
)

// Kind selects a 4D polytope topology.
type Kind uint8

const (
	Hypercube Kind = iota
	Hypertetrahedron
	Hypersphere
)

func (k Kind) String() string {
	switch k {
	case Hypercube:
		return "hypercube"
	case Hypertetrahedron:
		return "hypertetrahedron"
	case Hypersphere:
		return "hypersphere"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Kinds returns all supported polytope kinds in display order.
func Kinds() []Kind {
	return []Kind{Hypercube, Hypertetrahedron, Hypersphere}
}

// ParseKind maps a name to a Kind.
func ParseKind(name string) (Kind, error) {
	switch name {
	case "hypercube", "tesseract", "cube":
		return Hypercube, nil
	case "hypertetrahedron", "5-cell", "simplex":
		return Hypertetrahedron, nil
	case "hypersphere", "sphere":
		return Hypersphere, nil
	default:
		return 0, &ConfigError{Param: "geometry", Reason: fmt.Sprintf("unknown kind %q", name)}
	}
}

// MinSphereResolution is the smallest accepted hypersphere tessellation
// density. Below it the edge loops collapse to self-loops.
const MinSphereResolution = 2

// DefaultSphereResolution is used when the caller does not care.
const DefaultSphereResolution = 12

// ConfigError reports an invalid geometry parameter, rejected at the
// call boundary with no state changed.
type ConfigError struct {
	Param  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("geometry config: %s: %s", e.Param, e.Reason)
}

// Polytope is an immutable 4D wireframe: vertices plus unordered index
// pairs into them. Built once per kind switch and never mutated, so a
// reader holding a *Polytope never observes a partial topology.
type Polytope struct {
	Kind     Kind
	Vertices []Vec4
	Edges    [][2]int
}

// Topology builds the wireframe for the given kind. It is a pure
// function of its arguments. res only matters for Hypersphere and must
// be at least MinSphereResolution there; pass 0 elsewhere.
func Topology(kind Kind, res int) (*Polytope, error) {
	switch kind {
	case Hypercube:
		return hypercube(), nil
	case Hypertetrahedron:
		return hypertetrahedron(), nil
	case Hypersphere:
		return hypersphere(res)
	default:
		return nil, &ConfigError{Param: "geometry", Reason: fmt.Sprintf("unknown kind %d", kind)}
	}
}

// hypercube returns the tesseract: the 16 vertices (±1)⁴, with an edge
// wherever two vertices differ in exactly one coordinate. 32 edges.
func hypercube() *Polytope {
	verts := make([]Vec4, 16)
	for i := range verts {
		sign := func(bit int) float64 {
			if i&(1<<bit) != 0 {
				return 1
			}
			return -1
		}
		verts[i] = Vec4{sign(0), sign(1), sign(2), sign(3)}
	}

	var edges [][2]int
	for i := 0; i < 16; i++ {
		for bit := 0; bit < 4; bit++ {
			j := i ^ (1 << bit)
			if i < j {
				edges = append(edges, [2]int{i, j})
			}
		}
	}
	return &Polytope{Kind: Hypercube, Vertices: verts, Edges: edges}
}

// hypertetrahedron returns the regular 5-cell with unit circumradius.
// The 5 vertices come from the 5D standard-basis vectors minus their
// centroid, expressed in an orthonormal basis of the subspace
// orthogonal to (1,1,1,1,1). Every vertex pair is an edge: 10 edges.
func hypertetrahedron() *Polytope {
	B := [4][5]float64{
		{1 / math.Sqrt2, -1 / math.Sqrt2, 0, 0, 0},
		{1 / math.Sqrt(6), 1 / math.Sqrt(6), -2 / math.Sqrt(6), 0, 0},
		{1 / math.Sqrt(12), 1 / math.Sqrt(12), 1 / math.Sqrt(12), -3 / math.Sqrt(12), 0},
		{1 / math.Sqrt(20), 1 / math.Sqrt(20), 1 / math.Sqrt(20), 1 / math.Sqrt(20), -4 / math.Sqrt(20)},
	}
	var w [5][5]float64
	for i := 0; i < 5; i++ {
		for k := 0; k < 5; k++ {
			w[i][k] = -0.2
		}
		w[i][i] = 0.8
	}

	verts := make([]Vec4, 5)
	for i := 0; i < 5; i++ {
		var v Vec4
		for k := 0; k < 5; k++ {
			v.X += B[0][k] * w[i][k]
			v.Y += B[1][k] * w[i][k]
			v.Z += B[2][k] * w[i][k]
			v.W += B[3][k] * w[i][k]
		}
		verts[i] = v.Norm()
	}

	var edges [][2]int
	for i := 0; i < 5; i++ {
		for j := i + 1; j < 5; j++ {
			edges = append(edges, [2]int{i, j})
		}
	}
	return &Polytope{Kind: Hypertetrahedron, Vertices: verts, Edges: edges}
}

// hypersphere approximates the unit 3-sphere by its Clifford torus
// (cos u, sin u, cos v, sin v)/√2, sampled on a res×res grid with edge
// loops along both parameters: res² vertices, 2·res² edges.
func hypersphere(res int) (*Polytope, error) {
	if res < MinSphereResolution {
		return nil, &ConfigError{
			Param:  "resolution",
			Reason: fmt.Sprintf("%d below minimum %d", res, MinSphereResolution),
		}
	}

	inv := 1 / math.Sqrt2
	verts := make([]Vec4, 0, res*res)
	for i := 0; i < res; i++ {
		u := 2 * math.Pi * float64(i) / float64(res)
		cu, su := math.Cos(u), math.Sin(u)
		for j := 0; j < res; j++ {
			v := 2 * math.Pi * float64(j) / float64(res)
			verts = append(verts, Vec4{
				X: cu * inv,
				Y: su * inv,
				Z: math.Cos(v) * inv,
				W: math.Sin(v) * inv,
			})
		}
	}

	edges := make([][2]int, 0, 2*res*res)
	at := func(i, j int) int { return ((i+res)%res)*res + (j+res)%res }
	for i := 0; i < res; i++ {
		for j := 0; j < res; j++ {
			edges = append(edges, [2]int{at(i, j), at(i+1, j)})
			edges = append(edges, [2]int{at(i, j), at(i, j+1)})
		}
	}
	return &Polytope{Kind: Hypersphere, Vertices: verts, Edges: edges}, nil
}
