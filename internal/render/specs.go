package render

// SpecFor returns the built-in program source for a geometry/effect
// pair. Palettes ramp from far-W to near-W; the device bakes them into
// a lookup table at compile time.
func SpecFor(key ProgramKey) ProgramSpec {
	var stops []ColorStop
	switch key.Geometry {
	case "hypertetrahedron":
		stops = []ColorStop{
			{At: 0, R: 80, G: 16, B: 60},
			{At: 0.5, R: 255, G: 64, B: 128},
			{At: 1, R: 255, G: 210, B: 230},
		}
	case "hypersphere":
		stops = []ColorStop{
			{At: 0, R: 10, G: 40, B: 80},
			{At: 0.45, R: 20, G: 255, B: 161},
			{At: 1, R: 220, G: 255, B: 240},
		}
	default: // hypercube and anything unrecognized
		stops = []ColorStop{
			{At: 0, R: 16, G: 25, B: 70},
			{At: 0.5, R: 0, G: 174, B: 255},
			{At: 1, R: 200, G: 240, B: 255},
		}
	}
	if key.Effect == EffectGlow {
		// Glow variants push the near end toward white for the bloom.
		stops[len(stops)-1] = ColorStop{At: 1, R: 255, G: 255, B: 255}
	}
	return ProgramSpec{Key: key, Stops: stops}
}

// FallbackSpec is the minimal flat-color program used when a real
// compile fails. A single stop renders every edge the same gray.
func FallbackSpec() ProgramSpec {
	return ProgramSpec{
		Key:   ProgramKey{Geometry: "fallback", Effect: EffectWireframe},
		Stops: []ColorStop{{At: 0, R: 180, G: 180, B: 180}},
	}
}
