package domain

import (
	"strings"

	"go.trai.ch/zerr"
)

// Topology is the primitive type fed into the geometry stage.
type Topology uint8

const (
	// TopologyTriangles is the default primitive type.
	TopologyTriangles Topology = iota
	// TopologyLines draws line segments.
	TopologyLines
	// TopologyPoints draws points.
	TopologyPoints
)

var topologyNames = map[Topology]string{
	TopologyTriangles: "triangles",
	TopologyLines:     "lines",
	TopologyPoints:    "points",
}

// String returns the topology name.
func (t Topology) String() string {
	if name, ok := topologyNames[t]; ok {
		return name
	}
	return "unknown"
}

// ParseTopology parses a topology name.
func ParseTopology(v string) (Topology, error) {
	for t, name := range topologyNames {
		if strings.EqualFold(v, name) {
			return t, nil
		}
	}
	return 0, zerr.With(ErrInvalidRenderState, "topology", v)
}

// ComponentMask is the bitset of vertex attributes present in the current vertex format.
type ComponentMask uint32

const (
	// ComponentPosition marks a position attribute.
	ComponentPosition ComponentMask = 1 << iota
	// ComponentNormal marks a normal attribute.
	ComponentNormal
	// ComponentColor0 marks the first vertex colour.
	ComponentColor0
	// ComponentColor1 marks the second vertex colour.
	ComponentColor1
	// ComponentTex0 marks the first texture coordinate; Tex1..Tex7 follow.
	ComponentTex0
)

// MaxTexCoords is the number of texture coordinate slots.
const MaxTexCoords = 8

var componentNames = []struct {
	mask ComponentMask
	name string
}{
	{ComponentPosition, "position"},
	{ComponentNormal, "normal"},
	{ComponentColor0, "color0"},
	{ComponentColor1, "color1"},
}

// Has reports whether every bit of c is set in m.
func (m ComponentMask) Has(c ComponentMask) bool {
	return m&c == c
}

// TexCoord returns the mask bit of texture coordinate i.
func TexCoord(i int) ComponentMask {
	return ComponentTex0 << uint(i)
}

// ParseComponents converts attribute names into a mask. Texture coordinates are named tex0..tex7.
func ParseComponents(names []string) (ComponentMask, error) {
	var mask ComponentMask
	for _, n := range names {
		bit, ok := componentBit(strings.ToLower(n))
		if !ok {
			return 0, zerr.With(ErrInvalidRenderState, "component", n)
		}
		mask |= bit
	}
	return mask, nil
}

func componentBit(name string) (ComponentMask, bool) {
	for _, c := range componentNames {
		if c.name == name {
			return c.mask, true
		}
	}
	if len(name) == 4 && strings.HasPrefix(name, "tex") {
		i := int(name[3] - '0')
		if i >= 0 && i < MaxTexCoords {
			return TexCoord(i), true
		}
	}
	return 0, false
}

// AlphaMode is the destination-alpha handling of the pixel stage.
type AlphaMode uint8

const (
	// AlphaModeNone writes the computed alpha.
	AlphaModeNone AlphaMode = iota
	// AlphaModeConstant overrides alpha with a constant.
	AlphaModeConstant
	// AlphaModeDualSource routes alpha through a second output.
	AlphaModeDualSource
)

var alphaModeNames = map[AlphaMode]string{
	AlphaModeNone:       "none",
	AlphaModeConstant:   "constant",
	AlphaModeDualSource: "dual_source",
}

// String returns the alpha mode name.
func (a AlphaMode) String() string {
	if name, ok := alphaModeNames[a]; ok {
		return name
	}
	return "unknown"
}

// ParseAlphaMode parses an alpha mode name. The empty string yields AlphaModeNone.
func ParseAlphaMode(v string) (AlphaMode, error) {
	if v == "" {
		return AlphaModeNone, nil
	}
	for a, name := range alphaModeNames {
		if strings.EqualFold(v, name) {
			return a, nil
		}
	}
	return 0, zerr.With(ErrInvalidRenderState, "alpha_mode", v)
}

// AlphaTest is the comparison used to discard pixels.
type AlphaTest uint8

const (
	// AlphaTestAlways never discards.
	AlphaTestAlways AlphaTest = iota
	// AlphaTestNever discards every pixel.
	AlphaTestNever
	// AlphaTestLess keeps pixels whose alpha is below the reference.
	AlphaTestLess
	// AlphaTestGreaterEqual keeps pixels whose alpha is at or above the reference.
	AlphaTestGreaterEqual
)

var alphaTestNames = map[AlphaTest]string{
	AlphaTestAlways:       "always",
	AlphaTestNever:        "never",
	AlphaTestLess:         "less",
	AlphaTestGreaterEqual: "greater_equal",
}

// String returns the alpha test name.
func (a AlphaTest) String() string {
	if name, ok := alphaTestNames[a]; ok {
		return name
	}
	return "unknown"
}

// ParseAlphaTest parses an alpha test name. The empty string yields AlphaTestAlways.
func ParseAlphaTest(v string) (AlphaTest, error) {
	if v == "" {
		return AlphaTestAlways, nil
	}
	for a, name := range alphaTestNames {
		if strings.EqualFold(v, name) {
			return a, nil
		}
	}
	return 0, zerr.With(ErrInvalidRenderState, "alpha_test", v)
}

// FogMode selects the fog blend applied by the pixel stage.
type FogMode uint8

const (
	// FogNone disables fog.
	FogNone FogMode = iota
	// FogLinear blends linearly with depth.
	FogLinear
	// FogExp blends exponentially with depth.
	FogExp
)

var fogNames = map[FogMode]string{
	FogNone:   "none",
	FogLinear: "linear",
	FogExp:    "exp",
}

// String returns the fog mode name.
func (f FogMode) String() string {
	if name, ok := fogNames[f]; ok {
		return name
	}
	return "unknown"
}

// ParseFogMode parses a fog mode name. The empty string yields FogNone.
func ParseFogMode(v string) (FogMode, error) {
	if v == "" {
		return FogNone, nil
	}
	for f, name := range fogNames {
		if strings.EqualFold(v, name) {
			return f, nil
		}
	}
	return 0, zerr.With(ErrInvalidRenderState, "fog", v)
}

// RenderState is a snapshot of the live fixed-function state that drives program generation.
type RenderState struct {
	Topology   Topology
	Components ComponentMask
	AlphaMode  AlphaMode
	AlphaTest  AlphaTest
	AlphaRef   uint8
	Fog        FogMode
	// LineWidth and PointSize are in sixteenths of a pixel.
	LineWidth uint16
	PointSize uint16
	Stereo    bool
	Wireframe bool
}
