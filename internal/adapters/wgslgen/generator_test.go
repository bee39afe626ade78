package wgslgen_test

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"go.trai.ch/shade/internal/adapters/wgslgen"
	"go.trai.ch/shade/internal/core/domain"
)

func TestGenerator_Golden(t *testing.T) {
	tests := []struct {
		name       string
		stage      domain.Stage
		state      domain.RenderState
		goldenName string
	}{
		{
			name:  "lit textured vertex",
			stage: domain.StageVertex,
			state: domain.RenderState{
				Components: domain.ComponentPosition | domain.ComponentNormal |
					domain.ComponentColor0 | domain.ComponentTex0,
			},
			goldenName: "vertex_lit_textured",
		},
		{
			name:  "line expansion",
			stage: domain.StageGeometry,
			state: domain.RenderState{
				Topology:   domain.TopologyLines,
				Components: domain.ComponentPosition | domain.ComponentColor0,
				LineWidth:  32,
			},
			goldenName: "geometry_lines",
		},
		{
			name:  "fog and alpha test",
			stage: domain.StagePixel,
			state: domain.RenderState{
				Components: domain.ComponentPosition | domain.ComponentColor0 | domain.ComponentTex0,
				AlphaTest:  domain.AlphaTestGreaterEqual,
				AlphaRef:   128,
				Fog:        domain.FogLinear,
			},
			goldenName: "pixel_fog_alpha_test",
		},
		{
			name:       "dual source alpha",
			stage:      domain.StagePixel,
			state:      domain.RenderState{AlphaMode: domain.AlphaModeDualSource},
			goldenName: "pixel_dual_source",
		},
	}

	gen := wgslgen.New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := goldie.New(t)
			g.Assert(t, tt.goldenName, []byte(gen.Source(tt.stage, tt.state)))
		})
	}
}

func TestGenerator_UIDIgnoresUnusedState(t *testing.T) {
	gen := wgslgen.New()
	base := domain.RenderState{
		Components: domain.ComponentPosition | domain.ComponentColor0,
		AlphaTest:  domain.AlphaTestAlways,
	}
	points := base
	points.Topology = domain.TopologyPoints
	points.PointSize = 16

	tests := []struct {
		name   string
		stage  domain.Stage
		from   domain.RenderState
		mutate func(*domain.RenderState)
	}{
		{"vertex ignores alpha ref", domain.StageVertex, base, func(s *domain.RenderState) { s.AlphaRef = 77 }},
		{"vertex ignores fog", domain.StageVertex, base, func(s *domain.RenderState) { s.Fog = domain.FogExp }},
		{"pixel ignores line width", domain.StagePixel, base, func(s *domain.RenderState) { s.LineWidth = 48 }},
		{"pixel ignores alpha ref when always", domain.StagePixel, base, func(s *domain.RenderState) { s.AlphaRef = 9 }},
		{"pixel ignores normals", domain.StagePixel, base, func(s *domain.RenderState) { s.Components |= domain.ComponentNormal }},
		{"triangles ignore line width", domain.StageGeometry, base, func(s *domain.RenderState) { s.LineWidth = 64 }},
		{"points ignore line width", domain.StageGeometry, points, func(s *domain.RenderState) { s.LineWidth = 64 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			changed := tt.from
			tt.mutate(&changed)
			assert.Equal(t, gen.UID(tt.stage, tt.from), gen.UID(tt.stage, changed))
			assert.Equal(t, gen.Source(tt.stage, tt.from), gen.Source(tt.stage, changed))
		})
	}
}

func TestGenerator_UIDCapturesUsedState(t *testing.T) {
	gen := wgslgen.New()
	base := domain.RenderState{
		Components: domain.ComponentPosition | domain.ComponentColor0,
		AlphaTest:  domain.AlphaTestLess,
		AlphaRef:   10,
		Topology:   domain.TopologyLines,
		LineWidth:  16,
	}

	tests := []struct {
		name   string
		stage  domain.Stage
		mutate func(*domain.RenderState)
	}{
		{"vertex components", domain.StageVertex, func(s *domain.RenderState) { s.Components |= domain.TexCoord(1) }},
		{"vertex stereo", domain.StageVertex, func(s *domain.RenderState) { s.Stereo = true }},
		{"geometry line width", domain.StageGeometry, func(s *domain.RenderState) { s.LineWidth = 32 }},
		{"geometry topology", domain.StageGeometry, func(s *domain.RenderState) { s.Topology = domain.TopologyPoints }},
		{"pixel alpha ref", domain.StagePixel, func(s *domain.RenderState) { s.AlphaRef = 11 }},
		{"pixel fog", domain.StagePixel, func(s *domain.RenderState) { s.Fog = domain.FogExp }},
		{"pixel alpha mode", domain.StagePixel, func(s *domain.RenderState) { s.AlphaMode = domain.AlphaModeConstant }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			changed := base
			tt.mutate(&changed)
			assert.NotEqual(t, gen.UID(tt.stage, base), gen.UID(tt.stage, changed))
			assert.NotEqual(t, gen.Source(tt.stage, base), gen.Source(tt.stage, changed))
		})
	}
}

func TestGenerator_Passthrough(t *testing.T) {
	gen := wgslgen.New()

	tri := domain.RenderState{Topology: domain.TopologyTriangles, Components: domain.ComponentColor0, LineWidth: 8}
	assert.True(t, gen.UID(domain.StageGeometry, tri).IsPassthrough())
	assert.Equal(t, domain.UID{Stage: domain.StageGeometry}, gen.UID(domain.StageGeometry, tri))

	wire := tri
	wire.Wireframe = true
	assert.False(t, gen.UID(domain.StageGeometry, wire).IsPassthrough())

	stereo := tri
	stereo.Stereo = true
	assert.False(t, gen.UID(domain.StageGeometry, stereo).IsPassthrough())

	// Wireframe only applies to triangles.
	lines := tri
	lines.Topology = domain.TopologyLines
	wireLines := lines
	wireLines.Wireframe = true
	assert.Equal(t, gen.UID(domain.StageGeometry, lines), gen.UID(domain.StageGeometry, wireLines))
}

func TestGenerator_Deterministic(t *testing.T) {
	gen := wgslgen.New()
	state := domain.RenderState{
		Topology:   domain.TopologyPoints,
		Components: domain.ComponentPosition | domain.ComponentColor1 | domain.ComponentTex0 | domain.TexCoord(3),
		PointSize:  40,
		Fog:        domain.FogExp,
		AlphaMode:  domain.AlphaModeConstant,
		AlphaTest:  domain.AlphaTestNever,
		Stereo:     true,
	}
	for _, s := range domain.Stages {
		uid := gen.UID(s, state)
		assert.Equal(t, uid, gen.UID(s, state))
		assert.Equal(t, wgslgen.Emit(uid), gen.Source(s, state))
		assert.Contains(t, gen.Source(s, state), "fn main(")
	}
}
