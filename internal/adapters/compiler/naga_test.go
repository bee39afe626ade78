package compiler_test

import (
	"context"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/shade/internal/adapters/compiler"
	"go.trai.ch/shade/internal/core/domain"
	"go.trai.ch/shade/internal/core/ports"
)

const vertexSource = `
@vertex
fn main(@builtin(vertex_index) idx: u32) -> @builtin(position) vec4<f32> {
    return vec4<f32>(0.0, 0.0, 0.0, 1.0);
}
`

const pixelSource = `
@fragment
fn main(@location(0) color: vec4<f32>) -> @location(0) vec4<f32> {
    return color;
}
`

const spirvMagic = 0x07230203

func request(stage domain.Stage, source, target string) ports.CompileRequest {
	return ports.CompileRequest{
		Stage:      stage,
		Source:     source,
		Target:     target,
		EntryPoint: "main",
		Flags:      domain.FlagSkipValidation,
	}
}

func TestNaga_SPIRVTargets(t *testing.T) {
	c := compiler.New()
	for _, target := range []string{"spv_1_0", "spv_1_3", "spv_1_4", "spv_1_5", "spv_1_6"} {
		t.Run(target, func(t *testing.T) {
			code, err := c.Compile(t.Context(), request(domain.StageVertex, vertexSource, target))
			require.NoError(t, err)
			require.GreaterOrEqual(t, len(code), 20)
			assert.Equal(t, uint32(spirvMagic), binary.LittleEndian.Uint32(code))
		})
	}
}

func TestNaga_PixelStage(t *testing.T) {
	code, err := compiler.New().Compile(t.Context(), request(domain.StagePixel, pixelSource, "spv_1_3"))
	require.NoError(t, err)
	assert.Equal(t, uint32(spirvMagic), binary.LittleEndian.Uint32(code))
}

func TestNaga_DebugInfo(t *testing.T) {
	req := request(domain.StageVertex, vertexSource, "spv_1_3")
	req.Flags |= domain.FlagDebugInfo

	code, err := compiler.New().Compile(t.Context(), req)
	require.NoError(t, err)
	assert.Equal(t, uint32(spirvMagic), binary.LittleEndian.Uint32(code))
}

func TestNaga_HLSLTarget(t *testing.T) {
	code, err := compiler.New().Compile(t.Context(), request(domain.StageVertex, vertexSource, "hlsl_5_1"))
	require.NoError(t, err)
	assert.Contains(t, string(code), "SV_Position")
}

func TestNaga_Errors(t *testing.T) {
	tests := []struct {
		name        string
		req         ports.CompileRequest
		errContains string
	}{
		{
			name:        "unknown target",
			req:         request(domain.StageVertex, vertexSource, "dxil_9"),
			errContains: domain.ErrUnknownTarget.Error(),
		},
		{
			name:        "entry point of wrong stage",
			req:         request(domain.StagePixel, vertexSource, "spv_1_3"),
			errContains: domain.ErrEntryPointNotFound.Error(),
		},
		{
			name: "missing entry point",
			req: ports.CompileRequest{
				Stage: domain.StageVertex, Source: vertexSource, Target: "spv_1_3", EntryPoint: "vs_main",
			},
			errContains: domain.ErrEntryPointNotFound.Error(),
		},
		{
			name:        "syntax error",
			req:         request(domain.StageVertex, "@vertex fn main( {", "spv_1_3"),
			errContains: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := compiler.New().Compile(t.Context(), tt.req)
			require.Error(t, err)
			if tt.errContains != "" {
				assert.ErrorContains(t, err, tt.errContains)
			}
		})
	}
}

func TestNaga_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	_, err := compiler.New().Compile(ctx, request(domain.StageVertex, vertexSource, "spv_1_3"))
	require.ErrorIs(t, err, context.Canceled)
}

func TestTargets(t *testing.T) {
	assert.Len(t, compiler.Targets(), 8)
	assert.True(t, compiler.IsTarget(domain.DefaultTarget))
	assert.True(t, compiler.IsTarget("hlsl_6_0"))
	assert.False(t, compiler.IsTarget("glsl_450"))
}
