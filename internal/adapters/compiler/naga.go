// Package compiler compiles generated WGSL with gogpu/naga.
package compiler

import (
	"context"
	"strings"

	"github.com/gogpu/naga"
	"github.com/gogpu/naga/hlsl"
	"github.com/gogpu/naga/ir"
	"github.com/gogpu/naga/spirv"
	"go.trai.ch/shade/internal/core/domain"
	"go.trai.ch/shade/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Compiler = (*Naga)(nil)

var spirvTargets = map[string]spirv.Version{
	"spv_1_0": spirv.Version1_0,
	"spv_1_3": spirv.Version1_3,
	"spv_1_4": spirv.Version1_4,
	"spv_1_5": spirv.Version1_5,
	"spv_1_6": spirv.Version1_6,
}

var hlslTargets = map[string]hlsl.ShaderModel{
	"hlsl_5_0": hlsl.ShaderModel5_0,
	"hlsl_5_1": hlsl.ShaderModel5_1,
	"hlsl_6_0": hlsl.ShaderModel6_0,
}

// Targets returns every supported target name.
func Targets() []string {
	names := make([]string, 0, len(spirvTargets)+len(hlslTargets))
	for name := range spirvTargets {
		names = append(names, name)
	}
	for name := range hlslTargets {
		names = append(names, name)
	}
	return names
}

// IsTarget reports whether name is a supported target.
func IsTarget(name string) bool {
	_, spv := spirvTargets[name]
	_, hl := hlslTargets[name]
	return spv || hl
}

// Naga is a ports.Compiler that turns WGSL into SPIR-V binaries or HLSL text.
// It holds no state and is safe for concurrent use.
type Naga struct{}

// New creates a Naga compiler.
func New() *Naga {
	return &Naga{}
}

// Compile parses, lowers and optionally validates req.Source, then emits code for req.Target.
func (n *Naga) Compile(ctx context.Context, req ports.CompileRequest) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	spv, isSPIRV := spirvTargets[req.Target]
	sm, isHLSL := hlslTargets[req.Target]
	if !isSPIRV && !isHLSL {
		return nil, zerr.With(domain.ErrUnknownTarget, "target", req.Target)
	}

	ast, err := naga.Parse(req.Source)
	if err != nil {
		return nil, err
	}
	module, err := naga.LowerWithSource(ast, req.Source)
	if err != nil {
		return nil, err
	}

	entry := req.EntryPoint
	if entry == "" {
		entry = domain.DefaultEntryPoint
	}
	if err := checkEntryPoint(module, req.Stage, entry); err != nil {
		return nil, err
	}

	if !req.Flags.Has(domain.FlagSkipValidation) {
		verrs, err := naga.Validate(module)
		if err != nil {
			return nil, err
		}
		if len(verrs) > 0 {
			return nil, zerr.Wrap(&verrs[0], "validation failed")
		}
	}

	if isSPIRV {
		return naga.GenerateSPIRV(module, spirv.Options{
			Version: spv,
			Debug:   req.Flags.Has(domain.FlagDebugInfo),
		})
	}

	opts := hlsl.DefaultOptions()
	opts.ShaderModel = sm
	text, _, err := hlsl.Compile(module, opts)
	if err != nil {
		return nil, err
	}
	return []byte(text), nil
}

// expectedStage maps a cache stage to the WGSL stage attribute its program uses. Geometry
// programs expand primitives in a vertex entry point.
func expectedStage(s domain.Stage) ir.ShaderStage {
	if s == domain.StagePixel {
		return ir.StageFragment
	}
	return ir.StageVertex
}

func checkEntryPoint(module *ir.Module, stage domain.Stage, name string) error {
	want := expectedStage(stage)
	var found []string
	for _, ep := range module.EntryPoints {
		if ep.Name == name && ep.Stage == want {
			return nil
		}
		found = append(found, ep.Name)
	}
	err := zerr.With(domain.ErrEntryPointNotFound, "entry_point", name)
	err = zerr.With(err, "stage", stage.String())
	return zerr.With(err, "available", strings.Join(found, ","))
}
