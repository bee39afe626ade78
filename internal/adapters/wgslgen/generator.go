// Package wgslgen derives UIDs and WGSL program text from render state.
//
// Program text is emitted from the UID alone, so two states with equal UIDs always produce the
// same text. Every field a stage's text ignores is zeroed in its UID.
package wgslgen

import (
	"fmt"
	"strconv"
	"strings"

	"go.trai.ch/shade/internal/core/domain"
	"go.trai.ch/shade/internal/core/ports"
)

var _ ports.Generator = (*Generator)(nil)

const texCoordMask = domain.ComponentMask(1<<domain.MaxTexCoords-1) * domain.ComponentTex0

// interpolants are the attributes forwarded from the vertex stage to later stages.
const interpolants = domain.ComponentColor0 | domain.ComponentColor1 | texCoordMask

// Generator is the reference ports.Generator. It is stateless and safe for concurrent use.
type Generator struct{}

// New creates a Generator.
func New() *Generator {
	return &Generator{}
}

// UID implements ports.Generator.
func (g *Generator) UID(stage domain.Stage, state domain.RenderState) domain.UID {
	switch stage {
	case domain.StageVertex:
		return vertexUID(state)
	case domain.StageGeometry:
		return geometryUID(state)
	default:
		return pixelUID(state)
	}
}

// Source implements ports.Generator.
func (g *Generator) Source(stage domain.Stage, state domain.RenderState) string {
	return Emit(g.UID(stage, state))
}

// Emit returns the WGSL program of uid.
func Emit(uid domain.UID) string {
	switch uid.Stage {
	case domain.StageVertex:
		return emitVertex(uid)
	case domain.StageGeometry:
		return emitGeometry(uid)
	default:
		return emitPixel(uid)
	}
}

func vertexUID(state domain.RenderState) domain.UID {
	u := domain.UID{Stage: domain.StageVertex, Components: state.Components}
	if state.Stereo {
		u.Flags |= domain.FlagStereo
	}
	return u
}

func geometryUID(state domain.RenderState) domain.UID {
	u := domain.UID{Stage: domain.StageGeometry, Topology: state.Topology}
	if state.Stereo {
		u.Flags |= domain.FlagStereo
	}
	if state.Wireframe && state.Topology == domain.TopologyTriangles {
		u.Flags |= domain.FlagWireframe
	}
	if u.IsPassthrough() {
		return u
	}

	u.Components = state.Components & interpolants
	if state.Topology == domain.TopologyPoints {
		u.Fixed[1] = uint32(state.PointSize)
	} else {
		u.Fixed[0] = uint32(state.LineWidth)
	}
	return u
}

func pixelUID(state domain.RenderState) domain.UID {
	u := domain.UID{
		Stage:      domain.StagePixel,
		Components: state.Components & interpolants,
		AlphaMode:  state.AlphaMode,
	}
	u.Fixed[0] = uint32(state.AlphaTest)
	if usesAlphaRef(state.AlphaTest) {
		u.Fixed[1] = uint32(state.AlphaRef)
	}
	if state.Fog != domain.FogNone {
		u.Flags |= domain.FlagPerPixelFog
		u.Fixed[2] = uint32(state.Fog)
	}
	return u
}

func usesAlphaRef(t domain.AlphaTest) bool {
	return t == domain.AlphaTestLess || t == domain.AlphaTestGreaterEqual
}

// float formats v as a WGSL f32 literal.
func float(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

// sixteenths converts a fixed-point pixel size into a half extent.
func sixteenths(v uint32) float64 {
	return float64(v) / 32
}

type program struct {
	b strings.Builder
}

func (p *program) line(format string, args ...any) {
	fmt.Fprintf(&p.b, format, args...)
	p.b.WriteByte('\n')
}

func (p *program) signature(attr, ret string, params []string) {
	p.line("%s", attr)
	if len(params) == 0 {
		p.line("fn main() -> %s {", ret)
		return
	}
	p.line("fn main(")
	for _, param := range params {
		p.line("    %s,", param)
	}
	p.line(") -> %s {", ret)
}

// interpolantFields lists the interpolated attributes of m as name, type pairs in location order.
func interpolantFields(m domain.ComponentMask) [][2]string {
	var fields [][2]string
	if m.Has(domain.ComponentColor0) {
		fields = append(fields, [2]string{"color0", "vec4<f32>"})
	}
	if m.Has(domain.ComponentColor1) {
		fields = append(fields, [2]string{"color1", "vec4<f32>"})
	}
	for i := range domain.MaxTexCoords {
		if m.Has(domain.TexCoord(i)) {
			fields = append(fields, [2]string{"tex" + strconv.Itoa(i), "vec2<f32>"})
		}
	}
	return fields
}

// interpolantLocation returns the fixed location of an interpolated attribute.
func interpolantLocation(name string) int {
	switch name {
	case "color0":
		return 0
	case "color1":
		return 1
	default:
		i, _ := strconv.Atoi(strings.TrimPrefix(name, "tex"))
		return 2 + i
	}
}

func (p *program) outputStruct(name string, m domain.ComponentMask) {
	p.line("struct %s {", name)
	p.line("    @builtin(position) position: vec4<f32>,")
	for _, f := range interpolantFields(m) {
		p.line("    @location(%d) %s: %s,", interpolantLocation(f[0]), f[0], f[1])
	}
	p.line("}")
	p.line("")
}

func emitVertex(u domain.UID) string {
	var p program
	m := u.Components
	out := m & interpolants

	p.line("// shade vertex program")
	p.line("")
	p.outputStruct("VertexOutput", out)

	var params []string
	if m.Has(domain.ComponentPosition) {
		params = append(params, "@location(0) position: vec3<f32>")
	} else {
		params = append(params, "@builtin(vertex_index) idx: u32")
	}
	if m.Has(domain.ComponentNormal) {
		params = append(params, "@location(1) normal: vec3<f32>")
	}
	for _, f := range interpolantFields(out) {
		params = append(params, fmt.Sprintf("@location(%d) %s: %s", 2+interpolantLocation(f[0]), f[0], f[1]))
	}
	p.signature("@vertex", "VertexOutput", params)

	p.line("    var out: VertexOutput;")
	switch {
	case !m.Has(domain.ComponentPosition):
		p.line("    out.position = vec4<f32>(0.0, 0.0, 0.0, 1.0);")
	case u.Flags&domain.FlagStereo != 0:
		p.line("    out.position = vec4<f32>(position.x * 0.5, position.y, position.z, 1.0);")
	default:
		p.line("    out.position = vec4<f32>(position.x, position.y, position.z, 1.0);")
	}
	for _, f := range interpolantFields(out) {
		if f[0] == "color0" && m.Has(domain.ComponentNormal) {
			p.line("    let lit = max(dot(normalize(normal), vec3<f32>(0.0, 0.0, 1.0)), 0.0);")
			p.line("    out.color0 = lit * color0;")
			continue
		}
		p.line("    out.%s = %s;", f[0], f[0])
	}
	p.line("    return out;")
	p.line("}")
	return p.b.String()
}

func emitGeometry(u domain.UID) string {
	var p program
	if u.IsPassthrough() {
		p.line("// shade geometry program (passthrough)")
		return p.b.String()
	}

	p.line("// shade geometry program")
	p.line("")
	points := u.Topology == domain.TopologyPoints
	if points {
		p.line("const half_size: f32 = %s;", float(sixteenths(u.Fixed[1])))
	} else {
		p.line("const half_width: f32 = %s;", float(sixteenths(u.Fixed[0])))
	}
	p.line("")
	p.outputStruct("GeometryOutput", u.Components)

	params := []string{
		"@builtin(vertex_index) idx: u32",
		"@location(0) center: vec4<f32>",
	}
	for _, f := range interpolantFields(u.Components) {
		params = append(params, fmt.Sprintf("@location(%d) %s: %s", 1+interpolantLocation(f[0]), f[0], f[1]))
	}
	p.signature("@vertex", "GeometryOutput", params)

	p.line("    var out: GeometryOutput;")
	p.line("    let corner = f32(idx %% 4u);")
	if points {
		p.line("    let offset = (corner - 1.5) * half_size;")
		p.line("    out.position = vec4<f32>(center.x + offset, center.y + offset, center.z, center.w);")
	} else {
		p.line("    let offset = (corner - 1.5) * half_width;")
		p.line("    out.position = vec4<f32>(center.x, center.y + offset, center.z, center.w);")
	}
	if u.Flags&domain.FlagStereo != 0 {
		p.line("    out.position = vec4<f32>(out.position.x * 0.5, out.position.y, out.position.z, out.position.w);")
	}
	for _, f := range interpolantFields(u.Components) {
		p.line("    out.%s = %s;", f[0], f[0])
	}
	p.line("    return out;")
	p.line("}")
	return p.b.String()
}

func emitPixel(u domain.UID) string {
	var p program
	test := domain.AlphaTest(u.Fixed[0])
	fog := domain.FogMode(u.Fixed[2])
	dual := u.AlphaMode == domain.AlphaModeDualSource

	p.line("// shade pixel program")
	p.line("")
	consts := false
	if usesAlphaRef(test) {
		p.line("const alpha_ref: f32 = %s;", float(float64(u.Fixed[1])/255))
		consts = true
	}
	switch fog {
	case domain.FogLinear:
		p.line("const fog_start: f32 = 0.1000;")
		p.line("const fog_end: f32 = 1.0000;")
		consts = true
	case domain.FogExp:
		p.line("const fog_density: f32 = 2.0000;")
		consts = true
	}
	if consts {
		p.line("")
	}
	if dual {
		p.line("struct PixelOutput {")
		p.line("    @location(0) color: vec4<f32>,")
		p.line("    @location(1) alpha: vec4<f32>,")
		p.line("}")
		p.line("")
	}

	var params []string
	if fog != domain.FogNone {
		params = append(params, "@builtin(position) frag: vec4<f32>")
	}
	fields := interpolantFields(u.Components)
	for _, f := range fields {
		params = append(params, fmt.Sprintf("@location(%d) %s: %s", interpolantLocation(f[0]), f[0], f[1]))
	}
	ret := "@location(0) vec4<f32>"
	if dual {
		ret = "PixelOutput"
	}
	p.signature("@fragment", ret, params)

	p.line("    var c = vec4<f32>(1.0, 1.0, 1.0, 1.0);")
	for _, f := range fields {
		switch f[0] {
		case "color0":
			p.line("    c = c * color0;")
		case "color1":
			p.line("    c = vec4<f32>(c.x + color1.x, c.y + color1.y, c.z + color1.z, c.w);")
		default:
			p.line("    c = c * vec4<f32>(%s.x, %s.y, 1.0, 1.0);", f[0], f[0])
		}
	}

	switch fog {
	case domain.FogLinear:
		p.line("    let fog = clamp((fog_end - frag.z) / (fog_end - fog_start), 0.0, 1.0);")
	case domain.FogExp:
		p.line("    let fog = clamp(exp((0.0 - frag.z) * fog_density), 0.0, 1.0);")
	}
	if fog != domain.FogNone {
		p.line("    c = vec4<f32>(c.x * fog + 0.5 * (1.0 - fog), c.y * fog + 0.5 * (1.0 - fog), c.z * fog + 0.5 * (1.0 - fog), c.w);")
	}

	switch test {
	case domain.AlphaTestNever:
		p.line("    if c.w > -1.0 {")
	case domain.AlphaTestLess:
		p.line("    if c.w >= alpha_ref {")
	case domain.AlphaTestGreaterEqual:
		p.line("    if c.w < alpha_ref {")
	}
	if test != domain.AlphaTestAlways {
		p.line("        discard;")
		p.line("    }")
	}

	switch u.AlphaMode {
	case domain.AlphaModeConstant:
		p.line("    c = vec4<f32>(c.x, c.y, c.z, 1.0);")
	case domain.AlphaModeDualSource:
		p.line("    var out: PixelOutput;")
		p.line("    out.color = vec4<f32>(c.x, c.y, c.z, 1.0);")
		p.line("    out.alpha = vec4<f32>(c.w, c.w, c.w, c.w);")
		p.line("    return out;")
		p.line("}")
		return p.b.String()
	}
	p.line("    return c;")
	p.line("}")
	return p.b.String()
}
