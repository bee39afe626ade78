package domain

import (
	"strings"

	"go.trai.ch/zerr"
)

// CompileFlags are backend-independent compilation switches.
type CompileFlags uint32

const (
	// FlagSkipValidation skips IR validation before code generation.
	FlagSkipValidation CompileFlags = 1 << iota
	// FlagOptimize requests the highest optimization level the backend offers.
	FlagOptimize
	// FlagDebugInfo embeds debug names in the artifact.
	FlagDebugInfo
	// FlagBackwardsCompat enables legacy-syntax compatibility.
	FlagBackwardsCompat
)

var compileFlagNames = []struct {
	flag CompileFlags
	name string
}{
	{FlagSkipValidation, "skip_validation"},
	{FlagOptimize, "optimize"},
	{FlagDebugInfo, "debug_info"},
	{FlagBackwardsCompat, "backwards_compat"},
}

// Has reports whether flag is set.
func (f CompileFlags) Has(flag CompileFlags) bool {
	return f&flag == flag
}

// String returns the flag names joined with '|'.
func (f CompileFlags) String() string {
	var parts []string
	for _, n := range compileFlagNames {
		if f.Has(n.flag) {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}

// ParseCompileFlags converts flag names into a flag set.
func ParseCompileFlags(names []string) (CompileFlags, error) {
	var flags CompileFlags
	for _, name := range names {
		found := false
		for _, n := range compileFlagNames {
			if strings.EqualFold(name, n.name) {
				flags |= n.flag
				found = true
				break
			}
		}
		if !found {
			return 0, zerr.With(ErrInvalidConfig, "compile_flag", name)
		}
	}
	return flags, nil
}

// Profile describes how a stage's programs are compiled.
type Profile struct {
	// Target names the backend output, for example "spv_1_3" or "hlsl_5_1".
	Target     string
	EntryPoint string
	Flags      CompileFlags
}

// DefaultEntryPoint is the entry point name emitted by generators.
const DefaultEntryPoint = "main"

// DefaultTarget is the compile target used when none is configured.
const DefaultTarget = "spv_1_3"

// DefaultProfile returns the compile profile used for stage when none is configured.
func DefaultProfile(stage Stage) Profile {
	flags := FlagSkipValidation | FlagOptimize
	if stage == StageVertex {
		flags |= FlagBackwardsCompat
	}
	return Profile{
		Target:     DefaultTarget,
		EntryPoint: DefaultEntryPoint,
		Flags:      flags,
	}
}
