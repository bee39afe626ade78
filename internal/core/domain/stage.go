package domain

import "strings"

// Stage identifies one of the three programmable pipeline stages whose artifacts are cached.
type Stage uint8

const (
	// StageVertex is the vertex stage.
	StageVertex Stage = iota
	// StageGeometry is the geometry (primitive expansion) stage.
	StageGeometry
	// StagePixel is the pixel stage.
	StagePixel
)

// StageCount is the number of cached stages.
const StageCount = 3

// Stages lists every stage in resolution order.
var Stages = [StageCount]Stage{StageVertex, StageGeometry, StagePixel}

// String returns the human-readable stage name.
func (s Stage) String() string {
	switch s {
	case StageVertex:
		return "vertex"
	case StageGeometry:
		return "geometry"
	case StagePixel:
		return "pixel"
	default:
		return "unknown"
	}
}

// Short returns the two-letter stage abbreviation used in file names.
func (s Stage) Short() string {
	switch s {
	case StageVertex:
		return "vs"
	case StageGeometry:
		return "gs"
	case StagePixel:
		return "ps"
	default:
		return "xx"
	}
}

// Valid reports whether s is one of the known stages.
func (s Stage) Valid() bool {
	return s < StageCount
}

// ParseStage parses a stage from either its name or its abbreviation.
func ParseStage(v string) (Stage, bool) {
	for _, s := range Stages {
		if strings.EqualFold(v, s.String()) || strings.EqualFold(v, s.Short()) {
			return s, true
		}
	}
	return 0, false
}

// ExecutionContext distinguishes the two calling paths that resolve artifacts.
type ExecutionContext uint8

const (
	// ContextSubmission is the render path that immediately consumes resolved artifacts.
	ContextSubmission ExecutionContext = iota
	// ContextPreparation is the look-ahead path that resolves and compiles ahead of submission.
	ContextPreparation
)

// String returns the context name.
func (c ExecutionContext) String() string {
	if c == ContextSubmission {
		return "submission"
	}
	return "preparation"
}
