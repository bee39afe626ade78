package ports

import "go.trai.ch/shade/internal/core/domain"

// Dumper writes diagnostic side files for postmortem inspection.
//
//go:generate mockgen -source=dumper.go -destination=mocks/mock_dumper.go -package=mocks
type Dumper interface {
	// DumpFailure records the program text that failed to compile followed by the backend
	// diagnostic, and returns the path written.
	DumpFailure(stage domain.Stage, source string, diag error) (string, error)

	// DumpCollision records two program texts that share a UID, and returns the path written.
	DumpCollision(stage domain.Stage, uid domain.UID, first, second string) (string, error)
}
