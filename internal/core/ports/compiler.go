// Package ports defines the core interfaces for the application.
package ports

import (
	"context"

	"go.trai.ch/shade/internal/core/domain"
)

// CompileRequest is the backend-facing part of a compile job.
type CompileRequest struct {
	Stage      domain.Stage
	Source     string
	Target     string
	EntryPoint string
	Flags      domain.CompileFlags
}

// Compiler turns generated program text into a backend artifact.
//
//go:generate mockgen -source=compiler.go -destination=mocks/mock_compiler.go -package=mocks
type Compiler interface {
	// Compile compiles req and returns the artifact bytes.
	//
	// A returned error carries the backend diagnostic; the caller records it and never retries.
	// Implementations must be safe for concurrent use.
	Compile(ctx context.Context, req CompileRequest) ([]byte, error)
}
