package ports

import "go.trai.ch/shade/internal/core/domain"

// Generator derives structural keys and program text from live render state.
//
//go:generate mockgen -source=generator.go -destination=mocks/mock_generator.go -package=mocks
type Generator interface {
	// UID returns the structural key of stage under state.
	// The same logical configuration must always produce an identical UID.
	UID(stage domain.Stage, state domain.RenderState) domain.UID

	// Source returns the program text of stage under state.
	Source(stage domain.Stage, state domain.RenderState) string
}
