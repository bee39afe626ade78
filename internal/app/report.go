package app

import (
	"time"

	"go.trai.ch/shade/internal/core/domain"
)

// Report summarizes a warm or play run.
type Report struct {
	// Frames is the number of render states processed.
	Frames int
	// Drawn counts frames whose active artifacts were all ready after TestShaders.
	Drawn int
	// Skipped counts frames that would have been dropped.
	Skipped int
	// PipelineChanges counts frames whose active artifact set changed.
	PipelineChanges int
	Stats           domain.Stats
	Elapsed         time.Duration
}

// Failed returns the number of failed compile jobs across all stages.
func (r Report) Failed() int64 {
	var n int64
	for _, st := range r.Stats.Stages {
		n += st.Failed
	}
	return n
}

// Created returns the number of artifacts compiled during the run across all stages.
func (r Report) Created() int64 {
	var n int64
	for _, st := range r.Stats.Stages {
		n += st.Created
	}
	return n
}
