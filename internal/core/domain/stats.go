package domain

// StageStats holds occupancy and activity counters of one stage cache.
type StageStats struct {
	// Alive is the number of entries in the store.
	Alive int
	// Created counts artifacts compiled during this run.
	Created int64
	// Replayed counts artifacts loaded from the persistent mirror.
	Replayed int64
	// Submitted counts compile jobs handed to the pipeline.
	Submitted int64
	// Failed counts compile jobs that produced no artifact.
	Failed int64
	// Collisions counts UIDs seen with more than one program text.
	Collisions int64
}

// Stats is a snapshot of all stage counters.
type Stats struct {
	Stages [StageCount]StageStats
}

// Stage returns the counters of s.
func (s Stats) Stage(stage Stage) StageStats {
	return s.Stages[stage]
}
