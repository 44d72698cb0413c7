// Package concepts groups transcript chunks, asks the model for the key
// concepts in each group and stitches the answers into one ordered list.
package concepts

import (
	"errors"
	"fmt"

	"dynamocards-backend/internal/logger"
	"dynamocards-backend/internal/transcript"
)

const (
	// MaxChunksPerGroup is the largest group a single call may receive.
	MaxChunksPerGroup = 14
	// WarnChunksPerGroup is the largest group that does not log a warning.
	WarnChunksPerGroup = 10
	// autoSampleDivisor derives the group count from the chunk count.
	autoSampleDivisor = 10
)

// ErrInvalidArgument marks requests rejected before any model call.
var ErrInvalidArgument = errors.New("invalid argument")

// GroupPlan is the outcome of the grouping heuristic.
type GroupPlan struct {
	Chunks         int  `json:"chunks" bson:"chunks"`
	SampleSize     int  `json:"sample_size" bson:"sample_size"`
	ChunksPerGroup int  `json:"chunks_per_group" bson:"chunks_per_group"`
	GroupCount     int  `json:"group_count" bson:"group_count"`
	Derived        bool `json:"derived" bson:"derived"`
	Warn           bool `json:"warn" bson:"warn"`
}

// PlanGroups decides how n chunks are grouped. sampleSize is the target
// number of groups; nil means derive it as n/10, raised to 1 for transcripts
// shorter than ten chunks.
func PlanGroups(n int, sampleSize *int) (GroupPlan, error) {
	if n <= 0 {
		return GroupPlan{}, fmt.Errorf("%w: transcript produced no chunks", ErrInvalidArgument)
	}

	plan := GroupPlan{Chunks: n}
	if sampleSize == nil {
		plan.SampleSize = n / autoSampleDivisor
		if plan.SampleSize == 0 {
			plan.SampleSize = 1
		}
		plan.Derived = true
	} else {
		plan.SampleSize = *sampleSize
		if plan.SampleSize <= 0 {
			return GroupPlan{}, fmt.Errorf("%w: sample size must be positive, got %d", ErrInvalidArgument, plan.SampleSize)
		}
	}

	if plan.SampleSize > n {
		return GroupPlan{}, fmt.Errorf("%w: sample size %d is larger than the number of chunks (%d)", ErrInvalidArgument, plan.SampleSize, n)
	}

	plan.ChunksPerGroup = (n + plan.SampleSize - 1) / plan.SampleSize
	if plan.ChunksPerGroup > MaxChunksPerGroup {
		return GroupPlan{}, fmt.Errorf("%w: each group would hold %d chunks (max %d); increase the sample size",
			ErrInvalidArgument, plan.ChunksPerGroup, MaxChunksPerGroup)
	}
	plan.Warn = plan.ChunksPerGroup > WarnChunksPerGroup
	plan.GroupCount = (n + plan.ChunksPerGroup - 1) / plan.ChunksPerGroup

	if plan.Derived {
		logger.Info("no sample size given, derived from chunk count",
			"chunks", n, "sample_size", plan.SampleSize)
	}
	if plan.Warn {
		logger.Warn("groups exceed 10 chunks, output quality is likely to degrade; consider a larger sample size",
			"chunks_per_group", plan.ChunksPerGroup)
	}
	return plan, nil
}

// Partition splits chunks into contiguous groups of size; the last group may
// be shorter. The groups alias chunks.
func Partition(chunks []transcript.Chunk, size int) [][]transcript.Chunk {
	if size <= 0 {
		return nil
	}
	groups := make([][]transcript.Chunk, 0, (len(chunks)+size-1)/size)
	for start := 0; start < len(chunks); start += size {
		end := start + size
		if end > len(chunks) {
			end = len(chunks)
		}
		groups = append(groups, chunks[start:end:end])
	}
	return groups
}
