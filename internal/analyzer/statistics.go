package analyzer

import (
	"zshtrace-mcp/internal/zshtrace"
)

// TraceStatistics contains comprehensive statistics about a reconstructed
// trace timeline.
type TraceStatistics struct {
	TotalCalls        int     // One per record: every call that was opened
	TotalEvents       int     // Opens plus closes, always 2x TotalCalls
	TotalFrames       int     // Distinct (name, line) call sites
	WallTime          float64 // endValue - startValue
	MaxStackDepth     int
	AverageStackDepth float64 // Mean nesting depth across all opens
	UniqueFiles       int
}

// ComputeStatistics calculates comprehensive statistics for a timeline.
// Stack depth is recovered by replaying the event stream: depth rises on
// every open and falls on every close, so the replay never goes negative
// on a well-formed timeline.
func ComputeStatistics(tl *zshtrace.Timeline) TraceStatistics {
	stats := TraceStatistics{
		TotalEvents: len(tl.Events),
		TotalFrames: len(tl.Frames),
		WallTime:    tl.EndValue - tl.StartValue,
	}

	depth := 0
	totalDepth := 0
	for _, ev := range tl.Events {
		switch ev.Type {
		case zshtrace.EventOpen:
			depth++
			stats.TotalCalls++
			totalDepth += depth
			if depth > stats.MaxStackDepth {
				stats.MaxStackDepth = depth
			}
		case zshtrace.EventClose:
			depth--
		}
	}
	if stats.TotalCalls > 0 {
		stats.AverageStackDepth = float64(totalDepth) / float64(stats.TotalCalls)
	}

	fileSet := make(map[string]bool)
	for _, frame := range tl.Frames {
		if frame.File != "" {
			fileSet[frame.File] = true
		}
	}
	stats.UniqueFiles = len(fileSet)

	return stats
}
