package analyzer

import (
	"fmt"
	"sort"
	"strings"

	"zshtrace-mcp/internal/zshtrace"
)

// Hotspot represents a call site that consumed significant time across the
// whole trace run.
type Hotspot struct {
	Name       string
	File       string
	Line       int
	TotalTime  float64 // Sum of all executions' durations at this call site
	CallCount  int     // Number of executions recorded at this call site
	Percentage float64 // Percentage of the run's wall time
	FrameID    int     // Index into the timeline's frame list
}

// SpanRef is one execution of a call site, with enough context to report it.
type SpanRef struct {
	Name     string
	File     string
	Line     int
	Code     string
	Duration float64
	FrameID  int
}

// FindHotspots identifies the call sites with the largest accumulated
// duration. Percentages are relative to the run's wall time (endValue -
// startValue); a call's duration includes its callees, so percentages can
// sum past 100.
// Returns hotspots sorted by total time (descending), truncated to topN.
func FindHotspots(tl *zshtrace.Timeline, topN int) []Hotspot {
	wallTime := tl.EndValue - tl.StartValue

	hotspots := make([]Hotspot, 0, len(tl.Frames))
	for id, frame := range tl.Frames {
		total := 0.0
		for _, span := range frame.ExecutedCode {
			total += span.Duration
		}

		hs := Hotspot{
			Name:      frame.Name,
			File:      frame.File,
			Line:      frame.Line,
			TotalTime: total,
			CallCount: len(frame.ExecutedCode),
			FrameID:   id,
		}
		if wallTime > 0 {
			hs.Percentage = (total / wallTime) * 100.0
		}
		hotspots = append(hotspots, hs)
	}

	// Sort by total time (descending)
	sort.Slice(hotspots, func(i, j int) bool {
		return hotspots[i].TotalTime > hotspots[j].TotalTime
	})

	if topN > 0 && topN < len(hotspots) {
		return hotspots[:topN]
	}
	return hotspots
}

// SlowestSpans returns the individual executions with the longest durations
// across all call sites. Useful for finding the single statement that
// stalled a shell startup.
func SlowestSpans(tl *zshtrace.Timeline, topN int) []SpanRef {
	spans := []SpanRef{}
	for id, frame := range tl.Frames {
		for _, span := range frame.ExecutedCode {
			spans = append(spans, SpanRef{
				Name:     frame.Name,
				File:     frame.File,
				Line:     frame.Line,
				Code:     span.Code,
				Duration: span.Duration,
				FrameID:  id,
			})
		}
	}

	sort.Slice(spans, func(i, j int) bool {
		return spans[i].Duration > spans[j].Duration
	})

	if topN > 0 && topN < len(spans) {
		return spans[:topN]
	}
	return spans
}

// FormatHotspot returns a human-readable string representation of a hotspot
func FormatHotspot(hs Hotspot, rank int) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("#%d: %s\n", rank, hs.Name))
	sb.WriteString(fmt.Sprintf("    Time: %.6f seconds (%.2f%%)\n", hs.TotalTime, hs.Percentage))
	sb.WriteString(fmt.Sprintf("    Calls: %d\n", hs.CallCount))

	if hs.File != "" {
		sb.WriteString(fmt.Sprintf("    Source: %s:%d\n", hs.File, hs.Line))
	}

	return sb.String()
}
