// Package speedscope models the speedscope JSON file format, evented
// flavor. See https://github.com/jlfwong/speedscope/blob/main/src/lib/file-format-spec.ts
package speedscope

import (
	"zshtrace-mcp/internal/zshtrace"
)

const (
	schema = "https://www.speedscope.app/file-format-schema.json"

	displayName = "Zsh Trace Flamegraph"
	exporter    = "zsh-trace-to-flamegraph"

	profileEvented = "evented"
	unitSeconds    = "seconds"
)

// File is a complete speedscope document.
type File struct {
	Schema             string    `json:"$schema"`
	Name               string    `json:"name"`
	Exporter           string    `json:"exporter"`
	Shared             Shared    `json:"shared"`
	Profiles           []Profile `json:"profiles"`
	ActiveProfileIndex int       `json:"activeProfileIndex"`
}

type Shared struct {
	Frames []Frame `json:"frames"`
}

type Frame struct {
	Name         string     `json:"name"`
	File         string     `json:"file"`
	Line         int        `json:"line"`
	ExecutedCode []CodeSpan `json:"executedCode"`
}

type CodeSpan struct {
	Code     string  `json:"code"`
	Duration float64 `json:"duration"`
}

type Profile struct {
	Type       string  `json:"type"`
	Name       string  `json:"name"`
	Unit       string  `json:"unit"`
	StartValue float64 `json:"startValue"`
	EndValue   float64 `json:"endValue"`
	Events     []Event `json:"events"`
}

type Event struct {
	Type  string  `json:"type"`
	At    float64 `json:"at"`
	Frame int     `json:"frame"`
}

// Build assembles the speedscope document for a reconstructed timeline.
// profileName labels the single evented profile; the original input path
// is the conventional value. Empty timelines produce empty arrays, not
// nulls, so the document stays schema-valid.
func Build(profileName string, tl *zshtrace.Timeline) *File {
	frames := make([]Frame, 0, len(tl.Frames))
	for _, f := range tl.Frames {
		spans := make([]CodeSpan, 0, len(f.ExecutedCode))
		for _, span := range f.ExecutedCode {
			spans = append(spans, CodeSpan{Code: span.Code, Duration: span.Duration})
		}
		frames = append(frames, Frame{
			Name:         f.Name,
			File:         f.File,
			Line:         f.Line,
			ExecutedCode: spans,
		})
	}

	events := make([]Event, 0, len(tl.Events))
	for _, ev := range tl.Events {
		events = append(events, Event{Type: ev.Type, At: ev.At, Frame: ev.Frame})
	}

	return &File{
		Schema:   schema,
		Name:     displayName,
		Exporter: exporter,
		Shared:   Shared{Frames: frames},
		Profiles: []Profile{{
			Type:       profileEvented,
			Name:       profileName,
			Unit:       unitSeconds,
			StartValue: tl.StartValue,
			EndValue:   tl.EndValue,
			Events:     events,
		}},
		ActiveProfileIndex: 0,
	}
}
