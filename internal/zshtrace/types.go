package zshtrace

// Record is a single trace record extracted from the instrumented log.
// Records are immutable once extracted; ordering is the orderer's job.
type Record struct {
	Level     int     // call-depth indicator reported by the instrumentation
	Timestamp float64 // seconds; monotonic intent, not guaranteed in raw order
	Name      string  // executing function/scope
	File      string  // source file path, display only
	Line      int     // source line within File
	Code      string  // raw source text of the executed statement
}

// CodeSpan is one execution of a call site: the statement text that opened
// the call and how long the call stayed open.
type CodeSpan struct {
	Code     string
	Duration float64
}

// Frame is a deduplicated call-site identity, keyed by (Name, Line).
// ExecutedCode accumulates one CodeSpan per execution, in close order.
type Frame struct {
	Name         string
	File         string
	Line         int
	ExecutedCode []CodeSpan
}

// Event types in the output timeline.
const (
	EventOpen  = "O"
	EventClose = "C"
)

// Event is one open or close transition in the reconstructed timeline.
// Frame indexes into Timeline.Frames.
type Event struct {
	Type  string
	At    float64
	Frame int
}

// Timeline is the reconstructed call-stack timeline for one trace run.
// Frames are in creation (first-seen) order; Events are in emission order,
// which is chronological by construction. StartValue and EndValue are the
// first and last event timestamps, zero when there are no events.
type Timeline struct {
	Frames     []*Frame
	Events     []Event
	StartValue float64
	EndValue   float64
}
