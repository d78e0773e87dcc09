package zshtrace

// frameKey identifies a call site. Two records sharing a key share a Frame.
type frameKey struct {
	name string
	line int
}

// callEntry is one live call on the reconstruction stack. pendingCode is
// the statement that opened the call; it becomes the frame's CodeSpan when
// the call closes.
type callEntry struct {
	level       int
	openedAt    float64
	frameID     int
	pendingCode string
}

// reconstructor rebuilds a nested call timeline from level-annotated
// records. All state is scoped to one BuildTimeline call.
type reconstructor struct {
	timeline Timeline
	frameIDs map[frameKey]int
	stack    []callEntry
}

// BuildTimeline consumes chronologically ordered records and reconstructs
// the open/close event timeline and the deduplicated frame list. Call
// boundaries are inferred purely from level transitions: a record whose
// level is less than or equal to the top of the stack terminates the calls
// above it, including same-level siblings. Calls still open after the last
// record are force-closed at the last record's timestamp.
func BuildTimeline(records []Record) *Timeline {
	rc := &reconstructor{
		timeline: Timeline{
			Frames: make([]*Frame, 0),
			Events: make([]Event, 0),
		},
		frameIDs: make(map[frameKey]int),
	}

	for _, rec := range records {
		rc.step(rec)
	}
	rc.finish()

	tl := &rc.timeline
	if n := len(tl.Events); n > 0 {
		tl.StartValue = tl.Events[0].At
		tl.EndValue = tl.Events[n-1].At
	}
	return tl
}

func (rc *reconstructor) step(rec Record) {
	frameID := rc.resolveFrame(rec)

	// The record's level being equal to or shallower than the top of the
	// stack means every call at that depth and deeper has concluded. The
	// inclusive comparison is what closes a same-level sibling and unwinds
	// multi-step depth drops in one pass.
	for len(rc.stack) > 0 && rc.stack[len(rc.stack)-1].level >= rec.Level {
		rc.closeTop(rec.Timestamp)
	}

	rc.timeline.Events = append(rc.timeline.Events, Event{Type: EventOpen, At: rec.Timestamp, Frame: frameID})
	rc.stack = append(rc.stack, callEntry{
		level:       rec.Level,
		openedAt:    rec.Timestamp,
		frameID:     frameID,
		pendingCode: rec.Code,
	})
}

// resolveFrame returns the frame id for the record's call site, registering
// a new frame on first sight. First-seen order determines frame ids, which
// double as indices into the timeline's frame list.
func (rc *reconstructor) resolveFrame(rec Record) int {
	key := frameKey{name: rec.Name, line: rec.Line}
	if id, ok := rc.frameIDs[key]; ok {
		return id
	}

	id := len(rc.timeline.Frames)
	rc.frameIDs[key] = id
	rc.timeline.Frames = append(rc.timeline.Frames, &Frame{
		Name:         rec.Name,
		File:         rec.File,
		Line:         rec.Line,
		ExecutedCode: make([]CodeSpan, 0),
	})
	return id
}

// closeTop pops the innermost live call, crediting its frame with the
// pending code span and emitting the close event at the given timestamp.
func (rc *reconstructor) closeTop(at float64) {
	top := rc.stack[len(rc.stack)-1]
	rc.stack = rc.stack[:len(rc.stack)-1]

	frame := rc.timeline.Frames[top.frameID]
	frame.ExecutedCode = append(frame.ExecutedCode, CodeSpan{
		Code:     top.pendingCode,
		Duration: at - top.openedAt,
	})
	rc.timeline.Events = append(rc.timeline.Events, Event{Type: EventClose, At: at, Frame: top.frameID})
}

// finish force-closes everything still open at end of input. The top entry
// holds the last record's timestamp, and every remaining entry closes at
// that one time, innermost first.
func (rc *reconstructor) finish() {
	var final float64
	if len(rc.stack) > 0 {
		final = rc.stack[len(rc.stack)-1].openedAt
	}
	for len(rc.stack) > 0 {
		rc.closeTop(final)
	}
}
