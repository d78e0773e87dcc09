package speedscope

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"zshtrace-mcp/internal/zshtrace"
)

func sampleTimeline() *zshtrace.Timeline {
	records := []zshtrace.Record{
		{Level: 0, Timestamp: 1.0, Name: "f", File: "a.zsh", Line: 5, Code: "echo hi"},
		{Level: 0, Timestamp: 2.0, Name: "g", File: "a.zsh", Line: 6, Code: "echo bye"},
	}
	return zshtrace.BuildTimeline(records)
}

func TestBuild(t *testing.T) {
	f := Build("startup.log", sampleTimeline())

	if f.Schema != "https://www.speedscope.app/file-format-schema.json" {
		t.Errorf("schema = %q", f.Schema)
	}
	if f.Name != "Zsh Trace Flamegraph" || f.Exporter != "zsh-trace-to-flamegraph" {
		t.Errorf("name/exporter = %q/%q", f.Name, f.Exporter)
	}
	if f.ActiveProfileIndex != 0 {
		t.Errorf("activeProfileIndex = %d", f.ActiveProfileIndex)
	}
	if len(f.Profiles) != 1 {
		t.Fatalf("expected 1 profile, got %d", len(f.Profiles))
	}

	p := f.Profiles[0]
	if p.Type != "evented" || p.Unit != "seconds" || p.Name != "startup.log" {
		t.Errorf("profile = %+v", p)
	}
	if p.StartValue != 1.0 || p.EndValue != 2.0 {
		t.Errorf("start/end = %v/%v", p.StartValue, p.EndValue)
	}
	if len(p.Events) != 4 {
		t.Fatalf("expected 4 events, got %d", len(p.Events))
	}
	if p.Events[0] != (Event{Type: "O", At: 1.0, Frame: 0}) {
		t.Errorf("events[0] = %+v", p.Events[0])
	}

	if len(f.Shared.Frames) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(f.Shared.Frames))
	}
	fr := f.Shared.Frames[0]
	if fr.Name != "f" || fr.File != "a.zsh" || fr.Line != 5 {
		t.Errorf("frame = %+v", fr)
	}
	if len(fr.ExecutedCode) != 1 || fr.ExecutedCode[0] != (CodeSpan{Code: "echo hi", Duration: 1.0}) {
		t.Errorf("executedCode = %+v", fr.ExecutedCode)
	}
}

func TestBuild_EmptyTimelineMarshalsEmptyArrays(t *testing.T) {
	f := Build("empty.log", zshtrace.BuildTimeline(nil))

	data, err := json.Marshal(f)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		`"frames":[]`,
		`"events":[]`,
		`"startValue":0`,
		`"endValue":0`,
	} {
		if !bytes.Contains(data, []byte(want)) {
			t.Errorf("output missing %s: %s", want, data)
		}
	}
}

func TestBuild_JSONFieldNames(t *testing.T) {
	data, err := json.Marshal(Build("startup.log", sampleTimeline()))
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		`"$schema"`, `"exporter"`, `"shared"`, `"profiles"`,
		`"activeProfileIndex"`, `"executedCode"`, `"code"`, `"duration"`,
		`"type":"O"`, `"type":"C"`, `"at"`, `"frame"`, `"unit":"seconds"`,
	} {
		if !bytes.Contains(data, []byte(want)) {
			t.Errorf("output missing %s", want)
		}
	}
}

func TestOutputPath(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"startup.log", "startup.json"},
		{"/tmp/trace/startup.log", "/tmp/trace/startup.json"},
		{"startup.log.gz", "startup.json"},
		{"startup.trace.log", "startup.trace.json"},
		{"startup", "startup.json"},
	}
	for _, c := range cases {
		if got := OutputPath(c.in); got != c.want {
			t.Errorf("OutputPath(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestWriteFile_Deterministic(t *testing.T) {
	dir := t.TempDir()
	doc := Build("startup.log", sampleTimeline())

	first := filepath.Join(dir, "first.json")
	second := filepath.Join(dir, "second.json")
	if err := WriteFile(first, doc); err != nil {
		t.Fatal(err)
	}
	if err := WriteFile(second, doc); err != nil {
		t.Fatal(err)
	}

	a, err := os.ReadFile(first)
	if err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(second)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a, b) {
		t.Error("repeated writes produced different output")
	}

	var parsed File
	if err := json.Unmarshal(a, &parsed); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if !bytes.Contains(a, []byte("\n  ")) {
		t.Error("output is not indented")
	}
}
