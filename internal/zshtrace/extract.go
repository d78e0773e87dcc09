package zshtrace

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// marker is the lead-in token the instrumented prompt emits before every
// trace segment. A marker immediately followed by markerEscape is literal
// text inside a code payload, not a segment boundary.
const (
	marker       = "+0mZ|"
	markerEscape = '%'
)

// segmentPattern matches one bounded candidate segment:
// marker, level, timestamp, name, file, line, "> ", code to end of candidate.
var segmentPattern = regexp.MustCompile(`^\+0mZ\|(\d+)\|([\d.]+)\|([^|]+)\|([^|]+)\|(\d+)>\s(.*)$`)

// maxLineSize bounds the scanner buffer; xtrace lines with inlined function
// bodies routinely blow past bufio's 64 KiB default.
const maxLineSize = 1 << 20

// ExtractRecords scans one line of raw log text and returns every trace
// record bundled on it. Lines with no recognizable segment yield nil;
// unparseable candidates are dropped silently. Extraction never fails.
func ExtractRecords(line string) []Record {
	bounds := segmentBounds(line)
	if len(bounds) == 0 {
		return nil
	}

	var records []Record
	for i, start := range bounds {
		end := len(line)
		if i+1 < len(bounds) {
			end = bounds[i+1]
		}
		if rec, ok := parseSegment(line[start:end]); ok {
			records = append(records, rec)
		}
	}
	return records
}

// segmentBounds returns the offsets of every genuine segment boundary: a
// marker occurrence followed by at least one character that is not the
// escape. A marker at end of line belongs to the preceding code payload.
func segmentBounds(line string) []int {
	var bounds []int
	for off := 0; ; {
		i := strings.Index(line[off:], marker)
		if i < 0 {
			break
		}
		pos := off + i
		next := pos + len(marker)
		if next < len(line) && line[next] != markerEscape {
			bounds = append(bounds, pos)
		}
		off = next
	}
	return bounds
}

// parseSegment extracts the structured fields from one bounded candidate.
// The pattern's character classes guarantee the numeric conversions succeed,
// but a failure still just drops the segment.
func parseSegment(segment string) (Record, bool) {
	m := segmentPattern.FindStringSubmatch(segment)
	if m == nil {
		return Record{}, false
	}

	level, err := strconv.Atoi(m[1])
	if err != nil {
		return Record{}, false
	}
	timestamp, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return Record{}, false
	}
	lineNum, err := strconv.Atoi(m[5])
	if err != nil {
		return Record{}, false
	}

	return Record{
		Level:     level,
		Timestamp: timestamp,
		Name:      strings.TrimSpace(m[3]),
		File:      strings.TrimSpace(m[4]),
		Line:      lineNum,
		Code:      strings.TrimSpace(m[6]),
	}, true
}

// ReadTraceFile reads a trace log and returns all records in file order.
// Files ending in .gz are decompressed transparently. Invalid UTF-8 is
// stripped rather than treated as an error, since xtrace output can carry
// arbitrary bytes from the traced commands.
func ReadTraceFile(filePath string) ([]Record, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace file: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(filePath, ".gz") {
		zr, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("failed to read gzip trace file %s: %w", filePath, err)
		}
		defer zr.Close()
		r = zr
	}

	return readRecords(r)
}

func readRecords(r io.Reader) ([]Record, error) {
	var records []Record

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		line := strings.ToValidUTF8(scanner.Text(), "")
		records = append(records, ExtractRecords(strings.TrimSpace(line))...)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read trace log: %w", err)
	}

	return records, nil
}
