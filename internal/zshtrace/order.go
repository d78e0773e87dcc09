package zshtrace

import "sort"

// SortChronological sorts records by timestamp ascending, in place. The
// sort is stable: the instrumentation flushes buffered output in bursts
// that shuffle whole lines out of real-time order, but segments bundled on
// one line are already in logical order and must keep their relative
// position when timestamps tie.
func SortChronological(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp < records[j].Timestamp
	})
}
