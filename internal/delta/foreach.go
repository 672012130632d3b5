package delta

import "github.com/codalotl/treediff/internal/textdiff"

// FileFunc is invoked once per record, with progress advancing monotonically
// to 1.0 on the last record. Returning a non-nil error aborts the traversal.
type FileFunc func(d *Delta, progress float64) error

// HunkFunc is invoked once per hunk, in hunk order, for records that required
// content comparison and are not binary.
type HunkFunc func(d *Delta, h *textdiff.Hunk) error

// LineFunc is invoked once per line within each hunk, in line order.
type LineFunc func(d *Delta, h *textdiff.Hunk, line *textdiff.Line) error

// Foreach walks every record in list order exactly once, invoking fileCB for
// each. When hunkCB or lineCB is non-nil, records requiring content
// comparison are text-diffed on the spot (memoized on the record) and their
// hunks and lines dispatched in order before the next file. Binary records
// never fire hunk or line callbacks.
//
// A callback returning a non-nil error stops the traversal immediately;
// Foreach then returns ErrAborted with the callback's error joined in.
// Collaborator failures (content unavailable) return as plain errors.
func (l *DiffList) Foreach(fileCB FileFunc, hunkCB HunkFunc, lineCB LineFunc) error {
	n := len(l.deltas)
	for i, d := range l.deltas {
		if fileCB != nil {
			if err := fileCB(d, float64(i+1)/float64(n)); err != nil {
				return abortError(err)
			}
		}

		if hunkCB == nil && lineCB == nil {
			continue
		}
		if !l.needsContent(d) {
			continue
		}

		hunks, err := l.hunksFor(d)
		if err != nil {
			return err
		}
		if binary, known := d.IsBinary(); known && binary {
			continue
		}

		for hi := range hunks {
			h := &hunks[hi]
			if hunkCB != nil {
				if err := hunkCB(d, h); err != nil {
					return abortError(err)
				}
			}
			if lineCB == nil {
				continue
			}
			for li := range h.Lines {
				if err := lineCB(d, h, &h.Lines[li]); err != nil {
					return abortError(err)
				}
			}
		}
	}
	return nil
}
