package delta

import "github.com/codalotl/treediff/internal/textdiff"

// Iterator is a pull-based cursor over a DiffList: files, then hunks within
// the current file, then lines within the current hunk. It holds a non-owning
// reference to the list and all position state itself, so multiple iterators
// over one list coexist; the only shared write is the list's idempotent
// per-record hunk memoization.
//
// Text comparison for a file is forced by the first hunk- or line-level
// operation on it; NextFile and Progress never force it.
type Iterator struct {
	list *DiffList

	fileIdx int    // index of the next file NextFile will return
	cur     *Delta // file most recently returned by NextFile

	hunks      []textdiff.Hunk
	hunksReady bool
	hunkIdx    int // index of the next hunk NextHunk will return
	lineIdx    int // index of the next line within the current hunk
}

// NewIterator returns a cursor positioned before the first record.
func NewIterator(l *DiffList) *Iterator {
	return &Iterator{list: l}
}

// NextFile returns the next record and advances. It returns ErrIterOver once
// past the last record. It never computes hunks.
func (it *Iterator) NextFile() (*Delta, error) {
	if it.fileIdx >= len(it.list.deltas) {
		it.cur = nil
		return nil, ErrIterOver
	}
	it.cur = it.list.deltas[it.fileIdx]
	it.fileIdx++
	it.hunks = nil
	it.hunksReady = false
	it.hunkIdx = 0
	it.lineIdx = 0
	return it.cur, nil
}

// ensureHunks forces the one-time text comparison for the current file.
func (it *Iterator) ensureHunks() error {
	if it.cur == nil {
		// Either no NextFile call yet, or the cursor is exhausted.
		return ErrUsage
	}
	if it.hunksReady {
		return nil
	}
	hunks, err := it.list.hunksFor(it.cur)
	if err != nil {
		return err
	}
	it.hunks = hunks
	it.hunksReady = true
	return nil
}

// NumHunksInFile returns the hunk count of the current file, forcing the text
// comparison on first call for that file.
func (it *Iterator) NumHunksInFile() (int, error) {
	if err := it.ensureHunks(); err != nil {
		return 0, err
	}
	return len(it.hunks), nil
}

// NextHunk returns the next hunk of the current file, or ErrIterOver when the
// file's hunks are exhausted. The first call for a file forces the text
// comparison.
func (it *Iterator) NextHunk() (*textdiff.Hunk, error) {
	if err := it.ensureHunks(); err != nil {
		return nil, err
	}
	if it.hunkIdx >= len(it.hunks) {
		return nil, ErrIterOver
	}
	h := &it.hunks[it.hunkIdx]
	it.hunkIdx++
	it.lineIdx = 0
	return h, nil
}

// NumLinesInHunk returns the line count of the current hunk (context,
// additions, and deletions together).
func (it *Iterator) NumLinesInHunk() (int, error) {
	h, err := it.currentHunk()
	if err != nil {
		return 0, err
	}
	return len(h.Lines), nil
}

// NextLine returns the next line of the current hunk, or ErrIterOver when the
// hunk's lines are exhausted.
func (it *Iterator) NextLine() (*textdiff.Line, error) {
	h, err := it.currentHunk()
	if err != nil {
		return nil, err
	}
	if it.lineIdx >= len(h.Lines) {
		return nil, ErrIterOver
	}
	line := &h.Lines[it.lineIdx]
	it.lineIdx++
	return line, nil
}

func (it *Iterator) currentHunk() (*textdiff.Hunk, error) {
	if err := it.ensureHunks(); err != nil {
		return nil, err
	}
	if it.hunkIdx == 0 {
		// No hunk selected yet for this file.
		return nil, ErrUsage
	}
	return &it.hunks[it.hunkIdx-1], nil
}

// Progress returns the fraction of files already returned, in [0,1],
// monotonically non-decreasing and computable without forcing any text
// comparison.
func (it *Iterator) Progress() float64 {
	n := len(it.list.deltas)
	if n == 0 {
		return 1
	}
	return float64(it.fileIdx) / float64(n)
}
