package delta

import (
	"fmt"
	"strings"

	"github.com/codalotl/treediff/internal/textdiff"
)

// Origins synthesized by the formatters, complementing the content origins in
// package textdiff.
const (
	OriginFileHeader byte = 'F'
	OriginHunkHeader byte = 'H'
	OriginBinary     byte = 'B'
)

// PrintFunc receives each formatted line. The hunk is nil for file-header,
// binary-marker, and compact lines. Returning a non-nil error aborts the
// print, which then reports ErrAborted.
type PrintFunc func(d *Delta, h *textdiff.Hunk, line textdiff.Line) error

// PrintCompact emits one name-status line per record, like
// "M\tpath\n" (renames and copies show "old -> new"). No content is
// inspected.
func (l *DiffList) PrintCompact(print PrintFunc) error {
	return l.Foreach(func(d *Delta, _ float64) error {
		var text string
		switch d.Status {
		case Renamed, Copied:
			text = fmt.Sprintf("%c\t%s -> %s\n", d.Status.Code(), sidePath(d.Old), sidePath(d.New))
		default:
			text = fmt.Sprintf("%c\t%s\n", d.Status.Code(), d.Path())
		}
		return print(d, nil, textdiff.Line{Origin: OriginFileHeader, Content: text})
	}, nil, nil)
}

// PrintPatch emits a unified patch: per record a file header line, then per
// hunk its header line and content lines with their origin characters. Binary
// records emit a single binary-marker line instead. The byte stream matches
// conventional `git diff` output and is consumable by patch tooling.
func (l *DiffList) PrintPatch(print PrintFunc) error {
	hunkCB := func(d *Delta, h *textdiff.Hunk) error {
		return print(d, h, textdiff.Line{Origin: OriginHunkHeader, Content: h.Header})
	}
	lineCB := func(d *Delta, h *textdiff.Hunk, line *textdiff.Line) error {
		return print(d, h, *line)
	}

	// The file header must come out before the first hunk header, but whether
	// to print it at all (and whether a binary marker follows) depends on the
	// hunk computation, so force evaluation here; Foreach reuses the memoized
	// result immediately after.
	var srcErr error
	err := l.Foreach(func(d *Delta, _ float64) error {
		if !l.needsContent(d) {
			return nil
		}
		hunks, err := l.hunksFor(d)
		if err != nil {
			srcErr = err
			return err
		}
		binary, known := d.IsBinary()
		binary = binary && known
		// A record that changed nothing visible produces no output, the way
		// whitespace-insensitive diffs and mode-preserving same-content pairs
		// come out of `git diff`.
		if !binary && len(hunks) == 0 && !headerWorthy(d) {
			return nil
		}
		if err := print(d, nil, textdiff.Line{Origin: OriginFileHeader, Content: l.fileHeader(d)}); err != nil {
			return err
		}
		if binary {
			marker := fmt.Sprintf("Binary files %s and %s differ\n", l.prefixedOld(d), l.prefixedNew(d))
			return print(d, nil, textdiff.Line{Origin: OriginBinary, Content: marker})
		}
		return nil
	}, hunkCB, lineCB)
	if srcErr != nil {
		// A content failure is a plain error, not a callback abort.
		return srcErr
	}
	return err
}

// headerWorthy reports whether a record's metadata alone justifies a file
// header even when no hunks were produced: creations, deletions, renames,
// copies, and mode changes all do.
func headerWorthy(d *Delta) bool {
	switch d.Status {
	case Added, Deleted, Untracked, Renamed, Copied:
		return true
	}
	return d.Old != nil && d.New != nil && d.Old.Mode != d.New.Mode
}

// fileHeader renders the "diff --git" preamble with ---/+++ lines, using
// /dev/null for absent sides.
func (l *DiffList) fileHeader(d *Delta) string {
	var b strings.Builder
	fmt.Fprintf(&b, "diff --git %s %s\n", l.prefixedOld(d), l.prefixedNew(d))
	switch d.Status {
	case Added, Untracked:
		fmt.Fprintf(&b, "new file mode %o\n", sideMode(d.New))
	case Deleted:
		fmt.Fprintf(&b, "deleted file mode %o\n", sideMode(d.Old))
	default:
		if d.Old != nil && d.New != nil && d.Old.Mode != d.New.Mode {
			fmt.Fprintf(&b, "old mode %o\n", d.Old.Mode)
			fmt.Fprintf(&b, "new mode %o\n", d.New.Mode)
		}
	}
	if d.Old != nil {
		fmt.Fprintf(&b, "--- %s\n", l.prefixedOld(d))
	} else {
		b.WriteString("--- /dev/null\n")
	}
	if d.New != nil {
		fmt.Fprintf(&b, "+++ %s\n", l.prefixedNew(d))
	} else {
		b.WriteString("+++ /dev/null\n")
	}
	return b.String()
}

// prefixedOld renders the old path under OldPrefix, falling back to the new
// path so pure additions still show a stable pair.
func (l *DiffList) prefixedOld(d *Delta) string {
	p := sidePath(d.Old)
	if p == "" {
		p = sidePath(d.New)
	}
	return l.opts.OldPrefix + "/" + p
}

func (l *DiffList) prefixedNew(d *Delta) string {
	p := sidePath(d.New)
	if p == "" {
		p = sidePath(d.Old)
	}
	return l.opts.NewPrefix + "/" + p
}

func sidePath(f *File) string {
	if f == nil {
		return ""
	}
	return f.Path
}

func sideMode(f *File) uint32 {
	if f == nil {
		return 0
	}
	return f.Mode
}

// PatchString renders the whole list through PrintPatch into one string,
// prepending each content line's origin character so the result is a
// conventional unified patch.
func (l *DiffList) PatchString() (string, error) {
	var b strings.Builder
	err := l.PrintPatch(func(_ *Delta, _ *textdiff.Hunk, line textdiff.Line) error {
		switch line.Origin {
		case textdiff.OriginContext, textdiff.OriginAddition, textdiff.OriginDeletion:
			b.WriteByte(line.Origin)
		}
		b.WriteString(line.Content)
		return nil
	})
	if err != nil {
		return "", err
	}
	return b.String(), nil
}

// CompactString renders the whole list through PrintCompact into one string.
func (l *DiffList) CompactString() (string, error) {
	var b strings.Builder
	err := l.PrintCompact(func(_ *Delta, _ *textdiff.Hunk, line textdiff.Line) error {
		b.WriteString(line.Content)
		return nil
	})
	if err != nil {
		return "", err
	}
	return b.String(), nil
}
