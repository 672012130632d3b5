package delta

import (
	"fmt"
	"path"
	"sort"

	"github.com/codalotl/treediff/internal/snapshot"
)

// DiffList is an owned, path-ordered sequence of Deltas. It is built once by
// one of the construction entry points (or by Merge) and is immutable to
// callers; the only internal mutation is the one-time hunk memoization on its
// records.
type DiffList struct {
	deltas []*Delta
	opts   Options
	src    snapshot.ContentSource

	// textDiffs counts actual text comparisons performed; the memoization
	// contract keeps it at one per record no matter how traversals interleave.
	textDiffs int
}

// Len returns the number of records.
func (l *DiffList) Len() int { return len(l.deltas) }

// Delta returns the i'th record. Records are borrowed from the list and must
// not be retained past its lifetime.
func (l *DiffList) Delta(i int) *Delta { return l.deltas[i] }

// EntryCount returns the number of records with the given status.
func (l *DiffList) EntryCount(s Status) int {
	n := 0
	for _, d := range l.deltas {
		if d.Status == s {
			n++
		}
	}
	return n
}

// TreeToTree diffs two committed trees.
func TreeToTree(old, new snapshot.Snapshot, src snapshot.ContentSource, opts Options) (*DiffList, error) {
	return build(old, new, src, opts)
}

// TreeToIndex diffs a committed tree against the staged index.
func TreeToIndex(tree, index snapshot.Snapshot, src snapshot.ContentSource, opts Options) (*DiffList, error) {
	return build(tree, index, src, opts)
}

// IndexToWorkdir diffs the staged index against the working set. Untracked
// and ignored hints on the working-set entries are honored here.
func IndexToWorkdir(index, workdir snapshot.Snapshot, src snapshot.ContentSource, opts Options) (*DiffList, error) {
	return build(index, workdir, src, opts)
}

// WorkdirToTree diffs the working set against a committed tree. Note this is
// strictly working-set-vs-tree; combining it with a pending index requires
// building both lists and merging them.
func WorkdirToTree(workdir, tree snapshot.Snapshot, src snapshot.ContentSource, opts Options) (*DiffList, error) {
	return build(workdir, tree, src, opts)
}

// build runs the delta classifier: a single merge-join over the two ordered
// entry sequences, one record per distinct path. It either fully succeeds or
// returns an error with no partial list.
func build(oldSnap, newSnap snapshot.Snapshot, src snapshot.ContentSource, opts Options) (*DiffList, error) {
	opts = opts.normalized()

	if opts.has(FlagReverse) {
		oldSnap, newSnap = newSnap, oldSnap
	}

	oldEntries, err := oldSnap.Entries()
	if err != nil {
		return nil, fmt.Errorf("reading old snapshot: %w", err)
	}
	newEntries, err := newSnap.Entries()
	if err != nil {
		return nil, fmt.Errorf("reading new snapshot: %w", err)
	}

	oldEntries = filterEntries(oldEntries, opts)
	newEntries = filterEntries(newEntries, opts)

	list := &DiffList{opts: opts, src: src}

	oi, ni := 0, 0
	for oi < len(oldEntries) || ni < len(newEntries) {
		switch {
		case ni >= len(newEntries) || (oi < len(oldEntries) && oldEntries[oi].Path < newEntries[ni].Path):
			list.append(classifyOldOnly(oldEntries[oi]))
			oi++
		case oi >= len(oldEntries) || newEntries[ni].Path < oldEntries[oi].Path:
			list.append(classifyNewOnly(newEntries[ni], opts))
			ni++
		default:
			list.append(classifyPaired(oldEntries[oi], newEntries[ni], opts))
			oi++
			ni++
		}
	}

	return list, nil
}

// filterEntries applies the pathspec constraint and the submodule flag.
func filterEntries(entries []snapshot.Entry, opts Options) []snapshot.Entry {
	usePathspec := len(opts.Pathspec) > 0 && !opts.has(FlagDisablePathspecMatch)
	if !usePathspec && !opts.has(FlagIgnoreSubmodules) {
		return entries
	}
	out := entries[:0:0]
	for _, e := range entries {
		if opts.has(FlagIgnoreSubmodules) && e.Mode == snapshot.ModeSubmodule {
			continue
		}
		if usePathspec && !matchesPathspec(e.Path, opts.Pathspec) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func matchesPathspec(p string, patterns []string) bool {
	for _, pattern := range patterns {
		if ok, err := path.Match(pattern, p); err == nil && ok {
			return true
		}
	}
	return false
}

func classifyOldOnly(e snapshot.Entry) *Delta {
	return &Delta{Old: fileFromEntry(e), Status: Deleted}
}

func classifyNewOnly(e snapshot.Entry, opts Options) *Delta {
	status := Added
	switch e.Hint {
	case snapshot.HintUntracked:
		if !opts.has(FlagIncludeUntracked) {
			return nil
		}
		status = Untracked
	case snapshot.HintIgnored:
		if !opts.has(FlagIncludeIgnored) {
			return nil
		}
		status = Ignored
	}
	return &Delta{New: fileFromEntry(e), Status: status}
}

func classifyPaired(oldE, newE snapshot.Entry, opts Options) *Delta {
	d := &Delta{Old: fileFromEntry(oldE), New: fileFromEntry(newE)}
	if sameContent(d.Old, d.New) {
		if !opts.has(FlagIncludeUnmodified) {
			return nil
		}
		d.Status = Unmodified
		return d
	}
	d.Status = Modified
	return d
}

// sameContent reports whether two present sides are identical: equal verified
// addresses and equal modes.
func sameContent(old, new *File) bool {
	return old.Flags&FlagValidOID != 0 && new.Flags&FlagValidOID != 0 &&
		old.OID == new.OID && old.Mode == new.Mode
}

func fileFromEntry(e snapshot.Entry) *File {
	f := &File{OID: e.OID, Path: e.Path, Size: e.Size, Mode: e.Mode}
	if e.OID != "" {
		f.Flags |= FlagValidOID
	}
	return f
}

// append adds d unless classification dropped it. Inputs are path-sorted and
// the join key is the record's identity path, so the list stays sorted.
func (l *DiffList) append(d *Delta) {
	if d != nil {
		l.deltas = append(l.deltas, d)
	}
}

// resort restores path order; Merge uses it after composing records whose
// identity path may differ from the join path.
func (l *DiffList) resort() {
	sort.SliceStable(l.deltas, func(i, j int) bool {
		return l.deltas[i].Path() < l.deltas[j].Path()
	})
}
