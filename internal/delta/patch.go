package delta

import (
	"fmt"

	"github.com/codalotl/treediff/internal/snapshot"
	"github.com/codalotl/treediff/internal/textdiff"
)

// hunksFor returns d's hunks, computing them on first touch and caching the
// result on the record. Every later request, from either traversal protocol
// and in any interleaving, returns the cached slices without recomparison.
// Binary records and records that need no content comparison yield no hunks.
func (l *DiffList) hunksFor(d *Delta) ([]textdiff.Hunk, error) {
	d.patch.once.Do(func() {
		d.patch.hunks, d.patch.err = l.computeHunks(d)
	})
	return d.patch.hunks, d.patch.err
}

// needsContent reports whether d's status calls for content comparison at all.
func (l *DiffList) needsContent(d *Delta) bool {
	switch d.Status {
	case Modified, Added, Deleted:
		return true
	case Renamed, Copied:
		return d.Similarity < 100
	case Unmodified:
		return l.opts.has(FlagForceText)
	default:
		// Ignored and untracked records are reported by name only.
		return false
	}
}

func (l *DiffList) computeHunks(d *Delta) ([]textdiff.Hunk, error) {
	if !l.needsContent(d) {
		return nil, nil
	}

	// Binary decision, in order: size ceiling (exclusive boundary), force
	// text, then content inspection.
	if sideTooLarge(d.Old, l.opts.MaxSize) || sideTooLarge(d.New, l.opts.MaxSize) {
		d.setBinary(true)
		return nil, nil
	}

	// Identical verified addresses need no recompute; this covers mode-only
	// modifications without touching content.
	if d.Old != nil && d.New != nil &&
		d.Old.Flags&FlagValidOID != 0 && d.New.Flags&FlagValidOID != 0 &&
		d.Old.OID == d.New.OID {
		if !l.opts.has(FlagForceText) {
			return nil, nil
		}
	}

	oldData, err := l.loadSide(d.Old)
	if err != nil {
		return nil, fmt.Errorf("loading old side of %s: %w", d.Path(), err)
	}
	newData, err := l.loadSide(d.New)
	if err != nil {
		return nil, fmt.Errorf("loading new side of %s: %w", d.Path(), err)
	}

	if !l.opts.has(FlagForceText) {
		if snapshot.IsBinary(oldData) || snapshot.IsBinary(newData) {
			d.setBinary(true)
			return nil, nil
		}
	}
	d.setBinary(false)

	l.textDiffs++
	hunks := textdiff.Hunks(oldData, newData, l.textConfig())
	return hunks, nil
}

func (l *DiffList) textConfig() textdiff.Config {
	cfg := textdiff.Config{
		InterhunkLines: l.opts.InterhunkLines,
		IgnoreAllWS:    l.opts.has(FlagIgnoreWhitespace),
		IgnoreWSChange: l.opts.has(FlagIgnoreWhitespaceChange),
		IgnoreWSEOL:    l.opts.has(FlagIgnoreWhitespaceEOL),
		Patience:       l.opts.has(FlagPatience),
	}
	return cfg.WithContext(l.opts.ContextLines)
}

// loadSide resolves a side's content. An absent side diffs as an empty
// buffer; a side flagged NoData is intentionally skipped the same way.
func (l *DiffList) loadSide(f *File) ([]byte, error) {
	if f == nil || f.Flags&FlagNoData != 0 {
		return nil, nil
	}
	if l.src == nil {
		return nil, fmt.Errorf("no content source for %q", f.Path)
	}
	return l.src.Content(f.OID, f.Path)
}

func sideTooLarge(f *File, max int64) bool {
	return f != nil && f.Size > max
}

// TextDiffCount returns how many text comparisons the list has performed.
// The compute-on-first-touch contract keeps this at one per record that was
// actually compared, regardless of traversal order or protocol.
func (l *DiffList) TextDiffCount() int { return l.textDiffs }
