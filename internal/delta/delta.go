package delta

import (
	"sync"

	"github.com/codalotl/treediff/internal/textdiff"
)

// FileFlag records facts about one side of a Delta.
type FileFlag uint32

const (
	// FlagValidOID is set when the side's OID is computed and correct.
	FlagValidOID FileFlag = 1 << iota
	// FlagBinary marks the side's content as binary data.
	FlagBinary
	// FlagNotBinary marks the side's content as text data.
	FlagNotBinary
	// FlagNoData marks a side whose content is intentionally not loaded.
	FlagNoData
)

// File describes one side (old or new) of a change. A nil *File means the
// side does not exist, which is distinct from an existing empty file. Path is
// "" on synthesized sides (the blob-vs-blob entry point with no names given).
type File struct {
	OID   string
	Path  string
	Size  int64
	Mode  uint32
	Flags FileFlag
}

// Status classifies a Delta.
type Status int

const (
	Unmodified Status = iota
	Added
	Deleted
	Modified
	Renamed
	Copied
	Ignored
	Untracked
)

var statusNames = [...]string{"unmodified", "added", "deleted", "modified", "renamed", "copied", "ignored", "untracked"}

func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return "unknown"
	}
	return statusNames[s]
}

// Code returns the one-letter name-status code for s.
func (s Status) Code() byte {
	switch s {
	case Added:
		return 'A'
	case Deleted:
		return 'D'
	case Modified:
		return 'M'
	case Renamed:
		return 'R'
	case Copied:
		return 'C'
	case Ignored:
		return 'I'
	case Untracked:
		return '?'
	default:
		return ' '
	}
}

// Delta is one file's change record: the old and new sides, a status, and a
// similarity score that is meaningful only for Renamed and Copied records.
//
// A Delta is created during classification or merge and never mutated
// afterwards, except to fill in the binary determination and to cache the
// computed hunks, both of which happen at most once.
type Delta struct {
	Old        *File
	New        *File
	Status     Status
	Similarity int // 0-100, Renamed/Copied only

	binaryKnown bool
	binary      bool

	patch patchCell
}

// patchCell is the once-guarded cache of a Delta's computed hunks. The guard
// makes redundant computation attempts (two interleaved traversals, two
// cursors) collapse into a single comparison.
type patchCell struct {
	once  sync.Once
	hunks []textdiff.Hunk
	err   error
}

// IsBinary returns the record's binary determination and whether it is known
// yet. It becomes known when content is first inspected, or immediately when
// a side's size exceeds the configured ceiling.
func (d *Delta) IsBinary() (isBinary, known bool) {
	return d.binary, d.binaryKnown
}

func (d *Delta) setBinary(binary bool) {
	d.binaryKnown = true
	d.binary = binary
	flag := FlagNotBinary
	if binary {
		flag = FlagBinary
	}
	if d.Old != nil {
		d.Old.Flags |= flag
	}
	if d.New != nil {
		d.New.Flags |= flag
	}
}

// Path returns the record's identity path: the new path, falling back to the
// old path when the new side is absent.
func (d *Delta) Path() string {
	if d.New != nil && d.New.Path != "" {
		return d.New.Path
	}
	if d.Old != nil {
		return d.Old.Path
	}
	return ""
}

// clone returns a fresh record with copies of both sides and no cached state.
func (d *Delta) clone() *Delta {
	out := &Delta{Status: d.Status, Similarity: d.Similarity}
	if d.Old != nil {
		f := *d.Old
		f.Flags &^= FlagBinary | FlagNotBinary
		out.Old = &f
	}
	if d.New != nil {
		f := *d.New
		f.Flags &^= FlagBinary | FlagNotBinary
		out.New = &f
	}
	return out
}
