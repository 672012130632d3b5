package delta

import (
	"github.com/codalotl/treediff/internal/snapshot"
)

// Blobs runs a standalone two-buffer comparison, bypassing list construction:
// it synthesizes a single record for the pair and drives the callbacks
// directly, with the same laziness, binary policy, and abort semantics as a
// list traversal.
//
// A nil buffer means that side does not exist. Paths are optional; a side
// with no path still diffs, it just renders without one.
// When either side is binary the record is marked binary and no hunk or line
// callbacks fire.
func Blobs(oldBuf, newBuf []byte, oldPath, newPath string, opts Options, fileCB FileFunc, hunkCB HunkFunc, lineCB LineFunc) error {
	opts = opts.normalized()

	store := snapshot.NewTree()
	d := &Delta{}
	if oldBuf != nil || oldPath != "" {
		oid := snapshot.HashBlob(oldBuf)
		store.Add(blobKey(oldPath, "old"), oldBuf)
		d.Old = &File{OID: oid, Path: oldPath, Size: int64(len(oldBuf)), Mode: snapshot.ModeBlob, Flags: FlagValidOID}
	}
	if newBuf != nil || newPath != "" {
		oid := snapshot.HashBlob(newBuf)
		store.Add(blobKey(newPath, "new"), newBuf)
		d.New = &File{OID: oid, Path: newPath, Size: int64(len(newBuf)), Mode: snapshot.ModeBlob, Flags: FlagValidOID}
	}

	switch {
	case d.Old == nil && d.New == nil:
		d.Status = Unmodified
	case d.Old == nil:
		d.Status = Added
	case d.New == nil:
		d.Status = Deleted
	case d.Old.OID == d.New.OID:
		d.Status = Unmodified
	default:
		d.Status = Modified
	}

	if opts.has(FlagReverse) {
		d.Old, d.New = d.New, d.Old
		switch d.Status {
		case Added:
			d.Status = Deleted
		case Deleted:
			d.Status = Added
		}
	}

	list := &DiffList{opts: opts, src: store, deltas: []*Delta{d}}
	return list.Foreach(fileCB, hunkCB, lineCB)
}

// blobKey keeps the two sides distinct in the backing store even when no
// paths were supplied or both sides share one.
func blobKey(path, side string) string {
	if path == "" {
		return "\x00" + side
	}
	return "\x00" + side + "\x00" + path
}
