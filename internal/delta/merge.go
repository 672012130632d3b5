package delta

// Merge combines two diff lists into a new one containing the union of their
// paths. For a path present in both, the merged record composes onto's old
// side with from's new side, with the status reclassified for that pair.
//
// Exception: a pending delete dominates. If onto's record for a path is a
// deletion, the merged record reports deleted even when from re-adds the path
// (a file deleted in the middle and recreated is not "modified"). The
// symmetric added-then-deleted case yields a record with both sides absent,
// still carrying the Deleted status.
//
// The result is a pure data transform: records are fresh copies, never shared
// with the inputs, and no cached hunks carry over. The merged list keeps
// onto's options and content source.
func Merge(onto, from *DiffList) *DiffList {
	out := &DiffList{opts: onto.opts, src: onto.src}

	oi, fi := 0, 0
	for oi < len(onto.deltas) || fi < len(from.deltas) {
		switch {
		case fi >= len(from.deltas) || (oi < len(onto.deltas) && onto.deltas[oi].Path() < from.deltas[fi].Path()):
			out.append(onto.deltas[oi].clone())
			oi++
		case oi >= len(onto.deltas) || from.deltas[fi].Path() < onto.deltas[oi].Path():
			out.append(from.deltas[fi].clone())
			fi++
		default:
			out.append(compose(onto.deltas[oi], from.deltas[fi]))
			oi++
			fi++
		}
	}

	out.resort()
	return out
}

// compose builds the merged record for a path present in both lists.
func compose(onto, from *Delta) *Delta {
	d := &Delta{}
	if onto.Old != nil {
		f := *onto.Old
		f.Flags &^= FlagBinary | FlagNotBinary
		d.Old = &f
	}

	// A deletion pending in the middle wins: the recreation on the from side
	// does not reach the merged new side.
	if onto.Status == Deleted {
		d.Status = Deleted
		return d
	}

	if from.New != nil {
		f := *from.New
		f.Flags &^= FlagBinary | FlagNotBinary
		d.New = &f
	}

	d.Status = reclassify(d.Old, d.New)
	if d.Status == Renamed || d.Status == Copied {
		d.Similarity = from.Similarity
	}
	return d
}

// reclassify applies the classifier's pairing rules to an already-composed
// old/new pair.
func reclassify(old, new *File) Status {
	switch {
	case old == nil && new == nil:
		// Added then deleted: no content ever reaches the merged new side.
		return Deleted
	case old == nil:
		return Added
	case new == nil:
		return Deleted
	case sameContent(old, new):
		return Unmodified
	default:
		return Modified
	}
}
