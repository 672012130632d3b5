// Package textdiff computes line-oriented diffs between two byte buffers and
// shapes them into unified-diff hunks.
//
// Representation: Hunks returns an ordered slice of hunks. Each Hunk covers one
// contiguous region of aligned lines and carries the 1-based start line and
// line count for both sides, a rendered "@@ -a,b +c,d @@" header, and the
// ordered Lines of the region. Each Line has an Origin byte: ' ' for context,
// '-' for a deletion, '+' for an addition, plus marker origins for a missing
// trailing newline on either side.
//
// Invariants:
//   - Hunks are ordered by OldStart (equivalently NewStart).
//   - A hunk's OldLines counts its context and deletion lines; NewLines counts
//     context and addition lines. Marker lines count toward neither.
//   - Within one change run, deletions precede additions.
//
// Alignment is computed with sergi/go-diff's diffmatchpatch, diffing one rune
// per line so that the expensive character-level pass never sees file content.
// Whitespace-insensitive modes normalize each line into a comparison key; the
// emitted Lines always carry the original bytes.
//
// Shaping: Config.ContextLines unchanged lines surround each change. Two
// changes separated by at most 2*ContextLines+InterhunkLines unchanged lines
// are folded into a single hunk.
package textdiff
