// Package delta builds and traverses diff lists: ordered collections of
// per-file change records between two snapshots of a versioned tree.
//
// Construction pairs two ordered snapshots into one Delta per distinct path
// (TreeToTree and friends), or merges two independently built lists into one
// (Merge). Traversal is offered under two protocols with identical semantics:
// Foreach walks the whole list eagerly, invoking file/hunk/line callbacks in
// order, while Iterator pulls files, hunks, and lines one at a time.
//
// Text comparison is lazy: a Delta's hunks are computed the first time either
// protocol asks for hunk- or line-level detail, then cached on the record for
// the lifetime of the owning DiffList. A list that is only ever walked at file
// granularity never reads file content at all.
//
// Ownership: a DiffList owns its Deltas and their cached hunks. Iterators and
// callbacks borrow records; they must not retain them past the list's
// lifetime. All computation happens synchronously on the caller's goroutine.
package delta
