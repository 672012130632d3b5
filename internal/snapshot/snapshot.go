// Package snapshot provides ordered path views of a versioned tree: the entry
// model shared by all diff constructions, an in-memory tree, and a
// directory-walking adapter for a live working set.
package snapshot

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"sort"
)

// Hint classifies where a working-set entry came from. Tree and index entries
// carry HintNone; the working-set walker tags entries that exist only on disk
// or that match an ignore pattern.
type Hint int

const (
	HintNone Hint = iota
	HintUntracked
	HintIgnored
)

// Entry is one path in a snapshot. OID is the hex content address; it is ""
// for working-set entries whose content has not been hashed yet. A size of 0
// with a present entry is an empty blob, which is distinct from the path being
// absent from the snapshot altogether.
type Entry struct {
	Path string
	OID  string
	Mode uint32
	Size int64
	Hint Hint
}

// Snapshot is one side's ordered view of paths. Entries must be strictly
// ordered by path with unique paths.
type Snapshot interface {
	Entries() ([]Entry, error)
}

// ContentSource reads raw content by address. Implementations may use path as
// a fallback when oid is empty (working-set entries).
type ContentSource interface {
	Content(oid, path string) ([]byte, error)
}

// File modes, matching git's tree-entry conventions.
const (
	ModeBlob      uint32 = 0o100644
	ModeBlobExec  uint32 = 0o100755
	ModeSymlink   uint32 = 0o120000
	ModeSubmodule uint32 = 0o160000
)

// HashBlob returns the hex content address of data, computed over a git-style
// blob header plus the content bytes.
func HashBlob(data []byte) string {
	h := sha1.New()
	fmt.Fprintf(h, "blob %d", len(data))
	h.Write([]byte{0})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// IsBinary reports whether data looks like binary content: a NUL byte within
// the first 8000 bytes, the same heuristic git uses.
func IsBinary(data []byte) bool {
	probe := data
	if len(probe) > 8000 {
		probe = probe[:8000]
	}
	return bytes.IndexByte(probe, 0) != -1
}

// Tree is an in-memory snapshot and content source. It stands in for a
// committed tree or the staged index in tests and in the blob-vs-blob entry
// point.
type Tree struct {
	entries map[string]treeEntry
}

type treeEntry struct {
	data []byte
	oid  string
	mode uint32
	hint Hint
}

// NewTree returns an empty in-memory snapshot.
func NewTree() *Tree {
	return &Tree{entries: make(map[string]treeEntry)}
}

// Add stores content at path with ModeBlob, hashing it immediately.
// It replaces any previous entry at the same path.
func (t *Tree) Add(path string, content []byte) *Tree {
	return t.AddMode(path, content, ModeBlob)
}

// AddMode stores content at path with an explicit mode.
func (t *Tree) AddMode(path string, content []byte, mode uint32) *Tree {
	t.entries[path] = treeEntry{data: content, oid: HashBlob(content), mode: mode}
	return t
}

// AddHinted stores content at path tagged with a working-set hint.
func (t *Tree) AddHinted(path string, content []byte, hint Hint) *Tree {
	t.entries[path] = treeEntry{data: content, oid: HashBlob(content), mode: ModeBlob, hint: hint}
	return t
}

// Entries returns the entries ordered by path.
func (t *Tree) Entries() ([]Entry, error) {
	paths := make([]string, 0, len(t.entries))
	for p := range t.entries {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	out := make([]Entry, 0, len(paths))
	for _, p := range paths {
		e := t.entries[p]
		out = append(out, Entry{Path: p, OID: e.oid, Mode: e.mode, Size: int64(len(e.data)), Hint: e.hint})
	}
	return out, nil
}

// Content returns the stored bytes for oid, falling back to path lookup.
func (t *Tree) Content(oid, path string) ([]byte, error) {
	if oid != "" {
		for _, e := range t.entries {
			if e.oid == oid {
				return e.data, nil
			}
		}
	}
	if e, ok := t.entries[path]; ok {
		return e.data, nil
	}
	return nil, fmt.Errorf("snapshot: content not found (oid %q, path %q)", oid, path)
}

// Sources pairs two content sources, consulting each in turn. Diffing two
// independent snapshots needs content from both sides.
func Sources(sources ...ContentSource) ContentSource {
	return multiSource(sources)
}

type multiSource []ContentSource

func (m multiSource) Content(oid, path string) ([]byte, error) {
	var firstErr error
	for _, s := range m {
		data, err := s.Content(oid, path)
		if err == nil {
			return data, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	if firstErr == nil {
		firstErr = fmt.Errorf("snapshot: no content sources")
	}
	return nil, firstErr
}
