package snapshot

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// Dir is a working-set snapshot backed by a directory on disk. Entries are
// hashed at walk time so mode-only and content changes classify the same way
// tree entries do.
type Dir struct {
	root string

	// Ignore holds path.Match patterns (matched against the slash-separated
	// relative path and against the basename). Matching entries are tagged
	// HintIgnored rather than dropped, so the classifier's include flags keep
	// the final say.
	Ignore []string

	// Base, when set, marks entries absent from it as HintUntracked. This is
	// how an index-vs-workdir diff learns which on-disk files are new.
	Base Snapshot

	// RecurseUntracked controls whether the walk descends into directories
	// that are entirely absent from Base. When false, such a directory
	// contributes a single entry for its path with HintUntracked.
	RecurseUntracked bool
}

// NewDir returns a working-set snapshot rooted at root.
func NewDir(root string) *Dir {
	return &Dir{root: root}
}

// Entries walks the directory lexicographically. The .git directory is always
// skipped.
func (d *Dir) Entries() ([]Entry, error) {
	basePaths := make(map[string]bool)
	if d.Base != nil {
		baseEntries, err := d.Base.Entries()
		if err != nil {
			return nil, fmt.Errorf("reading base snapshot: %w", err)
		}
		for _, e := range baseEntries {
			basePaths[e.Path] = true
		}
	}

	var out []Entry
	err := filepath.WalkDir(d.root, func(p string, de fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(d.root, p)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			return nil
		}
		if de.IsDir() {
			if de.Name() == ".git" {
				return filepath.SkipDir
			}
			if d.Base != nil && !d.RecurseUntracked && !baseHasPrefix(basePaths, rel) {
				out = append(out, Entry{Path: rel, Hint: HintUntracked})
				return filepath.SkipDir
			}
			return nil
		}
		if !de.Type().IsRegular() && de.Type()&fs.ModeSymlink == 0 {
			return nil
		}

		entry, err := d.statEntry(p, rel, de)
		if err != nil {
			return err
		}
		if d.matchesIgnore(rel) {
			entry.Hint = HintIgnored
		} else if d.Base != nil && !basePaths[rel] {
			entry.Hint = HintUntracked
		}
		out = append(out, entry)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", d.root, err)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

func (d *Dir) statEntry(abs, rel string, de fs.DirEntry) (Entry, error) {
	info, err := de.Info()
	if err != nil {
		return Entry{}, err
	}

	if info.Mode()&fs.ModeSymlink != 0 {
		target, err := os.Readlink(abs)
		if err != nil {
			return Entry{}, err
		}
		return Entry{
			Path: rel,
			OID:  HashBlob([]byte(target)),
			Mode: ModeSymlink,
			Size: int64(len(target)),
		}, nil
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return Entry{}, err
	}
	mode := ModeBlob
	if info.Mode()&0o111 != 0 {
		mode = ModeBlobExec
	}
	return Entry{
		Path: rel,
		OID:  HashBlob(data),
		Mode: mode,
		Size: int64(len(data)),
	}, nil
}

// Content reads file bytes from disk, addressed by relative path. The oid is
// accepted for interface symmetry; disk content is re-read, not looked up.
func (d *Dir) Content(oid, p string) ([]byte, error) {
	abs := filepath.Join(d.root, filepath.FromSlash(p))
	info, err := os.Lstat(abs)
	if err != nil {
		return nil, err
	}
	if info.Mode()&fs.ModeSymlink != 0 {
		target, err := os.Readlink(abs)
		if err != nil {
			return nil, err
		}
		return []byte(target), nil
	}
	return os.ReadFile(abs)
}

func (d *Dir) matchesIgnore(rel string) bool {
	base := path.Base(rel)
	for _, pattern := range d.Ignore {
		if ok, err := path.Match(pattern, rel); err == nil && ok {
			return true
		}
		if ok, err := path.Match(pattern, base); err == nil && ok {
			return true
		}
	}
	return false
}

func baseHasPrefix(basePaths map[string]bool, dir string) bool {
	prefix := dir + "/"
	for p := range basePaths {
		if strings.HasPrefix(p, prefix) {
			return true
		}
	}
	return false
}
