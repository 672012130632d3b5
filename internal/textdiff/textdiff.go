package textdiff

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Line origins. The content origins appear on lines produced by Hunks; the
// no-EOL origins mark a side whose final line lacks a trailing newline and
// always directly follow the line they annotate.
const (
	OriginContext  byte = ' '
	OriginAddition byte = '+'
	OriginDeletion byte = '-'
	OriginAddNoEOL byte = '>'
	OriginDelNoEOL byte = '<'
)

// noEOLMarker is the conventional unified-diff annotation for a missing
// trailing newline, including its own terminator so printed output stays
// line-aligned.
const noEOLMarker = "\\ No newline at end of file\n"

// Line is one line of a hunk. Content includes the trailing newline when the
// underlying file had one; Length is the content length in bytes. Content is
// never assumed to be NUL- or newline-terminated by this package.
type Line struct {
	Origin  byte
	Content string
}

// Length returns the byte length of the line content.
func (l Line) Length() int { return len(l.Content) }

// Hunk is one contiguous region of aligned lines.
type Hunk struct {
	OldStart int // 1-based first old line; when OldLines==0, the line before the insertion point
	OldLines int
	NewStart int // 1-based first new line; when NewLines==0, the line before the insertion point
	NewLines int
	Header   string // rendered "@@ -a,b +c,d @@\n"
	Lines    []Line
}

// Config controls hunk shaping and line comparison. The zero value means
// 3 context lines, no interhunk folding, exact whitespace, default alignment.
type Config struct {
	ContextLines   int
	InterhunkLines int

	// Whitespace modes compose; the strongest one set wins when normalizing.
	IgnoreAllWS    bool // ignore all whitespace
	IgnoreWSChange bool // ignore changes in amount of whitespace
	IgnoreWSEOL    bool // ignore whitespace at end of line

	// Patience selects the alternate alignment: an extra lossless cleanup pass
	// that shifts edit boundaries in ambiguous regions. It never changes which
	// lines differ, only how ties are broken.
	Patience bool

	contextSet bool // distinguishes an explicit 0 from the zero value
}

// WithContext returns cfg with ContextLines explicitly set, including to 0.
func (cfg Config) WithContext(n int) Config {
	cfg.ContextLines = n
	cfg.contextSet = true
	return cfg
}

func (cfg Config) context() int {
	if !cfg.contextSet && cfg.ContextLines == 0 {
		return 3
	}
	if cfg.ContextLines < 0 {
		return 0
	}
	return cfg.ContextLines
}

// editOp is one aligned step over the two line sequences.
type editOp int

const (
	editEqual editOp = iota
	editDelete
	editInsert
)

// edit records the old/new positions at one aligned step. For an insert,
// oldIdx is the count of old lines already consumed (the insertion point);
// symmetrically for newIdx on a delete.
type edit struct {
	op     editOp
	oldIdx int
	newIdx int
}

// Hunks diffs old against new and returns the shaped hunks. Identical inputs
// (after whitespace normalization) yield nil.
func Hunks(old, new []byte, cfg Config) []Hunk {
	oldLines := splitPreserveEOL(string(old))
	newLines := splitPreserveEOL(string(new))

	edits := alignLines(oldLines, newLines, cfg)
	return buildHunks(oldLines, newLines, edits, cfg)
}

// alignLines computes the aligned edit sequence over whole lines. Each
// distinct normalized line is encoded as one rune so diffmatchpatch never
// walks file bytes, mirroring its DiffLinesToRunes technique but with a
// normalization hook.
func alignLines(oldLines, newLines []string, cfg Config) []edit {
	keyToRune := make(map[string]rune)
	encode := func(lines []string) []rune {
		rs := make([]rune, len(lines))
		for i, ln := range lines {
			key := cfg.normalize(ln)
			r, ok := keyToRune[key]
			if !ok {
				r = indexRune(len(keyToRune))
				keyToRune[key] = r
			}
			rs[i] = r
		}
		return rs
	}
	rOld := encode(oldLines)
	rNew := encode(newLines)

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMainRunes(rOld, rNew, false)
	diffs = dmp.DiffCleanupMerge(diffs)
	if cfg.Patience {
		diffs = dmp.DiffCleanupSemanticLossless(diffs)
		diffs = dmp.DiffCleanupMerge(diffs)
	}

	var edits []edit
	oi, ni := 0, 0
	for _, d := range diffs {
		n := len([]rune(d.Text))
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			for k := 0; k < n; k++ {
				edits = append(edits, edit{op: editEqual, oldIdx: oi, newIdx: ni})
				oi++
				ni++
			}
		case diffmatchpatch.DiffDelete:
			for k := 0; k < n; k++ {
				edits = append(edits, edit{op: editDelete, oldIdx: oi, newIdx: ni})
				oi++
			}
		case diffmatchpatch.DiffInsert:
			for k := 0; k < n; k++ {
				edits = append(edits, edit{op: editInsert, oldIdx: oi, newIdx: ni})
				ni++
			}
		}
	}
	return edits
}

// indexRune maps a table index to a rune, skipping the surrogate range, which
// cannot round-trip through the string conversions diffmatchpatch performs.
func indexRune(i int) rune {
	r := rune(i + 1)
	if r >= 0xD800 {
		r += 0x800
	}
	return r
}

// normalize returns the comparison key for a line under cfg's whitespace
// modes. The raw line (EOL included) is the key when no mode is set.
func (cfg Config) normalize(line string) string {
	switch {
	case cfg.IgnoreAllWS:
		return strings.Join(strings.Fields(line), "")
	case cfg.IgnoreWSChange:
		return strings.Join(strings.Fields(line), " ")
	case cfg.IgnoreWSEOL:
		return strings.TrimRight(line, " \t\r\n")
	default:
		return line
	}
}

// buildHunks groups the edit sequence into context-padded hunks.
func buildHunks(oldLines, newLines []string, edits []edit, cfg Config) []Hunk {
	ctx := cfg.context()
	fold := 2*ctx + cfg.InterhunkLines

	var hunks []Hunk
	prevEnd := 0 // one past the last edit consumed by the previous hunk
	i := 0
	for i < len(edits) {
		if edits[i].op == editEqual {
			i++
			continue
		}

		start := i - ctx
		if start < prevEnd {
			// Context must not reach back into the previous hunk.
			start = prevEnd
		}

		// Extend over subsequent change runs while the equal gap is foldable.
		j := i
		for {
			for j < len(edits) && edits[j].op != editEqual {
				j++
			}
			k := j
			for k < len(edits) && edits[k].op == editEqual {
				k++
			}
			if k < len(edits) && k-j <= fold {
				j = k
				continue
			}
			break
		}
		end := j + ctx
		if end > len(edits) {
			end = len(edits)
		}

		hunks = append(hunks, renderHunk(oldLines, newLines, edits[start:end]))
		prevEnd = end
		i = end
	}
	return hunks
}

// renderHunk materializes one hunk from a slice of edits, reordering each
// change run so deletions precede additions and annotating missing trailing
// newlines.
func renderHunk(oldLines, newLines []string, edits []edit) Hunk {
	var h Hunk
	oldStartIdx, newStartIdx := -1, -1
	for _, e := range edits {
		switch e.op {
		case editEqual, editDelete:
			if oldStartIdx == -1 {
				oldStartIdx = e.oldIdx
			}
			h.OldLines++
		}
		switch e.op {
		case editEqual, editInsert:
			if newStartIdx == -1 {
				newStartIdx = e.newIdx
			}
			h.NewLines++
		}
	}

	// 1-based starts; a zero-count side anchors on the line before the change.
	if h.OldLines > 0 {
		h.OldStart = oldStartIdx + 1
	} else {
		h.OldStart = edits[0].oldIdx
	}
	if h.NewLines > 0 {
		h.NewStart = newStartIdx + 1
	} else {
		h.NewStart = edits[0].newIdx
	}

	h.Header = fmt.Sprintf("@@ -%d,%d +%d,%d @@\n", h.OldStart, h.OldLines, h.NewStart, h.NewLines)

	// Emit lines: context as-is, change runs as deletions then additions.
	i := 0
	for i < len(edits) {
		e := edits[i]
		if e.op == editEqual {
			content := oldLines[e.oldIdx]
			h.Lines = append(h.Lines, Line{Origin: OriginContext, Content: content})
			if !strings.HasSuffix(content, "\n") {
				h.Lines = append(h.Lines, Line{Origin: OriginDelNoEOL, Content: noEOLMarker})
			}
			i++
			continue
		}
		j := i
		for j < len(edits) && edits[j].op != editEqual {
			j++
		}
		for _, ce := range edits[i:j] {
			if ce.op != editDelete {
				continue
			}
			content := oldLines[ce.oldIdx]
			h.Lines = append(h.Lines, Line{Origin: OriginDeletion, Content: content})
			if !strings.HasSuffix(content, "\n") {
				h.Lines = append(h.Lines, Line{Origin: OriginDelNoEOL, Content: noEOLMarker})
			}
		}
		for _, ce := range edits[i:j] {
			if ce.op != editInsert {
				continue
			}
			content := newLines[ce.newIdx]
			h.Lines = append(h.Lines, Line{Origin: OriginAddition, Content: content})
			if !strings.HasSuffix(content, "\n") {
				h.Lines = append(h.Lines, Line{Origin: OriginAddNoEOL, Content: noEOLMarker})
			}
		}
		i = j
	}

	return h
}

// splitPreserveEOL splits text into lines, keeping the trailing newline on
// each line except possibly the last.
func splitPreserveEOL(text string) []string {
	if text == "" {
		return nil
	}
	var lines []string
	for {
		idx := strings.Index(text, "\n")
		if idx == -1 {
			lines = append(lines, text)
			break
		}
		lines = append(lines, text[:idx+1])
		text = text[idx+1:]
		if text == "" {
			break
		}
	}
	return lines
}

// ParseHeader parses a "@@ -a,b +c,d @@" header back into its four numbers.
func ParseHeader(header string) (oldStart, oldLines, newStart, newLines int, err error) {
	trimmed := strings.TrimSuffix(strings.TrimSpace(header), "@@")
	trimmed = strings.TrimPrefix(trimmed, "@@")
	trimmed = strings.TrimSpace(trimmed)
	if _, err = fmt.Sscanf(trimmed, "-%d,%d +%d,%d", &oldStart, &oldLines, &newStart, &newLines); err != nil {
		return 0, 0, 0, 0, fmt.Errorf("malformed hunk header %q: %w", header, err)
	}
	return oldStart, oldLines, newStart, newLines, nil
}
