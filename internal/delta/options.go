package delta

// Flag bits for Options.Flags. Zero means a normal diff.
type Flag uint32

const (
	// FlagReverse swaps the old and new sides before classification.
	FlagReverse Flag = 1 << iota
	// FlagForceText skips binary detection and always attempts a line diff.
	FlagForceText
	// FlagIgnoreWhitespace ignores all whitespace when comparing lines.
	FlagIgnoreWhitespace
	// FlagIgnoreWhitespaceChange ignores changes in the amount of whitespace.
	FlagIgnoreWhitespaceChange
	// FlagIgnoreWhitespaceEOL ignores whitespace at the end of lines.
	FlagIgnoreWhitespaceEOL
	// FlagIgnoreSubmodules drops submodule entries from classification.
	FlagIgnoreSubmodules
	// FlagPatience selects the alternate alignment algorithm.
	FlagPatience
	// FlagIncludeIgnored emits records for ignore-matched working-set entries.
	FlagIncludeIgnored
	// FlagIncludeUntracked emits records for untracked working-set entries.
	FlagIncludeUntracked
	// FlagIncludeUnmodified emits records for unchanged paths.
	FlagIncludeUnmodified
	// FlagRecurseUntrackedDirs walks into fully untracked directories.
	FlagRecurseUntrackedDirs
	// FlagDisablePathspecMatch disables pattern interpretation of Pathspec.
	FlagDisablePathspecMatch
)

// DefaultMaxSize is the content size ceiling above which a file is treated as
// binary without inspection: 512 MiB. The boundary is exclusive; a file of
// exactly this size is still inspected.
const DefaultMaxSize = 512 * 1024 * 1024

// Options controls diff construction, comparison, and rendering. The zero
// value yields the defaults: 3 context lines, 0 interhunk lines, "a"/"b"
// prefixes, 512 MiB size ceiling, all paths.
type Options struct {
	Flags          Flag
	ContextLines   int
	InterhunkLines int
	OldPrefix      string   // rendered header prefix for old paths, default "a"
	NewPrefix      string   // rendered header prefix for new paths, default "b"
	Pathspec       []string // path.Match patterns constraining the diff; empty means all
	MaxSize        int64    // binary-by-size ceiling, default DefaultMaxSize

	// contextSet preserves an explicit ContextLines of 0 through
	// normalization.
	contextSet bool
}

// WithContext returns o with ContextLines explicitly set, including to 0.
func (o Options) WithContext(n int) Options {
	o.ContextLines = n
	o.contextSet = true
	return o
}

// normalized returns o with defaults substituted for zero values.
func (o Options) normalized() Options {
	if o.ContextLines == 0 && !o.contextSet {
		o.ContextLines = 3
	}
	if o.OldPrefix == "" {
		o.OldPrefix = "a"
	}
	if o.NewPrefix == "" {
		o.NewPrefix = "b"
	}
	if o.MaxSize == 0 {
		o.MaxSize = DefaultMaxSize
	}
	return o
}

func (o Options) has(f Flag) bool { return o.Flags&f != 0 }
