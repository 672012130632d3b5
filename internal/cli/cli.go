// Package cli implements the treediff command: diff two directory trees and
// print the result as a unified patch or a name-status report.
package cli

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/codalotl/treediff/internal/delta"
	"github.com/codalotl/treediff/internal/simplelogger"
	"github.com/codalotl/treediff/internal/snapshot"
	"github.com/codalotl/treediff/internal/textdiff"
)

// Version is the treediff version. It is a var (not a const) so build tooling
// can override it via `-ldflags "-X .../internal/cli.Version=1.2.3"`.
var Version = "0.1.0"

// RunOptions override standard I/O, which is useful for testing.
type RunOptions struct {
	Out io.Writer
	Err io.Writer

	// ForceColor overrides terminal detection: nil = autodetect, otherwise
	// the pointed-to value wins.
	ForceColor *bool
}

// ANSI codes for colorized patch output.
const (
	ansiReset    = "\x1b[0m"
	ansiRed      = "\x1b[31m"
	ansiGreen    = "\x1b[32m"
	ansiMagenta  = "\x1b[35m"
	ansiCyanBold = "\x1b[1;36m"
)

// Run runs the CLI with args (typically os.Args).
//
// It returns a recommended exit code and an error, if any:
//   - 0 -> err == nil
//   - 1 -> err != nil with sound args (an I/O or diff failure)
//   - 2 -> err != nil, flag parse error or misuse
//
// In error cases Run has already written a message to opts.Err || Stderr.
func Run(args []string, opts *RunOptions) (int, error) {
	if opts == nil {
		opts = &RunOptions{}
	}
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	errOut := opts.Err
	if errOut == nil {
		errOut = os.Stderr
	}

	fs := flag.NewFlagSet("treediff", flag.ContinueOnError)
	fs.SetOutput(errOut)
	fs.Usage = func() {
		fmt.Fprintf(errOut, "usage: treediff [flags] <old-dir> <new-dir> [-- pathspec...]\n\n")
		fs.PrintDefaults()
	}

	var (
		contextLines = fs.Int("U", 3, "lines of context around changes")
		interhunk    = fs.Int("interhunk", 0, "merge hunks separated by at most this many lines")
		ignoreAll    = fs.Bool("ignore-all-space", false, "ignore all whitespace when comparing lines")
		ignoreChange = fs.Bool("ignore-space-change", false, "ignore changes in the amount of whitespace")
		ignoreEOL    = fs.Bool("ignore-space-at-eol", false, "ignore whitespace at end of line")
		patience     = fs.Bool("patience", false, "use the alternate alignment algorithm")
		forceText    = fs.Bool("text", false, "treat all files as text")
		nameStatus   = fs.Bool("name-status", false, "print a compact name-status report instead of a patch")
		noColor      = fs.Bool("no-color", false, "disable colorized output")
		configPath   = fs.String("config", "", "TOML config file with default options")
		showVersion  = fs.Bool("version", false, "print version and exit")
		maxSize      = fs.Int64("max-size", 0, "treat files larger than this many bytes as binary (0 = 512 MiB)")
		includeUnmod = fs.Bool("include-unmodified", false, "also report unchanged paths")
	)

	if err := fs.Parse(args[1:]); err != nil {
		return 2, err
	}

	if *showVersion {
		fmt.Fprintf(out, "treediff %s\n", Version)
		return 0, nil
	}

	rest := fs.Args()
	var pathspec []string
	if i := indexOf(rest, "--"); i != -1 {
		pathspec = rest[i+1:]
		rest = rest[:i]
	}
	if len(rest) != 2 {
		fs.Usage()
		err := fmt.Errorf("expected exactly 2 directories, got %d", len(rest))
		fmt.Fprintf(errOut, "treediff: %v\n", err)
		return 2, err
	}
	oldRoot, newRoot := rest[0], rest[1]

	cfg := defaultConfig()
	if *configPath != "" {
		if err := cfg.loadFile(*configPath); err != nil {
			fmt.Fprintf(errOut, "treediff: %v\n", err)
			return 1, err
		}
	}
	cfg.applyFlags(fs, *contextLines, *interhunk, *maxSize)

	dopts := delta.Options{
		InterhunkLines: cfg.InterhunkLines,
		OldPrefix:      cfg.OldPrefix,
		NewPrefix:      cfg.NewPrefix,
		MaxSize:        cfg.MaxSize,
		Pathspec:       pathspec,
	}.WithContext(cfg.ContextLines)
	if *ignoreAll {
		dopts.Flags |= delta.FlagIgnoreWhitespace
	}
	if *ignoreChange {
		dopts.Flags |= delta.FlagIgnoreWhitespaceChange
	}
	if *ignoreEOL {
		dopts.Flags |= delta.FlagIgnoreWhitespaceEOL
	}
	if *patience {
		dopts.Flags |= delta.FlagPatience
	}
	if *forceText {
		dopts.Flags |= delta.FlagForceText
	}
	if *includeUnmod {
		dopts.Flags |= delta.FlagIncludeUnmodified
	}

	simplelogger.Log("treediff %s: %q vs %q (pathspec %v)", Version, oldRoot, newRoot, pathspec)

	oldSnap := snapshot.NewDir(oldRoot)
	oldSnap.Ignore = cfg.Ignore
	newSnap := snapshot.NewDir(newRoot)
	newSnap.Ignore = cfg.Ignore

	list, err := delta.TreeToTree(oldSnap, newSnap, snapshot.Sources(oldSnap, newSnap), dopts)
	if err != nil {
		fmt.Fprintf(errOut, "treediff: %v\n", err)
		return 1, err
	}
	simplelogger.Log("classified %d records", list.Len())

	color := !*noColor && isTerminal(out)
	if opts.ForceColor != nil {
		color = *opts.ForceColor && !*noColor
	}

	if *nameStatus {
		err = printCompact(list, out)
	} else {
		err = printPatch(list, out, color)
	}
	if err != nil {
		fmt.Fprintf(errOut, "treediff: %v\n", err)
		return 1, err
	}
	return 0, nil
}

func printCompact(list *delta.DiffList, out io.Writer) error {
	return list.PrintCompact(func(_ *delta.Delta, _ *textdiff.Hunk, line textdiff.Line) error {
		_, err := io.WriteString(out, line.Content)
		return err
	})
}

func printPatch(list *delta.DiffList, out io.Writer, color bool) error {
	colorize := func(s, code string) string {
		if !color {
			return s
		}
		// Color per line so pagers keep the codes scoped.
		trimmed := strings.TrimSuffix(s, "\n")
		return code + trimmed + ansiReset + s[len(trimmed):]
	}

	return list.PrintPatch(func(_ *delta.Delta, _ *textdiff.Hunk, line textdiff.Line) error {
		text := line.Content
		switch line.Origin {
		case delta.OriginFileHeader:
			text = colorize(text, ansiCyanBold)
		case delta.OriginHunkHeader:
			text = colorize(text, ansiMagenta)
		case textdiff.OriginAddition:
			text = colorize("+"+text, ansiGreen)
		case textdiff.OriginDeletion:
			text = colorize("-"+text, ansiRed)
		case textdiff.OriginContext:
			text = " " + text
		case delta.OriginBinary:
			text = colorize(text, ansiCyanBold)
		}
		_, err := io.WriteString(out, text)
		return err
	})
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func indexOf(ss []string, want string) int {
	for i, s := range ss {
		if s == want {
			return i
		}
	}
	return -1
}
