package delta

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codalotl/treediff/internal/snapshot"
	"github.com/codalotl/treediff/internal/textdiff"
)

func threeFileDiff(t *testing.T) *DiffList {
	t.Helper()
	old := snapshot.NewTree().
		Add("a.txt", []byte("a\nb\nc\n")).
		Add("b.txt", []byte("keep\n")).
		Add("c.txt", []byte("x\n"))
	new := snapshot.NewTree().
		Add("a.txt", []byte("a\nX\nc\n")).
		Add("b.txt", []byte("keep!\n")).
		Add("c.txt", []byte("y\n"))
	return mustDiff(t, old, new, Options{})
}

func TestForeach_ProgressMonotonic(t *testing.T) {
	list := threeFileDiff(t)

	var progress []float64
	err := list.Foreach(func(_ *Delta, p float64) error {
		progress = append(progress, p)
		return nil
	}, nil, nil)
	require.NoError(t, err)

	require.Len(t, progress, 3)
	for i := 1; i < len(progress); i++ {
		assert.GreaterOrEqual(t, progress[i], progress[i-1])
	}
	assert.Equal(t, 1.0, progress[len(progress)-1])
}

func TestForeach_FileOnlyNeverDiffs(t *testing.T) {
	list := threeFileDiff(t)
	err := list.Foreach(func(*Delta, float64) error { return nil }, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, list.TextDiffCount())
}

func TestForeach_HunksAndLinesInOrder(t *testing.T) {
	old := snapshot.NewTree().Add("a.txt", []byte("a\nb\nc\n"))
	new := snapshot.NewTree().Add("a.txt", []byte("a\nX\nc\n"))
	list := mustDiff(t, old, new, Options{})

	var hunkHeaders []string
	var origins []byte
	err := list.Foreach(nil,
		func(_ *Delta, h *textdiff.Hunk) error {
			hunkHeaders = append(hunkHeaders, h.Header)
			return nil
		},
		func(_ *Delta, _ *textdiff.Hunk, line *textdiff.Line) error {
			origins = append(origins, line.Origin)
			return nil
		})
	require.NoError(t, err)

	require.Equal(t, []string{"@@ -1,3 +1,3 @@\n"}, hunkHeaders)
	assert.Equal(t, " -+ ", string(origins))
	assert.Equal(t, 1, list.TextDiffCount())
}

func TestForeach_Abort(t *testing.T) {
	list := threeFileDiff(t)

	sentinel := errors.New("stop here")
	calls := 0
	err := list.Foreach(func(*Delta, float64) error {
		calls++
		if calls == 2 {
			return sentinel
		}
		return nil
	}, nil, nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAborted)
	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, 2, calls, "traversal must stop immediately")
}

func TestForeach_AbortFromLineCallback(t *testing.T) {
	list := threeFileDiff(t)

	lines := 0
	err := list.Foreach(nil, nil, func(*Delta, *textdiff.Hunk, *textdiff.Line) error {
		lines++
		return errors.New("enough")
	})
	require.ErrorIs(t, err, ErrAborted)
	assert.Equal(t, 1, lines)
}

func TestMemoization_ExactlyOnceAcrossProtocols(t *testing.T) {
	list := threeFileDiff(t)

	// First pass: eager traversal forces all three comparisons.
	require.NoError(t, list.Foreach(nil, func(*Delta, *textdiff.Hunk) error { return nil }, nil))
	assert.Equal(t, 3, list.TextDiffCount())

	// Interleave two cursors and another eager pass: no recomparison.
	it1 := NewIterator(list)
	it2 := NewIterator(list)
	for {
		if _, err := it1.NextFile(); errors.Is(err, ErrIterOver) {
			break
		}
		_, err := it1.NumHunksInFile()
		require.NoError(t, err)
		if _, err := it2.NextFile(); err == nil {
			_, err = it2.NextHunk()
			if err != nil {
				require.ErrorIs(t, err, ErrIterOver)
			}
		}
	}
	require.NoError(t, list.Foreach(nil, func(*Delta, *textdiff.Hunk) error { return nil }, nil))
	assert.Equal(t, 3, list.TextDiffCount())
}

func TestMemoization_ByteIdenticalResults(t *testing.T) {
	list := threeFileDiff(t)

	collect := func() []string {
		var out []string
		err := list.Foreach(nil, nil, func(_ *Delta, _ *textdiff.Hunk, line *textdiff.Line) error {
			out = append(out, string(line.Origin)+line.Content)
			return nil
		})
		require.NoError(t, err)
		return out
	}

	first := collect()
	second := collect()
	assert.Equal(t, first, second)
}

func TestBinary_SizeCeilingBoundary(t *testing.T) {
	content := []byte("0123456789ABCDEF")
	old := snapshot.NewTree().Add("f.bin", nil)
	new := snapshot.NewTree().Add("f.bin", content)

	t.Run("size equal to ceiling is text", func(t *testing.T) {
		list := mustDiff(t, old, new, Options{MaxSize: int64(len(content))})
		_, err := list.hunksFor(list.Delta(0))
		require.NoError(t, err)
		binary, known := list.Delta(0).IsBinary()
		require.True(t, known)
		assert.False(t, binary)
	})

	t.Run("ceiling plus one is binary by size", func(t *testing.T) {
		list := mustDiff(t, old, new, Options{MaxSize: int64(len(content)) - 1})
		hunks, err := list.hunksFor(list.Delta(0))
		require.NoError(t, err)
		assert.Empty(t, hunks)
		binary, known := list.Delta(0).IsBinary()
		require.True(t, known)
		assert.True(t, binary)
		assert.Equal(t, 0, list.TextDiffCount(), "binary by size must not inspect content")
	})
}

func TestBinary_ContentDetection(t *testing.T) {
	old := snapshot.NewTree().Add("f.bin", []byte{1, 2, 0, 3})
	new := snapshot.NewTree().Add("f.bin", []byte{1, 2, 0, 4})
	list := mustDiff(t, old, new, Options{})

	hunkCalls := 0
	err := list.Foreach(nil, func(*Delta, *textdiff.Hunk) error {
		hunkCalls++
		return nil
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, hunkCalls, "binary records never fire hunk callbacks")

	binary, known := list.Delta(0).IsBinary()
	require.True(t, known)
	assert.True(t, binary)
	assert.NotZero(t, list.Delta(0).Old.Flags&FlagBinary)
}

func TestBinary_ForceText(t *testing.T) {
	old := snapshot.NewTree().Add("f.bin", []byte("a\x00\n"))
	new := snapshot.NewTree().Add("f.bin", []byte("b\x00\n"))
	list := mustDiff(t, old, new, Options{Flags: FlagForceText})

	hunkCalls := 0
	err := list.Foreach(nil, func(*Delta, *textdiff.Hunk) error {
		hunkCalls++
		return nil
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, hunkCalls)
	assert.Equal(t, 1, list.TextDiffCount())
}

func TestBinary_UnknownUntilInspected(t *testing.T) {
	list := threeFileDiff(t)
	_, known := list.Delta(0).IsBinary()
	assert.False(t, known)

	_, err := list.hunksFor(list.Delta(0))
	require.NoError(t, err)
	binary, known := list.Delta(0).IsBinary()
	require.True(t, known)
	assert.False(t, binary)
	assert.NotZero(t, list.Delta(0).Old.Flags&FlagNotBinary)
}

func TestIterator_FullWalk(t *testing.T) {
	list := threeFileDiff(t)
	it := NewIterator(list)

	var seen []string
	for {
		d, err := it.NextFile()
		if errors.Is(err, ErrIterOver) {
			break
		}
		require.NoError(t, err)
		seen = append(seen, d.Path())

		nh, err := it.NumHunksInFile()
		require.NoError(t, err)
		for h := 0; h < nh; h++ {
			hunk, err := it.NextHunk()
			require.NoError(t, err)
			require.NotNil(t, hunk)

			nl, err := it.NumLinesInHunk()
			require.NoError(t, err)
			for ln := 0; ln < nl; ln++ {
				_, err := it.NextLine()
				require.NoError(t, err)
			}
			_, err = it.NextLine()
			assert.ErrorIs(t, err, ErrIterOver)
		}
		_, err = it.NextHunk()
		assert.ErrorIs(t, err, ErrIterOver)
	}
	assert.Equal(t, []string{"a.txt", "b.txt", "c.txt"}, seen)

	_, err := it.NextFile()
	assert.ErrorIs(t, err, ErrIterOver)
}

func TestIterator_UsageErrors(t *testing.T) {
	list := threeFileDiff(t)

	t.Run("hunk ops before any file", func(t *testing.T) {
		it := NewIterator(list)
		_, err := it.NextHunk()
		assert.ErrorIs(t, err, ErrUsage)
		_, err = it.NumHunksInFile()
		assert.ErrorIs(t, err, ErrUsage)
		_, err = it.NextLine()
		assert.ErrorIs(t, err, ErrUsage)
	})

	t.Run("line ops before any hunk", func(t *testing.T) {
		it := NewIterator(list)
		_, err := it.NextFile()
		require.NoError(t, err)
		_, err = it.NextLine()
		assert.ErrorIs(t, err, ErrUsage)
		_, err = it.NumLinesInHunk()
		assert.ErrorIs(t, err, ErrUsage)
	})

	t.Run("hunk ops after exhaustion", func(t *testing.T) {
		it := NewIterator(list)
		for {
			if _, err := it.NextFile(); errors.Is(err, ErrIterOver) {
				break
			}
		}
		_, err := it.NextHunk()
		assert.ErrorIs(t, err, ErrUsage)
	})
}

func TestIterator_ProgressWithoutForcing(t *testing.T) {
	list := threeFileDiff(t)
	it := NewIterator(list)

	assert.Equal(t, 0.0, it.Progress())

	var last float64
	for {
		_, err := it.NextFile()
		if errors.Is(err, ErrIterOver) {
			break
		}
		p := it.Progress()
		assert.GreaterOrEqual(t, p, last)
		last = p
	}
	assert.Equal(t, 1.0, it.Progress())
	assert.Equal(t, 0, list.TextDiffCount(), "progress must not force evaluation")
}

func TestIterator_EmptyList(t *testing.T) {
	list := mustDiff(t, snapshot.NewTree(), snapshot.NewTree(), Options{})
	it := NewIterator(list)
	assert.Equal(t, 1.0, it.Progress())
	_, err := it.NextFile()
	assert.ErrorIs(t, err, ErrIterOver)
}

func TestIterator_TwoCursorsIndependentPositions(t *testing.T) {
	list := threeFileDiff(t)

	it1 := NewIterator(list)
	it2 := NewIterator(list)

	d1, err := it1.NextFile()
	require.NoError(t, err)
	d2a, err := it2.NextFile()
	require.NoError(t, err)
	d2b, err := it2.NextFile()
	require.NoError(t, err)

	assert.Equal(t, "a.txt", d1.Path())
	assert.Equal(t, "a.txt", d2a.Path())
	assert.Equal(t, "b.txt", d2b.Path())
	assert.InDelta(t, 1.0/3.0, it1.Progress(), 1e-9)
	assert.InDelta(t, 2.0/3.0, it2.Progress(), 1e-9)
}
