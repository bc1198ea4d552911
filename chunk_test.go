package webdex_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/webdex/webdex"
)

func TestEstimateTokens(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, webdex.EstimateTokens(""))
	assert.Equal(t, 1, webdex.EstimateTokens("a"))
	assert.Equal(t, 1, webdex.EstimateTokens("abcd"))
	assert.Equal(t, 2, webdex.EstimateTokens("abcde"))
}

func TestNormalizeText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "collapses interior whitespace",
			in:   "one   two\tthree",
			want: "one two three",
		},
		{
			name: "joins contiguous lines into one paragraph",
			in:   "one\ntwo\nthree",
			want: "one two three",
		},
		{
			name: "blank line terminates paragraph",
			in:   "one\n\ntwo",
			want: "one\ntwo",
		},
		{
			name: "heading is its own paragraph",
			in:   "# Title\nbody line one\nbody line two",
			want: "# Title\nbody line one body line two",
		},
		{
			name: "drops blank lines",
			in:   "\n\na\n\n\nb\n\n",
			want: "a\nb",
		},
		{
			name: "seven hashes is not a heading",
			in:   "####### deep\nmore",
			want: "####### deep more",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, webdex.NormalizeText(tt.in))
		})
	}
}

func TestNormalizeText_Idempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"# Title\n\nOne. Two. Three.",
		"a   b\n\n\nc\nd\n## Sub\nx",
		"",
		"   \n \n",
	}
	for _, in := range inputs {
		once := webdex.NormalizeText(in)
		assert.Equal(t, once, webdex.NormalizeText(once))
	}
}

func TestSplitChunks_SingleChunkUnderBudget(t *testing.T) {
	t.Parallel()

	chunks := webdex.SplitChunks("# Title\n\nOne. Two. Three.", webdex.ChunkOptions{
		TargetTokens: 100000,
	})

	require.Len(t, chunks, 1)
	assert.Equal(t, "# Title One. Two. Three.", chunks[0])
}

func TestSplitChunks_EmptyInput(t *testing.T) {
	t.Parallel()

	assert.Empty(t, webdex.SplitChunks("", webdex.ChunkOptions{}))
	assert.Empty(t, webdex.SplitChunks("   \n\n  ", webdex.ChunkOptions{}))
}

func TestSplitChunks_OversizedSentenceMakesProgress(t *testing.T) {
	t.Parallel()

	// Each sentence alone exceeds the target; the first sentence of a chunk
	// is still included, so each sentence becomes its own chunk.
	long := strings.Repeat("x", 100)
	text := fmt.Sprintf("%s. %s. %s.", long, long, long)

	chunks := webdex.SplitChunks(text, webdex.ChunkOptions{TargetTokens: 5, OverlapTokens: 0})

	assert.Len(t, chunks, 3)
}

func TestSplitChunks_OverlapCarriesTrailingSentences(t *testing.T) {
	t.Parallel()

	var sb strings.Builder
	for i := 0; i < 20; i++ {
		fmt.Fprintf(&sb, "Sentence number %02d is here. ", i)
	}

	chunks := webdex.SplitChunks(sb.String(), webdex.ChunkOptions{
		TargetTokens:  30,
		OverlapTokens: 8,
	})

	require.Greater(t, len(chunks), 1)
	// Each chunk after the first must re-include the tail of its predecessor.
	for i := 1; i < len(chunks); i++ {
		first := strings.SplitAfter(chunks[i], ".")[0]
		assert.Contains(t, chunks[i-1], strings.TrimSpace(first),
			"chunk %d should start inside chunk %d", i, i-1)
	}
}

func TestSplitChunks_ZeroValueOptionsUseDefaultOverlap(t *testing.T) {
	t.Parallel()

	var sb strings.Builder
	for i := 0; i < 500; i++ {
		fmt.Fprintf(&sb, "Sentence number %03d of the corpus goes here. ", i)
	}

	chunks := webdex.SplitChunks(sb.String(), webdex.ChunkOptions{})

	require.Greater(t, len(chunks), 2)
	for i := 1; i < len(chunks); i++ {
		first := strings.TrimSpace(strings.SplitAfter(chunks[i], ".")[0])
		idx := strings.Index(chunks[i-1], first)
		require.NotEqual(t, -1, idx, "chunk %d should start inside chunk %d", i, i-1)

		// The re-included tail of the predecessor must meet the default
		// overlap budget.
		carried := webdex.EstimateTokens(chunks[i-1][idx:])
		assert.GreaterOrEqual(t, carried, webdex.DefaultOverlapTokens,
			"carry-over into chunk %d is below the default overlap budget", i)
	}
}

func TestSplitChunks_TerminatesOnAdversarialInput(t *testing.T) {
	t.Parallel()

	// Overlap budget larger than the target budget must still advance the
	// start index by at least one sentence per iteration.
	var sb strings.Builder
	for i := 0; i < 50; i++ {
		fmt.Fprintf(&sb, "Short %d. ", i)
	}

	chunks := webdex.SplitChunks(sb.String(), webdex.ChunkOptions{
		TargetTokens:  4,
		OverlapTokens: 1000,
	})

	assert.NotEmpty(t, chunks)
	assert.LessOrEqual(t, len(chunks), 50)
}

func TestBuildChunks_OrdinalsDenseAndIncreasing(t *testing.T) {
	t.Parallel()

	var sb strings.Builder
	for i := 0; i < 40; i++ {
		fmt.Fprintf(&sb, "This is sentence number %d of the corpus. ", i)
	}

	chunks := webdex.BuildChunks("page.md", "https://a.test/page", sb.String(), webdex.ChunkOptions{
		TargetTokens:  25,
		OverlapTokens: 5,
	})

	require.NotEmpty(t, chunks)
	for i, c := range chunks {
		assert.Equal(t, i, c.Ordinal)
		assert.Equal(t, "page.md", c.Name)
		assert.Equal(t, "https://a.test/page", c.URL)
		assert.NotEmpty(t, c.Text)
	}
}
