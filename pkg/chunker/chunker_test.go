package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scoutgpt-be/internal/apperrors"
)

func TestSplitRejectsBadParameters(t *testing.T) {
	_, err := Split("some text", 0, 0)
	assert.True(t, apperrors.IsConfiguration(err))

	_, err = Split("some text", 100, 100)
	assert.True(t, apperrors.IsConfiguration(err))

	_, err = Split("some text", 100, 150)
	assert.True(t, apperrors.IsConfiguration(err))

	_, err = Split("some text", 100, -1)
	assert.True(t, apperrors.IsConfiguration(err))
}

func TestSplitEmptyInput(t *testing.T) {
	chunks, err := Split("", 1000, 200)
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestSplitShortInputSingleChunk(t *testing.T) {
	chunks, err := Split("The subject property is a 12-unit multifamily asset.", 1000, 200)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, 0, chunks[0].Index)
	assert.Equal(t, "The subject property is a 12-unit multifamily asset.", chunks[0].Text)
	assert.Equal(t, chunks[0].CharCount, len([]rune(chunks[0].Text)))
	assert.Equal(t, 9, chunks[0].WordCount)
}

func TestSplitDeterministic(t *testing.T) {
	text := strings.Repeat("Cap rates compressed through the fourth quarter. Rents held flat in the submarket. ", 60)

	first, err := Split(text, 1000, 200)
	require.NoError(t, err)
	second, err := Split(text, 1000, 200)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestSplitCoversSourceWithoutGaps(t *testing.T) {
	text := strings.Repeat("Zoning allows mixed use up to four stories! Parking minimums apply. ", 80)
	total := len([]rune(text))

	chunks, err := Split(text, 1000, 200)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)

	assert.Equal(t, 0, chunks[0].Start)
	assert.Equal(t, total, chunks[len(chunks)-1].End)

	for i := 1; i < len(chunks); i++ {
		assert.Equal(t, i, chunks[i].Index)
		// Each window begins inside (or at the edge of) the previous one.
		assert.LessOrEqual(t, chunks[i].Start, chunks[i-1].End)
		assert.Greater(t, chunks[i].Start, chunks[i-1].Start)
	}
}

func TestSplitPrefersSentenceBoundary(t *testing.T) {
	// One terminator inside the window: the cut must land right after it,
	// not at the raw 50-char boundary.
	text := "Short opening sentence. " + strings.Repeat("x", 100)

	chunks, err := Split(text, 50, 10)
	require.NoError(t, err)
	require.True(t, len(chunks) >= 2)
	assert.Equal(t, "Short opening sentence.", chunks[0].Text)
	assert.Equal(t, 24, chunks[0].End)
}

func TestSplitFallsBackToRawBoundary(t *testing.T) {
	text := strings.Repeat("y", 120)

	chunks, err := Split(text, 50, 10)
	require.NoError(t, err)
	require.True(t, len(chunks) >= 2)
	assert.Equal(t, 50, chunks[0].End)
	assert.Equal(t, 40, chunks[1].Start)
}

func TestSplitDropsWhitespaceOnlyChunks(t *testing.T) {
	text := "First sentence here. " + strings.Repeat(" ", 60) + "Second sentence here."

	chunks, err := Split(text, 40, 5)
	require.NoError(t, err)
	for i, c := range chunks {
		assert.NotEmpty(t, c.Text)
		assert.Equal(t, i, c.Index)
	}
}

func TestSplitAppraisalScenario(t *testing.T) {
	// 2500-character document with default-ish parameters yields 3 chunks
	// with contiguous indices and overlapping boundaries.
	sentence := "The appraisal notes stable occupancy across the submarket this quarter. "
	var b strings.Builder
	for len([]rune(b.String())) < 2500 {
		b.WriteString(sentence)
	}
	text := string([]rune(b.String())[:2500])

	chunks, err := Split(text, 1000, 200)
	require.NoError(t, err)
	require.Len(t, chunks, 3)

	for i, c := range chunks {
		assert.Equal(t, i, c.Index)
		assert.Equal(t, strings.TrimSpace(c.Text), c.Text)
	}
	assert.Less(t, chunks[1].Start, chunks[0].End)
	assert.Less(t, chunks[2].Start, chunks[1].End)
	assert.Equal(t, 2500, chunks[2].End)
}

func TestAssignPages(t *testing.T) {
	// Offsets mark where pages two and three begin; page one is implicit.
	chunks := []Chunk{
		{Index: 0, Start: 0, End: 900},
		{Index: 1, Start: 700, End: 1600},
		{Index: 2, Start: 1400, End: 2100},
		{Index: 3, Start: 2000, End: 2500},
	}

	AssignPages(chunks, []int{1000, 2000})
	assert.Equal(t, 1, chunks[0].Page)
	assert.Equal(t, 1, chunks[1].Page)
	assert.Equal(t, 2, chunks[2].Page)
	assert.Equal(t, 3, chunks[3].Page)

	// No page data leaves pages unknown.
	fresh := []Chunk{{Start: 10}}
	AssignPages(fresh, nil)
	assert.Equal(t, 0, fresh[0].Page)
}
