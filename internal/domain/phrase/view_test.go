package phrase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/Antecedent-Intelligence/internal/domain/corpus"
)

func TestView_ComposableFilters(t *testing.T) {
	idx, err := Build(fixture())
	require.NoError(t, err)

	earlier := idx.Filter(YearBefore(2000)).Filter(ExcludeAuthor("X"))
	assert.Equal(t, []string{"due process", "liberty"}, earlier.Texts())

	dp := earlier.Lookup("due process")
	require.Len(t, dp, 2)
	assert.Equal(t, "B", dp[0].DocumentID)
	assert.Equal(t, "C", dp[1].DocumentID)

	assert.False(t, earlier.Contains("the court"))
	assert.True(t, idx.Filter(ByAuthor("X")).Contains("the court"))
}

func TestView_DoesNotMutateIndex(t *testing.T) {
	idx, err := Build(fixture())
	require.NoError(t, err)
	before := idx.Texts()

	_ = idx.Filter(ByLength(1)).Texts()
	_ = idx.Filter(Not(ByCategory(corpus.CategoryMajority))).Lookup("due process")

	assert.Equal(t, before, idx.Texts())
	assert.Len(t, idx.Lookup("due process"), 3)
}

func TestView_Predicates(t *testing.T) {
	idx, err := Build(fixture())
	require.NoError(t, err)

	assert.Equal(t, 2, idx.Filter(ByLength(1)).Count())
	assert.Equal(t, 1, idx.Filter(ByLength(corpus.Sentence)).Count())
	assert.Equal(t, 3, idx.Filter(YearBetween(1986, 1990)).Count())
	assert.Equal(t, []string{"due process", "liberty"}, idx.Filter(NotCategory(corpus.CategoryMajority)).Texts())
	assert.Equal(t, []string{"due process"}, idx.Filter(YearAtMost(1985)).Texts())
	assert.Equal(t, 0, idx.Filter(And(ByLength(1), ExcludeDocument("A"), ExcludeDocument("B"))).Count())
	assert.Equal(t, 8, idx.Filter(And()).Count())
	assert.Equal(t, 8, idx.Filter(nil).Count())
}

func TestView_EachStopsEarly(t *testing.T) {
	idx, err := Build(fixture())
	require.NoError(t, err)

	n := 0
	idx.Filter(nil).Each(func(corpus.PhraseRecord) bool {
		n++
		return n < 3
	})
	assert.Equal(t, 3, n)
}

//Personal.AI order the ending
