package rag

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectFallbackContextWordOverlap(t *testing.T) {
	got := selectFallbackContext("What is the deadline to file a complaint with the ICC?")

	// "complaint" appears in the filing-timeline and confidentiality
	// blocks only.
	require.Len(t, got, 2)
	assert.True(t, strings.Contains(got[0], "ninety days"))
	assert.True(t, strings.Contains(got[1], "confidential"))
}

func TestSelectFallbackContextIsCaseInsensitive(t *testing.T) {
	got := selectFallbackContext("WHAT COUNTS AS RETALIATION?")

	require.Len(t, got, 2)
	assert.True(t, strings.Contains(got[0], "Quid pro quo"))
	assert.True(t, strings.Contains(got[1], "Retaliation"))
}

func TestSelectFallbackContextTopUpWhenNoOverlap(t *testing.T) {
	got := selectFallbackContext("Can you help me please?")

	assert.Equal(t, fallbackCorpus[:fallbackTopUp], got)
}

func TestSelectFallbackContextTopUpOnSingleMatch(t *testing.T) {
	// "confidential" and "proceedings" appear only in one block; a
	// single match still serves the top-up set.
	got := selectFallbackContext("Are the proceedings confidential?")

	assert.Equal(t, fallbackCorpus[:fallbackTopUp], got)
}

func TestSignificantWordsIgnoresShortWords(t *testing.T) {
	words := significantWords("Can the ICC help with a complaint")

	assert.True(t, words["complaint"])
	assert.False(t, words["icc"])
	assert.False(t, words["with"])
	assert.False(t, words["help"])
}
