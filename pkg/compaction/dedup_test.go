package compaction

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func longContent(s string) string {
	return strings.Repeat(s, 1+dedupEligibleMinLen/len(s))
}

func TestIsDedupEligible(t *testing.T) {
	preserve := map[string]bool{"system": true}
	long := longContent("filler text ")

	assert.False(t, isDedupEligible(Message{Role: "system", Content: &long}, preserve))
	assert.False(t, isDedupEligible(Message{ToolCalls: []ToolCall{{ID: "1"}}, Content: &long}, preserve))

	summaryTag := "[summary: already compressed]"
	assert.False(t, isDedupEligible(Message{Content: &summaryTag}, preserve))

	short := "too short"
	assert.False(t, isDedupEligible(Message{Content: &short}, preserve))

	assert.True(t, isDedupEligible(Message{Role: "assistant", Content: &long}, preserve))
}

func TestExactDedup_KeepsLatestOutsideRecencyWindow(t *testing.T) {
	dup := longContent("duplicated content block ")
	other := longContent("distinct content block ")
	messages := []Message{
		{Index: 0, Content: &dup},
		{Index: 1, Content: &other},
		{Index: 2, Content: &dup},
	}
	ann := exactDedup(messages, map[string]bool{}, 10) // recency window beyond all indices

	_, stillEligible := ann[2]
	assert.False(t, stillEligible, "latest occurrence should be kept, not annotated")
	dupAnn, ok := ann[0]
	require.True(t, ok)
	assert.Equal(t, 2, dupAnn.DuplicateOfIndex)
	assert.False(t, dupAnn.IsFuzzy())
}

func TestExactDedup_PrefersRecencyWindowOccurrence(t *testing.T) {
	dup := longContent("duplicated content block ")
	other := longContent("distinct content block ")
	messages := []Message{
		{Index: 0, Content: &dup},
		{Index: 1, Content: &other},
		{Index: 2, Content: &dup},
	}
	// recencyStart = 2: index 2 is inside the recency window and should be
	// kept even though it is not the latest by absolute position tie-break.
	ann := exactDedup(messages, map[string]bool{}, 2)

	_, annotated := ann[2]
	assert.False(t, annotated)
	dupAnn, ok := ann[0]
	require.True(t, ok)
	assert.Equal(t, 2, dupAnn.DuplicateOfIndex)
}

func TestExactDedup_PreservedRoleNeverGrouped(t *testing.T) {
	dup := longContent("duplicated content block ")
	messages := []Message{
		{Role: "system", Content: &dup},
		{Role: "system", Content: &dup},
	}
	ann := exactDedup(messages, map[string]bool{"system": true}, 10)
	assert.Empty(t, ann)
}

func TestFuzzyDedup_NearDuplicateLinesMatch(t *testing.T) {
	base := strings.Join([]string{
		"line one of the log output",
		"line two of the log output",
		"line three of the log output",
		"line four of the log output",
		"line five of the log output",
	}, "\n")
	nearDup := strings.Join([]string{
		"line one of the log output",
		"line two of the log output",
		"line three of the log output",
		"line four of the log output CHANGED",
		"line five of the log output",
	}, "\n")

	messages := []Message{
		{Index: 0, Content: &base},
		{Index: 1, Content: &nearDup},
	}
	ann := fuzzyDedup(messages, map[string]bool{}, 10, 0.5, map[int]bool{})
	require.Len(t, ann, 1)
	a, ok := ann[0]
	require.True(t, ok)
	assert.True(t, a.IsFuzzy())
	assert.Equal(t, 1, a.DuplicateOfIndex)
}

func TestFuzzyDedup_BelowThresholdNotGrouped(t *testing.T) {
	base := strings.Join([]string{"alpha line", "beta line"}, "\n")
	unrelated := strings.Join([]string{"gamma line", "delta line"}, "\n")
	messages := []Message{
		{Index: 0, Content: &base},
		{Index: 1, Content: &unrelated},
	}
	ann := fuzzyDedup(messages, map[string]bool{}, 10, 0.85, map[int]bool{})
	assert.Empty(t, ann)
}

func TestJaccardLineMultisets(t *testing.T) {
	assert.Equal(t, 1.0, jaccardLineMultisets([]string{"a", "b"}, []string{"a", "b"}))
	assert.Equal(t, 0.0, jaccardLineMultisets([]string{"a"}, []string{"b"}))
	assert.Equal(t, 0.0, jaccardLineMultisets(nil, nil))
	assert.InDelta(t, 0.5, jaccardLineMultisets([]string{"a", "b"}, []string{"a", "c"}), 0.001)
}

func TestPickKeep_PrefersEarliestInRecencyWindow(t *testing.T) {
	assert.Equal(t, 3, pickKeep([]int{1, 3, 5}, 3))
	assert.Equal(t, 5, pickKeep([]int{1, 3, 5}, 10))
}

func TestUnionFind_TransitiveUnion(t *testing.T) {
	uf := newUnionFind(4)
	uf.union(0, 1)
	uf.union(1, 2)
	assert.Equal(t, uf.find(0), uf.find(2))
	assert.NotEqual(t, uf.find(0), uf.find(3))
}
