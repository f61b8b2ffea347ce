package compaction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitCodeAndProse_NoCode(t *testing.T) {
	segs := SplitCodeAndProse("just some plain prose")
	require.Len(t, segs, 1)
	assert.Equal(t, SegmentProse, segs[0].Kind)
}

func TestSplitCodeAndProse_EmptyReturnsNil(t *testing.T) {
	assert.Nil(t, SplitCodeAndProse(""))
	assert.Nil(t, SplitCodeAndProse("   \n  "))
}

func TestSplitCodeAndProse_AlternatingSegments(t *testing.T) {
	text := "Before the fence.\n```go\nfunc f() {}\n```\nAfter the fence."
	segs := SplitCodeAndProse(text)
	require.Len(t, segs, 3)
	assert.Equal(t, SegmentProse, segs[0].Kind)
	assert.Contains(t, segs[0].Content, "Before the fence")
	assert.Equal(t, SegmentCode, segs[1].Kind)
	assert.Contains(t, segs[1].Content, "func f()")
	assert.Equal(t, SegmentProse, segs[2].Kind)
	assert.Contains(t, segs[2].Content, "After the fence")
}

func TestSplitCodeAndProse_OnlyCode(t *testing.T) {
	text := "```go\nfunc f() {}\n```"
	segs := SplitCodeAndProse(text)
	require.Len(t, segs, 1)
	assert.Equal(t, SegmentCode, segs[0].Kind)
}

func TestProseCharCount(t *testing.T) {
	segs := []Segment{
		{Kind: SegmentProse, Content: "  hello  "},
		{Kind: SegmentCode, Content: "func f() {}"},
		{Kind: SegmentProse, Content: "world"},
	}
	assert.Equal(t, len("hello")+len("world"), proseCharCount(segs))
}
