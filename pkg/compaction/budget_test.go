package compaction

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCeilDiv2(t *testing.T) {
	assert.Equal(t, 0, ceilDiv2(0))
	assert.Equal(t, 1, ceilDiv2(1))
	assert.Equal(t, 2, ceilDiv2(2))
	assert.Equal(t, 2, ceilDiv2(3))
}

func bigMessage(idx int, role string) Message {
	content := strings.Repeat("line of transcript content that is reasonably long. ", 20)
	return Message{ID: idxID(idx), Index: idx, Role: role, Content: &content}
}

func idxID(idx int) string {
	return "m" + string(rune('a'+idx))
}

func TestSearchTokenBudget_ConvergesToFeasibleWindow(t *testing.T) {
	messages := make([]Message, 10)
	for i := range messages {
		messages[i] = bigMessage(i, "user")
	}
	resolved := DefaultCompressOptions().resolve()

	total := estimateTokensTotal(messages)
	budget := total / 3 // force heavy compression

	result, err := searchTokenBudget(context.Background(), messages, resolved, budget)
	require.NoError(t, err)
	assert.True(t, result.Fits || result.RecencyWindow == resolved.minRecencyWindow)
	assert.GreaterOrEqual(t, result.RecencyWindow, resolved.minRecencyWindow)
	assert.LessOrEqual(t, result.RecencyWindow, len(messages)-1)
}

func TestSearchTokenBudget_RespectsMinRecencyWindow(t *testing.T) {
	messages := make([]Message, 6)
	for i := range messages {
		messages[i] = bigMessage(i, "user")
	}
	resolved := DefaultCompressOptions().resolve()
	resolved.minRecencyWindow = 3

	result, err := searchTokenBudget(context.Background(), messages, resolved, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, result.RecencyWindow)
}

func TestSearchTokenBudget_GenerousBudgetKeepsWideWindow(t *testing.T) {
	messages := make([]Message, 5)
	for i := range messages {
		messages[i] = bigMessage(i, "user")
	}
	resolved := DefaultCompressOptions().resolve()
	total := estimateTokensTotal(messages)

	result, err := searchTokenBudget(context.Background(), messages, resolved, total*2)
	require.NoError(t, err)
	assert.True(t, result.Fits)
	assert.Equal(t, len(messages)-1, result.RecencyWindow)
}
