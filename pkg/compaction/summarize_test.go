package compaction

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarize_PicksHighScoringSentences(t *testing.T) {
	text := "Greetings. The PaymentProcessor must never retry failed charges. " +
		"We had a nice chat about the weather today and other small talk."
	result := Summarize(text, 200)
	assert.Contains(t, result, "PaymentProcessor")
}

func TestSummarize_TruncatesToBudget(t *testing.T) {
	text := "This is a reasonably long sentence that will exceed a tiny budget easily."
	result := Summarize(text, 10)
	assert.LessOrEqual(t, len(result), 10)
}

func TestSummarize_EmptyText(t *testing.T) {
	assert.Equal(t, "", Summarize("", 100))
}

func TestIsStructuredOutput(t *testing.T) {
	structured := "PASS pkg/a\nPASS pkg/b\nFAIL pkg/c\nok.go:12: error\nok.go:13: error\nkey: value\n"
	assert.True(t, IsStructuredOutput(structured))

	prose := "This is an ordinary paragraph of conversational prose with no special structure at all in it."
	assert.False(t, IsStructuredOutput(prose))
}

func TestSummarizeStructured_ExtractsFilesAndStatus(t *testing.T) {
	text := "pkg/foo.go:10: something happened\npkg/bar.go:20: PASS\nunrelated line\n"
	result := SummarizeStructured(text, 200)
	assert.Contains(t, result, "pkg/foo.go")
	assert.Contains(t, result, "PASS")
}

func TestSummarizeStructured_FallsBackToHeadTail(t *testing.T) {
	text := "line one here\nline two here\nline three here\nline four here\n"
	result := SummarizeStructured(text, 200)
	assert.Contains(t, result, "lines)")
}

func TestCallSummarizer_NilFallsBack(t *testing.T) {
	fallback := func() string { return "fallback" }
	result := callSummarizer(context.Background(), nil, "original text here", SummarizeOptions{}, fallback)
	assert.Equal(t, "fallback", result)
}

func TestCallSummarizer_UsesSuccessfulShorterResult(t *testing.T) {
	s := func(ctx context.Context, text string, opts SummarizeOptions) (string, error) {
		return "short", nil
	}
	result := callSummarizer(context.Background(), s, "a much longer piece of original text", SummarizeOptions{}, func() string { return "fallback" })
	assert.Equal(t, "short", result)
}

func TestCallSummarizer_FallsBackOnError(t *testing.T) {
	s := func(ctx context.Context, text string, opts SummarizeOptions) (string, error) {
		return "", errors.New("boom")
	}
	result := callSummarizer(context.Background(), s, "original text", SummarizeOptions{}, func() string { return "fallback" })
	assert.Equal(t, "fallback", result)
}

func TestCallSummarizer_FallsBackWhenResultNotShorter(t *testing.T) {
	s := func(ctx context.Context, text string, opts SummarizeOptions) (string, error) {
		return text + " even longer now", nil
	}
	result := callSummarizer(context.Background(), s, "original", SummarizeOptions{}, func() string { return "fallback" })
	assert.Equal(t, "fallback", result)
}

func TestCallSummarizer_RecoversFromPanic(t *testing.T) {
	s := func(ctx context.Context, text string, opts SummarizeOptions) (string, error) {
		panic("user callback exploded")
	}
	result := callSummarizer(context.Background(), s, "original text here", SummarizeOptions{}, func() string { return "fallback" })
	assert.Equal(t, "fallback", result)
}
