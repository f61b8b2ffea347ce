package compaction

import (
	"context"
	"fmt"
	"strings"
)

// defaultPreserveTerms are always appended to the "do not lose" list the
// prompt template builds, regardless of caller-supplied PreserveTerms.
var defaultPreserveTerms = []string{
	"code references", "file paths", "identifiers", "URLs", "API keys",
	"error messages", "numbers", "technical decisions",
}

// SummarizerOptions configures CreateSummarizer / CreateEscalatingSummarizer.
type SummarizerOptions struct {
	// SystemPrompt, if set, is prepended to the built prompt's header.
	SystemPrompt string
	// PreserveTerms extends the fixed preserve list the prompt instructs
	// the model to keep.
	PreserveTerms []string
	// Mode selects normal or aggressive phrasing. Ignored by
	// CreateEscalatingSummarizer, which builds both variants itself.
	Mode SummarizeMode
}

// buildPrompt renders the fixed prompt template: an instruction line, a
// token budget line, a rules block, and the text to summarize.
func buildPrompt(text string, budgetTokens int, mode SummarizeMode, opts SummarizerOptions) string {
	var b strings.Builder

	if opts.SystemPrompt != "" {
		b.WriteString(opts.SystemPrompt)
		b.WriteString("\n\n")
	}

	n := budgetTokens
	instruction := "Summarize the following text."
	if mode == SummarizeModeAggressive {
		n = n / 2
		instruction = "Summarize the following text as terse bullet points."
	}

	preserve := append(append([]string(nil), defaultPreserveTerms...), opts.PreserveTerms...)

	fmt.Fprintln(&b, instruction)
	fmt.Fprintf(&b, "Keep the summary under %d tokens.\n", n)
	b.WriteString("Rules:\n")
	fmt.Fprintf(&b, "- Preserve: %s.\n", strings.Join(preserve, ", "))
	b.WriteString("- Remove filler and conversational padding.\n")
	b.WriteString("- Keep the original register.\n")
	b.WriteString("- Output only the summary, nothing else.\n")
	b.WriteString("\nText:\n")
	b.WriteString(text)

	return b.String()
}

// CreateSummarizer wraps an LLMCaller with the engine's fixed prompt
// template, returning a Summarizer ready to pass as
// CompressOptions.Summarizer. mode:aggressive (via opts.Mode) halves the
// token budget and swaps the instruction to terse bullet points.
func CreateSummarizer(callLLM LLMCaller, opts SummarizerOptions) Summarizer {
	mode := opts.Mode
	if mode == "" {
		mode = SummarizeModeNormal
	}
	return func(ctx context.Context, text string, sOpts SummarizeOptions) (string, error) {
		prompt := buildPrompt(text, sOpts.BudgetTokens, mode, opts)
		return callLLM(ctx, prompt)
	}
}

// CreateEscalatingSummarizer runs the normal-mode summarizer first; if its
// result is empty, not strictly shorter than the input, or errors, it
// retries once with the aggressive-mode variant at half the response
// budget. Errors from the aggressive attempt propagate to the caller, which
// treats them as an ordinary summarizer failure and falls back to the
// deterministic summarizer.
func CreateEscalatingSummarizer(callLLM LLMCaller, opts SummarizerOptions) Summarizer {
	normalOpts := opts
	normalOpts.Mode = SummarizeModeNormal
	aggressiveOpts := opts
	aggressiveOpts.Mode = SummarizeModeAggressive

	normal := CreateSummarizer(callLLM, normalOpts)
	aggressive := CreateSummarizer(callLLM, aggressiveOpts)

	return func(ctx context.Context, text string, sOpts SummarizeOptions) (string, error) {
		out, err := normal(ctx, text, sOpts)
		if err == nil && out != "" && len(out) < len(text) {
			return out, nil
		}
		return aggressive(ctx, text, sOpts)
	}
}
