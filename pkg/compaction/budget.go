package compaction

import "context"

// probeResult caches one compressCore invocation at a given recency window
// during the budget binary search, keyed by recencyWindow.
type probeResult struct {
	result CompressResult
	err    error
}

func ceilDiv2(a int) int {
	return (a + 1) / 2
}

// searchTokenBudget finds the largest recencyWindow in
// [resolved.minRecencyWindow, len(messages)-1] whose compressed result fits
// within budget tokens, exploiting the monotonicity invariant that token
// count is non-increasing as recencyWindow decreases. It always returns the
// result at the window it converges on, even if that result does not fit
// (budget infeasibility) — the caller reports Fits accordingly.
func searchTokenBudget(ctx context.Context, messages []Message, resolved resolvedCompressOptions, budget int) (CompressResult, error) {
	n := len(messages)
	lo := resolved.minRecencyWindow
	if lo < 0 {
		lo = 0
	}
	hi := n - 1
	if hi < lo {
		hi = lo
	}

	cache := make(map[int]probeResult)
	probe := func(r int) (CompressResult, error, bool) {
		if p, ok := cache[r]; ok {
			return p.result, p.err, p.err == nil && estimateTokensTotal(p.result.Messages) <= budget
		}
		ro := resolved
		ro.recencyWindow = r
		res, err := compressCore(ctx, messages, ro)
		cache[r] = probeResult{result: res, err: err}
		if err != nil {
			return res, err, false
		}
		return res, nil, estimateTokensTotal(res.Messages) <= budget
	}

	for lo < hi {
		mid := lo + ceilDiv2(hi-lo)
		_, err, fits := probe(mid)
		if err != nil {
			return CompressResult{}, err
		}
		if fits {
			lo = mid
		} else {
			hi = mid - 1
		}
	}

	final, err, fits := probe(lo)
	if err != nil {
		return CompressResult{}, err
	}
	final.Fits = fits
	final.TokenCount = estimateTokensTotal(final.Messages)
	final.RecencyWindow = lo
	return final, nil
}
