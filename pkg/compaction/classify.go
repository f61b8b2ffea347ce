package compaction

// Classify decides the preservation tier for raw message content. It is a
// pure function of content: given the same string it always returns the
// same ClassifyResult, and never performs I/O.
//
// Two independent detector families union their reasons; any reason at all
// promotes the result to T0. With no detector firing, Classify falls back to
// a word-count heuristic: fewer than 20 whitespace-separated words is T2,
// otherwise T3.
func Classify(content string) ClassifyResult {
	var reasons []string

	for _, d := range structuralDetectors {
		if d.fn(content) {
			reasons = append(reasons, d.reason)
		}
	}
	for _, d := range contentTypeDetectors {
		if d.fn(content) {
			reasons = append(reasons, d.reason)
		}
	}

	if len(reasons) > 0 {
		confidence := 0.7 + 0.05*float64(len(reasons))
		if confidence > 0.95 {
			confidence = 0.95
		}
		return ClassifyResult{Decision: TierT0, Confidence: confidence, Reasons: reasons}
	}

	if wordCount(content) < 20 {
		return ClassifyResult{Decision: TierT2, Confidence: 0.65}
	}
	return ClassifyResult{Decision: TierT3, Confidence: 0.65}
}

// SecretScanFunc enriches classification with an external secret scan (see
// GitleaksScanner in secretscan.go). Classify itself stays pure and
// dependency-free; callers that want the enrichment call
// ClassifyWithSecretScan explicitly.
type SecretScanFunc func(content string) bool

// ClassifyWithSecretScan runs Classify and, if scan is non-nil and reports a
// finding, appends the "gitleaks_secret" HARD T0 reason — additive to, never
// a replacement for, the built-in api_key detector.
func ClassifyWithSecretScan(content string, scan SecretScanFunc) ClassifyResult {
	result := Classify(content)
	if scan == nil || !scan(content) {
		return result
	}
	if result.HasReason("gitleaks_secret") {
		return result
	}
	reasons := append(append([]string(nil), result.Reasons...), "gitleaks_secret")
	confidence := 0.7 + 0.05*float64(len(reasons))
	if confidence > 0.95 {
		confidence = 0.95
	}
	return ClassifyResult{Decision: TierT0, Confidence: confidence, Reasons: reasons}
}
