package compaction

import "strings"

// fuzzyFingerprintLines and fuzzyFingerprintOverlap are internal tuning
// constants for the fuzzy-dedup candidate gate — a heuristic without a
// tuning study behind it, and deliberately not exposed as an option.
const (
	fuzzyFingerprintLines   = 5
	fuzzyFingerprintOverlap = 3
	fuzzyLengthRatioFloor   = 0.7
	dedupEligibleMinLen     = 200
)

func isDedupEligible(m Message, preserve map[string]bool) bool {
	if preserve[m.Role] {
		return false
	}
	if m.HasToolCalls() {
		return false
	}
	content := m.ContentOrEmpty()
	if strings.HasPrefix(content, "[summary:") {
		return false
	}
	return len(content) >= dedupEligibleMinLen
}

// exactDedup groups eligible messages by exact content equality and returns
// an annotation for every non-keep member of each ≥2 group.
func exactDedup(messages []Message, preserve map[string]bool, recencyStart int) map[int]DedupAnnotation {
	groups := make(map[string][]int) // hash -> candidate indices
	for i, m := range messages {
		if !isDedupEligible(m, preserve) {
			continue
		}
		h := dedupContentHash(m.ContentOrEmpty())
		groups[h] = append(groups[h], i)
	}

	annotations := make(map[int]DedupAnnotation)
	for _, candidates := range groups {
		// Sub-group by exact string equality to defend against hash
		// collisions.
		byContent := make(map[string][]int)
		for _, idx := range candidates {
			c := messages[idx].ContentOrEmpty()
			byContent[c] = append(byContent[c], idx)
		}
		for _, members := range byContent {
			if len(members) < 2 {
				continue
			}
			keep := pickKeep(members, recencyStart)
			keepLen := len(messages[keep].ContentOrEmpty())
			for _, idx := range members {
				if idx == keep {
					continue
				}
				annotations[idx] = DedupAnnotation{
					DuplicateOfIndex: keep,
					ContentLength:    keepLen,
				}
			}
		}
	}
	return annotations
}

// pickKeep selects, from a group of duplicate indices, the first occurrence
// inside the recency window (indices >= recencyStart) if any exist,
// otherwise the latest (highest-index) occurrence overall.
func pickKeep(members []int, recencyStart int) int {
	best := -1
	for _, idx := range members {
		if idx >= recencyStart {
			if best == -1 || idx < best {
				best = idx
			}
		}
	}
	if best != -1 {
		return best
	}
	latest := members[0]
	for _, idx := range members[1:] {
		if idx > latest {
			latest = idx
		}
	}
	return latest
}

func normalizeLines(content string) []string {
	var out []string
	for _, l := range strings.Split(content, "\n") {
		l = strings.ToLower(strings.TrimSpace(l))
		if l != "" {
			out = append(out, l)
		}
	}
	return out
}

type fuzzyCandidate struct {
	idx   int
	lines []string
	fp    []string
}

// fuzzyDedup runs near-duplicate detection over messages not already
// exact-deduped (tracked by the caller via excludeIdx).
func fuzzyDedup(messages []Message, preserve map[string]bool, recencyStart int, threshold float64, excludeIdx map[int]bool) map[int]DedupAnnotation {
	var candidates []fuzzyCandidate
	for i, m := range messages {
		if excludeIdx[i] || !isDedupEligible(m, preserve) {
			continue
		}
		lines := normalizeLines(m.ContentOrEmpty())
		if len(lines) < 2 {
			continue
		}
		fp := lines
		if len(fp) > fuzzyFingerprintLines {
			fp = fp[:fuzzyFingerprintLines]
		}
		candidates = append(candidates, fuzzyCandidate{idx: i, lines: lines, fp: fp})
	}

	// Inverted index: fingerprint line -> candidate positions (indices into
	// the candidates slice).
	inverted := make(map[string][]int)
	for ci, c := range candidates {
		seen := make(map[string]bool)
		for _, l := range c.fp {
			if seen[l] {
				continue
			}
			seen[l] = true
			inverted[l] = append(inverted[l], ci)
		}
	}

	uf := newUnionFind(len(candidates))
	matched := make(map[[2]int]bool)

	for _, group := range inverted {
		for a := 0; a < len(group); a++ {
			for b := a + 1; b < len(group); b++ {
				ci, cj := group[a], group[b]
				if ci > cj {
					ci, cj = cj, ci
				}
				key := [2]int{ci, cj}
				if matched[key] {
					continue
				}
				matched[key] = true
				if sharedFingerprintLines(candidates[ci].fp, candidates[cj].fp) < fuzzyFingerprintOverlap {
					continue
				}
				if !lengthRatioOK(len(candidates[ci].lines), len(candidates[cj].lines)) {
					continue
				}
				sim := jaccardLineMultisets(candidates[ci].lines, candidates[cj].lines)
				if sim >= threshold {
					uf.union(ci, cj)
				}
			}
		}
	}

	groupsByRoot := make(map[int][]int)
	for ci := range candidates {
		root := uf.find(ci)
		groupsByRoot[root] = append(groupsByRoot[root], ci)
	}

	annotations := make(map[int]DedupAnnotation)
	for _, members := range groupsByRoot {
		if len(members) < 2 {
			continue
		}
		msgIndices := make([]int, len(members))
		for i, ci := range members {
			msgIndices[i] = candidates[ci].idx
		}
		keep := pickKeep(msgIndices, recencyStart)

		for i, ci := range members {
			idx := msgIndices[i]
			if idx == keep {
				continue
			}
			keepCI := -1
			for _, other := range members {
				if candidates[other].idx == keep {
					keepCI = other
					break
				}
			}
			sim := jaccardLineMultisets(candidates[ci].lines, candidates[keepCI].lines)
			annotations[idx] = DedupAnnotation{
				DuplicateOfIndex: keep,
				ContentLength:    len(messages[idx].ContentOrEmpty()),
				Similarity:       &sim,
			}
		}
	}
	return annotations
}

func sharedFingerprintLines(a, b []string) int {
	setA := make(map[string]bool, len(a))
	for _, l := range a {
		setA[l] = true
	}
	shared := 0
	seen := make(map[string]bool)
	for _, l := range b {
		if setA[l] && !seen[l] {
			seen[l] = true
			shared++
		}
	}
	return shared
}

func lengthRatioOK(a, b int) bool {
	if a == 0 || b == 0 {
		return false
	}
	lo, hi := a, b
	if lo > hi {
		lo, hi = hi, lo
	}
	return float64(lo)/float64(hi) >= fuzzyLengthRatioFloor
}

// jaccardLineMultisets computes Jaccard similarity over two line multisets,
// using min/max of per-line frequency counts for intersection/union, the
// same technique applied at word granularity for semantic similarity
// scoring elsewhere, reapplied here at line granularity.
func jaccardLineMultisets(a, b []string) float64 {
	freqA := make(map[string]int, len(a))
	for _, l := range a {
		freqA[l]++
	}
	freqB := make(map[string]int, len(b))
	for _, l := range b {
		freqB[l]++
	}

	lines := make(map[string]bool, len(freqA)+len(freqB))
	for l := range freqA {
		lines[l] = true
	}
	for l := range freqB {
		lines[l] = true
	}

	var intersection, union int
	for l := range lines {
		fa, fb := freqA[l], freqB[l]
		if fa < fb {
			intersection += fa
			union += fb
		} else {
			intersection += fb
			union += fa
		}
	}
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// unionFind is a small disjoint-set structure for transitive fuzzy-match
// grouping.
type unionFind struct {
	parent []int
}

func newUnionFind(n int) *unionFind {
	p := make([]int, n)
	for i := range p {
		p[i] = i
	}
	return &unionFind{parent: p}
}

func (u *unionFind) find(x int) int {
	for u.parent[x] != x {
		u.parent[x] = u.parent[u.parent[x]]
		x = u.parent[x]
	}
	return x
}

func (u *unionFind) union(a, b int) {
	ra, rb := u.find(a), u.find(b)
	if ra != rb {
		u.parent[ra] = rb
	}
}
