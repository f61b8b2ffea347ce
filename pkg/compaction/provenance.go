package compaction

import (
	"sort"
	"strconv"
	"strings"
)

// djb2 computes Daniel J. Bernstein's string hash. Not cryptographic;
// collisions on summary_id are acceptable (spec's dedup grouping defends
// against hash collisions with a full string-equality sub-check instead).
func djb2(s string) uint64 {
	var h uint64 = 5381
	for i := 0; i < len(s); i++ {
		h = ((h << 5) + h) + uint64(s[i])
	}
	return h
}

// djb2Base36 hashes s with djb2 and renders it in base36, matching the
// summary_id / dedup-hash wire format used throughout this package.
func djb2Base36(s string) string {
	return strconv.FormatUint(djb2(s), 36)
}

// summaryIDFor computes the deterministic summary_id for a set of source
// message IDs: djb2 of the sorted IDs joined by NUL, base36-encoded, with
// the "uc_sum_" prefix.
func summaryIDFor(ids []string) string {
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)
	return "uc_sum_" + djb2Base36(strings.Join(sorted, "\x00"))
}

// buildProvenance constructs the _uc_original payload for a compressed
// message replacing the given source messages, in emission order.
func buildProvenance(sources []Message, sourceVersion int) OriginalProvenance {
	ids := make([]string, len(sources))
	var parentIDs []string
	for i, m := range sources {
		ids[i] = m.ID
		if p, ok := m.Provenance(); ok && p.SummaryID != "" {
			parentIDs = append(parentIDs, p.SummaryID)
		}
	}
	return OriginalProvenance{
		IDs:       ids,
		SummaryID: summaryIDFor(ids),
		ParentIDs: parentIDs,
		Version:   sourceVersion,
	}
}

// dedupContentHash hashes eligible message content the way exact dedup
// groups candidates: djb2 over "<len>:<content>", defended against
// collisions by a full string-equality sub-group afterward.
func dedupContentHash(content string) string {
	return djb2Base36(strconv.Itoa(len(content)) + ":" + content)
}
