package compaction

import (
	"context"
	"regexp"
	"sort"
)

// Uncompress reverses Compress given a VerbatimStore holding the originals
// of every message Compress replaced. A message without "_uc_original"
// provenance passes through unchanged. A message whose provenance IDs are
// all missing from store also passes through unchanged (the summary itself,
// since there is nothing to recover). IDs that fail lookup are collected,
// deduplicated, into MissingIDs.
//
// With opts.Recursive, expansion repeats over the freshly emitted messages
// until a pass expands nothing further — this handles multi-layer
// compression, where an expanded original is itself the output of an
// earlier Compress call.
func Uncompress(ctx context.Context, messages []Message, store VerbatimStore, opts ExpandOptions) (ExpandResult, error) {
	out := append([]Message(nil), messages...)
	expandedTotal := 0
	var missingIDs []string
	missingSeen := make(map[string]bool)

	for {
		next := make([]Message, 0, len(out))
		expandedThisPass := 0

		for _, m := range out {
			prov, ok := m.Provenance()
			if !ok {
				next = append(next, m)
				continue
			}

			var found []Message
			for _, id := range prov.IDs {
				if orig, ok2 := store.Lookup(id); ok2 {
					found = append(found, orig)
				} else if !missingSeen[id] {
					missingSeen[id] = true
					missingIDs = append(missingIDs, id)
				}
			}

			if len(found) == 0 {
				next = append(next, m)
				continue
			}
			next = append(next, found...)
			expandedThisPass += len(found)
		}

		out = next
		expandedTotal += expandedThisPass
		if !opts.Recursive || expandedThisPass == 0 {
			break
		}
	}

	passthrough := 0
	for _, m := range out {
		if _, ok := m.Provenance(); !ok {
			passthrough++
		}
	}

	return ExpandResult{
		Messages:            out,
		MessagesExpanded:    expandedTotal,
		MessagesPassthrough: passthrough,
		MissingIDs:          missingIDs,
	}, nil
}

// Search scans messages and the verbatim store they were folded into for
// pattern, returning one SearchResult per hit. A message still carrying its
// own content (never compressed, no provenance) is matched directly. A
// message that was replaced by a summary is not matched against its own
// visible "[summary: ...]" text; instead its provenance IDs are looked up in
// store and the recovered originals are matched, with SummaryID set to the
// owning summary's ID — letting a caller trace a hit on folded-away content
// straight back to the compressed message that now owns it.
//
// pattern is matched as a literal substring unless useRegex is true, in
// which case it is compiled as a regular expression; an invalid pattern
// returns an error.
func Search(messages []Message, store VerbatimStore, pattern string, useRegex bool) ([]SearchResult, error) {
	var re *regexp.Regexp
	var err error
	if useRegex {
		re, err = regexp.Compile(pattern)
	} else {
		re, err = regexp.Compile(regexp.QuoteMeta(pattern))
	}
	if err != nil {
		return nil, err
	}

	inverse := make(map[string]string)
	for _, m := range messages {
		prov, ok := m.Provenance()
		if !ok {
			continue
		}
		for _, id := range prov.IDs {
			inverse[id] = prov.SummaryID
		}
	}

	var results []SearchResult

	for _, m := range messages {
		if _, ok := m.Provenance(); ok {
			continue
		}
		content := m.ContentOrEmpty()
		if content == "" {
			continue
		}
		matches := re.FindAllString(content, -1)
		if len(matches) == 0 {
			continue
		}
		results = append(results, SearchResult{
			SummaryID: m.ID,
			MessageID: m.ID,
			Content:   content,
			Matches:   matches,
		})
	}

	if store != nil {
		originalIDs := make([]string, 0, len(inverse))
		for id := range inverse {
			originalIDs = append(originalIDs, id)
		}
		sort.Strings(originalIDs)

		for _, id := range originalIDs {
			orig, ok := store.Lookup(id)
			if !ok {
				continue
			}
			content := orig.ContentOrEmpty()
			if content == "" {
				continue
			}
			matches := re.FindAllString(content, -1)
			if len(matches) == 0 {
				continue
			}
			results = append(results, SearchResult{
				SummaryID: inverse[id],
				MessageID: id,
				Content:   content,
				Matches:   matches,
			})
		}
	}

	return results, nil
}
