package compaction

import (
	"regexp"
	"strings"
)

// Segment is one piece of SplitCodeAndProse's output.
type Segment struct {
	Kind    SegmentKind
	Content string
}

// SegmentKind distinguishes prose from fenced code in a split.
type SegmentKind string

const (
	SegmentProse SegmentKind = "prose"
	SegmentCode  SegmentKind = "code"
)

// splitterFenceRe matches a fenced code block, allowing up to 3 leading
// spaces on the opening/closing fence, mirroring common Markdown leniency.
var splitterFenceRe = regexp.MustCompile("(?m)^\\s{0,3}```[a-zA-Z0-9_+-]*\\r?\\n[\\s\\S]*?\\r?\\n\\s{0,3}```")

// SplitCodeAndProse splits text into alternating prose/code segments in
// order. Empty (whitespace-only) prose segments are dropped.
func SplitCodeAndProse(text string) []Segment {
	matches := splitterFenceRe.FindAllStringIndex(text, -1)
	if len(matches) == 0 {
		if strings.TrimSpace(text) == "" {
			return nil
		}
		return []Segment{{Kind: SegmentProse, Content: text}}
	}

	var segments []Segment
	cursor := 0
	for _, m := range matches {
		start, end := m[0], m[1]
		if prose := text[cursor:start]; strings.TrimSpace(prose) != "" {
			segments = append(segments, Segment{Kind: SegmentProse, Content: prose})
		}
		segments = append(segments, Segment{Kind: SegmentCode, Content: text[start:end]})
		cursor = end
	}
	if prose := text[cursor:]; strings.TrimSpace(prose) != "" {
		segments = append(segments, Segment{Kind: SegmentProse, Content: prose})
	}
	return segments
}

// proseCharCount sums the character length of prose segments.
func proseCharCount(segments []Segment) int {
	total := 0
	for _, s := range segments {
		if s.Kind == SegmentProse {
			total += len(strings.TrimSpace(s.Content))
		}
	}
	return total
}
