package compaction

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessage_ContentOrEmpty(t *testing.T) {
	assert.Equal(t, "", Message{}.ContentOrEmpty())
	content := "hi"
	assert.Equal(t, "hi", Message{Content: &content}.ContentOrEmpty())
}

func TestMessage_WithContent_DoesNotAliasOriginal(t *testing.T) {
	orig := Message{ID: "m1", Metadata: map[string]any{"k": "v"}}
	updated := orig.WithContent("new content")

	assert.Equal(t, "new content", updated.ContentOrEmpty())
	assert.False(t, orig.HasContent())
	updated.Metadata["k"] = "changed"
	assert.Equal(t, "v", orig.Metadata["k"])
}

func TestMessage_WithMetadataValue_Additive(t *testing.T) {
	orig := Message{Metadata: map[string]any{"a": 1}}
	updated := orig.WithMetadataValue("b", 2)

	assert.Equal(t, 1, orig.Metadata["a"])
	assert.Len(t, orig.Metadata, 1)
	assert.Equal(t, 1, updated.Metadata["a"])
	assert.Equal(t, 2, updated.Metadata["b"])
}

func TestMessage_JSONRoundTrip_PreservesUnknownFields(t *testing.T) {
	raw := `{"id":"m1","index":3,"role":"user","content":"hello","custom_field":"kept"}`

	var m Message
	require.NoError(t, json.Unmarshal([]byte(raw), &m))
	assert.Equal(t, "m1", m.ID)
	assert.Equal(t, 3, m.Index)
	assert.Equal(t, "user", m.Role)
	assert.Equal(t, "hello", m.ContentOrEmpty())
	assert.Contains(t, m.Extra, "custom_field")

	out, err := json.Marshal(m)
	require.NoError(t, err)

	var roundtripped map[string]any
	require.NoError(t, json.Unmarshal(out, &roundtripped))
	assert.Equal(t, "kept", roundtripped["custom_field"])
	assert.Equal(t, "hello", roundtripped["content"])
}

func TestMessage_Provenance_FromGoStructAndFromJSONMap(t *testing.T) {
	p := OriginalProvenance{IDs: []string{"a", "b"}, SummaryID: "uc_sum_x", Version: 1}
	m := Message{}.WithProvenance(p)

	got, ok := m.Provenance()
	require.True(t, ok)
	assert.Equal(t, p, got)
	assert.True(t, m.IsCompressed())

	// Round-trip through JSON: provenance arrives as a generic map.
	raw, err := json.Marshal(m)
	require.NoError(t, err)
	var roundtripped Message
	require.NoError(t, json.Unmarshal(raw, &roundtripped))
	got2, ok2 := roundtripped.Provenance()
	require.True(t, ok2)
	assert.Equal(t, p.IDs, got2.IDs)
	assert.Equal(t, p.SummaryID, got2.SummaryID)
	assert.Equal(t, p.Version, got2.Version)
}

func TestMessage_Provenance_Absent(t *testing.T) {
	_, ok := Message{}.Provenance()
	assert.False(t, ok)
	assert.False(t, Message{}.IsCompressed())
}

func TestVerbatimMap_LookupAndMerge(t *testing.T) {
	a := VerbatimMap{"x": {ID: "x"}}
	b := VerbatimMap{"y": {ID: "y"}, "x": {ID: "x-overridden"}}

	merged := a.Merge(b)
	m, ok := merged.Lookup("x")
	require.True(t, ok)
	assert.Equal(t, "x-overridden", m.ID)
	_, ok = merged.Lookup("y")
	assert.True(t, ok)
	_, ok = merged.Lookup("missing")
	assert.False(t, ok)
}

func TestClassifyResult_HasReasonAndHardReason(t *testing.T) {
	r := ClassifyResult{Decision: TierT0, Reasons: []string{"url", "code_fence"}}
	assert.True(t, r.HasReason("url"))
	assert.False(t, r.HasReason("nope"))
	assert.True(t, r.HasHardReason())

	soft := ClassifyResult{Reasons: []string{"url", "email"}}
	assert.False(t, soft.HasHardReason())
}

func TestDedupAnnotation_IsFuzzy(t *testing.T) {
	assert.False(t, DedupAnnotation{}.IsFuzzy())
	sim := 0.9
	assert.True(t, DedupAnnotation{Similarity: &sim}.IsFuzzy())
}

func TestCompressOptions_Resolve_Defaults(t *testing.T) {
	r := DefaultCompressOptions().resolve()
	assert.Equal(t, 4, r.recencyWindow)
	assert.Equal(t, 0, r.minRecencyWindow)
	assert.True(t, r.dedup)
	assert.False(t, r.fuzzyDedup)
	assert.Equal(t, 0.85, r.fuzzyThreshold)
	assert.True(t, r.preserve["system"])
	assert.Len(t, r.preserve, 1)
}

func TestCompressOptions_Resolve_Overrides(t *testing.T) {
	opts := CompressOptions{
		Preserve:         []string{"system", "tool"},
		RecencyWindow:    IntPtr(0),
		MinRecencyWindow: IntPtr(2),
		Dedup:            BoolPtr(false),
		FuzzyDedup:       BoolPtr(true),
		FuzzyThreshold:   Float64Ptr(0.5),
	}
	r := opts.resolve()
	assert.Equal(t, 0, r.recencyWindow)
	assert.Equal(t, 2, r.minRecencyWindow)
	assert.False(t, r.dedup)
	assert.True(t, r.fuzzyDedup)
	assert.Equal(t, 0.5, r.fuzzyThreshold)
	assert.True(t, r.preserve["tool"])
}
