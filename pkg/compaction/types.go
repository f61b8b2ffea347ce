package compaction

import (
	"context"
	"encoding/json"
	"fmt"
)

// wellKnownMessageFields are the top-level keys Message understands. Every
// other top-level key round-trips through Extra untouched.
var wellKnownMessageFields = map[string]struct{}{
	"id":         {},
	"index":      {},
	"role":       {},
	"content":    {},
	"metadata":   {},
	"tool_calls": {},
}

// OriginalMetadataKey is the metadata key the engine reserves for provenance.
const OriginalMetadataKey = "_uc_original"

// ToolCall is one entry of a message's tool-call sequence. Its presence
// (non-empty) on a Message hard-preserves that message.
type ToolCall struct {
	ID        string          `json:"id,omitempty"`
	Name      string          `json:"name,omitempty"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
	Result    json.RawMessage `json:"result,omitempty"`
}

// Message is a tagged record: a typed core the engine reads, plus an opaque
// attribute bag for everything else. The engine never mutates a Message in
// place — every operation returns fresh values.
type Message struct {
	ID        string
	Index     int
	Role      string
	Content   *string
	Metadata  map[string]any
	ToolCalls []ToolCall

	// Extra holds any top-level JSON field this type doesn't name, so that
	// marshaling a Message back out reproduces fields the engine never
	// looked at.
	Extra map[string]json.RawMessage
}

// HasContent reports whether the message carries string content.
func (m Message) HasContent() bool {
	return m.Content != nil
}

// ContentOrEmpty returns the message content, or "" if absent.
func (m Message) ContentOrEmpty() string {
	if m.Content == nil {
		return ""
	}
	return *m.Content
}

// HasToolCalls reports whether the message carries a non-empty tool-call
// sequence.
func (m Message) HasToolCalls() bool {
	return len(m.ToolCalls) > 0
}

// WithContent returns a copy of m with content replaced.
func (m Message) WithContent(content string) Message {
	cp := m.clone()
	cp.Content = &content
	return cp
}

// WithMetadataValue returns a copy of m with metadata[key] = value.
func (m Message) WithMetadataValue(key string, value any) Message {
	cp := m.clone()
	meta := make(map[string]any, len(cp.Metadata)+1)
	for k, v := range cp.Metadata {
		meta[k] = v
	}
	meta[key] = value
	cp.Metadata = meta
	return cp
}

// clone makes a shallow copy of m with fresh top-level containers, so callers
// can mutate the copy's Metadata/ToolCalls/Extra without aliasing the
// original — the engine treats every input Message as immutable.
func (m Message) clone() Message {
	cp := m
	if m.Metadata != nil {
		cp.Metadata = make(map[string]any, len(m.Metadata))
		for k, v := range m.Metadata {
			cp.Metadata[k] = v
		}
	}
	if m.ToolCalls != nil {
		cp.ToolCalls = append([]ToolCall(nil), m.ToolCalls...)
	}
	if m.Extra != nil {
		cp.Extra = make(map[string]json.RawMessage, len(m.Extra))
		for k, v := range m.Extra {
			cp.Extra[k] = v
		}
	}
	return cp
}

// OriginalProvenance is the shape of metadata["_uc_original"] on a
// CompressedMessage.
type OriginalProvenance struct {
	IDs       []string `json:"ids"`
	SummaryID string   `json:"summary_id"`
	// ParentIDs is present iff any source message itself carried provenance.
	ParentIDs []string `json:"parent_ids,omitempty"`
	Version   int      `json:"version"`
}

// Provenance extracts metadata["_uc_original"] from m, if present.
func (m Message) Provenance() (OriginalProvenance, bool) {
	raw, ok := m.Metadata[OriginalMetadataKey]
	if !ok {
		return OriginalProvenance{}, false
	}
	switch v := raw.(type) {
	case OriginalProvenance:
		return v, true
	case map[string]any:
		// Content that round-tripped through JSON arrives as a generic map.
		p := OriginalProvenance{}
		if ids, ok := v["ids"].([]any); ok {
			for _, id := range ids {
				if s, ok := id.(string); ok {
					p.IDs = append(p.IDs, s)
				}
			}
		}
		if sid, ok := v["summary_id"].(string); ok {
			p.SummaryID = sid
		}
		if pids, ok := v["parent_ids"].([]any); ok {
			for _, id := range pids {
				if s, ok := id.(string); ok {
					p.ParentIDs = append(p.ParentIDs, s)
				}
			}
		}
		if ver, ok := v["version"].(float64); ok {
			p.Version = int(ver)
		}
		return p, true
	default:
		return OriginalProvenance{}, false
	}
}

// WithProvenance returns a copy of m carrying the given provenance.
func (m Message) WithProvenance(p OriginalProvenance) Message {
	return m.WithMetadataValue(OriginalMetadataKey, p)
}

// IsCompressed reports whether m carries `_uc_original` provenance.
func (m Message) IsCompressed() bool {
	_, ok := m.Provenance()
	return ok
}

// MarshalJSON implements json.Marshaler, emitting well-known fields alongside
// whatever Extra carries, so round-tripping a Message through JSON preserves
// fields the engine never inspected.
func (m Message) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(m.Extra)+6)
	for k, v := range m.Extra {
		out[k] = v
	}

	put := func(key string, v any) error {
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("marshal message field %q: %w", key, err)
		}
		out[key] = raw
		return nil
	}

	if err := put("id", m.ID); err != nil {
		return nil, err
	}
	if err := put("index", m.Index); err != nil {
		return nil, err
	}
	if m.Role != "" {
		if err := put("role", m.Role); err != nil {
			return nil, err
		}
	}
	if m.Content != nil {
		if err := put("content", *m.Content); err != nil {
			return nil, err
		}
	}
	if len(m.Metadata) > 0 {
		if err := put("metadata", m.Metadata); err != nil {
			return nil, err
		}
	}
	if len(m.ToolCalls) > 0 {
		if err := put("tool_calls", m.ToolCalls); err != nil {
			return nil, err
		}
	}

	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler, routing well-known fields onto
// typed struct fields and leaving everything else in Extra.
func (m *Message) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if v, ok := raw["id"]; ok {
		if err := json.Unmarshal(v, &m.ID); err != nil {
			return fmt.Errorf("unmarshal message.id: %w", err)
		}
	}
	if v, ok := raw["index"]; ok {
		if err := json.Unmarshal(v, &m.Index); err != nil {
			return fmt.Errorf("unmarshal message.index: %w", err)
		}
	}
	if v, ok := raw["role"]; ok {
		if err := json.Unmarshal(v, &m.Role); err != nil {
			return fmt.Errorf("unmarshal message.role: %w", err)
		}
	}
	if v, ok := raw["content"]; ok {
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return fmt.Errorf("unmarshal message.content: %w", err)
		}
		m.Content = &s
	}
	if v, ok := raw["metadata"]; ok {
		if err := json.Unmarshal(v, &m.Metadata); err != nil {
			return fmt.Errorf("unmarshal message.metadata: %w", err)
		}
	}
	if v, ok := raw["tool_calls"]; ok {
		if err := json.Unmarshal(v, &m.ToolCalls); err != nil {
			return fmt.Errorf("unmarshal message.tool_calls: %w", err)
		}
	}

	m.Extra = make(map[string]json.RawMessage, len(raw))
	for k, v := range raw {
		if _, known := wellKnownMessageFields[k]; known {
			continue
		}
		m.Extra[k] = v
	}
	if len(m.Extra) == 0 {
		m.Extra = nil
	}

	return nil
}

// VerbatimMap is a side store of original messages keyed by ID. It satisfies
// VerbatimStore directly.
type VerbatimMap map[string]Message

// Lookup implements VerbatimStore.
func (v VerbatimMap) Lookup(id string) (Message, bool) {
	m, ok := v[id]
	return m, ok
}

// Merge returns a new VerbatimMap containing every entry of v and other,
// with other's entries taking precedence on key collision.
func (v VerbatimMap) Merge(other VerbatimMap) VerbatimMap {
	out := make(VerbatimMap, len(v)+len(other))
	for k, m := range v {
		out[k] = m
	}
	for k, m := range other {
		out[k] = m
	}
	return out
}

// VerbatimStore abstracts lookup of an original message by ID, accepting
// either a map-backed store (VerbatimMap) or a caller-supplied callback
// (VerbatimLookupFunc) without changing the shape expand/search operate on.
type VerbatimStore interface {
	Lookup(id string) (Message, bool)
}

// VerbatimLookupFunc adapts a plain function to VerbatimStore.
type VerbatimLookupFunc func(id string) (Message, bool)

// Lookup implements VerbatimStore.
func (f VerbatimLookupFunc) Lookup(id string) (Message, bool) {
	return f(id)
}

// Tier is a classifier decision.
type Tier string

const (
	TierT0 Tier = "T0"
	TierT2 Tier = "T2"
	TierT3 Tier = "T3"
)

// ClassifyResult is the outcome of classifying one message's content.
type ClassifyResult struct {
	Decision   Tier
	Confidence float64
	Reasons    []string
}

// HasReason reports whether reason is present in the result.
func (c ClassifyResult) HasReason(reason string) bool {
	for _, r := range c.Reasons {
		if r == reason {
			return true
		}
	}
	return false
}

// HasHardReason reports whether any of the result's reasons is a HARD T0
// reason (see hardT0Reasons).
func (c ClassifyResult) HasHardReason() bool {
	for _, r := range c.Reasons {
		if hardT0Reasons[r] {
			return true
		}
	}
	return false
}

// CompressionStats summarizes one Compress call.
type CompressionStats struct {
	OriginalVersion      int
	Ratio                float64
	TokenRatio           float64
	MessagesCompressed   int
	MessagesPreserved    int
	MessagesDeduped      int
	MessagesFuzzyDeduped int
}

// DedupAnnotation marks a message as a duplicate of an earlier/later one.
// Similarity is nil for exact duplicates, and in [0,1] for fuzzy ones.
type DedupAnnotation struct {
	DuplicateOfIndex int
	ContentLength    int
	Similarity       *float64
}

// IsFuzzy reports whether this annotation came from fuzzy dedup.
func (d DedupAnnotation) IsFuzzy() bool {
	return d.Similarity != nil
}

// SummarizeMode selects the prompt variant create_summarizer builds.
type SummarizeMode string

const (
	SummarizeModeNormal     SummarizeMode = "normal"
	SummarizeModeAggressive SummarizeMode = "aggressive"
)

// SummarizeOptions is passed to a Summarizer capability for one call.
type SummarizeOptions struct {
	// BudgetTokens is the target length, in estimated tokens, of the result.
	BudgetTokens int
	// Structured hints that the source text looks like tool/grep/test
	// output, so a LLM-backed Summarizer may want to preserve file:line
	// references and status words over connective prose.
	Structured bool
	Mode       SummarizeMode
}

// Summarizer is the engine's single abstraction over an optional LLM
// backend. It looks asynchronous (it takes a context.Context) even though
// the deterministic default implementation completes synchronously. Any
// error it returns is treated by the orchestrator as a recoverable failure:
// the caller falls back to the deterministic summarizer and never surfaces
// the error.
type Summarizer func(ctx context.Context, text string, opts SummarizeOptions) (string, error)

// LLMCaller is the single call a CreateSummarizer-built Summarizer makes:
// send a fully-built prompt, get back raw text.
type LLMCaller func(ctx context.Context, prompt string) (string, error)

// CompressOptions configures Compress. Zero-valued optional pointer fields
// take their documented defaults; use pointer helpers (IntPtr, BoolPtr,
// Float64Ptr) or DefaultCompressOptions to build one.
type CompressOptions struct {
	// Preserve lists roles that are always preserved. Defaults to
	// []string{"system"}.
	Preserve []string
	// RecencyWindow is the tail length, in messages, that is never
	// compressed. Defaults to 4. 0 is a valid, explicit value.
	RecencyWindow *int
	// SourceVersion is mirrored into every emitted provenance's Version.
	SourceVersion int
	// Summarizer, when non-nil, is tried before the deterministic
	// summarizer for every compressible run.
	Summarizer Summarizer
	// TokenBudget, when non-nil, switches Compress into budget-search mode.
	TokenBudget *int
	// MinRecencyWindow bounds the budget search's lower end. Defaults to 0.
	MinRecencyWindow *int
	// Dedup toggles exact deduplication. Defaults to true.
	Dedup *bool
	// FuzzyDedup toggles fuzzy (near-duplicate) deduplication in addition
	// to exact. Defaults to false.
	FuzzyDedup *bool
	// FuzzyThreshold is the minimum Jaccard similarity to call two messages
	// near-duplicates. Defaults to 0.85.
	FuzzyThreshold *float64
	// Mode selects the compression strategy. "" (the default) is the
	// standard lossless mode this package implements. "lossy" is reserved
	// and always returns ErrUnsupportedMode.
	Mode string
}

type resolvedCompressOptions struct {
	preserve         map[string]bool
	recencyWindow    int
	sourceVersion    int
	summarizer       Summarizer
	tokenBudget      *int
	minRecencyWindow int
	dedup            bool
	fuzzyDedup       bool
	fuzzyThreshold   float64
	mode             string
}

func (o CompressOptions) resolve() resolvedCompressOptions {
	r := resolvedCompressOptions{
		recencyWindow:    4,
		sourceVersion:    o.SourceVersion,
		summarizer:       o.Summarizer,
		tokenBudget:      o.TokenBudget,
		minRecencyWindow: 0,
		dedup:            true,
		fuzzyDedup:       false,
		fuzzyThreshold:   0.85,
		mode:             o.Mode,
	}

	preserve := o.Preserve
	if preserve == nil {
		preserve = []string{"system"}
	}
	r.preserve = make(map[string]bool, len(preserve))
	for _, role := range preserve {
		r.preserve[role] = true
	}

	if o.RecencyWindow != nil {
		r.recencyWindow = *o.RecencyWindow
	}
	if o.MinRecencyWindow != nil {
		r.minRecencyWindow = *o.MinRecencyWindow
	}
	if o.Dedup != nil {
		r.dedup = *o.Dedup
	}
	if o.FuzzyDedup != nil {
		r.fuzzyDedup = *o.FuzzyDedup
	}
	if o.FuzzyThreshold != nil {
		r.fuzzyThreshold = *o.FuzzyThreshold
	}

	return r
}

// DefaultCompressOptions returns the documented defaults.
func DefaultCompressOptions() CompressOptions {
	return CompressOptions{}
}

// ExpandOptions configures Uncompress.
type ExpandOptions struct {
	// Recursive, when true, repeats expansion until no emitted message
	// still carries provenance and the previous pass expanded ≥1 message.
	Recursive bool
}

// CompressResult is the return value of Compress.
type CompressResult struct {
	Messages      []Message
	Verbatim      VerbatimMap
	Stats         CompressionStats
	Fits          bool
	TokenCount    int
	RecencyWindow int
}

// ExpandResult is the return value of Uncompress.
type ExpandResult struct {
	Messages            []Message
	MessagesExpanded    int
	MessagesPassthrough int
	MissingIDs          []string
}

// SearchResult is one hit from Search.
type SearchResult struct {
	SummaryID string
	MessageID string
	Content   string
	Matches   []string
}

// IntPtr is a small helper for building CompressOptions literals.
func IntPtr(v int) *int { return &v }

// BoolPtr is a small helper for building CompressOptions literals.
func BoolPtr(v bool) *bool { return &v }

// Float64Ptr is a small helper for building CompressOptions literals.
func Float64Ptr(v float64) *float64 { return &v }
