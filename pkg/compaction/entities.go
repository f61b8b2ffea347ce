package compaction

import (
	"regexp"
	"strings"
)

const maxEntities = 10

// commonStarters are capitalized words that begin sentences for ordinary
// grammatical reasons and are therefore excluded from proper-noun detection
// — a fixed, roughly 100-word list covering pronouns, articles, common
// sentence-initial adverbs/conjunctions, and auxiliary verbs.
var commonStarters = buildCommonStarters()

func buildCommonStarters() map[string]bool {
	words := []string{
		"the", "a", "an", "this", "that", "these", "those", "it", "its",
		"i", "we", "you", "he", "she", "they", "there", "here",
		"and", "but", "or", "nor", "so", "yet", "if", "when", "while",
		"because", "although", "though", "since", "unless", "until",
		"after", "before", "as", "once",
		"in", "on", "at", "by", "for", "from", "of", "to", "with", "without",
		"is", "are", "was", "were", "be", "been", "being",
		"do", "does", "did", "have", "has", "had",
		"can", "could", "will", "would", "shall", "should", "may", "might", "must",
		"not", "no", "yes", "ok", "okay", "well", "now", "then", "also",
		"first", "second", "third", "next", "finally", "however", "therefore",
		"thus", "hence", "meanwhile", "moreover", "furthermore", "additionally",
		"note", "important", "please", "let", "lets", "looking", "looks",
		"here's", "that's", "it's", "we've", "you've", "i've", "don't",
		"what", "who", "whom", "whose", "which", "why", "how", "where",
		"great", "sure", "ok,", "thanks", "got", "all", "some", "any", "each",
		"every", "both", "either", "neither", "one", "two", "three",
	}
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}

var (
	sentenceSplitterRe = regexp.MustCompile(`[.!?\n]+`)
	properNounWordRe   = regexp.MustCompile(`^[A-Z][a-z]+$`)
	pascalCaseRe       = regexp.MustCompile(`\b[A-Z][a-zA-Z0-9]*[a-z][A-Z][a-zA-Z0-9]*\b`)
	camelCaseRe        = regexp.MustCompile(`\b[a-z]+[A-Z][a-zA-Z0-9]*\b`)
	snakeCaseRe        = regexp.MustCompile(`\b[a-z][a-z0-9]*(?:_[a-z0-9]+)+\b`)
	vowellessAbbrevRe  = regexp.MustCompile(`\b[bcdfghjklmnpqrstvwxz]{3,}\b`)
)

// ExtractEntities collects, in first-seen order, up to 10 distinct
// identifier-like strings from text: proper nouns (excluding sentence
// starters), PascalCase/camelCase/snake_case identifiers, lowercase
// vowelless abbreviations, and numbers-with-units.
func ExtractEntities(text string) []string {
	seen := make(map[string]bool)
	var out []string

	add := func(s string) bool {
		if s == "" || seen[s] {
			return len(out) >= maxEntities
		}
		seen[s] = true
		out = append(out, s)
		return len(out) >= maxEntities
	}

	for _, sentence := range sentenceSplitterRe.Split(text, -1) {
		words := wordSplitRe.Split(strings.TrimSpace(sentence), -1)
		for i, w := range words {
			w = strings.Trim(w, `,;:"'()[]{}`)
			if w == "" {
				continue
			}
			if i == 0 {
				// First word of a sentence: skip unless clearly a proper
				// noun distinguishable from ordinary capitalization (a
				// multi-word capitalized run, or a known starter).
				if commonStarters[strings.ToLower(w)] {
					continue
				}
			}
			if properNounWordRe.MatchString(w) && !commonStarters[strings.ToLower(w)] {
				if add(w) {
					return out
				}
			}
		}
	}

	for _, m := range pascalCaseRe.FindAllString(text, -1) {
		if add(m) {
			return out
		}
	}
	for _, m := range camelCaseRe.FindAllString(text, -1) {
		if add(m) {
			return out
		}
	}
	for _, m := range snakeCaseRe.FindAllString(text, -1) {
		if add(m) {
			return out
		}
	}
	for _, m := range vowellessAbbrevRe.FindAllString(text, -1) {
		if hasVowel(m) {
			continue
		}
		if add(m) {
			return out
		}
	}
	for _, m := range numericWithUnits.FindAllString(text, -1) {
		if add(strings.TrimSpace(m)) {
			return out
		}
	}

	return out
}

func hasVowel(s string) bool {
	for _, r := range s {
		switch r {
		case 'a', 'e', 'i', 'o', 'u', 'y':
			return true
		}
	}
	return false
}

// entitySuffix renders ExtractEntities' output as the summary-bracket
// suffix, or "" when there are no entities.
func entitySuffix(text string) string {
	entities := ExtractEntities(text)
	if len(entities) == 0 {
		return ""
	}
	return " | entities: " + strings.Join(entities, ", ")
}
