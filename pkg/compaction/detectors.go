package compaction

import (
	"math"
	"regexp"
	"strings"
	"unicode"
)

// Precompiled once per process — the pattern set is a stable surface, not
// rebuilt per call.
var (
	codeFenceRe     = regexp.MustCompile("(?m)^\\s{0,3}```[a-zA-Z0-9_+-]*\\r?\\n[\\s\\S]*?\\r?\\n\\s*```")
	indentedLineRe  = regexp.MustCompile(`^(?:\t| {4,})\S`)
	latexBlockRe    = regexp.MustCompile(`(?s)\$\$.+?\$\$`)
	latexInlineRe   = regexp.MustCompile(`\$[^$\n]+\$`)
	jsonPrefixRe    = regexp.MustCompile(`^(\{"|\[\{|\[\[|\["|\[-?[0-9])`)
	yamlLineRe      = regexp.MustCompile(`^\s*[A-Za-z0-9_.-]+:\s+\S`)
	capitalizedLine = regexp.MustCompile(`^[A-Z][^.!?]*$`)

	urlRe            = regexp.MustCompile(`\bhttps?://[^\s<>"']+`)
	emailRe          = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	phoneRe          = regexp.MustCompile(`\b(?:\+?\d{1,2}[\s.-]?)?\(?\d{3}\)?[\s.-]?\d{3}[\s.-]?\d{4}\b`)
	versionNumberRe  = regexp.MustCompile(`\bv?\d+\.\d+\.\d+(?:[-+][0-9A-Za-z.]+)?\b`)
	hashOrShaRe      = regexp.MustCompile(`\b[0-9a-fA-F]{40,64}\b`)
	filePathRe       = regexp.MustCompile(`(?:^|\s)(?:\.{0,2}/)?(?:[\w.-]+/){2,}[\w.-]+`)
	ipOrSemverRe     = regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`)
	quotedKeyRe      = regexp.MustCompile(`"[A-Za-z_][A-Za-z0-9_]*"\s*:`)
	legalTermRe      = regexp.MustCompile(`(?i)\b(shall|may not|notwithstanding|whereas|hereby)\b`)
	directQuoteRe    = regexp.MustCompile(`"[^"\n]{10,}"`)
	numericWithUnits = regexp.MustCompile(`\b\d+(?:\.\d+)?\s?(?:ms|s|sec|secs|seconds|MB|GB|KB|kb|retries|workers|req|reqs|%|x)\b`)

	// unicodeMathSet is the fixed set of math symbols from spec §4.1.
	unicodeMathSet = map[rune]bool{
		'∀': true, '∃': true, '∈': true, '∉': true, '⊆': true, '⊇': true,
		'∪': true, '∩': true, '∧': true, '∨': true, '¬': true, '→': true,
		'↔': true, '∑': true, '∏': true, '∫': true, '√': true, '∞': true,
		'≈': true, '≠': true, '≤': true, '≥': true, '±': true, '×': true, '÷': true,
	}

	specialCharSet = map[rune]bool{}

	// emphasisRe is reused by the summarizer's sentence scoring.
	emphasisRe = regexp.MustCompile(`(?i)\b(importantly|however|critical|crucial|essential|significant|notably|must|require[ds]?|never|always)\b`)

	// hardT0Reasons drives the orchestrator's preserve classification.
	hardT0Reasons = map[string]bool{
		"code_fence":                true,
		"indented_code":             true,
		"json_structure":            true,
		"yaml_structure":            true,
		"high_special_char_ratio":   true,
		"high_line_length_variance": true,
		"api_key":                   true,
		"latex_math":                true,
		"unicode_math":              true,
		"sql_content":               true,
		"verse_pattern":             true,
		"gitleaks_secret":           true,
	}
)

func init() {
	for _, c := range "{}[]<>|\\;:@#$%^&*()=+`~" {
		specialCharSet[c] = true
	}
}

// sqlStrongKeywords are compound or rare enough to be unambiguous SQL
// markers on their own.
var sqlStrongKeywords = []string{
	"GROUP BY", "ORDER BY", "PRIMARY KEY", "FOREIGN KEY", "RETURNING",
	"INNER JOIN", "LEFT JOIN", "RIGHT JOIN", "OUTER JOIN", "VARCHAR",
	"CREATE TABLE", "ALTER TABLE", "DROP TABLE", "NOT NULL", "AUTOINCREMENT",
}

// sqlWeakKeywords also occur in ordinary English and only count toward SQL
// classification alongside other evidence.
var sqlWeakKeywords = []string{
	"SELECT", "FROM", "WHERE", "JOIN", "HAVING", "VALUES", "INSERT", "UPDATE",
	"DELETE", "LIMIT",
}

func detectSQLContent(content string) bool {
	upper := strings.ToUpper(content)
	for _, kw := range sqlStrongKeywords {
		if strings.Contains(upper, kw) {
			return true
		}
	}
	distinct := map[string]bool{}
	weakHit := false
	for _, kw := range sqlWeakKeywords {
		if strings.Contains(upper, kw) {
			distinct[kw] = true
			weakHit = true
		}
	}
	return weakHit && len(distinct) >= 3
}

// apiKeyProviderRes are provider-specific secret formats.
var apiKeyProviderRes = []*regexp.Regexp{
	regexp.MustCompile(`\bsk-[A-Za-z0-9]{20,}\b`),                 // OpenAI / generic sk-
	regexp.MustCompile(`\bAKIA[0-9A-Z]{16}\b`),                    // AWS access key
	regexp.MustCompile(`\bgh[ps]_[A-Za-z0-9]{30,}\b`),             // GitHub (ghp_, ghs_)
	regexp.MustCompile(`\bgho_[A-Za-z0-9]{30,}\b`),                // GitHub OAuth
	regexp.MustCompile(`\bgithub_pat_[A-Za-z0-9_]{60,}\b`),        // GitHub fine-grained PAT
	regexp.MustCompile(`\b[sr]k_(?:live|test)_[A-Za-z0-9]{16,}\b`),// Stripe
	regexp.MustCompile(`\bxox[bpra]-[A-Za-z0-9-]{10,}\b`),         // Slack
	regexp.MustCompile(`\bSG\.[A-Za-z0-9_-]{16,}\.[A-Za-z0-9_-]{16,}\b`), // SendGrid
	regexp.MustCompile(`\bglpat-[A-Za-z0-9_-]{20,}\b`),            // GitLab
	regexp.MustCompile(`\bnpm_[A-Za-z0-9]{30,}\b`),                // npm
	regexp.MustCompile(`\bAIza[A-Za-z0-9_-]{30,}\b`),              // Google API key
}

// genericAPIKeyRe is a fallback <prefix>[-_]<mixed body> matcher.
var genericAPIKeyRe = regexp.MustCompile(`\b[A-Za-z][A-Za-z0-9]{1,15}[-_][A-Za-z0-9]{20,}\b`)

// kebabSegmentRe counts hyphenated lowercase-word segments, used to reject
// BEM/Tailwind/kebab-case identifiers from the generic API key fallback.
var kebabSegmentRe = regexp.MustCompile(`[a-z]{2,}-`)

func detectAPIKey(content string) bool {
	for _, re := range apiKeyProviderRes {
		if re.MatchString(content) {
			return true
		}
	}
	for _, m := range genericAPIKeyRe.FindAllString(content, -1) {
		if len(kebabSegmentRe.FindAllString(m, -1)) >= 3 {
			continue // looks like a BEM/kebab-case identifier, not a secret
		}
		return true
	}
	return false
}

func detectCodeFence(content string) bool {
	return codeFenceRe.MatchString(content)
}

func detectIndentedCode(content string) bool {
	lines := strings.Split(content, "\n")
	consecutive := 0
	for _, l := range lines {
		if indentedLineRe.MatchString(l) {
			consecutive++
			if consecutive >= 2 {
				return true
			}
		} else {
			consecutive = 0
		}
	}
	return false
}

func detectLatexMath(content string) bool {
	return latexBlockRe.MatchString(content) || latexInlineRe.MatchString(content)
}

func detectUnicodeMath(content string) bool {
	for _, r := range content {
		if unicodeMathSet[r] {
			return true
		}
	}
	return false
}

func detectJSONStructure(content string) bool {
	return jsonPrefixRe.MatchString(strings.TrimSpace(content))
}

func detectYAMLStructure(content string) bool {
	lines := strings.Split(content, "\n")
	for i := 0; i+1 < len(lines); i++ {
		if yamlLineRe.MatchString(lines[i]) && yamlLineRe.MatchString(lines[i+1]) {
			return true
		}
	}
	return false
}

func detectVersePattern(content string) bool {
	lines := strings.Split(content, "\n")
	run := 0
	for _, l := range lines {
		t := strings.TrimSpace(l)
		if t == "" {
			run = 0
			continue
		}
		if capitalizedLine.MatchString(t) {
			run++
			if run >= 3 {
				return true
			}
		} else {
			run = 0
		}
	}
	return false
}

func detectHighLineLengthVariance(content string) bool {
	lines := strings.Split(content, "\n")
	if len(lines) <= 3 {
		return false
	}
	lengths := make([]float64, 0, len(lines))
	for _, l := range lines {
		lengths = append(lengths, float64(len(l)))
	}
	mean := 0.0
	for _, v := range lengths {
		mean += v
	}
	mean /= float64(len(lengths))
	if mean == 0 {
		return false
	}
	variance := 0.0
	for _, v := range lengths {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(len(lengths))
	stddev := math.Sqrt(variance)
	cv := stddev / mean
	return cv > 1.2
}

func detectHighSpecialCharRatio(content string) bool {
	if len(content) == 0 {
		return false
	}
	special := 0
	total := 0
	for _, r := range content {
		if unicode.IsSpace(r) {
			continue
		}
		total++
		if specialCharSet[r] {
			special++
		}
	}
	if total == 0 {
		return false
	}
	return float64(special)/float64(total) > 0.15
}

// structuralDetector is one of the named structural-reason checks.
type namedDetector struct {
	reason string
	fn     func(content string) bool
}

var structuralDetectors = []namedDetector{
	{"code_fence", detectCodeFence},
	{"indented_code", detectIndentedCode},
	{"latex_math", detectLatexMath},
	{"unicode_math", detectUnicodeMath},
	{"json_structure", detectJSONStructure},
	{"yaml_structure", detectYAMLStructure},
	{"verse_pattern", detectVersePattern},
	{"high_line_length_variance", detectHighLineLengthVariance},
	{"high_special_char_ratio", detectHighSpecialCharRatio},
}

var contentTypeDetectors = []namedDetector{
	{"sql_content", detectSQLContent},
	{"api_key", detectAPIKey},
	{"url", func(c string) bool { return urlRe.MatchString(c) }},
	{"email", func(c string) bool { return emailRe.MatchString(c) }},
	{"phone", func(c string) bool { return phoneRe.MatchString(c) }},
	{"version_number", func(c string) bool { return versionNumberRe.MatchString(c) }},
	{"hash_or_sha", func(c string) bool { return hashOrShaRe.MatchString(c) }},
	{"file_path", func(c string) bool { return filePathRe.MatchString(c) }},
	{"ip_or_semver", func(c string) bool { return ipOrSemverRe.MatchString(c) }},
	{"quoted_key", func(c string) bool { return quotedKeyRe.MatchString(c) }},
	{"legal_term", func(c string) bool { return legalTermRe.MatchString(c) }},
	{"direct_quote", func(c string) bool { return directQuoteRe.MatchString(c) }},
	{"numeric_with_units", func(c string) bool { return numericWithUnits.MatchString(c) }},
}

var wordSplitRe = regexp.MustCompile(`\s+`)

func wordCount(content string) int {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return 0
	}
	return len(wordSplitRe.Split(trimmed, -1))
}
