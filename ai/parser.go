// ai/parser.go
package ai

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ParsedRisk is one risk extracted from completion output, before
// scoring and persistence.
type ParsedRisk struct {
	Title       string
	Description string
	Likelihood  int
	Impact      int
	Exposure    int
	Explanation string
	Mitigations []string
}

var (
	riskBlockPattern = regexp.MustCompile(`(?mi)^\s*RISK\s+\d+\s*:`)
	bulletPrefixes   = []string{"- ", "• ", "* "}
)

// Field markers in the order they are searched for. EXPOSURE RATING is
// accepted as a synonym models sometimes emit.
var fieldMarkers = []string{
	"TITLE:", "DESCRIPTION:", "LIKELIHOOD:", "IMPACT:",
	"EXPOSURE RATING:", "EXPOSURE:", "EXPLANATION:", "MITIGATIONS:",
}

const (
	defaultLikelihood = 3
	defaultImpact     = 4
	defaultExposure   = 3
)

var defaultMitigations = []string{
	"Review the record with its owner",
	"Document compensating controls",
	"Schedule a follow-up assessment",
}

// ParseRisks extracts typed risks from free-form completion output. It
// never fails: malformed content yields zero or more risks with every
// field in its documented range.
func ParseRisks(output string) []ParsedRisk {
	// The model is not obliged to emit valid UTF-8; normalize so the
	// string operations below stay well defined.
	output = strings.ToValidUTF8(output, "")

	locs := riskBlockPattern.FindAllStringIndex(output, -1)
	if len(locs) == 0 {
		return nil
	}

	risks := make([]ParsedRisk, 0, len(locs))
	for i, loc := range locs {
		end := len(output)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		block := output[loc[1]:end]
		risks = append(risks, parseBlock(block, i+1))
	}
	return risks
}

func parseBlock(block string, n int) ParsedRisk {
	risk := ParsedRisk{
		Title:       fmt.Sprintf("Risk %d", n),
		Description: "Risk identified from analysis",
		Likelihood:  defaultLikelihood,
		Impact:      defaultImpact,
		Exposure:    defaultExposure,
	}

	if v, ok := extractField(block, "TITLE:"); ok && v != "" {
		risk.Title = truncateTitle(v, 255)
	}
	if v, ok := extractField(block, "DESCRIPTION:"); ok && v != "" {
		risk.Description = v
	}
	if v, ok := extractField(block, "LIKELIHOOD:"); ok {
		risk.Likelihood = parseRating(v, defaultLikelihood)
	}
	if v, ok := extractField(block, "IMPACT:"); ok {
		risk.Impact = parseRating(v, defaultImpact)
	}
	if v, ok := extractField(block, "EXPOSURE RATING:"); ok {
		risk.Exposure = parseRating(v, defaultExposure)
	} else if v, ok := extractField(block, "EXPOSURE:"); ok {
		risk.Exposure = parseRating(v, defaultExposure)
	}
	if v, ok := extractField(block, "EXPLANATION:"); ok && v != "" {
		risk.Explanation = v
	}

	risk.Mitigations = extractMitigations(block)
	return risk
}

// extractField reads from the marker to the next known marker or the
// end of the block, collapsing internal newlines.
func extractField(block, marker string) (string, bool) {
	start := indexFold(block, marker)
	if start < 0 {
		return "", false
	}
	start += len(marker)

	end := len(block)
	for _, other := range fieldMarkers {
		if other == marker {
			continue
		}
		if idx := indexFold(block[start:], other); idx >= 0 && start+idx < end {
			end = start + idx
		}
	}

	value := strings.TrimSpace(block[start:end])
	value = strings.Join(strings.Fields(value), " ")
	return value, true
}

// indexFold returns the byte index of the first ASCII case-insensitive
// occurrence of marker in s, or -1. Markers are pure ASCII and ASCII
// letters never fold to or from multi-byte runes, so a byte-level scan
// keeps indices valid in the original string. Uppercasing the whole
// string first would not: some case mappings change UTF-8 byte length.
func indexFold(s, marker string) int {
	n := len(marker)
	for i := 0; i+n <= len(s); i++ {
		if asciiEqualFold(s[i:i+n], marker) {
			return i
		}
	}
	return -1
}

func asciiEqualFold(a, b string) bool {
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if 'a' <= ca && ca <= 'z' {
			ca -= 'a' - 'A'
		}
		if 'a' <= cb && cb <= 'z' {
			cb -= 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}

// truncateTitle caps a title at max bytes without splitting a rune.
func truncateTitle(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// parseRating reads the first integer in the value, clamped to [1,5];
// non-numeric content falls back to the default.
func parseRating(value string, fallback int) int {
	for _, field := range strings.Fields(value) {
		field = strings.Trim(field, ".,)(")
		if n, err := strconv.Atoi(field); err == nil {
			if n < 1 {
				return 1
			}
			if n > 5 {
				return 5
			}
			return n
		}
	}
	return fallback
}

func extractMitigations(block string) []string {
	start := indexFold(block, "MITIGATIONS:")
	if start < 0 {
		return append([]string{}, defaultMitigations...)
	}
	section := block[start+len("MITIGATIONS:"):]

	// Stop the section at the next field marker if one follows.
	for _, other := range fieldMarkers {
		if other == "MITIGATIONS:" {
			continue
		}
		if idx := indexFold(section, other); idx >= 0 {
			section = section[:idx]
		}
	}

	var bullets []string
	var firstNonEmpty string
	for _, line := range strings.Split(section, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if firstNonEmpty == "" {
			firstNonEmpty = line
		}
		for _, prefix := range bulletPrefixes {
			if strings.HasPrefix(line, prefix) {
				text := strings.TrimSpace(strings.TrimPrefix(line, prefix))
				if text != "" {
					bullets = append(bullets, text)
				}
				break
			}
		}
	}

	if len(bullets) == 0 && firstNonEmpty != "" {
		bullets = []string{firstNonEmpty}
	}
	if len(bullets) == 0 {
		return append([]string{}, defaultMitigations...)
	}
	if len(bullets) > 5 {
		bullets = bullets[:5]
	}
	return bullets
}
