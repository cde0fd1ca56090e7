package ai

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bcpCompletion = `RISK 1:
TITLE: Outdated BCP
DESCRIPTION: Plan last reviewed 14 months ago.
LIKELIHOOD: 4
IMPACT: 5
EXPOSURE: 3
EXPLANATION: Age threshold exceeded.
MITIGATIONS:
- Update plan
- Retest quarterly
`

func TestParseRisksWellFormed(t *testing.T) {
	risks := ParseRisks(bcpCompletion)
	require.Len(t, risks, 1)

	r := risks[0]
	assert.Equal(t, "Outdated BCP", r.Title)
	assert.Equal(t, "Plan last reviewed 14 months ago.", r.Description)
	assert.Equal(t, 4, r.Likelihood)
	assert.Equal(t, 5, r.Impact)
	assert.Equal(t, 3, r.Exposure)
	assert.Equal(t, "Age threshold exceeded.", r.Explanation)
	assert.Equal(t, []string{"Update plan", "Retest quarterly"}, r.Mitigations)

	assert.Equal(t, 80, Score(r.Likelihood, r.Impact, r.Exposure))
	assert.Equal(t, "Critical", PriorityFor(80))
}

func TestParseRisksMultipleBlocks(t *testing.T) {
	output := bcpCompletion + "\nRISK 2:\nTITLE: Second\nLIKELIHOOD: 2\nIMPACT: 2\nEXPOSURE: 2\n"
	risks := ParseRisks(output)
	require.Len(t, risks, 2)
	assert.Equal(t, "Outdated BCP", risks[0].Title)
	assert.Equal(t, "Second", risks[1].Title)
	assert.Equal(t, 2, risks[1].Likelihood)
}

func TestParseRisksNoBlocks(t *testing.T) {
	assert.Nil(t, ParseRisks(""))
	assert.Nil(t, ParseRisks("the model rambled and produced nothing structured"))
}

func TestParseRisksDefaults(t *testing.T) {
	risks := ParseRisks("RISK 1:\nsome unstructured content")
	require.Len(t, risks, 1)

	r := risks[0]
	assert.Equal(t, "Risk 1", r.Title)
	assert.Equal(t, "Risk identified from analysis", r.Description)
	assert.Equal(t, 3, r.Likelihood)
	assert.Equal(t, 4, r.Impact)
	assert.Equal(t, 3, r.Exposure)
	assert.Len(t, r.Mitigations, 3)
}

func TestParseRisksRatingBounds(t *testing.T) {
	risks := ParseRisks("RISK 1:\nTITLE: Bounds\nLIKELIHOOD: 9\nIMPACT: 0\nEXPOSURE: not a number\n")
	require.Len(t, risks, 1)
	assert.Equal(t, 5, risks[0].Likelihood)
	assert.Equal(t, 1, risks[0].Impact)
	assert.Equal(t, 3, risks[0].Exposure)
}

func TestParseRisksExposureRatingSynonym(t *testing.T) {
	risks := ParseRisks("RISK 1:\nTITLE: Synonym\nEXPOSURE RATING: 5\n")
	require.Len(t, risks, 1)
	assert.Equal(t, 5, risks[0].Exposure)
}

func TestParseRisksLongTitleTruncated(t *testing.T) {
	risks := ParseRisks("RISK 1:\nTITLE: " + strings.Repeat("x", 400) + "\n")
	require.Len(t, risks, 1)
	assert.Len(t, risks[0].Title, 255)
}

func TestParseRisksLongMultiByteTitleTruncated(t *testing.T) {
	// 400 two-byte runes; the 255-byte cut lands mid-rune, so the
	// truncation must back off to the previous rune boundary.
	risks := ParseRisks("RISK 1:\nTITLE: " + strings.Repeat("é", 400) + "\n")
	require.Len(t, risks, 1)
	assert.True(t, utf8.ValidString(risks[0].Title))
	assert.LessOrEqual(t, len(risks[0].Title), 255)
	assert.Equal(t, 254, len(risks[0].Title))
}

// Runes whose upper-case form is wider than themselves (U+0250 maps to
// the three-byte U+2C6F) must not shift field offsets.
func TestParseRisksCaseWideningRunes(t *testing.T) {
	risks := ParseRisks("RISK 1:\n" + strings.Repeat("ɐ", 100) + "\nTITLE: x")
	require.Len(t, risks, 1)
	assert.Equal(t, "x", risks[0].Title)

	risks = ParseRisks("RISK 1:\nTITLE: ɐ threat\nDESCRIPTION: ɐ detail\nMITIGATIONS:\n- patch ɐ\n")
	require.Len(t, risks, 1)
	assert.Equal(t, "ɐ threat", risks[0].Title)
	assert.Equal(t, "ɐ detail", risks[0].Description)
	assert.Equal(t, []string{"patch ɐ"}, risks[0].Mitigations)
}

// The parser must terminate with in-range fields on arbitrary bytes.
func TestParseRisksRobustness(t *testing.T) {
	inputs := []string{
		"RISK 1:",
		"RISK 1:\nTITLE:",
		"RISK 1:\nLIKELIHOOD: \xff\xfe",
		"risk 1: lowercase header\ntitle: also lowercase",
		string([]byte{0x00, 0xff, 0x52, 0x49}),
		"RISK 12345:\nIMPACT: -3\n",
		strings.Repeat("RISK 1:\n", 50),
	}
	for _, in := range inputs {
		risks := ParseRisks(in)
		for _, r := range risks {
			assert.NotEmpty(t, r.Title)
			assert.GreaterOrEqual(t, r.Likelihood, 1)
			assert.LessOrEqual(t, r.Likelihood, 5)
			assert.GreaterOrEqual(t, r.Impact, 1)
			assert.LessOrEqual(t, r.Impact, 5)
			assert.GreaterOrEqual(t, r.Exposure, 1)
			assert.LessOrEqual(t, r.Exposure, 5)
			assert.NotEmpty(t, r.Mitigations)
		}
	}
}
