package format

import (
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taxsaathi/taxsaathi/internal/advisor"
	"github.com/taxsaathi/taxsaathi/internal/ratelimit"
)

func TestTaxResponseOrdering(t *testing.T) {
	out := TaxResponse(&advisor.StructuredAnswer{
		Answer:           "X",
		Confidence:       advisor.ConfidenceHigh,
		RelevantSections: []string{"S1"},
		OfficialLinks:    []string{"https://www.incometax.gov.in/L1"},
	})

	answerIdx := strings.Index(out, "X")
	confidenceIdx := strings.Index(out, "CONFIDENCE: HIGH")
	sectionIdx := strings.Index(out, "S1")
	linkIdx := strings.Index(out, "L1")

	require.GreaterOrEqual(t, answerIdx, 0)
	require.Greater(t, confidenceIdx, answerIdx, "confidence badge comes after the answer")
	require.Greater(t, sectionIdx, confidenceIdx, "sections come after the confidence badge")
	require.Greater(t, linkIdx, sectionIdx, "links come after sections")
	assert.Contains(t, out, "🟢")
}

func TestTaxResponseEmptyAnswerPassesThrough(t *testing.T) {
	out := TaxResponse(&advisor.StructuredAnswer{Confidence: advisor.ConfidenceLow})

	assert.Contains(t, out, "TAX INFORMATION")
	assert.Contains(t, out, "CONFIDENCE: LOW")
	assert.NotContains(t, out, "RELEVANT SECTIONS")
	assert.NotContains(t, out, "OFFICIAL RESOURCES")
}

func TestTaxResponseLimitsSectionsAndLinks(t *testing.T) {
	out := TaxResponse(&advisor.StructuredAnswer{
		Answer:           "answer",
		Confidence:       advisor.ConfidenceMedium,
		RelevantSections: []string{"S1", "S2", "S3", "S4", "S5"},
		OfficialLinks:    []string{"link-one", "link-two", "link-three"},
	})

	assert.Contains(t, out, "S3")
	assert.NotContains(t, out, "S4")
	assert.Contains(t, out, "link-two")
	assert.NotContains(t, out, "link-three")
}

func TestTaxResponseTruncatesLongAnswer(t *testing.T) {
	out := TaxResponse(&advisor.StructuredAnswer{
		Answer:     strings.Repeat("a", 6000),
		Confidence: advisor.ConfidenceHigh,
	})

	assert.LessOrEqual(t, len(out), 4096)
	assert.Contains(t, out, "truncated for length")
	assert.True(t, strings.HasSuffix(out, shortDisclaimer))
}

func TestTaxResponseMultiByteAnswerStaysValidUTF8(t *testing.T) {
	out := TaxResponse(&advisor.StructuredAnswer{
		Answer:     strings.Repeat("₹", 2000),
		Confidence: advisor.ConfidenceHigh,
	})

	assert.True(t, utf8.ValidString(out), "truncation must not split a rune")
	assert.LessOrEqual(t, len(out), 4096)
	assert.Contains(t, out, "truncated for length")
}

func TestTruncateMultiByteStaysValidUTF8(t *testing.T) {
	out := Truncate(strings.Repeat("₹", 2000))

	assert.True(t, utf8.ValidString(out))
	assert.LessOrEqual(t, len(out), 4096)
	assert.True(t, strings.HasSuffix(out, shortDisclaimer))
}

func TestCutAtRune(t *testing.T) {
	// "₹" is 3 bytes; a 4-byte cut must back up to the rune boundary.
	assert.Equal(t, "₹", cutAtRune("₹₹", 4))
	assert.Equal(t, "₹₹", cutAtRune("₹₹", 6))
	assert.Equal(t, "ab", cutAtRune("abc", 2))
	assert.Equal(t, "abc", cutAtRune("abc", 10))
	assert.Equal(t, "", cutAtRune("₹", 2))
}

func TestDocumentAnalysis(t *testing.T) {
	at := time.Date(2025, 4, 1, 10, 30, 0, 0, time.UTC)
	out := DocumentAnalysis(&advisor.DocumentAnalysis{
		Analysis: "This is a Form 16.",
		Filename: "form16.pdf",
	}, at)

	assert.Contains(t, out, "DOCUMENT ANALYSIS: form16.pdf")
	assert.Contains(t, out, "This is a Form 16.")
	assert.Contains(t, out, "2025-04-01 10:30:00")
	assert.Contains(t, out, shortDisclaimer)
}

func TestRateLimited(t *testing.T) {
	text := RateLimited(ratelimit.TextQuery, 45*time.Minute)
	assert.Contains(t, text, "QUERY LIMIT REACHED")
	assert.Contains(t, text, "45m")

	doc := RateLimited(ratelimit.DocumentAnalysis, 26*time.Hour)
	assert.Contains(t, doc, "DOCUMENT ANALYSIS LIMIT REACHED")
	assert.Contains(t, doc, "26h")
}

func TestUnsupportedAttachment(t *testing.T) {
	out := UnsupportedAttachment(errors.New("unsupported file format, only PDF is accepted"))
	assert.Contains(t, out, "📄")
	assert.Contains(t, out, "Unsupported file format")
}

func TestCleanForTelegram(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "strips markdown", in: "**bold** and _italic_ and `code`", want: "bold and italic and code"},
		{name: "strips brackets", in: "[link](url) {x} <y>", want: "link(url) x y"},
		{name: "collapses spaces", in: "a    b", want: "a b"},
		{name: "collapses newlines", in: "a\n\n\n\nb", want: "a\n\nb"},
		{name: "keeps parens", in: "Section 24(b)", want: "Section 24(b)"},
		{name: "empty", in: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanForTelegram(tt.in))
		})
	}
}

func TestTruncate(t *testing.T) {
	short := "short message"
	assert.Equal(t, short, Truncate(short))

	long := strings.Repeat("x", 5000)
	out := Truncate(long)
	assert.LessOrEqual(t, len(out), 4096)
	assert.True(t, strings.HasSuffix(out, shortDisclaimer))
}

func TestWelcomeUsesFirstName(t *testing.T) {
	assert.Contains(t, Welcome("Priya"), "Hello Priya!")
	assert.Contains(t, Welcome(""), "Hello there!")
}

func TestUsageReport(t *testing.T) {
	now := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)
	out := UsageReport(7, 2, now.Add(30*time.Minute), now.Add(20*time.Hour), now)

	assert.Contains(t, out, "7 remaining this hour")
	assert.Contains(t, out, "2 remaining today")
	assert.Contains(t, out, "30m")
	assert.Contains(t, out, "20h")
}

func TestHumanDuration(t *testing.T) {
	assert.Equal(t, "under a minute", humanDuration(10*time.Second))
	assert.Equal(t, "5m", humanDuration(5*time.Minute))
	assert.Equal(t, "1h", humanDuration(time.Hour))
	assert.Equal(t, "1h 30m", humanDuration(90*time.Minute))
	assert.Equal(t, "under a minute", humanDuration(-time.Minute))
}
