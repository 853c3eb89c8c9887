// Package format shapes structured answers into Telegram-safe display text.
// All functions are pure.
package format

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/taxsaathi/taxsaathi/internal/advisor"
	"github.com/taxsaathi/taxsaathi/internal/ratelimit"
)

// Telegram rejects messages longer than 4096 characters.
const maxMessageLength = 4096

// Answer text is truncated earlier to leave room for sections, links and the
// disclaimer.
const maxAnswerLength = 3500

const shortDisclaimer = "⚠️ General information only. Consult a qualified tax advisor for personalized advice."

// TaxResponse renders a structured answer as: answer text, confidence badge,
// relevant sections, official links, disclaimer, in that fixed order.
func TaxResponse(answer *advisor.StructuredAnswer) string {
	text := CleanForTelegram(answer.Answer)
	if len(text) > maxAnswerLength {
		text = cutAtRune(text, maxAnswerLength) + "... (truncated for length)"
	}

	var b strings.Builder
	b.WriteString("💰 TAX INFORMATION\n\n")
	b.WriteString(text)
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "%s CONFIDENCE: %s\n\n", confidenceBadge(answer.Confidence), strings.ToUpper(string(answer.Confidence)))

	if len(answer.RelevantSections) > 0 {
		b.WriteString("📋 RELEVANT SECTIONS:\n")
		for _, section := range limitItems(answer.RelevantSections, 3) {
			clean := CleanForTelegram(section)
			if len(clean) > 100 {
				clean = cutAtRune(clean, 100) + "..."
			}
			fmt.Fprintf(&b, "• %s\n", clean)
		}
		b.WriteString("\n")
	}

	if len(answer.OfficialLinks) > 0 {
		b.WriteString("🔗 OFFICIAL RESOURCES:\n")
		for _, link := range limitItems(answer.OfficialLinks, 2) {
			fmt.Fprintf(&b, "• %s\n", link)
		}
		b.WriteString("\n")
	}

	b.WriteString(shortDisclaimer)

	return Truncate(b.String())
}

// DocumentAnalysis renders a document analysis reply.
func DocumentAnalysis(analysis *advisor.DocumentAnalysis, analyzedAt time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📄 DOCUMENT ANALYSIS: %s\n\n", analysis.Filename)
	b.WriteString(CleanForTelegram(analysis.Analysis))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "🕒 ANALYZED ON: %s\n\n", analyzedAt.Format("2006-01-02 15:04:05"))
	b.WriteString(shortDisclaimer)

	return Truncate(b.String())
}

// RateLimited renders the denial reply for an exhausted quota.
func RateLimited(cat ratelimit.Category, retryAfter time.Duration) string {
	wait := humanDuration(retryAfter)

	switch cat {
	case ratelimit.DocumentAnalysis:
		return fmt.Sprintf(`📄 DOCUMENT ANALYSIS LIMIT REACHED

You've reached the daily limit for document analysis (3 per day).
Quota resets in %s.

WHAT YOU CAN DO:
• Combine multiple documents if possible
• Ask text-based questions about specific tax topics

Thank you for your understanding! 🙏`, wait)
	default:
		return fmt.Sprintf(`⏰ QUERY LIMIT REACHED

You've reached the hourly limit for text queries (10 per hour).
Quota resets in %s.

WHAT YOU CAN DO:
• Consider consolidating multiple questions into one
• Use /help for guidance on effective queries

Thank you for your understanding! 🙏`, wait)
	}
}

// QueryError renders the reply for a failed text query.
func QueryError() string {
	return "❌ Sorry, I encountered an error processing your query. Please try again later or rephrase your question."
}

// DocumentError renders the reply for a failed document analysis.
func DocumentError() string {
	return "❌ Sorry, I couldn't process your document. Please ensure it's a valid PDF and try again."
}

// UnsupportedAttachment renders the reply for an upload the bot cannot read.
func UnsupportedAttachment(reason error) string {
	return fmt.Sprintf("📄 %s", capitalize(CleanForTelegram(reason.Error())))
}

// Welcome renders the /start reply.
func Welcome(firstName string) string {
	if firstName == "" {
		firstName = "there"
	}
	return fmt.Sprintf(`🇮🇳 Welcome to Indian Income Tax Assistant Bot! 🇮🇳

Hello %s! I'm here to help you with Indian income tax queries using AI-powered responses.

What I can help you with:
• Income tax calculations
• Deduction eligibility (80C, 80D, etc.)
• Filing requirements and deadlines
• Tax planning strategies
• Basic GST queries
• Document analysis for tax-related PDFs

How to use:
• Simply send me your tax-related questions
• Upload tax documents (PDF) for analysis
• Use /help for more information

⚠️ Important: this bot provides general information only and should not be considered professional tax advice. Always consult a qualified tax professional for specific situations.

Ready to help! What's your tax question? 💰`, firstName)
}

// Help renders the /help reply.
func Help() string {
	return `📚 How to use the Indian Tax Assistant Bot:

Text queries:
• Ask about income tax rates and slabs
• Inquire about deductions (80C, 80D, HRA, etc.)
• Get filing deadlines and requirements
• Basic GST information

Document analysis:
• Upload PDF documents (Form 16, IT returns, etc.)
• Get analysis and insights from your tax documents

Example questions:
• "What are the income tax slabs for FY 2024-25?"
• "Am I eligible for 80C deduction?"
• "When is the ITR filing deadline?"
• "How to calculate HRA exemption?"

Commands:
/start - Start the bot
/help - Show this help message
/about - About this bot
/usage - Show your remaining quota

Rate limits:
• Max 10 queries per hour per user
• Document analysis: max 3 per day per user

Need help? Just ask your question! 🤝`
}

// About renders the /about reply.
func About() string {
	return `🤖 About Indian Tax Assistant Bot

Powered by:
• Google Gemini AI for intelligent responses
• Updated Indian tax law knowledge base
• Document processing capabilities

Data sources:
• Income Tax Act, 1961
• Latest Budget announcements
• CBDT notifications
• Official government resources

⚠️ Disclaimer: this bot provides general information only. Always consult qualified tax professionals for personalized advice.`
}

// UsageReport renders the /usage reply.
func UsageReport(textRemaining, docRemaining int, textReset, docReset time.Time, now time.Time) string {
	return fmt.Sprintf(`📊 YOUR CURRENT USAGE

Text queries: %d remaining this hour (resets in %s)
Document analyses: %d remaining today (resets in %s)`,
		textRemaining, humanDuration(textReset.Sub(now)),
		docRemaining, humanDuration(docReset.Sub(now)))
}

// CleanForTelegram strips markdown control characters and collapses
// whitespace so replies render safely as plain text.
func CleanForTelegram(text string) string {
	if text == "" {
		return ""
	}

	replacer := strings.NewReplacer(
		"```", "", "**", "", "__", "", "~~", "",
		"*", "", "_", "", "`", "",
		"[", "", "]", "", "{", "", "}", "",
		"|", "", "\\", "", "<", "", ">", "",
	)
	cleaned := replacer.Replace(text)

	for strings.Contains(cleaned, "  ") {
		cleaned = strings.ReplaceAll(cleaned, "  ", " ")
	}
	for strings.Contains(cleaned, "\n\n\n") {
		cleaned = strings.ReplaceAll(cleaned, "\n\n\n", "\n\n")
	}

	var b strings.Builder
	for _, r := range cleaned {
		if r >= 32 || r == '\n' || r == '\r' || r == '\t' {
			b.WriteRune(r)
		}
	}

	return strings.TrimSpace(b.String())
}

// Truncate caps text at Telegram's message length limit.
func Truncate(text string) string {
	if len(text) <= maxMessageLength {
		return text
	}
	cut := maxMessageLength - len("...\n\n") - len(shortDisclaimer)
	return cutAtRune(text, cut) + "...\n\n" + shortDisclaimer
}

// cutAtRune cuts s to at most max bytes without splitting a multi-byte rune.
// Telegram rejects messages that are not valid UTF-8.
func cutAtRune(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}

func confidenceBadge(c advisor.Confidence) string {
	switch c {
	case advisor.ConfidenceHigh:
		return "🟢"
	case advisor.ConfidenceMedium:
		return "🟡"
	default:
		return "🔴"
	}
}

func limitItems(items []string, max int) []string {
	if len(items) > max {
		return items[:max]
	}
	return items
}

func humanDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Minute)
	if d < time.Minute {
		return "under a minute"
	}

	h := d / time.Hour
	m := (d % time.Hour) / time.Minute
	switch {
	case h > 0 && m > 0:
		return fmt.Sprintf("%dh %dm", h, m)
	case h > 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dm", m)
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
