// Package dispatcher routes parsed user requests through the rate limiter to
// the tax advisor and converts every failure into a sendable reply.
package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/taxsaathi/taxsaathi/internal/advisor"
	"github.com/taxsaathi/taxsaathi/internal/document"
	"github.com/taxsaathi/taxsaathi/internal/format"
	"github.com/taxsaathi/taxsaathi/internal/metrics"
	"github.com/taxsaathi/taxsaathi/internal/ratelimit"
)

// Request is a parsed user action: either a TextQuery or a DocumentUpload.
type Request interface {
	UserID() int64
	Category() ratelimit.Category
}

// TextQuery is a free-text tax question.
type TextQuery struct {
	User int64
	Body string
}

func (q TextQuery) UserID() int64                { return q.User }
func (q TextQuery) Category() ratelimit.Category { return ratelimit.TextQuery }

// DocumentUpload is a PDF upload for analysis.
type DocumentUpload struct {
	User     int64
	Data     []byte
	FileName string
}

func (d DocumentUpload) UserID() int64                { return d.User }
func (d DocumentUpload) Category() ratelimit.Category { return ratelimit.DocumentAnalysis }

// Error kinds recovered at this boundary. Callers can inspect the returned
// error with errors.Is; the reply string is always safe to send regardless.
var (
	ErrRateLimited           = errors.New("rate limit exceeded")
	ErrAIService             = errors.New("AI service failure")
	ErrUnsupportedAttachment = errors.New("unsupported attachment")
	ErrDocumentProcessing    = errors.New("document processing failure")
)

type quotaChecker interface {
	CheckAndRecord(userID int64, cat ratelimit.Category) ratelimit.Result
	TrackedUsers() int
}

type taxAdvisor interface {
	AskTaxQuestion(ctx context.Context, query string) (*advisor.StructuredAnswer, error)
	AnalyzeDocument(ctx context.Context, text, filename string) (*advisor.DocumentAnalysis, error)
}

type textExtractor interface {
	ExtractText(data []byte, filename string) (string, error)
}

// Dispatcher is the single dispatch path for incoming requests.
type Dispatcher struct {
	limiter   quotaChecker
	advisor   taxAdvisor
	extractor textExtractor
	metrics   *metrics.Metrics
	now       func() time.Time
}

func New(limiter quotaChecker, adv taxAdvisor, extractor textExtractor, m *metrics.Metrics) *Dispatcher {
	return &Dispatcher{
		limiter:   limiter,
		advisor:   adv,
		extractor: extractor,
		metrics:   m,
		now:       time.Now,
	}
}

// Handle processes one request end to end. The returned reply is always
// non-empty and sendable; the error, when non-nil, classifies what went wrong
// (ErrRateLimited, ErrAIService, ErrUnsupportedAttachment,
// ErrDocumentProcessing) for logging.
// The AI client is never called for a denied request, and failures are
// reported once with no retry.
func (d *Dispatcher) Handle(ctx context.Context, req Request) (string, error) {
	cat := req.Category()

	res := d.limiter.CheckAndRecord(req.UserID(), cat)
	d.metrics.SetTrackedUsers(d.limiter.TrackedUsers())
	if !res.Allowed {
		slog.Info("rate limit exceeded",
			"user_id", req.UserID(),
			"category", cat,
			"retry_after", res.RetryAfter,
		)
		d.metrics.ObserveDenial(string(cat))
		d.metrics.ObserveRequest(string(cat), "denied")
		return format.RateLimited(cat, res.RetryAfter),
			fmt.Errorf("%w: retry after %s", ErrRateLimited, res.RetryAfter)
	}

	switch r := req.(type) {
	case TextQuery:
		return d.handleTextQuery(ctx, r)
	case DocumentUpload:
		return d.handleDocumentUpload(ctx, r)
	default:
		d.metrics.ObserveRequest(string(cat), "error")
		return format.QueryError(), fmt.Errorf("unknown request type %T", req)
	}
}

func (d *Dispatcher) handleTextQuery(ctx context.Context, req TextQuery) (string, error) {
	answer, err := d.advisor.AskTaxQuestion(ctx, req.Body)
	if err != nil {
		slog.Error("tax query failed", "user_id", req.User, "error", err)
		d.metrics.ObserveAIFailure()
		d.metrics.ObserveRequest(string(ratelimit.TextQuery), "error")
		return format.QueryError(), fmt.Errorf("%w: %v", ErrAIService, err)
	}

	d.metrics.ObserveRequest(string(ratelimit.TextQuery), "ok")
	slog.Info("processed text query", "user_id", req.User, "query_len", len(req.Body))
	return format.TaxResponse(answer), nil
}

func (d *Dispatcher) handleDocumentUpload(ctx context.Context, req DocumentUpload) (string, error) {
	text, err := d.extractor.ExtractText(req.Data, req.FileName)
	if err != nil {
		if document.IsRejection(err) {
			slog.Info("rejected attachment", "user_id", req.User, "filename", req.FileName, "reason", err)
			d.metrics.ObserveDocumentRejection()
			d.metrics.ObserveRequest(string(ratelimit.DocumentAnalysis), "rejected")
			return format.UnsupportedAttachment(err), fmt.Errorf("%w: %v", ErrUnsupportedAttachment, err)
		}
		slog.Error("document extraction failed", "user_id", req.User, "filename", req.FileName, "error", err)
		d.metrics.ObserveRequest(string(ratelimit.DocumentAnalysis), "error")
		return format.DocumentError(), fmt.Errorf("%w: %v", ErrDocumentProcessing, err)
	}

	analysis, err := d.advisor.AnalyzeDocument(ctx, text, req.FileName)
	if err != nil {
		slog.Error("document analysis failed", "user_id", req.User, "filename", req.FileName, "error", err)
		d.metrics.ObserveAIFailure()
		d.metrics.ObserveRequest(string(ratelimit.DocumentAnalysis), "error")
		return format.DocumentError(), fmt.Errorf("%w: %v", ErrAIService, err)
	}

	d.metrics.ObserveRequest(string(ratelimit.DocumentAnalysis), "ok")
	slog.Info("processed document", "user_id", req.User, "filename", req.FileName)
	return format.DocumentAnalysis(analysis, d.now()), nil
}
