// Package document extracts text from uploaded tax documents.
package document

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

// Rejection reasons for uploads the bot cannot analyze. Callers match with
// errors.Is to tell a bad upload apart from an internal failure.
var (
	ErrUnsupportedFormat = errors.New("unsupported file format, only PDF is accepted")
	ErrFileTooLarge      = errors.New("file exceeds the maximum allowed size")
	ErrEmptyFile         = errors.New("file is empty")
	ErrEncrypted         = errors.New("PDF is password protected")
	ErrNoText            = errors.New("no readable text in PDF, it may be image-based or corrupted")
)

// IsRejection reports whether err means the upload itself is unusable, as
// opposed to an internal extraction failure.
func IsRejection(err error) bool {
	return errors.Is(err, ErrUnsupportedFormat) ||
		errors.Is(err, ErrFileTooLarge) ||
		errors.Is(err, ErrEmptyFile) ||
		errors.Is(err, ErrEncrypted) ||
		errors.Is(err, ErrNoText)
}

// Extractor pulls plain text out of PDF uploads.
type Extractor struct {
	maxFileSize int64
	maxTextLen  int
}

// NewExtractor creates an extractor enforcing the given size caps. maxTextLen
// bounds the extracted text handed to the AI prompt; zero means no cap.
func NewExtractor(maxFileSize int64, maxTextLen int) *Extractor {
	return &Extractor{
		maxFileSize: maxFileSize,
		maxTextLen:  maxTextLen,
	}
}

// Validate checks the upload's name and size before any download happens.
func (e *Extractor) Validate(filename string, size int64) error {
	if strings.ToLower(filepath.Ext(filename)) != ".pdf" {
		return ErrUnsupportedFormat
	}
	if size == 0 {
		return ErrEmptyFile
	}
	if e.maxFileSize > 0 && size > e.maxFileSize {
		return fmt.Errorf("%w (%d bytes, max %d)", ErrFileTooLarge, size, e.maxFileSize)
	}
	return nil
}

// ExtractText extracts text from in-memory PDF data page by page. Pages are
// joined with "--- Page N ---" markers so the model can cite locations.
func (e *Extractor) ExtractText(data []byte, filename string) (string, error) {
	if err := e.Validate(filename, int64(len(data))); err != nil {
		return "", err
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		if strings.Contains(err.Error(), "encrypted") {
			return "", ErrEncrypted
		}
		return "", fmt.Errorf("failed to parse PDF: %w", err)
	}

	var contentParts []string
	totalPages := reader.NumPage()

	for pageNum := 1; pageNum <= totalPages; pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// A single unreadable page should not sink the whole document.
			continue
		}

		if strings.TrimSpace(text) != "" {
			contentParts = append(contentParts, fmt.Sprintf("--- Page %d ---\n%s", pageNum, text))
		}
	}

	content := cleanText(strings.Join(contentParts, "\n\n"))
	if content == "" {
		return "", ErrNoText
	}

	if e.maxTextLen > 0 {
		content = capText(content, e.maxTextLen)
	}

	return content, nil
}

// capText cuts text to at most max bytes, backing up to a rune boundary so the
// cap never splits a multi-byte rune.
func capText(text string, max int) string {
	if len(text) <= max {
		return text
	}
	for max > 0 && !utf8.RuneStart(text[max]) {
		max--
	}
	return text[:max]
}

// cleanText trims each line and collapses runs of blank lines.
func cleanText(text string) string {
	if text == "" {
		return ""
	}

	lines := strings.Split(text, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed != "" || strings.HasPrefix(line, "--- Page") {
			cleaned = append(cleaned, trimmed)
		}
	}

	out := strings.Join(cleaned, "\n")
	for strings.Contains(out, "\n\n\n") {
		out = strings.ReplaceAll(out, "\n\n\n", "\n\n")
	}
	return strings.TrimSpace(out)
}
