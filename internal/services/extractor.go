package services

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

type TextExtractor interface {
	ExtractText(filePath string) (string, error)
}

type textExtractor struct{}

func NewTextExtractor() TextExtractor {
	return &textExtractor{}
}

// SupportedExtension reports whether files with ext can be screened.
func SupportedExtension(ext string) bool {
	switch strings.ToLower(ext) {
	case ".pdf", ".txt":
		return true
	}
	return false
}

// ExtractText implements TextExtractor.
func (e *textExtractor) ExtractText(filePath string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filePath))
	switch ext {
	case ".pdf":
		return e.extractPDF(filePath)
	case ".txt":
		return e.extractPlainText(filePath)
	default:
		return "", fmt.Errorf("%w: %q, use PDF or TXT", ErrUnsupportedFormat, ext)
	}
}

// extractPDF fails the whole document on the first unreadable page.
func (e *textExtractor) extractPDF(filePath string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("%w: PDF reader panicked: %v", ErrParse, r)
		}
	}()

	f, reader, err := pdf.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("%w: failed to open PDF: %w", ErrParse, err)
	}
	defer f.Close()

	var pages []string
	totalPage := reader.NumPage()

	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := reader.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		pages = append(pages, pageLines(page.Content().Text))
	}

	return strings.TrimSpace(strings.Join(pages, "\n")), nil
}

// pageLines rebuilds text lines from glyphs in content-stream order. A new line starts when the
// baseline moves by more than half the font size, which covers Td, TD, T* and Tm line breaks.
func pageLines(glyphs []pdf.Text) string {
	var lines []string
	var line strings.Builder
	lastY := math.NaN()

	for _, glyph := range glyphs {
		tolerance := math.Max(glyph.FontSize/2, 1)
		if !math.IsNaN(lastY) && math.Abs(glyph.Y-lastY) > tolerance {
			lines = append(lines, strings.TrimRightFunc(line.String(), unicode.IsSpace))
			line.Reset()
		}
		line.WriteString(glyph.S)
		lastY = glyph.Y
	}
	if line.Len() > 0 {
		lines = append(lines, strings.TrimRightFunc(line.String(), unicode.IsSpace))
	}

	return strings.Join(lines, "\n")
}

func (e *textExtractor) extractPlainText(filePath string) (string, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("%w: failed to read text file: %w", ErrParse, err)
	}

	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: %s is not valid UTF-8", ErrParse, filepath.Base(filePath))
	}

	text := strings.TrimPrefix(string(data), "\ufeff")
	return strings.TrimSpace(text), nil
}
