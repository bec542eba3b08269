package extractor

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"github.com/xuri/excelize/v2"
	"golang.org/x/net/html"

	"github.com/haiminh-dev/visadossier/internal/core/domain"
)

// VisionReader turns an image into text through a vision-capable model.
type VisionReader interface {
	DescribeImage(ctx context.Context, mimeType string, data []byte) (string, error)
}

// Extractor converts source documents to plain text, dispatching on file
// extension. A document the reader cannot parse is absorbed with empty text
// and the cause logged; one corrupt file must not abort the whole ingest.
// Only cancellation and vision-model failures surface as errors.
type Extractor struct {
	logger *slog.Logger
	vision VisionReader
}

func New(logger *slog.Logger) *Extractor {
	return NewWithVision(logger, nil)
}

func NewWithVision(logger *slog.Logger, vision VisionReader) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{logger: logger, vision: vision}
}

func (e *Extractor) Extract(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	text, err := e.extract(ctx, path)
	if err != nil {
		if ctx.Err() != nil || domain.IsKind(err, domain.ErrExternalCall) {
			return "", err
		}
		e.logger.Warn("file absorbed without text, extraction failed",
			"file", filepath.Base(path), "error", err)
		return "", nil
	}
	return text, nil
}

func (e *Extractor) extract(ctx context.Context, path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".txt", ".md", ".csv":
		return readTextFile(path)
	case ".pdf":
		return extractPDF(path)
	case ".docx":
		return extractDOCX(path)
	case ".xlsx":
		return extractXLSX(path)
	case ".html", ".htm":
		return extractHTML(path)
	case ".png", ".jpg", ".jpeg", ".webp", ".gif", ".bmp", ".tiff":
		return e.extractImage(ctx, path, ext)
	default:
		return readUnknownFile(e.logger, path)
	}
}

func (e *Extractor) extractImage(ctx context.Context, path, ext string) (string, error) {
	if e.vision == nil {
		e.logger.Warn("image file absorbed without text, no vision backend", "file", filepath.Base(path))
		return "", nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read image %s: %w", filepath.Base(path), err)
	}
	text, err := e.vision.DescribeImage(ctx, imageMIMEType(ext), data)
	if err != nil {
		return "", domain.WrapError(domain.ErrExternalCall, "describe image "+filepath.Base(path), err)
	}
	return text, nil
}

func imageMIMEType(ext string) string {
	switch ext {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	case ".bmp":
		return "image/bmp"
	case ".tiff":
		return "image/tiff"
	default:
		return "application/octet-stream"
	}
}

func readTextFile(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	if !utf8.Valid(raw) {
		return "", domain.WrapError(domain.ErrInvalidInput, "read text file", fmt.Errorf("%s is not valid UTF-8", filepath.Base(path)))
	}
	return strings.TrimSpace(string(raw)), nil
}

func extractPDF(path string) (string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	content, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}
	raw, err := io.ReadAll(content)
	if err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}
	return strings.TrimSpace(string(raw)), nil
}

// extractDOCX pulls the paragraph text out of word/document.xml. Formatting
// runs are flattened, paragraphs become lines, and a repeated line is kept
// once in first-seen order: merged table cells emit the same paragraph for
// every cell they span.
func extractDOCX(path string) (string, error) {
	archive, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}
	defer archive.Close()

	var doc *zip.File
	for _, f := range archive.File {
		if f.Name == "word/document.xml" {
			doc = f
			break
		}
	}
	if doc == nil {
		return "", domain.WrapError(domain.ErrInvalidInput, "extract docx", fmt.Errorf("%s has no word/document.xml", filepath.Base(path)))
	}

	reader, err := doc.Open()
	if err != nil {
		return "", fmt.Errorf("open docx body: %w", err)
	}
	defer reader.Close()

	decoder := xml.NewDecoder(reader)
	var lines []string
	seen := make(map[string]bool)
	var paragraph strings.Builder
	inText := false
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parse docx body: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				line := strings.TrimSpace(paragraph.String())
				paragraph.Reset()
				if line == "" || seen[line] {
					continue
				}
				seen[line] = true
				lines = append(lines, line)
			}
		case xml.CharData:
			if inText {
				paragraph.Write(t)
			}
		}
	}
	return strings.Join(lines, "\n"), nil
}

func extractXLSX(path string) (string, error) {
	book, err := excelize.OpenFile(path)
	if err != nil {
		return "", fmt.Errorf("open xlsx: %w", err)
	}
	defer book.Close()

	var b strings.Builder
	for _, sheet := range book.GetSheetList() {
		rows, err := book.GetRows(sheet)
		if err != nil {
			return "", fmt.Errorf("read sheet %s: %w", sheet, err)
		}
		for _, row := range rows {
			line := strings.TrimSpace(strings.Join(row, "\t"))
			if line != "" {
				b.WriteString(line)
				b.WriteByte('\n')
			}
		}
	}
	return strings.TrimSpace(b.String()), nil
}

func extractHTML(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open html: %w", err)
	}
	defer f.Close()

	root, err := html.Parse(f)
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				b.WriteString(text)
				b.WriteByte('\n')
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(root)
	return strings.TrimSpace(b.String()), nil
}

// readUnknownFile keeps ingest total: readable UTF-8 content is absorbed,
// anything binary is absorbed empty.
func readUnknownFile(logger *slog.Logger, path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	if !utf8.Valid(raw) {
		logger.Warn("binary file absorbed without text", "file", filepath.Base(path))
		return "", nil
	}
	return strings.TrimSpace(string(raw)), nil
}
