package extractor

import (
	"archive/zip"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/haiminh-dev/visadossier/internal/core/domain"
)

func TestExtractPlainText(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "HO SO CA NHAN.txt")
	if err := os.WriteFile(path, []byte("  Họ tên: Nguyễn Văn A\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	text, err := New(nil).Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if text != "Họ tên: Nguyễn Văn A" {
		t.Fatalf("text = %q", text)
	}
}

func TestExtractDegradesNonUTF8TextToEmpty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.txt")
	if err := os.WriteFile(path, []byte{0xff, 0xfe, 0x00}, 0o644); err != nil {
		t.Fatal(err)
	}

	text, err := New(nil).Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("unreadable file must not error: %v", err)
	}
	if text != "" {
		t.Fatalf("text = %q, want empty", text)
	}
}

func TestExtractDegradesCorruptPDFToEmpty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "CONG VIEC.pdf")
	if err := os.WriteFile(path, []byte("not a pdf at all"), 0o644); err != nil {
		t.Fatal(err)
	}

	text, err := New(nil).Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("corrupt pdf must not error: %v", err)
	}
	if text != "" {
		t.Fatalf("text = %q, want empty", text)
	}
}

func TestExtractHTMLDropsMarkupAndScripts(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "statement.html")
	page := `<html><head><style>p{color:red}</style><script>alert(1)</script></head>
<body><h1>Bank statement</h1><p>Balance: 500,000,000 VND</p></body></html>`
	if err := os.WriteFile(path, []byte(page), 0o644); err != nil {
		t.Fatal(err)
	}

	text, err := New(nil).Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if !strings.Contains(text, "Bank statement") || !strings.Contains(text, "Balance: 500,000,000 VND") {
		t.Fatalf("text = %q", text)
	}
	if strings.Contains(text, "alert") || strings.Contains(text, "color:red") {
		t.Fatalf("script/style leaked into text: %q", text)
	}
}

func TestExtractDOCX(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "CONG VIEC.docx")
	writeDOCX(t, path, []string{"Hợp đồng lao động", "Lương: 30,000,000 VND"})

	text, err := New(nil).Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	want := "Hợp đồng lao động\nLương: 30,000,000 VND"
	if text != want {
		t.Fatalf("text = %q, want %q", text, want)
	}
}

func TestExtractDOCXDropsMergedCellRepeats(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "BANG LUONG.docx")
	writeDOCX(t, path, []string{"Bảng lương", "Bảng lương", "Tháng 1: 30,000,000 VND"})

	text, err := New(nil).Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	want := "Bảng lương\nTháng 1: 30,000,000 VND"
	if text != want {
		t.Fatalf("text = %q, want %q", text, want)
	}
}

func TestExtractXLSX(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "TAI CHINH.xlsx")

	book := excelize.NewFile()
	if err := book.SetCellValue("Sheet1", "A1", "Month"); err != nil {
		t.Fatal(err)
	}
	if err := book.SetCellValue("Sheet1", "B1", "Balance"); err != nil {
		t.Fatal(err)
	}
	if err := book.SetCellValue("Sheet1", "A2", "2026-01"); err != nil {
		t.Fatal(err)
	}
	if err := book.SetCellValue("Sheet1", "B2", "500000000"); err != nil {
		t.Fatal(err)
	}
	if err := book.SaveAs(path); err != nil {
		t.Fatal(err)
	}

	text, err := New(nil).Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if !strings.Contains(text, "Month\tBalance") || !strings.Contains(text, "2026-01\t500000000") {
		t.Fatalf("text = %q", text)
	}
}

func TestExtractImageAbsorbedEmpty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "passport.png")
	if err := os.WriteFile(path, []byte{0x89, 0x50, 0x4e, 0x47}, 0o644); err != nil {
		t.Fatal(err)
	}

	text, err := New(nil).Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if text != "" {
		t.Fatalf("image text = %q, want empty", text)
	}
}

type fakeVision struct {
	mimeType string
	size     int
}

func (f *fakeVision) DescribeImage(_ context.Context, mimeType string, data []byte) (string, error) {
	f.mimeType = mimeType
	f.size = len(data)
	return "HO CHIEU / PASSPORT: NGUYEN VAN A", nil
}

func TestExtractImageUsesVisionReader(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "passport.jpg")
	if err := os.WriteFile(path, []byte{0xff, 0xd8, 0xff, 0xe0}, 0o644); err != nil {
		t.Fatal(err)
	}

	vision := &fakeVision{}
	text, err := NewWithVision(nil, vision).Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if !strings.Contains(text, "NGUYEN VAN A") {
		t.Fatalf("text = %q", text)
	}
	if vision.mimeType != "image/jpeg" || vision.size != 4 {
		t.Fatalf("vision call = %q %d bytes", vision.mimeType, vision.size)
	}
}

type failingVision struct{}

func (failingVision) DescribeImage(context.Context, string, []byte) (string, error) {
	return "", errors.New("model unavailable")
}

func TestExtractImageVisionFailureSurfaces(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "passport.jpg")
	if err := os.WriteFile(path, []byte{0xff, 0xd8, 0xff, 0xe0}, 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := NewWithVision(nil, failingVision{}).Extract(context.Background(), path)
	if !domain.IsKind(err, domain.ErrExternalCall) {
		t.Fatalf("want ErrExternalCall, got %v", err)
	}
}

func writeDOCX(t *testing.T, path string, paragraphs []string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	archive := zip.NewWriter(f)
	body, err := archive.Create("word/document.xml")
	if err != nil {
		t.Fatal(err)
	}

	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?><w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	for _, p := range paragraphs {
		b.WriteString("<w:p><w:r><w:t>")
		if err := xmlEscape(&b, p); err != nil {
			t.Fatal(err)
		}
		b.WriteString("</w:t></w:r></w:p>")
	}
	b.WriteString(`</w:body></w:document>`)

	if _, err := body.Write([]byte(b.String())); err != nil {
		t.Fatal(err)
	}
	if err := archive.Close(); err != nil {
		t.Fatal(err)
	}
}

func xmlEscape(b *strings.Builder, s string) error {
	replacer := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	_, err := replacer.WriteString(b, s)
	return err
}
