package services

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
)

// MaxImportBytes caps uploaded note files.
const MaxImportBytes = 10 << 20

// FileExtractService turns uploaded study material into note text.
type FileExtractService struct{}

func NewFileExtractService() *FileExtractService {
	return &FileExtractService{}
}

// ImportedNote is the title and body recovered from an upload.
type ImportedNote struct {
	Title   string
	Content string
}

// ExtractUpload reads an uploaded .pdf, .txt or .docx into note text. The
// title defaults to the file name without its extension.
func (s *FileExtractService) ExtractUpload(r io.Reader, filename string) (*ImportedNote, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".pdf", ".txt", ".docx":
	default:
		return nil, &ValidationError{Fields: map[string]string{"file": "Only PDF, TXT and DOCX files can be imported"}}
	}

	tmp, err := os.CreateTemp("", "note-import-*"+ext)
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	n, err := io.Copy(tmp, io.LimitReader(r, MaxImportBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to buffer upload: %w", err)
	}
	if n > MaxImportBytes {
		return nil, &ValidationError{Fields: map[string]string{"file": "File is larger than 10 MB"}}
	}

	text, err := s.ExtractTextFromPath(tmp.Name())
	if err != nil {
		return nil, &ValidationError{Fields: map[string]string{"file": err.Error()}}
	}

	title := strings.TrimSpace(strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename)))
	if title == "" {
		title = "Imported note"
	}
	return &ImportedNote{Title: title, Content: text}, nil
}

func (s *FileExtractService) ExtractTextFromPath(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt":
		return extractTXT(path)
	case ".pdf":
		return extractPDF(path)
	case ".docx":
		return extractDOCX(path)
	default:
		return "", fmt.Errorf("unsupported file type for text extraction: %s", filepath.Ext(path))
	}
}

func extractTXT(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	text := normalizeExtractedText(string(b))
	if text == "" {
		return "", fmt.Errorf("text file is empty")
	}
	return text, nil
}

func extractPDF(path string) (string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("could not read pdf: %w", err)
	}
	defer f.Close()

	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(content)
		b.WriteString("\n")
	}

	text := normalizeExtractedText(b.String())
	if text == "" {
		return "", fmt.Errorf("no extractable text found in pdf")
	}
	return text, nil
}

func extractDOCX(path string) (string, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("could not read docx: %w", err)
	}
	defer r.Close()

	for _, f := range r.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", err
		}
		documentXML, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", err
		}

		text := normalizeExtractedText(stripDOCXML(documentXML))
		if text == "" {
			return "", fmt.Errorf("no extractable text found in docx")
		}
		return text, nil
	}
	return "", fmt.Errorf("docx document.xml not found")
}

var (
	xmlTagPattern     = regexp.MustCompile(`<[^>]+>`)
	docxBreakReplacer = strings.NewReplacer("</w:p>", "\n", "<w:br/>", "\n", "<w:br />", "\n", "<w:tab/>", "\t")
	xmlEntityReplacer = strings.NewReplacer("&amp;", "&", "&lt;", "<", "&gt;", ">", "&quot;", `"`, "&apos;", "'")
)

func stripDOCXML(src []byte) string {
	s := docxBreakReplacer.Replace(string(src))
	s = xmlTagPattern.ReplaceAllString(s, "")
	return xmlEntityReplacer.Replace(s)
}

// normalizeExtractedText trims every line and collapses runs of blank lines.
func normalizeExtractedText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")

	var buf bytes.Buffer
	blank := 0
	for _, line := range strings.Split(s, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			blank++
			if blank == 1 {
				buf.WriteString("\n")
			}
			continue
		}
		blank = 0
		buf.WriteString(trimmed)
		buf.WriteString("\n")
	}
	return strings.TrimSpace(buf.String())
}
