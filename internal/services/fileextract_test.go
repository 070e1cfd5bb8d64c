package services

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeExtractedText(t *testing.T) {
	in := "  Newton's laws  \r\n\r\n\r\n\tFirst law\n\n\n\nSecond law  \n"
	assert.Equal(t, "Newton's laws\n\nFirst law\n\nSecond law", normalizeExtractedText(in))
	assert.Equal(t, "", normalizeExtractedText(" \n\t\n"))
}

func TestExtractUploadTXT(t *testing.T) {
	svc := NewFileExtractService()

	note, err := svc.ExtractUpload(strings.NewReader("Mole concept\n\n  1 mol = 6.022e23  \n"), "Chemistry Notes.txt")
	require.NoError(t, err)
	assert.Equal(t, "Chemistry Notes", note.Title)
	assert.Equal(t, "Mole concept\n\n1 mol = 6.022e23", note.Content)
}

func TestExtractUploadDOCX(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(`<w:document><w:body><w:p><w:r><w:t>Cell theory</w:t></w:r></w:p><w:p><w:r><w:t>Mitochondria &amp; ATP</w:t></w:r></w:p></w:body></w:document>`))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	note, err := NewFileExtractService().ExtractUpload(&buf, "cell.DOCX")
	require.NoError(t, err)
	assert.Equal(t, "cell", note.Title)
	assert.Equal(t, "Cell theory\nMitochondria & ATP", note.Content)
}

func TestExtractUploadRejects(t *testing.T) {
	svc := NewFileExtractService()

	tests := []struct {
		name     string
		body     string
		filename string
	}{
		{"unsupported extension", "hello", "slides.pptx"},
		{"empty text file", "  \n ", "empty.txt"},
		{"broken docx", "not a zip", "broken.docx"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ExtractUpload(strings.NewReader(tt.body), tt.filename)
			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Contains(t, vErr.Fields, "file")
		})
	}
}

func TestExtractTextFromPathUnsupported(t *testing.T) {
	_, err := NewFileExtractService().ExtractTextFromPath("notes.md")
	assert.ErrorContains(t, err, "unsupported file type")
}
