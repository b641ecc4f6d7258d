package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		contentType string
		data        []byte
		want        Format
	}{
		{"declared pdf", "resume", "application/pdf", nil, FormatPDF},
		{"declared docx", "resume", mimeDOCX, nil, FormatDOCX},
		{"declared text with charset", "resume", "text/plain; charset=utf-8", nil, FormatText},
		{"pdf extension", "Resume.PDF", "application/octet-stream", nil, FormatPDF},
		{"docx extension", "cv.docx", "", nil, FormatDOCX},
		{"txt extension", "cv.txt", "", nil, FormatText},
		{"sniffed pdf", "upload", "", []byte("%PDF-1.4\n..."), FormatPDF},
		{"sniffed text", "upload", "", []byte("plain resume text"), FormatText},
		{"unknown binary", "photo", "image/png", []byte("\x89PNG\r\n\x1a\n"), FormatUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectFormat(tt.filename, tt.contentType, tt.data))
		})
	}
}

func TestExtractText_Plain(t *testing.T) {
	text, err := ExtractText(FormatText, []byte("  Go developer  \n"))
	require.NoError(t, err)
	assert.Equal(t, "Go developer", text)
}

func TestExtractText_Empty(t *testing.T) {
	_, err := ExtractText(FormatText, []byte(" \n\t "))
	assert.ErrorIs(t, err, ErrNoText)
}

func TestExtractText_Unsupported(t *testing.T) {
	_, err := ExtractText(FormatUnknown, []byte("x"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestExtractText_CorruptDocuments(t *testing.T) {
	_, err := ExtractText(FormatPDF, []byte("not a pdf"))
	assert.Error(t, err)

	_, err = ExtractText(FormatDOCX, []byte("not a zip"))
	assert.Error(t, err)
}

func TestDocumentXMLText(t *testing.T) {
	body := `<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		`<w:p><w:r><w:t>Jane Doe</w:t></w:r></w:p>` +
		`<w:p><w:r><w:t>Skills:</w:t><w:tab/><w:t>Go, SQL</w:t></w:r></w:p>` +
		`</w:body></w:document>`

	text, err := documentXMLText(body)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe\nSkills:\tGo, SQL\n", text)

	_, err = documentXMLText("<w:p><w:t>unclosed")
	assert.Error(t, err)
}

func TestBuildPrompt(t *testing.T) {
	p, err := BuildPrompt(Input{ResumeText: " resume ", JobTitle: " Go Dev ", JobDescription: " desc {{.JobTitle}}"})
	require.NoError(t, err)
	assert.Contains(t, p, "Job Title: Go Dev\n")
	assert.Contains(t, p, "Job Description:\ndesc {{.JobTitle}}\n")
	assert.Contains(t, p, "Candidate's Resume Text:\nresume\n")
	assert.Contains(t, p, `"Can Not Determine"`)
}
