package extract

import (
	"archive/zip"
	"bytes"
	"errors"
	"strings"
	"testing"
)

func buildDocx(t *testing.T, body string) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	f, err := w.Create(docxBody)
	if err != nil {
		t.Fatalf("create docx entry: %v", err)
	}
	if _, err := f.Write([]byte(body)); err != nil {
		t.Fatalf("write docx entry: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close docx: %v", err)
	}
	return buf.Bytes()
}

const docxDocument = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>
<w:p><w:r><w:t>Candidate liked</w:t></w:r><w:r><w:t xml:space="preserve"> the onboarding.</w:t></w:r></w:p>
<w:p><w:r><w:t>Pricing</w:t><w:tab/><w:t>confusing</w:t></w:r></w:p>
</w:body>
</w:document>`

func TestExtract(t *testing.T) {
	t.Parallel()

	full := New(Capabilities{PDF: true, Word: true})
	bare := New(Capabilities{})

	tests := []struct {
		name      string
		extractor *Extractor
		filename  string
		data      []byte
		want      string
		wantKind  Kind
	}{
		{
			name:      "utf8 text",
			extractor: full,
			filename:  "notes.txt",
			data:      []byte("Interview with Ana: likes the dashboard ✓"),
			want:      "Interview with Ana: likes the dashboard ✓",
		},
		{
			name:      "markdown upper-case extension",
			extractor: full,
			filename:  "NOTES.MD",
			data:      []byte("# Notes\n- fast"),
			want:      "# Notes\n- fast",
		},
		{
			name:      "latin-1 fallback",
			extractor: full,
			filename:  "legacy.txt",
			data:      []byte{'c', 'a', 'f', 0xE9},
			want:      "café",
		},
		{
			name:      "blank text",
			extractor: full,
			filename:  "empty.txt",
			data:      []byte("  \n\t"),
			wantKind:  KindEmpty,
		},
		{
			name:      "unsupported extension",
			extractor: full,
			filename:  "notes.xyz",
			data:      []byte("whatever"),
			wantKind:  KindUnsupportedFormat,
		},
		{
			name:      "no extension",
			extractor: full,
			filename:  "notes",
			data:      []byte("whatever"),
			wantKind:  KindUnsupportedFormat,
		},
		{
			name:      "pdf unavailable",
			extractor: bare,
			filename:  "notes.pdf",
			data:      []byte("%PDF-1.4"),
			wantKind:  KindUnavailable,
		},
		{
			name:      "corrupt pdf",
			extractor: full,
			filename:  "notes.pdf",
			data:      []byte("definitely not a pdf"),
			wantKind:  KindCorrupt,
		},
		{
			name:      "word unavailable",
			extractor: bare,
			filename:  "notes.docx",
			data:      []byte("PK"),
			wantKind:  KindUnavailable,
		},
		{
			name:      "legacy doc is not a zip",
			extractor: full,
			filename:  "notes.doc",
			data:      []byte{0xD0, 0xCF, 0x11, 0xE0},
			wantKind:  KindCorrupt,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := tt.extractor.Extract(tt.filename, tt.data)
			if tt.wantKind != "" {
				var extractErr *Error
				if !errors.As(err, &extractErr) {
					t.Fatalf("expected extraction error, got %v", err)
				}
				if extractErr.Kind != tt.wantKind {
					t.Fatalf("expected kind %q, got %q", tt.wantKind, extractErr.Kind)
				}
				if got != "" {
					t.Fatalf("expected no text on error, got %q", got)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestExtractDocx(t *testing.T) {
	t.Parallel()

	e := New(Capabilities{Word: true})

	got, err := e.Extract("interview.docx", buildDocx(t, docxDocument))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "Candidate liked the onboarding.\nPricing\tconfusing"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}

	_, err = e.Extract("blank.docx", buildDocx(t, `<w:document xmlns:w="x"><w:body><w:p></w:p></w:body></w:document>`))
	var extractErr *Error
	if !errors.As(err, &extractErr) || extractErr.Kind != KindEmpty {
		t.Fatalf("expected empty kind, got %v", err)
	}
	if extractErr.Error() != "[Error: Could not extract text from document]" {
		t.Fatalf("unexpected placeholder: %q", extractErr.Error())
	}
}

func TestContentUsesPlaceholder(t *testing.T) {
	t.Parallel()

	e := New(Capabilities{})

	content, err := e.Content("notes.xyz", []byte("x"))
	if err == nil {
		t.Fatal("expected error")
	}
	if content != "[Unsupported file format: xyz]" {
		t.Fatalf("unexpected placeholder: %q", content)
	}

	content, _ = e.Content("notes.pdf", []byte("x"))
	if content != "[Error: PDF support is not available]" {
		t.Fatalf("unexpected placeholder: %q", content)
	}

	content, _ = e.Content("notes.pdf", nil)
	if !strings.HasPrefix(content, "[Error") {
		t.Fatalf("unexpected placeholder: %q", content)
	}
}

func TestExtractIsIdempotent(t *testing.T) {
	t.Parallel()

	e := New(Capabilities{PDF: true, Word: true})
	inputs := map[string][]byte{
		"a.txt":  []byte("same bytes"),
		"b.txt":  {0xFF, 0xFE, 'x'},
		"c.pdf":  []byte("broken"),
		"d.docx": buildDocx(t, docxDocument),
		"e.xyz":  []byte("nope"),
	}

	for name, data := range inputs {
		first, firstErr := e.Content(name, data)
		second, secondErr := e.Content(name, data)
		if first != second {
			t.Fatalf("%s: expected identical output, got %q and %q", name, first, second)
		}
		if (firstErr == nil) != (secondErr == nil) {
			t.Fatalf("%s: expected identical error outcome", name)
		}
	}
}

func TestAllowed(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"a.txt", "b.MD", "c.pdf", "d.doc", "e.DocX"} {
		if !Allowed(name) {
			t.Fatalf("expected %s to be allowed", name)
		}
	}
	for _, name := range []string{"a.xyz", "noext", "", "archive.tar.gz"} {
		if Allowed(name) {
			t.Fatalf("expected %s to be rejected", name)
		}
	}
}
