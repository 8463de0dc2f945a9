// Package extract turns uploaded interview note files into plain text.
package extract

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// AllowedExtensions lists the accepted file extensions, lowercase, without dot.
var AllowedExtensions = []string{"txt", "md", "pdf", "doc", "docx"}

// Kind classifies extraction failures.
type Kind string

const (
	KindUnsupportedFormat Kind = "unsupported_format"
	KindUnavailable       Kind = "unavailable"
	KindEmpty             Kind = "empty"
	KindCorrupt           Kind = "corrupt"
)

const (
	formatText = "text"
	formatPDF  = "PDF"
	formatWord = "Word document"
)

// Error describes why a file yielded no usable text. Its message is the
// placeholder that stands in for the file content.
type Error struct {
	Kind   Kind
	Format string
	Ext    string
	Err    error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindUnsupportedFormat:
		ext := e.Ext
		if ext == "" {
			ext = "(none)"
		}
		return fmt.Sprintf("[Unsupported file format: %s]", ext)
	case KindUnavailable:
		return fmt.Sprintf("[Error: %s support is not available]", e.Format)
	case KindEmpty:
		if e.Format == formatText {
			return "[Error: File contains no text]"
		}
		if e.Format == formatWord {
			return "[Error: Could not extract text from document]"
		}
		return fmt.Sprintf("[Error: Could not extract text from %s]", e.Format)
	default:
		return fmt.Sprintf("[Error reading %s: %v]", e.Format, e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Capabilities declares which optional parsers are available.
type Capabilities struct {
	PDF  bool
	Word bool
}

// Extractor decodes files by extension.
type Extractor struct {
	caps Capabilities
}

func New(caps Capabilities) *Extractor {
	return &Extractor{caps: caps}
}

func (e *Extractor) Capabilities() Capabilities {
	return e.caps
}

// Extension returns the lowercase extension of filename without the dot.
func Extension(filename string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(strings.TrimSpace(filename)), "."))
}

// Allowed reports whether filename has an accepted extension.
func Allowed(filename string) bool {
	ext := Extension(filename)
	for _, allowed := range AllowedExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

// Extract returns the text of the file or an *Error.
func (e *Extractor) Extract(filename string, data []byte) (string, error) {
	ext := Extension(filename)

	switch ext {
	case "txt", "md":
		return decodeText(data)
	case "pdf":
		if !e.caps.PDF {
			return "", &Error{Kind: KindUnavailable, Format: formatPDF, Ext: ext}
		}
		text, err := readPDF(data)
		return nonEmpty(text, err, formatPDF, ext)
	case "doc", "docx":
		if !e.caps.Word {
			return "", &Error{Kind: KindUnavailable, Format: formatWord, Ext: ext}
		}
		text, err := readDocx(data)
		return nonEmpty(text, err, formatWord, ext)
	default:
		return "", &Error{Kind: KindUnsupportedFormat, Ext: ext}
	}
}

// Content returns the extracted text, or the failure placeholder so the
// problem stays visible to whoever reads the notes.
func (e *Extractor) Content(filename string, data []byte) (string, error) {
	text, err := e.Extract(filename, data)
	if err != nil {
		return err.Error(), err
	}
	return text, nil
}

func decodeText(data []byte) (string, error) {
	text := string(data)
	if !utf8.Valid(data) {
		decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
		if err != nil {
			return "", &Error{Kind: KindCorrupt, Format: formatText, Err: err}
		}
		text = string(decoded)
	}

	if strings.TrimSpace(text) == "" {
		return "", &Error{Kind: KindEmpty, Format: formatText}
	}
	return text, nil
}

func nonEmpty(text string, err error, format, ext string) (string, error) {
	if err != nil {
		return "", &Error{Kind: KindCorrupt, Format: format, Ext: ext, Err: err}
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", &Error{Kind: KindEmpty, Format: format, Ext: ext}
	}
	return text, nil
}
